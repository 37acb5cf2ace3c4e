// Package query answers questions about a room's recorded classes.
//
// Ask embeds the question, retrieves at most three chunks of the room
// whose similarity is strictly above 0.7, and hands their transcripts,
// best first and separated by a blank line, to the answer synthesizer.
// When nothing passes the threshold the answer is nil and the
// synthesizer is not called. Every call persists exactly one Question
// unless a stage fails, in which case nothing is written.
package query
