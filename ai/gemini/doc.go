// Package gemini implements the ai interfaces on Google Gemini.
//
// A single googleai client serves all three capabilities. Audio is sent
// inline as a binary part next to the transcription prompt; answers come
// from the same multimodal chat model unless ai.Config names another.
package gemini
