package openai

import "strings"

// scrubString collapses runs of whitespace and trims the result.
// Model output often carries stray newlines around the text.
func scrubString(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// scrubParagraphs trims each paragraph and drops empty ones, keeping the
// blank line between paragraphs.
func scrubParagraphs(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	var kept []string
	for _, p := range strings.Split(s, "\n\n") {
		if p = scrubString(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n\n")
}

// audioFilename picks a file name whose extension matches mimeType.
// The transcription endpoint infers the format from the name.
func audioFilename(mimeType string) string {
	base, _, _ := strings.Cut(strings.ToLower(mimeType), ";")
	switch strings.TrimSpace(base) {
	case "audio/mpeg", "audio/mp3":
		return "audio.mp3"
	case "audio/wav", "audio/x-wav", "audio/wave":
		return "audio.wav"
	case "audio/ogg", "audio/opus":
		return "audio.ogg"
	case "audio/mp4", "audio/m4a", "audio/x-m4a":
		return "audio.m4a"
	case "audio/flac", "audio/x-flac":
		return "audio.flac"
	default:
		return "audio.webm"
	}
}
