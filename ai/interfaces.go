package ai

import "context"

// Transcriber turns recorded speech into text.
// Implementations must be thread-safe for concurrent use.
type Transcriber interface {
	// Transcribe returns the transcript of audio encoded as mimeType.
	// Returns an error if the service fails or yields no text.
	Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error)
}

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// AnswerSynthesizer writes an answer to a question grounded on passages.
// Implementations must be thread-safe for concurrent use.
type AnswerSynthesizer interface {
	// Synthesize answers question using only passages. The passages are
	// already ranked; implementations join them with a blank line.
	Synthesize(ctx context.Context, question string, passages []string) (string, error)
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
// The services it returns share configuration and underlying clients.
type AIProvider interface {
	// Transcriber returns the speech-to-text service.
	Transcriber() Transcriber

	// Embedder returns the text embedding service.
	Embedder() Embedder

	// Synthesizer returns the answer synthesis service.
	Synthesizer() AnswerSynthesizer

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
