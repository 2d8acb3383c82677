package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity
// scoring. Implementations must be thread-safe for concurrent use.
//
// Encoding a null value is undefined: callers must guard null fields and
// never submit them to the embedder.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Deterministic for a fixed loaded model: the same text always yields
	// the same vector.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in
	// a batch. The returned slice contains embeddings in the same order as
	// the input texts. Batching is a throughput optimization only and must
	// preserve per-row correctness.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}
