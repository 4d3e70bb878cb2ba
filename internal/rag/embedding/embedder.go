package embedding

import "context"

// Embedder converts text into fixed-dimension vectors via an external
// provider.
//
// EmbedBatch preserves positions: the result always has one entry per
// input, and blank inputs come back as nil vectors instead of being sent
// to the provider. Callers that need a compact slice filter the nils
// themselves.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}
