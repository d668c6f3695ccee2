package embedding

import "context"

// Embedder turns text into fixed-dimension vectors. Query and document
// embeddings must come from the same implementation so both live in the
// same metric space.
type Embedder interface {
	GetEmbedding(ctx context.Context, text string) ([]float32, error)
	BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error)
}
