package vectorDB

import (
	"context"

	"github.com/adevara/docqa/internal/domain/commonModels"
)

// Store is the index over document chunks: hybrid retrieval plus the write
// operations the ingestion pipeline needs for its upsert-then-trim swap.
type Store interface {
	// HybridSearch combines nearest-neighbour search on the query vector
	// with keyword matching on the query text, in engine relevance order.
	HybridSearch(ctx context.Context, query string, vector []float32, topK int) ([]commonModels.SearchHit, error)

	UpsertBatch(ctx context.Context, entries []commonModels.IndexEntry) error

	// DeleteByDocument removes every entry whose storage_name matches.
	DeleteByDocument(ctx context.Context, docName string) error

	// DeleteStale removes entries of a document with ordinal >= keepCount.
	// Combined with deterministic ids this turns reindexing into an
	// overwrite-then-trim swap with no empty-index window.
	DeleteStale(ctx context.Context, docName string, keepCount int) error

	EnsureCollection(ctx context.Context) error
}
