package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/adevara/docqa/internal/blob"
	"github.com/adevara/docqa/internal/config"
	"github.com/adevara/docqa/internal/data/lockStore"
	"github.com/adevara/docqa/internal/domain/commonModels"
	"github.com/adevara/docqa/internal/domain/faults"
	"github.com/adevara/docqa/internal/metrics"
	"github.com/adevara/docqa/internal/rag/vectorDB"
	"github.com/adevara/docqa/pkg/logger_i"
)

const batchSize = 100

// Pipeline owns the indexed chunk set of every document. Reindex and Remove
// are the only writers of the index store.
type Pipeline struct {
	blobs     blob.Reader
	index     vectorDB.Store
	embedder  embeddingClient
	locks     lockStore.DocumentLocker
	container string
	logger    *logger_i.Logger
}

// embeddingClient is the slice of the embedder the pipeline needs.
type embeddingClient interface {
	BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error)
}

func NewPipeline(blobs blob.Reader, index vectorDB.Store, embedder embeddingClient, locks lockStore.DocumentLocker, container string) *Pipeline {
	return &Pipeline{
		blobs:     blobs,
		index:     index,
		embedder:  embedder,
		locks:     locks,
		container: container,
		logger:    logger_i.NewLogger("Ingestion Pipeline"),
	}
}

// Reindex recomputes and replaces the indexed chunks of one document.
//
// The replacement is an overwrite-then-trim swap: deterministic chunk ids
// mean upserting the new set overwrites old entries in place, and only the
// stale tail (ordinals past the new chunk count) needs deleting afterwards.
// Queries therefore never observe an empty chunk set for the document. The
// per-document lease serializes concurrent reindex runs so interleaved
// writes cannot mix two chunk sets. If the trailing trim fails the index
// briefly holds a superset, never a hole; the next successful run heals it.
func (p *Pipeline) Reindex(ctx context.Context, docName string) error {
	log := p.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "doc", docName)
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("document_reindex", time.Since(start)) }()

	release, err := p.locks.Acquire(ctx, docName)
	if err != nil {
		return faults.Wrap(faults.Index, "acquiring reindex lease", err)
	}
	defer release()

	data, err := p.blobs.Fetch(ctx, docName)
	if err != nil {
		return err
	}

	text, err := Extract(data, DetectDocType(docName))
	if err != nil {
		return err
	}

	chunks, err := ChunkText(text, config.ChunkSize, config.ChunkOverlap)
	if err != nil {
		return err
	}
	log.Debug("Processing document", "Number of chunks: ", len(chunks))

	for i := 0; i < len(chunks); i += batchSize {
		end := i + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		currentBatch := chunks[i:end]

		vectors, err := p.embedder.BatchEmbedding(ctx, currentBatch)
		if err != nil {
			return fmt.Errorf("embedding batch failed: %w", err)
		}
		if len(vectors) != len(currentBatch) {
			return faults.ProviderFault(faults.SubTransient,
				fmt.Sprintf("got %d vectors for %d chunks", len(vectors), len(currentBatch)), nil)
		}

		entries := make([]commonModels.IndexEntry, len(currentBatch))
		for j, chunk := range currentBatch {
			ordinal := i + j
			entries[j] = commonModels.IndexEntry{
				Id:          ChunkID(docName, ordinal),
				Content:     chunk,
				Title:       docName,
				StorageName: docName,
				StoragePath: p.container + "/" + docName,
				Ordinal:     ordinal,
				Embedding:   vectors[j],
			}
		}

		if err := p.index.UpsertBatch(ctx, entries); err != nil {
			return fmt.Errorf("upserting batch failed: %w", err)
		}
	}

	// new set fully committed, trim whatever the previous content left behind
	if err := p.index.DeleteStale(ctx, docName, len(chunks)); err != nil {
		return err
	}

	metrics.IncrementDocumentsReindexed()
	metrics.AddChunksIndexed(len(chunks))
	log.Info("Reindexed document", "chunks", len(chunks))
	return nil
}

// Remove deletes every indexed chunk of the document, used when the blob
// itself was deleted. It takes the same lease as Reindex: a delete that ran
// between the upsert batches of an in-flight reindex would otherwise be
// overwritten by the remaining batches and never trimmed.
func (p *Pipeline) Remove(ctx context.Context, docName string) error {
	log := p.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "doc", docName)

	release, err := p.locks.Acquire(ctx, docName)
	if err != nil {
		return faults.Wrap(faults.Index, "acquiring reindex lease", err)
	}
	defer release()

	if err := p.index.DeleteByDocument(ctx, docName); err != nil {
		return err
	}
	log.Info("Removed document from index")
	return nil
}
