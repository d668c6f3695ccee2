package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/adevara/docqa/internal/data/lockStore"
	"github.com/adevara/docqa/internal/domain/commonModels"
	"github.com/adevara/docqa/internal/domain/faults"
)

// --- Mocks for the pipeline collaborators ---

type mockBlobReader struct {
	OnFetch func(ctx context.Context, name string) ([]byte, error)
}

func (m *mockBlobReader) Fetch(ctx context.Context, name string) ([]byte, error) {
	if m.OnFetch != nil {
		return m.OnFetch(ctx, name)
	}
	return []byte("default document content"), nil
}

type mockStore struct {
	OnHybridSearch     func(ctx context.Context, query string, vector []float32, topK int) ([]commonModels.SearchHit, error)
	OnUpsertBatch      func(ctx context.Context, entries []commonModels.IndexEntry) error
	OnDeleteByDocument func(ctx context.Context, docName string) error
	OnDeleteStale      func(ctx context.Context, docName string, keepCount int) error
}

func (m *mockStore) HybridSearch(ctx context.Context, query string, vector []float32, topK int) ([]commonModels.SearchHit, error) {
	if m.OnHybridSearch != nil {
		return m.OnHybridSearch(ctx, query, vector, topK)
	}
	return nil, nil
}

func (m *mockStore) UpsertBatch(ctx context.Context, entries []commonModels.IndexEntry) error {
	if m.OnUpsertBatch != nil {
		return m.OnUpsertBatch(ctx, entries)
	}
	return nil
}

func (m *mockStore) DeleteByDocument(ctx context.Context, docName string) error {
	if m.OnDeleteByDocument != nil {
		return m.OnDeleteByDocument(ctx, docName)
	}
	return nil
}

func (m *mockStore) DeleteStale(ctx context.Context, docName string, keepCount int) error {
	if m.OnDeleteStale != nil {
		return m.OnDeleteStale(ctx, docName, keepCount)
	}
	return nil
}

func (m *mockStore) EnsureCollection(ctx context.Context) error { return nil }

type mockBatchEmbedder struct {
	OnBatchEmbedding func(ctx context.Context, chunks []string) ([][]float32, error)
}

func (m *mockBatchEmbedder) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	if m.OnBatchEmbedding != nil {
		return m.OnBatchEmbedding(ctx, chunks)
	}
	vectors := make([][]float32, len(chunks))
	for i := range vectors {
		vectors[i] = []float32{0.1}
	}
	return vectors, nil
}

type mockLocker struct {
	OnAcquire func(ctx context.Context, docName string) (func(), error)
	released  bool
}

func (m *mockLocker) Acquire(ctx context.Context, docName string) (func(), error) {
	if m.OnAcquire != nil {
		return m.OnAcquire(ctx, docName)
	}
	return func() { m.released = true }, nil
}

// --- Unit Tests ---

func TestReindex_UpsertsBeforeTrimming(t *testing.T) {
	var calls []string
	var trimmedAt int

	store := &mockStore{
		OnUpsertBatch: func(ctx context.Context, entries []commonModels.IndexEntry) error {
			calls = append(calls, "upsert")
			return nil
		},
		OnDeleteStale: func(ctx context.Context, docName string, keepCount int) error {
			calls = append(calls, "trim")
			trimmedAt = keepCount
			return nil
		},
	}
	locker := &mockLocker{}

	// Long enough for several chunks.
	blobs := &mockBlobReader{
		OnFetch: func(ctx context.Context, name string) ([]byte, error) {
			return []byte(strings.Repeat("text content ", 300)), nil
		},
	}

	p := NewPipeline(blobs, store, &mockBatchEmbedder{}, locker, "documents")
	if err := p.Reindex(context.Background(), "notes.txt"); err != nil {
		t.Fatalf("Reindex failed: %v", err)
	}

	if len(calls) < 2 {
		t.Fatalf("Expected upsert and trim calls, got %v", calls)
	}
	if calls[len(calls)-1] != "trim" {
		t.Errorf("Trim must come last, got call order %v", calls)
	}
	for _, c := range calls[:len(calls)-1] {
		if c != "upsert" {
			t.Errorf("Unexpected call before trim: %v", calls)
		}
	}
	if trimmedAt <= 0 {
		t.Errorf("DeleteStale keepCount = %d; want the new chunk count", trimmedAt)
	}
	if !locker.released {
		t.Error("Reindex did not release the document lease")
	}
}

func TestReindex_EntriesAreDeterministic(t *testing.T) {
	var firstRun, secondRun []commonModels.IndexEntry
	run := 0

	store := &mockStore{
		OnUpsertBatch: func(ctx context.Context, entries []commonModels.IndexEntry) error {
			if run == 0 {
				firstRun = append(firstRun, entries...)
			} else {
				secondRun = append(secondRun, entries...)
			}
			return nil
		},
	}
	p := NewPipeline(&mockBlobReader{}, store, &mockBatchEmbedder{}, &mockLocker{}, "documents")

	if err := p.Reindex(context.Background(), "notes.txt"); err != nil {
		t.Fatalf("First reindex failed: %v", err)
	}
	run = 1
	if err := p.Reindex(context.Background(), "notes.txt"); err != nil {
		t.Fatalf("Second reindex failed: %v", err)
	}

	if len(firstRun) == 0 || len(firstRun) != len(secondRun) {
		t.Fatalf("Entry counts differ: %d vs %d", len(firstRun), len(secondRun))
	}
	for i := range firstRun {
		if firstRun[i].Id != secondRun[i].Id {
			t.Errorf("entry %d id changed across runs: %s vs %s", i, firstRun[i].Id, secondRun[i].Id)
		}
		if firstRun[i].Ordinal != i {
			t.Errorf("entry %d has ordinal %d", i, firstRun[i].Ordinal)
		}
		if firstRun[i].StorageName != "notes.txt" {
			t.Errorf("entry %d storage name = %s", i, firstRun[i].StorageName)
		}
		if firstRun[i].StoragePath != "documents/notes.txt" {
			t.Errorf("entry %d storage path = %s", i, firstRun[i].StoragePath)
		}
	}
}

func TestReindex_FetchFailure(t *testing.T) {
	blobs := &mockBlobReader{
		OnFetch: func(ctx context.Context, name string) ([]byte, error) {
			return nil, faults.ProviderFault(faults.SubTransient, "blob store unavailable", nil)
		},
	}
	upserts := 0
	store := &mockStore{
		OnUpsertBatch: func(ctx context.Context, entries []commonModels.IndexEntry) error {
			upserts++
			return nil
		},
	}
	locker := &mockLocker{}

	p := NewPipeline(blobs, store, &mockBatchEmbedder{}, locker, "documents")
	err := p.Reindex(context.Background(), "notes.txt")
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if upserts != 0 {
		t.Errorf("Index was written despite fetch failure")
	}
	if !locker.released {
		t.Error("Lease was not released on failure")
	}
}

func TestReindex_EmbeddingFailure(t *testing.T) {
	embedder := &mockBatchEmbedder{
		OnBatchEmbedding: func(ctx context.Context, chunks []string) ([][]float32, error) {
			return nil, errors.New("api limit")
		},
	}
	store := &mockStore{
		OnUpsertBatch: func(ctx context.Context, entries []commonModels.IndexEntry) error {
			t.Error("UpsertBatch called despite embedding failure")
			return nil
		},
	}

	p := NewPipeline(&mockBlobReader{}, store, embedder, &mockLocker{}, "documents")
	if err := p.Reindex(context.Background(), "notes.txt"); err == nil {
		t.Fatal("Expected error, got nil")
	}
}

func TestReindex_VectorCountMismatch(t *testing.T) {
	embedder := &mockBatchEmbedder{
		OnBatchEmbedding: func(ctx context.Context, chunks []string) ([][]float32, error) {
			return make([][]float32, len(chunks)+1), nil
		},
	}

	p := NewPipeline(&mockBlobReader{}, &mockStore{}, embedder, &mockLocker{}, "documents")
	err := p.Reindex(context.Background(), "notes.txt")
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !faults.Is(err, faults.Provider) {
		t.Errorf("Expected provider fault, got %v", err)
	}
}

func TestReindex_LeaseUnavailable(t *testing.T) {
	locker := &mockLocker{
		OnAcquire: func(ctx context.Context, docName string) (func(), error) {
			return nil, context.DeadlineExceeded
		},
	}
	fetched := false
	blobs := &mockBlobReader{
		OnFetch: func(ctx context.Context, name string) ([]byte, error) {
			fetched = true
			return nil, nil
		},
	}

	p := NewPipeline(blobs, &mockStore{}, &mockBatchEmbedder{}, locker, "documents")
	err := p.Reindex(context.Background(), "notes.txt")
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !faults.Is(err, faults.Index) {
		t.Errorf("Expected index fault, got %v", err)
	}
	if fetched {
		t.Error("Blob was fetched without holding the lease")
	}
}

func TestRemove(t *testing.T) {
	var deleted string
	store := &mockStore{
		OnDeleteByDocument: func(ctx context.Context, docName string) error {
			deleted = docName
			return nil
		},
	}
	locker := &mockLocker{}

	p := NewPipeline(&mockBlobReader{}, store, &mockBatchEmbedder{}, locker, "documents")
	if err := p.Remove(context.Background(), "old.pdf"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if deleted != "old.pdf" {
		t.Errorf("Deleted document = %q; want old.pdf", deleted)
	}
	if !locker.released {
		t.Error("Remove did not release the document lease")
	}
}

func TestRemove_LeaseUnavailable(t *testing.T) {
	locker := &mockLocker{
		OnAcquire: func(ctx context.Context, docName string) (func(), error) {
			return nil, context.DeadlineExceeded
		},
	}
	store := &mockStore{
		OnDeleteByDocument: func(ctx context.Context, docName string) error {
			t.Error("DeleteByDocument called without holding the lease")
			return nil
		},
	}

	p := NewPipeline(&mockBlobReader{}, store, &mockBatchEmbedder{}, locker, "documents")
	err := p.Remove(context.Background(), "old.pdf")
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !faults.Is(err, faults.Index) {
		t.Errorf("Expected index fault, got %v", err)
	}
}

func TestRemove_WaitsForReindexLease(t *testing.T) {
	locker := lockStore.InitInMemoryLocker()

	// Simulate an in-flight reindex holding the document lease.
	release, err := locker.Acquire(context.Background(), "big.txt")
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	deletes := 0
	store := &mockStore{
		OnDeleteByDocument: func(ctx context.Context, docName string) error {
			deletes++
			return nil
		},
	}
	p := NewPipeline(&mockBlobReader{}, store, &mockBatchEmbedder{}, locker, "documents")

	shortCtx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if err := p.Remove(shortCtx, "big.txt"); err == nil {
		t.Fatal("Remove ran while the reindex lease was held")
	}
	if deletes != 0 {
		t.Error("DeleteByDocument interleaved with a held reindex lease")
	}

	release()
	if err := p.Remove(context.Background(), "big.txt"); err != nil {
		t.Fatalf("Remove after lease release failed: %v", err)
	}
	if deletes != 1 {
		t.Errorf("DeleteByDocument called %d times; want 1", deletes)
	}
}
