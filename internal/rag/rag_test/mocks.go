package rag_test

import (
	"context"

	"github.com/adevara/docqa/internal/domain/commonModels"
)

// MockVectorDB implements vectorDB.Store
type MockVectorDB struct {
	// Control fields to simulate different behaviors
	OnHybridSearch     func(ctx context.Context, query string, vector []float32, topK int) ([]commonModels.SearchHit, error)
	OnUpsertBatch      func(ctx context.Context, entries []commonModels.IndexEntry) error
	OnDeleteByDocument func(ctx context.Context, docName string) error
	OnDeleteStale      func(ctx context.Context, docName string, keepCount int) error
	OnEnsureCollection func(ctx context.Context) error
}

func (m *MockVectorDB) HybridSearch(ctx context.Context, query string, vector []float32, topK int) ([]commonModels.SearchHit, error) {
	if m.OnHybridSearch != nil {
		return m.OnHybridSearch(ctx, query, vector, topK)
	}
	return []commonModels.SearchHit{{Content: "default context", StorageName: "default.pdf"}}, nil
}

func (m *MockVectorDB) UpsertBatch(ctx context.Context, entries []commonModels.IndexEntry) error {
	if m.OnUpsertBatch != nil {
		return m.OnUpsertBatch(ctx, entries)
	}
	return nil
}

func (m *MockVectorDB) DeleteByDocument(ctx context.Context, docName string) error {
	if m.OnDeleteByDocument != nil {
		return m.OnDeleteByDocument(ctx, docName)
	}
	return nil
}

func (m *MockVectorDB) DeleteStale(ctx context.Context, docName string, keepCount int) error {
	if m.OnDeleteStale != nil {
		return m.OnDeleteStale(ctx, docName, keepCount)
	}
	return nil
}

func (m *MockVectorDB) EnsureCollection(ctx context.Context) error {
	if m.OnEnsureCollection != nil {
		return m.OnEnsureCollection(ctx)
	}
	return nil
}

type MockEmbedder struct {
	OnGetEmbedding   func(ctx context.Context, text string) ([]float32, error)
	OnBatchEmbedding func(ctx context.Context, chunks []string) ([][]float32, error)
}

func (m *MockEmbedder) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	if m.OnGetEmbedding != nil {
		return m.OnGetEmbedding(ctx, query)
	}
	return []float32{0.1}, nil
}

func (m *MockEmbedder) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	if m.OnBatchEmbedding != nil {
		return m.OnBatchEmbedding(ctx, chunks)
	}
	// Return dummy vectors matching chunk size
	return make([][]float32, len(chunks)), nil
}

// MockLLM implements llm.Provider
type MockLLM struct {
	OnGenerate func(ctx context.Context, prompt string) (string, error)
}

func (m *MockLLM) Generate(ctx context.Context, prompt string) (string, error) {
	if m.OnGenerate != nil {
		return m.OnGenerate(ctx, prompt)
	}
	return "mocked llm response", nil
}
