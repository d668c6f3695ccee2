package rag

import (
	"context"
	"time"

	"github.com/adevara/docqa/internal/config"
	"github.com/adevara/docqa/internal/domain/commonModels"
	"github.com/adevara/docqa/internal/metrics"
	"github.com/adevara/docqa/pkg/logger_i"
)

func (s *service) executeEmbeddingStep(ctx context.Context, log *logger_i.Logger, query string) ([]float32, error) {
	log.Debug("Answer", "Current Step", "EmbeddingAPI")

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("embedding", time.Since(start)) }()

	return s.embedder.GetEmbedding(ctx, query)
}

func (s *service) executeSearchStep(ctx context.Context, log *logger_i.Logger, query string, vector []float32) ([]commonModels.SearchHit, error) {
	log.Debug("Answer", "Current Step", "HybridSearch")

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("hybrid_search", time.Since(start)) }()

	return s.index.HybridSearch(ctx, query, vector, config.SearchTopK)
}

func (s *service) executeLLMStep(ctx context.Context, log *logger_i.Logger, prompt string) (string, error) {
	log.Debug("Answer", "Current Step", "LLM")

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("llm_generation", time.Since(start)) }()

	return s.llmProvider.Generate(ctx, prompt)
}
