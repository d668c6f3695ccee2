package rag

import (
	"context"
	"strings"

	"github.com/adevara/docqa/internal/config"
	"github.com/adevara/docqa/internal/domain/commonModels"
	"github.com/adevara/docqa/internal/domain/faults"
	"github.com/adevara/docqa/internal/rag/embedding"
	"github.com/adevara/docqa/internal/rag/llm"
	"github.com/adevara/docqa/internal/rag/vectorDB"
	"github.com/adevara/docqa/pkg/logger_i"
)

// Service is the retrieval pipeline. Handlers only see this interface; the
// provider clients behind it are injected so tests can substitute fakes.
type Service interface {
	Answer(ctx context.Context, query string) (commonModels.QueryResult, error)
}

type service struct {
	index       vectorDB.Store
	llmProvider llm.Provider
	embedder    embedding.Embedder
	logger      *logger_i.Logger
}

// NewService constructor
func NewService(index vectorDB.Store, llm llm.Provider, em embedding.Embedder) Service {
	return &service{
		index:       index,
		llmProvider: llm,
		embedder:    em,
		logger:      logger_i.NewLogger("RAG Service :"),
	}
}

// Answer embeds the query, retrieves the most relevant passages with a
// hybrid search, and asks the generation model for a context-bound answer.
// Every call re-embeds and re-searches; nothing is cached at this layer.
func (s *service) Answer(ctx context.Context, query string) (commonModels.QueryResult, error) {
	if strings.TrimSpace(query) == "" {
		return commonModels.QueryResult{}, faults.New(faults.Validation, "no query provided")
	}

	traceId, _ := ctx.Value(config.TRACE_ID_KEY).(string)
	inMethodLogger := s.logger.With("traceId", traceId)

	// Embedding
	queryVector, err := s.executeEmbeddingStep(ctx, inMethodLogger, query)
	if err != nil {
		inMethodLogger.Error("EMBEDDING_FAILURE", "error", err)
		return commonModels.QueryResult{}, err
	}

	// Hybrid Search
	hits, err := s.executeSearchStep(ctx, inMethodLogger, query, queryVector)
	if err != nil {
		inMethodLogger.Error("SEARCH_FAILURE", "error", err)
		return commonModels.QueryResult{}, err
	}

	// LLM Generation
	answer, err := s.executeLLMStep(ctx, inMethodLogger, buildPrompt(query, hits))
	if err != nil {
		inMethodLogger.Error("LLM_GENERATION_FAILURE", "error", err)
		return commonModels.QueryResult{}, err
	}

	return commonModels.QueryResult{
		Answer:    answer,
		Citations: buildCitations(hits),
	}, nil
}
