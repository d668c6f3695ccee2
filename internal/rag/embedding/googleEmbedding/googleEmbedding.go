package googleEmbedding

import (
	"context"
	"time"

	"google.golang.org/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/adevara/docqa/internal/config"
	"github.com/adevara/docqa/internal/domain/faults"
	"github.com/adevara/docqa/internal/rag/embedding"
	"github.com/adevara/docqa/pkg/logger_i"
)

var dimension int32 = config.EmbeddingOutputDimensionality

type client struct {
	genAi  *genai.Client
	model  string
	logger *logger_i.Logger
}

func NewClient(ctx context.Context, apikey string, modelName string) (embedding.Embedder, error) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apikey})
	if err != nil {
		return nil, faults.Wrap(faults.Provider, "creating Google embedding client", err)
	}

	logger := logger_i.NewLogger("google_embedding")
	logger.Debug("Google Embedding model name: " + modelName)
	return &client{genAi: c, model: modelName, logger: logger}, nil
}

func (c *client) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	result, err := c.doCall(ctx, genai.Text(text))
	if err != nil {
		return nil, classify(err)
	}
	if len(result.Embeddings) == 0 {
		return nil, faults.ProviderFault(faults.SubTransient, "empty embedding response", nil)
	}
	return result.Embeddings[0].Values, nil
}

func (c *client) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	res, err := c.doCall(ctx, getContent(chunks))
	if err != nil {
		if doRetry(err, c.logger) {
			c.logger.Debug("Retrying in 5 seconds")
			time.Sleep(5 * time.Second)
			res, err = c.doCall(ctx, getContent(chunks))
		}
		if err != nil {
			c.logger.Error("Error getting Embeddings from Google", "error", err)
			return nil, classify(err)
		}
	}

	var embeddingResults [][]float32
	for _, r := range res.Embeddings {
		embeddingResults = append(embeddingResults, r.Values)
	}
	return embeddingResults, nil
}

func (c *client) doCall(ctx context.Context, content []*genai.Content) (*genai.EmbedContentResponse, error) {
	callCtx, cancel := context.WithTimeout(ctx, config.ProviderCallTimeout)
	defer cancel()
	return c.genAi.Models.EmbedContent(callCtx, c.model, content, &genai.EmbedContentConfig{OutputDimensionality: &dimension, TaskType: "RETRIEVAL_DOCUMENT"})
}

func getContent(chunks []string) []*genai.Content {
	contentsToSend := make([]*genai.Content, 0, len(chunks))
	for _, chunk := range chunks {
		contentsToSend = append(contentsToSend, &genai.Content{
			Parts: []*genai.Part{{Text: chunk}},
		})
	}
	return contentsToSend
}

func doRetry(err error, log *logger_i.Logger) bool {
	if s, ok := status.FromError(err); ok {
		if s.Code() == codes.ResourceExhausted {
			log.Error("Rate limit hit! ", "error", err)
			return true
		}
	}
	return false
}

func classify(err error) error {
	if err == nil {
		return nil
	}
	if s, ok := status.FromError(err); ok {
		switch s.Code() {
		case codes.ResourceExhausted:
			return faults.ProviderFault(faults.SubRateLimited, "embedding rate limit hit", err)
		case codes.DeadlineExceeded:
			return faults.ProviderFault(faults.SubTimeout, "embedding call timed out", err)
		case codes.InvalidArgument:
			return faults.ProviderFault(faults.SubOversized, "embedding input rejected", err)
		case codes.Unavailable, codes.Internal:
			return faults.ProviderFault(faults.SubTransient, "embedding provider unavailable", err)
		}
	}
	return faults.ProviderFault(faults.SubTransient, "embedding call failed", err)
}
