package openaiEmbedding

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/adevara/docqa/internal/config"
	"github.com/adevara/docqa/internal/domain/faults"
	"github.com/adevara/docqa/internal/rag/embedding"
	"github.com/adevara/docqa/pkg/logger_i"
)

type client struct {
	api    openai.Client
	model  openai.EmbeddingModel
	logger *logger_i.Logger
}

// NewClient builds an OpenAI embedding client. The base URL is optional and
// only set for gateway deployments.
func NewClient(apiKey string, baseURL string) (embedding.Embedder, error) {
	if apiKey == "" {
		return nil, faults.New(faults.Provider, "openai api key is not set")
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &client{
		api:    openai.NewClient(opts...),
		model:  openai.EmbeddingModel(config.OpenAIEmbeddingModel),
		logger: logger_i.NewLogger("openai_embedding"),
	}, nil
}

func (c *client) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.embed(ctx, openai.EmbeddingNewParamsInputUnion{OfString: openai.String(text)})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, faults.ProviderFault(faults.SubTransient, "empty embedding response", nil)
	}
	return vectors[0], nil
}

func (c *client) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	if len(chunks) == 0 {
		return nil, nil
	}
	return c.embed(ctx, openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: chunks})
}

func (c *client) embed(ctx context.Context, input openai.EmbeddingNewParamsInputUnion) ([][]float32, error) {
	res, err := c.doCall(ctx, input)
	if err != nil {
		fault := classify(err)
		if faults.Retryable(fault) {
			c.logger.Warn("Embedding call failed, retrying once", "error", err)
			time.Sleep(2 * time.Second)
			res, err = c.doCall(ctx, input)
			if err != nil {
				return nil, classify(err)
			}
		} else {
			return nil, fault
		}
	}

	vectors := make([][]float32, 0, len(res.Data))
	for _, d := range res.Data {
		vec := make([]float32, len(d.Embedding))
		for i, v := range d.Embedding {
			vec[i] = float32(v)
		}
		vectors = append(vectors, vec)
	}
	return vectors, nil
}

func (c *client) doCall(ctx context.Context, input openai.EmbeddingNewParamsInputUnion) (*openai.CreateEmbeddingResponse, error) {
	callCtx, cancel := context.WithTimeout(ctx, config.ProviderCallTimeout)
	defer cancel()

	return c.api.Embeddings.New(callCtx, openai.EmbeddingNewParams{
		Input: input,
		Model: c.model,
	})
}

// classify maps transport and API errors onto the provider fault sub-kinds.
func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return faults.ProviderFault(faults.SubTimeout, "embedding call timed out", err)
	}

	var apierr *openai.Error
	if errors.As(err, &apierr) {
		switch {
		case apierr.StatusCode == 429:
			return faults.ProviderFault(faults.SubRateLimited, "embedding rate limit hit", err)
		case apierr.StatusCode == 400 && strings.Contains(strings.ToLower(apierr.Error()), "context length"):
			return faults.ProviderFault(faults.SubOversized, "embedding input exceeds model context", err)
		case apierr.StatusCode >= 500:
			return faults.ProviderFault(faults.SubTransient, "embedding provider unavailable", err)
		}
		return faults.ProviderFault(faults.SubNone, "embedding call rejected", err)
	}
	return faults.ProviderFault(faults.SubTransient, "embedding call failed", err)
}
