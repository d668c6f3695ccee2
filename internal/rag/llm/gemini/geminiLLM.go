package gemini

import (
	"context"

	"google.golang.org/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/adevara/docqa/internal/config"
	"github.com/adevara/docqa/internal/domain/faults"
	"github.com/adevara/docqa/internal/rag/llm"
	"github.com/adevara/docqa/pkg/logger_i"
)

type llmClient struct {
	client    *genai.Client
	modelName string
	logger    *logger_i.Logger
}

func NewClient(ctx context.Context, apikey string, modelName string) (llm.Provider, error) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apikey})
	if err != nil {
		return nil, faults.Wrap(faults.Provider, "creating Gemini client", err)
	}

	logger := logger_i.NewLogger("llm_gemini")
	logger.Debug("Gemini " + modelName + " client created")
	return &llmClient{client: c, modelName: modelName, logger: logger}, nil
}

func (c *llmClient) Generate(ctx context.Context, prompt string) (string, error) {
	systemInstruction := &genai.Content{
		Parts: []*genai.Part{
			{Text: config.SystemPrompt},
		},
	}

	temperature := float32(config.ModelTemperature)
	contentConfig := &genai.GenerateContentConfig{
		SystemInstruction: systemInstruction,
		Temperature:       &temperature,
		MaxOutputTokens:   int32(config.MaxAnswerTokens),
	}

	callCtx, cancel := context.WithTimeout(ctx, config.ProviderCallTimeout)
	defer cancel()

	result, err := c.client.Models.GenerateContent(
		callCtx,
		c.modelName,
		genai.Text(prompt),
		contentConfig,
	)
	if err != nil {
		return "", classify(err)
	}
	return result.Text(), nil
}

func classify(err error) error {
	if s, ok := status.FromError(err); ok {
		switch s.Code() {
		case codes.ResourceExhausted:
			return faults.ProviderFault(faults.SubRateLimited, "generation rate limit hit", err)
		case codes.DeadlineExceeded:
			return faults.ProviderFault(faults.SubTimeout, "generation call timed out", err)
		case codes.Unavailable, codes.Internal:
			return faults.ProviderFault(faults.SubTransient, "generation provider unavailable", err)
		}
	}
	return faults.ProviderFault(faults.SubTransient, "generation call failed", err)
}
