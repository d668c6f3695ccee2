package openaiLLM

import (
	"context"
	"errors"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/adevara/docqa/internal/config"
	"github.com/adevara/docqa/internal/domain/faults"
	"github.com/adevara/docqa/internal/rag/llm"
	"github.com/adevara/docqa/pkg/logger_i"
)

type client struct {
	api    openai.Client
	model  string
	logger *logger_i.Logger
}

func NewClient(apiKey string, baseURL string) (llm.Provider, error) {
	if apiKey == "" {
		return nil, faults.New(faults.Provider, "openai api key is not set")
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &client{
		api:    openai.NewClient(opts...),
		model:  config.OpenAIChatModel,
		logger: logger_i.NewLogger("openai_llm"),
	}, nil
}

func (c *client) Generate(ctx context.Context, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, config.ProviderCallTimeout)
	defer cancel()

	res, err := c.api.Chat.Completions.New(callCtx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(config.SystemPrompt),
			openai.UserMessage(prompt),
		},
		Model:       c.model,
		Temperature: openai.Float(config.ModelTemperature),
		MaxTokens:   openai.Int(config.MaxAnswerTokens),
	})
	if err != nil {
		return "", classify(err)
	}
	if len(res.Choices) == 0 {
		return "", faults.ProviderFault(faults.SubTransient, "empty completion response", nil)
	}
	return res.Choices[0].Message.Content, nil
}

func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return faults.ProviderFault(faults.SubTimeout, "generation call timed out", err)
	}

	var apierr *openai.Error
	if errors.As(err, &apierr) {
		switch {
		case apierr.StatusCode == 429:
			return faults.ProviderFault(faults.SubRateLimited, "generation rate limit hit", err)
		case apierr.StatusCode >= 500:
			return faults.ProviderFault(faults.SubTransient, "generation provider unavailable", err)
		}
		return faults.ProviderFault(faults.SubNone, "generation call rejected", err)
	}
	return faults.ProviderFault(faults.SubTransient, "generation call failed", err)
}
