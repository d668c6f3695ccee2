package llm

import "context"

// Provider is a chat-completion capability. The prompt already carries the
// grounding context; implementations add the fixed system instruction and
// sampling parameters.
type Provider interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
