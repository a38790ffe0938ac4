package annotate

import (
	"context"
	"fmt"
	"log/slog"
)

// Settings select and configure a provider.
type Settings struct {
	Kind         string // none, claude or gemini
	APIKey       string
	Model        string
	BaseURL      string
	PromptTokens int
}

// New builds the provider named by s.Kind. The returned close func is never nil.
func New(ctx context.Context, s Settings, stats *LLMStats, log *slog.Logger) (Provider, func(), error) {
	nop := func() {}
	switch s.Kind {
	case "", "none":
		return Noop{}, nop, nil
	case "claude":
		if s.APIKey == "" {
			return nil, nop, fmt.Errorf("claude provider requires an api key")
		}
		model := s.Model
		if model == "" {
			model = "claude-haiku-4-5-20251001"
		}
		c := NewClaudeClient(s.APIKey, model, s.BaseURL)
		p := NewLLMProvider("claude", c, stats, log)
		p.SetPromptBudget(s.PromptTokens)
		return p, c.Close, nil
	case "gemini":
		c, err := NewGeminiClient(ctx, s.APIKey, s.Model)
		if err != nil {
			return nil, nop, err
		}
		p := NewLLMProvider("gemini", c, stats, log)
		p.SetPromptBudget(s.PromptTokens)
		return p, nop, nil
	}
	return nil, nop, fmt.Errorf("unknown ai provider %q", s.Kind)
}
