package annotate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/thesischeck/internal/docmodel"
)

// LLMProvider asks a language model for the research question of a document.
type LLMProvider struct {
	name      string
	completer Completer
	stats     *LLMStats
	log       *slog.Logger
	budget    int
	backoff   func(attempt int) time.Duration
}

// NewLLMProvider wraps completer. stats may be nil.
func NewLLMProvider(name string, completer Completer, stats *LLMStats, log *slog.Logger) *LLMProvider {
	if log == nil {
		log = slog.Default()
	}
	return &LLMProvider{
		name:      name,
		completer: completer,
		stats:     stats,
		log:       log.With("provider", name),
		budget:    DefaultPromptTokens,
		backoff:   Backoff,
	}
}

// SetPromptBudget changes the token budget of the excerpt.
func (p *LLMProvider) SetPromptBudget(tokens int) {
	if tokens > 0 {
		p.budget = tokens
	}
}

func (p *LLMProvider) Name() string { return p.name }

// Annotate retries transient failures up to MaxRetries times.
func (p *LLMProvider) Annotate(ctx context.Context, doc *docmodel.Document) (*docmodel.Annotations, error) {
	prompt := BuildPrompt(doc, p.budget)

	start := time.Now()
	var answer string
	var lastErr error
	for attempt := range MaxRetries {
		answer, lastErr = p.completer.Complete(ctx, SystemPrompt, prompt)
		if lastErr == nil || !IsRetryable(lastErr) {
			break
		}
		if attempt == MaxRetries-1 {
			break
		}
		delay := p.backoff(attempt)
		p.log.Warn("retrying annotation", "attempt", attempt+1, "delay", delay, "error", lastErr)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			p.recordFailure(start)
			return nil, ctx.Err()
		}
	}
	if lastErr != nil {
		p.recordFailure(start)
		return nil, fmt.Errorf("%s annotate: %w", p.name, lastErr)
	}
	if p.stats != nil {
		p.stats.Record(time.Since(start).Milliseconds())
	}

	question := ParseResearchQuestion(answer)
	if question == "" {
		p.log.Debug("annotation rejected", "answer", clip(answer, 120))
		return nil, nil
	}
	p.log.Debug("annotation accepted", "filename", doc.Filename, "question", clip(question, 120))
	return &docmodel.Annotations{ResearchQuestion: question}, nil
}

func (p *LLMProvider) recordFailure(start time.Time) {
	if p.stats != nil {
		p.stats.RecordFailure(time.Since(start).Milliseconds())
	}
}
