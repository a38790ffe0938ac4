// Package engine runs a rule set against one document model.
package engine

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dgallion1/thesischeck/internal/docmodel"
	"github.com/dgallion1/thesischeck/internal/rules"
)

// DefaultWorkers bounds concurrent rule evaluation when no option is given.
const DefaultWorkers = 4

const noObservations = "rule produced no observations"

// Engine evaluates rules in isolation and merges their findings in
// registry order.
type Engine struct {
	rules   []rules.Rule
	workers int
	log     *slog.Logger
	tracer  trace.Tracer
}

// Option configures an Engine.
type Option func(*Engine)

// WithWorkers sets the number of rules evaluated concurrently.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithLogger sets the logger used for rule faults.
func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithTracer overrides the global tracer.
func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) {
		if t != nil {
			e.tracer = t
		}
	}
}

// New creates an engine over rs. The slice order is the merge order.
func New(rs []rules.Rule, opts ...Option) *Engine {
	e := &Engine{
		rules:   rs,
		workers: DefaultWorkers,
		log:     slog.Default(),
		tracer:  otel.Tracer("github.com/dgallion1/thesischeck/internal/engine"),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Rules returns the rule set in merge order.
func (e *Engine) Rules() []rules.Rule {
	return e.rules
}

// Fingerprint identifies the rule set. It changes whenever rules are
// added, removed or reordered.
func (e *Engine) Fingerprint() string {
	h := sha256.Sum256([]byte(strings.Join(rules.IDs(e.rules), "\n")))
	return fmt.Sprintf("%x", h[:8])
}

// Evaluate runs every rule against doc. A rule that panics contributes one
// error finding; a rule that returns nothing contributes one info finding.
// The only error returned is the context's.
func (e *Engine) Evaluate(ctx context.Context, doc *docmodel.Document, ai *docmodel.Annotations) ([]docmodel.Finding, error) {
	ctx, span := e.tracer.Start(ctx, "engine.evaluate", trace.WithAttributes(
		attribute.String("document.filename", doc.Filename),
		attribute.Int("rules.count", len(e.rules)),
		attribute.Int("engine.workers", e.workers),
	))
	defer span.End()

	results := make([][]docmodel.Finding, len(e.rules))
	sem := make(chan struct{}, e.workers)
	var wg sync.WaitGroup

schedule:
	for i, r := range e.rules {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			break schedule
		}
		wg.Add(1)
		go func(i int, r rules.Rule) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = e.run(ctx, r, doc, ai)
		}(i, r)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
	}
	if err := ctx.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "evaluation interrupted")
		return nil, err
	}

	var findings []docmodel.Finding
	for _, fs := range results {
		findings = append(findings, fs...)
	}
	span.SetAttributes(attribute.Int("findings.count", len(findings)))
	return findings, nil
}

// run evaluates a single rule and contains its faults.
func (e *Engine) run(ctx context.Context, r rules.Rule, doc *docmodel.Document, ai *docmodel.Annotations) (out []docmodel.Finding) {
	_, span := e.tracer.Start(ctx, "rule.evaluate", trace.WithAttributes(
		attribute.String("rule.id", r.ID()),
		attribute.String("rule.category", r.Category()),
	))
	defer span.End()

	defer func() {
		if rec := recover(); rec != nil {
			e.log.Error("rule panicked", "rule_id", r.ID(), "panic", rec)
			span.SetStatus(codes.Error, "rule panicked")
			out = []docmodel.Finding{{
				RuleID:   r.ID(),
				Category: r.Category(),
				Severity: docmodel.SeverityError,
				Message:  "Rule failed with an internal error",
				Evidence: fmt.Sprint(rec),
			}}
		}
	}()

	out = r.Evaluate(doc, ai)
	if len(out) == 0 {
		out = []docmodel.Finding{{
			RuleID:   r.ID(),
			Category: r.Category(),
			Severity: docmodel.SeverityInfo,
			Message:  noObservations,
		}}
	}
	span.SetAttributes(attribute.Int("findings.count", len(out)))
	return out
}
