// Package pipeline runs documents through read, extract, annotate and
// evaluate, either synchronously via Checker or as queued jobs via
// Orchestrator.
package pipeline

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dgallion1/thesischeck/internal/annotate"
	"github.com/dgallion1/thesischeck/internal/container"
	"github.com/dgallion1/thesischeck/internal/docmodel"
	"github.com/dgallion1/thesischeck/internal/engine"
	"github.com/dgallion1/thesischeck/internal/extract"
)

// ReportCache stores finished reports. Get returns (nil, nil) on a miss.
type ReportCache interface {
	Get(ctx context.Context, fingerprint, hash string) (*docmodel.Report, error)
	Put(ctx context.Context, fingerprint, hash string, r *docmodel.Report) error
}

// Input is one document to check.
type Input struct {
	Data     []byte
	Filename string
	// ResearchQuestion, when set, is used instead of asking the provider.
	// Such reports are never cached.
	ResearchQuestion string
}

// StageFunc observes stage transitions of a check.
type StageFunc func(status JobStatus)

// Checker runs the per-document flow. Stages are sequential for one document.
type Checker struct {
	engine      *engine.Engine
	provider    annotate.Provider
	cache       ReportCache
	opts        extract.Options
	pdfFallback bool
	log         *slog.Logger
	tracer      trace.Tracer
}

// CheckerOption configures a Checker.
type CheckerOption func(*Checker)

func WithProvider(p annotate.Provider) CheckerOption {
	return func(c *Checker) {
		if p != nil {
			c.provider = p
		}
	}
}

func WithCache(rc ReportCache) CheckerOption {
	return func(c *Checker) { c.cache = rc }
}

func WithExtractOptions(o extract.Options) CheckerOption {
	return func(c *Checker) { c.opts = o }
}

func WithPDFFallback(enabled bool) CheckerOption {
	return func(c *Checker) { c.pdfFallback = enabled }
}

func WithCheckerLogger(log *slog.Logger) CheckerOption {
	return func(c *Checker) {
		if log != nil {
			c.log = log
		}
	}
}

func NewChecker(eng *engine.Engine, opts ...CheckerOption) *Checker {
	c := &Checker{
		engine:   eng,
		provider: annotate.Noop{},
		log:      slog.Default(),
		tracer:   otel.Tracer("github.com/dgallion1/thesischeck/internal/pipeline"),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Engine returns the rule engine.
func (c *Checker) Engine() *engine.Engine {
	return c.engine
}

// cacheFingerprint separates cached reports by rule set, provider, reader
// and extractor tuning. The same bytes read as .md and .txt differ.
func (c *Checker) cacheFingerprint(filename string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	tuning := sha256.Sum256(fmt.Appendf(nil, "%+v pdftotext=%t", c.opts.WithDefaults(), c.pdfFallback))
	return fmt.Sprintf("%s-%s-%s-%x", c.engine.Fingerprint(), c.provider.Name(), ext, tuning[:4])
}

// Check reads, extracts, annotates and evaluates one document.
func (c *Checker) Check(ctx context.Context, data []byte, filename string) (*docmodel.Report, error) {
	r, _, err := c.run(ctx, Input{Data: data, Filename: filename}, nil)
	return r, err
}

// CheckInput is Check with an optional research question override.
func (c *Checker) CheckInput(ctx context.Context, in Input) (*docmodel.Report, error) {
	r, _, err := c.run(ctx, in, nil)
	return r, err
}

// run reports whether the result came from the cache.
func (c *Checker) run(ctx context.Context, in Input, stage StageFunc) (*docmodel.Report, bool, error) {
	if stage == nil {
		stage = func(JobStatus) {}
	}
	ctx, span := c.tracer.Start(ctx, "pipeline.check", trace.WithAttributes(
		attribute.String("filename", in.Filename),
		attribute.Int("bytes", len(in.Data)),
	))
	defer span.End()

	hash := ContentHashHex(in.Data)
	log := c.log.With("filename", in.Filename, "content_hash", hash[:12])
	fp := c.cacheFingerprint(in.Filename)
	useCache := c.cache != nil && in.ResearchQuestion == ""

	if useCache {
		cached, err := c.cache.Get(ctx, fp, hash)
		if err != nil {
			log.Warn("cache lookup failed, proceeding", "error", err)
		} else if cached != nil {
			log.Info("report served from cache")
			cached.Filename = in.Filename
			span.SetAttributes(attribute.Bool("cached", true))
			return cached, true, nil
		}
	}

	stage(StatusReading)
	reader, err := container.ForFile(in.Filename)
	if err != nil {
		return nil, false, c.fail(span, err)
	}
	if pr, ok := reader.(*container.PDFReader); ok {
		pr.FallbackPdftotext = c.pdfFallback
	}
	ct, err := reader.Read(bytes.NewReader(in.Data), in.Filename)
	if err != nil {
		return nil, false, c.fail(span, fmt.Errorf("read %s: %w", in.Filename, err))
	}

	stage(StatusExtracting)
	doc := extract.Extract(ct, c.opts)
	log.Debug("extracted document",
		"paragraphs", len(doc.Paragraphs),
		"headings", len(doc.Headings),
		"sections", doc.SectionKeys(),
	)

	stage(StatusAnnotating)
	ann := c.annotations(ctx, log, doc, in.ResearchQuestion)

	stage(StatusEvaluating)
	findings, err := c.engine.Evaluate(ctx, doc, ann)
	if err != nil {
		return nil, false, c.fail(span, fmt.Errorf("evaluate: %w", err))
	}

	report := docmodel.NewReport(doc, hash, c.engine.Fingerprint(), findings, ann != nil)
	log.Info("document checked",
		"findings", len(findings),
		"errors", report.Summary.Error,
		"warnings", report.Summary.Warn,
	)

	if useCache {
		if err := c.cache.Put(ctx, fp, hash, report); err != nil {
			log.Warn("cache store failed", "error", err)
		}
	}
	return report, false, nil
}

// annotations never fails the check: provider errors are logged and
// yield nil.
func (c *Checker) annotations(ctx context.Context, log *slog.Logger, doc *docmodel.Document, override string) *docmodel.Annotations {
	if override != "" {
		return &docmodel.Annotations{ResearchQuestion: override}
	}
	ann, err := c.provider.Annotate(ctx, doc)
	if err != nil {
		log.Warn("annotation failed, continuing without", "provider", c.provider.Name(), "error", err)
		return nil
	}
	return ann
}

func (c *Checker) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
