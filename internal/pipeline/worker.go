package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/thesischeck/internal/docmodel"
	"github.com/dgallion1/thesischeck/internal/pathstore"
)

// PublishedReport is the summary written to pathstore for a finished job.
type PublishedReport struct {
	DocID       string           `json:"doc_id"`
	JobID       string           `json:"job_id"`
	Filename    string           `json:"filename"`
	ContentHash string           `json:"content_hash"`
	RuleSet     string           `json:"rule_set"`
	Summary     docmodel.Summary `json:"summary"`
	Errors      []string         `json:"errors"`
	CreatedAt   string           `json:"created_at"`
}

// Worker processes a single document job.
type Worker struct {
	checker   *Checker
	pathstore *pathstore.Client
	log       *slog.Logger
}

// NewWorker creates a worker. ps may be nil, which disables publishing.
func NewWorker(checker *Checker, ps *pathstore.Client, log *slog.Logger) *Worker {
	return &Worker{
		checker:   checker,
		pathstore: ps,
		log:       log,
	}
}

// Process runs the check for a job and publishes the result.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "doc_id", job.DocID, "user_id", job.UserID)

	phase := StatusQueued
	in := Input{
		Data:             job.FileData(),
		Filename:         job.Filename,
		ResearchQuestion: job.ResearchQuestion,
	}
	report, cached, err := w.checker.run(ctx, in, func(s JobStatus) {
		phase = s
		job.SetStatus(s, string(s))
	})
	if err != nil {
		log.Error("check failed", "phase", phase, "error", err)
		job.AddError(fmt.Sprintf("%s: %s", phase, err))
		job.SetFileData(nil)
		job.SetStatus(StatusFailed, string(phase))
		return
	}
	job.SetReport(report)

	if w.pathstore != nil && job.UserID != "" {
		if err := w.publish(ctx, job, report); err != nil {
			log.Error("publish failed", "error", err)
			job.AddError(fmt.Sprintf("publish: %s", err))
		}
	}

	if cached {
		job.SetStatus(StatusCached, "done")
	} else {
		job.SetStatus(StatusCompleted, "done")
	}
	log.Info("job finished", "cached", cached, "findings", len(report.Findings))
}

func (w *Worker) publish(ctx context.Context, job *Job, report *docmodel.Report) error {
	snap := job.Snapshot()
	return w.pathstore.PutNode(ctx, pathstore.ReportKey(job.UserID, job.DocID), pathstore.NodeRequest{
		Value: PublishedReport{
			DocID:       job.DocID,
			JobID:       job.ID,
			Filename:    job.Filename,
			ContentHash: report.ContentHash,
			RuleSet:     report.RuleSet,
			Summary:     report.Summary,
			Errors:      snap.Errors,
			CreatedAt:   job.CreatedAt.Format(time.RFC3339),
		},
		Source: "thesischeck:" + job.ID,
	})
}
