package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/thesischeck/internal/annotate"
	"github.com/dgallion1/thesischeck/internal/config"
	"github.com/dgallion1/thesischeck/internal/docmodel"
	"github.com/dgallion1/thesischeck/internal/engine"
	"github.com/dgallion1/thesischeck/internal/pipeline"
	"github.com/dgallion1/thesischeck/internal/rules"
)

var errFindings = errors.New("findings at or above the failure threshold")

func checkCmd() *cobra.Command {
	var format string
	var tuningPath string
	var aiProvider string
	var question string
	var failOn string
	var verbose bool

	cmd := &cobra.Command{
		Use:   "check <file>...",
		Short: "Check one or more documents and print a report",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "text" && format != "json" {
				return fmt.Errorf("unknown format %q (want text or json)", format)
			}
			threshold, err := parseFailOn(failOn)
			if err != nil {
				return err
			}

			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			log := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

			tun, err := config.LoadTuning(tuningPath)
			if err != nil {
				return err
			}

			cfg := config.Load()
			cfg.AIProvider = aiProvider
			settings := cfg.AnnotateSettings()
			settings.PromptTokens = tun.Annotate.PromptTokens
			provider, closeProvider, err := annotate.New(cmd.Context(), settings, annotate.NewLLMStats(time.Hour), log)
			if err != nil {
				return err
			}
			defer closeProvider()

			eng := engine.New(rules.Registry(), engine.WithWorkers(tun.Engine.Workers), engine.WithLogger(log))
			checker := pipeline.NewChecker(eng,
				pipeline.WithProvider(provider),
				pipeline.WithExtractOptions(tun.Extract),
				pipeline.WithPDFFallback(cfg.PDFFallbackPdftotext),
				pipeline.WithCheckerLogger(log),
			)

			failed := false
			reports := make([]*docmodel.Report, 0, len(args))
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("read %s: %w", path, err)
				}
				report, err := checker.CheckInput(cmd.Context(), pipeline.Input{
					Data:             data,
					Filename:         filepath.Base(path),
					ResearchQuestion: question,
				})
				if err != nil {
					return fmt.Errorf("check %s: %w", path, err)
				}
				reports = append(reports, report)
				if exceeds(report.Summary, threshold) {
					failed = true
				}
			}

			out := cmd.OutOrStdout()
			if format == "json" {
				if err := writeJSON(out, reports); err != nil {
					return err
				}
			} else {
				for i, r := range reports {
					if i > 0 {
						fmt.Fprintln(out)
					}
					writeText(out, r)
				}
			}
			if failed {
				return errFindings
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text|json")
	cmd.Flags().StringVar(&tuningPath, "tuning", "", "YAML file with extractor and engine tunables")
	cmd.Flags().StringVar(&aiProvider, "ai", "none", "AI annotation provider: none|claude|gemini")
	cmd.Flags().StringVar(&question, "research-question", "", "research question to use instead of AI annotation")
	cmd.Flags().StringVar(&failOn, "fail-on", "none", "exit non-zero on findings of this severity or worse: none|warn|error")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log debug output to stderr")
	return cmd
}

func parseFailOn(s string) (docmodel.Severity, error) {
	switch s {
	case "", "none":
		return "", nil
	case "warn":
		return docmodel.SeverityWarn, nil
	case "error":
		return docmodel.SeverityError, nil
	}
	return "", fmt.Errorf("unknown --fail-on value %q", s)
}

func exceeds(sum docmodel.Summary, threshold docmodel.Severity) bool {
	switch threshold {
	case docmodel.SeverityError:
		return sum.Error > 0
	case docmodel.SeverityWarn:
		return sum.Error+sum.Warn > 0
	}
	return false
}

func writeJSON(w io.Writer, reports []*docmodel.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if len(reports) == 1 {
		return enc.Encode(reports[0])
	}
	return enc.Encode(reports)
}

var severityLabel = map[docmodel.Severity]string{
	docmodel.SeverityInfo:  "INFO ",
	docmodel.SeverityWarn:  "WARN ",
	docmodel.SeverityError: "ERROR",
}

func writeText(w io.Writer, r *docmodel.Report) {
	fmt.Fprintf(w, "%s  (rule set %s)\n", r.Filename, r.RuleSet)
	fmt.Fprintf(w, "sections: %s\n", strings.Join(r.Stats.Sections, ", "))
	fmt.Fprintf(w, "%d errors, %d warnings, %d info\n\n", r.Summary.Error, r.Summary.Warn, r.Summary.Info)
	for _, f := range r.Findings {
		fmt.Fprintf(w, "%s %-11s %s\n", severityLabel[f.Severity], f.RuleID, f.Message)
		if f.Evidence != "" {
			fmt.Fprintf(w, "      %s\n", f.Evidence)
		}
	}
}
