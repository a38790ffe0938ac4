package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/thesischeck/internal/annotate"
	"github.com/dgallion1/thesischeck/internal/api"
	"github.com/dgallion1/thesischeck/internal/cache"
	"github.com/dgallion1/thesischeck/internal/config"
	"github.com/dgallion1/thesischeck/internal/engine"
	"github.com/dgallion1/thesischeck/internal/pathstore"
	"github.com/dgallion1/thesischeck/internal/pipeline"
	"github.com/dgallion1/thesischeck/internal/rules"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	tun, err := config.LoadTuning(cfg.TuningFile)
	if err != nil {
		log.Error("invalid tuning file", "path", cfg.TuningFile, "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize clients.
	stats := annotate.NewLLMStats(cfg.StatsWindow)
	settings := cfg.AnnotateSettings()
	settings.PromptTokens = tun.Annotate.PromptTokens
	provider, closeProvider, err := annotate.New(ctx, settings, stats, log)
	if err != nil {
		log.Error("ai provider", "error", err)
		os.Exit(1)
	}

	var ps *pathstore.Client
	if cfg.PathstoreURL != "" {
		ps = pathstore.NewClient(cfg.PathstoreURL, cfg.PathstoreAPIKey)
	}

	workers := cfg.EngineWorkers
	if tun.Engine.Workers > 0 {
		workers = tun.Engine.Workers
	}
	eng := engine.New(rules.Registry(), engine.WithWorkers(workers), engine.WithLogger(log))
	opts := []pipeline.CheckerOption{
		pipeline.WithProvider(provider),
		pipeline.WithExtractOptions(tun.Extract),
		pipeline.WithPDFFallback(cfg.PDFFallbackPdftotext),
		pipeline.WithCheckerLogger(log),
	}

	var rc *cache.ReportCache
	if cfg.RedisURL != "" {
		rc, err = cache.Dial(ctx, cfg.RedisURL, cfg.CacheTTL)
		if err != nil {
			log.Warn("report cache disabled", "error", err)
		} else {
			opts = append(opts, pipeline.WithCache(rc))
		}
	}

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, pipeline.NewChecker(eng, opts...), ps, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	var srvStats *annotate.LLMStats
	if provider.Name() != (annotate.Noop{}).Name() {
		srvStats = stats
	}
	srv := api.NewServer(orch, srvStats, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		closeProvider()
		if ps != nil {
			ps.Close()
		}
		if rc != nil {
			rc.Close()
		}
	}()

	log.Info("starting thesischeck",
		"port", cfg.Port,
		"ai_provider", provider.Name(),
		"rule_set", eng.Fingerprint(),
		"cache", rc != nil,
		"publish", ps != nil,
	)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
