package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/learnpath/internal/assessment"
	"github.com/abhisek/learnpath/internal/config"
	"github.com/abhisek/learnpath/internal/journey"
	"github.com/abhisek/learnpath/internal/llm"
	"github.com/abhisek/learnpath/internal/logging"
	"github.com/abhisek/learnpath/internal/notify"
	"github.com/abhisek/learnpath/internal/observability"
	"github.com/abhisek/learnpath/internal/progress"
	"github.com/abhisek/learnpath/internal/roadmap"
	"github.com/abhisek/learnpath/internal/roster"
	"github.com/abhisek/learnpath/internal/store"
	"github.com/abhisek/learnpath/internal/taskgen"
	"github.com/abhisek/learnpath/internal/uploads"
)

// runtime holds the services a command needs, wired from configuration.
type runtime struct {
	cfg     config.Config
	logger  *slog.Logger
	store   *store.Store
	metrics *observability.Metrics
	uploads *uploads.Store

	assessment *assessment.Service
	scheduler  *journey.Scheduler
	lifecycle  *journey.Lifecycle
	progress   *progress.Reporter
	roster     *roster.Roster
}

// openStore loads configuration and opens only the database. Used by
// commands that inspect stored data.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

func openRuntime(ctx context.Context, cmd *cobra.Command) (*runtime, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}

	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	dir, err := resolveUploadsDir(cfg)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("prepare uploads dir: %w", err)
	}
	files := uploads.New(dir)

	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	// A missing or misconfigured provider degrades to template output.
	var provider llm.Provider
	p, err := llm.NewProvider(ctx, cfg.LLM, st.EventRepo(), logger)
	switch {
	case errors.Is(err, llm.ErrDisabled):
		logger.Debug("LLM provider disabled, using templates")
	case err != nil:
		logger.Warn("LLM provider unavailable, using templates", "error", err)
	default:
		provider = p
		logger.Debug("LLM provider ready", "provider", cfg.LLM.Provider, "model", p.ModelID())
	}

	var primary taskgen.Generator
	if provider != nil {
		primary = taskgen.NewLLMGenerator(provider, taskgen.DefaultConfig())
	}
	gen := taskgen.WithFallback(primary, taskgen.TemplateGenerator{}, logger, func(taskgen.Input, error) {
		metrics.ObserveFallback(llm.PurposeTask)
	})

	roadmaps := roadmap.NewBuilder(provider, roadmap.DefaultConfig(), logger)
	if provider != nil {
		roadmaps.OnFallback = func(error) { metrics.ObserveFallback(llm.PurposeRoadmap) }
	}

	notifier := notify.New(cfg.SMTP, logger)
	opts := []journey.Option{journey.WithMetrics(metrics)}

	return &runtime{
		cfg:        cfg,
		logger:     logger,
		store:      st,
		metrics:    metrics,
		uploads:    files,
		assessment: assessment.New(st.QuizRepo(), roadmaps, logger),
		scheduler:  journey.NewScheduler(st.TaskRepo(), gen, notifier, logger, opts...),
		lifecycle:  journey.NewLifecycle(st.TaskRepo(), files, notifier, logger, opts...),
		progress:   progress.NewReporter(st.TaskRepo(), st.QuizRepo()),
		roster:     roster.New(st.TaskRepo(), st.QuizRepo(), files, logger),
	}, nil
}

func (rt *runtime) Close() error {
	return rt.store.Close()
}
