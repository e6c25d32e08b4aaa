// Package taskgen produces the text of a learner's numbered task.
//
// Task text is an opaque blob to the rest of the system. Generation is
// sequential: each task sees only the text of the task immediately before
// it, never the whole history.
package taskgen

import (
	"context"
	"errors"
	"log/slog"
)

// ErrUnavailable is returned when the generator has no working backend.
var ErrUnavailable = errors.New("task generator unavailable")

// Input is the context for generating one task.
type Input struct {
	LearnerName string
	Level       string

	// Roadmap is an excerpt of the learner's improvement plan.
	Roadmap []string

	Number int

	// Previous is the text of task Number-1. Empty for task 1.
	Previous string
}

// Generator produces the description of a single task.
type Generator interface {
	Generate(ctx context.Context, in Input) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, in Input) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, in Input) (string, error) {
	return f(ctx, in)
}

// FallbackHook is told about every primary failure that was papered over.
type FallbackHook func(in Input, err error)

// fallbackGenerator tries primary and falls back on any error.
type fallbackGenerator struct {
	primary  Generator
	fallback Generator
	logger   *slog.Logger
	onFall   FallbackHook
}

// WithFallback returns a Generator that never fails because of primary:
// any primary error is logged and fallback is used instead. A nil primary
// always uses fallback. hook may be nil.
func WithFallback(primary, fallback Generator, logger *slog.Logger, hook FallbackHook) Generator {
	if primary == nil {
		return fallback
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &fallbackGenerator{primary: primary, fallback: fallback, logger: logger, onFall: hook}
}

func (g *fallbackGenerator) Generate(ctx context.Context, in Input) (string, error) {
	text, err := g.primary.Generate(ctx, in)
	if err == nil && text != "" {
		return text, nil
	}
	if err == nil {
		err = errors.New("empty task text")
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	g.logger.WarnContext(ctx, "task generation failed, using template",
		"task_number", in.Number,
		"error", err,
	)
	if g.onFall != nil {
		g.onFall(in, err)
	}
	return g.fallback.Generate(ctx, in)
}
