// Package assessment runs the proficiency quiz end to end: scoring, roadmap
// generation and persistence of the outcome.
package assessment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/abhisek/learnpath/internal/journey"
	"github.com/abhisek/learnpath/internal/learner"
	"github.com/abhisek/learnpath/internal/quiz"
	"github.com/abhisek/learnpath/internal/roadmap"
	"github.com/abhisek/learnpath/internal/store"
)

// ErrInvalid marks a rejected submission.
var ErrInvalid = errors.New("invalid quiz submission")

// Outcome is a scored quiz with its roadmap.
type Outcome struct {
	ID      int64       `json:"id"`
	Name    string      `json:"name"`
	Email   string      `json:"email"`
	Result  quiz.Result `json:"result"`
	Roadmap []string    `json:"roadmap"`
}

// Service scores quizzes and keeps the results.
type Service struct {
	results  store.QuizRepo
	roadmaps *roadmap.Builder
	logger   *slog.Logger
}

// New creates a Service.
func New(results store.QuizRepo, roadmaps *roadmap.Builder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{results: results, roadmaps: roadmaps, logger: logger}
}

// Take scores answers (question id to option key), builds the roadmap and
// stores the result. Unanswered questions count as wrong.
func (s *Service) Take(ctx context.Context, name, email string, answers map[string]string) (*Outcome, error) {
	p := learner.New(name, email)
	switch {
	case p.Name == "":
		return nil, fmt.Errorf("%w: name is required", ErrInvalid)
	case p.Email == "" || !strings.Contains(p.Email, "@"):
		return nil, fmt.Errorf("%w: a valid email is required", ErrInvalid)
	}

	result := quiz.Evaluate(answers)
	lines, err := s.roadmaps.Build(ctx, p.Name, result)
	if err != nil {
		return nil, fmt.Errorf("build roadmap: %w", err)
	}

	rec := &store.QuizResult{
		LearnerEmail: p.Email,
		LearnerName:  p.Name,
		Score:        result.Score,
		Level:        result.Level,
		Roadmap:      lines,
	}
	if err := s.results.SaveQuizResult(ctx, rec); err != nil {
		return nil, fmt.Errorf("save quiz result: %w", err)
	}
	s.logger.InfoContext(ctx, "quiz scored", "email", p.Email, "score", result.Score, "level", result.Level)

	return &Outcome{ID: rec.ID, Name: p.Name, Email: p.Email, Result: result, Roadmap: lines}, nil
}

// Latest returns the learner's most recent quiz result, or nil.
func (s *Service) Latest(ctx context.Context, email string) (*store.QuizResult, error) {
	r, err := s.results.LatestQuizResult(ctx, learner.NormalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("latest quiz result: %w", err)
	}
	return r, nil
}

// Complete fills the request's missing name, level and roadmap from the
// learner's latest quiz result. Fields already set are kept.
func (s *Service) Complete(ctx context.Context, req *journey.AssignRequest) error {
	if req.Name != "" && req.Level != "" && len(req.Roadmap) > 0 {
		return nil
	}
	latest, err := s.Latest(ctx, req.Email)
	if err != nil || latest == nil {
		return err
	}
	if req.Name == "" {
		req.Name = latest.LearnerName
	}
	if req.Level == "" {
		req.Level = latest.Level
	}
	if len(req.Roadmap) == 0 {
		req.Roadmap = latest.Roadmap
	}
	return nil
}
