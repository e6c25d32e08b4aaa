// Package roster lists and removes learners across every store that holds
// their data.
package roster

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/abhisek/learnpath/internal/learner"
	"github.com/abhisek/learnpath/internal/store"
	"github.com/abhisek/learnpath/internal/uploads"
)

// Roster combines the task, quiz and upload stores.
type Roster struct {
	tasks   store.TaskRepo
	quiz    store.QuizRepo
	uploads *uploads.Store
	logger  *slog.Logger
}

// New creates a Roster. files may be nil when uploads are not stored.
func New(tasks store.TaskRepo, quiz store.QuizRepo, files *uploads.Store, logger *slog.Logger) *Roster {
	if logger == nil {
		logger = slog.Default()
	}
	return &Roster{tasks: tasks, quiz: quiz, uploads: files, logger: logger}
}

// List returns every known learner ordered by email. The quiz name wins
// when both stores know the learner.
func (r *Roster) List(ctx context.Context) ([]store.LearnerRef, error) {
	fromQuiz, err := r.quiz.Learners(ctx)
	if err != nil {
		return nil, fmt.Errorf("quiz learners: %w", err)
	}
	fromTasks, err := r.tasks.Learners(ctx)
	if err != nil {
		return nil, fmt.Errorf("task learners: %w", err)
	}

	byEmail := make(map[string]store.LearnerRef, len(fromQuiz)+len(fromTasks))
	for _, ref := range fromTasks {
		byEmail[ref.Email] = ref
	}
	for _, ref := range fromQuiz {
		byEmail[ref.Email] = ref
	}

	out := make([]store.LearnerRef, 0, len(byEmail))
	for _, ref := range byEmail {
		out = append(out, ref)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

// Delete removes the learner's tasks, quiz results and uploaded files.
func (r *Roster) Delete(ctx context.Context, email string) (store.DeleteCounts, error) {
	email = learner.NormalizeEmail(email)
	var counts store.DeleteCounts

	n, err := r.tasks.DeleteLearner(ctx, email)
	if err != nil {
		return counts, fmt.Errorf("delete tasks: %w", err)
	}
	counts.Tasks = n

	n, err = r.quiz.DeleteLearner(ctx, email)
	if err != nil {
		return counts, fmt.Errorf("delete quiz results: %w", err)
	}
	counts.QuizResults = n

	if r.uploads != nil {
		if err := r.uploads.RemoveLearner(email); err != nil {
			return counts, err
		}
	}
	r.logger.InfoContext(ctx, "learner deleted", "email", email, "tasks", counts.Tasks, "quiz_results", counts.QuizResults)
	return counts, nil
}
