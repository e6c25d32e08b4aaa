package journey

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/abhisek/learnpath/internal/cadence"
	"github.com/abhisek/learnpath/internal/learner"
	"github.com/abhisek/learnpath/internal/notify"
	"github.com/abhisek/learnpath/internal/store"
	"github.com/abhisek/learnpath/internal/uploads"
)

// ErrUploadsDisabled is returned by Attach when no upload store is set.
var ErrUploadsDisabled = errors.New("uploads are not configured")

// Submission is the outcome of completing a task.
type Submission struct {
	TaskID        int64
	SubmittedDate cadence.Date
	EmailSent     bool
}

// Lifecycle records submissions and attachments and lists a learner's tasks.
type Lifecycle struct {
	deps
	files *uploads.Store
}

// NewLifecycle creates a Lifecycle. A nil notifier disables notifications
// and a nil files store disables attachments.
func NewLifecycle(tasks store.TaskRepo, files *uploads.Store, notifier notify.Notifier, logger *slog.Logger, opts ...Option) *Lifecycle {
	return &Lifecycle{deps: newDeps(tasks, notifier, logger, opts), files: files}
}

// Submit completes the learner's pending task. Content is stored verbatim.
func (l *Lifecycle) Submit(ctx context.Context, email string, taskID int64, content string) (*Submission, error) {
	email = learner.NormalizeEmail(email)
	switch {
	case email == "":
		l.metrics.ObserveSubmission("invalid")
		return nil, &ValidationError{Field: "email", Reason: "required"}
	case taskID <= 0:
		l.metrics.ObserveSubmission("invalid")
		return nil, &ValidationError{Field: "task_id", Reason: "must be positive"}
	}

	today := cadence.DateOf(l.now())
	n, err := l.tasks.UpdateTask(ctx, taskID, email, store.TaskUpdate{
		ExpectStatus:      store.StatusPending,
		Status:            store.StatusCompleted,
		SubmittedDate:     &today,
		SubmissionContent: &content,
	})
	if err != nil {
		l.metrics.ObserveSubmission("error")
		return nil, fmt.Errorf("submit task %d: %w", taskID, err)
	}
	if n == 0 {
		l.metrics.ObserveSubmission("not_found")
		return nil, ErrNotFoundOrUnauthorized
	}
	l.metrics.ObserveSubmission("completed")

	subject, body := notify.SubmissionMessage()
	sent := l.notifier.Send(ctx, email, subject, body)
	l.metrics.ObserveNotification("submission", sent)

	l.logger.InfoContext(ctx, "task submitted", "email", email, "task_id", taskID, "email_sent", sent)

	return &Submission{TaskID: taskID, SubmittedDate: today, EmailSent: sent}, nil
}

// List returns the learner's tasks ordered by number.
func (l *Lifecycle) List(ctx context.Context, email string) ([]store.Task, error) {
	tasks, err := l.tasks.Tasks(ctx, learner.NormalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// Attach stores a file against one of the learner's released tasks and
// returns its relative path. Unreleased or unknown tasks yield
// ErrNotFoundOrUnauthorized.
func (l *Lifecycle) Attach(ctx context.Context, email string, number int, filename string, r io.Reader) (string, error) {
	if l.files == nil {
		return "", ErrUploadsDisabled
	}
	email = learner.NormalizeEmail(email)
	if email == "" {
		return "", &ValidationError{Field: "email", Reason: "required"}
	}
	if number < 1 {
		return "", &ValidationError{Field: "task_number", Reason: "must be positive"}
	}

	task, err := l.tasks.Task(ctx, email, number)
	if err != nil {
		return "", fmt.Errorf("load task %d: %w", number, err)
	}
	if task == nil || task.Status == store.StatusScheduled {
		return "", ErrNotFoundOrUnauthorized
	}

	rel, err := l.files.Save(email, number, filename, r)
	if err != nil {
		if errors.Is(err, uploads.ErrInvalidName) || errors.Is(err, uploads.ErrTooLarge) {
			return "", &ValidationError{Field: "file", Reason: err.Error()}
		}
		return "", err
	}
	if _, err := l.tasks.SetAttachment(ctx, email, number, rel); err != nil {
		return "", fmt.Errorf("record attachment: %w", err)
	}
	l.logger.InfoContext(ctx, "attachment stored", "email", email, "task", number, "path", rel)
	return rel, nil
}
