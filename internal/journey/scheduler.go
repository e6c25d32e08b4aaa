package journey

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/abhisek/learnpath/internal/cadence"
	"github.com/abhisek/learnpath/internal/learner"
	"github.com/abhisek/learnpath/internal/notify"
	"github.com/abhisek/learnpath/internal/roadmap"
	"github.com/abhisek/learnpath/internal/store"
	"github.com/abhisek/learnpath/internal/taskgen"
)

// roadmapContextLines bounds how much of the roadmap is handed to the
// generator for each task.
const roadmapContextLines = 20

// AssignRequest asks for the learner's next task.
type AssignRequest struct {
	Email         string
	Name          string
	Level         string
	Roadmap       []string
	DurationWeeks int
}

// Assignment is a freshly released task.
type Assignment struct {
	TaskID       int64
	TaskNumber   int
	Description  string
	AssignedDate cadence.Date
	DueDate      cadence.Date
	EmailSent    bool
}

// Scheduler materializes schedules and releases tasks one at a time.
type Scheduler struct {
	deps
	gen taskgen.Generator
}

// NewScheduler creates a Scheduler. A nil notifier disables notifications.
func NewScheduler(tasks store.TaskRepo, gen taskgen.Generator, notifier notify.Notifier, logger *slog.Logger, opts ...Option) *Scheduler {
	return &Scheduler{
		deps: newDeps(tasks, notifier, logger, opts),
		gen:  gen,
	}
}

// AssignNext releases the learner's next task, materializing or backfilling
// the schedule first when needed.
//
// It returns *ValidationError, *PriorTaskIncompleteError,
// *JourneyCompleteError or *SchedulingError.
func (s *Scheduler) AssignNext(ctx context.Context, req AssignRequest) (*Assignment, error) {
	a, err := s.assignNext(ctx, req)
	s.metrics.ObserveAssignment(assignOutcome(err))
	return a, err
}

func (s *Scheduler) assignNext(ctx context.Context, req AssignRequest) (*Assignment, error) {
	req.Email = learner.NormalizeEmail(req.Email)
	req.Name = learner.NormalizeName(req.Name)
	if err := validateAssign(req); err != nil {
		return nil, err
	}
	total := req.DurationWeeks * 2

	var rows []store.Task
	for attempt := 1; ; attempt++ {
		var err error
		rows, err = s.ensureSchedule(ctx, req, total)
		if err == nil {
			break
		}
		if !errors.Is(err, store.ErrDuplicateTask) {
			return nil, err
		}
		if attempt >= s.maxAttempts {
			return nil, &SchedulingError{Op: "materialize", Err: err}
		}
		s.logger.WarnContext(ctx, "schedule materialized concurrently, retrying",
			"email", req.Email, "attempt", attempt)
		s.metrics.ObserveSchedulerRetry()
	}

	next, err := nextNumber(rows, total)
	if err != nil {
		return nil, err
	}
	row := findNumber(rows, next)
	if row == nil {
		return nil, &SchedulingError{Op: "release", Err: fmt.Errorf("task %d missing from schedule", next)}
	}

	today := cadence.DateOf(s.now())
	due := cadence.DueDate(today)
	n, err := s.tasks.UpdateTask(ctx, row.ID, req.Email, store.TaskUpdate{
		ExpectStatus: store.StatusScheduled,
		Status:       store.StatusPending,
		AssignedDate: &today,
		DueDate:      &due,
	})
	if err != nil {
		return nil, &SchedulingError{Op: "release", Err: err}
	}
	if n == 0 {
		// A concurrent call released it first; that task is now outstanding.
		return nil, &PriorTaskIncompleteError{TaskNumber: row.Number, TaskID: row.ID}
	}

	subject, body := notify.AssignmentMessage(req.Name, row.Number, row.Description, due.String())
	sent := s.notifier.Send(ctx, req.Email, subject, body)
	s.metrics.ObserveNotification("assignment", sent)

	s.logger.InfoContext(ctx, "task assigned",
		"email", req.Email, "task", row.Number, "total", total, "due", due.String(), "email_sent", sent)

	return &Assignment{
		TaskID:       row.ID,
		TaskNumber:   row.Number,
		Description:  row.Description,
		AssignedDate: today,
		DueDate:      due,
		EmailSent:    sent,
	}, nil
}

// ensureSchedule returns the learner's rows after making sure numbers
// 1..total exist. A store.ErrDuplicateTask in the result means another
// caller wrote the same rows and the cycle should restart.
func (s *Scheduler) ensureSchedule(ctx context.Context, req AssignRequest, total int) ([]store.Task, error) {
	rows, err := s.tasks.Tasks(ctx, req.Email)
	if err != nil {
		return nil, &SchedulingError{Op: "read", Err: err}
	}
	for i, r := range rows {
		if r.Number != i+1 {
			return nil, &SchedulingError{Op: "read", Err: fmt.Errorf("%w: expected task %d, found %d", errNonContiguous, i+1, r.Number)}
		}
	}
	if len(rows) >= total {
		return rows, nil
	}

	kind := "full"
	var (
		dates    []cadence.Date
		previous string
	)
	if len(rows) == 0 {
		dates = cadence.Dates(cadence.DateOf(s.now()), total)
	} else {
		kind = "backfill"
		last := rows[len(rows)-1]
		dates = cadence.Continue(last.Number, last.ScheduledDate, total-len(rows))
		previous = last.Description
	}

	excerpt := roadmap.Excerpt(req.Roadmap, roadmapContextLines)
	fresh := make([]store.NewTask, 0, len(dates))
	for i, d := range dates {
		number := len(rows) + i + 1
		text, err := s.gen.Generate(ctx, taskgen.Input{
			LearnerName: req.Name,
			Level:       req.Level,
			Roadmap:     excerpt,
			Number:      number,
			Previous:    previous,
		})
		if err != nil {
			return nil, &SchedulingError{Op: "generate", Err: fmt.Errorf("task %d: %w", number, err)}
		}
		fresh = append(fresh, store.NewTask{
			LearnerEmail:  req.Email,
			LearnerName:   req.Name,
			Number:        number,
			Description:   text,
			ScheduledDate: d,
			AssignedDate:  d,
			DueDate:       cadence.DueDate(d),
			Status:        store.StatusScheduled,
		})
		previous = text
	}

	if err := s.tasks.InsertTasks(ctx, fresh); err != nil {
		if errors.Is(err, store.ErrDuplicateTask) {
			return nil, err
		}
		return nil, &SchedulingError{Op: "materialize", Err: err}
	}
	s.metrics.ObserveMaterialized(kind, len(fresh))
	s.logger.InfoContext(ctx, "schedule materialized",
		"email", req.Email, "kind", kind, "from", len(rows)+1, "to", total)

	rows, err = s.tasks.Tasks(ctx, req.Email)
	if err != nil {
		return nil, &SchedulingError{Op: "read", Err: err}
	}
	return rows, nil
}

// nextNumber picks the task to release from the latest row that has left
// the scheduled state.
func nextNumber(rows []store.Task, total int) (int, error) {
	if len(rows) == 0 {
		return 0, &SchedulingError{Op: "assign", Err: errors.New("no tasks exist after scheduling")}
	}
	for i := len(rows) - 1; i >= 0; i-- {
		r := rows[i]
		switch r.Status {
		case store.StatusScheduled:
			continue
		case store.StatusPending:
			return 0, &PriorTaskIncompleteError{TaskNumber: r.Number, TaskID: r.ID}
		default:
			next := r.Number + 1
			if next > total {
				return 0, &JourneyCompleteError{Total: total}
			}
			return next, nil
		}
	}
	return 1, nil
}

func findNumber(rows []store.Task, number int) *store.Task {
	for i := range rows {
		if rows[i].Number == number {
			return &rows[i]
		}
	}
	return nil
}

func validateAssign(req AssignRequest) error {
	switch {
	case req.Email == "":
		return &ValidationError{Field: "email", Reason: "required"}
	case !strings.Contains(req.Email, "@"):
		return &ValidationError{Field: "email", Reason: "must be an email address"}
	case req.Name == "":
		return &ValidationError{Field: "name", Reason: "required"}
	case req.DurationWeeks < 1 || req.DurationWeeks > MaxDurationWeeks:
		return &ValidationError{Field: "duration_weeks", Reason: fmt.Sprintf("must be between 1 and %d", MaxDurationWeeks)}
	}
	return nil
}

func assignOutcome(err error) string {
	var (
		verr *ValidationError
		perr *PriorTaskIncompleteError
		cerr *JourneyCompleteError
	)
	switch {
	case err == nil:
		return "assigned"
	case errors.As(err, &verr):
		return "invalid"
	case errors.As(err, &perr):
		return "prior_incomplete"
	case errors.As(err, &cerr):
		return "complete"
	default:
		return "error"
	}
}
