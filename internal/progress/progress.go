// Package progress summarizes a learner's quiz outcome and task history.
package progress

import (
	"context"
	"fmt"

	"github.com/abhisek/learnpath/internal/cadence"
	"github.com/abhisek/learnpath/internal/learner"
	"github.com/abhisek/learnpath/internal/store"
	"github.com/abhisek/learnpath/internal/uploads"
)

// QuizSummary is the learner's latest quiz outcome.
type QuizSummary struct {
	Score   int      `json:"score"`
	Level   string   `json:"level"`
	Roadmap []string `json:"roadmap,omitempty"`
}

// TaskSummary is one released task as shown to the learner.
type TaskSummary struct {
	ID            int64         `json:"id"`
	Number        int           `json:"number"`
	Description   string        `json:"description"`
	Status        store.Status  `json:"status"`
	AssignedDate  cadence.Date  `json:"assigned_date"`
	DueDate       cadence.Date  `json:"due_date"`
	SubmittedDate *cadence.Date `json:"submitted_date,omitempty"`
	Submission    string        `json:"submission,omitempty"`
	AttachmentURL string        `json:"attachment_url,omitempty"`
}

// Summary aggregates what the learner has done so far.
type Summary struct {
	Name      string        `json:"name"`
	Email     string        `json:"email"`
	Quiz      *QuizSummary  `json:"quiz,omitempty"`
	Total     int           `json:"total"`
	Assigned  int           `json:"assigned"`
	Completed int           `json:"completed"`
	Tasks     []TaskSummary `json:"tasks"`
}

// Reporter builds summaries from the task and quiz stores.
type Reporter struct {
	tasks store.TaskRepo
	quiz  store.QuizRepo
}

// NewReporter creates a Reporter.
func NewReporter(tasks store.TaskRepo, quiz store.QuizRepo) *Reporter {
	return &Reporter{tasks: tasks, quiz: quiz}
}

// Summary returns the learner's summary. Only released tasks are listed;
// Total counts every materialized task. An unknown learner yields an empty
// summary, not an error.
func (r *Reporter) Summary(ctx context.Context, email string) (*Summary, error) {
	email = learner.NormalizeEmail(email)

	rows, err := r.tasks.Tasks(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	qr, err := r.quiz.LatestQuizResult(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("load quiz result: %w", err)
	}

	s := &Summary{Email: email, Total: len(rows), Tasks: []TaskSummary{}}
	if qr != nil {
		s.Name = qr.LearnerName
		s.Quiz = &QuizSummary{Score: qr.Score, Level: qr.Level, Roadmap: qr.Roadmap}
	}
	for _, t := range rows {
		if s.Name == "" {
			s.Name = t.LearnerName
		}
		if t.Status == store.StatusScheduled {
			continue
		}
		s.Assigned++
		if t.Status == store.StatusCompleted {
			s.Completed++
		}
		s.Tasks = append(s.Tasks, TaskSummary{
			ID:            t.ID,
			Number:        t.Number,
			Description:   t.Description,
			Status:        t.Status,
			AssignedDate:  t.AssignedDate,
			DueDate:       t.DueDate,
			SubmittedDate: t.SubmittedDate,
			Submission:    t.SubmissionContent,
			AttachmentURL: uploads.URL(t.AttachmentPath),
		})
	}
	return s, nil
}
