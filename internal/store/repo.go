package store

import (
	"context"
	"errors"
	"time"

	"github.com/abhisek/learnpath/internal/cadence"
)

// ErrDuplicateTask is returned by InsertTasks when a row for the same
// (learner_email, task_number) already exists. Nothing from the batch is
// written when it is returned.
var ErrDuplicateTask = errors.New("duplicate task number for learner")

// Status is the lifecycle state of a task row.
type Status string

const (
	// StatusScheduled is a future slot that has not been released yet.
	StatusScheduled Status = "scheduled"
	// StatusPending is the released task awaiting submission.
	StatusPending Status = "pending"
	// StatusCompleted is terminal: a submission has been recorded.
	StatusCompleted Status = "completed"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusPending, StatusCompleted:
		return true
	}
	return false
}

// Task is one persisted unit of assigned work.
type Task struct {
	ID           int64
	LearnerEmail string
	LearnerName  string
	Number       int
	Description  string

	// ScheduledDate is the cadence slot the row was materialized for. It never
	// changes, unlike AssignedDate which is re-stamped on release.
	ScheduledDate cadence.Date
	AssignedDate  cadence.Date
	DueDate       cadence.Date
	Status        Status

	SubmittedDate     *cadence.Date
	SubmissionContent string
	AttachmentPath    string
}

// NewTask describes a row to materialize.
type NewTask struct {
	LearnerEmail  string
	LearnerName   string
	Number        int
	Description   string
	ScheduledDate cadence.Date
	AssignedDate  cadence.Date
	DueDate       cadence.Date
	Status        Status
}

// TaskUpdate lists the fields to change on a row. Nil fields are left as is.
type TaskUpdate struct {
	// ExpectStatus, when set, restricts the update to rows currently in that
	// status, making the update a compare-and-set.
	ExpectStatus Status

	Status            Status
	AssignedDate      *cadence.Date
	DueDate           *cadence.Date
	SubmittedDate     *cadence.Date
	SubmissionContent *string
}

// LearnerRef is a learner known to the store through tasks or quiz results.
type LearnerRef struct {
	Email string
	Name  string
}

// DeleteCounts reports how many rows a learner deletion removed.
type DeleteCounts struct {
	Tasks       int64
	QuizResults int64
}

// TaskRepo is the schedule store. It exclusively owns task rows.
type TaskRepo interface {
	// InsertTasks writes all rows in one transaction. Either every row is
	// written or none is.
	InsertTasks(ctx context.Context, rows []NewTask) error

	// Tasks returns the learner's rows ordered by task number.
	Tasks(ctx context.Context, email string) ([]Task, error)

	// Task returns the learner's row with the given number, or nil.
	Task(ctx context.Context, email string, number int) (*Task, error)

	// UpdateTask applies upd to the row matching both id and email and
	// returns the number of affected rows.
	UpdateTask(ctx context.Context, id int64, email string, upd TaskUpdate) (int64, error)

	// SetAttachment records the stored path of an uploaded file on the
	// learner's row with the given number. Returns affected rows.
	SetAttachment(ctx context.Context, email string, number int, path string) (int64, error)

	// Learners lists the distinct learners that have tasks.
	Learners(ctx context.Context) ([]LearnerRef, error)

	// DeleteLearner removes every task of the learner.
	DeleteLearner(ctx context.Context, email string) (int64, error)
}

// QuizResult is a stored quiz outcome with its roadmap.
type QuizResult struct {
	ID           int64
	LearnerEmail string
	LearnerName  string
	Score        int
	Level        string
	Roadmap      []string
	CreatedAt    time.Time
}

// QuizRepo stores quiz outcomes.
type QuizRepo interface {
	// SaveQuizResult appends a result. ID and CreatedAt are filled in.
	SaveQuizResult(ctx context.Context, r *QuizResult) error

	// LatestQuizResult returns the most recent result for email, or nil.
	LatestQuizResult(ctx context.Context, email string) (*QuizResult, error)

	// Learners lists the distinct learners that took the quiz.
	Learners(ctx context.Context) ([]LearnerRef, error)

	// DeleteLearner removes every quiz result of the learner.
	DeleteLearner(ctx context.Context, email string) (int64, error)
}

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int    // max results (0 = unlimited)
	Purpose string // exact purpose match ("" = any)
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEventRecord is a stored LLM request event.
type LLMRequestEventRecord struct {
	ID        int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsage aggregates token usage for a grouping key (purpose or model).
type LLMUsage struct {
	Key          string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// EventRepo provides append and query access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEventRecord, error)

	// GetLLMEvent returns a single event, or nil if it does not exist.
	GetLLMEvent(ctx context.Context, id int64) (*LLMRequestEventRecord, error)

	// LLMUsageByPurpose aggregates usage per purpose label.
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error)

	// LLMUsageByModel aggregates usage per model ID.
	LLMUsageByModel(ctx context.Context) ([]LLMUsage, error)
}
