package store

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Column and table names shared by the repositories.
const (
	tasksTable       = "tasks"
	quizResultsTable = "quiz_results"
	llmEventsTable   = "llm_request_events"
)

var (
	tasksColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "learner_email", Type: field.TypeString},
		{Name: "learner_name", Type: field.TypeString},
		{Name: "task_number", Type: field.TypeInt},
		{Name: "description", Type: field.TypeString, Size: 2147483647},
		{Name: "scheduled_date", Type: field.TypeString},
		{Name: "assigned_date", Type: field.TypeString},
		{Name: "due_date", Type: field.TypeString},
		{Name: "status", Type: field.TypeString},
		{Name: "submitted_date", Type: field.TypeString, Nullable: true},
		{Name: "submission_content", Type: field.TypeString, Size: 2147483647, Nullable: true},
		{Name: "attachment_path", Type: field.TypeString, Nullable: true},
	}
	tasksTableSchema = &schema.Table{
		Name:       tasksTable,
		Columns:    tasksColumns,
		PrimaryKey: []*schema.Column{tasksColumns[0]},
		Indexes: []*schema.Index{
			{
				// Backstop for concurrent materialization of the same slot.
				Name:    "task_learner_email_task_number",
				Unique:  true,
				Columns: []*schema.Column{tasksColumns[1], tasksColumns[3]},
			},
			{
				Name:    "task_status",
				Columns: []*schema.Column{tasksColumns[8]},
			},
		},
	}

	quizResultsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "learner_email", Type: field.TypeString},
		{Name: "learner_name", Type: field.TypeString},
		{Name: "score", Type: field.TypeInt},
		{Name: "level", Type: field.TypeString},
		{Name: "roadmap", Type: field.TypeString, Size: 2147483647},
		{Name: "created_at", Type: field.TypeTime},
	}
	quizResultsTableSchema = &schema.Table{
		Name:       quizResultsTable,
		Columns:    quizResultsColumns,
		PrimaryKey: []*schema.Column{quizResultsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "quizresult_learner_email",
				Columns: []*schema.Column{quizResultsColumns[1]},
			},
		},
	}

	llmEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "input_tokens", Type: field.TypeInt, Default: 0},
		{Name: "output_tokens", Type: field.TypeInt, Default: 0},
		{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Default: ""},
		{Name: "request_body", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "response_body", Type: field.TypeString, Size: 2147483647, Default: ""},
	}
	llmEventsTableSchema = &schema.Table{
		Name:       llmEventsTable,
		Columns:    llmEventsColumns,
		PrimaryKey: []*schema.Column{llmEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "llmrequestevent_purpose", Columns: []*schema.Column{llmEventsColumns[4]}},
			{Name: "llmrequestevent_timestamp", Columns: []*schema.Column{llmEventsColumns[1]}},
		},
	}

	tables = []*schema.Table{
		tasksTableSchema,
		quizResultsTableSchema,
		llmEventsTableSchema,
	}
)

// migrate creates or upgrades the tables to match the declarations above.
func (s *Store) migrate(ctx context.Context) error {
	m, err := schema.NewMigrate(s.drv)
	if err != nil {
		return fmt.Errorf("new migrate: %w", err)
	}
	if err := m.Create(ctx, tables...); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}
