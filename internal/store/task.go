package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/sqlgraph"

	"github.com/abhisek/learnpath/internal/cadence"
	"github.com/abhisek/learnpath/internal/learner"
)

var taskColumns = []string{
	"id",
	"learner_email",
	"learner_name",
	"task_number",
	"description",
	"scheduled_date",
	"assigned_date",
	"due_date",
	"status",
	"submitted_date",
	"submission_content",
	"attachment_path",
}

// taskRepo implements TaskRepo with the ent SQL builder over database/sql.
type taskRepo struct {
	db      *sql.DB
	dialect string
}

func (r *taskRepo) InsertTasks(ctx context.Context, rows []NewTask) error {
	if len(rows) == 0 {
		return nil
	}

	ib := builder(r.dialect).Insert(tasksTable).Columns(
		"learner_email",
		"learner_name",
		"task_number",
		"description",
		"scheduled_date",
		"assigned_date",
		"due_date",
		"status",
	)
	for _, row := range rows {
		if row.Number < 1 {
			return fmt.Errorf("insert tasks: invalid task number %d", row.Number)
		}
		if !row.Status.Valid() {
			return fmt.Errorf("insert tasks: invalid status %q", row.Status)
		}
		ib.Values(
			learner.NormalizeEmail(row.LearnerEmail),
			learner.NormalizeName(row.LearnerName),
			row.Number,
			row.Description,
			row.ScheduledDate.String(),
			row.AssignedDate.String(),
			row.DueDate.String(),
			string(row.Status),
		)
	}
	query, args := ib.Query()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if sqlgraph.IsUniqueConstraintError(err) {
			return fmt.Errorf("insert tasks: %w", ErrDuplicateTask)
		}
		return fmt.Errorf("insert tasks: %w", err)
	}
	if err := tx.Commit(); err != nil {
		if sqlgraph.IsUniqueConstraintError(err) {
			return fmt.Errorf("commit tasks: %w", ErrDuplicateTask)
		}
		return fmt.Errorf("commit tasks: %w", err)
	}
	return nil
}

func (r *taskRepo) Tasks(ctx context.Context, email string) ([]Task, error) {
	query, args := builder(r.dialect).
		Select(taskColumns...).
		From(entsql.Table(tasksTable)).
		Where(entsql.EQ("learner_email", learner.NormalizeEmail(email))).
		OrderBy("task_number").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var out []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return out, nil
}

func (r *taskRepo) Task(ctx context.Context, email string, number int) (*Task, error) {
	query, args := builder(r.dialect).
		Select(taskColumns...).
		From(entsql.Table(tasksTable)).
		Where(entsql.And(
			entsql.EQ("learner_email", learner.NormalizeEmail(email)),
			entsql.EQ("task_number", number),
		)).
		Limit(1).
		Query()

	t, err := scanTask(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *taskRepo) UpdateTask(ctx context.Context, id int64, email string, upd TaskUpdate) (int64, error) {
	ub := builder(r.dialect).Update(tasksTable)
	changed := false
	if upd.Status != "" {
		if !upd.Status.Valid() {
			return 0, fmt.Errorf("update task: invalid status %q", upd.Status)
		}
		ub.Set("status", string(upd.Status))
		changed = true
	}
	if upd.AssignedDate != nil {
		ub.Set("assigned_date", upd.AssignedDate.String())
		changed = true
	}
	if upd.DueDate != nil {
		ub.Set("due_date", upd.DueDate.String())
		changed = true
	}
	if upd.SubmittedDate != nil {
		ub.Set("submitted_date", upd.SubmittedDate.String())
		changed = true
	}
	if upd.SubmissionContent != nil {
		ub.Set("submission_content", *upd.SubmissionContent)
		changed = true
	}
	if !changed {
		return 0, errors.New("update task: no fields to update")
	}

	preds := []*entsql.Predicate{
		entsql.EQ("id", id),
		entsql.EQ("learner_email", learner.NormalizeEmail(email)),
	}
	if upd.ExpectStatus != "" {
		preds = append(preds, entsql.EQ("status", string(upd.ExpectStatus)))
	}
	query, args := ub.Where(entsql.And(preds...)).Query()

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("update task %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

func (r *taskRepo) SetAttachment(ctx context.Context, email string, number int, path string) (int64, error) {
	query, args := builder(r.dialect).
		Update(tasksTable).
		Set("attachment_path", path).
		Where(entsql.And(
			entsql.EQ("learner_email", learner.NormalizeEmail(email)),
			entsql.EQ("task_number", number),
		)).
		Query()

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("set attachment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

func (r *taskRepo) Learners(ctx context.Context) ([]LearnerRef, error) {
	query, args := builder(r.dialect).
		Select("learner_email", "learner_name").
		From(entsql.Table(tasksTable)).
		OrderBy("learner_email", "task_number").
		Query()
	return queryLearners(ctx, r.db, query, args)
}

func (r *taskRepo) DeleteLearner(ctx context.Context, email string) (int64, error) {
	query, args := builder(r.dialect).
		Delete(tasksTable).
		Where(entsql.EQ("learner_email", learner.NormalizeEmail(email))).
		Query()

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete tasks: %w", err)
	}
	return res.RowsAffected()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(rs rowScanner) (Task, error) {
	var (
		t                           Task
		status                      string
		scheduled, assigned, due    string
		submitted, content, attachs sql.NullString
	)
	err := rs.Scan(
		&t.ID,
		&t.LearnerEmail,
		&t.LearnerName,
		&t.Number,
		&t.Description,
		&scheduled,
		&assigned,
		&due,
		&status,
		&submitted,
		&content,
		&attachs,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Task{}, err
		}
		return Task{}, fmt.Errorf("scan task: %w", err)
	}

	t.Status = Status(status)
	if t.ScheduledDate, err = cadence.Parse(scheduled); err != nil {
		return Task{}, fmt.Errorf("task %d scheduled_date: %w", t.ID, err)
	}
	if t.AssignedDate, err = cadence.Parse(assigned); err != nil {
		return Task{}, fmt.Errorf("task %d assigned_date: %w", t.ID, err)
	}
	if t.DueDate, err = cadence.Parse(due); err != nil {
		return Task{}, fmt.Errorf("task %d due_date: %w", t.ID, err)
	}
	if submitted.Valid && submitted.String != "" {
		d, err := cadence.Parse(submitted.String)
		if err != nil {
			return Task{}, fmt.Errorf("task %d submitted_date: %w", t.ID, err)
		}
		t.SubmittedDate = &d
	}
	t.SubmissionContent = content.String
	t.AttachmentPath = attachs.String
	return t, nil
}

// queryLearners runs a two-column (email, name) query and keeps the first
// name seen for each email.
func queryLearners(ctx context.Context, db *sql.DB, query string, args []any) ([]LearnerRef, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query learners: %w", err)
	}
	defer rows.Close()

	var out []LearnerRef
	seen := make(map[string]bool)
	for rows.Next() {
		var ref LearnerRef
		if err := rows.Scan(&ref.Email, &ref.Name); err != nil {
			return nil, fmt.Errorf("scan learner: %w", err)
		}
		if seen[ref.Email] {
			continue
		}
		seen[ref.Email] = true
		out = append(out, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate learners: %w", err)
	}
	return out, nil
}
