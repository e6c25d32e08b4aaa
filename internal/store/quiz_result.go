package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/learnpath/internal/learner"
)

// quizRepo implements QuizRepo.
type quizRepo struct {
	db      *sql.DB
	dialect string
}

func (r *quizRepo) SaveQuizResult(ctx context.Context, res *QuizResult) error {
	roadmap := res.Roadmap
	if roadmap == nil {
		roadmap = []string{}
	}
	roadmapJSON, err := json.Marshal(roadmap)
	if err != nil {
		return fmt.Errorf("marshal roadmap: %w", err)
	}

	res.LearnerEmail = learner.NormalizeEmail(res.LearnerEmail)
	res.LearnerName = learner.NormalizeName(res.LearnerName)
	if res.CreatedAt.IsZero() {
		res.CreatedAt = time.Now().UTC()
	}

	ib := builder(r.dialect).
		Insert(quizResultsTable).
		Columns("learner_email", "learner_name", "score", "level", "roadmap", "created_at").
		Values(res.LearnerEmail, res.LearnerName, res.Score, res.Level, string(roadmapJSON), res.CreatedAt)

	// pgx does not support LastInsertId.
	if r.dialect == dialect.Postgres {
		query, args := ib.Returning("id").Query()
		if err := r.db.QueryRowContext(ctx, query, args...).Scan(&res.ID); err != nil {
			return fmt.Errorf("save quiz result: %w", err)
		}
		return nil
	}

	query, args := ib.Query()
	out, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("save quiz result: %w", err)
	}
	if res.ID, err = out.LastInsertId(); err != nil {
		return fmt.Errorf("quiz result id: %w", err)
	}
	return nil
}

func (r *quizRepo) LatestQuizResult(ctx context.Context, email string) (*QuizResult, error) {
	query, args := builder(r.dialect).
		Select("id", "learner_email", "learner_name", "score", "level", "roadmap", "created_at").
		From(entsql.Table(quizResultsTable)).
		Where(entsql.EQ("learner_email", learner.NormalizeEmail(email))).
		OrderBy(entsql.Desc("id")).
		Limit(1).
		Query()

	var (
		res         QuizResult
		roadmapJSON string
	)
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&res.ID, &res.LearnerEmail, &res.LearnerName, &res.Score, &res.Level, &roadmapJSON, &res.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query latest quiz result: %w", err)
	}

	// A corrupt roadmap is treated as empty rather than hiding the score.
	if err := json.Unmarshal([]byte(roadmapJSON), &res.Roadmap); err != nil {
		res.Roadmap = nil
	}
	return &res, nil
}

func (r *quizRepo) Learners(ctx context.Context) ([]LearnerRef, error) {
	query, args := builder(r.dialect).
		Select("learner_email", "learner_name").
		From(entsql.Table(quizResultsTable)).
		OrderBy("learner_email", entsql.Desc("id")).
		Query()
	return queryLearners(ctx, r.db, query, args)
}

func (r *quizRepo) DeleteLearner(ctx context.Context, email string) (int64, error) {
	query, args := builder(r.dialect).
		Delete(quizResultsTable).
		Where(entsql.EQ("learner_email", learner.NormalizeEmail(email))).
		Query()

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete quiz results: %w", err)
	}
	return res.RowsAffected()
}
