package assessment

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/learnpath/internal/journey"
	"github.com/abhisek/learnpath/internal/quiz"
	"github.com/abhisek/learnpath/internal/roadmap"
	"github.com/abhisek/learnpath/internal/store"
)

func newService(t *testing.T) (*Service, *store.Store) {
	t.Helper()
	s, err := store.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(s.QuizRepo(), roadmap.NewBuilder(nil, roadmap.DefaultConfig(), logger), logger), s
}

func allCorrect() map[string]string {
	answers := make(map[string]string)
	for _, q := range quiz.Questions() {
		answers[q.ID] = q.Correct()
	}
	return answers
}

func TestTake(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	answers := allCorrect()
	delete(answers, "1")
	answers["2"] = " B "

	out, err := svc.Take(ctx, " Ada  Lovelace ", "ADA@example.com", answers)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", out.Name)
	assert.Equal(t, "ada@example.com", out.Email)
	assert.Equal(t, 9, out.Result.Score)
	assert.Equal(t, quiz.LevelAdvanced, out.Result.Level)
	assert.Len(t, out.Result.Weak, 1)
	assert.NotEmpty(t, out.Roadmap)
	assert.NotZero(t, out.ID)

	latest, err := svc.Latest(ctx, "ada@example.com")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, 9, latest.Score)
	assert.Equal(t, out.Roadmap, latest.Roadmap)
}

func TestTake_Invalid(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Take(context.Background(), "", "ada@example.com", nil)
	assert.ErrorIs(t, err, ErrInvalid)
	_, err = svc.Take(context.Background(), "Ada", "ada", nil)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestTake_EmptyAnswersIsBeginner(t *testing.T) {
	svc, _ := newService(t)

	out, err := svc.Take(context.Background(), "Ada", "ada@example.com", nil)
	require.NoError(t, err)
	assert.Zero(t, out.Result.Score)
	assert.Equal(t, quiz.LevelBeginner, out.Result.Level)
	assert.Len(t, out.Result.Weak, quiz.Len())
}

func TestLatest_None(t *testing.T) {
	svc, _ := newService(t)

	r, err := svc.Latest(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, r)
}

func TestComplete(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	req := journey.AssignRequest{Email: "ada@example.com", Level: "Custom"}
	require.NoError(t, svc.Complete(ctx, &req))
	assert.Empty(t, req.Name, "no quiz taken yet")

	out, err := svc.Take(ctx, "Ada", "ada@example.com", allCorrect())
	require.NoError(t, err)

	require.NoError(t, svc.Complete(ctx, &req))
	assert.Equal(t, "Ada", req.Name)
	assert.Equal(t, "Custom", req.Level, "explicit level is kept")
	assert.Equal(t, out.Roadmap, req.Roadmap)
}
