package progress

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/learnpath/internal/cadence"
	"github.com/abhisek/learnpath/internal/store"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func seed(t *testing.T, s *store.Store, email string) []store.Task {
	t.Helper()
	ctx := context.Background()
	dates := cadence.Dates(cadence.MustParse("2026-10-14"), 4)
	var rows []store.NewTask
	for i, d := range dates {
		rows = append(rows, store.NewTask{
			LearnerEmail:  email,
			LearnerName:   "Ada",
			Number:        i + 1,
			Description:   fmt.Sprintf("task %d", i+1),
			ScheduledDate: d,
			AssignedDate:  d,
			DueDate:       cadence.DueDate(d),
			Status:        store.StatusScheduled,
		})
	}
	require.NoError(t, s.TaskRepo().InsertTasks(ctx, rows))
	tasks, err := s.TaskRepo().Tasks(ctx, email)
	require.NoError(t, err)
	return tasks
}

func TestSummary(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	email := "ada@example.com"
	tasks := seed(t, s, email)
	repo := s.TaskRepo()

	today := cadence.MustParse("2026-10-15")
	content := "https://github.com/ada/task1"
	_, err := repo.UpdateTask(ctx, tasks[0].ID, email, store.TaskUpdate{
		Status: store.StatusCompleted, SubmittedDate: &today, SubmissionContent: &content,
	})
	require.NoError(t, err)
	_, err = repo.SetAttachment(ctx, email, 1, "ada@example.com/task_1/work.py")
	require.NoError(t, err)
	_, err = repo.UpdateTask(ctx, tasks[1].ID, email, store.TaskUpdate{Status: store.StatusPending})
	require.NoError(t, err)

	require.NoError(t, s.QuizRepo().SaveQuizResult(ctx, &store.QuizResult{
		LearnerEmail: email, LearnerName: "Ada Lovelace", Score: 5, Level: "Intermediate",
		Roadmap: []string{"**Weak Areas**"},
	}))

	sum, err := NewReporter(repo, s.QuizRepo()).Summary(ctx, "ADA@example.com")
	require.NoError(t, err)

	assert.Equal(t, "Ada Lovelace", sum.Name)
	assert.Equal(t, email, sum.Email)
	require.NotNil(t, sum.Quiz)
	assert.Equal(t, 5, sum.Quiz.Score)
	assert.Equal(t, "Intermediate", sum.Quiz.Level)
	assert.Equal(t, 4, sum.Total)
	assert.Equal(t, 2, sum.Assigned)
	assert.Equal(t, 1, sum.Completed)

	require.Len(t, sum.Tasks, 2)
	assert.Equal(t, content, sum.Tasks[0].Submission)
	assert.Equal(t, "/uploads/ada@example.com/task_1/work.py", sum.Tasks[0].AttachmentURL)
	require.NotNil(t, sum.Tasks[0].SubmittedDate)
	assert.Equal(t, today, *sum.Tasks[0].SubmittedDate)
	assert.Equal(t, store.StatusPending, sum.Tasks[1].Status)
	assert.Empty(t, sum.Tasks[1].AttachmentURL)
}

func TestSummary_NameFromTasksWithoutQuiz(t *testing.T) {
	s := openTestStore(t)
	seed(t, s, "ada@example.com")

	sum, err := NewReporter(s.TaskRepo(), s.QuizRepo()).Summary(context.Background(), "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Ada", sum.Name)
	assert.Nil(t, sum.Quiz)
	assert.Zero(t, sum.Assigned)
	assert.Empty(t, sum.Tasks)
}

func TestSummary_UnknownLearner(t *testing.T) {
	s := openTestStore(t)

	sum, err := NewReporter(s.TaskRepo(), s.QuizRepo()).Summary(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.Equal(t, "nobody@example.com", sum.Email)
	assert.Zero(t, sum.Total)
	assert.NotNil(t, sum.Tasks)
}
