package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/learnpath/internal/assessment"
	"github.com/abhisek/learnpath/internal/cadence"
	"github.com/abhisek/learnpath/internal/journey"
	"github.com/abhisek/learnpath/internal/notify"
	"github.com/abhisek/learnpath/internal/observability"
	"github.com/abhisek/learnpath/internal/progress"
	"github.com/abhisek/learnpath/internal/quiz"
	"github.com/abhisek/learnpath/internal/roadmap"
	"github.com/abhisek/learnpath/internal/roster"
	"github.com/abhisek/learnpath/internal/store"
	"github.com/abhisek/learnpath/internal/taskgen"
	"github.com/abhisek/learnpath/internal/uploads"
)

const adminToken = "t0ken"

type testEnv struct {
	ts   *httptest.Server
	mail *notify.Recorder
}

func newTestEnv(t *testing.T, token string) *testEnv {
	t.Helper()
	st, err := store.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mail := &notify.Recorder{}
	metrics := observability.NewMetrics("learnpath")
	files := uploads.New(t.TempDir())
	clock := func() time.Time { return cadence.MustParse("2026-10-14").Time().Add(10 * time.Hour) }

	srv := New(Deps{
		Assessment: assessment.New(st.QuizRepo(), roadmap.NewBuilder(nil, roadmap.DefaultConfig(), logger), logger),
		Scheduler: journey.NewScheduler(st.TaskRepo(), taskgen.TemplateGenerator{}, mail, logger,
			journey.WithClock(clock), journey.WithMetrics(metrics)),
		Lifecycle:    journey.NewLifecycle(st.TaskRepo(), files, mail, logger, journey.WithClock(clock), journey.WithMetrics(metrics)),
		Progress:     progress.NewReporter(st.TaskRepo(), st.QuizRepo()),
		Roster:       roster.New(st.TaskRepo(), st.QuizRepo(), files, logger),
		Uploads:      files,
		Metrics:      metrics,
		Logger:       logger,
		AdminToken:   token,
		DefaultWeeks: 1,
	})
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return &testEnv{ts: ts, mail: mail}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, header map[string]string) (int, map[string]any) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(context.Background(), method, e.ts.URL+path, rd)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	var out map[string]any
	if strings.HasPrefix(res.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.NewDecoder(res.Body).Decode(&out))
	}
	return res.StatusCode, out
}

func (e *testEnv) takeQuiz(t *testing.T) {
	t.Helper()
	answers := map[string]string{}
	for _, q := range quiz.Questions()[:5] {
		answers[q.ID] = q.Correct()
	}
	code, body := e.do(t, http.MethodPost, "/v1/quiz/submit", map[string]any{
		"name": "Ada", "email": "ada@example.com", "answers": answers,
	}, nil)
	require.Equal(t, http.StatusOK, code, body)
}

func TestHealthAndRequestID(t *testing.T) {
	e := newTestEnv(t, "")

	res, err := http.Get(e.ts.URL + "/healthz")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.NotEmpty(t, res.Header.Get("X-Request-ID"))

	req, _ := http.NewRequest(http.MethodGet, e.ts.URL+"/healthz", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	res2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res2.Body.Close()
	assert.Equal(t, "abc-123", res2.Header.Get("X-Request-ID"))
}

func TestQuiz(t *testing.T) {
	e := newTestEnv(t, "")

	code, body := e.do(t, http.MethodGet, "/v1/quiz", nil, nil)
	require.Equal(t, http.StatusOK, code)
	questions := body["questions"].([]any)
	assert.Len(t, questions, quiz.Len())
	first := questions[0].(map[string]any)
	assert.NotContains(t, first, "correct")

	answers := map[string]string{}
	for _, q := range quiz.Questions()[:5] {
		answers[q.ID] = q.Correct()
	}
	code, body = e.do(t, http.MethodPost, "/v1/quiz/submit", map[string]any{
		"name": "Ada", "email": "Ada@Example.com", "answers": answers,
	}, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(5), body["score"])
	assert.Equal(t, quiz.LevelIntermediate, body["level"])
	assert.Equal(t, "ada@example.com", body["email"])
	assert.NotEmpty(t, body["roadmap"])

	code, body = e.do(t, http.MethodPost, "/v1/quiz/submit", map[string]any{"email": "ada@example.com"}, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "invalid_request", body["code"])
}

func TestTaskFlow(t *testing.T) {
	e := newTestEnv(t, "")
	e.takeQuiz(t)

	code, body := e.do(t, http.MethodPost, "/v1/tasks/assign", map[string]any{"email": "ada@example.com"}, nil)
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, false, body["complete"])
	assert.Equal(t, float64(1), body["task_number"])
	assert.Equal(t, "2026-10-17", body["due_date"])
	assert.Equal(t, true, body["email_sent"])
	assert.Contains(t, body["description"], "at Intermediate level")
	taskID := body["task_id"].(float64)

	code, body = e.do(t, http.MethodPost, "/v1/tasks/assign", map[string]any{"email": "ada@example.com"}, nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "prior_task_incomplete", body["code"])
	assert.Equal(t, float64(1), body["task_number"])

	code, _ = e.do(t, http.MethodPost, "/v1/tasks/submit", map[string]any{
		"email": "eve@example.com", "task_id": taskID, "content": "x",
	}, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, body = e.do(t, http.MethodPost, "/v1/tasks/submit", map[string]any{
		"email": "ada@example.com", "task_id": taskID, "content": "my work",
	}, nil)
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "completed", body["status"])
	assert.Equal(t, "2026-10-14", body["submitted_date"])

	code, body = e.do(t, http.MethodGet, "/v1/tasks?email=ada@example.com", nil, nil)
	require.Equal(t, http.StatusOK, code)
	tasks := body["tasks"].([]any)
	require.Len(t, tasks, 2)
	assert.Equal(t, "my work", tasks[0].(map[string]any)["submission"])
	assert.NotContains(t, tasks[1].(map[string]any), "description", "unreleased task text is hidden")

	code, _ = e.do(t, http.MethodPost, "/v1/tasks/assign", map[string]any{"email": "ada@example.com"}, nil)
	require.Equal(t, http.StatusOK, code)
	code, body = e.do(t, http.MethodGet, "/v1/tasks?email=ada@example.com", nil, nil)
	require.Equal(t, http.StatusOK, code)
	second := body["tasks"].([]any)[1].(map[string]any)
	_, err := e.submitLast(t, second["id"].(float64))
	require.NoError(t, err)

	code, body = e.do(t, http.MethodPost, "/v1/tasks/assign", map[string]any{"email": "ada@example.com"}, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["complete"])
	assert.Equal(t, float64(2), body["total"])

	assert.Len(t, e.mail.Messages(), 4)
}

func (e *testEnv) submitLast(t *testing.T, id float64) (int, error) {
	code, body := e.do(t, http.MethodPost, "/v1/tasks/submit", map[string]any{
		"email": "ada@example.com", "task_id": id, "content": "done",
	}, nil)
	if code != http.StatusOK {
		return code, fmt.Errorf("submit: %v", body)
	}
	return code, nil
}

func TestAssign_Validation(t *testing.T) {
	e := newTestEnv(t, "")

	code, body := e.do(t, http.MethodPost, "/v1/tasks/assign", map[string]any{
		"email": "ada@example.com", "name": "Ada", "duration_weeks": 60,
	}, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "invalid_request", body["code"])

	code, _ = e.do(t, http.MethodPost, "/v1/tasks/assign", map[string]any{"email": "ada@example.com"}, nil)
	assert.Equal(t, http.StatusBadRequest, code, "no name and no quiz on record")

	code, _ = e.do(t, http.MethodGet, "/v1/tasks", nil, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func upload(t *testing.T, e *testEnv, email, number, name, content string) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("email", email))
	require.NoError(t, mw.WriteField("task_number", number))
	fw, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	res, err := http.Post(e.ts.URL+"/v1/tasks/upload", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	defer res.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(res.Body).Decode(&out))
	return res.StatusCode, out
}

func TestUploadAndServe(t *testing.T) {
	e := newTestEnv(t, "")
	e.takeQuiz(t)

	code, _ := upload(t, e, "ada@example.com", "1", "work.py", "print(1)")
	assert.Equal(t, http.StatusNotFound, code, "no tasks yet")

	code, _ = e.do(t, http.MethodPost, "/v1/tasks/assign", map[string]any{"email": "ada@example.com"}, nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = upload(t, e, "ada@example.com", "2", "work.py", "print(2)")
	assert.Equal(t, http.StatusNotFound, code, "task 2 is not released")

	code, body := upload(t, e, "ada@example.com", "1", "../../work.py", "print(1)")
	require.Equal(t, http.StatusCreated, code, body)
	assert.Equal(t, "/uploads/ada@example.com/task_1/work.py", body["url"])

	res, err := http.Get(e.ts.URL + body["url"].(string))
	require.NoError(t, err)
	defer res.Body.Close()
	b, _ := io.ReadAll(res.Body)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "print(1)", string(b))

	code, body = e.do(t, http.MethodGet, "/v1/learners/ada@example.com/summary", nil, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Ada", body["name"])
	assert.Equal(t, float64(1), body["assigned"])
	tasks := body["tasks"].([]any)
	assert.Equal(t, "/uploads/ada@example.com/task_1/work.py", tasks[0].(map[string]any)["attachment_url"])

	res2, err := http.Get(e.ts.URL + "/uploads/ada@example.com/task_1/")
	require.NoError(t, err)
	res2.Body.Close()
	assert.Equal(t, http.StatusNotFound, res2.StatusCode)
}

func TestSummary_Unknown(t *testing.T) {
	e := newTestEnv(t, "")
	code, _ := e.do(t, http.MethodGet, "/v1/learners/nobody@example.com/summary", nil, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestAdmin(t *testing.T) {
	e := newTestEnv(t, adminToken)
	e.takeQuiz(t)
	auth := map[string]string{"Authorization": "Bearer " + adminToken}

	code, _ := e.do(t, http.MethodGet, "/v1/admin/learners", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	code, _ = e.do(t, http.MethodGet, "/v1/admin/learners", nil, map[string]string{"Authorization": "Bearer nope"})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, body := e.do(t, http.MethodGet, "/v1/admin/learners", nil, auth)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["learners"], 1)

	code, body = e.do(t, http.MethodDelete, "/v1/admin/learners/ada@example.com", nil, auth)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(1), body["quiz_results"])

	code, body = e.do(t, http.MethodGet, "/v1/admin/learners", nil, auth)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, body["learners"])
}

func TestAdmin_DisabledWithoutToken(t *testing.T) {
	e := newTestEnv(t, "")
	code, body := e.do(t, http.MethodGet, "/v1/admin/learners", nil, map[string]string{"Authorization": "Bearer "})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "admin_disabled", body["code"])
}

func TestMetricsEndpoint(t *testing.T) {
	e := newTestEnv(t, "")
	code, _ := e.do(t, http.MethodGet, "/healthz", nil, nil)
	require.Equal(t, http.StatusOK, code)

	res, err := http.Get(e.ts.URL + "/metrics")
	require.NoError(t, err)
	defer res.Body.Close()
	b, _ := io.ReadAll(res.Body)
	assert.Contains(t, string(b), `learnpath_http_requests_total{code="200",route="/healthz"} 1`)
}
