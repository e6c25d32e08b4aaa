// Package httpapi exposes the learning journey over HTTP.
package httpapi

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/abhisek/learnpath/internal/assessment"
	"github.com/abhisek/learnpath/internal/journey"
	"github.com/abhisek/learnpath/internal/observability"
	"github.com/abhisek/learnpath/internal/progress"
	"github.com/abhisek/learnpath/internal/roster"
	"github.com/abhisek/learnpath/internal/uploads"
)

// Deps are the services the server routes to.
type Deps struct {
	Assessment *assessment.Service
	Scheduler  *journey.Scheduler
	Lifecycle  *journey.Lifecycle
	Progress   *progress.Reporter
	Roster     *roster.Roster
	Uploads    *uploads.Store
	Metrics    *observability.Metrics
	Logger     *slog.Logger

	// AdminToken guards the admin routes. Empty disables them.
	AdminToken string
	// DefaultWeeks is used when an assign request has no duration.
	DefaultWeeks int
}

type Server struct {
	Deps
}

func New(d Deps) *Server {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.DefaultWeeks <= 0 {
		d.DefaultWeeks = 4
	}
	return &Server{Deps: d}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.instrument)

	r.Get("/healthz", s.handleHealth)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.Handler().ServeHTTP(w, r)
	})

	r.Get("/v1/quiz", s.handleGetQuiz)
	r.Post("/v1/quiz/submit", s.handleSubmitQuiz)

	r.Post("/v1/tasks/assign", s.handleAssignTask)
	r.Post("/v1/tasks/submit", s.handleSubmitTask)
	r.Post("/v1/tasks/upload", s.handleUpload)
	r.Get("/v1/tasks", s.handleListTasks)

	r.Get("/v1/learners/{email}/summary", s.handleSummary)

	r.Route("/v1/admin", func(r chi.Router) {
		r.Use(s.requireAdmin)
		r.Get("/learners", s.handleListLearners)
		r.Delete("/learners/{email}", s.handleDeleteLearner)
	})

	if s.Uploads != nil {
		r.Get(uploads.URLPrefix+"*", s.handleUploadFile)
	}

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.AdminToken == "" {
			respondError(w, http.StatusForbidden, "admin_disabled", "admin API is disabled")
			return
		}
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(strings.TrimSpace(token)), []byte(s.AdminToken)) != 1 {
			respondError(w, http.StatusUnauthorized, "unauthorized", "missing or invalid admin token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var errEmptyBody = errors.New("request body is empty")

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	defer r.Body.Close()
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	if err := dec.Decode(out); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "eof") {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}
