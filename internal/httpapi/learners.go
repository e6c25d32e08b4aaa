package httpapi

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/abhisek/learnpath/internal/learner"
)

func emailParam(r *http.Request) string {
	raw := chi.URLParam(r, "email")
	if v, err := url.PathUnescape(raw); err == nil {
		raw = v
	}
	return learner.NormalizeEmail(raw)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	email := emailParam(r)
	if email == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "email is required")
		return
	}
	sum, err := s.Progress.Summary(r.Context(), email)
	if err != nil {
		s.Logger.ErrorContext(r.Context(), "summary failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal", "could not build summary")
		return
	}
	if sum.Quiz == nil && sum.Total == 0 {
		respondError(w, http.StatusNotFound, "learner_not_found", "no data for this learner")
		return
	}
	respondJSON(w, http.StatusOK, sum)
}

func (s *Server) handleListLearners(w http.ResponseWriter, r *http.Request) {
	refs, err := s.Roster.List(r.Context())
	if err != nil {
		s.Logger.ErrorContext(r.Context(), "list learners failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal", "could not list learners")
		return
	}
	out := make([]map[string]string, 0, len(refs))
	for _, ref := range refs {
		out = append(out, map[string]string{"email": ref.Email, "name": ref.Name})
	}
	respondJSON(w, http.StatusOK, map[string]any{"learners": out})
}

func (s *Server) handleDeleteLearner(w http.ResponseWriter, r *http.Request) {
	email := emailParam(r)
	if email == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "email is required")
		return
	}
	counts, err := s.Roster.Delete(r.Context(), email)
	if err != nil {
		s.Logger.ErrorContext(r.Context(), "delete learner failed", "email", email, "error", err)
		respondError(w, http.StatusInternalServerError, "internal", "could not delete learner")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"email":        email,
		"tasks":        counts.Tasks,
		"quiz_results": counts.QuizResults,
	})
}
