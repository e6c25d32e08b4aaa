package httpapi

import (
	"errors"
	"net/http"

	"github.com/abhisek/learnpath/internal/assessment"
	"github.com/abhisek/learnpath/internal/quiz"
)

type submitQuizRequest struct {
	Name    string            `json:"name"`
	Email   string            `json:"email"`
	Answers map[string]string `json:"answers"`
}

type submitQuizResponse struct {
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	Score        int      `json:"score"`
	Total        int      `json:"total"`
	Level        string   `json:"level"`
	StrongTopics []string `json:"strong_topics"`
	WeakTopics   []string `json:"weak_topics"`
	Roadmap      []string `json:"roadmap"`
}

func (s *Server) handleGetQuiz(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"questions":   quiz.Questions(),
		"option_keys": quiz.OptionKeys,
	})
}

func (s *Server) handleSubmitQuiz(w http.ResponseWriter, r *http.Request) {
	var req submitQuizRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	out, err := s.Assessment.Take(r.Context(), req.Name, req.Email, req.Answers)
	if err != nil {
		if errors.Is(err, assessment.ErrInvalid) {
			respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}
		s.Logger.ErrorContext(r.Context(), "quiz submission failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal", "could not record quiz result")
		return
	}

	respondJSON(w, http.StatusOK, submitQuizResponse{
		Name:         out.Name,
		Email:        out.Email,
		Score:        out.Result.Score,
		Total:        quiz.Len(),
		Level:        out.Result.Level,
		StrongTopics: nonNil(out.Result.Strong),
		WeakTopics:   nonNil(out.Result.Weak),
		Roadmap:      nonNil(out.Roadmap),
	})
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
