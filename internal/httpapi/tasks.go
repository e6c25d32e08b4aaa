package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/abhisek/learnpath/internal/cadence"
	"github.com/abhisek/learnpath/internal/journey"
	"github.com/abhisek/learnpath/internal/learner"
	"github.com/abhisek/learnpath/internal/store"
	"github.com/abhisek/learnpath/internal/uploads"
)

type assignTaskRequest struct {
	Email         string   `json:"email"`
	Name          string   `json:"name"`
	Level         string   `json:"level"`
	Roadmap       []string `json:"roadmap"`
	DurationWeeks int      `json:"duration_weeks"`
}

type assignTaskResponse struct {
	Complete     bool          `json:"complete"`
	Total        int           `json:"total,omitempty"`
	Message      string        `json:"message,omitempty"`
	TaskID       int64         `json:"task_id,omitempty"`
	TaskNumber   int           `json:"task_number,omitempty"`
	Description  string        `json:"description,omitempty"`
	AssignedDate *cadence.Date `json:"assigned_date,omitempty"`
	DueDate      *cadence.Date `json:"due_date,omitempty"`
	EmailSent    bool          `json:"email_sent"`
}

type submitTaskRequest struct {
	Email   string `json:"email"`
	TaskID  int64  `json:"task_id"`
	Content string `json:"content"`
}

type submitTaskResponse struct {
	TaskID        int64        `json:"task_id"`
	Status        store.Status `json:"status"`
	SubmittedDate cadence.Date `json:"submitted_date"`
	EmailSent     bool         `json:"email_sent"`
}

type taskView struct {
	ID            int64         `json:"id"`
	Number        int           `json:"number"`
	Description   string        `json:"description,omitempty"`
	Status        store.Status  `json:"status"`
	AssignedDate  cadence.Date  `json:"assigned_date"`
	DueDate       cadence.Date  `json:"due_date"`
	SubmittedDate *cadence.Date `json:"submitted_date,omitempty"`
	Submission    string        `json:"submission,omitempty"`
	AttachmentURL string        `json:"attachment_url,omitempty"`
}

func (s *Server) handleAssignTask(w http.ResponseWriter, r *http.Request) {
	var req assignTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if req.DurationWeeks == 0 {
		req.DurationWeeks = s.DefaultWeeks
	}

	ar := journey.AssignRequest{
		Email:         req.Email,
		Name:          req.Name,
		Level:         req.Level,
		Roadmap:       req.Roadmap,
		DurationWeeks: req.DurationWeeks,
	}
	if err := s.Assessment.Complete(r.Context(), &ar); err != nil {
		s.Logger.ErrorContext(r.Context(), "load quiz result failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal", "could not load learner profile")
		return
	}

	a, err := s.Scheduler.AssignNext(r.Context(), ar)
	if err != nil {
		var done *journey.JourneyCompleteError
		if errors.As(err, &done) {
			respondJSON(w, http.StatusOK, assignTaskResponse{
				Complete: true,
				Total:    done.Total,
				Message:  fmt.Sprintf("Congratulations! You have completed all %d tasks.", done.Total),
			})
			return
		}
		s.respondJourneyError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, assignTaskResponse{
		TaskID:       a.TaskID,
		TaskNumber:   a.TaskNumber,
		Description:  a.Description,
		AssignedDate: &a.AssignedDate,
		DueDate:      &a.DueDate,
		EmailSent:    a.EmailSent,
	})
}

func (s *Server) handleSubmitTask(w http.ResponseWriter, r *http.Request) {
	var req submitTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	sub, err := s.Lifecycle.Submit(r.Context(), req.Email, req.TaskID, req.Content)
	if err != nil {
		s.respondJourneyError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, submitTaskResponse{
		TaskID:        sub.TaskID,
		Status:        store.StatusCompleted,
		SubmittedDate: sub.SubmittedDate,
		EmailSent:     sub.EmailSent,
	})
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	email := learner.NormalizeEmail(r.URL.Query().Get("email"))
	if email == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "query parameter email is required")
		return
	}

	tasks, err := s.Lifecycle.List(r.Context(), email)
	if err != nil {
		s.respondJourneyError(w, r, err)
		return
	}
	views := make([]taskView, 0, len(tasks))
	for _, t := range tasks {
		v := taskView{
			ID:            t.ID,
			Number:        t.Number,
			Status:        t.Status,
			AssignedDate:  t.AssignedDate,
			DueDate:       t.DueDate,
			SubmittedDate: t.SubmittedDate,
			Submission:    t.SubmissionContent,
			AttachmentURL: uploads.URL(t.AttachmentPath),
		}
		// Future tasks stay hidden until released.
		if t.Status != store.StatusScheduled {
			v.Description = t.Description
		}
		views = append(views, v)
	}
	respondJSON(w, http.StatusOK, map[string]any{"email": email, "tasks": views})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if s.Uploads == nil {
		respondError(w, http.StatusNotImplemented, "uploads_disabled", "uploads are not configured")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, uploads.MaxFileSize+1<<20)
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	defer r.MultipartForm.RemoveAll()

	email := learner.NormalizeEmail(r.FormValue("email"))
	number, err := strconv.Atoi(strings.TrimSpace(r.FormValue("task_number")))
	if email == "" || err != nil || number < 1 {
		respondError(w, http.StatusBadRequest, "invalid_request", "email and a positive task_number are required")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "file is required")
		return
	}
	defer file.Close()

	rel, err := s.Lifecycle.Attach(r.Context(), email, number, header.Filename, file)
	if err != nil {
		var verr *journey.ValidationError
		if errors.As(err, &verr) && verr.Field == "file" {
			respondError(w, http.StatusBadRequest, "invalid_file", verr.Reason)
			return
		}
		s.respondJourneyError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"task_number": number,
		"path":        rel,
		"url":         uploads.URL(rel),
	})
}

func (s *Server) handleUploadFile(w http.ResponseWriter, r *http.Request) {
	rel := strings.TrimPrefix(r.URL.Path, uploads.URLPrefix)
	f, err := s.Uploads.Open(rel)
	if err != nil {
		respondError(w, http.StatusNotFound, "not_found", "file not found")
		return
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil || info.IsDir() {
		respondError(w, http.StatusNotFound, "not_found", "file not found")
		return
	}
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

// respondJourneyError maps the journey error taxonomy onto status codes.
func (s *Server) respondJourneyError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr *journey.ValidationError
		perr *journey.PriorTaskIncompleteError
		serr *journey.SchedulingError
	)
	switch {
	case errors.As(err, &verr):
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.As(err, &perr):
		respondJSON(w, http.StatusConflict, map[string]any{
			"error":       err.Error(),
			"code":        "prior_task_incomplete",
			"task_number": perr.TaskNumber,
			"task_id":     perr.TaskID,
		})
	case errors.Is(err, journey.ErrNotFoundOrUnauthorized):
		respondError(w, http.StatusNotFound, "task_not_found", err.Error())
	case errors.As(err, &serr):
		s.Logger.ErrorContext(r.Context(), "scheduling failed", "op", serr.Op, "error", serr.Err)
		respondError(w, http.StatusInternalServerError, "scheduling_failed", "could not schedule tasks")
	default:
		s.Logger.ErrorContext(r.Context(), "request failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal", "internal error")
	}
}
