package jobs

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/mail"
	"time"

	"github.com/google/uuid"

	"github.com/contentcrew/backend/internal/middleware"
	"github.com/contentcrew/backend/internal/models"
)

type GenerateRequest struct {
	Topic       string `json:"topic"`
	NotifyEmail string `json:"notify_email,omitempty"`
}

type GenerateResponse struct {
	JobID   string `json:"job_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
	Usage   string `json:"usage"`
}

type StatusResult struct {
	Report string `json:"report"`
	Blog   string `json:"blog"`
}

type StatusResponse struct {
	JobID       string        `json:"job_id"`
	Status      string        `json:"status"`
	Topic       string        `json:"topic"`
	CreatedAt   string        `json:"created_at"`
	CompletedAt *string       `json:"completed_at"`
	Result      *StatusResult `json:"result"`
	Error       *string       `json:"error"`
}

type Handler struct {
	svc Service
	log *slog.Logger
}

func NewHandler(svc Service, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{svc: svc, log: log}
}

// Generate handles POST /generate: validate, admit, enqueue, return the job
// id without waiting for the pipeline.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	acc := middleware.AccountFromCtx(r.Context())
	if acc == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	// notify_email is accepted for interface compatibility; delivery is not
	// implemented, but a malformed address is still rejected up front.
	if req.NotifyEmail != "" {
		if _, err := mail.ParseAddress(req.NotifyEmail); err != nil {
			http.Error(w, `{"error":"invalid notify_email"}`, http.StatusBadRequest)
			return
		}
	}

	sub, err := h.svc.Submit(r.Context(), acc, req.Topic)
	if err != nil {
		var vErr *ValidationError
		if errors.As(err, &vErr) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": vErr.Reason})
			return
		}
		var qErr *QuotaExceededError
		if errors.As(err, &qErr) {
			writeJSON(w, http.StatusTooManyRequests, map[string]string{
				"error": fmt.Sprintf("Monthly limit reached (%d requests). Upgrade your plan.", qErr.Limit),
			})
			return
		}
		h.log.Error("submit failed", "error", err, "account_id", acc.ID)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}

	h.log.Info("job admitted", "job_id", sub.JobID, "account_id", acc.ID, "usage", sub.UsageCount)

	writeJSON(w, http.StatusOK, GenerateResponse{
		JobID:   sub.JobID.String(),
		Status:  models.JobStatusProcessing,
		Message: "Job started",
		Usage:   fmt.Sprintf("%d/%d", sub.UsageCount, sub.MonthlyLimit),
	})
}

// Status handles GET /status/{job_id}.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	acc := middleware.AccountFromCtx(r.Context())
	if acc == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	jobID, err := uuid.Parse(r.PathValue("job_id"))
	if err != nil {
		http.Error(w, `{"error":"job not found"}`, http.StatusNotFound)
		return
	}

	job, err := h.svc.GetJobForOwner(r.Context(), acc.ID, jobID)
	if err != nil {
		if errors.Is(err, ErrJobNotFound) {
			http.Error(w, `{"error":"job not found"}`, http.StatusNotFound)
			return
		}
		h.log.Error("get job failed", "error", err, "job_id", jobID)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, jobToStatusResponse(job))
}

func jobToStatusResponse(job *models.Job) StatusResponse {
	resp := StatusResponse{
		JobID:     job.ID.String(),
		Status:    job.Status,
		Topic:     job.Topic,
		CreatedAt: job.CreatedAt.UTC().Format(time.RFC3339),
		Error:     job.ErrorMessage,
	}
	if job.CompletedAt != nil {
		ts := job.CompletedAt.UTC().Format(time.RFC3339)
		resp.CompletedAt = &ts
	}
	if job.Status == models.JobStatusCompleted {
		result := StatusResult{}
		if job.ReportPath != nil {
			result.Report = *job.ReportPath
		}
		if job.BlogPath != nil {
			result.Blog = *job.BlogPath
		}
		resp.Result = &result
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
