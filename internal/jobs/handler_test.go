package jobs

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/contentcrew/backend/internal/middleware"
	"github.com/contentcrew/backend/internal/models"
)

// ---------------------------------------------------------------------------
// Mocks
// ---------------------------------------------------------------------------

type stubService struct {
	submission *Submission
	submitErr  error
	job        *models.Job
	getErr     error
}

func (s *stubService) Submit(_ context.Context, _ *models.Account, _ string) (*Submission, error) {
	return s.submission, s.submitErr
}

func (s *stubService) GetJobForOwner(_ context.Context, _, _ uuid.UUID) (*models.Job, error) {
	return s.job, s.getErr
}

func authedRequest(method, target, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	acc := &models.Account{ID: uuid.New(), Email: "a@x.com", MonthlyLimit: 10, IsActive: true}
	return req.WithContext(middleware.WithAccount(req.Context(), acc))
}

// ---------------------------------------------------------------------------
// Generate
// ---------------------------------------------------------------------------

func TestGenerate_Accepted(t *testing.T) {
	jobID := uuid.New()
	h := NewHandler(&stubService{
		submission: &Submission{JobID: jobID, UsageCount: 1, MonthlyLimit: 10},
	}, nil)

	req := authedRequest(http.MethodPost, "/generate", `{"topic":"Quantum Computing"}`)
	rec := httptest.NewRecorder()
	h.Generate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp GenerateResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.JobID != jobID.String() {
		t.Errorf("expected job_id %s, got %s", jobID, resp.JobID)
	}
	if resp.Status != models.JobStatusProcessing {
		t.Errorf("expected processing, got %q", resp.Status)
	}
	if resp.Usage != "1/10" {
		t.Errorf("expected usage 1/10, got %q", resp.Usage)
	}
}

func TestGenerate_Unauthenticated(t *testing.T) {
	h := NewHandler(&stubService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(`{"topic":"x"}`))
	rec := httptest.NewRecorder()
	h.Generate(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestGenerate_ValidationError(t *testing.T) {
	h := NewHandler(&stubService{submitErr: &ValidationError{Reason: "topic is required"}}, nil)

	req := authedRequest(http.MethodPost, "/generate", `{"topic":""}`)
	rec := httptest.NewRecorder()
	h.Generate(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestGenerate_QuotaExceeded(t *testing.T) {
	h := NewHandler(&stubService{submitErr: &QuotaExceededError{Limit: 10}}, nil)

	req := authedRequest(http.MethodPost, "/generate", `{"topic":"one more"}`)
	rec := httptest.NewRecorder()
	h.Generate(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Monthly limit reached (10 requests)") {
		t.Errorf("quota error should carry the limit, got %s", rec.Body.String())
	}
}

func TestGenerate_InvalidNotifyEmail(t *testing.T) {
	h := NewHandler(&stubService{}, nil)

	req := authedRequest(http.MethodPost, "/generate", `{"topic":"x","notify_email":"not-an-address"}`)
	rec := httptest.NewRecorder()
	h.Generate(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

// ---------------------------------------------------------------------------
// Status
// ---------------------------------------------------------------------------

func statusRequest(t *testing.T, h *Handler, jobID string) *httptest.ResponseRecorder {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /status/{job_id}", h.Status)
	req := authedRequest(http.MethodGet, "/status/"+jobID, "")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestStatus_Processing(t *testing.T) {
	jobID := uuid.New()
	job := &models.Job{
		ID:        jobID,
		OwnerID:   uuid.New(),
		Topic:     "Quantum Computing",
		Status:    models.JobStatusProcessing,
		CreatedAt: time.Now(),
	}
	h := NewHandler(&stubService{job: job}, nil)

	rec := statusRequest(t, h, jobID.String())
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp StatusResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != models.JobStatusProcessing {
		t.Errorf("expected processing, got %q", resp.Status)
	}
	if resp.Result != nil || resp.Error != nil || resp.CompletedAt != nil {
		t.Errorf("in-flight job must not carry result, error or completed_at: %+v", resp)
	}
}

func TestStatus_Completed(t *testing.T) {
	jobID := uuid.New()
	now := time.Now()
	report, blog := "output/strategic_report.md", "output/blog_post.md"
	job := &models.Job{
		ID:          jobID,
		Topic:       "Quantum Computing",
		Status:      models.JobStatusCompleted,
		CreatedAt:   now.Add(-2 * time.Minute),
		CompletedAt: &now,
		ReportPath:  &report,
		BlogPath:    &blog,
	}
	h := NewHandler(&stubService{job: job}, nil)

	rec := statusRequest(t, h, jobID.String())
	var resp StatusResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != models.JobStatusCompleted {
		t.Fatalf("expected completed, got %q", resp.Status)
	}
	if resp.Result == nil || resp.Result.Report == "" || resp.Result.Blog == "" {
		t.Errorf("completed job must carry non-empty result paths: %+v", resp.Result)
	}
	if resp.CompletedAt == nil {
		t.Error("completed job must carry completed_at")
	}
	if resp.Error != nil {
		t.Errorf("completed job must not carry an error, got %v", *resp.Error)
	}
}

func TestStatus_Failed(t *testing.T) {
	jobID := uuid.New()
	now := time.Now()
	msg := "generator returned status 500"
	job := &models.Job{
		ID:           jobID,
		Topic:        "Quantum Computing",
		Status:       models.JobStatusFailed,
		CreatedAt:    now.Add(-time.Minute),
		CompletedAt:  &now,
		ErrorMessage: &msg,
	}
	h := NewHandler(&stubService{job: job}, nil)

	rec := statusRequest(t, h, jobID.String())
	var resp StatusResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != models.JobStatusFailed {
		t.Fatalf("expected failed, got %q", resp.Status)
	}
	if resp.Error == nil || *resp.Error == "" {
		t.Error("failed job must carry a non-empty error")
	}
	if resp.Result != nil {
		t.Errorf("failed job must not carry a result, got %+v", resp.Result)
	}
}

func TestStatus_NotFound(t *testing.T) {
	h := NewHandler(&stubService{getErr: ErrJobNotFound}, nil)

	rec := statusRequest(t, h, uuid.New().String())
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestStatus_MalformedJobID(t *testing.T) {
	h := NewHandler(&stubService{}, nil)

	rec := statusRequest(t, h, "not-a-uuid")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for malformed id, got %d", rec.Code)
	}
}
