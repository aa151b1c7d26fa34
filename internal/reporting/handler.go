package reporting

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/contentcrew/backend/internal/models"
)

// AccountReader is the account repository subset used for aggregates.
type AccountReader interface {
	List(ctx context.Context) ([]*models.Account, error)
	CountAll(ctx context.Context) (total, active int, err error)
}

// JobReader is the job repository subset used for aggregates and health.
type JobReader interface {
	CountByStatus(ctx context.Context) (total, completed int, err error)
	CompletedCosts(ctx context.Context) (jobs int, totalCost float64, err error)
	RecentStatuses(ctx context.Context, limit int) ([]string, error)
	Ping(ctx context.Context) error
}

type Handler struct {
	accounts AccountReader
	jobs     JobReader
	version  string
	log      *slog.Logger
}

func NewHandler(accounts AccountReader, jobs JobReader, version string, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{accounts: accounts, jobs: jobs, version: version, log: log}
}

// Stats handles GET /admin/stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	totalUsers, activeUsers, err := h.accounts.CountAll(r.Context())
	if err != nil {
		h.log.Error("count accounts failed", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	totalJobs, completedJobs, err := h.jobs.CountByStatus(r.Context())
	if err != nil {
		h.log.Error("count jobs failed", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	successRate := "0%"
	if totalJobs > 0 {
		successRate = fmt.Sprintf("%.1f%%", float64(completedJobs)/float64(totalJobs)*100)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total_users":    totalUsers,
		"active_users":   activeUsers,
		"total_jobs":     totalJobs,
		"completed_jobs": completedJobs,
		"success_rate":   successRate,
	})
}

// Users handles GET /admin/users.
func (h *Handler) Users(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accounts.List(r.Context())
	if err != nil {
		h.log.Error("list accounts failed", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	out := make([]map[string]any, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, map[string]any{
			"id":         a.ID,
			"email":      a.Email,
			"tier":       a.Tier,
			"usage":      fmt.Sprintf("%d/%d", a.UsageCount, a.MonthlyLimit),
			"created_at": a.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// Costs handles GET /admin/costs.
func (h *Handler) Costs(w http.ResponseWriter, r *http.Request) {
	jobs, totalCost, err := h.jobs.CompletedCosts(r.Context())
	if err != nil {
		h.log.Error("sum costs failed", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	avgCost := 0.0
	if jobs > 0 {
		avgCost = totalCost / float64(jobs)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total_jobs":        jobs,
		"total_cost":        fmt.Sprintf("$%.2f", totalCost),
		"avg_cost_per_job":  fmt.Sprintf("$%.4f", avgCost),
		"estimated_monthly": fmt.Sprintf("$%.2f", totalCost*30),
	})
}

// Health handles GET /health. Public.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	dbStatus := "healthy"
	if err := h.jobs.Ping(r.Context()); err != nil {
		h.log.Warn("database ping failed", "error", err)
		dbStatus = "unhealthy"
	}

	successRate := 0.0
	if statuses, err := h.jobs.RecentStatuses(r.Context(), 10); err == nil && len(statuses) > 0 {
		completed := 0
		for _, s := range statuses {
			if s == models.JobStatusCompleted {
				completed++
			}
		}
		successRate = float64(completed) / float64(len(statuses)) * 100
	}

	status := "healthy"
	if dbStatus != "healthy" {
		status = "degraded"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":              status,
		"database":            dbStatus,
		"timestamp":           time.Now().UTC().Format(time.RFC3339),
		"recent_success_rate": fmt.Sprintf("%.1f%%", successRate),
		"version":             h.version,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
