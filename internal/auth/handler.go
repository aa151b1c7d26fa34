package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/contentcrew/backend/internal/middleware"
)

type SignupRequest struct {
	Email string `json:"email"`
}

type SignupResponse struct {
	Message          string `json:"message"`
	Email            string `json:"email"`
	APIKey           string `json:"api_key"`
	SubscriptionTier string `json:"subscription_tier"`
	MonthlyLimit     int    `json:"monthly_limit"`
}

type UsageResponse struct {
	Email            string `json:"email"`
	SubscriptionTier string `json:"subscription_tier"`
	UsageCount       int    `json:"usage_count"`
	MonthlyLimit     int    `json:"monthly_limit"`
	Remaining        int    `json:"remaining"`
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

// Signup handles POST /signup.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	acc, rawKey, err := h.svc.Signup(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, ErrInvalidEmail) {
			http.Error(w, `{"error":"invalid email address"}`, http.StatusBadRequest)
			return
		}
		if errors.Is(err, ErrDuplicateEmail) {
			http.Error(w, `{"error":"email already registered"}`, http.StatusConflict)
			return
		}
		h.log.Error("signup failed", "error", err)
		http.Error(w, `{"error":"signup failed"}`, http.StatusInternalServerError)
		return
	}
	h.log.Info("signup successful", "email", acc.Email, "account_id", acc.ID)

	writeJSON(w, http.StatusOK, SignupResponse{
		Message:          "Signup successful",
		Email:            acc.Email,
		APIKey:           rawKey,
		SubscriptionTier: acc.Tier,
		MonthlyLimit:     acc.MonthlyLimit,
	})
}

// Usage handles GET /usage for the authenticated account.
func (h *Handler) Usage(w http.ResponseWriter, r *http.Request) {
	acc := middleware.AccountFromCtx(r.Context())
	if acc == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	// Re-read so the counters reflect submissions accepted after auth ran.
	current, err := h.svc.GetAccount(r.Context(), acc.ID)
	if err != nil {
		h.log.Error("get account failed", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, UsageResponse{
		Email:            current.Email,
		SubscriptionTier: current.Tier,
		UsageCount:       current.UsageCount,
		MonthlyLimit:     current.MonthlyLimit,
		Remaining:        current.MonthlyLimit - current.UsageCount,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
