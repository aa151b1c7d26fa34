package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5"

	"github.com/contentcrew/backend/internal/models"
)

type contextKey string

const ctxAccountKey contextKey = "account"

// APIKeyHeader is the credential header expected on authenticated routes.
const APIKeyHeader = "X-API-Key"

// AccountLookup resolves an API key digest to an active account.
type AccountLookup interface {
	FindActiveByKeyHash(ctx context.Context, keyHash string) (*models.Account, error)
}

// APIKeyAuth authenticates requests by hashing the X-API-Key header value
// (SHA-256) and looking it up among active accounts. A missing header is 401;
// an unknown key or a deactivated account is 403; a store failure is 500, not
// a credential rejection. On success the account is placed in the request
// context.
func APIKeyAuth(lookup AccountLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(APIKeyHeader)
			if raw == "" {
				http.Error(w, `{"error":"API key required"}`, http.StatusUnauthorized)
				return
			}

			acc, err := lookup.FindActiveByKeyHash(r.Context(), hashKey(raw))
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					http.Error(w, `{"error":"invalid API key"}`, http.StatusForbidden)
					return
				}
				slog.Error("account lookup failed", "error", err)
				http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
				return
			}

			ctx := context.WithValue(r.Context(), ctxAccountKey, acc)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AccountFromCtx returns the authenticated account or nil.
func AccountFromCtx(ctx context.Context) *models.Account {
	acc, _ := ctx.Value(ctxAccountKey).(*models.Account)
	return acc
}

// WithAccount returns a context carrying the given account.
func WithAccount(ctx context.Context, acc *models.Account) context.Context {
	return context.WithValue(ctx, ctxAccountKey, acc)
}

func hashKey(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
