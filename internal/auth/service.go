package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/contentcrew/backend/internal/models"
)

// ErrDuplicateEmail is returned when signing up with an email that already exists.
var ErrDuplicateEmail = errors.New("email already registered")

// ErrInvalidEmail is returned when the signup email does not parse as an address.
var ErrInvalidEmail = errors.New("invalid email address")

// AccountStore is the subset of the account repository the service needs.
type AccountStore interface {
	Create(ctx context.Context, a *models.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
}

type Service interface {
	// Signup creates a free-tier account and returns it together with the
	// raw API key. The raw key is shown exactly once; only its SHA-256
	// digest is stored.
	Signup(ctx context.Context, email string) (*models.Account, string, error)
	GetAccount(ctx context.Context, id uuid.UUID) (*models.Account, error)
}

type service struct {
	store AccountStore
}

func NewService(store AccountStore) *service {
	return &service{store: store}
}

var _ Service = (*service)(nil)

func (s *service) Signup(ctx context.Context, email string) (*models.Account, string, error) {
	email = strings.TrimSpace(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, "", ErrInvalidEmail
	}

	rawKey, err := generateAPIKey()
	if err != nil {
		return nil, "", err
	}

	acc := &models.Account{
		ID:           uuid.New(),
		Email:        email,
		APIKeyHash:   HashAPIKey(rawKey),
		APIKeyPrefix: rawKey[:12],
		Tier:         models.TierFree,
		MonthlyLimit: models.MonthlyLimitForTier(models.TierFree),
		IsActive:     true,
	}
	if err := s.store.Create(ctx, acc); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, "", ErrDuplicateEmail
		}
		return nil, "", err
	}
	return acc, rawKey, nil
}

func (s *service) GetAccount(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	return s.store.GetByID(ctx, id)
}

// generateAPIKey returns a fresh key of the form "acc_<43 url-safe chars>".
func generateAPIKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return "acc_" + base64.RawURLEncoding.EncodeToString(buf), nil
}

// HashAPIKey returns the hex SHA-256 digest stored and indexed in place of
// the raw key.
func HashAPIKey(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
