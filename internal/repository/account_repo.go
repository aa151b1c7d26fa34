package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/contentcrew/backend/internal/models"
)

type AccountRepo struct {
	pool *pgxpool.Pool
}

func NewAccountRepo(pool *pgxpool.Pool) *AccountRepo {
	return &AccountRepo{pool: pool}
}

func (r *AccountRepo) Create(ctx context.Context, a *models.Account) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO accounts (id, email, api_key_hash, api_key_prefix, tier, usage_count, monthly_limit, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`, a.ID, a.Email, a.APIKeyHash, a.APIKeyPrefix, a.Tier, a.UsageCount, a.MonthlyLimit, a.IsActive).Scan(&a.CreatedAt)
}

func (r *AccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	return r.scanOne(r.pool.QueryRow(ctx, `
		SELECT id, email, api_key_hash, api_key_prefix, tier, usage_count, monthly_limit, is_active, created_at, last_used_at
		FROM accounts WHERE id = $1
	`, id))
}

// FindActiveByKeyHash resolves an API key digest to an active account.
// Returns pgx.ErrNoRows for unknown hashes and for deactivated accounts.
func (r *AccountRepo) FindActiveByKeyHash(ctx context.Context, keyHash string) (*models.Account, error) {
	return r.scanOne(r.pool.QueryRow(ctx, `
		SELECT id, email, api_key_hash, api_key_prefix, tier, usage_count, monthly_limit, is_active, created_at, last_used_at
		FROM accounts WHERE api_key_hash = $1 AND is_active = TRUE
	`, keyHash))
}

// ConsumeQuota applies the limit check and the usage increment as one
// statement so concurrent submissions cannot overshoot the monthly limit.
// Returns pgx.ErrNoRows when the account is already at its limit.
func (r *AccountRepo) ConsumeQuota(ctx context.Context, tx pgx.Tx, id uuid.UUID) (usageCount, monthlyLimit int, err error) {
	err = tx.QueryRow(ctx, `
		UPDATE accounts SET usage_count = usage_count + 1, last_used_at = now()
		WHERE id = $1 AND usage_count < monthly_limit
		RETURNING usage_count, monthly_limit
	`, id).Scan(&usageCount, &monthlyLimit)
	return usageCount, monthlyLimit, err
}

func (r *AccountRepo) List(ctx context.Context) ([]*models.Account, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, email, api_key_hash, api_key_prefix, tier, usage_count, monthly_limit, is_active, created_at, last_used_at
		FROM accounts ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Account
	for rows.Next() {
		var a models.Account
		if err := rows.Scan(&a.ID, &a.Email, &a.APIKeyHash, &a.APIKeyPrefix, &a.Tier, &a.UsageCount, &a.MonthlyLimit, &a.IsActive, &a.CreatedAt, &a.LastUsedAt); err != nil {
			return nil, err
		}
		list = append(list, &a)
	}
	return list, rows.Err()
}

// CountAll returns total and active account counts for reporting.
func (r *AccountRepo) CountAll(ctx context.Context) (total, active int, err error) {
	err = r.pool.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE is_active) FROM accounts
	`).Scan(&total, &active)
	return total, active, err
}

func (r *AccountRepo) scanOne(row pgx.Row) (*models.Account, error) {
	var a models.Account
	err := row.Scan(&a.ID, &a.Email, &a.APIKeyHash, &a.APIKeyPrefix, &a.Tier, &a.UsageCount, &a.MonthlyLimit, &a.IsActive, &a.CreatedAt, &a.LastUsedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
