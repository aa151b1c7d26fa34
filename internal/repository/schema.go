package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the account and job tables if they don't exist.
// River manages its own queue tables separately via rivermigrate.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS accounts (
			id UUID PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			api_key_hash TEXT NOT NULL UNIQUE,
			api_key_prefix TEXT NOT NULL DEFAULT '',
			tier TEXT NOT NULL DEFAULT 'free',
			usage_count INT NOT NULL DEFAULT 0,
			monthly_limit INT NOT NULL DEFAULT 10,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			last_used_at TIMESTAMPTZ
		);

		CREATE TABLE IF NOT EXISTS content_jobs (
			id UUID PRIMARY KEY,
			owner_id UUID NOT NULL REFERENCES accounts(id),
			topic TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'processing',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			completed_at TIMESTAMPTZ,
			report_path TEXT,
			blog_path TEXT,
			error_message TEXT,
			execution_time_secs INT,
			tokens_used INT,
			estimated_cost DOUBLE PRECISION
		);

		CREATE INDEX IF NOT EXISTS idx_content_jobs_owner_id ON content_jobs (owner_id);
	`)
	return err
}
