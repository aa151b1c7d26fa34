package models

import (
	"time"

	"github.com/google/uuid"
)

// Subscription tiers and their monthly request allowances.
const (
	TierFree       = "free"
	TierPro        = "pro"
	TierEnterprise = "enterprise"
)

// MonthlyLimitForTier returns the default monthly request allowance for a tier.
// Unknown tiers fall back to the free allowance.
func MonthlyLimitForTier(tier string) int {
	switch tier {
	case TierPro:
		return 100
	case TierEnterprise:
		return 1000
	default:
		return 10
	}
}

type Account struct {
	ID           uuid.UUID  `json:"id"`
	Email        string     `json:"email"`
	APIKeyHash   string     `json:"-"`
	APIKeyPrefix string     `json:"api_key_prefix"`
	Tier         string     `json:"subscription_tier"`
	UsageCount   int        `json:"usage_count"`
	MonthlyLimit int        `json:"monthly_limit"`
	IsActive     bool       `json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	LastUsedAt   *time.Time `json:"last_used_at,omitempty"`
}
