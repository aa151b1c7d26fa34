package jobs

import (
	"errors"
	"fmt"
)

// ErrJobNotFound covers both a nonexistent job id and a job owned by a
// different account; the two are indistinguishable to the caller.
var ErrJobNotFound = errors.New("job not found")

// ValidationError rejects a malformed submission before any state changes.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// QuotaExceededError rejects a submission from an account at its monthly
// limit. Limit is carried for display.
type QuotaExceededError struct {
	Limit int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("monthly limit reached (%d requests)", e.Limit)
}
