package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrMarketClosed   = errors.New("market is not accepting bets")
	ErrInvalidState   = errors.New("invalid lifecycle transition")
	ErrAlreadyClaimed = errors.New("payout already claimed")
	ErrNotAWinner     = errors.New("prediction did not win")
	ErrNotResolved    = errors.New("market is not resolved")
	ErrConflict       = errors.New("already exists")
	ErrBusy           = errors.New("market busy, try again")
)

// ValidationError aggregates every violated constraint of a request so the
// caller can fix all of them in one pass.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Violations, "; ")
}

// Add appends a formatted violation message.
func (e *ValidationError) Add(format string, args ...interface{}) {
	e.Violations = append(e.Violations, fmt.Sprintf(format, args...))
}

// Err returns the error if any violations were recorded, nil otherwise.
func (e *ValidationError) Err() error {
	if len(e.Violations) == 0 {
		return nil
	}
	return e
}
