// Copyright (c) 2025 Sharp Sighted Studio.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"errors"

	"github.com/lib/pq"
)

// Sentinel errors for the episode state machine. Each maps to one distinct,
// recoverable outcome for the caller; handlers translate them to HTTP
// statuses. Operations wrap these with detail, so match with errors.Is.
var (
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("invalid input")
	ErrPhase             = errors.New("wrong phase")
	ErrDuplicateVote     = errors.New("already voted")
	ErrInvalidSelection  = errors.New("invalid selection")
	ErrEligibility       = errors.New("not eligible")
	ErrSubmissionsClosed = errors.New("submissions closed")
)

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
