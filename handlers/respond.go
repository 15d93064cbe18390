// Copyright (c) 2025 Sharp Sighted Studio.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sharpsighted/ripped-or-stamped/middleware"
	"github.com/sharpsighted/ripped-or-stamped/models"
	"github.com/sharpsighted/ripped-or-stamped/voting"
)

// votingError maps a voting-core error onto an HTTP response. The sentinel
// wrapping keeps the detail message; everything unrecognized is a 500 with
// the detail kept out of the response body.
func votingError(w http.ResponseWriter, err error) {
	msg := err.Error()
	if i := strings.Index(msg, ": "); i >= 0 {
		msg = msg[i+2:]
	}

	switch {
	case errors.Is(err, voting.ErrValidation), errors.Is(err, voting.ErrInvalidSelection):
		middleware.ErrorResponse(w, http.StatusBadRequest, msg)
	case errors.Is(err, voting.ErrEligibility):
		middleware.ErrorResponse(w, http.StatusForbidden, msg)
	case errors.Is(err, voting.ErrNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, msg)
	case errors.Is(err, voting.ErrPhase),
		errors.Is(err, voting.ErrDuplicateVote),
		errors.Is(err, voting.ErrSubmissionsClosed):
		middleware.ErrorResponse(w, http.StatusConflict, msg)
	default:
		slog.Error("unexpected voting error", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Internal error")
	}
}

// requireIdentity resolves the caller or writes a 401/403 and returns nil.
// Every authenticated surface also requires completed onboarding.
func requireIdentity(w http.ResponseWriter, r *http.Request, secret string) *models.Identity {
	ident, err := middleware.Identity(r, secret)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Authentication required")
		return nil
	}
	if !ident.OnboardingComplete {
		middleware.ErrorResponse(w, http.StatusForbidden, "Onboarding required")
		return nil
	}
	return ident
}

// requireAdmin resolves the caller and checks for an admin role, writing the
// error response itself on failure.
func requireAdmin(w http.ResponseWriter, r *http.Request, secret string) *models.Identity {
	ident := requireIdentity(w, r, secret)
	if ident == nil {
		return nil
	}
	if !models.IsAdmin(ident.Role) {
		middleware.ErrorResponse(w, http.StatusForbidden, "Admin access required")
		return nil
	}
	return ident
}
