// Copyright (c) 2025 Sharp Sighted Studio.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/sharpsighted/ripped-or-stamped/cliparse"
	"github.com/sharpsighted/ripped-or-stamped/middleware"
	"github.com/sharpsighted/ripped-or-stamped/models"
	"github.com/sharpsighted/ripped-or-stamped/voting"
)

type VotingHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewVotingHandler(db *sql.DB, cfg cliparse.Config) *VotingHandler {
	return &VotingHandler{db: db, cfg: cfg}
}

// ActiveEpisode handles GET /voting/active
// Returns the open episode overlaid with the caller's ballots and
// per-trap selectability.
func (h *VotingHandler) ActiveEpisode(w http.ResponseWriter, r *http.Request) {
	ident := requireIdentity(w, r, h.cfg.SessionSecret)
	if ident == nil {
		return
	}

	ep, err := voting.ActiveEpisode(h.db)
	if err != nil {
		votingError(w, err)
		return
	}

	paperBallot, challengesBallot, err := voting.GetUserBallots(h.db, ep.ID, ident.UserID)
	if err != nil {
		slog.Error("failed to load user ballots", "episode_id", ep.ID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	canNightmare, err := voting.CanSelectNightmare(h.db, ident.UserID)
	if err != nil {
		slog.Error("failed to check nightmare eligibility", "user_id", ident.UserID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	// Nightmare traps stay visible either way; CanSelect tells the client
	// whether this voter may pick them.
	for i := range ep.Options.Traps {
		ep.Options.Traps[i].CanSelect = !ep.Options.Traps[i].IsNightmare || canNightmare
	}

	middleware.JSONResponse(w, http.StatusOK, models.ActiveEpisodeResponse{
		Episode:            ep,
		UserPaperVote:      paperBallot,
		UserChallengesVote: challengesBallot,
		CanVoteNightmare:   canNightmare,
	})
}

// CastPaperVote handles POST /voting/{id}/paper
func (h *VotingHandler) CastPaperVote(w http.ResponseWriter, r *http.Request) {
	ident := requireIdentity(w, r, h.cfg.SessionSecret)
	if ident == nil {
		return
	}

	var req models.SubmitPaperVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	episodeID := r.PathValue("id")
	ballotID, tallies, err := voting.CastPaperVote(h.db, episodeID, ident.UserID, req.PaperID)
	if err != nil {
		votingError(w, err)
		return
	}

	slog.Info("paper vote cast", "episode_id", episodeID, "user_id", ident.UserID, "ip", middleware.GetClientIP(r))

	middleware.JSONResponse(w, http.StatusCreated, models.SubmitPaperVoteResponse{
		BallotID: ballotID,
		Results:  tallies,
	})
}

// CastChallengesVote handles POST /voting/{id}/challenges
func (h *VotingHandler) CastChallengesVote(w http.ResponseWriter, r *http.Request) {
	ident := requireIdentity(w, r, h.cfg.SessionSecret)
	if ident == nil {
		return
	}

	var req models.SubmitChallengesVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	episodeID := r.PathValue("id")
	ballotID, tallies, err := voting.CastChallengesVote(h.db, episodeID, ident.UserID, &req)
	if err != nil {
		votingError(w, err)
		return
	}

	slog.Info("challenges vote cast", "episode_id", episodeID, "user_id", ident.UserID, "ip", middleware.GetClientIP(r))

	middleware.JSONResponse(w, http.StatusCreated, models.SubmitChallengesVoteResponse{
		BallotID: ballotID,
		Results:  *tallies,
	})
}

// SubmitRidiculous handles POST /voting/{id}/ridiculous
func (h *VotingHandler) SubmitRidiculous(w http.ResponseWriter, r *http.Request) {
	ident := requireIdentity(w, r, h.cfg.SessionSecret)
	if ident == nil {
		return
	}

	var req models.SubmitRidiculousRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	episodeID := r.PathValue("id")
	opt, locked, count, err := voting.AddRidiculousOption(h.db, episodeID, req.Text, ident.UserID, ident.DisplayName)
	if err != nil {
		votingError(w, err)
		return
	}

	slog.Info("ridiculous submission accepted",
		"episode_id", episodeID,
		"user_id", ident.UserID,
		"count", count,
		"locked", locked,
	)

	middleware.JSONResponse(w, http.StatusCreated, models.SubmitRidiculousResponse{
		OptionID:          opt.ID,
		Text:              opt.Text,
		SubmissionsLocked: locked,
		CurrentCount:      count,
	})
}
