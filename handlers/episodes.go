// Copyright (c) 2025 Sharp Sighted Studio.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sharpsighted/ripped-or-stamped/audit"
	"github.com/sharpsighted/ripped-or-stamped/cliparse"
	"github.com/sharpsighted/ripped-or-stamped/middleware"
	"github.com/sharpsighted/ripped-or-stamped/models"
	"github.com/sharpsighted/ripped-or-stamped/voting"
)

type EpisodeHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewEpisodeHandler(db *sql.DB, cfg cliparse.Config) *EpisodeHandler {
	return &EpisodeHandler{db: db, cfg: cfg}
}

// CreateEpisode handles POST /admin/episodes
func (h *EpisodeHandler) CreateEpisode(w http.ResponseWriter, r *http.Request) {
	ident := requireAdmin(w, r, h.cfg.SessionSecret)
	if ident == nil {
		return
	}

	var req models.CreateEpisodeRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	ep, err := voting.CreateEpisode(h.db, &req, ident)
	if err != nil {
		votingError(w, err)
		return
	}

	slog.Info("episode created", "episode_id", ep.ID, "number", ep.EpisodeNumber, "actor", ident.UserID)

	middleware.JSONResponse(w, http.StatusCreated, models.CreateEpisodeResponse{
		EpisodeID:      ep.ID,
		EpisodeNumber:  ep.EpisodeNumber,
		OperationTitle: ep.OperationTitle,
		Slug:           ep.Slug,
		Status:         ep.Status,
	})
}

// ListEpisodes handles GET /admin/episodes
// Accepts an optional ?status= filter.
func (h *EpisodeHandler) ListEpisodes(w http.ResponseWriter, r *http.Request) {
	if requireAdmin(w, r, h.cfg.SessionSecret) == nil {
		return
	}

	status := r.URL.Query().Get("status")
	if status != "" {
		switch status {
		case models.StatusPaperVoting, models.StatusChallengesVoting, models.StatusClosed, models.StatusArchived:
		default:
			middleware.ErrorResponse(w, http.StatusBadRequest, "Unknown status filter")
			return
		}
	}

	episodes, err := voting.ListEpisodes(h.db, status)
	if err != nil {
		slog.Error("failed to list episodes", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, episodes)
}

// GetEpisode handles GET /admin/episodes/{id}
func (h *EpisodeHandler) GetEpisode(w http.ResponseWriter, r *http.Request) {
	if requireAdmin(w, r, h.cfg.SessionSecret) == nil {
		return
	}

	ep, err := voting.GetEpisodeByID(h.db, r.PathValue("id"))
	if err != nil {
		votingError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, ep)
}

// UpdateEpisode handles PATCH /admin/episodes/{id}
func (h *EpisodeHandler) UpdateEpisode(w http.ResponseWriter, r *http.Request) {
	ident := requireAdmin(w, r, h.cfg.SessionSecret)
	if ident == nil {
		return
	}

	var req models.UpdateEpisodeRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	ep, err := voting.UpdateEpisode(h.db, r.PathValue("id"), &req, ident)
	if err != nil {
		votingError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, ep)
}

// ArchiveEpisode handles DELETE /admin/episodes/{id}
// Archiving is the only removal: episodes are never hard-deleted.
func (h *EpisodeHandler) ArchiveEpisode(w http.ResponseWriter, r *http.Request) {
	ident := requireAdmin(w, r, h.cfg.SessionSecret)
	if ident == nil {
		return
	}

	ep, err := voting.ArchiveEpisode(h.db, r.PathValue("id"), ident)
	if err != nil {
		votingError(w, err)
		return
	}

	slog.Info("episode archived", "episode_id", ep.ID, "actor", ident.UserID)
	middleware.JSONResponse(w, http.StatusOK, ep)
}

// ClosePaperVote handles POST /admin/episodes/{id}/close-paper-vote
func (h *EpisodeHandler) ClosePaperVote(w http.ResponseWriter, r *http.Request) {
	ident := requireAdmin(w, r, h.cfg.SessionSecret)
	if ident == nil {
		return
	}

	episodeID := r.PathValue("id")
	ep, err := voting.ClosePaperVoting(h.db, episodeID, ident)
	if err != nil {
		votingError(w, err)
		return
	}

	slog.Info("paper voting closed",
		"episode_id", episodeID,
		"winning_paper_id", *ep.WinningPaperID,
		"actor", ident.UserID,
	)
	middleware.JSONResponse(w, http.StatusOK, ep)
}

// CloseChallenges handles POST /admin/episodes/{id}/close-challenges
func (h *EpisodeHandler) CloseChallenges(w http.ResponseWriter, r *http.Request) {
	ident := requireAdmin(w, r, h.cfg.SessionSecret)
	if ident == nil {
		return
	}

	episodeID := r.PathValue("id")
	ep, err := voting.CloseChallengesVoting(h.db, episodeID, ident)
	if err != nil {
		votingError(w, err)
		return
	}

	slog.Info("challenges voting closed", "episode_id", episodeID, "actor", ident.UserID)
	middleware.JSONResponse(w, http.StatusOK, ep)
}

// AddBenchmark handles POST /admin/episodes/{id}/benchmarks
func (h *EpisodeHandler) AddBenchmark(w http.ResponseWriter, r *http.Request) {
	ident := requireAdmin(w, r, h.cfg.SessionSecret)
	if ident == nil {
		return
	}

	var req models.AddBenchmarkRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	optionID, err := voting.AddBenchmarkOption(h.db, r.PathValue("id"), &req, ident)
	if err != nil {
		votingError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.AddOptionResponse{OptionID: optionID})
}

// AddTrap handles POST /admin/episodes/{id}/traps
func (h *EpisodeHandler) AddTrap(w http.ResponseWriter, r *http.Request) {
	ident := requireAdmin(w, r, h.cfg.SessionSecret)
	if ident == nil {
		return
	}

	var req models.AddTrapRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	optionID, err := voting.AddTrapOption(h.db, r.PathValue("id"), &req, ident)
	if err != nil {
		votingError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.AddOptionResponse{OptionID: optionID})
}

// GetAuditTrail handles GET /admin/episodes/{id}/audit
// Accepts an optional ?limit= (default 50).
func (h *EpisodeHandler) GetAuditTrail(w http.ResponseWriter, r *http.Request) {
	if requireAdmin(w, r, h.cfg.SessionSecret) == nil {
		return
	}

	episodeID := r.PathValue("id")
	if _, err := voting.GetEpisodeByID(h.db, episodeID); err != nil {
		votingError(w, err)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			middleware.ErrorResponse(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	entries, err := audit.ForEntity(h.db, "episode", episodeID, limit)
	if err != nil {
		slog.Error("failed to read audit trail", "episode_id", episodeID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, entries)
}
