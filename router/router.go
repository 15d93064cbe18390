// Copyright (c) 2025 Sharp Sighted Studio.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/sharpsighted/ripped-or-stamped/cliparse"
	"github.com/sharpsighted/ripped-or-stamped/handlers"
	"github.com/sharpsighted/ripped-or-stamped/middleware"
)

func NewRouter(db *sql.DB, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	episodeHandler := handlers.NewEpisodeHandler(db, cfg)
	votingHandler := handlers.NewVotingHandler(db, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Episode management (admin operations)
	mux.HandleFunc("POST /admin/episodes", middleware.WithLogging(episodeHandler.CreateEpisode))
	mux.HandleFunc("GET /admin/episodes", middleware.WithLogging(episodeHandler.ListEpisodes))
	mux.HandleFunc("GET /admin/episodes/{id}", middleware.WithLogging(episodeHandler.GetEpisode))
	mux.HandleFunc("PATCH /admin/episodes/{id}", middleware.WithLogging(episodeHandler.UpdateEpisode))
	mux.HandleFunc("DELETE /admin/episodes/{id}", middleware.WithLogging(episodeHandler.ArchiveEpisode))
	mux.HandleFunc("POST /admin/episodes/{id}/close-paper-vote", middleware.WithLogging(episodeHandler.ClosePaperVote))
	mux.HandleFunc("POST /admin/episodes/{id}/close-challenges", middleware.WithLogging(episodeHandler.CloseChallenges))
	mux.HandleFunc("POST /admin/episodes/{id}/benchmarks", middleware.WithLogging(episodeHandler.AddBenchmark))
	mux.HandleFunc("POST /admin/episodes/{id}/traps", middleware.WithLogging(episodeHandler.AddTrap))
	mux.HandleFunc("GET /admin/episodes/{id}/audit", middleware.WithLogging(episodeHandler.GetAuditTrail))

	// Voting operations (authenticated viewers)
	mux.HandleFunc("GET /voting/active", middleware.WithLogging(votingHandler.ActiveEpisode))
	mux.HandleFunc("POST /voting/{id}/paper", middleware.WithLogging(votingHandler.CastPaperVote))
	mux.HandleFunc("POST /voting/{id}/challenges", middleware.WithLogging(votingHandler.CastChallengesVote))
	mux.HandleFunc("POST /voting/{id}/ridiculous", middleware.WithLogging(votingHandler.SubmitRidiculous))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ripped-or-stamped API v1"))
	})

	return mux
}
