// Copyright (c) 2025 Sharp Sighted Studio.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Ripped or Stamped API.

# Handler Types

Each handler is a struct with database and config dependencies:

  - EpisodeHandler: Episode lifecycle and curation (admin surface)
  - VotingHandler: Active episode retrieval, ballots, and ridiculous submissions

Handlers are created via constructor functions that accept *sql.DB and Config:

	episodeHandler := handlers.NewEpisodeHandler(db, cfg)

# Episode Lifecycle

Episodes progress through the phases: paper_voting → challenges_voting → closed

	POST /admin/episodes                          → CreateEpisode
	PATCH /admin/episodes/{id}                    → UpdateEpisode (metadata)
	POST /admin/episodes/{id}/benchmarks          → AddBenchmark
	POST /admin/episodes/{id}/traps               → AddTrap
	POST /admin/episodes/{id}/close-paper-vote    → ClosePaperVote
	POST /admin/episodes/{id}/close-challenges    → CloseChallenges
	DELETE /admin/episodes/{id}                   → ArchiveEpisode

Admin operations require a bearer token with an admin or superAdmin role.

# Voting Flow

Authenticated viewers vote on the active episode:

	GET /voting/active            → ActiveEpisode (with the caller's ballots)
	POST /voting/{id}/paper       → CastPaperVote
	POST /voting/{id}/challenges  → CastChallengesVote
	POST /voting/{id}/ridiculous  → SubmitRidiculous

Voter operations require a bearer token and completed onboarding.

# Error Mapping

The voting core returns wrapped sentinel errors; votingError translates them:

	ErrValidation, ErrInvalidSelection       → 400
	ErrEligibility                           → 403
	ErrNotFound                              → 404
	ErrPhase, ErrDuplicateVote,
	ErrSubmissionsClosed                     → 409
*/
package handlers
