// Copyright (c) 2025 Sharp Sighted Studio.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Ripped or Stamped API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg)

# Endpoints

Health:

	GET /health

Episode management (admin bearer token required):

	POST   /admin/episodes                       - Create episode
	GET    /admin/episodes                       - List episodes (?status=)
	GET    /admin/episodes/{id}                  - Full episode detail
	PATCH  /admin/episodes/{id}                  - Edit metadata
	DELETE /admin/episodes/{id}                  - Archive episode
	POST   /admin/episodes/{id}/close-paper-vote - Tally papers, advance phase
	POST   /admin/episodes/{id}/close-challenges - Tally challenges, close
	POST   /admin/episodes/{id}/benchmarks       - Stage benchmark challenge
	POST   /admin/episodes/{id}/traps            - Stage trap challenge
	GET    /admin/episodes/{id}/audit            - Audit trail

Voting (viewer bearer token required):

	GET  /voting/active           - Active episode with caller overlay
	POST /voting/{id}/paper       - Cast paper ballot
	POST /voting/{id}/challenges  - Cast challenges ballot
	POST /voting/{id}/ridiculous  - Submit ridiculous challenge

# Handler Initialization

The router creates handler instances with dependency injection:

	episodeHandler := handlers.NewEpisodeHandler(db, cfg)
	votingHandler := handlers.NewVotingHandler(db, cfg)

All handlers receive the database connection and configuration.
*/
package router
