// Copyright (c) 2025 Sharp Sighted Studio.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - CreateEpisodeRequest: episodeNumber, operationTitle, slug, hook, papers
  - UpdateEpisodeRequest: partial metadata edits (nil = untouched)
  - AddBenchmarkRequest / AddTrapRequest: admin option staging
  - SubmitPaperVoteRequest: paperId
  - SubmitChallengesVoteRequest: benchmarkId, trapId, optional ridiculousId
  - SubmitRidiculousRequest: text (max 120 chars)

# Domain Types

Internal data structures:

  - Episode: full episode document with papers, options, and frozen results
  - PaperOption / ChallengeOption / TrapOption / RidiculousOption: tallied options
  - Ballot: one voter's submission for one phase of one episode
  - Identity: the authenticated caller decoded from the session token

# Constants

Episode lifecycle:

	StatusPaperVoting      = "paper_voting"
	StatusChallengesVoting = "challenges_voting"
	StatusClosed           = "closed"
	StatusArchived         = "archived"

Ballot phases:

	PhasePaper      = "paper"
	PhaseChallenges = "challenges"

Roles:

	RoleUser       = "user"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "superAdmin"

Game rules:

	NightmareBallotThreshold = 3
	RidiculousSubmissionCap  = 5
	RidiculousTextLimit      = 120
*/
package models
