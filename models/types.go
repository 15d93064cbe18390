// Copyright (c) 2025 Sharp Sighted Studio.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Episode status constants
const (
	StatusPaperVoting      = "paper_voting"
	StatusChallengesVoting = "challenges_voting"
	StatusClosed           = "closed"
	StatusArchived         = "archived"
)

// Ballot phase constants
const (
	PhasePaper      = "paper"
	PhaseChallenges = "challenges"
)

// User role constants
const (
	RoleUser       = "user"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "superAdmin"
)

// Challenge option categories
const (
	CategoryBenchmark  = "benchmark"
	CategoryTrap       = "trap"
	CategoryRidiculous = "ridiculous"
)

// NightmareBallotThreshold is the lifetime ballot count required before a
// voter may select a nightmare trap.
const NightmareBallotThreshold = 3

// RidiculousSubmissionCap is the number of ridiculous options an episode
// accepts before intake locks.
const RidiculousSubmissionCap = 5

// RidiculousTextLimit is the maximum length of a ridiculous submission.
const RidiculousTextLimit = 120

// IsAdmin reports whether a role carries the elevated capability required
// for episode administration.
func IsAdmin(role string) bool {
	return role == RoleAdmin || role == RoleSuperAdmin
}

// Identity is the authenticated caller, decoded from the session token.
type Identity struct {
	UserID             string
	DisplayName        string
	Role               string
	OnboardingComplete bool
}

// Request types

type PaperInput struct {
	Name           string `json:"name"`
	Weight         string `json:"weight"`
	TextureRef     string `json:"textureRef"`
	InspirationRef string `json:"inspirationRef"`
}

type CreateEpisodeRequest struct {
	EpisodeNumber  int          `json:"episodeNumber"`
	OperationTitle string       `json:"operationTitle"`
	Slug           string       `json:"slug"`
	PollURL        *string      `json:"pollUrl,omitempty"`
	Hook           string       `json:"hook"`
	Papers         []PaperInput `json:"papers"`
}

// UpdateEpisodeRequest carries admin metadata edits. Nil fields are left
// untouched.
type UpdateEpisodeRequest struct {
	OperationTitle    *string `json:"operationTitle,omitempty"`
	Slug              *string `json:"slug,omitempty"`
	PollURL           *string `json:"pollUrl,omitempty"`
	Hook              *string `json:"hook,omitempty"`
	PaperName         *string `json:"paperName,omitempty"`
	Identity          *string `json:"identity,omitempty"`
	Nightmare         *string `json:"nightmare,omitempty"`
	Handicap          *string `json:"handicap,omitempty"`
	RidiculousEnabled *bool   `json:"ridiculousEnabled,omitempty"`
}

type AddBenchmarkRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type AddTrapRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Trap        string `json:"trap"`
	IsNightmare bool   `json:"isNightmare"`
}

type SubmitPaperVoteRequest struct {
	PaperID string `json:"paperId"`
}

type SubmitChallengesVoteRequest struct {
	BenchmarkID  string `json:"benchmarkId"`
	TrapID       string `json:"trapId"`
	RidiculousID string `json:"ridiculousId,omitempty"`
}

type SubmitRidiculousRequest struct {
	Text string `json:"text"`
}

// Response types

type CreateEpisodeResponse struct {
	EpisodeID      string `json:"episode_id"`
	EpisodeNumber  int    `json:"episode_number"`
	OperationTitle string `json:"operation_title"`
	Slug           string `json:"slug"`
	Status         string `json:"status"`
}

type AddOptionResponse struct {
	OptionID string `json:"option_id"`
}

type PaperTally struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	VoteCount int    `json:"voteCount"`
}

type OptionTally struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	VoteCount int    `json:"voteCount"`
}

type ChallengesTallies struct {
	Benchmarks []OptionTally `json:"benchmarks"`
	Traps      []OptionTally `json:"traps"`
	Ridiculous []OptionTally `json:"ridiculous"`
}

type SubmitPaperVoteResponse struct {
	BallotID string       `json:"ballot_id"`
	Results  []PaperTally `json:"results"`
}

type SubmitChallengesVoteResponse struct {
	BallotID string            `json:"ballot_id"`
	Results  ChallengesTallies `json:"results"`
}

type SubmitRidiculousResponse struct {
	OptionID          string `json:"option_id"`
	Text              string `json:"text"`
	SubmissionsLocked bool   `json:"submissions_locked"`
	CurrentCount      int    `json:"current_count"`
}

type ActiveEpisodeResponse struct {
	Episode            *Episode `json:"episode"`
	UserPaperVote      *Ballot  `json:"user_paper_vote"`
	UserChallengesVote *Ballot  `json:"user_challenges_vote"`
	CanVoteNightmare   bool     `json:"can_vote_nightmare"`
}

// Domain types

type PaperOption struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Weight         string `json:"weight"`
	TextureRef     string `json:"textureRef"`
	InspirationRef string `json:"inspirationRef"`
	VoteCount      int    `json:"voteCount"`
}

type ChallengeOption struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	VoteCount   int    `json:"voteCount"`
}

type TrapOption struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Trap        string `json:"trap"`
	IsNightmare bool   `json:"isNightmare"`
	VoteCount   int    `json:"voteCount"`
	// CanSelect is only meaningful on the active-episode overlay.
	CanSelect bool `json:"canSelect"`
}

type RidiculousOption struct {
	ID                     string `json:"id"`
	Text                   string `json:"text"`
	SubmittedByUserID      string `json:"-"` // Never expose in JSON
	SubmittedByDisplayName string `json:"submittedByDisplayName"`
	VoteCount              int    `json:"voteCount"`
}

type EpisodeOptions struct {
	Benchmarks []ChallengeOption  `json:"benchmarks"`
	Traps      []TrapOption       `json:"traps"`
	Ridiculous []RidiculousOption `json:"ridiculous"`
}

type EpisodeResults struct {
	WinningBenchmarkID  *string `json:"winningBenchmarkId"`
	WinningTrapID       *string `json:"winningTrapId"`
	WinningRidiculousID *string `json:"winningRidiculousId"`
}

type Episode struct {
	ID             string  `json:"id"`
	EpisodeNumber  int     `json:"episodeNumber"`
	OperationTitle string  `json:"operationTitle"`
	Slug           string  `json:"slug"`
	PollURL        *string `json:"pollUrl"`
	Hook           string  `json:"hook"`
	Status         string  `json:"status"`

	Papers         []PaperOption `json:"papers"`
	WinningPaperID *string       `json:"winningPaperId"`

	PaperName *string `json:"paperName"`
	Identity  *string `json:"identity"`
	Nightmare *string `json:"nightmare"`
	Handicap  *string `json:"handicap"`

	Options EpisodeOptions `json:"options"`
	Results EpisodeResults `json:"results"`

	RidiculousEnabled           bool `json:"ridiculousEnabled"`
	RidiculousSubmissionsLocked bool `json:"ridiculousSubmissionsLocked"`

	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	ClosedAt  *time.Time `json:"closedAt"`
}

// EpisodeSummary is the compact listing shape for the admin dashboard.
type EpisodeSummary struct {
	ID             string    `json:"id"`
	EpisodeNumber  int       `json:"episodeNumber"`
	OperationTitle string    `json:"operationTitle"`
	Slug           string    `json:"slug"`
	Status         string    `json:"status"`
	PaperName      *string   `json:"paperName"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type BallotSelections struct {
	PaperID      *string `json:"paperId,omitempty"`
	BenchmarkID  *string `json:"benchmarkId,omitempty"`
	TrapID       *string `json:"trapId,omitempty"`
	RidiculousID *string `json:"ridiculousId,omitempty"`
}

type Ballot struct {
	ID         string           `json:"id"`
	EpisodeID  string           `json:"episodeId"`
	UserID     string           `json:"-"` // Never expose in JSON
	Phase      string           `json:"phase"`
	Selections BallotSelections `json:"selections"`
	CreatedAt  time.Time        `json:"createdAt"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
