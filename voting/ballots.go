// Copyright (c) 2025 Sharp Sighted Studio.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sharpsighted/ripped-or-stamped/models"
)

// lockEpisodeStatus share-locks the episode row inside tx and verifies the
// expected status. The share lock makes status checks and vote writes atomic
// against a concurrent close, which takes the row FOR UPDATE: either this
// ballot commits before the close tallies, or the close flips the status
// first and this check fails.
func lockEpisodeStatus(tx *sql.Tx, episodeID, want, phaseMsg string) error {
	var status string
	err := tx.QueryRow(`SELECT status FROM episode WHERE id = $1 FOR SHARE`, episodeID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: episode %s", ErrNotFound, episodeID)
	}
	if err != nil {
		return fmt.Errorf("failed to lock episode: %w", err)
	}
	if status != want {
		return fmt.Errorf("%w: %s", ErrPhase, phaseMsg)
	}
	return nil
}

func bumpUserStats(tx *sql.Tx, userID string) error {
	_, err := tx.Exec(`
		INSERT INTO user_stats (user_id, ballots_cast, last_ballot_at)
		VALUES ($1, 1, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET ballots_cast = user_stats.ballots_cast + 1, last_ballot_at = NOW()
	`, userID)
	if err != nil {
		return fmt.Errorf("failed to update user stats: %w", err)
	}
	return nil
}

// CastPaperVote records one paper ballot for the user and increments the
// selected paper's count, all in one transaction. The ballot table's unique
// constraint is the duplicate-vote guard; racing duplicates lose the insert
// and roll back without touching the count.
func CastPaperVote(db *sql.DB, episodeID, userID, paperID string) (string, []models.PaperTally, error) {
	if paperID == "" {
		return "", nil, fmt.Errorf("%w: paperId is required", ErrValidation)
	}

	tx, err := db.Begin()
	if err != nil {
		return "", nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := lockEpisodeStatus(tx, episodeID, models.StatusPaperVoting, "paper voting is not active"); err != nil {
		return "", nil, err
	}

	ballotID := uuid.NewString()
	_, err = tx.Exec(`
		INSERT INTO ballot (id, episode_id, user_id, phase, paper_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, ballotID, episodeID, userID, models.PhasePaper, paperID, time.Now())
	if isUniqueViolation(err) {
		return "", nil, fmt.Errorf("%w: you have already voted in this phase", ErrDuplicateVote)
	}
	if err != nil {
		return "", nil, fmt.Errorf("failed to insert ballot: %w", err)
	}

	res, err := tx.Exec(`
		UPDATE paper SET vote_count = vote_count + 1
		WHERE episode_id = $1 AND id = $2
	`, episodeID, paperID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to increment vote count: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return "", nil, fmt.Errorf("%w: paper %s does not belong to this episode", ErrInvalidSelection, paperID)
	}

	if err := bumpUserStats(tx, userID); err != nil {
		return "", nil, err
	}
	if err := tx.Commit(); err != nil {
		return "", nil, fmt.Errorf("failed to commit ballot: %w", err)
	}

	tallies, err := PaperTallies(db, episodeID)
	if err != nil {
		return "", nil, err
	}
	return ballotID, tallies, nil
}

// CastChallengesVote records one challenges ballot covering benchmark, trap,
// and (when open) ridiculous selections, and increments each selected
// option's count in one transaction.
func CastChallengesVote(db *sql.DB, episodeID, userID string, req *models.SubmitChallengesVoteRequest) (string, *models.ChallengesTallies, error) {
	if req.BenchmarkID == "" {
		return "", nil, fmt.Errorf("%w: benchmarkId is required", ErrValidation)
	}
	if req.TrapID == "" {
		return "", nil, fmt.Errorf("%w: trapId is required", ErrValidation)
	}

	var ridiculousEnabled bool
	err := db.QueryRow(`SELECT ridiculous_enabled FROM episode WHERE id = $1`, episodeID).Scan(&ridiculousEnabled)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil, fmt.Errorf("%w: episode %s", ErrNotFound, episodeID)
	}
	if err != nil {
		return "", nil, fmt.Errorf("failed to load episode: %w", err)
	}

	var ridiculousCount int
	err = db.QueryRow(`
		SELECT COUNT(*) FROM challenge_option
		WHERE episode_id = $1 AND category = $2
	`, episodeID, models.CategoryRidiculous).Scan(&ridiculousCount)
	if err != nil {
		return "", nil, fmt.Errorf("failed to count ridiculous options: %w", err)
	}

	// The ridiculous slot is only mandatory once it has something to vote on.
	if req.RidiculousID == "" && ridiculousEnabled && ridiculousCount > 0 {
		return "", nil, fmt.Errorf("%w: ridiculousId is required", ErrValidation)
	}

	var isNightmare bool
	err = db.QueryRow(`
		SELECT is_nightmare FROM challenge_option
		WHERE episode_id = $1 AND id = $2 AND category = $3
	`, episodeID, req.TrapID, models.CategoryTrap).Scan(&isNightmare)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil, fmt.Errorf("%w: invalid trap selection", ErrInvalidSelection)
	}
	if err != nil {
		return "", nil, fmt.Errorf("failed to load trap: %w", err)
	}
	if isNightmare {
		ok, err := CanSelectNightmare(db, userID)
		if err != nil {
			return "", nil, err
		}
		if !ok {
			return "", nil, fmt.Errorf("%w: nightmare traps require %d prior ballots",
				ErrEligibility, models.NightmareBallotThreshold)
		}
	}

	tx, err := db.Begin()
	if err != nil {
		return "", nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := lockEpisodeStatus(tx, episodeID, models.StatusChallengesVoting, "challenges voting is not active"); err != nil {
		return "", nil, err
	}

	var ridiculousID *string
	if req.RidiculousID != "" {
		ridiculousID = &req.RidiculousID
	}

	ballotID := uuid.NewString()
	_, err = tx.Exec(`
		INSERT INTO ballot (id, episode_id, user_id, phase, benchmark_id, trap_id, ridiculous_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, ballotID, episodeID, userID, models.PhaseChallenges, req.BenchmarkID, req.TrapID, ridiculousID, time.Now())
	if isUniqueViolation(err) {
		return "", nil, fmt.Errorf("%w: you have already voted in this phase", ErrDuplicateVote)
	}
	if err != nil {
		return "", nil, fmt.Errorf("failed to insert ballot: %w", err)
	}

	increments := []struct {
		id, category string
	}{
		{req.BenchmarkID, models.CategoryBenchmark},
		{req.TrapID, models.CategoryTrap},
	}
	if ridiculousID != nil {
		increments = append(increments, struct{ id, category string }{*ridiculousID, models.CategoryRidiculous})
	}
	for _, inc := range increments {
		res, err := tx.Exec(`
			UPDATE challenge_option SET vote_count = vote_count + 1
			WHERE episode_id = $1 AND id = $2 AND category = $3
		`, episodeID, inc.id, inc.category)
		if err != nil {
			return "", nil, fmt.Errorf("failed to increment vote count: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return "", nil, fmt.Errorf("%w: invalid %s selection", ErrInvalidSelection, inc.category)
		}
	}

	if err := bumpUserStats(tx, userID); err != nil {
		return "", nil, err
	}
	if err := tx.Commit(); err != nil {
		return "", nil, fmt.Errorf("failed to commit ballot: %w", err)
	}

	tallies, err := ChallengeTallies(db, episodeID)
	if err != nil {
		return "", nil, err
	}
	return ballotID, tallies, nil
}

// PaperTallies returns the paper standings in stored order.
func PaperTallies(db *sql.DB, episodeID string) ([]models.PaperTally, error) {
	rows, err := db.Query(`
		SELECT id, name, vote_count
		FROM paper
		WHERE episode_id = $1
		ORDER BY position
	`, episodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load paper tallies: %w", err)
	}
	defer rows.Close()

	tallies := []models.PaperTally{}
	for rows.Next() {
		var t models.PaperTally
		if err := rows.Scan(&t.ID, &t.Name, &t.VoteCount); err != nil {
			return nil, err
		}
		tallies = append(tallies, t)
	}
	return tallies, rows.Err()
}

// ChallengeTallies returns the challenges standings per category in stored
// order. Ridiculous entries report their text as the display name.
func ChallengeTallies(db *sql.DB, episodeID string) (*models.ChallengesTallies, error) {
	rows, err := db.Query(`
		SELECT id, category, name, text, vote_count
		FROM challenge_option
		WHERE episode_id = $1
		ORDER BY category, position
	`, episodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load challenge tallies: %w", err)
	}
	defer rows.Close()

	tallies := &models.ChallengesTallies{
		Benchmarks: []models.OptionTally{},
		Traps:      []models.OptionTally{},
		Ridiculous: []models.OptionTally{},
	}
	for rows.Next() {
		var id, category, name, text string
		var count int
		if err := rows.Scan(&id, &category, &name, &text, &count); err != nil {
			return nil, err
		}
		switch category {
		case models.CategoryBenchmark:
			tallies.Benchmarks = append(tallies.Benchmarks, models.OptionTally{ID: id, Name: name, VoteCount: count})
		case models.CategoryTrap:
			tallies.Traps = append(tallies.Traps, models.OptionTally{ID: id, Name: name, VoteCount: count})
		case models.CategoryRidiculous:
			tallies.Ridiculous = append(tallies.Ridiculous, models.OptionTally{ID: id, Name: text, VoteCount: count})
		}
	}
	return tallies, rows.Err()
}

// UserBallotsCast returns the user's lifetime ballot count. Users with no
// stats row have cast zero ballots.
func UserBallotsCast(db *sql.DB, userID string) (int, error) {
	var count int
	err := db.QueryRow(`SELECT ballots_cast FROM user_stats WHERE user_id = $1`, userID).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to load user stats: %w", err)
	}
	return count, nil
}

// CanSelectNightmare reports whether the user has cast enough lifetime
// ballots to pick a nightmare trap.
func CanSelectNightmare(db *sql.DB, userID string) (bool, error) {
	count, err := UserBallotsCast(db, userID)
	if err != nil {
		return false, err
	}
	return count >= models.NightmareBallotThreshold, nil
}

func scanBallot(row *sql.Row) (*models.Ballot, error) {
	var b models.Ballot
	err := row.Scan(&b.ID, &b.EpisodeID, &b.UserID, &b.Phase,
		&b.Selections.PaperID, &b.Selections.BenchmarkID,
		&b.Selections.TrapID, &b.Selections.RidiculousID, &b.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load ballot: %w", err)
	}
	return &b, nil
}

// GetUserBallots returns the user's paper and challenges ballots for an
// episode. Either may be nil when the user has not voted in that phase.
func GetUserBallots(db *sql.DB, episodeID, userID string) (paper, challenges *models.Ballot, err error) {
	const query = `
		SELECT id, episode_id, user_id, phase, paper_id, benchmark_id, trap_id, ridiculous_id, created_at
		FROM ballot
		WHERE episode_id = $1 AND user_id = $2 AND phase = $3
	`
	paper, err = scanBallot(db.QueryRow(query, episodeID, userID, models.PhasePaper))
	if err != nil {
		return nil, nil, err
	}
	challenges, err = scanBallot(db.QueryRow(query, episodeID, userID, models.PhaseChallenges))
	if err != nil {
		return nil, nil, err
	}
	return paper, challenges, nil
}
