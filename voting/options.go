// Copyright (c) 2025 Sharp Sighted Studio.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sharpsighted/ripped-or-stamped/audit"
	"github.com/sharpsighted/ripped-or-stamped/auth"
	"github.com/sharpsighted/ripped-or-stamped/models"
)

func episodeStatus(db *sql.DB, episodeID string) (string, error) {
	var status string
	err := db.QueryRow(`SELECT status FROM episode WHERE id = $1`, episodeID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: episode %s", ErrNotFound, episodeID)
	}
	if err != nil {
		return "", fmt.Errorf("failed to load episode: %w", err)
	}
	return status, nil
}

func insertOption(db *sql.DB, episodeID, category string, insert func(tx *sql.Tx, id string, position int) error) (string, error) {
	id, err := auth.GenerateID(5)
	if err != nil {
		return "", err
	}

	tx, err := db.Begin()
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var count int
	err = tx.QueryRow(`
		SELECT COUNT(*) FROM challenge_option
		WHERE episode_id = $1 AND category = $2
	`, episodeID, category).Scan(&count)
	if err != nil {
		return "", fmt.Errorf("failed to count options: %w", err)
	}

	if err := insert(tx, id, count+1); err != nil {
		return "", fmt.Errorf("failed to insert option: %w", err)
	}

	if _, err := tx.Exec(`UPDATE episode SET updated_at = NOW() WHERE id = $1`, episodeID); err != nil {
		return "", fmt.Errorf("failed to touch episode: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit option: %w", err)
	}
	return id, nil
}

// AddBenchmarkOption stages a benchmark challenge on an episode. Admins may
// stage options in any non-archived state, so an episode can be prepared
// while paper voting is still open.
func AddBenchmarkOption(db *sql.DB, episodeID string, req *models.AddBenchmarkRequest, actor *models.Identity) (string, error) {
	if strings.TrimSpace(req.Name) == "" {
		return "", fmt.Errorf("%w: name is required", ErrValidation)
	}
	if strings.TrimSpace(req.Description) == "" {
		return "", fmt.Errorf("%w: description is required", ErrValidation)
	}

	status, err := episodeStatus(db, episodeID)
	if err != nil {
		return "", err
	}
	if status == models.StatusArchived {
		return "", fmt.Errorf("%w: episode is archived", ErrPhase)
	}

	id, err := insertOption(db, episodeID, models.CategoryBenchmark, func(tx *sql.Tx, id string, position int) error {
		_, err := tx.Exec(`
			INSERT INTO challenge_option (episode_id, id, category, position, name, description)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, episodeID, id, models.CategoryBenchmark, position, req.Name, req.Description)
		return err
	})
	if err != nil {
		return "", err
	}

	audit.Record(db, audit.Entry{
		Action:      "episode.add_benchmark",
		ActorUserID: actor.UserID,
		ActorRole:   actor.Role,
		EntityType:  "episode",
		EntityID:    episodeID,
		Metadata:    map[string]any{"optionId": id, "name": req.Name},
	})
	return id, nil
}

// AddTrapOption stages a trap challenge on an episode. Nightmare traps gate
// selection at vote time, not at staging.
func AddTrapOption(db *sql.DB, episodeID string, req *models.AddTrapRequest, actor *models.Identity) (string, error) {
	if strings.TrimSpace(req.Name) == "" {
		return "", fmt.Errorf("%w: name is required", ErrValidation)
	}
	if strings.TrimSpace(req.Description) == "" {
		return "", fmt.Errorf("%w: description is required", ErrValidation)
	}
	if strings.TrimSpace(req.Trap) == "" {
		return "", fmt.Errorf("%w: trap is required", ErrValidation)
	}

	status, err := episodeStatus(db, episodeID)
	if err != nil {
		return "", err
	}
	if status == models.StatusArchived {
		return "", fmt.Errorf("%w: episode is archived", ErrPhase)
	}

	id, err := insertOption(db, episodeID, models.CategoryTrap, func(tx *sql.Tx, id string, position int) error {
		_, err := tx.Exec(`
			INSERT INTO challenge_option (episode_id, id, category, position, name, description, trap, is_nightmare)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, episodeID, id, models.CategoryTrap, position, req.Name, req.Description, req.Trap, req.IsNightmare)
		return err
	})
	if err != nil {
		return "", err
	}

	audit.Record(db, audit.Entry{
		Action:      "episode.add_trap",
		ActorUserID: actor.UserID,
		ActorRole:   actor.Role,
		EntityType:  "episode",
		EntityID:    episodeID,
		Metadata:    map[string]any{"optionId": id, "name": req.Name, "isNightmare": req.IsNightmare},
	})
	return id, nil
}

// AddRidiculousOption accepts a community-submitted ridiculous challenge.
// The episode row is locked FOR UPDATE so the count-check-insert sequence is
// serialized per episode: the cap holds exactly at RidiculousSubmissionCap
// under concurrent submissions, and the accepting transaction for the final
// slot also flips the intake lock.
func AddRidiculousOption(db *sql.DB, episodeID, text, userID, displayName string) (*models.RidiculousOption, bool, int, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, false, 0, fmt.Errorf("%w: text is required", ErrValidation)
	}
	if utf8.RuneCountInString(text) > models.RidiculousTextLimit {
		return nil, false, 0, fmt.Errorf("%w: text must be %d characters or less",
			ErrValidation, models.RidiculousTextLimit)
	}

	id, err := auth.GenerateID(5)
	if err != nil {
		return nil, false, 0, err
	}

	tx, err := db.Begin()
	if err != nil {
		return nil, false, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var status string
	var enabled, locked bool
	err = tx.QueryRow(`
		SELECT status, ridiculous_enabled, ridiculous_locked
		FROM episode WHERE id = $1
		FOR UPDATE
	`, episodeID).Scan(&status, &enabled, &locked)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, 0, fmt.Errorf("%w: episode %s", ErrNotFound, episodeID)
	}
	if err != nil {
		return nil, false, 0, fmt.Errorf("failed to lock episode: %w", err)
	}

	if !enabled {
		return nil, false, 0, fmt.Errorf("%w: ridiculous submissions are not enabled", ErrValidation)
	}
	if status != models.StatusChallengesVoting {
		return nil, false, 0, fmt.Errorf("%w: challenges voting is not active", ErrPhase)
	}
	if locked {
		return nil, false, 0, fmt.Errorf("%w: ridiculous submissions are closed", ErrSubmissionsClosed)
	}

	var count int
	err = tx.QueryRow(`
		SELECT COUNT(*) FROM challenge_option
		WHERE episode_id = $1 AND category = $2
	`, episodeID, models.CategoryRidiculous).Scan(&count)
	if err != nil {
		return nil, false, 0, fmt.Errorf("failed to count submissions: %w", err)
	}
	if count >= models.RidiculousSubmissionCap {
		// Lock flag lagged behind the cap; repair it and reject.
		if _, err := tx.Exec(`UPDATE episode SET ridiculous_locked = TRUE, updated_at = NOW() WHERE id = $1`, episodeID); err != nil {
			return nil, false, 0, fmt.Errorf("failed to lock submissions: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return nil, false, 0, fmt.Errorf("failed to commit lock: %w", err)
		}
		return nil, true, count, fmt.Errorf("%w: ridiculous submissions are closed", ErrSubmissionsClosed)
	}

	_, err = tx.Exec(`
		INSERT INTO challenge_option (episode_id, id, category, position, text, submitted_by_user_id, submitted_by_display_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, episodeID, id, models.CategoryRidiculous, count+1, text, userID, displayName)
	if err != nil {
		return nil, false, 0, fmt.Errorf("failed to insert submission: %w", err)
	}

	nowLocked := count+1 >= models.RidiculousSubmissionCap
	if nowLocked {
		if _, err := tx.Exec(`UPDATE episode SET ridiculous_locked = TRUE WHERE id = $1`, episodeID); err != nil {
			return nil, false, 0, fmt.Errorf("failed to lock submissions: %w", err)
		}
	}
	if _, err := tx.Exec(`UPDATE episode SET updated_at = NOW() WHERE id = $1`, episodeID); err != nil {
		return nil, false, 0, fmt.Errorf("failed to touch episode: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, false, 0, fmt.Errorf("failed to commit submission: %w", err)
	}

	opt := &models.RidiculousOption{
		ID:                     id,
		Text:                   text,
		SubmittedByUserID:      userID,
		SubmittedByDisplayName: displayName,
	}
	return opt, nowLocked, count + 1, nil
}
