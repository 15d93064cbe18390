// Copyright (c) 2025 Sharp Sighted Studio.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sharpsighted/ripped-or-stamped/audit"
	"github.com/sharpsighted/ripped-or-stamped/auth"
	"github.com/sharpsighted/ripped-or-stamped/models"
)

const episodeColumns = `id, episode_number, operation_title, slug, poll_url, hook, status,
	winning_paper_id, paper_name, identity, nightmare, handicap,
	winning_benchmark_id, winning_trap_id, winning_ridiculous_id,
	ridiculous_enabled, ridiculous_locked, created_at, updated_at, closed_at`

func scanEpisode(row *sql.Row) (*models.Episode, error) {
	var ep models.Episode
	err := row.Scan(
		&ep.ID, &ep.EpisodeNumber, &ep.OperationTitle, &ep.Slug, &ep.PollURL, &ep.Hook, &ep.Status,
		&ep.WinningPaperID, &ep.PaperName, &ep.Identity, &ep.Nightmare, &ep.Handicap,
		&ep.Results.WinningBenchmarkID, &ep.Results.WinningTrapID, &ep.Results.WinningRidiculousID,
		&ep.RidiculousEnabled, &ep.RidiculousSubmissionsLocked,
		&ep.CreatedAt, &ep.UpdatedAt, &ep.ClosedAt,
	)
	if err != nil {
		return nil, err
	}
	return &ep, nil
}

func loadPapers(db *sql.DB, episodeID string) ([]models.PaperOption, error) {
	rows, err := db.Query(`
		SELECT id, name, weight, texture_ref, inspiration_ref, vote_count
		FROM paper
		WHERE episode_id = $1
		ORDER BY position
	`, episodeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	papers := []models.PaperOption{}
	for rows.Next() {
		var p models.PaperOption
		if err := rows.Scan(&p.ID, &p.Name, &p.Weight, &p.TextureRef, &p.InspirationRef, &p.VoteCount); err != nil {
			return nil, err
		}
		papers = append(papers, p)
	}
	return papers, rows.Err()
}

func loadOptions(db *sql.DB, episodeID string) (models.EpisodeOptions, error) {
	opts := models.EpisodeOptions{
		Benchmarks: []models.ChallengeOption{},
		Traps:      []models.TrapOption{},
		Ridiculous: []models.RidiculousOption{},
	}

	rows, err := db.Query(`
		SELECT id, category, name, description, trap, is_nightmare, text,
		       COALESCE(submitted_by_user_id, ''), COALESCE(submitted_by_display_name, ''), vote_count
		FROM challenge_option
		WHERE episode_id = $1
		ORDER BY category, position
	`, episodeID)
	if err != nil {
		return opts, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id, category, name, description, trap, text string
			submitterID, submitterName                  string
			isNightmare                                 bool
			voteCount                                   int
		)
		err := rows.Scan(&id, &category, &name, &description, &trap, &isNightmare, &text,
			&submitterID, &submitterName, &voteCount)
		if err != nil {
			return opts, err
		}

		switch category {
		case models.CategoryBenchmark:
			opts.Benchmarks = append(opts.Benchmarks, models.ChallengeOption{
				ID: id, Name: name, Description: description, VoteCount: voteCount,
			})
		case models.CategoryTrap:
			opts.Traps = append(opts.Traps, models.TrapOption{
				ID: id, Name: name, Description: description, Trap: trap,
				IsNightmare: isNightmare, VoteCount: voteCount,
			})
		case models.CategoryRidiculous:
			opts.Ridiculous = append(opts.Ridiculous, models.RidiculousOption{
				ID: id, Text: text, SubmittedByUserID: submitterID,
				SubmittedByDisplayName: submitterName, VoteCount: voteCount,
			})
		}
	}
	return opts, rows.Err()
}

// GetEpisodeByID returns a fully hydrated episode: papers, challenge
// options, and results.
func GetEpisodeByID(db *sql.DB, id string) (*models.Episode, error) {
	ep, err := scanEpisode(db.QueryRow(`SELECT `+episodeColumns+` FROM episode WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: episode %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load episode: %w", err)
	}

	if ep.Papers, err = loadPapers(db, id); err != nil {
		return nil, fmt.Errorf("failed to load papers: %w", err)
	}
	if ep.Options, err = loadOptions(db, id); err != nil {
		return nil, fmt.Errorf("failed to load options: %w", err)
	}
	return ep, nil
}

// ActiveEpisode returns the episode currently open for voting, preferring
// the highest episode number when more than one is open. ErrNotFound when
// nothing is open.
func ActiveEpisode(db *sql.DB) (*models.Episode, error) {
	row := db.QueryRow(`
		SELECT ` + episodeColumns + `
		FROM episode
		WHERE status IN ('paper_voting', 'challenges_voting')
		ORDER BY episode_number DESC
		LIMIT 1
	`)
	ep, err := scanEpisode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no active episode", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load active episode: %w", err)
	}

	if ep.Papers, err = loadPapers(db, ep.ID); err != nil {
		return nil, fmt.Errorf("failed to load papers: %w", err)
	}
	if ep.Options, err = loadOptions(db, ep.ID); err != nil {
		return nil, fmt.Errorf("failed to load options: %w", err)
	}
	return ep, nil
}

// ListEpisodes returns episode summaries, newest episode number first.
// An empty status lists everything.
func ListEpisodes(db *sql.DB, status string) ([]models.EpisodeSummary, error) {
	query := `
		SELECT id, episode_number, operation_title, slug, status, paper_name, created_at, updated_at
		FROM episode
	`
	args := []any{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY episode_number DESC`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list episodes: %w", err)
	}
	defer rows.Close()

	episodes := []models.EpisodeSummary{}
	for rows.Next() {
		var e models.EpisodeSummary
		err := rows.Scan(&e.ID, &e.EpisodeNumber, &e.OperationTitle, &e.Slug, &e.Status,
			&e.PaperName, &e.CreatedAt, &e.UpdatedAt)
		if err != nil {
			return nil, err
		}
		episodes = append(episodes, e)
	}
	return episodes, rows.Err()
}

func validateCreateEpisode(req *models.CreateEpisodeRequest) error {
	if req.EpisodeNumber <= 0 {
		return fmt.Errorf("%w: episodeNumber must be positive", ErrValidation)
	}
	if strings.TrimSpace(req.OperationTitle) == "" {
		return fmt.Errorf("%w: operationTitle is required", ErrValidation)
	}
	if strings.TrimSpace(req.Hook) == "" {
		return fmt.Errorf("%w: hook is required", ErrValidation)
	}
	if len(req.Papers) < 2 {
		return fmt.Errorf("%w: at least 2 papers are required", ErrValidation)
	}
	for i, p := range req.Papers {
		if strings.TrimSpace(p.Name) == "" || strings.TrimSpace(p.Weight) == "" ||
			strings.TrimSpace(p.TextureRef) == "" || strings.TrimSpace(p.InspirationRef) == "" {
			return fmt.Errorf("%w: paper %d is missing a required field", ErrValidation, i+1)
		}
	}
	return nil
}

// CreateEpisode creates an episode in paper_voting with its fixed roster of
// paper options. Papers keep their submitted order; vote counts start at zero.
func CreateEpisode(db *sql.DB, req *models.CreateEpisodeRequest, actor *models.Identity) (*models.Episode, error) {
	if err := validateCreateEpisode(req); err != nil {
		return nil, err
	}

	slug := auth.SanitizeSlug(req.Slug)
	if slug == "" {
		slug = auth.SanitizeSlug(req.OperationTitle)
	}
	if slug == "" {
		return nil, fmt.Errorf("%w: slug is required", ErrValidation)
	}

	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	episodeID := uuid.NewString()
	now := time.Now()

	_, err = tx.Exec(`
		INSERT INTO episode (id, episode_number, operation_title, slug, poll_url, hook, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
	`, episodeID, req.EpisodeNumber, req.OperationTitle, slug, req.PollURL, req.Hook, models.StatusPaperVoting, now)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("%w: episodeNumber or slug is already in use", ErrValidation)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to insert episode: %w", err)
	}

	for i, p := range req.Papers {
		paperID, err := auth.GenerateID(5)
		if err != nil {
			return nil, err
		}
		_, err = tx.Exec(`
			INSERT INTO paper (episode_id, id, position, name, weight, texture_ref, inspiration_ref)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, episodeID, paperID, i+1, p.Name, p.Weight, p.TextureRef, p.InspirationRef)
		if err != nil {
			return nil, fmt.Errorf("failed to insert paper: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit episode: %w", err)
	}

	audit.Record(db, audit.Entry{
		Action:      "episode.create",
		ActorUserID: actor.UserID,
		ActorRole:   actor.Role,
		EntityType:  "episode",
		EntityID:    episodeID,
		Metadata: map[string]any{
			"episodeNumber": req.EpisodeNumber,
			"slug":          slug,
			"paperCount":    len(req.Papers),
		},
	})

	return GetEpisodeByID(db, episodeID)
}

// UpdateEpisode applies admin metadata edits. Nil fields in the request are
// left untouched. Vote counts, status, and winners are never editable here.
func UpdateEpisode(db *sql.DB, episodeID string, req *models.UpdateEpisodeRequest, actor *models.Identity) (*models.Episode, error) {
	ep, err := GetEpisodeByID(db, episodeID)
	if err != nil {
		return nil, err
	}

	changed := []string{}
	apply := func(field string, dst **string, src *string) {
		if src != nil {
			*dst = src
			changed = append(changed, field)
		}
	}

	if req.OperationTitle != nil {
		if strings.TrimSpace(*req.OperationTitle) == "" {
			return nil, fmt.Errorf("%w: operationTitle cannot be empty", ErrValidation)
		}
		ep.OperationTitle = *req.OperationTitle
		changed = append(changed, "operationTitle")
	}
	if req.Slug != nil {
		slug := auth.SanitizeSlug(*req.Slug)
		if slug == "" {
			return nil, fmt.Errorf("%w: slug cannot be empty", ErrValidation)
		}
		ep.Slug = slug
		changed = append(changed, "slug")
	}
	if req.Hook != nil {
		ep.Hook = *req.Hook
		changed = append(changed, "hook")
	}
	apply("pollUrl", &ep.PollURL, req.PollURL)
	apply("paperName", &ep.PaperName, req.PaperName)
	apply("identity", &ep.Identity, req.Identity)
	apply("nightmare", &ep.Nightmare, req.Nightmare)
	apply("handicap", &ep.Handicap, req.Handicap)
	if req.RidiculousEnabled != nil {
		ep.RidiculousEnabled = *req.RidiculousEnabled
		changed = append(changed, "ridiculousEnabled")
	}

	if len(changed) == 0 {
		return ep, nil
	}

	_, err = db.Exec(`
		UPDATE episode
		SET operation_title = $1, slug = $2, poll_url = $3, hook = $4,
		    paper_name = $5, identity = $6, nightmare = $7, handicap = $8,
		    ridiculous_enabled = $9, updated_at = NOW()
		WHERE id = $10
	`, ep.OperationTitle, ep.Slug, ep.PollURL, ep.Hook,
		ep.PaperName, ep.Identity, ep.Nightmare, ep.Handicap,
		ep.RidiculousEnabled, episodeID)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("%w: slug is already in use", ErrValidation)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update episode: %w", err)
	}

	audit.Record(db, audit.Entry{
		Action:      "episode.update",
		ActorUserID: actor.UserID,
		ActorRole:   actor.Role,
		EntityType:  "episode",
		EntityID:    episodeID,
		Metadata:    map[string]any{"fields": changed},
	})

	return GetEpisodeByID(db, episodeID)
}

// ClosePaperVoting tallies the paper phase, records the winning paper, and
// advances the episode to challenges_voting. The episode row is locked for
// the duration so in-flight votes either land before the tally or are
// rejected by their own phase check.
func ClosePaperVoting(db *sql.DB, episodeID string, actor *models.Identity) (*models.Episode, error) {
	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var status string
	err = tx.QueryRow(`SELECT status FROM episode WHERE id = $1 FOR UPDATE`, episodeID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: episode %s", ErrNotFound, episodeID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock episode: %w", err)
	}
	if status != models.StatusPaperVoting {
		return nil, fmt.Errorf("%w: paper voting is not active", ErrPhase)
	}

	rows, err := tx.Query(`
		SELECT id, name, vote_count
		FROM paper
		WHERE episode_id = $1
		ORDER BY position
		FOR UPDATE
	`, episodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to read papers: %w", err)
	}

	var ids, names []string
	var counts []int
	for rows.Next() {
		var id, name string
		var count int
		if err := rows.Scan(&id, &name, &count); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
		names = append(names, name)
		counts = append(counts, count)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: episode has no papers", ErrValidation)
	}

	win := winnerIndex(counts)

	_, err = tx.Exec(`
		UPDATE episode
		SET status = $1, winning_paper_id = $2, paper_name = $3, updated_at = NOW()
		WHERE id = $4
	`, models.StatusChallengesVoting, ids[win], names[win], episodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to close paper voting: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}

	audit.Record(db, audit.Entry{
		Action:      "episode.close_paper_vote",
		ActorUserID: actor.UserID,
		ActorRole:   actor.Role,
		EntityType:  "episode",
		EntityID:    episodeID,
		Metadata: map[string]any{
			"winningPaperId": ids[win],
			"paperName":      names[win],
			"voteCount":      counts[win],
		},
	})

	return GetEpisodeByID(db, episodeID)
}

func lockedTally(tx *sql.Tx, episodeID, category string) (ids []string, counts []int, err error) {
	rows, err := tx.Query(`
		SELECT id, vote_count
		FROM challenge_option
		WHERE episode_id = $1 AND category = $2
		ORDER BY position
		FOR UPDATE
	`, episodeID, category)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s options: %w", category, err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var count int
		if err := rows.Scan(&id, &count); err != nil {
			return nil, nil, err
		}
		ids = append(ids, id)
		counts = append(counts, count)
	}
	return ids, counts, rows.Err()
}

// CloseChallengesVoting tallies benchmarks, traps, and ridiculous options,
// records the winners, and closes the episode. A ridiculous winner is only
// recorded when at least one ridiculous option exists.
func CloseChallengesVoting(db *sql.DB, episodeID string, actor *models.Identity) (*models.Episode, error) {
	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var status string
	err = tx.QueryRow(`SELECT status FROM episode WHERE id = $1 FOR UPDATE`, episodeID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: episode %s", ErrNotFound, episodeID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock episode: %w", err)
	}
	if status != models.StatusChallengesVoting {
		return nil, fmt.Errorf("%w: challenges voting is not active", ErrPhase)
	}

	benchIDs, benchCounts, err := lockedTally(tx, episodeID, models.CategoryBenchmark)
	if err != nil {
		return nil, err
	}
	trapIDs, trapCounts, err := lockedTally(tx, episodeID, models.CategoryTrap)
	if err != nil {
		return nil, err
	}
	ridIDs, ridCounts, err := lockedTally(tx, episodeID, models.CategoryRidiculous)
	if err != nil {
		return nil, err
	}

	if len(benchIDs) == 0 {
		return nil, fmt.Errorf("%w: episode has no benchmark options", ErrValidation)
	}
	if len(trapIDs) == 0 {
		return nil, fmt.Errorf("%w: episode has no trap options", ErrValidation)
	}

	winBench := benchIDs[winnerIndex(benchCounts)]
	winTrap := trapIDs[winnerIndex(trapCounts)]
	var winRid *string
	if len(ridIDs) > 0 {
		id := ridIDs[winnerIndex(ridCounts)]
		winRid = &id
	}

	_, err = tx.Exec(`
		UPDATE episode
		SET status = $1, winning_benchmark_id = $2, winning_trap_id = $3,
		    winning_ridiculous_id = $4, closed_at = NOW(), updated_at = NOW()
		WHERE id = $5
	`, models.StatusClosed, winBench, winTrap, winRid, episodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to close challenges voting: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}

	meta := map[string]any{
		"winningBenchmarkId": winBench,
		"winningTrapId":      winTrap,
	}
	if winRid != nil {
		meta["winningRidiculousId"] = *winRid
	}
	audit.Record(db, audit.Entry{
		Action:      "episode.close_challenges_vote",
		ActorUserID: actor.UserID,
		ActorRole:   actor.Role,
		EntityType:  "episode",
		EntityID:    episodeID,
		Metadata:    meta,
	})

	return GetEpisodeByID(db, episodeID)
}

// ArchiveEpisode moves an episode to archived from any state. Archiving is
// terminal and always allowed; tallied results are kept as-is.
func ArchiveEpisode(db *sql.DB, episodeID string, actor *models.Identity) (*models.Episode, error) {
	res, err := db.Exec(`UPDATE episode SET status = $1, updated_at = NOW() WHERE id = $2`,
		models.StatusArchived, episodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to archive episode: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: episode %s", ErrNotFound, episodeID)
	}

	audit.Record(db, audit.Entry{
		Action:      "episode.archive",
		ActorUserID: actor.UserID,
		ActorRole:   actor.Role,
		EntityType:  "episode",
		EntityID:    episodeID,
	})

	return GetEpisodeByID(db, episodeID)
}
