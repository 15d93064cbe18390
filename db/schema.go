// Copyright (c) 2025 Sharp Sighted Studio.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
-- Episodes
CREATE TABLE IF NOT EXISTS episode (
    id TEXT PRIMARY KEY,
    episode_number INTEGER NOT NULL UNIQUE,
    operation_title TEXT NOT NULL,
    slug TEXT NOT NULL UNIQUE,
    poll_url TEXT,
    hook TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'paper_voting'
        CHECK (status IN ('paper_voting', 'challenges_voting', 'closed', 'archived')),
    winning_paper_id TEXT,
    paper_name TEXT,
    identity TEXT,
    nightmare TEXT,
    handicap TEXT,
    winning_benchmark_id TEXT,
    winning_trap_id TEXT,
    winning_ridiculous_id TEXT,
    ridiculous_enabled BOOLEAN NOT NULL DEFAULT FALSE,
    ridiculous_locked BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW(),
    closed_at TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_episode_status ON episode(status);
CREATE INDEX IF NOT EXISTS idx_episode_slug ON episode(slug);

-- Paper options (fixed at episode creation; position preserves array order
-- for the first-on-tie winner rule)
CREATE TABLE IF NOT EXISTS paper (
    episode_id TEXT NOT NULL REFERENCES episode(id) ON DELETE CASCADE,
    id TEXT NOT NULL,
    position INTEGER NOT NULL,
    name TEXT NOT NULL,
    weight TEXT NOT NULL,
    texture_ref TEXT NOT NULL,
    inspiration_ref TEXT NOT NULL,
    vote_count INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (episode_id, id)
);

CREATE INDEX IF NOT EXISTS idx_paper_episode ON paper(episode_id);

-- Challenge options: benchmarks, traps, and user-submitted ridiculous
-- entries share one table, discriminated by category
CREATE TABLE IF NOT EXISTS challenge_option (
    episode_id TEXT NOT NULL REFERENCES episode(id) ON DELETE CASCADE,
    id TEXT NOT NULL,
    category TEXT NOT NULL CHECK (category IN ('benchmark', 'trap', 'ridiculous')),
    position INTEGER NOT NULL,
    name TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    trap TEXT NOT NULL DEFAULT '',
    is_nightmare BOOLEAN NOT NULL DEFAULT FALSE,
    text TEXT NOT NULL DEFAULT '',
    submitted_by_user_id TEXT,
    submitted_by_display_name TEXT,
    vote_count INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (episode_id, id)
);

CREATE INDEX IF NOT EXISTS idx_challenge_option_category ON challenge_option(episode_id, category);

-- Ballots: the UNIQUE constraint is the one-vote-per-phase guarantee
CREATE TABLE IF NOT EXISTS ballot (
    id TEXT PRIMARY KEY,
    episode_id TEXT NOT NULL REFERENCES episode(id) ON DELETE CASCADE,
    user_id TEXT NOT NULL,
    phase TEXT NOT NULL CHECK (phase IN ('paper', 'challenges')),
    paper_id TEXT,
    benchmark_id TEXT,
    trap_id TEXT,
    ridiculous_id TEXT,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    UNIQUE (episode_id, user_id, phase)
);

CREATE INDEX IF NOT EXISTS idx_ballot_episode ON ballot(episode_id);
CREATE INDEX IF NOT EXISTS idx_ballot_user ON ballot(user_id);

-- Lifetime ballot counter per user; increments in lockstep with ballot
-- creation, never decrements
CREATE TABLE IF NOT EXISTS user_stats (
    user_id TEXT PRIMARY KEY,
    ballots_cast INTEGER NOT NULL DEFAULT 0,
    last_ballot_at TIMESTAMP
);

-- Audit trail (best-effort writes)
CREATE TABLE IF NOT EXISTS audit_log (
    id TEXT PRIMARY KEY,
    action TEXT NOT NULL,
    actor_user_id TEXT NOT NULL,
    actor_role TEXT NOT NULL,
    entity_type TEXT NOT NULL,
    entity_id TEXT NOT NULL,
    metadata JSONB,
    created_at TIMESTAMP NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_audit_log_entity ON audit_log(entity_type, entity_id);
`
