// Copyright (c) 2025 Sharp Sighted Studio.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database schema creation.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

The schema includes:

  - episode: Episode metadata, lifecycle status, and frozen results
  - paper: Paper options with per-option vote counts
  - challenge_option: Benchmarks, traps, and ridiculous submissions
  - ballot: One ballot per user per phase per episode
  - user_stats: Lifetime ballot counters driving nightmare eligibility
  - audit_log: Append-only trail of state-changing operations

# Relationships

	episode 1──* paper
	episode 1──* challenge_option
	episode 1──* ballot
	user    1──1 user_stats

All foreign keys use ON DELETE CASCADE.

# Constraints

Correctness-critical constraints:

  - ballot UNIQUE (episode_id, user_id, phase): closes the duplicate-vote
    race at the database level
  - episode.status CHECK: only the four lifecycle states are storable
  - episode.slug and episode.episode_number are unique
*/
package db
