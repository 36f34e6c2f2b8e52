// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
// The statements are portable between postgres and sqlite.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Tables lists every table, children first.
var Tables = []string{
	"pairwise_vote",
	"plurality_vote",
	"ranked_vote",
	"single_vote_user",
	"poll_option",
	"poll",
}

const schema = `
-- Polls
CREATE TABLE IF NOT EXISTS poll (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    created_by TEXT NOT NULL,
    voting_format TEXT NOT NULL CHECK (voting_format IN ('single', 'ranked', 'plurality', 'pairwise')),
    rating_system TEXT NOT NULL DEFAULT '',
    ranked_method TEXT NOT NULL DEFAULT '',
    pairwise_stats TEXT,
    stats_version INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_poll_voting_format ON poll(voting_format);

-- Options, addressed by their position within the poll
CREATE TABLE IF NOT EXISTS poll_option (
    poll_id TEXT NOT NULL REFERENCES poll(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    id TEXT NOT NULL,
    text TEXT NOT NULL,
    image_url TEXT NOT NULL DEFAULT '',
    votes INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (poll_id, position),
    UNIQUE (poll_id, id)
);

-- One single-choice vote per user
CREATE TABLE IF NOT EXISTS single_vote_user (
    poll_id TEXT NOT NULL REFERENCES poll(id) ON DELETE CASCADE,
    user_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    voted_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (poll_id, user_id)
);

-- Ranked ballots, rankings stored as JSON
CREATE TABLE IF NOT EXISTS ranked_vote (
    id TEXT PRIMARY KEY,
    poll_id TEXT NOT NULL REFERENCES poll(id) ON DELETE CASCADE,
    user_id TEXT NOT NULL,
    rankings TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_ranked_vote_poll_id ON ranked_vote(poll_id);

-- Plurality votes, selections stored as JSON
CREATE TABLE IF NOT EXISTS plurality_vote (
    id TEXT PRIMARY KEY,
    poll_id TEXT NOT NULL REFERENCES poll(id) ON DELETE CASCADE,
    user_id TEXT NOT NULL,
    selections TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_plurality_vote_poll_id ON plurality_vote(poll_id);

-- Pairwise comparisons, seq is the per-poll arrival order
CREATE TABLE IF NOT EXISTS pairwise_vote (
    id TEXT PRIMARY KEY,
    poll_id TEXT NOT NULL REFERENCES poll(id) ON DELETE CASCADE,
    seq INTEGER NOT NULL,
    user_id TEXT NOT NULL,
    winner INTEGER NOT NULL,
    loser INTEGER NOT NULL,
    draw BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (poll_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_pairwise_vote_user ON pairwise_vote(poll_id, user_id);
`
