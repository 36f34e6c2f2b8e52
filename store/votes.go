// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/danielhkuo/quickly-rank/models"
	"github.com/danielhkuo/quickly-rank/tabulate"
)

// RecordSingleVote adds userID to the poll's voter set and increments the
// counter of the option at position, both or neither.
func (s *Store) RecordSingleVote(ctx context.Context, pollID, userID string, position int, at time.Time) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, s.q(`
			INSERT INTO single_vote_user (poll_id, user_id, position, voted_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT DO NOTHING
		`), pollID, userID, position, at.UTC())
		if err != nil {
			return fmt.Errorf("failed to insert voter: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("failed to insert voter: %w", err)
		} else if n == 0 {
			return ErrAlreadyVoted
		}

		res, err = tx.ExecContext(ctx, s.q(`
			UPDATE poll_option SET votes = votes + 1 WHERE poll_id = ? AND position = ?
		`), pollID, position)
		if err != nil {
			return fmt.Errorf("failed to increment option: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("failed to increment option: %w", err)
		} else if n == 0 {
			return ErrNotFound
		}
		return nil
	})
}

type rankedRow struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Rankings  string    `db:"rankings"`
	CreatedAt time.Time `db:"created_at"`
}

// AppendRankedVote stores ballot and returns its ID.
func (s *Store) AppendRankedVote(ctx context.Context, pollID string, ballot tabulate.Ballot) (string, error) {
	raw, err := json.Marshal(ballot.Rankings)
	if err != nil {
		return "", fmt.Errorf("failed to encode rankings: %w", err)
	}

	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx, s.q(`
		INSERT INTO ranked_vote (id, poll_id, user_id, rankings, created_at)
		VALUES (?, ?, ?, ?, ?)
	`), id, pollID, ballot.Voter, string(raw), ballot.Timestamp.UTC())
	if err != nil {
		return "", fmt.Errorf("failed to insert ranked vote: %w", err)
	}
	return id, nil
}

// RankedVotes returns every ballot of the poll in submission order.
func (s *Store) RankedVotes(ctx context.Context, pollID string) ([]tabulate.Ballot, error) {
	var rows []rankedRow
	err := s.db.SelectContext(ctx, &rows, s.q(`
		SELECT id, user_id, rankings, created_at
		FROM ranked_vote WHERE poll_id = ?
		ORDER BY created_at, id
	`), pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ranked votes: %w", err)
	}

	ballots := make([]tabulate.Ballot, 0, len(rows))
	for _, row := range rows {
		b := tabulate.Ballot{Voter: row.UserID, Timestamp: row.CreatedAt.UTC()}
		if err := json.Unmarshal([]byte(row.Rankings), &b.Rankings); err != nil {
			return nil, fmt.Errorf("ranked vote %s: failed to decode rankings: %w", row.ID, err)
		}
		ballots = append(ballots, b)
	}
	return ballots, nil
}

type pluralityRow struct {
	ID         string    `db:"id"`
	UserID     string    `db:"user_id"`
	Selections string    `db:"selections"`
	CreatedAt  time.Time `db:"created_at"`
}

// AppendPluralityVote stores vote and returns its ID.
func (s *Store) AppendPluralityVote(ctx context.Context, pollID string, vote models.PluralityVote) (string, error) {
	raw, err := json.Marshal(vote.Selections)
	if err != nil {
		return "", fmt.Errorf("failed to encode selections: %w", err)
	}

	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx, s.q(`
		INSERT INTO plurality_vote (id, poll_id, user_id, selections, created_at)
		VALUES (?, ?, ?, ?, ?)
	`), id, pollID, vote.UserID, string(raw), vote.Timestamp.UTC())
	if err != nil {
		return "", fmt.Errorf("failed to insert plurality vote: %w", err)
	}
	return id, nil
}

// PluralityVotes returns every plurality vote of the poll in submission order.
func (s *Store) PluralityVotes(ctx context.Context, pollID string) ([]models.PluralityVote, error) {
	var rows []pluralityRow
	err := s.db.SelectContext(ctx, &rows, s.q(`
		SELECT id, user_id, selections, created_at
		FROM plurality_vote WHERE poll_id = ?
		ORDER BY created_at, id
	`), pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to query plurality votes: %w", err)
	}

	votes := make([]models.PluralityVote, 0, len(rows))
	for _, row := range rows {
		v := models.PluralityVote{UserID: row.UserID, Timestamp: row.CreatedAt.UTC()}
		if err := json.Unmarshal([]byte(row.Selections), &v.Selections); err != nil {
			return nil, fmt.Errorf("plurality vote %s: failed to decode selections: %w", row.ID, err)
		}
		votes = append(votes, v)
	}
	return votes, nil
}
