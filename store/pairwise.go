// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/danielhkuo/quickly-rank/models"
	"github.com/danielhkuo/quickly-rank/pairwise"
)

// MaxAttempts bounds the optimistic retries of UpdatePairwise.
const MaxAttempts = 5

type pairwiseRow struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Winner    int       `db:"winner"`
	Loser     int       `db:"loser"`
	Draw      bool      `db:"draw"`
	CreatedAt time.Time `db:"created_at"`
}

func (r pairwiseRow) vote() models.PairwiseVote {
	return models.PairwiseVote{
		ID:        r.ID,
		UserID:    r.UserID,
		Winner:    r.Winner,
		Loser:     r.Loser,
		Draw:      r.Draw,
		Timestamp: r.CreatedAt.UTC(),
	}
}

func (s *Store) pairwiseVotes(ctx context.Context, q sqlx.QueryerContext, pollID, userID string) ([]models.PairwiseVote, error) {
	var rows []pairwiseRow
	var err error
	if userID == "" {
		err = sqlx.SelectContext(ctx, q, &rows, s.q(`
			SELECT id, user_id, winner, loser, draw, created_at
			FROM pairwise_vote WHERE poll_id = ?
			ORDER BY seq
		`), pollID)
	} else {
		err = sqlx.SelectContext(ctx, q, &rows, s.q(`
			SELECT id, user_id, winner, loser, draw, created_at
			FROM pairwise_vote WHERE poll_id = ? AND user_id = ?
			ORDER BY seq
		`), pollID, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query pairwise votes: %w", err)
	}

	votes := make([]models.PairwiseVote, len(rows))
	for i, row := range rows {
		votes[i] = row.vote()
	}
	return votes, nil
}

// PairwiseVotes returns the poll's comparison log in arrival order.
func (s *Store) PairwiseVotes(ctx context.Context, pollID string) ([]models.PairwiseVote, error) {
	return s.pairwiseVotes(ctx, s.db, pollID, "")
}

// UserPairwiseVotes returns the comparisons userID submitted to the poll.
func (s *Store) UserPairwiseVotes(ctx context.Context, pollID, userID string) ([]models.PairwiseVote, error) {
	if userID == "" {
		return nil, nil
	}
	return s.pairwiseVotes(ctx, s.db, pollID, userID)
}

func decodeStats(blob sql.NullString) (*pairwise.Stats, error) {
	if !blob.Valid || blob.String == "" {
		return nil, nil
	}
	var stats pairwise.Stats
	if err := json.Unmarshal([]byte(blob.String), &stats); err != nil {
		return nil, fmt.Errorf("%w: %w", pairwise.ErrCorruptStats, err)
	}
	if err := stats.Validate(); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *Store) loadStats(ctx context.Context, q sqlx.QueryerContext, pollID string) (*pairwise.Stats, int, error) {
	var row struct {
		Stats   sql.NullString `db:"pairwise_stats"`
		Version int            `db:"stats_version"`
	}
	err := sqlx.GetContext(ctx, q, &row, s.q(`SELECT pairwise_stats, stats_version FROM poll WHERE id = ?`), pollID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, ErrNotFound
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query stats: %w", err)
	}

	stats, err := decodeStats(row.Stats)
	if err != nil {
		return nil, 0, fmt.Errorf("poll %s: %w", pollID, err)
	}
	return stats, row.Version, nil
}

// LoadPairwiseStats returns the poll's stats (nil if none) and their version.
func (s *Store) LoadPairwiseStats(ctx context.Context, pollID string) (*pairwise.Stats, int, error) {
	return s.loadStats(ctx, s.db, pollID)
}

func (s *Store) writeStats(ctx context.Context, e sqlx.ExecerContext, pollID string, version int, stats *pairwise.Stats) error {
	raw, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to encode stats: %w", err)
	}
	res, err := e.ExecContext(ctx, s.q(`
		UPDATE poll SET pairwise_stats = ?, stats_version = stats_version + 1
		WHERE id = ? AND stats_version = ?
	`), string(raw), pollID, version)
	if err != nil {
		return fmt.Errorf("failed to update stats: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update stats: %w", err)
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

// ReplacePairwiseStats stores stats if the poll is still at version.
func (s *Store) ReplacePairwiseStats(ctx context.Context, pollID string, version int, stats *pairwise.Stats) error {
	return s.writeStats(ctx, s.db, pollID, version, stats)
}

// PairwiseUpdate is the state handed to an UpdatePairwise callback.
type PairwiseUpdate struct {
	// Stats are the current stats, nil if the poll has none yet.
	Stats *pairwise.Stats
	// Seq is the 1-based position of the new vote in the poll's log.
	Seq int
	// Vote is the vote being appended, with its ID assigned.
	Vote models.PairwiseVote

	load func() ([]models.PairwiseVote, error)
}

// Votes returns the full log including the new vote.
func (u *PairwiseUpdate) Votes() ([]models.PairwiseVote, error) {
	return u.load()
}

// UpdatePairwise appends vote to the poll's comparison log and replaces the
// stats with the result of fn, atomically. fn may run more than once and
// must not have side effects. The stored vote is returned.
func (s *Store) UpdatePairwise(ctx context.Context, pollID string, vote models.PairwiseVote, fn func(u *PairwiseUpdate) (*pairwise.Stats, error)) (models.PairwiseVote, error) {
	if vote.ID == "" {
		vote.ID = uuid.NewString()
	}
	vote.Timestamp = vote.Timestamp.UTC()

	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		err := s.withTx(ctx, func(tx *sqlx.Tx) error {
			stats, version, err := s.loadStats(ctx, tx, pollID)
			if err != nil {
				return err
			}

			var seq int
			if err := tx.GetContext(ctx, &seq, s.q(`
				SELECT COALESCE(MAX(seq), 0) + 1 FROM pairwise_vote WHERE poll_id = ?
			`), pollID); err != nil {
				return fmt.Errorf("failed to query sequence: %w", err)
			}

			_, err = tx.ExecContext(ctx, s.q(`
				INSERT INTO pairwise_vote (id, poll_id, seq, user_id, winner, loser, draw, created_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			`), vote.ID, pollID, seq, vote.UserID, vote.Winner, vote.Loser, vote.Draw, vote.Timestamp)
			if isUniqueViolation(err) {
				return ErrConflict
			}
			if err != nil {
				return fmt.Errorf("failed to insert pairwise vote: %w", err)
			}

			next, err := fn(&PairwiseUpdate{
				Stats: stats,
				Seq:   seq,
				Vote:  vote,
				load: func() ([]models.PairwiseVote, error) {
					return s.pairwiseVotes(ctx, tx, pollID, "")
				},
			})
			if err != nil {
				return err
			}
			return s.writeStats(ctx, tx, pollID, version, next)
		})
		if !errors.Is(err, ErrConflict) {
			return vote, err
		}
	}
	return vote, ErrConflict
}

// StatsVersion returns the poll's stats version without decoding the stats.
func (s *Store) StatsVersion(ctx context.Context, pollID string) (int, error) {
	var version int
	err := s.db.GetContext(ctx, &version, s.q(`SELECT stats_version FROM poll WHERE id = ?`), pollID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to query stats version: %w", err)
	}
	return version, nil
}
