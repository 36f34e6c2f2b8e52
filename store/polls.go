// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/danielhkuo/quickly-rank/models"
	"github.com/danielhkuo/quickly-rank/pairwise"
)

// CreatePoll inserts poll with its options. Option positions are taken from
// slice order. stats may be nil for formats without pairwise state.
func (s *Store) CreatePoll(ctx context.Context, poll models.Poll, options []models.Option, stats *pairwise.Stats) error {
	var blob sql.NullString
	if stats != nil {
		raw, err := json.Marshal(stats)
		if err != nil {
			return fmt.Errorf("failed to encode stats: %w", err)
		}
		blob = sql.NullString{String: string(raw), Valid: true}
	}

	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, s.q(`
			INSERT INTO poll (id, title, description, created_by, voting_format, rating_system, ranked_method, pairwise_stats, stats_version, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0, ?)
		`), poll.ID, poll.Title, poll.Description, poll.CreatedBy, poll.VotingFormat,
			poll.RatingSystem, poll.RankedMethod, blob, poll.CreatedAt.UTC())
		if err != nil {
			return fmt.Errorf("failed to insert poll: %w", err)
		}

		for i, o := range options {
			_, err := tx.ExecContext(ctx, s.q(`
				INSERT INTO poll_option (poll_id, position, id, text, image_url, votes)
				VALUES (?, ?, ?, ?, ?, 0)
			`), poll.ID, i, o.ID, o.Text, o.ImageURL)
			if err != nil {
				return fmt.Errorf("failed to insert option %d: %w", i, err)
			}
		}
		return nil
	})
}

// GetPoll returns poll metadata and options.
func (s *Store) GetPoll(ctx context.Context, pollID string) (*models.PollWithOptions, error) {
	var poll models.Poll
	err := s.db.GetContext(ctx, &poll, s.q(`
		SELECT id, title, description, created_by, voting_format, rating_system, ranked_method, created_at
		FROM poll WHERE id = ?
	`), pollID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query poll: %w", err)
	}

	options, err := s.options(ctx, s.db, pollID)
	if err != nil {
		return nil, err
	}
	return &models.PollWithOptions{Poll: poll, Options: options}, nil
}

func (s *Store) options(ctx context.Context, q sqlx.QueryerContext, pollID string) ([]models.Option, error) {
	options := []models.Option{}
	err := sqlx.SelectContext(ctx, q, &options, s.q(`
		SELECT id, text, image_url, votes, position
		FROM poll_option WHERE poll_id = ?
		ORDER BY position
	`), pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to query options: %w", err)
	}
	return options, nil
}

// ListPollIDs returns the IDs of all polls of format, oldest first. An empty
// format lists every poll.
func (s *Store) ListPollIDs(ctx context.Context, format string) ([]string, error) {
	ids := []string{}
	var err error
	if format == "" {
		err = s.db.SelectContext(ctx, &ids, `SELECT id FROM poll ORDER BY created_at, id`)
	} else {
		err = s.db.SelectContext(ctx, &ids, s.q(`SELECT id FROM poll WHERE voting_format = ? ORDER BY created_at, id`), format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list polls: %w", err)
	}
	return ids, nil
}

// LoadPollRecord reads the complete poll record.
func (s *Store) LoadPollRecord(ctx context.Context, pollID string) (*models.PollRecord, error) {
	pwo, err := s.GetPoll(ctx, pollID)
	if err != nil {
		return nil, err
	}
	rec := &models.PollRecord{Poll: pwo.Poll, Options: pwo.Options}

	if err := s.db.SelectContext(ctx, &rec.SingleVoteUsers, s.q(`
		SELECT user_id FROM single_vote_user WHERE poll_id = ? ORDER BY voted_at, user_id
	`), pollID); err != nil {
		return nil, fmt.Errorf("failed to query single vote users: %w", err)
	}

	if rec.RankedVotes, err = s.RankedVotes(ctx, pollID); err != nil {
		return nil, err
	}
	if rec.PluralityVotes, err = s.PluralityVotes(ctx, pollID); err != nil {
		return nil, err
	}
	if rec.PairwiseVotes, err = s.PairwiseVotes(ctx, pollID); err != nil {
		return nil, err
	}
	if rec.PairwiseStats, rec.StatsVersion, err = s.LoadPairwiseStats(ctx, pollID); err != nil {
		return nil, err
	}
	return rec, nil
}
