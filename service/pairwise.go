// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/danielhkuo/quickly-rank/models"
	"github.com/danielhkuo/quickly-rank/pairwise"
	"github.com/danielhkuo/quickly-rank/store"
)

// Reprocess triggers, used as metric labels.
const (
	TriggerCadence = "cadence"
	TriggerManual  = "manual"
	TriggerStartup = "startup"
)

// SubmitPairwiseVote records that userID preferred winner over loser (or
// judged them equal when draw is set) and returns the stored vote with the
// user's next comparison.
func (s *Service) SubmitPairwiseVote(ctx context.Context, pollID, userID string, winner, loser int, draw bool) (models.PairwiseVote, *models.NextComparison, error) {
	p, err := s.pollOf(ctx, pollID, models.FormatPairwise)
	if err != nil {
		return models.PairwiseVote{}, nil, err
	}
	n := len(p.Options)
	if winner < 0 || winner >= n || loser < 0 || loser >= n {
		return models.PairwiseVote{}, nil, fmt.Errorf("%w: options (%d, %d) out of range", ErrInvalidVote, winner, loser)
	}
	if winner == loser {
		return models.PairwiseVote{}, nil, fmt.Errorf("%w: option %d compared with itself", ErrInvalidVote, winner)
	}
	system := pairwise.System(p.Poll.RatingSystem)

	var reprocessed bool
	var took time.Duration
	vote, err := s.store.UpdatePairwise(ctx, pollID, models.PairwiseVote{
		UserID:    userID,
		Winner:    winner,
		Loser:     loser,
		Draw:      draw,
		Timestamp: s.now(),
	}, func(u *store.PairwiseUpdate) (*pairwise.Stats, error) {
		reprocessed = false
		if pairwise.ShouldReprocess(u.Seq, s.cfg.ReprocessEvery) {
			start := time.Now()
			votes, err := u.Votes()
			if err != nil {
				return nil, err
			}
			stats, err := pairwise.Reprocess(system, n, models.Comparisons(votes))
			reprocessed, took = true, time.Since(start)
			return stats, err
		}

		stats := u.Stats
		if stats == nil {
			fresh, err := pairwise.Initialize(system, n, u.Vote.Timestamp)
			if err != nil {
				return nil, err
			}
			stats = fresh
		}
		if err := stats.Observe(u.Vote.Comparison()); err != nil {
			return nil, err
		}
		return stats, nil
	})
	if err != nil {
		return models.PairwiseVote{}, nil, err
	}

	s.metrics.VoteRecorded(models.FormatPairwise)
	if reprocessed {
		s.metrics.Reprocessed(TriggerCadence, took, nil)
		slog.Info("pairwise stats reprocessed", "poll_id", pollID, "trigger", TriggerCadence, "duration_ms", took.Milliseconds())
	}

	next, err := s.next(ctx, p, userID)
	if err != nil {
		return vote, nil, err
	}
	return vote, next, nil
}

// NextComparison returns the next pair userID should judge.
func (s *Service) NextComparison(ctx context.Context, pollID, userID string) (*models.NextComparison, error) {
	p, err := s.pollOf(ctx, pollID, models.FormatPairwise)
	if err != nil {
		return nil, err
	}
	return s.next(ctx, p, userID)
}

func (s *Service) next(ctx context.Context, p *models.PollWithOptions, userID string) (*models.NextComparison, error) {
	stats, _, err := s.store.LoadPairwiseStats(ctx, p.Poll.ID)
	if err != nil {
		return nil, err
	}
	if stats == nil {
		stats = &pairwise.Stats{System: pairwise.System(p.Poll.RatingSystem)}
	}
	mine, err := s.store.UserPairwiseVotes(ctx, p.Poll.ID, userID)
	if err != nil {
		return nil, err
	}

	options := make([]int, len(p.Options))
	for i := range options {
		options[i] = i
	}
	pair, ok, err := pairwise.SelectNextPair(options, userID, pairwise.BuildPairHistory(models.Comparisons(mine)), stats, pairwise.Selection{
		Gamma: s.cfg.Gamma,
		TopK:  s.cfg.TopK,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return &models.NextComparison{Done: true}, nil
	}
	next := [2]int(pair)
	return &models.NextComparison{Pair: &next}, nil
}

// Reprocess rebuilds a pairwise poll's stats from its comparison log and
// returns the number of comparisons replayed. Concurrent calls for the same
// poll share one run.
func (s *Service) Reprocess(ctx context.Context, pollID, trigger string) (int, error) {
	v, err, _ := s.group.Do(pollID, func() (any, error) {
		start := time.Now()
		n, err := s.reprocess(ctx, pollID)
		took := time.Since(start)
		s.metrics.Reprocessed(trigger, took, err)
		if err != nil {
			return 0, err
		}
		slog.Info("pairwise stats reprocessed", "poll_id", pollID, "trigger", trigger, "comparisons", n, "duration_ms", took.Milliseconds())
		return n, nil
	})
	if err != nil {
		return 0, err
	}
	return v.(int), nil
}

func (s *Service) reprocess(ctx context.Context, pollID string) (int, error) {
	p, err := s.pollOf(ctx, pollID, models.FormatPairwise)
	if err != nil {
		return 0, err
	}
	system := pairwise.System(p.Poll.RatingSystem)

	for attempt := 1; attempt <= store.MaxAttempts; attempt++ {
		// The version is read before the log so that a vote landing in
		// between makes the replace fail. Stats are not decoded: a rebuild
		// from the log is how corrupt stats get replaced.
		version, err := s.store.StatsVersion(ctx, pollID)
		if err != nil {
			return 0, err
		}

		votes, err := s.store.PairwiseVotes(ctx, pollID)
		if err != nil {
			return 0, err
		}
		stats, err := pairwise.Reprocess(system, len(p.Options), models.Comparisons(votes))
		if err != nil {
			return 0, err
		}

		err = s.store.ReplacePairwiseStats(ctx, pollID, version, stats)
		if errors.Is(err, store.ErrConflict) {
			continue
		}
		if err != nil {
			return 0, err
		}
		return len(votes), nil
	}
	return 0, store.ErrConflict
}

// ReprocessAll rebuilds the stats of every pairwise poll. Failures are
// logged per poll and the first one is returned after all polls ran.
func (s *Service) ReprocessAll(ctx context.Context, trigger string) error {
	ids, err := s.store.ListPollIDs(ctx, models.FormatPairwise)
	if err != nil {
		return err
	}

	var g errgroup.Group
	g.SetLimit(s.cfg.Parallelism)
	for _, id := range ids {
		g.Go(func() error {
			if _, err := s.Reprocess(ctx, id, trigger); err != nil {
				slog.Error("failed to reprocess poll", "poll_id", id, "error", err)
				return fmt.Errorf("poll %s: %w", id, err)
			}
			return nil
		})
	}
	return g.Wait()
}
