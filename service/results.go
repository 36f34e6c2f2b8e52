// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package service

import (
	"context"
	"fmt"

	"github.com/danielhkuo/quickly-rank/models"
	"github.com/danielhkuo/quickly-rank/pairwise"
	"github.com/danielhkuo/quickly-rank/tabulate"
)

// Results computes the poll's current results. winners is only used by
// ranked polls; zero means one.
func (s *Service) Results(ctx context.Context, pollID string, winners int) (*models.ResultsResponse, error) {
	rec, err := s.store.LoadPollRecord(ctx, pollID)
	if err != nil {
		return nil, err
	}

	res := &models.ResultsResponse{
		PollID:       rec.ID,
		VotingFormat: rec.VotingFormat,
	}

	switch rec.VotingFormat {
	case models.FormatSingle:
		counts := make([]int, len(rec.Options))
		for i, o := range rec.Options {
			counts[i] = o.Votes
			res.TotalVotes += o.Votes
		}
		res.Tallies = tabulate.TallySingle(counts)

	case models.FormatPlurality:
		selections := make([][]int, len(rec.PluralityVotes))
		for i, v := range rec.PluralityVotes {
			selections[i] = v.Selections
		}
		if res.Tallies, err = tabulate.TallyPlurality(selections, len(rec.Options)); err != nil {
			return nil, err
		}
		res.TotalVotes = len(rec.PluralityVotes)

	case models.FormatRanked:
		method, err := tabulate.ParseMethod(rec.RankedMethod)
		if err != nil {
			return nil, err
		}
		if winners == 0 {
			winners = 1
		}
		if res.Winners, err = tabulate.Calculate(method, rec.OptionIDs(), rec.RankedVotes, winners); err != nil {
			return nil, err
		}
		res.Method = string(method)
		res.TotalVotes = len(rec.RankedVotes)

	case models.FormatPairwise:
		stats := rec.PairwiseStats
		if stats == nil {
			if stats, err = pairwise.Initialize(pairwise.System(rec.RatingSystem), len(rec.Options), rec.CreatedAt); err != nil {
				return nil, err
			}
		}
		res.System = string(stats.System)
		res.Rankings = stats.Rankings()
		res.TotalVotes = len(rec.PairwiseVotes)

	default:
		return nil, fmt.Errorf("%w: unknown voting format %q", ErrInvalidPoll, rec.VotingFormat)
	}
	return res, nil
}
