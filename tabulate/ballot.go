// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tabulate

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// Unranked marks an option the voter left out. Any negative rank is unranked.
const Unranked = -1

var (
	ErrInvalidBallot      = errors.New("invalid ballot")
	ErrInvalidWinnerCount = errors.New("invalid winner count")
	ErrUnknownMethod      = errors.New("unknown tabulation method")
)

// Ballot is one ranked vote.
type Ballot struct {
	Voter     string         `json:"userId" yaml:"voter"`
	Rankings  map[string]int `json:"rankings" yaml:"rankings"`
	Timestamp time.Time      `json:"timestamp" yaml:"timestamp,omitempty"`
}

// ValidateBallot checks b against the poll's option IDs.
func ValidateBallot(b Ballot, options []string) error {
	index := indexOf(options)
	used := make(map[int]string, len(b.Rankings))
	for id, rank := range b.Rankings {
		if _, ok := index[id]; !ok {
			return fmt.Errorf("%w: unknown option %q", ErrInvalidBallot, id)
		}
		if rank < 0 {
			continue
		}
		if other, dup := used[rank]; dup {
			return fmt.Errorf("%w: options %q and %q share rank %d", ErrInvalidBallot, other, id, rank)
		}
		used[rank] = id
	}
	return nil
}

func indexOf(options []string) map[string]int {
	index := make(map[string]int, len(options))
	for i, id := range options {
		if _, ok := index[id]; !ok {
			index[id] = i
		}
	}
	return index
}

// order turns a validated ballot into option indices, best first.
func order(b Ballot, index map[string]int) []int {
	type ranked struct{ option, rank int }
	rs := make([]ranked, 0, len(b.Rankings))
	for id, rank := range b.Rankings {
		if rank < 0 {
			continue
		}
		rs = append(rs, ranked{option: index[id], rank: rank})
	}
	sort.Slice(rs, func(i, j int) bool {
		if rs[i].rank != rs[j].rank {
			return rs[i].rank < rs[j].rank
		}
		return rs[i].option < rs[j].option
	})

	out := make([]int, len(rs))
	for i, r := range rs {
		out[i] = r.option
	}
	return out
}

func orders(ballots []Ballot, options []string) ([][]int, error) {
	index := indexOf(options)
	out := make([][]int, 0, len(ballots))
	for i, b := range ballots {
		if err := ValidateBallot(b, options); err != nil {
			return nil, fmt.Errorf("ballot %d: %w", i, err)
		}
		out = append(out, order(b, index))
	}
	return out, nil
}
