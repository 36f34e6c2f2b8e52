// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package pairwise

import (
	"fmt"
	"sort"
	"time"
)

// DefaultReprocessEvery is the reprocess cadence in comparisons.
const DefaultReprocessEvery = 10

// Reprocess rebuilds stats for system from scratch by replaying comparisons
// in timestamp order. Comparisons with equal timestamps keep their input
// order. The input slice is not modified.
func Reprocess(system System, optionCount int, comparisons []Comparison) (*Stats, error) {
	ordered := make([]Comparison, len(comparisons))
	copy(ordered, comparisons)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})

	var start time.Time
	if len(ordered) > 0 {
		start = ordered[0].Timestamp
	}

	stats, err := Initialize(system, optionCount, start)
	if err != nil {
		return nil, err
	}
	for i, c := range ordered {
		if err := stats.Observe(c); err != nil {
			return nil, fmt.Errorf("replaying comparison %d: %w", i, err)
		}
	}
	return stats, nil
}

// ShouldReprocess reports whether the total-th comparison triggers a full
// reprocess.
func ShouldReprocess(total, every int) bool {
	return every > 0 && total > 0 && total%every == 0
}
