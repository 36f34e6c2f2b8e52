// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tabulate

import "fmt"

// OptionTally is the result of one option in a single-choice or plurality
// poll. Percent is relative to the number of voters.
type OptionTally struct {
	OptionIndex int     `json:"optionIndex"`
	Votes       int     `json:"votes"`
	Percent     float64 `json:"percent"`
}

// TallySingle turns per-option counters into results.
func TallySingle(counts []int) []OptionTally {
	total := 0
	for _, c := range counts {
		total += c
	}
	out := make([]OptionTally, len(counts))
	for i, c := range counts {
		out[i] = OptionTally{OptionIndex: i, Votes: c, Percent: percent(c, total)}
	}
	return out
}

// TallyPlurality counts how many voters selected each option. A voter naming
// the same option twice counts once.
func TallyPlurality(selections [][]int, optionCount int) ([]OptionTally, error) {
	counts := make([]int, optionCount)
	for i, sel := range selections {
		seen := make(map[int]struct{}, len(sel))
		for _, opt := range sel {
			if opt < 0 || opt >= optionCount {
				return nil, fmt.Errorf("%w: selection %d names option %d of %d", ErrInvalidBallot, i, opt, optionCount)
			}
			if _, dup := seen[opt]; dup {
				continue
			}
			seen[opt] = struct{}{}
			counts[opt]++
		}
	}

	out := make([]OptionTally, optionCount)
	for i, c := range counts {
		out[i] = OptionTally{OptionIndex: i, Votes: c, Percent: percent(c, len(selections))}
	}
	return out, nil
}

func percent(n, of int) float64 {
	if of == 0 {
		return 0
	}
	return float64(n) / float64(of) * 100
}
