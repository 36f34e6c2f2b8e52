// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package pairwise

import (
	"math/rand/v2"
	"sort"
)

const (
	// DefaultTopK is how many of the best candidates are sampled from.
	DefaultTopK = 10

	// DefaultGamma is the weight of annotator reliability in the closeness focus.
	DefaultGamma = 0.1
)

// Pair is an ordered option pair to present. Pair[0] < Pair[1].
type Pair [2]int

// Selection tunes SelectNextPair. A nil Rand uses the global source.
type Selection struct {
	Gamma float64
	TopK  int
	Rand  *rand.Rand
}

type candidate struct {
	key   PairKey
	score float64
}

// SelectNextPair picks the next pair annotator should compare. It returns
// false when annotator has judged every pair among options.
func SelectNextPair(options []int, annotator string, history PairHistory, stats *Stats, sel Selection) (Pair, bool, error) {
	if stats == nil {
		stats = &Stats{System: DefaultSystem}
	}
	m, err := stats.model()
	if err != nil {
		return Pair{}, false, err
	}

	ids := uniqueSorted(options)
	focus := focusFor(sel.Gamma, stats.Reliability(annotator))

	var cands []candidate
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			k := PairKey{Low: ids[i], High: ids[j]}
			if history.Judged(k, annotator) {
				continue
			}
			a := stateOf(stats, m, k.Low)
			b := stateOf(stats, m, k.High)
			cands = append(cands, candidate{key: k, score: m.InformationGain(a, b, focus)})
		}
	}
	if len(cands) == 0 {
		return Pair{}, false, nil
	}

	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].score != cands[j].score {
			return cands[i].score > cands[j].score
		}
		if cands[i].key.Low != cands[j].key.Low {
			return cands[i].key.Low < cands[j].key.Low
		}
		return cands[i].key.High < cands[j].key.High
	})

	topK := sel.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}
	if len(cands) > topK {
		cands = cands[:topK]
	}

	k := draw(cands, sel.Rand)
	return Pair{k.Low, k.High}, true, nil
}

// draw samples one candidate proportionally to its score.
func draw(cands []candidate, r *rand.Rand) PairKey {
	var total float64
	for _, c := range cands {
		if c.score > 0 {
			total += c.score
		}
	}
	if total <= 0 {
		return cands[0].key
	}

	var x float64
	if r != nil {
		x = r.Float64() * total
	} else {
		x = rand.Float64() * total
	}
	for _, c := range cands {
		if c.score <= 0 {
			continue
		}
		x -= c.score
		if x < 0 {
			return c.key
		}
	}
	return cands[len(cands)-1].key
}

func focusFor(gamma, reliability float64) float64 {
	gamma = clamp01(gamma)
	return (1 - gamma) + gamma*reliability
}

// stateOf returns the option state, or model defaults for an unseen option.
func stateOf(s *Stats, m Model, id int) OptionState {
	if st, ok := s.Participants[id]; ok && st != nil {
		return *st
	}
	return m.Initial(zeroTime)
}

func uniqueSorted(ids []int) []int {
	out := make([]int, 0, len(ids))
	seen := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		if id < 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}
