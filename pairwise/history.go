// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package pairwise

// PairKey identifies an unordered option pair. Low < High always.
type PairKey struct {
	Low  int
	High int
}

// KeyOf orders a and b into a PairKey.
func KeyOf(a, b int) PairKey {
	if a > b {
		a, b = b, a
	}
	return PairKey{Low: a, High: b}
}

// PairRecord is what is known about one pair across all annotators.
type PairRecord struct {
	Count      int
	Annotators map[string]struct{}
}

// PairHistory indexes the comparison log by pair. It is derived on demand
// and never persisted.
type PairHistory map[PairKey]*PairRecord

// BuildPairHistory indexes comparisons.
func BuildPairHistory(comparisons []Comparison) PairHistory {
	h := make(PairHistory, len(comparisons))
	for _, c := range comparisons {
		h.Add(c)
	}
	return h
}

// Add records c. Self comparisons are ignored.
func (h PairHistory) Add(c Comparison) {
	if c.Winner == c.Loser {
		return
	}
	k := KeyOf(c.Winner, c.Loser)
	rec, ok := h[k]
	if !ok {
		rec = &PairRecord{Annotators: make(map[string]struct{})}
		h[k] = rec
	}
	rec.Count++
	rec.Annotators[c.Annotator] = struct{}{}
}

// Judged reports whether annotator has already compared the pair.
func (h PairHistory) Judged(k PairKey, annotator string) bool {
	rec, ok := h[k]
	if !ok {
		return false
	}
	_, ok = rec.Annotators[annotator]
	return ok
}

// Count returns the number of judgments of the pair by anyone.
func (h PairHistory) Count(k PairKey) int {
	if rec, ok := h[k]; ok {
		return rec.Count
	}
	return 0
}
