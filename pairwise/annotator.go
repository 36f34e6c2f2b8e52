// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package pairwise

import "fmt"

// NewAnnotator returns the uninformative prior. A new annotator is fully
// trusted until the first observation.
func NewAnnotator() *AnnotatorState {
	return &AnnotatorState{Reliability: 1, Alpha: 1, Beta: 1}
}

// Observe records one Bernoulli observation of agreement with the
// consensus.
func (a *AnnotatorState) Observe(agreed bool) {
	if agreed {
		a.Alpha++
	} else {
		a.Beta++
	}
	a.Reliability = a.Alpha / (a.Alpha + a.Beta)
}

// UpdateReliability scores annotator against the current ratings: the
// judgment agrees when the model gives winner at least even odds over loser.
// Ratings are not touched.
func (s *Stats) UpdateReliability(annotator string, winner, loser int) (*AnnotatorState, error) {
	m, err := s.model()
	if err != nil {
		return nil, err
	}
	if err := checkPair(winner, loser); err != nil {
		return nil, err
	}
	if annotator == "" {
		return nil, fmt.Errorf("%w: missing annotator", ErrInvalidComparison)
	}

	w, ok := s.Participants[winner]
	if !ok || w == nil {
		fresh := m.Initial(zeroTime)
		w = &fresh
	}
	l, ok := s.Participants[loser]
	if !ok || l == nil {
		fresh := m.Initial(zeroTime)
		l = &fresh
	}

	a := s.ensureAnnotator(annotator)
	a.Observe(m.WinProbability(*w, *l) > 0.5)
	return a, nil
}

// Reliability returns the reliability of annotator, or 1 for an annotator
// this poll has not seen.
func (s *Stats) Reliability(annotator string) float64 {
	if a, ok := s.Annotators[annotator]; ok && a != nil {
		return a.Reliability
	}
	return 1
}
