// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package pairwise

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// System names a rating model. It is persisted with the stats blob.
type System string

const (
	SystemElo          System = "elo"
	SystemBradleyTerry System = "bradley-terry"
	SystemCrowd        System = "crowd-bt"
	SystemTrueSkill    System = "trueskill"
)

// DefaultSystem is used when a pairwise poll does not choose one.
const DefaultSystem = SystemBradleyTerry

var zeroTime time.Time

// OptionState is the rating state of one option. Which fields are used
// depends on the system; unused fields stay zero.
type OptionState struct {
	Rating          float64   `json:"rating,omitempty"`
	KFactor         float64   `json:"kFactor,omitempty"`
	Mu              float64   `json:"mu,omitempty"`
	Sigma           float64   `json:"sigma,omitempty"`
	Beta            float64   `json:"beta,omitempty"`
	Gamma           float64   `json:"gamma,omitempty"`
	Tau             float64   `json:"tau,omitempty"`
	DrawProbability float64   `json:"drawProbability,omitempty"`
	Wins            float64   `json:"wins"`
	Comparisons     int       `json:"comparisons"`
	Timestamp       time.Time `json:"timestamp"`
}

// AnnotatorState tracks how often an annotator agrees with the consensus.
// Reliability is Alpha / (Alpha + Beta) once the first observation lands.
type AnnotatorState struct {
	Reliability float64 `json:"reliability"`
	Alpha       float64 `json:"alpha"`
	Beta        float64 `json:"beta"`
	Comparisons int     `json:"comparisons"`
}

// Stats is the pairwise statistics blob of a single poll.
type Stats struct {
	System       System                     `json:"system"`
	Participants map[int]*OptionState       `json:"participants"`
	Annotators   map[string]*AnnotatorState `json:"annotators"`
}

// Comparison is one recorded judgment. Draw marks a tie; Winner and Loser
// are then interchangeable.
type Comparison struct {
	Winner    int       `json:"winner"`
	Loser     int       `json:"loser"`
	Annotator string    `json:"annotator"`
	Draw      bool      `json:"draw,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Rating is the model-agnostic projection of an option's state.
type Rating struct {
	OptionID    int     `json:"option"`
	Value       float64 `json:"value"`
	Uncertainty float64 `json:"uncertainty"`
	Wins        float64 `json:"wins"`
	Comparisons int     `json:"comparisons"`
}

// Initialize seeds optionCount options (indices 0..optionCount-1) with the
// defaults of system.
func Initialize(system System, optionCount int, at time.Time) (*Stats, error) {
	m, err := ModelFor(system)
	if err != nil {
		return nil, err
	}
	if optionCount < 0 {
		return nil, fmt.Errorf("%w: negative option count %d", ErrInvalidComparison, optionCount)
	}

	s := &Stats{
		System:       system,
		Participants: make(map[int]*OptionState, optionCount),
		Annotators:   make(map[string]*AnnotatorState),
	}
	for i := 0; i < optionCount; i++ {
		st := m.Initial(at)
		s.Participants[i] = &st
	}
	return s, nil
}

func (s *Stats) model() (Model, error) {
	return ModelFor(s.System)
}

// ensureOption returns the state for id, creating it with model defaults
// when the option has not been seen yet.
func (s *Stats) ensureOption(m Model, id int, at time.Time) *OptionState {
	if s.Participants == nil {
		s.Participants = make(map[int]*OptionState)
	}
	st, ok := s.Participants[id]
	if !ok || st == nil {
		fresh := m.Initial(at)
		st = &fresh
		s.Participants[id] = st
	}
	return st
}

func (s *Stats) ensureAnnotator(id string) *AnnotatorState {
	if s.Annotators == nil {
		s.Annotators = make(map[string]*AnnotatorState)
	}
	a, ok := s.Annotators[id]
	if !ok || a == nil {
		a = NewAnnotator()
		s.Annotators[id] = a
	}
	return a
}

func checkPair(winner, loser int) error {
	if winner < 0 || loser < 0 {
		return fmt.Errorf("%w: negative option id (%d, %d)", ErrInvalidComparison, winner, loser)
	}
	if winner == loser {
		return fmt.Errorf("%w: option %d compared with itself", ErrInvalidComparison, winner)
	}
	return nil
}

// UpdateRatings applies one unweighted model update for winner over loser.
// Only the two named options change.
func (s *Stats) UpdateRatings(winner, loser int, draw bool, at time.Time) error {
	m, err := s.model()
	if err != nil {
		return err
	}
	if err := checkPair(winner, loser); err != nil {
		return err
	}

	w := s.ensureOption(m, winner, at)
	l := s.ensureOption(m, loser, at)
	apply(m, w, l, 1, draw, at)
	return nil
}

func apply(m Model, w, l *OptionState, weight float64, draw bool, at time.Time) {
	m.Update(w, l, weight, draw)

	w.Comparisons++
	l.Comparisons++
	if draw {
		w.Wins += 0.5
		l.Wins += 0.5
	} else {
		w.Wins++
	}
	w.Timestamp = at
	l.Timestamp = at
}

// Observe is the full per-comparison step: lazy initialization, annotator
// reliability update, then a rating update weighted by reliability when the
// system uses it.
func (s *Stats) Observe(c Comparison) error {
	m, err := s.model()
	if err != nil {
		return err
	}
	if err := checkPair(c.Winner, c.Loser); err != nil {
		return err
	}
	if c.Annotator == "" {
		return fmt.Errorf("%w: missing annotator", ErrInvalidComparison)
	}

	w := s.ensureOption(m, c.Winner, c.Timestamp)
	l := s.ensureOption(m, c.Loser, c.Timestamp)
	a := s.ensureAnnotator(c.Annotator)

	// A draw carries no direction to agree or disagree with.
	if !c.Draw {
		a.Observe(m.WinProbability(*w, *l) > 0.5)
	}

	weight := 1.0
	if m.Weighted() {
		weight = a.Reliability
	}
	apply(m, w, l, weight, c.Draw, c.Timestamp)
	a.Comparisons++
	return nil
}

// Rating projects option id into a (value, uncertainty) pair.
func (s *Stats) Rating(id int) (Rating, bool) {
	m, err := s.model()
	if err != nil {
		return Rating{}, false
	}
	st, ok := s.Participants[id]
	if !ok || st == nil {
		return Rating{}, false
	}
	return project(m, id, st), true
}

func project(m Model, id int, st *OptionState) Rating {
	return Rating{
		OptionID:    id,
		Value:       m.Value(*st),
		Uncertainty: m.Uncertainty(*st),
		Wins:        st.Wins,
		Comparisons: st.Comparisons,
	}
}

// Rankings returns every option ordered by value, best first. Equal values
// are ordered by option id.
func (s *Stats) Rankings() []Rating {
	m, err := s.model()
	if err != nil {
		return nil
	}

	out := make([]Rating, 0, len(s.Participants))
	for id, st := range s.Participants {
		if st == nil {
			continue
		}
		out = append(out, project(m, id, st))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].OptionID < out[j].OptionID
	})
	return out
}

// Validate rejects persisted stats that break the data model invariants.
// Corrupt stats are never repaired silently.
func (s *Stats) Validate() error {
	if _, err := s.model(); err != nil {
		return fmt.Errorf("%w: %w", ErrCorruptStats, err)
	}

	for id, st := range s.Participants {
		if st == nil {
			return fmt.Errorf("%w: option %d has no state", ErrCorruptStats, id)
		}
		if id < 0 {
			return fmt.Errorf("%w: negative option id %d", ErrCorruptStats, id)
		}
		if st.Comparisons < 0 || st.Wins < 0 {
			return fmt.Errorf("%w: option %d has negative counts", ErrCorruptStats, id)
		}
		if st.Wins > float64(st.Comparisons) {
			return fmt.Errorf("%w: option %d has %v wins in %d comparisons", ErrCorruptStats, id, st.Wins, st.Comparisons)
		}
		if st.Sigma < 0 || st.Beta < 0 {
			return fmt.Errorf("%w: option %d has negative uncertainty", ErrCorruptStats, id)
		}
		if !finite(st.Rating, st.KFactor, st.Mu, st.Sigma, st.Beta, st.Gamma, st.Tau, st.DrawProbability, st.Wins) {
			return fmt.Errorf("%w: option %d has non-finite values", ErrCorruptStats, id)
		}
	}

	for id, a := range s.Annotators {
		if a == nil {
			return fmt.Errorf("%w: annotator %q has no state", ErrCorruptStats, id)
		}
		if a.Alpha < 1 || a.Beta < 1 || a.Comparisons < 0 {
			return fmt.Errorf("%w: annotator %q has invalid beta parameters", ErrCorruptStats, id)
		}
		if a.Reliability <= 0 || a.Reliability > 1 {
			return fmt.Errorf("%w: annotator %q has reliability %v", ErrCorruptStats, id, a.Reliability)
		}
		if !finite(a.Alpha, a.Beta, a.Reliability) {
			return fmt.Errorf("%w: annotator %q has non-finite values", ErrCorruptStats, id)
		}
	}
	return nil
}

func finite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
