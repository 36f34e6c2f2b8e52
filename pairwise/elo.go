// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package pairwise

import (
	"math"
	"time"
)

const (
	eloInitialRating = 1500
	eloKFactor       = 32
	eloScale         = 400
)

type elo struct{}

func (elo) System() System { return SystemElo }

func (elo) Initial(at time.Time) OptionState {
	return OptionState{Rating: eloInitialRating, KFactor: eloKFactor, Timestamp: at}
}

func (elo) WinProbability(a, b OptionState) float64 {
	return 1 / (1 + math.Pow(10, (b.Rating-a.Rating)/eloScale))
}

func (e elo) Update(w, l *OptionState, weight float64, draw bool) {
	expectedW := e.WinProbability(*w, *l)
	expectedL := 1 - expectedW
	actualW := outcome(draw)
	actualL := 1 - actualW

	w.Rating += weight * w.KFactor * (actualW - expectedW)
	l.Rating += weight * l.KFactor * (actualL - expectedL)
}

func (elo) Value(s OptionState) float64 { return s.Rating }

// Elo carries no variance term.
func (elo) Uncertainty(OptionState) float64 { return 0 }

func (elo) InformationGain(a, b OptionState, focus float64) float64 {
	return informationGain(1, a.Rating-b.Rating, eloScale, a, b, focus)
}

func (elo) Weighted() bool { return false }
