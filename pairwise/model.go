// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package pairwise

import (
	"fmt"
	"math"
	"time"
)

// minUncertainty is the floor for every sigma/beta style term.
const minUncertainty = 0.1

// Model is the capability shared by all rating systems.
type Model interface {
	System() System

	// Initial returns the default state of a new option.
	Initial(at time.Time) OptionState

	// Update moves winner and loser toward the observed outcome. weight
	// scales the step size and is 1 unless the model is Weighted.
	Update(winner, loser *OptionState, weight float64, draw bool)

	// WinProbability is the model-implied probability that a beats b.
	WinProbability(a, b OptionState) float64

	Value(s OptionState) float64
	Uncertainty(s OptionState) float64

	// InformationGain scores how useful comparing a and b would be.
	// focus in [0,1] controls how strongly close ratings are preferred.
	InformationGain(a, b OptionState, focus float64) float64

	// Weighted reports whether annotator reliability scales updates.
	Weighted() bool
}

// ModelFor returns the model for system.
func ModelFor(system System) (Model, error) {
	switch system {
	case SystemElo:
		return elo{}, nil
	case SystemBradleyTerry:
		return bradleyTerry{}, nil
	case SystemCrowd:
		return crowd{}, nil
	case SystemTrueSkill:
		return trueSkill{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSystem, system)
	}
}

// Systems lists the supported systems.
func Systems() []System {
	return []System{SystemElo, SystemBradleyTerry, SystemCrowd, SystemTrueSkill}
}

func outcome(draw bool) float64 {
	if draw {
		return 0.5
	}
	return 1
}

// informationGain combines the pair's total uncertainty, how close the two
// ratings are, and how rarely the less-compared option has been seen.
func informationGain(uncertainty, gap, scale float64, a, b OptionState, focus float64) float64 {
	if scale <= 0 {
		scale = 1
	}
	closeness := 1 - math.Tanh(math.Abs(gap)/scale)
	seen := min(a.Comparisons, b.Comparisons)
	if seen < 0 {
		seen = 0
	}
	return uncertainty * (focus*closeness + (1 - focus)) / float64(1+seen)
}

// shrink returns next floored at minUncertainty and never above prev.
func shrink(prev, next float64) float64 {
	next = math.Max(next, minUncertainty)
	if next > prev {
		return prev
	}
	return next
}
