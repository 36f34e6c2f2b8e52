// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package pairwise

import (
	"math"
	"time"
)

const (
	btInitialMu    = 0
	btInitialSigma = 1.0
	btBeta         = 0.5
	btGamma        = 0.1

	crowdInitialBeta = 1.0
	crowdBetaDecay   = 0.9
	crowdMaxGamma    = 0.5
)

type bradleyTerry struct{}

func (bradleyTerry) System() System { return SystemBradleyTerry }

func (bradleyTerry) Initial(at time.Time) OptionState {
	return OptionState{Mu: btInitialMu, Sigma: btInitialSigma, Beta: btBeta, Gamma: btGamma, Timestamp: at}
}

func (bradleyTerry) WinProbability(a, b OptionState) float64 {
	beta := a.Beta
	if beta <= 0 {
		beta = btBeta
	}
	return 1 / (1 + math.Exp((b.Mu-a.Mu)/beta))
}

func (m bradleyTerry) Update(w, l *OptionState, weight float64, draw bool) {
	p := m.WinProbability(*w, *l)
	muDelta := weight * w.Gamma * (outcome(draw) - p)
	varianceDelta := w.Gamma * p * (1 - p)

	w.Mu += muDelta
	l.Mu -= muDelta
	w.Sigma = shrink(w.Sigma, math.Sqrt(math.Max(0, w.Sigma*w.Sigma-varianceDelta)))
	l.Sigma = shrink(l.Sigma, math.Sqrt(math.Max(0, l.Sigma*l.Sigma-varianceDelta)))
}

func (bradleyTerry) Value(s OptionState) float64       { return s.Mu }
func (bradleyTerry) Uncertainty(s OptionState) float64 { return s.Sigma }

func (bradleyTerry) InformationGain(a, b OptionState, focus float64) float64 {
	return informationGain(math.Hypot(a.Sigma, b.Sigma), a.Mu-b.Mu, 1, a, b, focus)
}

func (bradleyTerry) Weighted() bool { return false }

// crowd is Bradley-Terry with per-annotator reliability weighting. Beta is
// its uncertainty term: it divides the step and decays toward the floor
// with every comparison.
type crowd struct{}

func (crowd) System() System { return SystemCrowd }

func (crowd) Initial(at time.Time) OptionState {
	return OptionState{Mu: btInitialMu, Sigma: btInitialSigma, Beta: crowdInitialBeta, Gamma: btGamma, Timestamp: at}
}

func (crowd) WinProbability(a, b OptionState) float64 {
	return 1 / (1 + math.Exp(b.Mu-a.Mu))
}

// dynamicGamma grows the learning rate slowly with experience.
func dynamicGamma(base float64, comparisons int) float64 {
	return math.Min(crowdMaxGamma, base+0.05*math.Log(float64(comparisons)+1))
}

func (m crowd) Update(w, l *OptionState, weight float64, draw bool) {
	p := m.WinProbability(*w, *l)
	step := dynamicGamma(w.Gamma, w.Comparisons) * (outcome(draw) - p) * weight

	w.Mu += step / math.Max(w.Beta, minUncertainty)
	l.Mu -= step / math.Max(l.Beta, minUncertainty)
	w.Beta = shrink(w.Beta, w.Beta*crowdBetaDecay)
	l.Beta = shrink(l.Beta, l.Beta*crowdBetaDecay)
}

func (crowd) Value(s OptionState) float64       { return s.Mu }
func (crowd) Uncertainty(s OptionState) float64 { return s.Beta }

func (crowd) InformationGain(a, b OptionState, focus float64) float64 {
	return informationGain(math.Hypot(a.Beta, b.Beta), a.Mu-b.Mu, 1, a, b, focus)
}

func (crowd) Weighted() bool { return true }
