// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package pairwise

import (
	"math"
	"time"
)

const (
	tsInitialMu       = 25
	tsInitialSigma    = 8.333
	tsBeta            = 4.166
	tsTau             = 0.0833
	tsDrawProbability = 0.1

	// Below this the truncated Gaussian ratios are replaced by their limits.
	tsMinDenominator = 2.222758749e-162
)

// trueSkill is the two-player TrueSkill update without a factor graph.
type trueSkill struct{}

func (trueSkill) System() System { return SystemTrueSkill }

func (trueSkill) Initial(at time.Time) OptionState {
	return OptionState{
		Mu:              tsInitialMu,
		Sigma:           tsInitialSigma,
		Beta:            tsBeta,
		Tau:             tsTau,
		DrawProbability: tsDrawProbability,
		Timestamp:       at,
	}
}

func (trueSkill) WinProbability(a, b OptionState) float64 {
	c := math.Sqrt(2*a.Beta*a.Beta + a.Sigma*a.Sigma + b.Sigma*b.Sigma)
	if c == 0 {
		return 0.5
	}
	return normCDF((a.Mu - b.Mu) / c)
}

func (trueSkill) Update(w, l *OptionState, weight float64, draw bool) {
	varW := w.Sigma*w.Sigma + w.Tau*w.Tau
	varL := l.Sigma*l.Sigma + l.Tau*l.Tau
	c := math.Sqrt(2*w.Beta*w.Beta + varW + varL)
	if c == 0 {
		return
	}

	t := (w.Mu - l.Mu) / c
	eps := drawMargin(w.DrawProbability, w.Beta) / c

	var v, vw float64
	if draw {
		v, vw = vDraw(t, eps), wDraw(t, eps)
	} else {
		v, vw = vWin(t, eps), wWin(t, eps)
	}

	w.Mu += weight * varW / c * v
	l.Mu -= weight * varL / c * v
	w.Sigma = shrink(w.Sigma, math.Sqrt(varW*(1-varW/(c*c)*vw)))
	l.Sigma = shrink(l.Sigma, math.Sqrt(varL*(1-varL/(c*c)*vw)))
}

func (trueSkill) Value(s OptionState) float64       { return s.Mu }
func (trueSkill) Uncertainty(s OptionState) float64 { return s.Sigma }

func (trueSkill) InformationGain(a, b OptionState, focus float64) float64 {
	return informationGain(math.Hypot(a.Sigma, b.Sigma), a.Mu-b.Mu, a.Beta, a, b, focus)
}

func (trueSkill) Weighted() bool { return false }

// drawMargin converts a draw probability into the performance margin
// inside which a match counts as drawn.
func drawMargin(p, beta float64) float64 {
	if p <= 0 {
		return 0
	}
	return normPPF((p+1)/2) * math.Sqrt2 * beta
}

func normPDF(x float64) float64 {
	return math.Exp(-x*x/2) / math.Sqrt(2*math.Pi)
}

func normCDF(x float64) float64 {
	return 0.5 * math.Erfc(-x/math.Sqrt2)
}

func normPPF(p float64) float64 {
	return math.Sqrt2 * math.Erfinv(2*p-1)
}

func vWin(t, eps float64) float64 {
	x := t - eps
	denom := normCDF(x)
	if denom < tsMinDenominator {
		return -x
	}
	return normPDF(x) / denom
}

func wWin(t, eps float64) float64 {
	x := t - eps
	if normCDF(x) < tsMinDenominator {
		if x < 0 {
			return 1
		}
		return 0
	}
	v := vWin(t, eps)
	return clamp01(v * (v + x))
}

func vDraw(t, eps float64) float64 {
	abs := math.Abs(t)
	denom := normCDF(eps-abs) - normCDF(-eps-abs)
	var v float64
	if denom < tsMinDenominator {
		v = eps - abs
	} else {
		v = (normPDF(-eps-abs) - normPDF(eps-abs)) / denom
	}
	if t < 0 {
		return -v
	}
	return v
}

func wDraw(t, eps float64) float64 {
	abs := math.Abs(t)
	denom := normCDF(eps-abs) - normCDF(-eps-abs)
	if denom < tsMinDenominator {
		return 1
	}
	v := vDraw(abs, eps)
	return clamp01(v*v + ((eps-abs)*normPDF(eps-abs)+(eps+abs)*normPDF(eps+abs))/denom)
}

func clamp01(x float64) float64 {
	if x < 0 || math.IsNaN(x) {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
