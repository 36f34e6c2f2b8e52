// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tabulate

import "fmt"

// Method names a ranked elimination procedure.
type Method string

const (
	MethodIRV    Method = "irv"
	MethodCoombs Method = "coombs"
)

// DefaultMethod is used when a ranked poll does not choose one.
const DefaultMethod = MethodIRV

// ParseMethod maps a stored method name to a Method. Empty means DefaultMethod.
func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case "":
		return DefaultMethod, nil
	case MethodIRV, MethodCoombs:
		return Method(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMethod, s)
	}
}

// Winner is one elected option.
type Winner struct {
	OptionIndex int    `json:"optionIndex"`
	OptionID    string `json:"optionId"`
	Round       int    `json:"round"`
	Votes       int    `json:"votes"`
}

// Calculate runs method over ballots and returns up to winners winners in
// election order. An empty ballot set yields no winners.
func Calculate(method Method, options []string, ballots []Ballot, winners int) ([]Winner, error) {
	switch method {
	case MethodIRV, MethodCoombs:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}
	if winners <= 0 || winners > len(options) {
		return nil, fmt.Errorf("%w: %d winners from %d options", ErrInvalidWinnerCount, winners, len(options))
	}

	ords, err := orders(ballots, options)
	if err != nil {
		return nil, err
	}
	return run(method, options, ords, winners), nil
}

// InstantRunoff is Calculate with MethodIRV.
func InstantRunoff(options []string, ballots []Ballot, winners int) ([]Winner, error) {
	return Calculate(MethodIRV, options, ballots, winners)
}

// Coombs is Calculate with MethodCoombs.
func Coombs(options []string, ballots []Ballot, winners int) ([]Winner, error) {
	return Calculate(MethodCoombs, options, ballots, winners)
}

// TallyFirstChoices counts each ballot's best option that is not yet
// resolved. cast is the number of ballots that still rank such an option.
func TallyFirstChoices(options []string, ballots []Ballot, resolved []bool) (tally []int, cast int, err error) {
	ords, err := orders(ballots, options)
	if err != nil {
		return nil, 0, err
	}
	done := make([]bool, len(options))
	copy(done, resolved)
	tally, cast = firstChoices(ords, done)
	return tally, cast, nil
}

func firstChoices(ords [][]int, resolved []bool) ([]int, int) {
	tally := make([]int, len(resolved))
	cast := 0
	for _, o := range ords {
		for _, opt := range o {
			if !resolved[opt] {
				tally[opt]++
				cast++
				break
			}
		}
	}
	return tally, cast
}

func lastChoices(ords [][]int, resolved []bool) []int {
	tally := make([]int, len(resolved))
	for _, o := range ords {
		for i := len(o) - 1; i >= 0; i-- {
			if !resolved[o[i]] {
				tally[o[i]]++
				break
			}
		}
	}
	return tally
}

func run(method Method, options []string, ords [][]int, need int) []Winner {
	resolved := make([]bool, len(options))
	remaining := len(options)
	winners := make([]Winner, 0, need)

	for round := 1; len(winners) < need && remaining > 0; round++ {
		tally, cast := firstChoices(ords, resolved)
		if cast == 0 {
			break
		}

		leader := pick(tally, resolved, func(a, b int) bool { return a > b })
		if 2*tally[leader] > cast || remaining <= need-len(winners) {
			winners = append(winners, Winner{
				OptionIndex: leader,
				OptionID:    options[leader],
				Round:       round,
				Votes:       tally[leader],
			})
			resolved[leader] = true
			remaining--
			continue
		}

		var out int
		switch method {
		case MethodCoombs:
			out = pickLast(lastChoices(ords, resolved), resolved, func(a, b int) bool { return a > b })
		default:
			out = pickLast(tally, resolved, func(a, b int) bool { return a < b })
		}
		resolved[out] = true
		remaining--

		if method == MethodCoombs {
			ords = renormalize(ords, resolved)
		}
	}
	return winners
}

// pick returns the first unresolved option whose count beats every other by
// better.
func pick(counts []int, resolved []bool, better func(a, b int) bool) int {
	best := -1
	for i, c := range counts {
		if resolved[i] {
			continue
		}
		if best < 0 || better(c, counts[best]) {
			best = i
		}
	}
	return best
}

// pickLast is pick with ties going to the last-listed option.
func pickLast(counts []int, resolved []bool, better func(a, b int) bool) int {
	best := -1
	for i, c := range counts {
		if resolved[i] {
			continue
		}
		if best < 0 || !better(counts[best], c) {
			best = i
		}
	}
	return best
}

// renormalize drops resolved options from every ballot. The input slices are
// not modified.
func renormalize(ords [][]int, resolved []bool) [][]int {
	out := make([][]int, len(ords))
	for i, o := range ords {
		kept := make([]int, 0, len(o))
		for _, opt := range o {
			if !resolved[opt] {
				kept = append(kept, opt)
			}
		}
		out[i] = kept
	}
	return out
}
