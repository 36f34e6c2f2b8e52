// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Command tabulate computes results from a YAML poll file without a server.
//
//	tabulate [-method irv|coombs] [-winners N] [-system elo|...] poll.yaml
//
// A file with ballots is tabulated as a ranked poll; a file with
// comparisons is replayed through the pairwise rating engine. Use "-" to
// read stdin.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/danielhkuo/quickly-rank/pairwise"
	"github.com/danielhkuo/quickly-rank/tabulate"
)

// pollFile is the on-disk poll. Comparisons name options by text.
type pollFile struct {
	Title       string            `yaml:"title"`
	Options     []string          `yaml:"options"`
	Method      string            `yaml:"method"`
	Winners     int               `yaml:"winners"`
	Ballots     []tabulate.Ballot `yaml:"ballots"`
	System      string            `yaml:"system"`
	Comparisons []comparison      `yaml:"comparisons"`
}

type comparison struct {
	Winner    string    `yaml:"winner"`
	Loser     string    `yaml:"loser"`
	Annotator string    `yaml:"annotator"`
	Draw      bool      `yaml:"draw"`
	Timestamp time.Time `yaml:"timestamp"`
}

var errUsage = errors.New("usage: tabulate [flags] poll.yaml")

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		slog.Error("tabulate failed", "error", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("tabulate", flag.ContinueOnError)
	method := fs.String("method", "", "Ranked method: irv or coombs (overrides the file)")
	winners := fs.Int("winners", 0, "Number of winners (overrides the file)")
	system := fs.String("system", "", "Pairwise rating system (overrides the file)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errUsage
	}

	var in io.Reader = stdin
	if name := fs.Arg(0); name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	var pf pollFile
	dec := yaml.NewDecoder(in)
	dec.KnownFields(true)
	if err := dec.Decode(&pf); err != nil {
		return fmt.Errorf("failed to parse poll file: %w", err)
	}
	if *method != "" {
		pf.Method = *method
	}
	if *winners != 0 {
		pf.Winners = *winners
	}
	if *system != "" {
		pf.System = *system
	}

	if len(pf.Options) < 2 {
		return errors.New("poll file needs at least 2 options")
	}
	if pf.Title != "" {
		fmt.Fprintln(stdout, pf.Title)
		fmt.Fprintln(stdout, strings.Repeat("=", len(pf.Title)))
	}

	switch {
	case len(pf.Ballots) > 0 && len(pf.Comparisons) > 0:
		return errors.New("poll file has both ballots and comparisons")
	case len(pf.Comparisons) > 0:
		return printPairwise(stdout, pf)
	default:
		return printRanked(stdout, pf)
	}
}

func printRanked(w io.Writer, pf pollFile) error {
	method, err := tabulate.ParseMethod(pf.Method)
	if err != nil {
		return err
	}
	if pf.Winners == 0 {
		pf.Winners = 1
	}
	for i := range pf.Ballots {
		if err := tabulate.ValidateBallot(pf.Ballots[i], pf.Options); err != nil {
			return fmt.Errorf("ballot %s: %w", humanize.Ordinal(i+1), err)
		}
	}

	tally, cast, err := tabulate.TallyFirstChoices(pf.Options, pf.Ballots, nil)
	if err != nil {
		return err
	}
	elected, err := tabulate.Calculate(method, pf.Options, pf.Ballots, pf.Winners)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Method: %s\n", method)
	fmt.Fprintf(w, "Ballots: %s\n\n", humanize.Comma(int64(len(pf.Ballots))))

	fmt.Fprintln(w, "First choices:")
	width := longest(pf.Options)
	for i, opt := range pf.Options {
		pct := 0.0
		if cast > 0 {
			pct = 100 * float64(tally[i]) / float64(cast)
		}
		fmt.Fprintf(w, "  %-*s %8s  %5.1f%%\n", width, opt, humanize.Comma(int64(tally[i])), pct)
	}

	fmt.Fprintln(w, "\nWinners:")
	if len(elected) == 0 {
		fmt.Fprintln(w, "  none (no ballot ranks any option)")
	}
	for i, win := range elected {
		fmt.Fprintf(w, "  %-4s %-*s  round %d, %s votes\n",
			humanize.Ordinal(i+1), width, win.OptionID, win.Round, humanize.Comma(int64(win.Votes)))
	}
	return nil
}

func printPairwise(w io.Writer, pf pollFile) error {
	system := pairwise.System(pf.System)
	if system == "" {
		system = pairwise.DefaultSystem
	}

	index := make(map[string]int, len(pf.Options))
	for i, opt := range pf.Options {
		index[opt] = i
	}
	comparisons := make([]pairwise.Comparison, len(pf.Comparisons))
	for i, c := range pf.Comparisons {
		winner, ok := index[c.Winner]
		if !ok {
			return fmt.Errorf("%s comparison: unknown option %q", humanize.Ordinal(i+1), c.Winner)
		}
		loser, ok := index[c.Loser]
		if !ok {
			return fmt.Errorf("%s comparison: unknown option %q", humanize.Ordinal(i+1), c.Loser)
		}
		comparisons[i] = pairwise.Comparison{
			Winner:    winner,
			Loser:     loser,
			Annotator: c.Annotator,
			Draw:      c.Draw,
			Timestamp: c.Timestamp,
		}
	}

	stats, err := pairwise.Reprocess(system, len(pf.Options), comparisons)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "System: %s\n", system)
	fmt.Fprintf(w, "Comparisons: %s\n\n", humanize.Comma(int64(len(comparisons))))

	width := longest(pf.Options)
	for i, r := range stats.Rankings() {
		fmt.Fprintf(w, "  %-4s %-*s  %10.3f ± %-7.3f %s wins of %s\n",
			humanize.Ordinal(i+1), width, pf.Options[r.OptionID],
			r.Value, r.Uncertainty,
			humanize.FormatFloat("#,###.#", r.Wins), humanize.Comma(int64(r.Comparisons)))
	}
	return nil
}

func longest(ss []string) int {
	n := 0
	for _, s := range ss {
		n = max(n, len(s))
	}
	return n
}
