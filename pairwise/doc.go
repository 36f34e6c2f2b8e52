// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package pairwise implements the adaptive rating engine behind pairwise polls.

# Rating Systems

Every poll picks one rating system at creation time:

  - elo: rating 1500, kFactor 32, logistic expectation with divisor 400
  - bradley-terry: mu 0, sigma 1, beta 0.5, gamma 0.1, logistic with divisor beta
  - crowd-bt: Bradley-Terry weighted by annotator reliability
  - trueskill: mu 25, sigma 8.333, beta 4.166, tau 0.0833, drawProbability 0.1

All systems share the Model capability. New systems are added as new
variants returned by ModelFor.

# Statistics

Stats is the per-poll arena: option ratings keyed by option index and
annotator reliabilities keyed by user id. It is created with Initialize,
mutated by Observe (or UpdateRatings / UpdateReliability), and replaced
wholesale by Reprocess:

	stats, err := pairwise.Initialize(pairwise.SystemBradleyTerry, len(options), time.Now())
	err = stats.Observe(pairwise.Comparison{Winner: 0, Loser: 2, Annotator: userID, Timestamp: now})

Options and annotators that are missing from Stats are initialized lazily.

# Pair Selection

SelectNextPair picks the next comparison for an annotator from the pairs
that annotator has not judged yet, sampling among the top candidates by
information gain. It reports false once the annotator has judged every pair.

# Reprocessing

Incremental updates depend on arrival order. Reprocess recomputes Stats from
the full comparison log and ShouldReprocess is the cadence predicate
(every 10th comparison by default).

Nothing in this package logs, blocks, or touches the wall clock; callers
serialize access to a poll's Stats.
*/
package pairwise
