// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package service ties the rating and tabulation engines to the store.

# Votes

Each format has its own submit operation:

  - SubmitSingleVote: one vote per user, counted on the option
  - SubmitRankedVote: validated against the poll's option IDs, then appended
  - SubmitPluralityVote: selections checked against the option count
  - SubmitPairwiseVote: appended together with the updated stats, then the
    next pair for the same user is selected

Pairwise votes update the stats incrementally, except every
Config.ReprocessEvery-th comparison, which rebuilds them from the whole log
inside the same transaction.

# Reprocessing

Reprocess rebuilds one poll's stats on demand. Concurrent calls for the same
poll share a single run. ReprocessAll walks every pairwise poll with bounded
parallelism.

# Results

Results computes format-specific output from the full poll record:
tallies for single and plurality polls, elimination winners for ranked polls,
and model rankings for pairwise polls.
*/
package service
