// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store persists polls and votes over SQL using sqlx.

Open accepts the "postgres" (lib/pq) and "sqlite" (modernc.org/sqlite)
drivers. Queries are written with ? placeholders and rebound for the driver.

# Writes

  - CreatePoll inserts the poll and its options in one transaction
  - RecordSingleVote adds the voter to the poll's voter set and increments
    the option counter atomically; a second vote returns ErrAlreadyVoted
  - AppendRankedVote and AppendPluralityVote append vote records
  - UpdatePairwise appends a comparison and replaces the stats blob in one
    transaction guarded by the poll's stats version
  - ReplacePairwiseStats swaps the stats blob if the version still matches

Version conflicts are retried by UpdatePairwise and reported as ErrConflict
once the retry budget is spent.

# Reads

GetPoll returns metadata and options; LoadPollRecord returns the complete
record including every vote and the decoded stats. Stats that fail
validation are reported with pairwise.ErrCorruptStats and never repaired.
*/
package store
