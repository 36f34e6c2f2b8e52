// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON, checked with validator struct tags:

  - CreatePollRequest: title, description, created_by, voting_format, rating_system, ranked_method, options
  - SingleVoteRequest: option
  - RankedVoteRequest: rankings (map[string]int)
  - PluralityVoteRequest: selections
  - PairwiseVoteRequest: winner, loser, draw

# Response Types

  - CreatePollResponse: poll_id, admin_key
  - VoteResponse: vote_id, user_id, next
  - NextComparison: pair, done
  - ResultsResponse: tallies, winners or rankings depending on the format
  - ReprocessResponse: poll_id, comparisons
  - ErrorResponse: error, message

# Domain Types

The stored poll record keeps camelCase names (votingFormat, pairwiseStats,
rankedVotes, ...):

  - Poll: poll metadata, format and engine settings
  - Option: option text, image reference and single-choice counter
  - PollRecord: poll, options and the full vote history
  - PluralityVote, PairwiseVote: append-only vote records

Ranked votes are tabulate.Ballot values and pairwise stats are
pairwise.Stats values.

# Constants

Voting formats:

	FormatSingle    = "single"
	FormatRanked    = "ranked"
	FormatPlurality = "plurality"
	FormatPairwise  = "pairwise"
*/
package models
