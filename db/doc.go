// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database schema creation.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
The same statements run on postgres (lib/pq) and sqlite (modernc.org/sqlite).

# Tables

  - poll: metadata, voting format, rating system, ranked method, and the
    pairwise stats blob (JSON) with its optimistic-lock version
  - poll_option: options by position, with the single-choice counter
  - single_vote_user: one row per single-choice voter
  - ranked_vote: ranked ballots (rankings as JSON)
  - plurality_vote: plurality selections (JSON)
  - pairwise_vote: comparisons, numbered per poll by seq

# Relationships

	poll 1──* poll_option
	poll 1──* single_vote_user
	poll 1──* ranked_vote
	poll 1──* plurality_vote
	poll 1──* pairwise_vote

All foreign keys use ON DELETE CASCADE.
*/
package db
