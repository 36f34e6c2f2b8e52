// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Quickly Rank API server.

Quickly Rank runs polls in four formats: single choice, plurality, ranked
choice (instant runoff or Coombs) and pairwise comparison. Pairwise polls
keep an adaptive rating per option (Elo, Bradley-Terry, Crowd-BT or
TrueSkill) and hand each annotator the most informative pair next.

# Starting the Server

	DATABASE_URL=quickly-rank.db ADMIN_KEY_SALT=dev go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..." --admin-salt dev

A .env file in the working directory is loaded first when present.

# Configuration

Required settings:

  - DATABASE_URL (-d): sqlite path or PostgreSQL connection string
  - ADMIN_KEY_SALT (--admin-salt): secret for admin key HMAC

Optional settings:

  - PORT (-p): server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - REPROCESS_EVERY (--reprocess-every): full pairwise rebuild cadence (default: 10)
  - PAIR_CANDIDATES (--pair-candidates): top pairs sampled by the selector (default: 10)
  - EXPLORATION_GAMMA (--gamma): reliability weight in pair selection (default: 0.1)
  - REPROCESS_ON_START (--reprocess-on-start): rebuild every pairwise poll at boot
  - RATE_LIMIT, RATE_BURST (--rate-limit, --rate-burst): per-client vote budget

# Architecture

  - pairwise: rating models, annotator reliability, pair selection, batch rebuild
  - tabulate: instant runoff, Coombs, single and plurality tallies
  - store: sqlx repositories over postgres or sqlite
  - service: vote orchestration and results
  - handlers, router, middleware: HTTP surface
  - metrics: Prometheus collectors
  - models, auth, db, cliparse: shared types, keys, schema, configuration

The offline tabulator lives in cmd/tabulate.
*/
package main
