// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# CLI Flags and Environment Variables

Every flag falls back to an environment variable; CLI flags take precedence.
main loads a .env file into the environment first, if one exists.

	-p                   PORT                (default 3318)
	-d                   DATABASE_URL        (required)
	-t                   DATABASE_TYPE       sqlite or postgres (default sqlite)
	-admin-salt          ADMIN_KEY_SALT      (required)
	-reprocess-every     REPROCESS_EVERY     full pairwise rebuild cadence (default 10, 0 disables)
	-pair-candidates     PAIR_CANDIDATES     top-K pairs sampled (default 10)
	-gamma               EXPLORATION_GAMMA   reliability weight in pair selection (default 0.1)
	-reprocess-on-start  REPROCESS_ON_START  rebuild all pairwise stats at startup
	-rate-limit          RATE_LIMIT          votes per second per client (default 5)
	-rate-burst          RATE_BURST          vote burst per client (default 20)

# Validation

ParseFlags returns an error if DATABASE_URL or ADMIN_KEY_SALT is missing,
the database type is unknown, or a numeric setting is out of range.
*/
package cliparse
