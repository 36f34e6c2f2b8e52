// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Quickly Rank API.

# Handler Types

Each handler is a struct wrapping the service layer:

  - PollHandler: poll creation and lookup
  - VotingHandler: vote submission for every format and next-comparison
  - ResultsHandler: results and admin reprocess

	pollHandler := handlers.NewPollHandler(svc, cfg)

# Voter Identity

Voting routes read X-User-ID. When it is absent an anonymous ID is minted
and returned in the same header; clients resend it so pairwise history and
single-vote uniqueness follow the voter.

# Errors

Service errors map to statuses in one place:

	store.ErrNotFound                         404
	invalid vote, poll, ballot or comparison  400
	wrong format, already voted, conflict     409
	corrupt stats                             500

Reprocess requires the X-Admin-Key returned at poll creation.
*/
package handlers
