// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router configures HTTP routes for the Quickly Rank API.

# Routes

	GET  /health                          store ping
	GET  /metrics                         Prometheus exposition
	POST /polls                           create a poll (returns admin_key)
	GET  /polls/{id}                      poll and options
	POST /polls/{id}/votes/single         one option per user
	POST /polls/{id}/votes/ranked         ranked ballot
	POST /polls/{id}/votes/plurality      any number of options
	POST /polls/{id}/votes/pairwise       one comparison
	GET  /polls/{id}/next-comparison      adaptive pair for the caller
	GET  /polls/{id}/results              tallies, winners or rankings
	POST /polls/{id}/reprocess            rebuild pairwise stats (X-Admin-Key)

Vote routes are rate limited per client. Every route except /health and
/metrics is logged and timed.

# Usage

	mux := router.NewRouter(st, svc, cfg, m)
	server := &http.Server{Addr: ":3318", Handler: middleware.CORS(mux)}
*/
package router
