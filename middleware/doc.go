// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging and Metrics

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))
	mux.HandleFunc("GET /polls/{id}/results",
		middleware.WithMetrics(m, "results", middleware.WithLogging(handler)))

WithLogging logs request start and completion with status and duration_ms.
WithMetrics feeds the request latency histogram, labeled by route and code.

# CORS

	server := http.Server{Handler: middleware.CORS(mux)}

Allows X-Admin-Key and X-User-ID request headers and exposes X-User-ID so
browsers can keep the anonymous identity the server minted.

# JSON Helpers

	var req models.PairwiseVoteRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, middleware.ValidationMessage(err))
		return
	}

DecodeAndValidate applies go-playground/validator tags and reports fields by
their JSON names.

# Rate Limiting

	rl := middleware.NewRateLimiter(5, 10, salt, m)
	mux.HandleFunc("POST /polls/{id}/votes/pairwise", rl.Limit(handler))

Each client gets a token bucket keyed by its salted IP hash. Rejected
requests get 429 with Retry-After.
*/
package middleware
