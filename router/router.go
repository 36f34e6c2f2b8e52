// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/quickly-rank/cliparse"
	"github.com/danielhkuo/quickly-rank/handlers"
	"github.com/danielhkuo/quickly-rank/metrics"
	"github.com/danielhkuo/quickly-rank/middleware"
	"github.com/danielhkuo/quickly-rank/service"
	"github.com/danielhkuo/quickly-rank/store"
)

// NewRouter wires every route. m may be nil.
func NewRouter(st *store.Store, svc *service.Service, cfg cliparse.Config, m *metrics.Metrics) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	pollHandler := handlers.NewPollHandler(svc, cfg)
	votingHandler := handlers.NewVotingHandler(svc)
	resultsHandler := handlers.NewResultsHandler(svc, cfg)
	limiter := middleware.NewRateLimiter(cfg.RateLimit, cfg.RateBurst, cfg.AdminKeySalt, m)

	route := func(name string, h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithMetrics(m, name, middleware.WithLogging(h))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		if err := st.Ping(r.Context()); err != nil {
			slog.Error("health check failed", "error", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("database unavailable"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	if m != nil {
		mux.Handle("GET /metrics", m.Handler())
	}

	// Polls
	mux.HandleFunc("POST /polls", route("create_poll", pollHandler.CreatePoll))
	mux.HandleFunc("GET /polls/{id}", route("get_poll", pollHandler.GetPoll))

	// Voting (rate limited per client)
	mux.HandleFunc("POST /polls/{id}/votes/single", route("vote_single", limiter.Limit(votingHandler.SubmitSingle)))
	mux.HandleFunc("POST /polls/{id}/votes/ranked", route("vote_ranked", limiter.Limit(votingHandler.SubmitRanked)))
	mux.HandleFunc("POST /polls/{id}/votes/plurality", route("vote_plurality", limiter.Limit(votingHandler.SubmitPlurality)))
	mux.HandleFunc("POST /polls/{id}/votes/pairwise", route("vote_pairwise", limiter.Limit(votingHandler.SubmitPairwise)))
	mux.HandleFunc("GET /polls/{id}/next-comparison", route("next_comparison", votingHandler.NextComparison))

	// Results
	mux.HandleFunc("GET /polls/{id}/results", route("results", resultsHandler.GetResults))
	mux.HandleFunc("POST /polls/{id}/reprocess", route("reprocess", resultsHandler.Reprocess))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("quickly-rank API v1"))
	})

	return mux
}
