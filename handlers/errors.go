// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/quickly-rank/middleware"
	"github.com/danielhkuo/quickly-rank/pairwise"
	"github.com/danielhkuo/quickly-rank/service"
	"github.com/danielhkuo/quickly-rank/store"
	"github.com/danielhkuo/quickly-rank/tabulate"
)

// writeError maps service and store errors onto HTTP statuses.
func writeError(w http.ResponseWriter, err error, pollID string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
	case errors.Is(err, store.ErrAlreadyVoted):
		middleware.ErrorResponse(w, http.StatusConflict, "You have already voted in this poll")
	case errors.Is(err, store.ErrConflict):
		slog.Warn("pairwise update conflict", "poll_id", pollID, "error", err)
		w.Header().Set("Retry-After", "1")
		middleware.ErrorResponse(w, http.StatusConflict, "Poll is busy, try again")
	case errors.Is(err, service.ErrWrongFormat):
		middleware.ErrorResponse(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidVote),
		errors.Is(err, service.ErrInvalidPoll),
		errors.Is(err, tabulate.ErrInvalidBallot),
		errors.Is(err, tabulate.ErrInvalidWinnerCount),
		errors.Is(err, tabulate.ErrUnknownMethod),
		errors.Is(err, pairwise.ErrUnknownSystem),
		errors.Is(err, pairwise.ErrInvalidComparison):
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, pairwise.ErrCorruptStats):
		slog.Error("corrupt pairwise stats", "poll_id", pollID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Poll statistics are corrupt, reprocess the poll")
	default:
		slog.Error("request failed", "poll_id", pollID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Internal server error")
	}
}
