// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"strconv"

	"github.com/danielhkuo/quickly-rank/auth"
	"github.com/danielhkuo/quickly-rank/cliparse"
	"github.com/danielhkuo/quickly-rank/middleware"
	"github.com/danielhkuo/quickly-rank/models"
	"github.com/danielhkuo/quickly-rank/service"
)

type ResultsHandler struct {
	svc *service.Service
	cfg cliparse.Config
}

func NewResultsHandler(svc *service.Service, cfg cliparse.Config) *ResultsHandler {
	return &ResultsHandler{svc: svc, cfg: cfg}
}

// GetResults handles GET /polls/{id}/results
// Ranked polls accept ?winners=N for multi-winner tabulation.
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll_id is required")
		return
	}

	winners := 1
	if s := r.URL.Query().Get("winners"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			middleware.ErrorResponse(w, http.StatusBadRequest, "winners must be a positive integer")
			return
		}
		winners = n
	}

	res, err := h.svc.Results(r.Context(), pollID, winners)
	if err != nil {
		writeError(w, err, pollID)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, res)
}

// Reprocess handles POST /polls/{id}/reprocess
// Rebuilds pairwise stats from the comparison log. Requires X-Admin-Key.
func (h *ResultsHandler) Reprocess(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll_id is required")
		return
	}

	adminKey := r.Header.Get("X-Admin-Key")
	if err := auth.ValidateAdminKey(pollID, adminKey, h.cfg.AdminKeySalt); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
		return
	}

	n, err := h.svc.Reprocess(r.Context(), pollID, service.TriggerManual)
	if err != nil {
		writeError(w, err, pollID)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.ReprocessResponse{PollID: pollID, Comparisons: n})
}
