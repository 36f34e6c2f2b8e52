// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/quickly-rank/auth"
	"github.com/danielhkuo/quickly-rank/cliparse"
	"github.com/danielhkuo/quickly-rank/middleware"
	"github.com/danielhkuo/quickly-rank/models"
	"github.com/danielhkuo/quickly-rank/service"
)

type PollHandler struct {
	svc *service.Service
	cfg cliparse.Config
}

func NewPollHandler(svc *service.Service, cfg cliparse.Config) *PollHandler {
	return &PollHandler{svc: svc, cfg: cfg}
}

// CreatePoll handles POST /polls
func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePollRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, middleware.ValidationMessage(err))
		return
	}

	poll, err := h.svc.CreatePoll(r.Context(), req)
	if err != nil {
		writeError(w, err, "")
		return
	}

	slog.Info("poll created",
		"poll_id", poll.ID,
		"creator", poll.CreatedBy,
		"format", poll.VotingFormat,
		"options", len(req.Options),
	)

	middleware.JSONResponse(w, http.StatusCreated, models.CreatePollResponse{
		PollID:   poll.ID,
		AdminKey: auth.GenerateAdminKey(poll.ID, h.cfg.AdminKeySalt),
	})
}

// GetPoll handles GET /polls/{id}
func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll_id is required")
		return
	}

	p, err := h.svc.GetPoll(r.Context(), pollID)
	if err != nil {
		writeError(w, err, pollID)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, p)
}
