// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/quickly-rank/auth"
	"github.com/danielhkuo/quickly-rank/middleware"
	"github.com/danielhkuo/quickly-rank/models"
	"github.com/danielhkuo/quickly-rank/service"
)

// UserIDHeader carries the voter's identity. Anonymous voters get one minted
// and echoed back in the response.
const UserIDHeader = "X-User-ID"

type VotingHandler struct {
	svc *service.Service
}

func NewVotingHandler(svc *service.Service) *VotingHandler {
	return &VotingHandler{svc: svc}
}

// userID resolves the caller's ID and sets it on the response. It reports
// false after writing a 400 for a malformed ID.
func userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.Header.Get(UserIDHeader)
	if id == "" {
		id = auth.NewAnonymousID()
	} else if err := auth.ValidateUserID(id); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	w.Header().Set(UserIDHeader, id)
	return id, true
}

// pollAndUser reads the path poll ID and the caller.
func pollAndUser(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll_id is required")
		return "", "", false
	}
	uid, ok := userID(w, r)
	return pollID, uid, ok
}

// SubmitSingle handles POST /polls/{id}/votes/single
func (h *VotingHandler) SubmitSingle(w http.ResponseWriter, r *http.Request) {
	pollID, uid, ok := pollAndUser(w, r)
	if !ok {
		return
	}

	var req models.SingleVoteRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, middleware.ValidationMessage(err))
		return
	}

	if err := h.svc.SubmitSingleVote(r.Context(), pollID, uid, *req.Option); err != nil {
		writeError(w, err, pollID)
		return
	}

	slog.Info("single vote recorded", "poll_id", pollID, "option", *req.Option)
	middleware.JSONResponse(w, http.StatusCreated, models.VoteResponse{UserID: uid})
}

// SubmitRanked handles POST /polls/{id}/votes/ranked
func (h *VotingHandler) SubmitRanked(w http.ResponseWriter, r *http.Request) {
	pollID, uid, ok := pollAndUser(w, r)
	if !ok {
		return
	}

	var req models.RankedVoteRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, middleware.ValidationMessage(err))
		return
	}

	voteID, err := h.svc.SubmitRankedVote(r.Context(), pollID, uid, req.Rankings)
	if err != nil {
		writeError(w, err, pollID)
		return
	}

	slog.Info("ranked vote recorded", "poll_id", pollID, "vote_id", voteID)
	middleware.JSONResponse(w, http.StatusCreated, models.VoteResponse{VoteID: voteID, UserID: uid})
}

// SubmitPlurality handles POST /polls/{id}/votes/plurality
func (h *VotingHandler) SubmitPlurality(w http.ResponseWriter, r *http.Request) {
	pollID, uid, ok := pollAndUser(w, r)
	if !ok {
		return
	}

	var req models.PluralityVoteRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, middleware.ValidationMessage(err))
		return
	}

	voteID, err := h.svc.SubmitPluralityVote(r.Context(), pollID, uid, req.Selections)
	if err != nil {
		writeError(w, err, pollID)
		return
	}

	slog.Info("plurality vote recorded", "poll_id", pollID, "vote_id", voteID, "selections", len(req.Selections))
	middleware.JSONResponse(w, http.StatusCreated, models.VoteResponse{VoteID: voteID, UserID: uid})
}

// SubmitPairwise handles POST /polls/{id}/votes/pairwise
func (h *VotingHandler) SubmitPairwise(w http.ResponseWriter, r *http.Request) {
	pollID, uid, ok := pollAndUser(w, r)
	if !ok {
		return
	}

	var req models.PairwiseVoteRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, middleware.ValidationMessage(err))
		return
	}

	vote, next, err := h.svc.SubmitPairwiseVote(r.Context(), pollID, uid, *req.Winner, *req.Loser, req.Draw)
	if err != nil && vote.ID == "" {
		writeError(w, err, pollID)
		return
	}
	if err != nil {
		// The vote is stored; only the follow-up pair failed.
		slog.Warn("failed to select next comparison", "poll_id", pollID, "error", err)
	}

	slog.Info("pairwise vote recorded", "poll_id", pollID, "vote_id", vote.ID, "draw", vote.Draw)
	middleware.JSONResponse(w, http.StatusCreated, models.VoteResponse{VoteID: vote.ID, UserID: uid, Next: next})
}

// NextComparison handles GET /polls/{id}/next-comparison
func (h *VotingHandler) NextComparison(w http.ResponseWriter, r *http.Request) {
	pollID, uid, ok := pollAndUser(w, r)
	if !ok {
		return
	}

	next, err := h.svc.NextComparison(r.Context(), pollID, uid)
	if err != nil {
		writeError(w, err, pollID)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, next)
}
