// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/quickly-rank/models"
	"github.com/danielhkuo/quickly-rank/testutil"
)

func getResults(t *testing.T, h *ResultsHandler, pollID, query string) *httptest.ResponseRecorder {
	t.Helper()
	req := testutil.MakeRequest("GET", "/polls/"+pollID+"/results"+query, nil, nil)
	req.SetPathValue("id", pollID)
	w := httptest.NewRecorder()
	h.GetResults(w, req)
	return w
}

func TestGetResults_Single(t *testing.T) {
	env := newTestEnv(t)
	handler := NewResultsHandler(env.svc, env.cfg)
	pollID, _ := testutil.CreateTestPoll(t, env.svc, env.cfg, models.FormatSingle, "A", "B")

	ctx := context.Background()
	for i, choice := range []int{1, 1, 0} {
		require.NoError(t, env.svc.SubmitSingleVote(ctx, pollID, testutil.UserID(i), choice))
	}

	w := getResults(t, handler, pollID, "")
	testutil.AssertStatus(t, w, http.StatusOK)

	var res models.ResultsResponse
	testutil.AssertJSON(t, w, &res)
	assert.Equal(t, 3, res.TotalVotes)
	require.Len(t, res.Tallies, 2)
	assert.Equal(t, 1, res.Tallies[0].Votes)
	assert.Equal(t, 2, res.Tallies[1].Votes)
}

func TestGetResults_Ranked(t *testing.T) {
	env := newTestEnv(t)
	handler := NewResultsHandler(env.svc, env.cfg)
	pollID, _ := testutil.CreateTestPoll(t, env.svc, env.cfg, models.FormatRanked, "A", "B", "C")
	ids := testutil.OptionIDs(t, env.st, pollID)

	ballots := []map[string]int{
		{ids[0]: 0, ids[1]: 1},
		{ids[0]: 0, ids[2]: 1},
		{ids[1]: 0, ids[0]: 1},
		{ids[2]: 0, ids[1]: 1},
		{ids[1]: 0},
	}
	for i, b := range ballots {
		_, err := env.svc.SubmitRankedVote(context.Background(), pollID, testutil.UserID(i), b)
		require.NoError(t, err)
	}

	w := getResults(t, handler, pollID, "")
	testutil.AssertStatus(t, w, http.StatusOK)
	var res models.ResultsResponse
	testutil.AssertJSON(t, w, &res)
	assert.Equal(t, "irv", res.Method)
	assert.Equal(t, 5, res.TotalVotes)
	require.Len(t, res.Winners, 1)
	assert.Equal(t, ids[1], res.Winners[0].OptionID)

	t.Run("two winners", func(t *testing.T) {
		w := getResults(t, handler, pollID, "?winners=2")
		testutil.AssertStatus(t, w, http.StatusOK)
		var res models.ResultsResponse
		testutil.AssertJSON(t, w, &res)
		assert.Len(t, res.Winners, 2)
	})

	t.Run("bad winners", func(t *testing.T) {
		testutil.AssertStatus(t, getResults(t, handler, pollID, "?winners=zero"), http.StatusBadRequest)
		testutil.AssertStatus(t, getResults(t, handler, pollID, "?winners=0"), http.StatusBadRequest)
		testutil.AssertStatus(t, getResults(t, handler, pollID, "?winners=4"), http.StatusBadRequest)
	})
}

func TestGetResults_PairwiseBeforeVotes(t *testing.T) {
	env := newTestEnv(t)
	handler := NewResultsHandler(env.svc, env.cfg)
	pollID, _ := testutil.CreateTestPoll(t, env.svc, env.cfg, models.FormatPairwise, "A", "B", "C")

	w := getResults(t, handler, pollID, "")
	testutil.AssertStatus(t, w, http.StatusOK)
	var res models.ResultsResponse
	testutil.AssertJSON(t, w, &res)
	assert.Equal(t, "bradley-terry", res.System)
	assert.Len(t, res.Rankings, 3)
	assert.Zero(t, res.TotalVotes)
}

func TestReprocess(t *testing.T) {
	env := newTestEnv(t)
	handler := NewResultsHandler(env.svc, env.cfg)
	pollID, adminKey := testutil.CreateTestPoll(t, env.svc, env.cfg, models.FormatPairwise, "A", "B", "C")

	ctx := context.Background()
	for i := 0; i < 4; i++ {
		_, _, err := env.svc.SubmitPairwiseVote(ctx, pollID, testutil.UserID(i), 2, 0, false)
		require.NoError(t, err)
	}

	reprocess := func(key string) *httptest.ResponseRecorder {
		req := testutil.MakeRequest("POST", "/polls/"+pollID+"/reprocess", nil, map[string]string{"X-Admin-Key": key})
		req.SetPathValue("id", pollID)
		w := httptest.NewRecorder()
		handler.Reprocess(w, req)
		return w
	}

	before := getResults(t, handler, pollID, "")
	testutil.AssertStatus(t, before, http.StatusOK)

	t.Run("wrong key", func(t *testing.T) {
		testutil.AssertStatus(t, reprocess("nope"), http.StatusUnauthorized)
	})

	t.Run("admin", func(t *testing.T) {
		w := reprocess(adminKey)
		testutil.AssertStatus(t, w, http.StatusOK)
		var resp models.ReprocessResponse
		testutil.AssertJSON(t, w, &resp)
		assert.Equal(t, 4, resp.Comparisons)

		after := getResults(t, handler, pollID, "")
		testutil.AssertStatus(t, after, http.StatusOK)
		var res models.ResultsResponse
		testutil.AssertJSON(t, after, &res)
		require.NotEmpty(t, res.Rankings)
		assert.Equal(t, 2, res.Rankings[0].OptionID, "the repeated winner ranks first")
	})

	t.Run("not pairwise", func(t *testing.T) {
		other, key := testutil.CreateTestPoll(t, env.svc, env.cfg, models.FormatSingle, "A", "B")
		req := testutil.MakeRequest("POST", "/polls/"+other+"/reprocess", nil, map[string]string{"X-Admin-Key": key})
		req.SetPathValue("id", other)
		w := httptest.NewRecorder()
		handler.Reprocess(w, req)
		testutil.AssertStatus(t, w, http.StatusConflict)
	})
}
