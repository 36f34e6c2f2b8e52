// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/quickly-rank/auth"
	"github.com/danielhkuo/quickly-rank/cliparse"
	"github.com/danielhkuo/quickly-rank/models"
	"github.com/danielhkuo/quickly-rank/service"
	"github.com/danielhkuo/quickly-rank/store"
	"github.com/danielhkuo/quickly-rank/testutil"
)

type testEnv struct {
	st  *store.Store
	svc *service.Service
	cfg cliparse.Config
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	cfg := testutil.GetTestConfig()
	st := testutil.SetupTestStore(t)
	return testEnv{st: st, svc: service.New(st, testutil.ServiceConfig(cfg), nil), cfg: cfg}
}

func TestCreatePoll(t *testing.T) {
	env := newTestEnv(t)
	handler := NewPollHandler(env.svc, env.cfg)

	tests := []struct {
		name       string
		body       interface{}
		wantStatus int
		wantMsg    string
	}{
		{
			name: "ranked poll",
			body: models.CreatePollRequest{
				Title: "Lunch", CreatedBy: "Alice", VotingFormat: models.FormatRanked,
				RankedMethod: "coombs",
				Options:      []models.OptionInput{{Text: "Tacos"}, {Text: "Sushi"}},
			},
			wantStatus: http.StatusCreated,
		},
		{
			name: "pairwise poll with default system",
			body: models.CreatePollRequest{
				Title: "Logos", CreatedBy: "Alice", VotingFormat: models.FormatPairwise,
				Options: []models.OptionInput{{Text: "A"}, {Text: "B"}, {Text: "C"}},
			},
			wantStatus: http.StatusCreated,
		},
		{
			name: "missing title",
			body: models.CreatePollRequest{
				CreatedBy: "Alice", VotingFormat: models.FormatSingle,
				Options: []models.OptionInput{{Text: "A"}, {Text: "B"}},
			},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "title is required",
		},
		{
			name: "one option",
			body: models.CreatePollRequest{
				Title: "Lonely", CreatedBy: "Alice", VotingFormat: models.FormatSingle,
				Options: []models.OptionInput{{Text: "A"}},
			},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "options",
		},
		{
			name: "unknown rating system",
			body: models.CreatePollRequest{
				Title: "x", CreatedBy: "Alice", VotingFormat: models.FormatPairwise,
				RatingSystem: "glicko",
				Options:      []models.OptionInput{{Text: "A"}, {Text: "B"}},
			},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "rating_system",
		},
		{
			name:       "invalid json",
			body:       nil,
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Invalid JSON",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.CreatePoll(w, testutil.MakeRequest("POST", "/polls", tt.body, nil))
			testutil.AssertStatus(t, w, tt.wantStatus)

			if tt.wantStatus != http.StatusCreated {
				var resp models.ErrorResponse
				testutil.AssertJSON(t, w, &resp)
				assert.Contains(t, resp.Message, tt.wantMsg)
				return
			}

			var resp models.CreatePollResponse
			testutil.AssertJSON(t, w, &resp)
			assert.NotEmpty(t, resp.PollID)
			assert.NoError(t, auth.ValidateAdminKey(resp.PollID, resp.AdminKey, env.cfg.AdminKeySalt))
		})
	}
}

func TestGetPoll(t *testing.T) {
	env := newTestEnv(t)
	handler := NewPollHandler(env.svc, env.cfg)
	pollID, _ := testutil.CreateTestPoll(t, env.svc, env.cfg, models.FormatPairwise, "Red", "Green", "Blue")

	t.Run("found", func(t *testing.T) {
		req := testutil.MakeRequest("GET", "/polls/"+pollID, nil, nil)
		req.SetPathValue("id", pollID)
		w := httptest.NewRecorder()
		handler.GetPoll(w, req)
		testutil.AssertStatus(t, w, http.StatusOK)

		var resp models.PollWithOptions
		testutil.AssertJSON(t, w, &resp)
		assert.Equal(t, pollID, resp.Poll.ID)
		assert.Equal(t, models.FormatPairwise, resp.Poll.VotingFormat)
		assert.Equal(t, "bradley-terry", resp.Poll.RatingSystem)
		require.Len(t, resp.Options, 3)
		assert.Equal(t, "Red", resp.Options[0].Text)
		assert.Equal(t, "Blue", resp.Options[2].Text)
	})

	t.Run("not found", func(t *testing.T) {
		req := testutil.MakeRequest("GET", "/polls/nope", nil, nil)
		req.SetPathValue("id", "nope")
		w := httptest.NewRecorder()
		handler.GetPoll(w, req)
		testutil.AssertStatus(t, w, http.StatusNotFound)
	})
}
