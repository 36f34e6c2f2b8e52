// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/quickly-rank/auth"
	"github.com/danielhkuo/quickly-rank/cliparse"
	"github.com/danielhkuo/quickly-rank/models"
	"github.com/danielhkuo/quickly-rank/service"
	"github.com/danielhkuo/quickly-rank/store"
)

// TestDBURL is an in-memory sqlite database, private to each store.
const TestDBURL = ":memory:"

// SetupTestStore opens a fresh in-memory sqlite store with the full schema.
func SetupTestStore(t *testing.T) *store.Store {
	t.Helper()

	st, err := store.Open(context.Background(), "sqlite", TestDBURL)
	require.NoError(t, err, "failed to open test database")
	t.Cleanup(func() { st.Close() })

	require.NoError(t, st.CreateSchema(), "failed to create schema")
	return st
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:             3318,
		DatabaseURL:      TestDBURL,
		DatabaseType:     "sqlite",
		AdminKeySalt:     "test-admin-salt",
		ReprocessEvery:   10,
		PairCandidates:   10,
		ExplorationGamma: 0.1,
		RateLimit:        1000,
		RateBurst:        1000,
	}
}

// ServiceConfig derives the engine settings from cfg.
func ServiceConfig(cfg cliparse.Config) service.Config {
	sc := service.DefaultConfig()
	sc.ReprocessEvery = cfg.ReprocessEvery
	sc.TopK = cfg.PairCandidates
	sc.Gamma = cfg.ExplorationGamma
	return sc
}

// CreateTestPoll creates a poll with the given format and option texts and
// returns its ID and admin key.
func CreateTestPoll(t *testing.T, svc *service.Service, cfg cliparse.Config, format string, options ...string) (pollID, adminKey string) {
	t.Helper()

	req := models.CreatePollRequest{
		Title:        "Test Poll",
		Description:  "A test poll",
		CreatedBy:    "TestUser",
		VotingFormat: format,
	}
	for _, text := range options {
		req.Options = append(req.Options, models.OptionInput{Text: text})
	}

	poll, err := svc.CreatePoll(context.Background(), req)
	require.NoError(t, err, "failed to create test poll")
	return poll.ID, auth.GenerateAdminKey(poll.ID, cfg.AdminKeySalt)
}

// OptionIDs returns the option IDs of a poll in display order.
func OptionIDs(t *testing.T, st *store.Store, pollID string) []string {
	t.Helper()

	p, err := st.GetPoll(context.Background(), pollID)
	require.NoError(t, err)
	ids := make([]string, len(p.Options))
	for i, o := range p.Options {
		ids[i] = o.ID
	}
	return ids
}

// UserID returns a stable fake annotator ID.
func UserID(n int) string {
	return fmt.Sprintf("user-%03d", n)
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	require.Equal(t, expected, w.Code, "unexpected status, body: %s", w.Body.String())
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(w.Body).Decode(v), "failed to decode JSON response")
}
