// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/quickly-rank/metrics"
	"github.com/danielhkuo/quickly-rank/models"
)

func TestWithLogging_PreservesResponse(t *testing.T) {
	testCases := []struct {
		name       string
		statusCode int
		body       string
	}{
		{"OK", http.StatusOK, "ok"},
		{"Created", http.StatusCreated, `{"id":"123"}`},
		{"BadRequest", http.StatusBadRequest, `{"error":"bad request"}`},
		{"InternalError", http.StatusInternalServerError, "error"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handler := WithLogging(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.statusCode)
				w.Write([]byte(tc.body))
			})

			w := httptest.NewRecorder()
			handler(w, httptest.NewRequest("POST", "/api/test", nil))

			assert.Equal(t, tc.statusCode, w.Code)
			assert.Equal(t, tc.body, w.Body.String())
		})
	}
}

func TestWithMetrics(t *testing.T) {
	m := metrics.New()
	handler := WithMetrics(m, "test", WithLogging(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, http.StatusTeapot, w.Code)

	count, err := testutil.GatherAndCount(m.Registry(), "quickly_rank_http_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// nil metrics are a no-op
	w = httptest.NewRecorder()
	WithMetrics(nil, "test", func(w http.ResponseWriter, r *http.Request) {})(w, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestErrorResponse(t *testing.T) {
	w := httptest.NewRecorder()
	ErrorResponse(w, http.StatusNotFound, "Poll not found")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp models.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "Not Found", resp.Error)
	assert.Equal(t, "Poll not found", resp.Message)
}

func TestDecodeAndValidate(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"valid", `{"title":"Lunch","created_by":"dan","voting_format":"ranked","options":[{"text":"A"},{"text":"B"}]}`, ""},
		{"bad json", `{"title":`, "Invalid JSON"},
		{"missing title", `{"created_by":"dan","voting_format":"ranked","options":[{"text":"A"},{"text":"B"}]}`, "title is required"},
		{"bad format", `{"title":"x","created_by":"dan","voting_format":"approval","options":[{"text":"A"},{"text":"B"}]}`, "voting_format must be one of"},
		{"empty option", `{"title":"x","created_by":"dan","voting_format":"single","options":[{"text":"A"},{"text":""}]}`, "options[1].text is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/polls", strings.NewReader(tt.body))
			var v models.CreatePollRequest
			err := DecodeAndValidate(req, &v)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, ValidationMessage(err), tt.wantErr)
		})
	}
}

func TestCORS(t *testing.T) {
	handler := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/polls", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "X-User-ID")
		assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "X-User-ID")
	})

	t.Run("no origin", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		want       string
	}{
		{"forwarded chain", map[string]string{"X-Forwarded-For": "203.0.113.1, 10.0.0.1"}, "10.0.0.2:1234", "203.0.113.1"},
		{"forwarded single", map[string]string{"X-Forwarded-For": "203.0.113.1"}, "10.0.0.2:1234", "203.0.113.1"},
		{"real ip", map[string]string{"X-Real-IP": "198.51.100.7"}, "10.0.0.2:1234", "198.51.100.7"},
		{"remote addr", nil, "192.0.2.4:5678", "192.0.2.4"},
		{"no port", nil, "192.0.2.4", "192.0.2.4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, GetClientIP(req))
		})
	}
}

func TestRateLimiter(t *testing.T) {
	m := metrics.New()
	rl := NewRateLimiter(1, 2, "salt", m)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	handler := rl.Limit(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	vote := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("POST", "/polls/p/votes/pairwise", nil)
		req.RemoteAddr = addr
		w := httptest.NewRecorder()
		handler(w, req)
		return w
	}

	assert.Equal(t, http.StatusCreated, vote("192.0.2.1:1").Code)
	assert.Equal(t, http.StatusCreated, vote("192.0.2.1:2").Code)

	w := vote("192.0.2.1:3")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(`
# HELP quickly_rank_rate_limited_total Requests rejected by the per-client rate limiter.
# TYPE quickly_rank_rate_limited_total counter
quickly_rank_rate_limited_total 1
`), "quickly_rank_rate_limited_total"))

	// Other clients have their own bucket.
	assert.Equal(t, http.StatusCreated, vote("192.0.2.9:1").Code)

	// Tokens refill over time.
	now = now.Add(time.Second)
	assert.Equal(t, http.StatusCreated, vote("192.0.2.1:4").Code)

	// Idle buckets are swept.
	now = now.Add(2 * idleTTL)
	assert.True(t, rl.Allow("fresh"))
	assert.Equal(t, 1, rl.size())
}
