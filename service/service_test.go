// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/quickly-rank/metrics"
	"github.com/danielhkuo/quickly-rank/models"
	"github.com/danielhkuo/quickly-rank/pairwise"
	"github.com/danielhkuo/quickly-rank/service"
	"github.com/danielhkuo/quickly-rank/store"
	"github.com/danielhkuo/quickly-rank/tabulate"
	"github.com/danielhkuo/quickly-rank/testutil"
)

// clock hands out strictly increasing timestamps.
type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

func newService(t *testing.T, cfg service.Config) (*service.Service, *store.Store, *metrics.Metrics) {
	t.Helper()
	st := testutil.SetupTestStore(t)
	m := metrics.New()
	svc := service.New(st, cfg, m)
	c := &clock{t: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
	svc.SetClock(c.now)
	return svc, st, m
}

func createPoll(t *testing.T, svc *service.Service, req models.CreatePollRequest) string {
	t.Helper()
	if req.Title == "" {
		req.Title = "Poll"
	}
	req.CreatedBy = "tester"
	if len(req.Options) == 0 {
		req.Options = []models.OptionInput{{Text: "A"}, {Text: "B"}, {Text: "C"}}
	}
	poll, err := svc.CreatePoll(context.Background(), req)
	require.NoError(t, err)
	return poll.ID
}

func TestCreatePoll(t *testing.T) {
	svc, st, _ := newService(t, service.DefaultConfig())
	ctx := context.Background()

	t.Run("pairwise gets initial stats", func(t *testing.T) {
		id := createPoll(t, svc, models.CreatePollRequest{VotingFormat: models.FormatPairwise, RatingSystem: "trueskill"})
		stats, version, err := st.LoadPairwiseStats(ctx, id)
		require.NoError(t, err)
		assert.Zero(t, version)
		assert.Equal(t, pairwise.SystemTrueSkill, stats.System)
		assert.Len(t, stats.Participants, 3)
	})

	t.Run("ranked defaults to irv", func(t *testing.T) {
		id := createPoll(t, svc, models.CreatePollRequest{VotingFormat: models.FormatRanked})
		p, err := svc.GetPoll(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "irv", p.Poll.RankedMethod)
		assert.Empty(t, p.Poll.RatingSystem)
	})

	t.Run("option ids are unique", func(t *testing.T) {
		id := createPoll(t, svc, models.CreatePollRequest{VotingFormat: models.FormatSingle})
		ids := testutil.OptionIDs(t, st, id)
		assert.Len(t, ids, 3)
		assert.NotEqual(t, ids[0], ids[1])
	})

	for name, req := range map[string]models.CreatePollRequest{
		"one option":     {Title: "x", VotingFormat: models.FormatSingle, Options: []models.OptionInput{{Text: "A"}}},
		"unknown format": {Title: "x", VotingFormat: "approval", Options: []models.OptionInput{{Text: "A"}, {Text: "B"}}},
		"unknown system": {Title: "x", VotingFormat: models.FormatPairwise, RatingSystem: "glicko", Options: []models.OptionInput{{Text: "A"}, {Text: "B"}}},
		"unknown method": {Title: "x", VotingFormat: models.FormatRanked, RankedMethod: "borda", Options: []models.OptionInput{{Text: "A"}, {Text: "B"}}},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.CreatePoll(ctx, req)
			assert.ErrorIs(t, err, service.ErrInvalidPoll)
		})
	}

	t.Run("cause stays in the chain", func(t *testing.T) {
		two := []models.OptionInput{{Text: "A"}, {Text: "B"}}
		_, err := svc.CreatePoll(ctx, models.CreatePollRequest{Title: "x", VotingFormat: models.FormatPairwise, RatingSystem: "glicko", Options: two})
		assert.ErrorIs(t, err, pairwise.ErrUnknownSystem)
		_, err = svc.CreatePoll(ctx, models.CreatePollRequest{Title: "x", VotingFormat: models.FormatRanked, RankedMethod: "borda", Options: two})
		assert.ErrorIs(t, err, tabulate.ErrUnknownMethod)
	})
}

func TestSubmitVotes_FormatChecks(t *testing.T) {
	svc, _, _ := newService(t, service.DefaultConfig())
	ctx := context.Background()
	single := createPoll(t, svc, models.CreatePollRequest{VotingFormat: models.FormatSingle})
	pw := createPoll(t, svc, models.CreatePollRequest{VotingFormat: models.FormatPairwise})

	_, _, err := svc.SubmitPairwiseVote(ctx, single, "u", 0, 1, false)
	assert.ErrorIs(t, err, service.ErrWrongFormat)
	assert.ErrorIs(t, svc.SubmitSingleVote(ctx, pw, "u", 0), service.ErrWrongFormat)
	_, err = svc.SubmitRankedVote(ctx, pw, "u", map[string]int{})
	assert.ErrorIs(t, err, service.ErrWrongFormat)
	_, err = svc.NextComparison(ctx, single, "u")
	assert.ErrorIs(t, err, service.ErrWrongFormat)
	_, err = svc.Reprocess(ctx, single, service.TriggerManual)
	assert.ErrorIs(t, err, service.ErrWrongFormat)

	_, _, err = svc.SubmitPairwiseVote(ctx, "missing", "u", 0, 1, false)
	assert.ErrorIs(t, err, store.ErrNotFound)

	for name, pair := range map[string][2]int{"self": {1, 1}, "negative": {-1, 0}, "past end": {0, 3}} {
		t.Run(name, func(t *testing.T) {
			_, _, err := svc.SubmitPairwiseVote(ctx, pw, "u", pair[0], pair[1], false)
			assert.ErrorIs(t, err, service.ErrInvalidVote)
		})
	}
}

func TestSubmitRankedVote_Validates(t *testing.T) {
	svc, st, _ := newService(t, service.DefaultConfig())
	ctx := context.Background()
	id := createPoll(t, svc, models.CreatePollRequest{VotingFormat: models.FormatRanked})
	ids := testutil.OptionIDs(t, st, id)

	_, err := svc.SubmitRankedVote(ctx, id, "u", map[string]int{ids[0]: 0, ids[1]: 0})
	assert.ErrorIs(t, err, service.ErrInvalidVote)
	assert.ErrorIs(t, err, tabulate.ErrInvalidBallot)

	voteID, err := svc.SubmitRankedVote(ctx, id, "u", map[string]int{ids[0]: 0, ids[1]: 1})
	require.NoError(t, err)
	assert.NotEmpty(t, voteID)
}

func TestSubmitPairwiseVote_ReprocessCadence(t *testing.T) {
	cfg := service.DefaultConfig()
	cfg.ReprocessEvery = 3
	svc, st, m := newService(t, cfg)
	ctx := context.Background()
	id := createPoll(t, svc, models.CreatePollRequest{VotingFormat: models.FormatPairwise, RatingSystem: "crowd-bt"})

	pairs := [][2]int{{0, 1}, {1, 2}, {0, 2}, {2, 1}, {0, 1}, {0, 2}, {1, 0}}
	for i, p := range pairs {
		vote, next, err := svc.SubmitPairwiseVote(ctx, id, testutil.UserID(i%2), p[0], p[1], false)
		require.NoError(t, err)
		assert.NotEmpty(t, vote.ID)
		require.NotNil(t, next)
	}

	// Votes 3 and 6 triggered a rebuild.
	assert.Equal(t, float64(2), reprocessRuns(t, m, service.TriggerCadence))

	// Incremental stats after a rebuild agree with a full replay.
	stats, version, err := st.LoadPairwiseStats(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, len(pairs), version)

	votes, err := st.PairwiseVotes(ctx, id)
	require.NoError(t, err)
	replayed, err := pairwise.Reprocess(pairwise.SystemCrowd, 3, models.Comparisons(votes))
	require.NoError(t, err)
	for i, r := range replayed.Rankings() {
		got := stats.Rankings()[i]
		assert.Equal(t, r.OptionID, got.OptionID)
		assert.InDelta(t, r.Value, got.Value, 1e-9)
	}
}

// reprocessRuns reads the successful reprocess count for trigger.
func reprocessRuns(t *testing.T, m *metrics.Metrics, trigger string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != "quickly_rank_reprocess_total" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range metric.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			if labels["trigger"] == trigger && labels["status"] == "ok" {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestNextComparison_ExhaustsPairs(t *testing.T) {
	svc, _, _ := newService(t, service.DefaultConfig())
	ctx := context.Background()
	id := createPoll(t, svc, models.CreatePollRequest{VotingFormat: models.FormatPairwise, RatingSystem: "elo"})

	seen := map[[2]int]bool{}
	for {
		next, err := svc.NextComparison(ctx, id, "solo")
		require.NoError(t, err)
		if next.Done {
			break
		}
		require.NotNil(t, next.Pair)
		p := *next.Pair
		assert.NotEqual(t, p[0], p[1])
		key := [2]int{min(p[0], p[1]), max(p[0], p[1])}
		require.False(t, seen[key], "pair %v offered twice", key)
		seen[key] = true

		_, _, err = svc.SubmitPairwiseVote(ctx, id, "solo", p[0], p[1], false)
		require.NoError(t, err)
	}
	assert.Len(t, seen, 3)

	// Another annotator starts fresh.
	next, err := svc.NextComparison(ctx, id, "other")
	require.NoError(t, err)
	assert.False(t, next.Done)
}

func TestReprocess_RepairsCorruptStats(t *testing.T) {
	svc, st, _ := newService(t, service.DefaultConfig())
	ctx := context.Background()
	id := createPoll(t, svc, models.CreatePollRequest{VotingFormat: models.FormatPairwise})

	for i := 0; i < 4; i++ {
		_, _, err := svc.SubmitPairwiseVote(ctx, id, testutil.UserID(i), 2, i%2, false)
		require.NoError(t, err)
	}

	_, err := st.DB().ExecContext(ctx, st.DB().Rebind(`UPDATE poll SET pairwise_stats = ? WHERE id = ?`), `{"system":`, id)
	require.NoError(t, err)

	_, err = svc.Results(ctx, id, 1)
	assert.ErrorIs(t, err, pairwise.ErrCorruptStats)
	_, _, err = svc.SubmitPairwiseVote(ctx, id, "late", 0, 1, false)
	assert.ErrorIs(t, err, pairwise.ErrCorruptStats)

	n, err := svc.Reprocess(ctx, id, service.TriggerManual)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	res, err := svc.Results(ctx, id, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Rankings[0].OptionID)
	assert.Equal(t, 4, res.TotalVotes)
}

func TestReprocessAll(t *testing.T) {
	cfg := service.DefaultConfig()
	cfg.Parallelism = 2
	svc, st, m := newService(t, cfg)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		id := createPoll(t, svc, models.CreatePollRequest{VotingFormat: models.FormatPairwise})
		_, _, err := svc.SubmitPairwiseVote(ctx, id, "u", 0, 1, false)
		require.NoError(t, err)
		ids = append(ids, id)
	}
	createPoll(t, svc, models.CreatePollRequest{VotingFormat: models.FormatSingle})

	require.NoError(t, svc.ReprocessAll(ctx, service.TriggerStartup))
	assert.Equal(t, float64(3), reprocessRuns(t, m, service.TriggerStartup))

	for _, id := range ids {
		_, version, err := st.LoadPairwiseStats(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 2, version, "one vote plus one rebuild")
	}
}

func TestResults(t *testing.T) {
	svc, st, _ := newService(t, service.DefaultConfig())
	ctx := context.Background()

	t.Run("plurality", func(t *testing.T) {
		id := createPoll(t, svc, models.CreatePollRequest{VotingFormat: models.FormatPlurality})
		for i, sel := range [][]int{{0, 1}, {1}, {1, 2}, {1, 1}} {
			_, err := svc.SubmitPluralityVote(ctx, id, testutil.UserID(i), sel)
			require.NoError(t, err)
		}
		res, err := svc.Results(ctx, id, 1)
		require.NoError(t, err)
		assert.Equal(t, 4, res.TotalVotes)
		require.Len(t, res.Tallies, 3)
		assert.Equal(t, 4, res.Tallies[1].Votes, "duplicate selections count once")
		assert.InDelta(t, 100.0, res.Tallies[1].Percent, 1e-9)
	})

	t.Run("ranked multi-winner", func(t *testing.T) {
		id := createPoll(t, svc, models.CreatePollRequest{VotingFormat: models.FormatRanked, RankedMethod: "coombs"})
		ids := testutil.OptionIDs(t, st, id)
		for i := 0; i < 3; i++ {
			_, err := svc.SubmitRankedVote(ctx, id, testutil.UserID(i), map[string]int{ids[2]: 0, ids[0]: 1, ids[1]: 2})
			require.NoError(t, err)
		}
		res, err := svc.Results(ctx, id, 2)
		require.NoError(t, err)
		assert.Equal(t, "coombs", res.Method)
		require.Len(t, res.Winners, 2)
		assert.Equal(t, ids[2], res.Winners[0].OptionID)
		assert.Equal(t, ids[0], res.Winners[1].OptionID)

		_, err = svc.Results(ctx, id, 5)
		assert.ErrorIs(t, err, tabulate.ErrInvalidWinnerCount)
	})

	t.Run("missing poll", func(t *testing.T) {
		_, err := svc.Results(ctx, "missing", 1)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}
