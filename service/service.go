// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/danielhkuo/quickly-rank/auth"
	"github.com/danielhkuo/quickly-rank/metrics"
	"github.com/danielhkuo/quickly-rank/models"
	"github.com/danielhkuo/quickly-rank/pairwise"
	"github.com/danielhkuo/quickly-rank/store"
	"github.com/danielhkuo/quickly-rank/tabulate"
)

var (
	ErrInvalidVote = errors.New("invalid vote")
	ErrInvalidPoll = errors.New("invalid poll")
	ErrWrongFormat = errors.New("operation not supported for this voting format")
)

// Config tunes the pairwise engine.
type Config struct {
	ReprocessEvery int
	TopK           int
	Gamma          float64
	// Parallelism bounds ReprocessAll.
	Parallelism int
}

func DefaultConfig() Config {
	return Config{
		ReprocessEvery: pairwise.DefaultReprocessEvery,
		TopK:           pairwise.DefaultTopK,
		Gamma:          pairwise.DefaultGamma,
		Parallelism:    4,
	}
}

type Service struct {
	store   *store.Store
	cfg     Config
	metrics *metrics.Metrics
	group   singleflight.Group
	now     func() time.Time
}

// New creates a Service. m may be nil.
func New(st *store.Store, cfg Config, m *metrics.Metrics) *Service {
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = 1
	}
	return &Service{store: st, cfg: cfg, metrics: m, now: time.Now}
}

// CreatePoll stores a new poll. Pairwise polls start with initialized stats
// for every option.
func (s *Service) CreatePoll(ctx context.Context, req models.CreatePollRequest) (models.Poll, error) {
	if len(req.Options) < 2 {
		return models.Poll{}, fmt.Errorf("%w: at least 2 options are required", ErrInvalidPoll)
	}

	pollID, err := auth.GenerateID(16)
	if err != nil {
		return models.Poll{}, err
	}
	poll := models.Poll{
		ID:           pollID,
		Title:        req.Title,
		Description:  req.Description,
		CreatedBy:    req.CreatedBy,
		VotingFormat: req.VotingFormat,
		CreatedAt:    s.now().UTC(),
	}

	var stats *pairwise.Stats
	switch req.VotingFormat {
	case models.FormatPairwise:
		system := pairwise.System(req.RatingSystem)
		if system == "" {
			system = pairwise.DefaultSystem
		}
		stats, err = pairwise.Initialize(system, len(req.Options), poll.CreatedAt)
		if err != nil {
			return models.Poll{}, fmt.Errorf("%w: %w", ErrInvalidPoll, err)
		}
		poll.RatingSystem = string(system)
	case models.FormatRanked:
		method, err := tabulate.ParseMethod(req.RankedMethod)
		if err != nil {
			return models.Poll{}, fmt.Errorf("%w: %w", ErrInvalidPoll, err)
		}
		poll.RankedMethod = string(method)
	case models.FormatSingle, models.FormatPlurality:
	default:
		return models.Poll{}, fmt.Errorf("%w: unknown voting format %q", ErrInvalidPoll, req.VotingFormat)
	}

	options := make([]models.Option, len(req.Options))
	for i, in := range req.Options {
		optionID, err := auth.GenerateID(6)
		if err != nil {
			return models.Poll{}, err
		}
		options[i] = models.Option{ID: optionID, Text: in.Text, ImageURL: in.ImageURL, Position: i}
	}

	if err := s.store.CreatePoll(ctx, poll, options, stats); err != nil {
		return models.Poll{}, err
	}
	return poll, nil
}

// GetPoll returns poll metadata and options.
func (s *Service) GetPoll(ctx context.Context, pollID string) (*models.PollWithOptions, error) {
	return s.store.GetPoll(ctx, pollID)
}

func (s *Service) pollOf(ctx context.Context, pollID, format string) (*models.PollWithOptions, error) {
	p, err := s.store.GetPoll(ctx, pollID)
	if err != nil {
		return nil, err
	}
	if p.Poll.VotingFormat != format {
		return nil, fmt.Errorf("%w: poll is %s, not %s", ErrWrongFormat, p.Poll.VotingFormat, format)
	}
	return p, nil
}

// SubmitSingleVote counts userID's vote for the option at position.
func (s *Service) SubmitSingleVote(ctx context.Context, pollID, userID string, position int) error {
	p, err := s.pollOf(ctx, pollID, models.FormatSingle)
	if err != nil {
		return err
	}
	if position < 0 || position >= len(p.Options) {
		return fmt.Errorf("%w: option %d out of range", ErrInvalidVote, position)
	}

	if err := s.store.RecordSingleVote(ctx, pollID, userID, position, s.now()); err != nil {
		return err
	}
	s.metrics.VoteRecorded(models.FormatSingle)
	return nil
}

// SubmitRankedVote appends a ranked ballot keyed by option ID.
func (s *Service) SubmitRankedVote(ctx context.Context, pollID, userID string, rankings map[string]int) (string, error) {
	p, err := s.pollOf(ctx, pollID, models.FormatRanked)
	if err != nil {
		return "", err
	}

	ballot := tabulate.Ballot{Voter: userID, Rankings: rankings, Timestamp: s.now().UTC()}
	ids := make([]string, len(p.Options))
	for i, o := range p.Options {
		ids[i] = o.ID
	}
	if err := tabulate.ValidateBallot(ballot, ids); err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidVote, err)
	}

	voteID, err := s.store.AppendRankedVote(ctx, pollID, ballot)
	if err != nil {
		return "", err
	}
	s.metrics.VoteRecorded(models.FormatRanked)
	return voteID, nil
}

// SubmitPluralityVote appends the options userID selected.
func (s *Service) SubmitPluralityVote(ctx context.Context, pollID, userID string, selections []int) (string, error) {
	p, err := s.pollOf(ctx, pollID, models.FormatPlurality)
	if err != nil {
		return "", err
	}
	for _, sel := range selections {
		if sel < 0 || sel >= len(p.Options) {
			return "", fmt.Errorf("%w: option %d out of range", ErrInvalidVote, sel)
		}
	}

	voteID, err := s.store.AppendPluralityVote(ctx, pollID, models.PluralityVote{
		UserID:     userID,
		Selections: selections,
		Timestamp:  s.now().UTC(),
	})
	if err != nil {
		return "", err
	}
	s.metrics.VoteRecorded(models.FormatPlurality)
	return voteID, nil
}
