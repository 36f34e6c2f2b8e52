package models

import (
	"time"

	"github.com/danielhkuo/quickly-rank/pairwise"
	"github.com/danielhkuo/quickly-rank/tabulate"
)

// Voting format constants
const (
	FormatSingle    = "single"
	FormatRanked    = "ranked"
	FormatPlurality = "plurality"
	FormatPairwise  = "pairwise"
)

// Request types

type CreatePollRequest struct {
	Title        string        `json:"title" validate:"required,max=200"`
	Description  string        `json:"description" validate:"max=2000"`
	CreatedBy    string        `json:"created_by" validate:"required,max=100"`
	VotingFormat string        `json:"voting_format" validate:"required,oneof=single ranked plurality pairwise"`
	RatingSystem string        `json:"rating_system" validate:"omitempty,oneof=elo bradley-terry crowd-bt trueskill"`
	RankedMethod string        `json:"ranked_method" validate:"omitempty,oneof=irv coombs"`
	Options      []OptionInput `json:"options" validate:"required,min=2,max=100,dive"`
}

type OptionInput struct {
	Text     string `json:"text" validate:"required,max=200"`
	ImageURL string `json:"image_url" validate:"omitempty,url"`
}

type SingleVoteRequest struct {
	Option *int `json:"option" validate:"required,min=0"`
}

// option_id -> rank (0 is the first preference, negative is unranked)
type RankedVoteRequest struct {
	Rankings map[string]int `json:"rankings" validate:"required,min=1"`
}

type PluralityVoteRequest struct {
	Selections []int `json:"selections" validate:"required,min=1,dive,min=0"`
}

type PairwiseVoteRequest struct {
	Winner *int `json:"winner" validate:"required,min=0"`
	Loser  *int `json:"loser" validate:"required,min=0"`
	Draw   bool `json:"draw"`
}

// Response types

type CreatePollResponse struct {
	PollID   string `json:"poll_id"`
	AdminKey string `json:"admin_key"`
}

type VoteResponse struct {
	VoteID string          `json:"vote_id,omitempty"`
	UserID string          `json:"user_id"`
	Next   *NextComparison `json:"next,omitempty"`
}

// NextComparison is the next pair an annotator should judge. Done is set
// once the annotator has judged every pair.
type NextComparison struct {
	Pair *[2]int `json:"pair,omitempty"`
	Done bool    `json:"done"`
}

type ResultsResponse struct {
	PollID       string                 `json:"poll_id"`
	VotingFormat string                 `json:"voting_format"`
	TotalVotes   int                    `json:"total_votes"`
	Method       string                 `json:"method,omitempty"`
	System       string                 `json:"system,omitempty"`
	Tallies      []tabulate.OptionTally `json:"tallies,omitempty"`
	Winners      []tabulate.Winner      `json:"winners,omitempty"`
	Rankings     []pairwise.Rating      `json:"rankings,omitempty"`
}

type ReprocessResponse struct {
	PollID      string `json:"poll_id"`
	Comparisons int    `json:"comparisons"`
}

// Domain types. These carry the persisted record shape, so they keep the
// camelCase field names of the stored documents.

type Poll struct {
	ID           string    `json:"id" db:"id"`
	Title        string    `json:"title" db:"title"`
	Description  string    `json:"description" db:"description"`
	CreatedBy    string    `json:"createdBy" db:"created_by"`
	VotingFormat string    `json:"votingFormat" db:"voting_format"`
	RatingSystem string    `json:"ratingSystem,omitempty" db:"rating_system"`
	RankedMethod string    `json:"rankedMethod,omitempty" db:"ranked_method"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

type Option struct {
	ID       string `json:"id" db:"id"`
	Text     string `json:"text" db:"text"`
	ImageURL string `json:"imageUrl,omitempty" db:"image_url"`
	Votes    int    `json:"votes" db:"votes"`
	Position int    `json:"-" db:"position"`
}

type PollWithOptions struct {
	Poll    Poll     `json:"poll"`
	Options []Option `json:"options"`
}

type PluralityVote struct {
	UserID     string    `json:"userId"`
	Selections []int     `json:"selections"`
	Timestamp  time.Time `json:"timestamp"`
}

type PairwiseVote struct {
	ID        string    `json:"id,omitempty"`
	UserID    string    `json:"userId"`
	Winner    int       `json:"winner"`
	Loser     int       `json:"loser"`
	Draw      bool      `json:"draw,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Comparison converts the vote into the rating engine's input.
func (v PairwiseVote) Comparison() pairwise.Comparison {
	return pairwise.Comparison{
		Winner:    v.Winner,
		Loser:     v.Loser,
		Annotator: v.UserID,
		Draw:      v.Draw,
		Timestamp: v.Timestamp,
	}
}

// Comparisons converts a vote log.
func Comparisons(votes []PairwiseVote) []pairwise.Comparison {
	out := make([]pairwise.Comparison, len(votes))
	for i, v := range votes {
		out[i] = v.Comparison()
	}
	return out
}

// PollRecord is the complete stored poll: metadata, options and every vote.
type PollRecord struct {
	Poll
	Options         []Option          `json:"options"`
	SingleVoteUsers []string          `json:"singleVoteUsers,omitempty"`
	RankedVotes     []tabulate.Ballot `json:"rankedVotes,omitempty"`
	PluralityVotes  []PluralityVote   `json:"pluralityVotes,omitempty"`
	PairwiseVotes   []PairwiseVote    `json:"pairwiseVotes,omitempty"`
	PairwiseStats   *pairwise.Stats   `json:"pairwiseStats,omitempty"`
	StatsVersion    int               `json:"-"`
}

// OptionIDs returns option IDs in display order.
func (r *PollRecord) OptionIDs() []string {
	ids := make([]string, len(r.Options))
	for i, o := range r.Options {
		ids[i] = o.ID
	}
	return ids
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
