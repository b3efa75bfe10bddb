package summarizer

import (
	"context"
	"errors"
)

var (
	// ErrEmptyTranscript is returned before any model call when there is nothing to summarize.
	ErrEmptyTranscript = errors.New("transcript cannot be empty")
	// ErrInvalidResponse wraps model output that does not decode into a Summary.
	ErrInvalidResponse = errors.New("invalid summary response")
)

// Summary is the structured meeting summary produced by the language model.
type Summary struct {
	OverallSummary  string   `json:"overall_summary"`
	KeyDecisions    []string `json:"key_decisions"`
	SummaryByTopics string   `json:"summary_by_topics"`
	ActionItems     []string `json:"action_items"`
	OpenPoints      []string `json:"open_points"`
}

// Summarizer turns a transcript into a Summary with a single model call.
type Summarizer interface {
	Summarize(ctx context.Context, transcript string) (*Summary, error)
}

// generator is one model backend: it returns the raw JSON text of a summary.
type generator interface {
	name() string
	generate(ctx context.Context, transcript string) (string, error)
}
