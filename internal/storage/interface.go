package storage

import (
	"context"
	"errors"
	"time"

	"github.com/nguyentantai21042004/meeting-notes/internal/summarizer"
)

// ErrNotFound is returned when a run id is unknown.
var ErrNotFound = errors.New("not found")

// Run statuses.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Run is one pass of the pipeline over a single audio file.
type Run struct {
	ID          string
	AudioPath   string
	SummaryPath string
	Status      string
	Error       string
	Summary     *summarizer.Summary
	StartedAt   time.Time
	FinishedAt  *time.Time
}

// Store keeps the history of pipeline runs.
type Store interface {
	Start(ctx context.Context, audioPath string) (string, error)
	Complete(ctx context.Context, id, summaryPath string, summary *summarizer.Summary) error
	Fail(ctx context.Context, id string, cause error) error
	Get(ctx context.Context, id string) (*Run, error)
	Recent(ctx context.Context, limit int) ([]Run, error)
	Close() error
}
