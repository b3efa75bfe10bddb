package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/nguyentantai21042004/meeting-notes/internal/summarizer"
)

// Start records a running pipeline pass and returns its id.
func (s *implStore) Start(ctx context.Context, audioPath string) (string, error) {
	id := uuid.NewString()
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO runs (id, audio_path, status, started_at) VALUES (?, ?, ?, ?)`,
		id, audioPath, StatusRunning, s.now().UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

// Complete marks a run finished and stores the summary it produced.
func (s *implStore) Complete(ctx context.Context, id, summaryPath string, summary *summarizer.Summary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}

	return s.finish(ctx, id,
		`UPDATE runs SET status = ?, summary_path = ?, summary_json = ?, finished_at = ? WHERE id = ?`,
		StatusCompleted, summaryPath, string(data), s.now().UTC(), id,
	)
}

// Fail marks a run failed with the error that stopped it.
func (s *implStore) Fail(ctx context.Context, id string, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return s.finish(ctx, id,
		`UPDATE runs SET status = ?, error = ?, finished_at = ? WHERE id = ?`,
		StatusFailed, msg, s.now().UTC(), id,
	)
}

func (s *implStore) finish(ctx context.Context, id, query string, args ...interface{}) error {
	res, err := s.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

const selectRun = `SELECT id, audio_path, summary_path, status, error, summary_json, started_at, finished_at FROM runs`

// Get loads a single run.
func (s *implStore) Get(ctx context.Context, id string) (*Run, error) {
	row := s.conn.QueryRowContext(ctx, selectRun+` WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return run, err
}

// Recent returns up to limit runs, newest first.
func (s *implStore) Recent(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.conn.QueryContext(ctx, selectRun+` ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(sc scanner) (*Run, error) {
	var (
		run         Run
		summaryJSON string
		finishedAt  sql.NullTime
	)

	err := sc.Scan(
		&run.ID,
		&run.AudioPath,
		&run.SummaryPath,
		&run.Status,
		&run.Error,
		&summaryJSON,
		&run.StartedAt,
		&finishedAt,
	)
	if err != nil {
		return nil, err
	}

	if summaryJSON != "" {
		run.Summary = &summarizer.Summary{}
		if err := json.Unmarshal([]byte(summaryJSON), run.Summary); err != nil {
			return nil, fmt.Errorf("unmarshal summary: %w", err)
		}
	}
	if finishedAt.Valid {
		run.FinishedAt = &finishedAt.Time
	}

	return &run, nil
}
