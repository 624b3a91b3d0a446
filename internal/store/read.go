package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/erikrandall/csla/internal/trace"
)

// ErrRunNotFound is returned by ReadRun for an unknown run id.
var ErrRunNotFound = errors.New("run not found")

// ReadRun retrieves a run summary by id.
func (s *Store) ReadRun(ctx context.Context, runID string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT run_id, scenario, pass, filter, source_len, digest
		FROM runs
		WHERE run_id = ?
	`, runID)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return run, err
}

// ListRuns returns every stored run ordered by run_id.
// Returns an empty slice (not nil) when the store holds no runs.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, scenario, pass, filter, source_len, digest
		FROM runs
		ORDER BY run_id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadEvents returns the trace of runID ordered by seq.
// Returns an empty slice (not nil) if the run has no events.
func (s *Store) ReadEvents(ctx context.Context, runID string) ([]trace.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, seq, origin, kind, idx, old_idx, field, len
		FROM events
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	events := []trace.Event{}
	for rows.Next() {
		var e trace.Event
		if err := rows.Scan(
			&e.RunID, &e.Seq, &e.Origin, &e.Kind, &e.Index, &e.OldIndex, &e.Field, &e.Len,
		); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

// ReadView returns the stored view snapshot of runID ordered by position.
func (s *Store) ReadView(ctx context.Context, runID string) ([]ViewRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT position, base, item
		FROM view_rows
		WHERE run_id = ?
		ORDER BY position ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query view: %w", err)
	}
	defer rows.Close()

	view := []ViewRow{}
	for rows.Next() {
		var r ViewRow
		var item string
		if err := rows.Scan(&r.Position, &r.Base, &item); err != nil {
			return nil, fmt.Errorf("scan view row: %w", err)
		}
		if err := json.Unmarshal([]byte(item), &r.Item); err != nil {
			return nil, fmt.Errorf("unmarshal view row %d: %w", r.Position, err)
		}
		view = append(view, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate view: %w", err)
	}
	return view, nil
}

// GetLastSeq returns the highest stored seq of runID, or 0.
func (s *Store) GetLastSeq(ctx context.Context, runID string) (int64, error) {
	var seq int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(seq), 0) FROM events WHERE run_id = ?
	`, runID).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("get last seq: %w", err)
	}
	return seq, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var run Run
	var pass int
	if err := row.Scan(&run.ID, &run.Scenario, &pass, &run.Filter, &run.SourceLen, &run.Digest); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.Pass = pass == 1
	return run, nil
}
