package store

import (
	"context"
	"fmt"

	"github.com/erikrandall/csla/internal/record"
	"github.com/erikrandall/csla/internal/trace"
)

// Run is the summary row of one scenario execution.
type Run struct {
	ID        string `json:"run_id"`
	Scenario  string `json:"scenario"`
	Pass      bool   `json:"pass"`
	Filter    string `json:"filter,omitempty"` // active filter at the end of the run
	SourceLen int    `json:"source_len"`
	Digest    string `json:"digest,omitempty"` // trace.Digest of the recorded trace
}

// ViewRow is one row of the final view snapshot.
type ViewRow struct {
	Position int           `json:"position"`
	Base     int           `json:"base"`
	Item     record.Object `json:"item"`
}

// WriteRun inserts a run summary.
// Uses ON CONFLICT(run_id) DO NOTHING; rewriting a run id is a no-op.
func (s *Store) WriteRun(ctx context.Context, run Run) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (run_id, scenario, pass, filter, source_len, digest)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id) DO NOTHING
	`, run.ID, run.Scenario, boolToInt(run.Pass), run.Filter, run.SourceLen, run.Digest)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	return nil
}

// WriteEvents appends recorded events to their runs in one transaction.
// Events already stored under the same (run_id, seq) are skipped.
//
// Note: each event's run must already exist (foreign key constraint).
func (s *Store) WriteEvents(ctx context.Context, events []trace.Event) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write events: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO events (run_id, seq, origin, kind, idx, old_idx, field, len)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, seq) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("write events: prepare: %w", err)
	}
	defer stmt.Close()

	for _, e := range events {
		if _, err := stmt.ExecContext(ctx,
			e.RunID, e.Seq, e.Origin, e.Kind, e.Index, e.OldIndex, e.Field, e.Len,
		); err != nil {
			return fmt.Errorf("write events: seq %d: %w", e.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write events: commit: %w", err)
	}
	return nil
}

// WriteView replaces the stored view snapshot of runID.
// Items are stored as canonical JSON.
func (s *Store) WriteView(ctx context.Context, runID string, rows []ViewRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write view: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM view_rows WHERE run_id = ?`, runID); err != nil {
		return fmt.Errorf("write view: clear: %w", err)
	}

	for _, r := range rows {
		item, err := marshalItem(r.Item)
		if err != nil {
			return fmt.Errorf("write view: row %d: %w", r.Position, err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO view_rows (run_id, position, base, item)
			VALUES (?, ?, ?, ?)
		`, runID, r.Position, r.Base, item); err != nil {
			return fmt.Errorf("write view: row %d: %w", r.Position, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write view: commit: %w", err)
	}
	return nil
}

// marshalItem converts a record to canonical JSON TEXT for storage.
func marshalItem(obj record.Object) (string, error) {
	if obj == nil {
		return "{}", nil
	}
	data, err := record.MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("marshal item: %w", err)
	}
	return string(data), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
