package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/erikrandall/csla/internal/trace"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRun writes a passing run summary and returns it.
func createTestRun(t *testing.T, s *Store, id string) Run {
	t.Helper()
	run := Run{ID: id, Scenario: "scenario-" + id, Pass: true, Filter: "name=a", SourceLen: 3, Digest: "digest-" + id}
	if err := s.WriteRun(context.Background(), run); err != nil {
		t.Fatalf("WriteRun() failed: %v", err)
	}
	return run
}

// createTestEvent creates a view item_added event at seq.
func createTestEvent(runID string, seq int64, index int) trace.Event {
	return trace.Event{
		Seq:      seq,
		RunID:    runID,
		Origin:   trace.OriginView,
		Kind:     "item_added",
		Index:    index,
		OldIndex: index,
		Len:      index + 1,
	}
}
