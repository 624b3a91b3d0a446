package store

import (
	"context"
	"testing"

	"github.com/erikrandall/csla/internal/record"
	"github.com/erikrandall/csla/internal/trace"
)

func TestWriteRun_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	run := createTestRun(t, s, "run-1")
	changed := run
	changed.Pass = false
	if err := s.WriteRun(ctx, changed); err != nil {
		t.Fatalf("second WriteRun() failed: %v", err)
	}

	got, err := s.ReadRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("ReadRun() failed: %v", err)
	}
	if got != run {
		t.Errorf("ReadRun() = %+v, want first write %+v", got, run)
	}
}

func TestWriteEvents_SkipsDuplicateSeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	createTestRun(t, s, "run-1")

	events := []trace.Event{createTestEvent("run-1", 1, 0), createTestEvent("run-1", 2, 1)}
	if err := s.WriteEvents(ctx, events); err != nil {
		t.Fatalf("WriteEvents() failed: %v", err)
	}

	dup := createTestEvent("run-1", 2, 9)
	if err := s.WriteEvents(ctx, []trace.Event{dup, createTestEvent("run-1", 3, 2)}); err != nil {
		t.Fatalf("WriteEvents() with duplicate failed: %v", err)
	}

	got, err := s.ReadEvents(ctx, "run-1")
	if err != nil {
		t.Fatalf("ReadEvents() failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len(events) = %d, want 3", len(got))
	}
	if got[1].Index != 1 {
		t.Errorf("seq 2 index = %d, want original 1", got[1].Index)
	}
}

func TestWriteEvents_UnknownRunRollsBack(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	createTestRun(t, s, "run-1")

	err := s.WriteEvents(ctx, []trace.Event{
		createTestEvent("run-1", 1, 0),
		createTestEvent("missing", 2, 0),
	})
	if err == nil {
		t.Fatal("expected error for event of unknown run")
	}

	got, err := s.ReadEvents(ctx, "run-1")
	if err != nil {
		t.Fatalf("ReadEvents() failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("len(events) = %d, want 0 after rollback", len(got))
	}
}

func TestWriteView_Replaces(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	createTestRun(t, s, "run-1")

	first := []ViewRow{
		{Position: 0, Base: 0, Item: record.Object{"name": record.String("ant")}},
		{Position: 1, Base: 2, Item: record.Object{"name": record.String("asp")}},
	}
	if err := s.WriteView(ctx, "run-1", first); err != nil {
		t.Fatalf("WriteView() failed: %v", err)
	}

	second := []ViewRow{{Position: 0, Base: 4, Item: record.Object{"name": record.String("bee"), "size": record.Int(2)}}}
	if err := s.WriteView(ctx, "run-1", second); err != nil {
		t.Fatalf("second WriteView() failed: %v", err)
	}

	got, err := s.ReadView(ctx, "run-1")
	if err != nil {
		t.Fatalf("ReadView() failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len(view) = %d, want 1", len(got))
	}
	if got[0].Base != 4 || !got[0].Item.Equal(second[0].Item) {
		t.Errorf("ReadView()[0] = %+v, want %+v", got[0], second[0])
	}
}

func TestWriteView_StoresCanonicalJSON(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	createTestRun(t, s, "run-1")

	rows := []ViewRow{
		{Position: 0, Base: 1, Item: record.Object{"z": record.Int(1), "a": record.String("x")}},
		{Position: 1, Base: 3},
	}
	if err := s.WriteView(ctx, "run-1", rows); err != nil {
		t.Fatalf("WriteView() failed: %v", err)
	}

	var items []string
	r, err := s.db.Query("SELECT item FROM view_rows WHERE run_id = ? ORDER BY position", "run-1")
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	defer r.Close()
	for r.Next() {
		var item string
		if err := r.Scan(&item); err != nil {
			t.Fatalf("scan failed: %v", err)
		}
		items = append(items, item)
	}

	want := []string{`{"a":"x","z":1}`, `{}`}
	if len(items) != len(want) {
		t.Fatalf("items = %v, want %v", items, want)
	}
	for i := range want {
		if items[i] != want[i] {
			t.Errorf("items[%d] = %s, want %s", i, items[i], want[i])
		}
	}
}
