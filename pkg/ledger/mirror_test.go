package ledger

import (
	"context"
	"testing"
	"time"

	"taskforge-hq/taskforge/pkg/cost"
)

func TestMirror_Flush(t *testing.T) {
	store := newTestStore(t)
	tracker := cost.NewTracker(100.0, 1000.0)
	mirror := NewMirror(tracker, store, time.Minute)
	ctx := context.Background()

	tracker.RecordUsage("gpt-4o", 1_000_000, 500_000, 3.0, 15.0)
	tracker.RecordUsageWithTask("gpt-4o-mini", 1000, 500, 0.15, 0.6, "task-1")

	if err := mirror.Flush(ctx); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("Expected 2 records, got %d", count)
	}

	records, err := store.Records(ctx, Query{TaskID: "task-1"})
	if err != nil {
		t.Fatalf("Records failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 task record, got %d", len(records))
	}
	if records[0].ID == "" {
		t.Error("Expected a generated record id")
	}
	if records[0].Usage.Model != "gpt-4o-mini" {
		t.Errorf("Expected model gpt-4o-mini, got %s", records[0].Usage.Model)
	}
}

func TestMirror_FlushIsIncremental(t *testing.T) {
	store := newTestStore(t)
	tracker := cost.NewTracker(100.0, 1000.0)
	mirror := NewMirror(tracker, store, time.Minute)
	ctx := context.Background()

	tracker.RecordUsage("gpt-4o", 1000, 500, 3.0, 15.0)

	if err := mirror.Flush(ctx); err != nil {
		t.Fatalf("First flush failed: %v", err)
	}
	if err := mirror.Flush(ctx); err != nil {
		t.Fatalf("Second flush failed: %v", err)
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("Expected no duplicate rows, got %d", count)
	}

	tracker.RecordUsage("gpt-4o", 1000, 500, 3.0, 15.0)
	if err := mirror.Flush(ctx); err != nil {
		t.Fatalf("Third flush failed: %v", err)
	}

	count, err = store.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("Expected 2 rows after new usage, got %d", count)
	}
}

func TestMirror_StopFlushesPending(t *testing.T) {
	store := newTestStore(t)
	tracker := cost.NewTracker(100.0, 1000.0)

	// Long interval so the loop never fires on its own.
	mirror := NewMirror(tracker, store, time.Hour)
	mirror.Start(context.Background())

	tracker.RecordUsage("gpt-4o", 1000, 500, 3.0, 15.0)
	mirror.Stop()

	count, err := store.Count(context.Background())
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("Expected pending record to be flushed on stop, got %d", count)
	}
}

func TestMirror_StartIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	tracker := cost.NewTracker(100.0, 1000.0)
	mirror := NewMirror(tracker, store, time.Hour)

	ctx := context.Background()
	mirror.Start(ctx)
	mirror.Start(ctx)
	mirror.Stop()
	mirror.Stop()
}
