package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordAndRecent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		err := store.Record(ctx, Entry{
			RequestID:    "req-" + string(rune('a'+i)),
			SourceFormat: "pytorch",
			Backend:      "pytorch",
			Filename:     "model.pt",
			Opset:        13,
			Outcome:      "success",
			InputBytes:   100,
			OutputBytes:  200,
			Duration:     50 * time.Millisecond,
			CreatedAt:    base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	entries, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("entries = %d", len(entries))
	}
	// Newest first.
	if entries[0].RequestID != "req-c" {
		t.Fatalf("first entry = %+v", entries[0])
	}
	if entries[0].Duration != 50*time.Millisecond {
		t.Fatalf("duration = %v", entries[0].Duration)
	}
	if !entries[0].CreatedAt.Equal(base.Add(2 * time.Minute)) {
		t.Fatalf("created at = %v", entries[0].CreatedAt)
	}
}

func TestRecent_Limit(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := store.Record(ctx, Entry{
			RequestID: "r", SourceFormat: "tf", Backend: "tensorflow",
			Opset: 13, Outcome: "failed",
		}); err != nil {
			t.Fatal(err)
		}
	}
	entries, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d", len(entries))
	}
}

func TestNilStore(t *testing.T) {
	var store *Store
	if err := store.Record(context.Background(), Entry{}); err != nil {
		t.Fatalf("nil record: %v", err)
	}
	entries, err := store.Recent(context.Background(), 10)
	if err != nil || entries != nil {
		t.Fatalf("nil recent = %v, %v", entries, err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("nil close: %v", err)
	}
}
