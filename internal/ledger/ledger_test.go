package ledger

import (
	"testing"
	"time"
)

func TestMergeDedupsAndPurges(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	existing := []Entry{
		{OrderID: "o1", WarehouseID: "w1", DockID: "d1", Start: now.Add(-Retention - 10*time.Hour), End: now.Add(-Retention - 9*time.Hour)}, // stale, past retention
		{OrderID: "o2", WarehouseID: "w1", DockID: "d1", Start: now, End: now.Add(time.Hour)},
	}
	fresh := []Entry{
		{OrderID: "o2", WarehouseID: "w1", DockID: "d1", Start: now, End: now.Add(time.Hour)}, // duplicate of existing
		{OrderID: "o3", WarehouseID: "w1", DockID: "d2", Start: now, End: now.Add(time.Hour)},
	}

	merged := Merge(existing, fresh, ModeQueue, now)

	if len(merged) != 2 {
		t.Fatalf("expected 2 entries after dedup+purge, got %d: %+v", len(merged), merged)
	}
	ids := map[string]bool{}
	for _, e := range merged {
		ids[e.OrderID] = true
	}
	if !ids["o2"] || !ids["o3"] {
		t.Fatalf("expected o2 and o3 to survive, got %+v", merged)
	}
}

func TestMergeDropModeKeepsDistinctWindowsForSameOrder(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	fresh := []Entry{
		{OrderID: "o1", WarehouseID: "w1", DockID: "d1", Start: now, End: now.Add(time.Hour)},
		{OrderID: "o1", WarehouseID: "w1", DockID: "d1", Start: now.Add(2 * time.Hour), End: now.Add(3 * time.Hour)},
	}
	merged := Merge(nil, fresh, ModeDrop, now)
	if len(merged) != 2 {
		t.Fatalf("expected both drop-pull windows to survive, got %d", len(merged))
	}
}

func TestLoadAndPrepareExcludesPastAndReplannedOrders(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	entries := []Entry{
		{OrderID: "expired", WarehouseID: "w1", DockID: "d1", Start: now.Add(-time.Hour), End: now.Add(-time.Minute)},
		{OrderID: "replanned", WarehouseID: "w1", DockID: "d1", Start: now, End: now.Add(time.Hour)},
		{OrderID: "keep", WarehouseID: "w1", DockID: "d1", Start: now, End: now.Add(time.Hour)},
	}

	out := LoadAndPrepare(entries, map[string]bool{"replanned": true}, now)

	if len(out) != 1 || out[0].OrderID != "keep" {
		t.Fatalf("expected only 'keep' to survive, got %+v", out)
	}
}

func TestComputeBusyClampsNegativeStarts(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	entries := []Entry{
		{OrderID: "o1", WarehouseID: "w1", DockID: "d1", Start: now.Add(-30 * time.Minute), End: now.Add(30 * time.Minute)},
	}

	totalBusy, windows := ComputeBusy(entries, now)

	key := DockKey{WarehouseID: "w1", DockID: "d1"}
	if totalBusy[key] != 30 {
		t.Fatalf("expected 30 minutes busy (clamped start), got %v", totalBusy[key])
	}
	if len(windows[key]) != 1 || windows[key][0].Start != 0 {
		t.Fatalf("expected window to start at 0, got %+v", windows[key])
	}
}

func TestStoreSaveLoadRoundTrip(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewStore(t.TempDir() + "/schedule.csv")

	entries, err := store.Load()
	if err != nil {
		t.Fatalf("unexpected error loading missing file: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected a missing file to read as an empty ledger, got %+v", entries)
	}

	want := []Entry{
		{OrderID: "o1", WarehouseID: "w1", DockID: "d1", Start: now, End: now.Add(time.Hour)},
		{OrderID: "o2", WarehouseID: "w2", DockID: "d2", Start: now.Add(time.Hour), End: now.Add(2 * time.Hour)},
	}
	if err := store.Save(want); err != nil {
		t.Fatalf("unexpected error saving: %v", err)
	}
	got, err := store.Load()
	if err != nil {
		t.Fatalf("unexpected error loading: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d entries back, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entry %d mismatch: got %+v want %+v", i, got[i], want[i])
		}
	}
}

func TestStoreWithLockSkipsWriteOnNil(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewStore(t.TempDir() + "/schedule.csv")
	seed := []Entry{{OrderID: "o1", WarehouseID: "w1", DockID: "d1", Start: now, End: now.Add(time.Hour)}}
	if err := store.Save(seed); err != nil {
		t.Fatalf("seeding: %v", err)
	}

	err := store.WithLock(func(existing []Entry) ([]Entry, error) {
		if len(existing) != 1 {
			t.Fatalf("expected the seeded entry inside the lock, got %+v", existing)
		}
		return nil, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("unexpected error loading: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected the file to be left untouched on a nil commit, got %+v", got)
	}
}
