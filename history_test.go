package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testSnapshot(id string, date string) Snapshot {
	return Snapshot{
		ID:                   id,
		Timestamp:            1700000000000,
		Date:                 date,
		Pending:              3,
		Overdue:              1,
		Waiting:              2,
		InProgress:           1,
		Completed:            4,
		NewIntake:            2,
		OverdueRangeLabel:    "(1 ene)",
		ReviewCompliant:      false,
		ReviewMissingIDs:     []string{"OT1", "OT2"},
		PreviousWorkdayLabel: "ayer",
	}
}

func TestHistoryStoreListEmpty(t *testing.T) {
	store, err := NewHistoryStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	items, err := store.List(historyKey)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty collection, got %d items", len(items))
	}
}

func TestHistoryStoreAppendLastWriteWins(t *testing.T) {
	store, err := NewHistoryStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	if _, err := store.Append(historyKey, testSnapshot("a", "2024-01-09")); err != nil {
		t.Fatalf("append a: %v", err)
	}
	if _, err := store.Append(historyKey, testSnapshot("b", "2024-01-10")); err != nil {
		t.Fatalf("append b: %v", err)
	}
	// Same date as "b": replaces it.
	items, err := store.Append(historyKey, testSnapshot("c", "2024-01-10"))
	if err != nil {
		t.Fatalf("append c: %v", err)
	}

	if len(items) != 2 {
		t.Fatalf("expected 2 entries after same-date append, got %d", len(items))
	}
	if items[0].ID != "c" {
		t.Fatalf("expected newest entry first, got %q", items[0].ID)
	}
	if items[1].ID != "a" {
		t.Fatalf("expected older date kept, got %q", items[1].ID)
	}
}

func TestHistoryStoreRemoveByID(t *testing.T) {
	store, err := NewHistoryStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if _, err := store.Append(historyKey, testSnapshot("a", "2024-01-09")); err != nil {
		t.Fatalf("append: %v", err)
	}
	if _, err := store.Append(historyKey, testSnapshot("b", "2024-01-10")); err != nil {
		t.Fatalf("append: %v", err)
	}

	items, err := store.RemoveByID(historyKey, "a")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(items) != 1 || items[0].ID != "b" {
		t.Fatalf("expected only b left, got %+v", items)
	}

	// Removing an unknown id is a no-op.
	items, err = store.RemoveByID(historyKey, "zzz")
	if err != nil {
		t.Fatalf("remove unknown: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(items))
	}
}

func TestHistoryStoreClear(t *testing.T) {
	store, err := NewHistoryStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if _, err := store.Append(historyKey, testSnapshot("a", "2024-01-09")); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := store.Clear(historyKey); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if err := store.Clear(historyKey); err != nil {
		t.Fatalf("clear twice: %v", err)
	}
	items, err := store.List(historyKey)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty collection after clear, got %d", len(items))
	}
}

func TestBackupRoundTrip(t *testing.T) {
	dir := t.TempDir()
	original := []Snapshot{
		testSnapshot("a", "2024-01-10"),
		testSnapshot("b", "2024-01-09"),
	}

	path := filepath.Join(dir, "backup.json")
	if err := exportBackup(original, path); err != nil {
		t.Fatalf("export: %v", err)
	}

	restored, err := importBackup(path)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(restored) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(restored))
	}
	if restored[0].ID != "a" || restored[0].Date != "2024-01-10" {
		t.Fatalf("unexpected first snapshot: %+v", restored[0])
	}
	if restored[0].Pending != 3 || len(restored[0].ReviewMissingIDs) != 2 {
		t.Fatalf("fields lost in round trip: %+v", restored[0])
	}
}

func TestImportBackupRejectsJunk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`{"not":"an array"}`), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := importBackup(path); err == nil {
		t.Fatal("expected error for non-array backup")
	}
}

func TestWriteHistoryCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.csv")
	items := []Snapshot{testSnapshot("a", "2024-01-10")}

	if err := writeHistoryCSV(items, path); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header plus one row, got %d lines", len(lines))
	}
	if lines[0] != "date,pending,overdue,waiting,in_progress,completed,new_intake,review_missing_ids" {
		t.Fatalf("unexpected header: %q", lines[0])
	}
	if lines[1] != "2024-01-10,3,1,2,1,4,2,OT1 OT2" {
		t.Fatalf("unexpected row: %q", lines[1])
	}
}
