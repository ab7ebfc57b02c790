package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

const historyKey = "pigmea_ot_history_v2"

// HistoryStore persists snapshot collections as JSON files, one file per
// collection key.
type HistoryStore struct {
	baseDir string
}

func NewHistoryStore(baseDir string) (*HistoryStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("unable to create history dir: %w", err)
	}
	return &HistoryStore{baseDir: baseDir}, nil
}

// List returns the stored collection, newest first. A missing file is an
// empty collection.
func (s *HistoryStore) List(key string) ([]Snapshot, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return []Snapshot{}, nil
		}
		return nil, fmt.Errorf("unable to read history %s: %w", key, err)
	}
	var items []Snapshot
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("history %s is corrupted: %w", key, err)
	}
	sortByDateDesc(items)
	return items, nil
}

// Append prepends the snapshot and drops any older entry for the same date,
// so the last report of a day wins. Returns the full updated collection.
func (s *HistoryStore) Append(key string, item Snapshot) ([]Snapshot, error) {
	current, err := s.List(key)
	if err != nil {
		return nil, err
	}
	updated := make([]Snapshot, 0, len(current)+1)
	updated = append(updated, item)
	for _, existing := range current {
		if existing.Date == item.Date {
			continue
		}
		updated = append(updated, existing)
	}
	if err := s.write(key, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// RemoveByID drops one entry and returns the remaining collection.
func (s *HistoryStore) RemoveByID(key string, id string) ([]Snapshot, error) {
	current, err := s.List(key)
	if err != nil {
		return nil, err
	}
	updated := make([]Snapshot, 0, len(current))
	for _, existing := range current {
		if existing.ID == id {
			continue
		}
		updated = append(updated, existing)
	}
	if err := s.write(key, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// Replace swaps the whole collection; used by backup restore.
func (s *HistoryStore) Replace(key string, items []Snapshot) error {
	sortByDateDesc(items)
	return s.write(key, items)
}

// Clear removes the collection file.
func (s *HistoryStore) Clear(key string) error {
	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("unable to clear history %s: %w", key, err)
	}
	return nil
}

func (s *HistoryStore) write(key string, items []Snapshot) error {
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("unable to encode history %s: %w", key, err)
	}
	return os.WriteFile(s.path(key), data, 0644)
}

func (s *HistoryStore) path(key string) string {
	safe := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '?', '*', '<', '>', '|':
			return '_'
		}
		return r
	}, key)
	return filepath.Join(s.baseDir, safe+".json")
}

// Dates are YYYY-MM-DD, so lexicographic order is chronological.
func sortByDateDesc(items []Snapshot) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Date > items[j].Date
	})
}

// exportBackup writes the collection as an indented JSON array.
func exportBackup(items []Snapshot, path string) error {
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// importBackup reads a JSON backup, rejecting anything that is not an array
// of snapshots.
func importBackup(path string) ([]Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var items []Snapshot
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("not a valid backup file: %w", err)
	}
	return items, nil
}

// writeHistoryCSV flattens the collection into one row per snapshot, with one
// column per counter and a space-joined missing-ids column.
func writeHistoryCSV(items []Snapshot, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{
		"date",
		"pending",
		"overdue",
		"waiting",
		"in_progress",
		"completed",
		"new_intake",
		"review_missing_ids",
	}); err != nil {
		return err
	}

	for _, item := range items {
		record := []string{
			item.Date,
			strconv.Itoa(item.Pending),
			strconv.Itoa(item.Overdue),
			strconv.Itoa(item.Waiting),
			strconv.Itoa(item.InProgress),
			strconv.Itoa(item.Completed),
			strconv.Itoa(item.NewIntake),
			strings.Join(item.ReviewMissingIDs, " "),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
