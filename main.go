package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	inputPath := flag.String("input", "", "Path to the semicolon-delimited maintenance-order export")
	asOf := flag.String("as-of", "", "Report date (YYYY-MM-DD); defaults to today")
	reviewer := flag.String("reviewer", defaultReviewer, "Reviewer name required in the remarks of closed orders")
	jsonOut := flag.String("json", "", "Optional path for the snapshot as JSON")
	save := flag.Bool("save", false, "Append the snapshot to the local history")
	historyDir := flag.String("history-dir", "data", "Directory holding the history collections")
	exportCSVPath := flag.String("export-csv", "", "Write the history as a flattened CSV")
	exportBackupPath := flag.String("export-backup", "", "Write the history as a JSON backup")
	importBackupPath := flag.String("import-backup", "", "Replace the history with a JSON backup")
	removeID := flag.String("remove", "", "Remove one history entry by snapshot id")
	clearHistory := flag.Bool("clear-history", false, "Delete the whole local history")
	dbEnabled := flag.Bool("db", false, "Store the snapshot in Postgres (requires PIGMEA_REPORT_DB_URL or DATABASE_URL)")
	dbSchema := flag.String("db-schema", "pigmea_report", "Postgres schema for report tables")
	dbTag := flag.String("db-tag", "", "Optional label for this run")
	initDB := flag.Bool("init-db", false, "Initialize database schema and seed data if empty")
	flag.Parse()

	store, err := NewHistoryStore(*historyDir)
	if err != nil {
		exitWithError(err)
	}

	historyOnly := *importBackupPath != "" || *removeID != "" || *clearHistory ||
		*exportCSVPath != "" || *exportBackupPath != ""
	if *inputPath == "" && !historyOnly {
		exitWithError(errors.New("--input is required"))
	}

	// History maintenance runs before the exports so they see the updated
	// collection.
	if *importBackupPath != "" {
		items, err := importBackup(*importBackupPath)
		if err != nil {
			exitWithError(err)
		}
		if err := store.Replace(historyKey, items); err != nil {
			exitWithError(err)
		}
		fmt.Printf("Backup restored: %d snapshots\n", len(items))
	}
	if *removeID != "" {
		items, err := store.RemoveByID(historyKey, *removeID)
		if err != nil {
			exitWithError(err)
		}
		fmt.Printf("History entry removed; %d snapshots kept\n", len(items))
	}
	if *clearHistory {
		if err := store.Clear(historyKey); err != nil {
			exitWithError(err)
		}
		fmt.Println("History cleared.")
	}

	if *inputPath != "" {
		today := time.Now()
		if *asOf != "" {
			parsed, err := time.ParseInLocation("2006-01-02", *asOf, time.Local)
			if err != nil {
				exitWithError(fmt.Errorf("invalid --as-of date: %w", err))
			}
			today = parsed
		}

		file, err := os.Open(*inputPath)
		if err != nil {
			exitWithError(err)
		}
		rows, err := readRecords(file)
		file.Close()
		if err != nil {
			exitWithError(err)
		}

		snapshot := buildSnapshot(rows, today, *reviewer)
		printSummary(snapshot, *inputPath, *reviewer)

		if *jsonOut != "" {
			if err := writeJSON(snapshot, *jsonOut); err != nil {
				exitWithError(err)
			}
			fmt.Printf("\nSnapshot JSON saved to %s\n", *jsonOut)
		}

		if *save {
			items, err := store.Append(historyKey, snapshot)
			if err != nil {
				exitWithError(err)
			}
			fmt.Printf("Snapshot saved to history (%d entries)\n", len(items))
		}

		if *dbEnabled || *initDB {
			dbURL := dbURLFromEnv()
			if dbURL == "" {
				exitWithError(errors.New("database URL missing; set PIGMEA_REPORT_DB_URL or DATABASE_URL"))
			}
			cfg := DBConfig{
				URL:    dbURL,
				Schema: *dbSchema,
				Tag:    *dbTag,
			}
			seeded := false
			if *initDB {
				runID, err := seedDatabase(snapshot, cfg)
				if err != nil {
					exitWithError(err)
				}
				if runID != "" {
					seeded = true
					fmt.Printf("\nSeeded Postgres with initial snapshot (id=%s)\n", runID)
				}
			}
			if *dbEnabled {
				if seeded {
					fmt.Println("Skipped duplicate insert; current snapshot already used for seed.")
				} else {
					runID, err := storeSnapshotInDB(snapshot, cfg)
					if err != nil {
						exitWithError(err)
					}
					fmt.Printf("\nStored snapshot in Postgres (id=%s)\n", runID)
				}
			}
		}
	}

	if *exportBackupPath != "" {
		items, err := store.List(historyKey)
		if err != nil {
			exitWithError(err)
		}
		if err := exportBackup(items, *exportBackupPath); err != nil {
			exitWithError(err)
		}
		fmt.Printf("Backup saved to %s\n", *exportBackupPath)
	}
	if *exportCSVPath != "" {
		items, err := store.List(historyKey)
		if err != nil {
			exitWithError(err)
		}
		if err := writeHistoryCSV(items, *exportCSVPath); err != nil {
			exitWithError(err)
		}
		fmt.Printf("History CSV saved to %s\n", *exportCSVPath)
	}
}

func writeJSON(snapshot Snapshot, path string) error {
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(1)
}
