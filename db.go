package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
)

type DBConfig struct {
	URL    string
	Schema string
	Tag    string
}

func dbURLFromEnv() string {
	if value := strings.TrimSpace(os.Getenv("PIGMEA_REPORT_DB_URL")); value != "" {
		return value
	}
	return strings.TrimSpace(os.Getenv("DATABASE_URL"))
}

func sanitizeSchema(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", errors.New("db schema is required")
	}
	valid := regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)
	if !valid.MatchString(value) {
		return "", fmt.Errorf("invalid schema name: %s", value)
	}
	return value, nil
}

// seedDatabase stores the snapshot only when the report tables are empty.
func seedDatabase(snapshot Snapshot, cfg DBConfig) (string, error) {
	schema, err := sanitizeSchema(cfg.Schema)
	if err != nil {
		return "", err
	}

	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return "", err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 12*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return "", err
	}
	if err := ensureSchema(ctx, db, schema); err != nil {
		return "", err
	}

	var count int
	if err := db.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s.snapshots`, schema)).Scan(&count); err != nil {
		return "", err
	}
	if count > 0 {
		fmt.Println("Snapshot history already present; skipping seed.")
		return "", nil
	}

	return storeSnapshotTx(ctx, db, snapshot, schema, cfg.Tag)
}

func storeSnapshotInDB(snapshot Snapshot, cfg DBConfig) (string, error) {
	schema, err := sanitizeSchema(cfg.Schema)
	if err != nil {
		return "", err
	}

	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return "", err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 12*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return "", err
	}
	if err := ensureSchema(ctx, db, schema); err != nil {
		return "", err
	}

	return storeSnapshotTx(ctx, db, snapshot, schema, cfg.Tag)
}

func storeSnapshotTx(ctx context.Context, db *sql.DB, snapshot Snapshot, schema string, tag string) (string, error) {
	snapshotID, err := uuid.Parse(snapshot.ID)
	if err != nil {
		snapshotID = uuid.New()
	}
	reportDate, err := time.Parse("2006-01-02", snapshot.Date)
	if err != nil {
		return "", fmt.Errorf("invalid snapshot date: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// Last write wins per report date; children go with the old row.
	_, err = tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s.snapshots WHERE report_date = $1`, schema), reportDate)
	if err != nil {
		_ = tx.Rollback()
		return "", err
	}

	_, err = tx.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %s.snapshots (
			id, report_date, pending, overdue, waiting, in_progress,
			completed, new_intake, overdue_range_label, review_compliant,
			previous_workday_label, generated_at_ms, run_tag
		) VALUES (
			$1,$2,$3,$4,$5,$6,
			$7,$8,$9,$10,
			$11,$12,$13
		)`, schema),
		snapshotID,
		reportDate,
		snapshot.Pending,
		snapshot.Overdue,
		snapshot.Waiting,
		snapshot.InProgress,
		snapshot.Completed,
		snapshot.NewIntake,
		snapshot.OverdueRangeLabel,
		snapshot.ReviewCompliant,
		snapshot.PreviousWorkdayLabel,
		snapshot.Timestamp,
		nullString(tag),
	)
	if err != nil {
		_ = tx.Rollback()
		return "", err
	}

	insertMissingSQL := fmt.Sprintf(`
		INSERT INTO %s.snapshot_missing_reviews (
			id, snapshot_id, order_id, sort_order
		) VALUES (
			$1,$2,$3,$4
		)`, schema)

	for position, orderID := range snapshot.ReviewMissingIDs {
		_, err = tx.ExecContext(ctx, insertMissingSQL,
			uuid.New(),
			snapshotID,
			orderID,
			position,
		)
		if err != nil {
			_ = tx.Rollback()
			return "", err
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return snapshotID.String(), nil
}

func ensureSchema(ctx context.Context, db *sql.DB, schema string) error {
	if _, err := db.ExecContext(ctx, fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS %s`, schema)); err != nil {
		return err
	}

	_, err := db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s.snapshots (
			id uuid PRIMARY KEY,
			report_date date NOT NULL UNIQUE,
			pending integer NOT NULL,
			overdue integer NOT NULL,
			waiting integer NOT NULL,
			in_progress integer NOT NULL,
			completed integer NOT NULL,
			new_intake integer NOT NULL,
			overdue_range_label text NOT NULL DEFAULT '',
			review_compliant boolean NOT NULL,
			previous_workday_label text NOT NULL,
			generated_at_ms bigint NOT NULL,
			run_tag text,
			created_at timestamptz NOT NULL DEFAULT now()
		)`, schema))
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s.snapshot_missing_reviews (
			id uuid PRIMARY KEY,
			snapshot_id uuid NOT NULL REFERENCES %s.snapshots(id) ON DELETE CASCADE,
			order_id text NOT NULL,
			sort_order integer NOT NULL,
			created_at timestamptz NOT NULL DEFAULT now()
		)`, schema, schema))
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_snapshot_missing_reviews_snapshot_idx ON %s.snapshot_missing_reviews (snapshot_id)`, schema, schema))
	return err
}

func nullString(value string) sql.NullString {
	if strings.TrimSpace(value) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}
