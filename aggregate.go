package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	overdueBusinessDays = 3
	reviewWindowDays    = 15
	defaultReviewer     = "miguel"
)

// Identity hooks, replaceable in tests. Everything else in a Snapshot is a
// pure function of (rows, today, reviewer).
var (
	newSnapshotID = func() string { return uuid.NewString() }
	nowUnixMilli  = func() int64 { return time.Now().UnixMilli() }
)

// Snapshot is one computed daily aggregate of maintenance-order KPIs.
// Immutable once built; it serializes directly to the backup and export
// formats and to the Postgres tables.
type Snapshot struct {
	ID                   string   `json:"id"`
	Timestamp            int64    `json:"timestamp"`
	Date                 string   `json:"date"`
	Pending              int      `json:"pending"`
	Overdue              int      `json:"overdue"`
	Waiting              int      `json:"waiting"`
	InProgress           int      `json:"in_progress"`
	Completed            int      `json:"completed"`
	NewIntake            int      `json:"new_intake"`
	OverdueRangeLabel    string   `json:"overdue_range_label"`
	ReviewCompliant      bool     `json:"review_compliant"`
	ReviewMissingIDs     []string `json:"review_missing_ids"`
	PreviousWorkdayLabel string   `json:"previous_workday_label"`
}

// buildSnapshot folds the parsed rows into one report snapshot for the given
// reference day. Categories are deliberately not mutually exclusive: a row
// counts toward every rule it matches, which is how the plant reads the
// export.
func buildSnapshot(rows []ParsedRecord, today time.Time, reviewer string) Snapshot {
	reviewer = strings.ToLower(strings.TrimSpace(reviewer))
	if reviewer == "" {
		reviewer = defaultReviewer
	}

	prevWorkday := previousWorkday(today)
	windowStart := dateOnly(today).AddDate(0, 0, -reviewWindowDays)
	windowEnd := dateOnly(today)

	snapshot := Snapshot{
		ID:                   newSnapshotID(),
		Timestamp:            nowUnixMilli(),
		Date:                 dateOnly(today).Format("2006-01-02"),
		ReviewMissingIDs:     []string{},
		PreviousWorkdayLabel: "ayer",
	}
	if prevWorkday.Weekday() == time.Friday {
		snapshot.PreviousWorkdayLabel = "viernes"
	}

	var overdueDates []time.Time
	for _, row := range rows {
		if row.HasCreatedAt && sameDay(row.CreatedAt, today) {
			snapshot.NewIntake++
		}

		if row.Status == "nuevo" {
			snapshot.Pending++
			if row.HasCreatedAt && businessDaysBetween(row.CreatedAt, today) >= overdueBusinessDays {
				snapshot.Overdue++
				overdueDates = append(overdueDates, row.CreatedAt)
			}
		}

		if strings.Contains(row.Status, "espera") {
			snapshot.Waiting++
		}
		if strings.Contains(row.Status, "curso") {
			snapshot.InProgress++
		}

		if row.Status == "terminado" || row.Status == "cerrado" {
			if row.HasSLAEndAt && sameDay(row.SLAEndAt, prevWorkday) {
				snapshot.Completed++
			}

			refDate, hasRef := row.SLAEndAt, row.HasSLAEndAt
			if !hasRef {
				refDate, hasRef = row.CreatedAt, row.HasCreatedAt
			}
			if hasRef {
				ref := dateOnly(refDate)
				if !ref.Before(windowStart) && !ref.After(windowEnd) && !strings.Contains(row.RemarksLower, reviewer) {
					snapshot.ReviewMissingIDs = append(snapshot.ReviewMissingIDs, row.OrderID)
				}
			}
		}
	}

	if len(overdueDates) > 0 {
		sort.Slice(overdueDates, func(i, j int) bool {
			return overdueDates[i].Before(overdueDates[j])
		})
		oldest := overdueDates[0]
		newest := overdueDates[len(overdueDates)-1]
		if sameDay(oldest, newest) {
			snapshot.OverdueRangeLabel = fmt.Sprintf("(%s)", formatDateShort(oldest))
		} else {
			snapshot.OverdueRangeLabel = fmt.Sprintf("(%s - %s)", formatDateShort(oldest), formatDateShort(newest))
		}
	}

	snapshot.ReviewCompliant = len(snapshot.ReviewMissingIDs) == 0
	return snapshot
}
