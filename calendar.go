package main

import (
	"fmt"
	"time"
)

var shortMonths = [...]string{"ene", "feb", "mar", "abr", "may", "jun", "jul", "ago", "sep", "oct", "nov", "dic"}

func dateOnly(value time.Time) time.Time {
	if value.IsZero() {
		return value
	}
	return time.Date(value.Year(), value.Month(), value.Day(), 0, 0, 0, 0, value.Location())
}

func sameDay(a time.Time, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// previousWorkday returns the last business day before the given date:
// Monday and Sunday both roll back to the previous Friday.
func previousWorkday(value time.Time) time.Time {
	switch value.Weekday() {
	case time.Monday:
		return value.AddDate(0, 0, -3)
	case time.Sunday:
		return value.AddDate(0, 0, -2)
	default:
		return value.AddDate(0, 0, -1)
	}
}

// businessDaysBetween counts weekdays from `from` up to but excluding `to`,
// at day granularity. Returns 0 when `from` is not before `to`. Date spans in
// this domain are a few weeks at most, so the day-by-day scan is fine.
func businessDaysBetween(from time.Time, to time.Time) int {
	current := dateOnly(from)
	end := dateOnly(to)
	if !current.Before(end) {
		return 0
	}
	count := 0
	for current.Before(end) {
		if weekday := current.Weekday(); weekday != time.Saturday && weekday != time.Sunday {
			count++
		}
		current = current.AddDate(0, 0, 1)
	}
	return count
}

// formatDateShort renders the "2 ene" style labels used in the overdue range.
func formatDateShort(value time.Time) string {
	return fmt.Sprintf("%d %s", value.Day(), shortMonths[int(value.Month())-1])
}
