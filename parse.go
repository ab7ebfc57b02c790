package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// Recognized columns of the Primavera maintenance-order export. The export
// labels its date columns with a timezone but the values are treated as naive
// local calendar time; no conversion is ever applied.
const (
	colStatus    = "Estado"
	colCreatedAt = "Fecha (Europe/Madrid +01:00)"
	colSLAEndAt  = "Fecha de Fin de SLA (Europe/Madrid +01:00)"
	colRemarks   = "Observaciones"
	colOrderID   = "Orden de Trabajo"
)

const missingOrderID = "??"

// StructuralError reports input that is not row/column shaped at all. It is
// fatal to the ingestion call; field-level problems never raise it and
// degrade to absent values instead.
type StructuralError struct {
	Message string
	Cause   error
}

func (e *StructuralError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("structural parse error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("structural parse error: %s", e.Message)
}

func (e *StructuralError) Unwrap() error { return e.Cause }

// ParsedRecord is one normalized maintenance-order row. Ephemeral: it only
// feeds the aggregation and is never persisted.
type ParsedRecord struct {
	Status       string
	CreatedAt    time.Time
	HasCreatedAt bool
	SLAEndAt     time.Time
	HasSLAEndAt  bool
	RemarksLower string
	OrderID      string
}

// parseLocalDateTime parses "DD/MM/YYYY" or "DD/MM/YYYY HH:MM:SS". The
// seconds field is optional and defaults to 0. Returns false for empty or
// malformed input; it never fails the row.
func parseLocalDateTime(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}

	datePart := value
	timePart := ""
	if idx := strings.IndexByte(value, ' '); idx >= 0 {
		datePart = value[:idx]
		timePart = value[idx+1:]
	}

	dateFields := strings.Split(datePart, "/")
	if len(dateFields) != 3 {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(dateFields[0])
	if err != nil {
		return time.Time{}, false
	}
	month, err := strconv.Atoi(dateFields[1])
	if err != nil {
		return time.Time{}, false
	}
	year, err := strconv.Atoi(dateFields[2])
	if err != nil {
		return time.Time{}, false
	}

	hour, minute, second := 0, 0, 0
	if timePart != "" {
		timeFields := strings.Split(timePart, ":")
		if len(timeFields) < 2 {
			return time.Time{}, false
		}
		if hour, err = strconv.Atoi(timeFields[0]); err != nil {
			return time.Time{}, false
		}
		if minute, err = strconv.Atoi(timeFields[1]); err != nil {
			return time.Time{}, false
		}
		if len(timeFields) > 2 {
			if parsed, err := strconv.Atoi(timeFields[2]); err == nil {
				second = parsed
			}
		}
	}

	return time.Date(year, time.Month(month), day, hour, minute, second, 0, time.Local), true
}

// normalizeRow converts one raw CSV row into a ParsedRecord. Total: missing
// columns default to empty strings and malformed dates become absent.
func normalizeRow(raw map[string]string) ParsedRecord {
	record := ParsedRecord{
		Status:       strings.ToLower(strings.TrimSpace(raw[colStatus])),
		RemarksLower: strings.ToLower(raw[colRemarks]),
		OrderID:      raw[colOrderID],
	}
	if record.OrderID == "" {
		record.OrderID = missingOrderID
	}
	record.CreatedAt, record.HasCreatedAt = parseLocalDateTime(raw[colCreatedAt])
	record.SLAEndAt, record.HasSLAEndAt = parseLocalDateTime(raw[colSLAEndAt])
	return record
}

// readRecords parses the semicolon-delimited export into normalized rows.
// Unknown columns are ignored; recognized columns missing from the header
// default to empty per row.
func readRecords(r io.Reader) ([]ParsedRecord, error) {
	reader := csv.NewReader(r)
	reader.Comma = ';'
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, &StructuralError{Message: "unable to read header", Cause: err}
	}

	columns := make(map[string]int, len(headers))
	for idx, header := range headers {
		name := strings.TrimSpace(header)
		if _, exists := columns[name]; !exists {
			columns[name] = idx
		}
	}

	var rows []ParsedRecord
	for {
		record, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, &StructuralError{Message: "unable to read rows", Cause: err}
		}
		if len(record) == 0 {
			continue
		}
		raw := make(map[string]string, len(columns))
		for name, idx := range columns {
			raw[name] = getValue(record, idx)
		}
		rows = append(rows, normalizeRow(raw))
	}
	return rows, nil
}

func getValue(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}
