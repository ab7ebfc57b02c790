package main

import "testing"

func TestSanitizeSchema(t *testing.T) {
	for _, valid := range []string{"pigmea_report", "Report2", "_private"} {
		got, err := sanitizeSchema(valid)
		if err != nil {
			t.Fatalf("expected %q to be accepted: %v", valid, err)
		}
		if got != valid {
			t.Fatalf("expected %q back, got %q", valid, got)
		}
	}

	for _, invalid := range []string{"", "  ", "1schema", "bad-name", "x; DROP TABLE"} {
		if _, err := sanitizeSchema(invalid); err == nil {
			t.Fatalf("expected %q to be rejected", invalid)
		}
	}
}

func TestNullString(t *testing.T) {
	if value := nullString(""); value.Valid {
		t.Fatal("expected invalid for empty string")
	}
	if value := nullString("   "); value.Valid {
		t.Fatal("expected invalid for blank string")
	}
	value := nullString("turno-manana")
	if !value.Valid || value.String != "turno-manana" {
		t.Fatalf("unexpected value: %+v", value)
	}
}

func TestDBURLFromEnv(t *testing.T) {
	t.Setenv("PIGMEA_REPORT_DB_URL", "")
	t.Setenv("DATABASE_URL", "postgres://fallback")
	if got := dbURLFromEnv(); got != "postgres://fallback" {
		t.Fatalf("expected fallback URL, got %q", got)
	}

	t.Setenv("PIGMEA_REPORT_DB_URL", " postgres://primary ")
	if got := dbURLFromEnv(); got != "postgres://primary" {
		t.Fatalf("expected primary URL, got %q", got)
	}
}
