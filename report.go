package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
)

// formatReport renders the fixed daily report pasted into the morning
// handover chat. Pure; byte-stable for identical snapshots.
func formatReport(snapshot Snapshot, reviewer string) string {
	name := displayName(reviewer)
	if name == "" {
		name = displayName(defaultReviewer)
	}

	reviewLine := fmt.Sprintf("✅ Revisiones por %s registradas.", name)
	if !snapshot.ReviewCompliant {
		ids := strings.Join(snapshot.ReviewMissingIDs, ", ")
		reviewLine = fmt.Sprintf("⚠️ Falta revisión de %s en OTs: %s", name, ids)
	}

	return fmt.Sprintf(`⏰ Preventivos pendientes: %d
⚠️ Preventivos atrasados: %d %s 🔔
🕒 OT en Espera: %d
➡️ OT en curso: %d
✅ OT terminadas %s: %d

✅ Descripciones correctas (Motivo de fallo, como se solucionó)
%s`,
		snapshot.Pending,
		snapshot.Overdue,
		snapshot.OverdueRangeLabel,
		snapshot.Waiting,
		snapshot.InProgress,
		snapshot.PreviousWorkdayLabel,
		snapshot.Completed,
		reviewLine,
	)
}

func printSummary(snapshot Snapshot, inputPath string, reviewer string) {
	fmt.Println("Pigmea Maintenance Daily Report")
	fmt.Println(strings.Repeat("=", 38))
	fmt.Printf("Input: %s\n", filepath.Base(inputPath))
	fmt.Printf("Date: %s\n", snapshot.Date)
	fmt.Printf("Pending: %d | Overdue: %d %s\n", snapshot.Pending, snapshot.Overdue, snapshot.OverdueRangeLabel)
	fmt.Printf("Waiting: %d | In progress: %d\n", snapshot.Waiting, snapshot.InProgress)
	fmt.Printf("Completed (%s): %d | New today: %d\n", snapshot.PreviousWorkdayLabel, snapshot.Completed, snapshot.NewIntake)
	if snapshot.ReviewCompliant {
		fmt.Println("Review check: OK")
	} else {
		fmt.Printf("Review check: %d order(s) missing review\n", len(snapshot.ReviewMissingIDs))
	}

	fmt.Println("\nReport")
	fmt.Println(strings.Repeat("-", 38))
	fmt.Println(formatReport(snapshot, reviewer))
}

func displayName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	runes := []rune(name)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
