package core

import (
	"strings"
	"testing"
)

func TestParseMetricsCSV(t *testing.T) {
	input := strings.Join([]string{
		"employee_email,period,score,utilization,tasks_completed,date",
		"ana@example.com,7,62.5,80,12,2025-06-30",
		"ben@example.com,7,91,75.5,20,2025-06-30",
	}, "\n")

	rows, issues, err := ParseMetricsCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(issues) != 0 {
		t.Fatalf("unexpected issues: %+v", issues)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].EmployeeEmail != "ana@example.com" || rows[0].Period != 7 || rows[0].Score != 62.5 {
		t.Fatalf("unexpected first row: %+v", rows[0])
	}
	if rows[1].TasksCompleted != 20 {
		t.Fatalf("unexpected tasks: %+v", rows[1])
	}
}

func TestParseMetricsCSVCollectsBadRows(t *testing.T) {
	input := strings.Join([]string{
		"employee_email,period,score,utilization,tasks_completed,date",
		",7,62,80,12,2025-06-30",
		"ana@example.com,7,150,80,12,2025-06-30",
		"ana@example.com,7,62,80,-1,2025-06-30",
		"ana@example.com,7,62,80,12,30/06/2025",
		"ben@example.com,8,70,70,10,2025-07-31",
	}, "\n")

	rows, issues, err := ParseMetricsCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 good row, got %d", len(rows))
	}
	if len(issues) != 4 {
		t.Fatalf("expected 4 issues, got %+v", issues)
	}
	if issues[0].Line != 2 {
		t.Fatalf("expected first issue on line 2, got %d", issues[0].Line)
	}
}

func TestParseMetricsCSVRejectsWrongHeader(t *testing.T) {
	input := "name,score\nx,1\n"
	if _, _, err := ParseMetricsCSV(strings.NewReader(input)); err == nil {
		t.Fatal("expected header error")
	}
}
