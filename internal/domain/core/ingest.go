package core

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// MetricRow is one parsed CSV line before persistence.
type MetricRow struct {
	EmployeeEmail  string
	Period         int
	Score          float64
	Utilization    float64
	TasksCompleted int
	Date           time.Time
}

type IngestIssue struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// ParseMetricsCSV parses an uploaded metrics file. Expected header:
// employee_email,period,score,utilization,tasks_completed,date
// Bad rows are collected as issues rather than aborting the upload.
func ParseMetricsCSV(r io.Reader) ([]MetricRow, []IngestIssue, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read csv header: %w", err)
	}
	if len(header) < 6 || !strings.EqualFold(strings.TrimSpace(header[0]), "employee_email") {
		return nil, nil, fmt.Errorf("unexpected csv header: %v", header)
	}

	var rows []MetricRow
	var issues []IngestIssue
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			issues = append(issues, IngestIssue{Line: line, Reason: "malformed row"})
			continue
		}
		row, reason := parseMetricRecord(record)
		if reason != "" {
			issues = append(issues, IngestIssue{Line: line, Reason: reason})
			continue
		}
		rows = append(rows, row)
	}
	return rows, issues, nil
}

func parseMetricRecord(record []string) (MetricRow, string) {
	if len(record) < 6 {
		return MetricRow{}, "expected 6 columns"
	}
	email := strings.TrimSpace(record[0])
	if email == "" {
		return MetricRow{}, "employee_email is required"
	}
	period, err := strconv.Atoi(strings.TrimSpace(record[1]))
	if err != nil || period < 0 {
		return MetricRow{}, "period must be a non-negative integer"
	}
	score, err := strconv.ParseFloat(strings.TrimSpace(record[2]), 64)
	if err != nil || score < 0 || score > 100 {
		return MetricRow{}, "score must be between 0 and 100"
	}
	utilization, err := strconv.ParseFloat(strings.TrimSpace(record[3]), 64)
	if err != nil || utilization < 0 || utilization > 100 {
		return MetricRow{}, "utilization must be between 0 and 100"
	}
	tasks, err := strconv.Atoi(strings.TrimSpace(record[4]))
	if err != nil || tasks < 0 {
		return MetricRow{}, "tasks_completed must be a non-negative integer"
	}
	date, err := time.Parse("2006-01-02", strings.TrimSpace(record[5]))
	if err != nil {
		return MetricRow{}, "date must be YYYY-MM-DD"
	}
	return MetricRow{
		EmployeeEmail:  email,
		Period:         period,
		Score:          score,
		Utilization:    utilization,
		TasksCompleted: tasks,
		Date:           date,
	}, ""
}
