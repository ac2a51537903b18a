package main

import (
	"strings"
	"testing"

	"pps1c/internal/ipc"
)

func TestBuildQueueStatusRowsSorted(t *testing.T) {
	rows := buildQueueStatusRows(map[string]int{
		"pending":   3,
		"completed": 1,
		"failed":    2,
	})
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0][0] != "Completed" || rows[1][0] != "Failed" || rows[2][0] != "Pending" {
		t.Fatalf("unexpected ordering: %v", rows)
	}
	if rows[2][1] != "3" {
		t.Fatalf("expected pending count 3, got %s", rows[2][1])
	}
}

func TestBuildQueueListRowsNewestFirst(t *testing.T) {
	items := []ipc.QueueItem{
		{ID: 1, ScanID: "MSG4-202101011200", Sensor: "seviri", Platform: "MSG4", Status: "completed", CreatedAt: "2021-01-01T12:05:00.000Z"},
		{ID: 2, ScanID: "MSG4-202101011215", Sensor: "seviri", Platform: "MSG4", Status: "pending", CreatedAt: "2021-01-01T12:20:00.000Z"},
	}
	rows := buildQueueListRows(items)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "2" {
		t.Fatalf("expected newest item first, got %v", rows[0])
	}
	if rows[0][4] != "Pending" {
		t.Fatalf("expected formatted status, got %q", rows[0][4])
	}
	if !strings.HasPrefix(rows[0][5], "2021-01-01 12:20") {
		t.Fatalf("unexpected created column: %q", rows[0][5])
	}
}

func TestBuildQueueListRowsFallsBackToSourcePath(t *testing.T) {
	items := []ipc.QueueItem{
		{ID: 7, SourcePath: "/data/in/AVHRR-GAC_FDR_1C_N19.nc", Sensor: "avhrr", Status: "pending"},
	}
	rows := buildQueueListRows(items)
	if rows[0][1] != "AVHRR-GAC_FDR_1C_N19.nc" {
		t.Fatalf("expected base name fallback, got %q", rows[0][1])
	}
}

func TestFormatStatusLabel(t *testing.T) {
	if got := formatStatusLabel("deriving"); got != "Deriving" {
		t.Fatalf("formatStatusLabel = %q", got)
	}
	if got := formatStatusLabel(""); got != "" {
		t.Fatalf("expected empty label, got %q", got)
	}
}
