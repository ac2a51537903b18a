package testsupport

import (
	"context"
	"testing"
	"time"

	"pps1c/internal/config"
	"pps1c/internal/queue"
)

// MustOpenStore opens a queue.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()

	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewScan creates a new pending scan item for tests using the provided store.
func NewScan(t testing.TB, store *queue.Store, sensor, platform, scanID string) *queue.Item {
	t.Helper()

	item, err := store.NewScan(context.Background(), queue.ScanRequest{
		ScanID:      scanID,
		Sensor:      sensor,
		Platform:    platform,
		SourcePath:  "/data/" + scanID,
		SourceFiles: []string{"/data/" + scanID + "/segment-001"},
		OrbitNumber: "99999",
		StartTime:   time.Date(2021, 1, 1, 12, 0, 0, 0, time.UTC),
		EndTime:     time.Date(2021, 1, 1, 12, 15, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("store.NewScan: %v", err)
	}
	return item
}
