package api

import (
	"context"
	"testing"
	"time"

	"pps1c/internal/queue"
	"pps1c/internal/stage"
)

func TestFromQueueItem(t *testing.T) {
	created := time.Date(2021, 1, 1, 12, 0, 0, 0, time.UTC)
	item := &queue.Item{
		ID:              7,
		ScanID:          "MSG4-202101011200",
		Sensor:          "seviri",
		Platform:        "MSG4",
		Status:          queue.StatusDerived,
		OrbitNumber:     "99999",
		StartTime:       created,
		EndTime:         created.Add(15 * time.Minute),
		CreatedAt:       created,
		ProgressStage:   "Deriving",
		ProgressPercent: 100,
		ProgressMessage: "Geometry derived",
	}

	dto := FromQueueItem(item)
	if dto.ID != 7 || dto.ScanID != "MSG4-202101011200" || dto.Sensor != "seviri" {
		t.Fatalf("unexpected identity fields: %+v", dto)
	}
	if dto.Status != "derived" || dto.ProcessingLane != string(queue.LaneBackground) {
		t.Fatalf("unexpected status fields: %+v", dto)
	}
	if dto.Progress.Stage != "Deriving" || dto.Progress.Percent != 100 {
		t.Fatalf("unexpected progress: %+v", dto.Progress)
	}
	if dto.StartTime != "2021-01-01T12:00:00.000Z" {
		t.Fatalf("unexpected start time %q", dto.StartTime)
	}
	if dto.EndTime != "2021-01-01T12:15:00.000Z" {
		t.Fatalf("unexpected end time %q", dto.EndTime)
	}
}

func TestSortQueueItemsNewestFirst(t *testing.T) {
	items := []QueueItem{
		{ID: 1, CreatedAt: "2021-01-01T12:00:00.000Z"},
		{ID: 3, CreatedAt: "2021-01-01T13:00:00.000Z"},
		{ID: 2, CreatedAt: "2021-01-01T13:00:00.000Z"},
	}
	sorted := SortQueueItemsNewestFirst(items)
	if sorted[0].ID != 3 || sorted[1].ID != 2 || sorted[2].ID != 1 {
		t.Fatalf("unexpected order: %+v", sorted)
	}
	if items[0].ID != 1 {
		t.Fatal("input slice must not be reordered")
	}
}

func TestStageHealthSliceIsSorted(t *testing.T) {
	health := map[string]stage.Health{
		"writer":  stage.Healthy("writer"),
		"deriver": stage.Unhealthy("deriver", "work directory unavailable"),
		"loader":  stage.Healthy("loader"),
	}
	out := StageHealthSlice(health)
	if len(out) != 3 || out[0].Name != "deriver" || out[1].Name != "loader" || out[2].Name != "writer" {
		t.Fatalf("unexpected order: %+v", out)
	}
	if out[0].Ready || out[0].Detail == "" {
		t.Fatalf("unhealthy entry lost its detail: %+v", out[0])
	}
}

type fakeActionService struct {
	items   map[int64]*QueueItem
	retried []int64
}

func (f *fakeActionService) Describe(_ context.Context, id int64) (*QueueItem, error) {
	return f.items[id], nil
}

func (f *fakeActionService) Retry(_ context.Context, ids []int64) (int64, error) {
	f.retried = append(f.retried, ids...)
	return int64(len(ids)), nil
}

func TestRetryFailedItemsByID(t *testing.T) {
	service := &fakeActionService{items: map[int64]*QueueItem{
		1: {ID: 1, Status: string(queue.StatusFailed)},
		2: {ID: 2, Status: string(queue.StatusCompleted)},
	}}

	result, err := RetryFailedItemsByID(context.Background(), service, []int64{1, 2, 3})
	if err != nil {
		t.Fatalf("RetryFailedItemsByID: %v", err)
	}
	if result.UpdatedCount != 1 {
		t.Fatalf("expected 1 retried, got %d", result.UpdatedCount)
	}
	outcomes := map[int64]RetryItemOutcome{}
	for _, r := range result.Items {
		outcomes[r.ID] = r.Outcome
	}
	if outcomes[1] != RetryItemUpdated || outcomes[2] != RetryItemNotFailed || outcomes[3] != RetryItemNotFound {
		t.Fatalf("unexpected outcomes: %+v", outcomes)
	}
	if len(service.retried) != 1 || service.retried[0] != 1 {
		t.Fatalf("unexpected retry calls: %v", service.retried)
	}
}
