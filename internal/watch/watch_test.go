package watch

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pps1c/internal/config"
	"pps1c/internal/logging"
	"pps1c/internal/metrics"
	"pps1c/internal/queue"
	"pps1c/internal/testsupport"
)

func newWatchFixture(t *testing.T) (*config.Config, *queue.Store, *Watcher, *clockwork.FakeClock) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	require.NoError(t, os.MkdirAll(cfg.Paths.InputDir, 0o755))
	store := testsupport.MustOpenStore(t, cfg)

	w := New(cfg, store, logging.NewNop(), metrics.NewMetricsForTesting())
	clock := clockwork.NewFakeClockAt(time.Date(2021, 1, 1, 12, 0, 0, 0, time.UTC))
	w.SetClock(clock)
	return cfg, store, w, clock
}

func settleWindow(cfg *config.Config) time.Duration {
	return time.Duration(cfg.Workflow.ScanSettleSeconds) * time.Second
}

func TestSweepEnqueuesCompleteScanAfterSettle(t *testing.T) {
	cfg, store, w, clock := newWatchFixture(t)
	ctx := context.Background()

	start := time.Date(2021, 1, 1, 12, 0, 0, 0, time.UTC)
	testsupport.WriteSEVIRIScan(t, cfg.Paths.InputDir, testsupport.SEVIRIScanSpec{Start: start})

	require.NoError(t, w.Sweep(ctx))
	assert.Equal(t, 1, w.PendingCount())

	// The settle window has not elapsed.
	w.flushSettled(ctx)
	items, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	clock.Advance(settleWindow(cfg))
	w.flushSettled(ctx)

	items, err = store.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	item := items[0]
	assert.Equal(t, "seviri", item.Sensor)
	assert.Equal(t, "MSG4", item.Platform)
	assert.Equal(t, "MSG4-202101011200", item.ScanID)
	assert.Equal(t, queue.StatusPending, item.Status)
	files, err := item.SourceFiles()
	require.NoError(t, err)
	assert.Len(t, files, 88)
	assert.Zero(t, w.PendingCount())
}

func TestDuplicateScanIsNotRequeued(t *testing.T) {
	cfg, store, w, clock := newWatchFixture(t)
	ctx := context.Background()

	testsupport.WriteSEVIRIScan(t, cfg.Paths.InputDir, testsupport.SEVIRIScanSpec{})
	require.NoError(t, w.Sweep(ctx))
	clock.Advance(settleWindow(cfg))
	w.flushSettled(ctx)

	// A second sweep sees the same files again.
	require.NoError(t, w.Sweep(ctx))
	clock.Advance(settleWindow(cfg))
	w.flushSettled(ctx)

	items, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestIncompleteScanStaysPending(t *testing.T) {
	cfg, store, w, clock := newWatchFixture(t)
	ctx := context.Background()

	spec := testsupport.SEVIRIScanSpec{}
	for _, channel := range testsupport.SEVIRIChannels {
		// Segment 8 never arrives.
		for segment := 1; segment <= 7; segment++ {
			testsupport.WriteSEVIRISegment(t, cfg.Paths.InputDir, channel, segment, spec)
		}
	}

	require.NoError(t, w.Sweep(ctx))
	clock.Advance(settleWindow(cfg))
	w.flushSettled(ctx)

	items, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, 1, w.PendingCount())
}

func TestGACFileEnqueuedWithFilenameTimes(t *testing.T) {
	cfg, store, w, clock := newWatchFixture(t)
	ctx := context.Background()

	path := testsupport.WriteGACFDR(t, cfg.Paths.InputDir, testsupport.GACSpec{})
	w.observe(path)
	clock.Advance(settleWindow(cfg))
	w.flushSettled(ctx)

	items, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	item := items[0]
	assert.Equal(t, "avhrr", item.Sensor)
	assert.Equal(t, path, item.SourcePath)
	assert.Equal(t, "99999", item.OrbitNumber)
	assert.Equal(t, time.Date(2021, 1, 1, 12, 0, 0, 0, time.UTC), item.StartTime.UTC())
	assert.Equal(t, time.Date(2021, 1, 1, 12, 45, 0, 0, time.UTC), item.EndTime.UTC())
}

func TestForeignFilesAreIgnored(t *testing.T) {
	cfg, _, w, _ := newWatchFixture(t)

	w.observe(cfg.Paths.InputDir + "/notes.txt")
	w.observe(cfg.Paths.InputDir + "/H-000-MSG4__-MSG4________-_________-PRO______-202101011200-__")
	assert.Zero(t, w.PendingCount())
}

func TestDisabledSensorIsNotEnqueued(t *testing.T) {
	cfg, store, w, clock := newWatchFixture(t)
	cfg.AVHRR.Enabled = false
	ctx := context.Background()

	path := testsupport.WriteGACFDR(t, cfg.Paths.InputDir, testsupport.GACSpec{})
	w.observe(path)
	clock.Advance(settleWindow(cfg))
	w.flushSettled(ctx)

	items, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}
