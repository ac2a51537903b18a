package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"log/slog"

	"github.com/fsnotify/fsnotify"
	"github.com/jonboulle/clockwork"

	"pps1c/internal/avhrr"
	"pps1c/internal/config"
	"pps1c/internal/hrit"
	"pps1c/internal/logging"
	"pps1c/internal/metrics"
	"pps1c/internal/queue"
	"pps1c/internal/seviri"
)

// pollTick is how often settled candidates are checked for enqueueing.
const pollTick = time.Second

// Watcher monitors the input directory and enqueues scans once their files
// have settled. SEVIRI repeat cycles arrive as many segment files over
// several minutes; a scan is only enqueued when it is complete and no new
// segment has appeared for the configured settle window.
type Watcher struct {
	cfg     *config.Config
	store   *queue.Store
	logger  *slog.Logger
	metrics *metrics.Metrics
	clock   clockwork.Clock

	mu      sync.Mutex
	pending map[string]*pendingScan
}

type pendingScan struct {
	sensor    string
	files     map[string]struct{}
	lastEvent time.Time
}

// New constructs a watcher over cfg.Paths.InputDir.
func New(cfg *config.Config, store *queue.Store, logger *slog.Logger, m *metrics.Metrics) *Watcher {
	if logger != nil {
		logger = logger.With(logging.String("component", "watch"))
	}
	return &Watcher{
		cfg:     cfg,
		store:   store,
		logger:  logger,
		metrics: m,
		clock:   clockwork.NewRealClock(),
		pending: make(map[string]*pendingScan),
	}
}

// SetClock swaps the time source, used by tests to control the settle window.
func (w *Watcher) SetClock(clock clockwork.Clock) {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	w.clock = clock
}

// Run watches the input directory until the context is cancelled. Files
// already present at startup are picked up by an initial sweep.
func (w *Watcher) Run(ctx context.Context) error {
	logger := logging.WithContext(ctx, w.logger)

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create input watcher: %w", err)
	}
	defer fsw.Close()
	if err := fsw.Add(w.cfg.Paths.InputDir); err != nil {
		return fmt.Errorf("watch %s: %w", w.cfg.Paths.InputDir, err)
	}
	logger.Info("watching input directory", logging.String("input_dir", w.cfg.Paths.InputDir))

	if err := w.Sweep(ctx); err != nil {
		logger.Warn("initial input sweep failed", logging.Error(err))
	}

	ticker := w.clock.NewTicker(pollTick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				w.observe(event.Name)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("input watcher error", logging.Error(err))
		case <-ticker.Chan():
			w.flushSettled(ctx)
		}
	}
}

// Sweep registers every recognized file already present in the input
// directory, so scans delivered while the daemon was down are not lost.
func (w *Watcher) Sweep(ctx context.Context) error {
	entries, err := os.ReadDir(w.cfg.Paths.InputDir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		w.observe(filepath.Join(w.cfg.Paths.InputDir, entry.Name()))
	}
	return nil
}

// observe classifies one file and records it against its pending scan.
func (w *Watcher) observe(path string) {
	base := filepath.Base(path)
	var key, sensor string
	switch {
	case hrit.IsSegmentName(base):
		name, err := hrit.ParseSegmentName(base)
		if err != nil || name.Kind != hrit.KindImage {
			return
		}
		key, sensor = name.ScanKey(), "seviri"
	case avhrr.IsFDRFilename(base):
		key, sensor = base, "avhrr"
	default:
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	p, ok := w.pending[key]
	if !ok {
		p = &pendingScan{sensor: sensor, files: make(map[string]struct{})}
		w.pending[key] = p
	}
	p.files[path] = struct{}{}
	p.lastEvent = w.clock.Now()
}

// flushSettled enqueues every pending scan whose settle window has elapsed.
func (w *Watcher) flushSettled(ctx context.Context) {
	settle := time.Duration(w.cfg.Workflow.ScanSettleSeconds) * time.Second
	now := w.clock.Now()

	w.mu.Lock()
	var ready []string
	for key, p := range w.pending {
		if now.Sub(p.lastEvent) >= settle {
			ready = append(ready, key)
		}
	}
	w.mu.Unlock()

	for _, key := range ready {
		w.flush(ctx, key)
	}
}

func (w *Watcher) flush(ctx context.Context, key string) {
	logger := logging.WithContext(ctx, w.logger)

	w.mu.Lock()
	p, ok := w.pending[key]
	if !ok {
		w.mu.Unlock()
		return
	}
	files := make([]string, 0, len(p.files))
	for f := range p.files {
		files = append(files, f)
	}
	sensor := p.sensor
	w.mu.Unlock()

	var req *queue.ScanRequest
	switch sensor {
	case "seviri":
		req = w.seviriRequest(key, files)
	case "avhrr":
		req = w.avhrrRequest(key, files)
	}
	if req == nil {
		// Incomplete scans stay pending until more segments arrive.
		return
	}

	existing, err := w.store.FindByScanID(ctx, req.ScanID)
	if err != nil {
		logger.Warn("scan lookup failed", logging.String("scan_id", req.ScanID), logging.Error(err))
		return
	}
	if existing == nil {
		item, err := w.store.NewScan(ctx, *req)
		if err != nil {
			logger.Error("failed to enqueue scan", logging.String("scan_id", req.ScanID), logging.Error(err))
			return
		}
		if w.metrics != nil {
			w.metrics.ScansEnqueued.Inc()
		}
		logger.Info(
			"scan enqueued",
			logging.Int64("item_id", item.ID),
			logging.String("scan_id", req.ScanID),
			logging.String("sensor", req.Sensor),
			logging.Int("source_files", len(req.SourceFiles)),
		)
	} else {
		logger.Debug("scan already queued", logging.String("scan_id", req.ScanID))
	}

	w.mu.Lock()
	delete(w.pending, key)
	w.mu.Unlock()
}

func (w *Watcher) seviriRequest(key string, files []string) *queue.ScanRequest {
	if !w.cfg.SEVIRI.Enabled {
		return nil
	}
	scans := seviri.GroupSegments(files)
	var scan *seviri.Scan
	for _, s := range scans {
		if s.Key() == key {
			scan = s
		}
	}
	if scan == nil || !scan.Complete() {
		return nil
	}
	return &queue.ScanRequest{
		ScanID:      scan.Key(),
		Sensor:      "seviri",
		Platform:    scan.Platform,
		SourcePath:  w.cfg.Paths.InputDir,
		SourceFiles: scan.SourceFiles(),
		OrbitNumber: seviri.OrbitNumber,
		StartTime:   scan.Start,
	}
}

func (w *Watcher) avhrrRequest(key string, files []string) *queue.ScanRequest {
	if !w.cfg.AVHRR.Enabled || len(files) == 0 {
		return nil
	}
	req := &queue.ScanRequest{
		ScanID:      strings.TrimSuffix(key, ".nc"),
		Sensor:      "avhrr",
		SourcePath:  files[0],
		OrbitNumber: avhrr.OrbitNumber,
	}
	if start, end, ok := avhrr.FilenameTimes(key); ok {
		req.StartTime = start
		req.EndTime = end
	}
	return req
}

// PendingCount reports how many scans are waiting for their settle window.
func (w *Watcher) PendingCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}
