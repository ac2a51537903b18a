package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"log/slog"

	"pps1c/internal/announce"
	"pps1c/internal/config"
	"pps1c/internal/level1c"
	"pps1c/internal/logging"
	"pps1c/internal/metrics"
	"pps1c/internal/queue"
	"pps1c/internal/scene"
	"pps1c/internal/services"
	"pps1c/internal/stage"
)

// Writer produces the level-1c product file and announces its completion.
type Writer struct {
	store     *queue.Store
	cfg       *config.Config
	logger    *slog.Logger
	metrics   *metrics.Metrics
	announcer *announce.Announcer
}

// NewWriter constructs the writer stage handler. The announcer may be nil
// when announcements are disabled.
func NewWriter(cfg *config.Config, store *queue.Store, logger *slog.Logger, m *metrics.Metrics, announcer *announce.Announcer) *Writer {
	return &Writer{store: store, cfg: cfg, logger: componentLogger(logger, "writer"), metrics: m, announcer: announcer}
}

// SetLogger swaps the stage logger, typically for per-item request context.
func (w *Writer) SetLogger(logger *slog.Logger) {
	w.logger = componentLogger(logger, "writer")
}

func (w *Writer) Prepare(ctx context.Context, item *queue.Item) error {
	item.InitProgress("Writing", "Preparing product write")
	if strings.TrimSpace(item.SceneFile) == "" {
		return services.Wrap(services.ErrValidation, "writing", "validate inputs",
			"No scene file present; run loading and derivation before writing", nil)
	}
	return nil
}

func (w *Writer) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, w.logger)

	s, err := scene.Load(item.SceneFile)
	if err != nil {
		return services.Wrap(services.ErrTransient, "writing", "read scene",
			"Failed to read the derived scene from the work directory", err)
	}

	persistProgress(ctx, w.store, w.logger, item, "Writing level-1c product", 10)
	path, err := level1c.WriteScene(s, w.cfg.Paths.OutputDir, time.Now().UTC())
	if err != nil {
		return services.Wrap(services.ErrTransient, "writing", "write product",
			"Failed to write the level-1c file; check output_dir space and permissions", err)
	}
	item.OutputFile = path

	if w.metrics != nil {
		w.metrics.ProductsWritten.Inc()
		if info, err := os.Stat(path); err == nil {
			w.metrics.OutputBytes.Add(float64(info.Size()))
		}
	}

	persistProgress(ctx, w.store, w.logger, item, "Announcing product", 90)
	event := announce.ProductEvent{
		ScanID:      item.ScanID,
		Sensor:      s.Sensor,
		Platform:    s.Platform,
		OrbitNumber: s.OrbitNumber,
		StartTime:   s.StartTime,
		EndTime:     s.EndTime,
		OutputFile:  path,
		ProducedAt:  time.Now().UTC(),
	}
	if err := w.announcer.Publish(ctx, event); err != nil {
		// The product is on disk; a broker outage must not fail the item.
		logger.Warn("product announcement failed", logging.Error(err))
	}

	if err := os.Remove(item.SceneFile); err != nil && !os.IsNotExist(err) {
		logger.Warn("failed to remove intermediate scene file", logging.Error(err))
	}

	item.SetProgressComplete("Writing", "Product written: "+filepath.Base(path))
	logger.Info(
		"product written",
		logging.String("output_file", path),
		logging.String("platform", s.Platform),
	)
	return nil
}

// HealthCheck verifies the writer can place products in the output directory.
func (w *Writer) HealthCheck(ctx context.Context) stage.Health {
	const name = "writer"
	if w.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if strings.TrimSpace(w.cfg.Paths.OutputDir) == "" {
		return stage.Unhealthy(name, "output directory not configured")
	}
	if info, err := os.Stat(w.cfg.Paths.OutputDir); err != nil || !info.IsDir() {
		return stage.Unhealthy(name, "output directory unavailable")
	}
	return stage.Healthy(name)
}
