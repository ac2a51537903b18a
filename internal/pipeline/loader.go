package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"log/slog"

	"pps1c/internal/avhrr"
	"pps1c/internal/calib"
	"pps1c/internal/config"
	"pps1c/internal/logging"
	"pps1c/internal/metrics"
	"pps1c/internal/queue"
	"pps1c/internal/scene"
	"pps1c/internal/services"
	"pps1c/internal/seviri"
	"pps1c/internal/stage"
)

// SceneFile returns the work-directory path where the decoded scene of a
// queue item is stored between stages.
func SceneFile(cfg *config.Config, item *queue.Item) string {
	return filepath.Join(cfg.Paths.WorkDir, fmt.Sprintf("scan-%d.scene.gz", item.ID))
}

// Loader decodes and calibrates one queued scan into a scene file.
type Loader struct {
	store   *queue.Store
	cfg     *config.Config
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewLoader constructs the loader stage handler.
func NewLoader(cfg *config.Config, store *queue.Store, logger *slog.Logger, m *metrics.Metrics) *Loader {
	return &Loader{store: store, cfg: cfg, logger: componentLogger(logger, "loader"), metrics: m}
}

// SetLogger swaps the stage logger, typically for per-item request context.
func (l *Loader) SetLogger(logger *slog.Logger) {
	l.logger = componentLogger(logger, "loader")
}

func (l *Loader) Prepare(ctx context.Context, item *queue.Item) error {
	item.InitProgress("Loading", "Preparing scan decode")
	logger := logging.WithContext(ctx, l.logger)
	logger.Info(
		"starting scan decode",
		logging.String("scan_id", strings.TrimSpace(item.ScanID)),
		logging.String("sensor", strings.TrimSpace(item.Sensor)),
	)
	return nil
}

func (l *Loader) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, l.logger)

	var (
		s   *scene.Scene
		err error
	)
	switch item.Sensor {
	case "seviri":
		s, err = l.loadSEVIRI(item)
	case "avhrr":
		s, err = l.loadAVHRR(item)
	default:
		return services.Wrap(services.ErrValidation, "loading", "dispatch",
			fmt.Sprintf("unsupported sensor %q", item.Sensor), nil)
	}
	if err != nil {
		if l.metrics != nil && errors.Is(err, services.ErrDecode) {
			l.metrics.BandReadFailures.Inc()
		}
		return err
	}

	item.Platform = s.Platform
	item.OrbitNumber = s.OrbitNumber
	item.StartTime = s.StartTime
	item.EndTime = s.EndTime

	path := SceneFile(l.cfg, item)
	persistProgress(ctx, l.store, l.logger, item, "Persisting decoded scene", 90)
	if err := s.Save(path); err != nil {
		return services.Wrap(services.ErrTransient, "loading", "persist scene",
			fmt.Sprintf("Failed to store the decoded scene under %s; check work_dir space and permissions", l.cfg.Paths.WorkDir),
			err)
	}
	item.SceneFile = path
	item.SetProgressComplete("Loading", fmt.Sprintf("Decoded %d bands (%dx%d)", len(s.Bands), s.Rows, s.Cols))
	logger.Info(
		"scan decoded",
		logging.String("platform", s.Platform),
		logging.Int("bands", len(s.Bands)),
		logging.Int("rows", s.Rows),
		logging.Int("cols", s.Cols),
		logging.String("scene_file", path),
	)
	return nil
}

func (l *Loader) loadSEVIRI(item *queue.Item) (*scene.Scene, error) {
	if !l.cfg.SEVIRI.Enabled {
		return nil, services.Wrap(services.ErrConfiguration, "loading", "dispatch",
			"SEVIRI processing is disabled in the configuration", nil)
	}
	files, err := item.SourceFiles()
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "loading", "read queue item",
			"Queue item carries an unreadable source file list", err)
	}
	if len(files) == 0 {
		return nil, services.Wrap(services.ErrValidation, "loading", "read queue item",
			"Queue item has no source files; the scan was enqueued before its segments settled", nil)
	}
	s, err := seviri.NewLoader(calib.Mode(l.cfg.SEVIRI.CalibMode)).Load(files)
	if err != nil {
		return nil, err
	}
	if override, ok := l.cfg.SEVIRI.SSPLongitude[s.Platform]; ok {
		s.Geo.SubLonDeg = override
	}
	return s, nil
}

func (l *Loader) loadAVHRR(item *queue.Item) (*scene.Scene, error) {
	if !l.cfg.AVHRR.Enabled {
		return nil, services.Wrap(services.ErrConfiguration, "loading", "dispatch",
			"AVHRR processing is disabled in the configuration", nil)
	}
	if strings.TrimSpace(item.SourcePath) == "" {
		return nil, services.Wrap(services.ErrValidation, "loading", "read queue item",
			"Queue item has no source path for its GAC FDR file", nil)
	}
	return avhrr.NewLoader().Load(item.SourcePath)
}

// HealthCheck verifies the loader can reach its input and work directories.
func (l *Loader) HealthCheck(ctx context.Context) stage.Health {
	const name = "loader"
	if l.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if !l.cfg.SEVIRI.Enabled && !l.cfg.AVHRR.Enabled {
		return stage.Unhealthy(name, "no sensor enabled")
	}
	if strings.TrimSpace(l.cfg.Paths.WorkDir) == "" {
		return stage.Unhealthy(name, "work directory not configured")
	}
	if info, err := os.Stat(l.cfg.Paths.WorkDir); err != nil || !info.IsDir() {
		return stage.Unhealthy(name, "work directory unavailable")
	}
	return stage.Healthy(name)
}

func componentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(logging.String("component", component))
}
