package pipeline

import (
	"context"
	"os"
	"strings"

	"log/slog"

	"pps1c/internal/config"
	"pps1c/internal/logging"
	"pps1c/internal/metrics"
	"pps1c/internal/queue"
	"pps1c/internal/scene"
	"pps1c/internal/services"
	"pps1c/internal/seviri"
	"pps1c/internal/stage"
)

// Deriver fills in geolocation and viewing geometry for decoded scenes and
// validates them before they reach the writer.
type Deriver struct {
	store   *queue.Store
	cfg     *config.Config
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewDeriver constructs the deriver stage handler.
func NewDeriver(cfg *config.Config, store *queue.Store, logger *slog.Logger, m *metrics.Metrics) *Deriver {
	return &Deriver{store: store, cfg: cfg, logger: componentLogger(logger, "deriver"), metrics: m}
}

// SetLogger swaps the stage logger, typically for per-item request context.
func (d *Deriver) SetLogger(logger *slog.Logger) {
	d.logger = componentLogger(logger, "deriver")
}

func (d *Deriver) Prepare(ctx context.Context, item *queue.Item) error {
	item.InitProgress("Deriving", "Preparing geometry derivation")
	if strings.TrimSpace(item.SceneFile) == "" {
		return services.Wrap(services.ErrValidation, "deriving", "validate inputs",
			"No scene file present; run loading before derivation", nil)
	}
	return nil
}

func (d *Deriver) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, d.logger)

	s, err := scene.Load(item.SceneFile)
	if err != nil {
		return services.Wrap(services.ErrTransient, "deriving", "read scene",
			"Failed to read the decoded scene from the work directory", err)
	}

	// AVHRR GAC FDR files ship geolocation and angles; only geostationary
	// scenes need them computed here.
	if s.Sensor == "seviri" {
		persistProgress(ctx, d.store, d.logger, item, "Computing geolocation and angles", 10)
		if err := seviri.DeriveGeometry(s); err != nil {
			return err
		}
	}

	if err := s.Validate(); err != nil {
		return services.Wrap(services.ErrValidation, "deriving", "validate scene",
			"Derived scene failed consistency checks", err)
	}

	persistProgress(ctx, d.store, d.logger, item, "Persisting derived scene", 90)
	if err := s.Save(item.SceneFile); err != nil {
		return services.Wrap(services.ErrTransient, "deriving", "persist scene",
			"Failed to store the derived scene; check work_dir space and permissions", err)
	}
	item.SetProgressComplete("Deriving", "Geometry derived")
	logger.Info(
		"geometry derived",
		logging.String("sensor", s.Sensor),
		logging.Int("angle_grids", len(s.Angles)),
	)
	return nil
}

// HealthCheck verifies the deriver can reach the work directory.
func (d *Deriver) HealthCheck(ctx context.Context) stage.Health {
	const name = "deriver"
	if d.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if strings.TrimSpace(d.cfg.Paths.WorkDir) == "" {
		return stage.Unhealthy(name, "work directory not configured")
	}
	if info, err := os.Stat(d.cfg.Paths.WorkDir); err != nil || !info.IsDir() {
		return stage.Unhealthy(name, "work directory unavailable")
	}
	return stage.Healthy(name)
}
