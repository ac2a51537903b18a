package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"pps1c/internal/config"
	"pps1c/internal/logging"
	"pps1c/internal/metrics"
	"pps1c/internal/queue"
	"pps1c/internal/scene"
	"pps1c/internal/services"
	"pps1c/internal/testsupport"
)

func newPipelineConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	for _, dir := range []string{cfg.Paths.InputDir, cfg.Paths.OutputDir, cfg.Paths.WorkDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
	return cfg
}

func enqueueSEVIRIScan(t *testing.T, cfg *config.Config, store *queue.Store) *queue.Item {
	t.Helper()
	start := time.Date(2021, 6, 21, 12, 0, 0, 0, time.UTC)
	files := testsupport.WriteSEVIRIScan(t, cfg.Paths.InputDir, testsupport.SEVIRIScanSpec{Start: start})
	item, err := store.NewScan(context.Background(), queue.ScanRequest{
		ScanID:      "MSG4-202106211200",
		Sensor:      "seviri",
		Platform:    "MSG4",
		SourcePath:  cfg.Paths.InputDir,
		SourceFiles: files,
		StartTime:   start,
	})
	if err != nil {
		t.Fatalf("NewScan: %v", err)
	}
	return item
}

func runStage(t *testing.T, handler interface {
	Prepare(context.Context, *queue.Item) error
	Execute(context.Context, *queue.Item) error
}, item *queue.Item) {
	t.Helper()
	ctx := context.Background()
	if err := handler.Prepare(ctx, item); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if err := handler.Execute(ctx, item); err != nil {
		t.Fatalf("Execute: %v", err)
	}
}

func TestLoaderDecodesSEVIRIScan(t *testing.T) {
	cfg := newPipelineConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := enqueueSEVIRIScan(t, cfg, store)

	loader := NewLoader(cfg, store, logging.NewNop(), metrics.NewMetricsForTesting())
	runStage(t, loader, item)

	if item.Platform != "MSG4" || item.OrbitNumber != "99999" {
		t.Fatalf("unexpected item identity: %+v", item)
	}
	if item.SceneFile != SceneFile(cfg, item) {
		t.Fatalf("unexpected scene file %q", item.SceneFile)
	}
	if _, err := os.Stat(item.SceneFile); err != nil {
		t.Fatalf("scene file missing: %v", err)
	}
	if item.EndTime.Sub(item.StartTime) != 15*time.Minute {
		t.Fatalf("unexpected scan duration %v", item.EndTime.Sub(item.StartTime))
	}

	s, err := scene.Load(item.SceneFile)
	if err != nil {
		t.Fatalf("scene.Load: %v", err)
	}
	if !s.Geo.Valid {
		t.Fatal("decoded scene should carry projection parameters")
	}
	if s.Lat != nil {
		t.Fatal("geolocation belongs to the deriver, not the loader")
	}
}

func TestLoaderDecodesGACFile(t *testing.T) {
	cfg := newPipelineConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	path := testsupport.WriteGACFDR(t, cfg.Paths.InputDir, testsupport.GACSpec{})
	item, err := store.NewScan(context.Background(), queue.ScanRequest{
		ScanID:     filepath.Base(path),
		Sensor:     "avhrr",
		SourcePath: path,
	})
	if err != nil {
		t.Fatalf("NewScan: %v", err)
	}

	loader := NewLoader(cfg, store, logging.NewNop(), metrics.NewMetricsForTesting())
	runStage(t, loader, item)

	if item.Platform != "NOAA-19" {
		t.Fatalf("unexpected platform %q", item.Platform)
	}
	s, err := scene.Load(item.SceneFile)
	if err != nil {
		t.Fatalf("scene.Load: %v", err)
	}
	if s.Lat == nil || s.Lon == nil {
		t.Fatal("GAC scenes carry geolocation from the input file")
	}
	if s.Geo.Valid {
		t.Fatal("GAC scenes have no geostationary projection")
	}
}

func TestLoaderRejectsDisabledSensor(t *testing.T) {
	cfg := newPipelineConfig(t)
	cfg.SEVIRI.Enabled = false
	store := testsupport.MustOpenStore(t, cfg)
	item := enqueueSEVIRIScan(t, cfg, store)

	loader := NewLoader(cfg, store, logging.NewNop(), nil)
	err := loader.Execute(context.Background(), item)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestLoaderRejectsUnknownSensor(t *testing.T) {
	cfg := newPipelineConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewScan(t, store, "viirs", "NOAA-20", "viirs-1")

	loader := NewLoader(cfg, store, logging.NewNop(), nil)
	err := loader.Execute(context.Background(), item)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDeriverComputesGeometry(t *testing.T) {
	cfg := newPipelineConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := enqueueSEVIRIScan(t, cfg, store)

	m := metrics.NewMetricsForTesting()
	runStage(t, NewLoader(cfg, store, logging.NewNop(), m), item)
	runStage(t, NewDeriver(cfg, store, logging.NewNop(), m), item)

	s, err := scene.Load(item.SceneFile)
	if err != nil {
		t.Fatalf("scene.Load: %v", err)
	}
	if s.Lat == nil || s.Lon == nil || len(s.Angles) != 3 {
		t.Fatal("derived scene is missing geolocation or angle grids")
	}
	if err := s.Validate(); err != nil {
		t.Fatalf("derived scene invalid: %v", err)
	}
}

func TestDeriverRequiresSceneFile(t *testing.T) {
	cfg := newPipelineConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewScan(t, store, "seviri", "MSG4", "no-scene")

	deriver := NewDeriver(cfg, store, logging.NewNop(), nil)
	err := deriver.Prepare(context.Background(), item)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestWriterProducesLevel1cFile(t *testing.T) {
	cfg := newPipelineConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := enqueueSEVIRIScan(t, cfg, store)

	m := metrics.NewMetricsForTesting()
	runStage(t, NewLoader(cfg, store, logging.NewNop(), m), item)
	runStage(t, NewDeriver(cfg, store, logging.NewNop(), m), item)
	runStage(t, NewWriter(cfg, store, logging.NewNop(), m, nil), item)

	if item.OutputFile == "" {
		t.Fatal("writer did not record an output file")
	}
	base := filepath.Base(item.OutputFile)
	if !strings.HasPrefix(base, "S_NWC_seviri_msg4_99999_") || !strings.HasSuffix(base, ".nc") {
		t.Fatalf("unexpected product name %q", base)
	}
	if _, err := os.Stat(item.OutputFile); err != nil {
		t.Fatalf("product file missing: %v", err)
	}
	if _, err := os.Stat(item.SceneFile); !os.IsNotExist(err) {
		t.Fatal("intermediate scene file should be removed after writing")
	}
	if got := testutil.ToFloat64(m.ProductsWritten); got != 1 {
		t.Fatalf("expected 1 product written, counted %v", got)
	}
	if got := testutil.ToFloat64(m.OutputBytes); got <= 0 {
		t.Fatalf("expected output bytes to be counted, got %v", got)
	}
}

func TestStageHealthChecks(t *testing.T) {
	cfg := newPipelineConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	loader := NewLoader(cfg, store, logging.NewNop(), nil)
	if health := loader.HealthCheck(context.Background()); !health.Ready {
		t.Fatalf("loader unhealthy: %s", health.Detail)
	}
	deriver := NewDeriver(cfg, store, logging.NewNop(), nil)
	if health := deriver.HealthCheck(context.Background()); !health.Ready {
		t.Fatalf("deriver unhealthy: %s", health.Detail)
	}
	writer := NewWriter(cfg, store, logging.NewNop(), nil, nil)
	if health := writer.HealthCheck(context.Background()); !health.Ready {
		t.Fatalf("writer unhealthy: %s", health.Detail)
	}

	cfg.SEVIRI.Enabled = false
	cfg.AVHRR.Enabled = false
	if health := loader.HealthCheck(context.Background()); health.Ready {
		t.Fatal("loader should report unhealthy with both sensors disabled")
	}
	if err := os.RemoveAll(cfg.Paths.OutputDir); err != nil {
		t.Fatalf("remove output dir: %v", err)
	}
	if health := writer.HealthCheck(context.Background()); health.Ready {
		t.Fatal("writer should report unhealthy without the output directory")
	}
}
