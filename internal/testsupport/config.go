package testsupport

import (
	"path/filepath"
	"testing"

	"pps1c/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.InputDir = filepath.Join(base, "input")
	cfgVal.Paths.OutputDir = filepath.Join(base, "output")
	cfgVal.Paths.WorkDir = filepath.Join(base, "work")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.APIBind = "127.0.0.1:0"
	cfgVal.Announce.Enabled = false
	cfgVal.Metrics.Enabled = false

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithCalibMode overrides the SEVIRI calibration mode on the test config.
func WithCalibMode(mode string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.SEVIRI.CalibMode = mode
	}
}

// WithInstruments toggles the per-sensor enable flags on the test config.
func WithInstruments(seviri, avhrr bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.SEVIRI.Enabled = seviri
		b.cfg.AVHRR.Enabled = avhrr
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.WorkDir)
}
