package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, path, exists, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be reported missing")
	}
	if path == "" {
		t.Fatal("expected resolved path")
	}
	if cfg.Workflow.QueuePollInterval != defaultQueuePollInterval {
		t.Fatalf("unexpected poll interval: %d", cfg.Workflow.QueuePollInterval)
	}
	if cfg.SEVIRI.CalibMode != defaultCalibMode {
		t.Fatalf("unexpected calib mode: %q", cfg.SEVIRI.CalibMode)
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pps1c.toml")
	content := `
[paths]
input_dir = "` + filepath.Join(dir, "in") + `"
output_dir = "` + filepath.Join(dir, "out") + `"
work_dir = "` + filepath.Join(dir, "work") + `"
log_dir = "` + filepath.Join(dir, "logs") + `"

[logging]
format = "JSON"
level = "Debug"

[seviri]
enabled = true
calib_mode = "Nominal"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("unexpected resolution: exists=%v path=%s", exists, resolved)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("logging not normalized: %+v", cfg.Logging)
	}
	if cfg.SEVIRI.CalibMode != "nominal" {
		t.Fatalf("calib mode not normalized: %q", cfg.SEVIRI.CalibMode)
	}
	if !filepath.IsAbs(cfg.Paths.InputDir) {
		t.Fatalf("input dir not absolute: %s", cfg.Paths.InputDir)
	}
}

func TestValidateRejectsUnknownCalibMode(t *testing.T) {
	cfg := Default()
	cfg.SEVIRI.CalibMode = "gsics"
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "calib_mode") {
		t.Fatalf("expected calib_mode error, got %v", err)
	}
}

func TestValidateRequiresInstrument(t *testing.T) {
	cfg := Default()
	cfg.SEVIRI.Enabled = false
	cfg.AVHRR.Enabled = false
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when all instruments disabled")
	}
}

func TestValidateAnnounceNeedsBrokers(t *testing.T) {
	cfg := Default()
	cfg.Announce.Enabled = true
	cfg.Announce.Brokers = nil
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "announce.brokers") {
		t.Fatalf("expected announce.brokers error, got %v", err)
	}
}

func TestExpandPathTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	expanded, err := ExpandPath("~/products")
	if err != nil {
		t.Fatalf("ExpandPath failed: %v", err)
	}
	if expanded != filepath.Join(home, "products") {
		t.Fatalf("unexpected expansion: %s", expanded)
	}
}
