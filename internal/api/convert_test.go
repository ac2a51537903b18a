package api

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"pps1c/internal/config"
	"pps1c/internal/logging"
	"pps1c/internal/services"
	"pps1c/internal/testsupport"
)

func newConvertConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	for _, dir := range []string{cfg.Paths.InputDir, cfg.Paths.OutputDir, cfg.Paths.WorkDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
	return cfg
}

func TestConvertSEVIRIDirectory(t *testing.T) {
	cfg := newConvertConfig(t)
	scanDir := filepath.Join(cfg.Paths.InputDir, "scan")
	if err := os.MkdirAll(scanDir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", scanDir, err)
	}
	testsupport.WriteSEVIRIScan(t, scanDir, testsupport.SEVIRIScanSpec{
		Start: time.Date(2021, 1, 1, 12, 0, 0, 0, time.UTC),
	})

	result, err := Convert(context.Background(), cfg, logging.NewNop(), scanDir)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if result.Sensor != "seviri" || result.Platform != "MSG4" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.ScanID != "MSG4-202101011200" {
		t.Fatalf("unexpected scan id %q", result.ScanID)
	}
	if _, err := os.Stat(result.OutputFile); err != nil {
		t.Fatalf("product missing: %v", err)
	}
	if !strings.HasPrefix(filepath.Base(result.OutputFile), "S_NWC_seviri_msg4_") {
		t.Fatalf("unexpected product name %q", result.OutputFile)
	}
}

func TestConvertGACFile(t *testing.T) {
	cfg := newConvertConfig(t)
	path := testsupport.WriteGACFDR(t, cfg.Paths.InputDir, testsupport.GACSpec{})

	result, err := Convert(context.Background(), cfg, logging.NewNop(), path)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if result.Sensor != "avhrr" || result.Platform != "NOAA-19" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if !strings.HasPrefix(filepath.Base(result.OutputFile), "S_NWC_avhrr_noaa19_") {
		t.Fatalf("unexpected product name %q", result.OutputFile)
	}
}

func TestConvertRejectsUnknownInput(t *testing.T) {
	cfg := newConvertConfig(t)
	path := filepath.Join(cfg.Paths.InputDir, "notes.txt")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	_, err := Convert(context.Background(), cfg, logging.NewNop(), path)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	_, err = Convert(context.Background(), cfg, logging.NewNop(), filepath.Join(cfg.Paths.InputDir, "missing"))
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestConvertAllCollectsFailures(t *testing.T) {
	cfg := newConvertConfig(t)

	// One good SEVIRI scan, one good GAC file, one corrupt GAC file.
	testsupport.WriteSEVIRIScan(t, cfg.Paths.InputDir, testsupport.SEVIRIScanSpec{})
	testsupport.WriteGACFDR(t, cfg.Paths.InputDir, testsupport.GACSpec{})
	corrupt := filepath.Join(cfg.Paths.InputDir,
		"AVHRR-GAC_FDR_1C_N06_19810330T005421Z_19810330T024632Z_R_O_20200101T000000Z_0100.nc")
	if err := os.WriteFile(corrupt, []byte("not netcdf"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	result, err := ConvertAll(context.Background(), cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("ConvertAll: %v", err)
	}
	if len(result.Converted) != 2 {
		t.Fatalf("expected 2 conversions, got %+v", result.Converted)
	}
	if len(result.Failed) != 1 || !strings.HasPrefix(result.Failed[0].ScanID, "AVHRR-GAC_FDR_1C_N06") {
		t.Fatalf("expected the corrupt file to fail, got %+v", result.Failed)
	}
	for _, r := range result.Converted {
		if _, err := os.Stat(r.OutputFile); err != nil {
			t.Fatalf("product %s missing: %v", r.OutputFile, err)
		}
	}
}

func TestConvertAllSkipsIncompleteScan(t *testing.T) {
	cfg := newConvertConfig(t)
	spec := testsupport.SEVIRIScanSpec{}
	for _, channel := range testsupport.SEVIRIChannels {
		for segment := 1; segment <= 7; segment++ {
			testsupport.WriteSEVIRISegment(t, cfg.Paths.InputDir, channel, segment, spec)
		}
	}

	result, err := ConvertAll(context.Background(), cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("ConvertAll: %v", err)
	}
	if len(result.Converted) != 0 || len(result.Failed) != 0 {
		t.Fatalf("incomplete scans should be skipped, got %+v", result)
	}
}
