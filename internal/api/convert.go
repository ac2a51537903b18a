package api

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"log/slog"

	"golang.org/x/sync/errgroup"

	"pps1c/internal/avhrr"
	"pps1c/internal/calib"
	"pps1c/internal/config"
	"pps1c/internal/hrit"
	"pps1c/internal/level1c"
	"pps1c/internal/logging"
	"pps1c/internal/scene"
	"pps1c/internal/services"
	"pps1c/internal/seviri"
)

// ConvertResult reports one completed conversion.
type ConvertResult struct {
	ScanID     string `json:"scanId"`
	Sensor     string `json:"sensor"`
	Platform   string `json:"platform"`
	OutputFile string `json:"outputFile"`
}

// ConvertAllResult summarizes a directory-wide conversion run.
type ConvertAllResult struct {
	Converted []ConvertResult `json:"converted"`
	Failed    []ConvertError  `json:"failed"`
}

// ConvertError pairs a failed scan with its error message.
type ConvertError struct {
	ScanID string `json:"scanId"`
	Error  string `json:"error"`
}

// Convert runs the full load-derive-write pipeline for one input, bypassing
// the queue. A directory is treated as the segment files of a single SEVIRI
// repeat cycle; a file must be an AVHRR GAC FDR product.
func Convert(ctx context.Context, cfg *config.Config, logger *slog.Logger, path string) (*ConvertResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, services.Wrap(services.ErrNotFound, "convert", "stat input", path, err)
	}
	if info.IsDir() {
		files, err := segmentFilesIn(path)
		if err != nil {
			return nil, err
		}
		return convertSEVIRI(ctx, cfg, logger, "", files)
	}
	if avhrr.IsFDRFilename(filepath.Base(path)) {
		return convertGAC(ctx, cfg, logger, path)
	}
	return nil, services.Wrap(services.ErrValidation, "convert", "classify input",
		fmt.Sprintf("%s is neither a scan directory nor a GAC FDR file", path), nil)
}

// ConvertAll discovers every complete scan in the input directory and
// converts them with bounded parallelism. Individual failures are collected
// rather than aborting the run.
func ConvertAll(ctx context.Context, cfg *config.Config, logger *slog.Logger) (ConvertAllResult, error) {
	entries, err := os.ReadDir(cfg.Paths.InputDir)
	if err != nil {
		return ConvertAllResult{}, services.Wrap(services.ErrNotFound, "convert", "scan input directory",
			cfg.Paths.InputDir, err)
	}

	var segmentFiles []string
	var gacFiles []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		full := filepath.Join(cfg.Paths.InputDir, name)
		switch {
		case hrit.IsSegmentName(name):
			segmentFiles = append(segmentFiles, full)
		case avhrr.IsFDRFilename(name):
			gacFiles = append(gacFiles, full)
		}
	}

	type job struct {
		scanID string
		run    func(context.Context) (*ConvertResult, error)
	}
	var jobs []job
	if cfg.SEVIRI.Enabled {
		for key, scan := range seviri.GroupSegments(segmentFiles) {
			if !scan.Complete() {
				logging.WithContext(ctx, logger).Warn("skipping incomplete scan", logging.String("scan_id", key))
				continue
			}
			files := scan.SourceFiles()
			id := key
			jobs = append(jobs, job{scanID: id, run: func(ctx context.Context) (*ConvertResult, error) {
				return convertSEVIRI(ctx, cfg, logger, id, files)
			}})
		}
	}
	if cfg.AVHRR.Enabled {
		for _, path := range gacFiles {
			p := path
			jobs = append(jobs, job{scanID: filepath.Base(p), run: func(ctx context.Context) (*ConvertResult, error) {
				return convertGAC(ctx, cfg, logger, p)
			}})
		}
	}

	limit := cfg.Workflow.MaxParallelScans
	if limit < 1 {
		limit = 1
	}
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(limit)

	results := make([]*ConvertResult, len(jobs))
	failures := make([]*ConvertError, len(jobs))
	for i, j := range jobs {
		i, j := i, j
		group.Go(func() error {
			res, err := j.run(groupCtx)
			if err != nil {
				logging.WithContext(groupCtx, logger).Error(
					"scan conversion failed",
					logging.String("scan_id", j.scanID),
					logging.Error(err),
				)
				failures[i] = &ConvertError{ScanID: j.scanID, Error: err.Error()}
				return nil
			}
			results[i] = res
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return ConvertAllResult{}, err
	}

	var out ConvertAllResult
	for i := range jobs {
		if results[i] != nil {
			out.Converted = append(out.Converted, *results[i])
		}
		if failures[i] != nil {
			out.Failed = append(out.Failed, *failures[i])
		}
	}
	return out, nil
}

func convertSEVIRI(ctx context.Context, cfg *config.Config, logger *slog.Logger, scanID string, files []string) (*ConvertResult, error) {
	if !cfg.SEVIRI.Enabled {
		return nil, services.Wrap(services.ErrConfiguration, "convert", "dispatch",
			"SEVIRI processing is disabled in the configuration", nil)
	}
	s, err := seviri.NewLoader(calib.Mode(cfg.SEVIRI.CalibMode)).Load(files)
	if err != nil {
		return nil, err
	}
	if override, ok := cfg.SEVIRI.SSPLongitude[s.Platform]; ok {
		s.Geo.SubLonDeg = override
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := seviri.DeriveGeometry(s); err != nil {
		return nil, err
	}
	if scanID == "" {
		scanID = s.Platform + "-" + s.StartTime.UTC().Format("200601021504")
	}
	return writeProduct(ctx, cfg, logger, scanID, s)
}

func convertGAC(ctx context.Context, cfg *config.Config, logger *slog.Logger, path string) (*ConvertResult, error) {
	if !cfg.AVHRR.Enabled {
		return nil, services.Wrap(services.ErrConfiguration, "convert", "dispatch",
			"AVHRR processing is disabled in the configuration", nil)
	}
	s, err := avhrr.NewLoader().Load(path)
	if err != nil {
		return nil, err
	}
	return writeProduct(ctx, cfg, logger, filepath.Base(path), s)
}

func writeProduct(ctx context.Context, cfg *config.Config, logger *slog.Logger, scanID string, s *scene.Scene) (*ConvertResult, error) {
	if err := s.Validate(); err != nil {
		return nil, services.Wrap(services.ErrValidation, "convert", "validate scene",
			"Scene failed consistency checks", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	output, err := level1c.WriteScene(s, cfg.Paths.OutputDir, time.Now().UTC())
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "convert", "write product",
			"Failed to write the level-1c file; check output_dir space and permissions", err)
	}
	logging.WithContext(ctx, logger).Info(
		"scan converted",
		logging.String("scan_id", scanID),
		logging.String("sensor", s.Sensor),
		logging.String("output_file", output),
	)
	return &ConvertResult{
		ScanID:     scanID,
		Sensor:     s.Sensor,
		Platform:   s.Platform,
		OutputFile: output,
	}, nil
}

func segmentFilesIn(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, services.Wrap(services.ErrNotFound, "convert", "scan directory", dir, err)
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if hrit.IsSegmentName(entry.Name()) {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	if len(files) == 0 {
		return nil, services.Wrap(services.ErrValidation, "convert", "scan directory",
			fmt.Sprintf("no HRIT segment files in %s", dir), nil)
	}
	return files, nil
}
