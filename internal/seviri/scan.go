package seviri

import (
	"path/filepath"
	"sort"
	"time"

	"pps1c/internal/hrit"
)

// SegmentsPerBand is the number of image segments a full-disc repeat cycle
// delivers per channel.
const SegmentsPerBand = 8

// Scan collects the HRIT segment files of one repeat cycle, keyed by
// channel then segment number.
type Scan struct {
	Platform string
	Start    time.Time
	Segments map[string]map[int]string
}

// Key identifies the scan, matching hrit.SegmentName.ScanKey.
func (s *Scan) Key() string {
	return s.Platform + "-" + s.Start.Format("200601021504")
}

// Complete reports whether every level-1c band has all its segments.
func (s *Scan) Complete() bool {
	for _, band := range Bands {
		if len(s.Segments[band.Channel]) != SegmentsPerBand {
			return false
		}
	}
	return true
}

// SourceFiles returns all segment paths of the scan in a stable order.
func (s *Scan) SourceFiles() []string {
	var files []string
	for _, segments := range s.Segments {
		for _, path := range segments {
			files = append(files, path)
		}
	}
	sort.Strings(files)
	return files
}

func (s *Scan) add(path string, sn hrit.SegmentName) {
	if s.Segments == nil {
		s.Segments = make(map[string]map[int]string)
	}
	if s.Segments[sn.Channel] == nil {
		s.Segments[sn.Channel] = make(map[int]string)
	}
	s.Segments[sn.Channel][sn.Segment] = path
}

// GroupSegments buckets HRIT image segment paths into scans by platform and
// start time. Files that are not parseable segment names, prologue and
// epilogue files, and channels outside the band list are skipped.
func GroupSegments(paths []string) map[string]*Scan {
	scans := make(map[string]*Scan)
	for _, path := range paths {
		sn, err := hrit.ParseSegmentName(filepath.Base(path))
		if err != nil || sn.Kind != hrit.KindImage {
			continue
		}
		if _, ok := BandForChannel(sn.Channel); !ok {
			continue
		}
		key := sn.ScanKey()
		scan, ok := scans[key]
		if !ok {
			scan = &Scan{Platform: sn.Platform, Start: sn.Start}
			scans[key] = scan
		}
		scan.add(path, sn)
	}
	return scans
}
