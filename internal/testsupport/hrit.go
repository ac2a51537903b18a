package testsupport

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"pps1c/internal/hrit"
)

// SEVIRIScanSpec controls the synthetic repeat cycle written by
// WriteSEVIRIScan. Zero values fall back to a small on-disc grid.
type SEVIRIScanSpec struct {
	Platform     string
	Start        time.Time
	Cols         int
	SegmentLines int
	Count        uint16 // raw detector count for every pixel
}

func (spec *SEVIRIScanSpec) fill() {
	if spec.Platform == "" {
		spec.Platform = "MSG4"
	}
	if spec.Start.IsZero() {
		spec.Start = time.Date(2021, 1, 1, 12, 0, 0, 0, time.UTC)
	}
	if spec.Cols == 0 {
		spec.Cols = 6
	}
	if spec.SegmentLines == 0 {
		spec.SegmentLines = 2
	}
	if spec.Count == 0 {
		spec.Count = 100
	}
}

// WriteSEVIRISegment writes one synthetic HRIT image segment and returns
// its path. The navigation record centers the small grid on the sub-
// satellite point so every pixel geolocates on-disc.
func WriteSEVIRISegment(t testing.TB, dir, channel string, segment int, spec SEVIRIScanSpec) string {
	t.Helper()
	spec.fill()

	name := hrit.SegmentName{
		Rate:     "H",
		Format:   spec.Platform,
		Platform: spec.Platform,
		Channel:  channel,
		Kind:     hrit.KindImage,
		Segment:  segment,
		Start:    spec.Start,
	}
	rows := spec.SegmentLines * 8
	samples := make([]uint16, spec.Cols*spec.SegmentLines)
	for i := range samples {
		samples[i] = spec.Count
	}
	seg := &hrit.Segment{
		Name: name,
		Headers: &hrit.Headers{
			Structure: &hrit.ImageStructure{
				BitsPerPixel: 10,
				Columns:      uint16(spec.Cols),
				Lines:        uint16(spec.SegmentLines),
			},
			Navigation: &hrit.ImageNavigation{
				ProjectionName: "GEOS(+000.0)",
				CFAC:           13642337,
				LFAC:           13642337,
				COFF:           int32(spec.Cols / 2),
				LOFF:           int32(rows / 2),
			},
			Segment: &hrit.SegmentIdentification{
				SegmentNumber: uint16(segment),
				PlannedStart:  1,
				PlannedEnd:    8,
			},
		},
		Samples: samples,
	}

	encoded, err := hrit.EncodeSegment(seg)
	if err != nil {
		t.Fatalf("encode segment: %v", err)
	}
	path := filepath.Join(dir, hrit.FormatSegmentName(name))
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		t.Fatalf("write segment %s: %v", path, err)
	}
	return path
}

// SEVIRIChannels is the full channel list of a level-1c repeat cycle.
var SEVIRIChannels = []string{
	"VIS006", "VIS008", "IR_016", "IR_039", "IR_087", "IR_108",
	"IR_120", "IR_134", "IR_097", "WV_062", "WV_073",
}

// WriteSEVIRIScan writes a complete synthetic repeat cycle (all channels,
// all eight segments) into dir and returns the file paths.
func WriteSEVIRIScan(t testing.TB, dir string, spec SEVIRIScanSpec) []string {
	t.Helper()
	var paths []string
	for _, channel := range SEVIRIChannels {
		for segment := 1; segment <= 8; segment++ {
			paths = append(paths, WriteSEVIRISegment(t, dir, channel, segment, spec))
		}
	}
	return paths
}
