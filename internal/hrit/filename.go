package hrit

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SegmentKind distinguishes image segments from the per-cycle prologue and
// epilogue files.
type SegmentKind int

const (
	KindImage SegmentKind = iota
	KindPrologue
	KindEpilogue
)

// SegmentName holds the fields encoded in an HRIT segment filename, for
// example H-000-MSG3__-MSG3________-IR_120___-000003___-201410051115-__.
type SegmentName struct {
	Rate     string
	Format   string
	Platform string
	Channel  string
	Kind     SegmentKind
	Segment  int // 1-based image segment number, 0 for prologue/epilogue
	Start    time.Time
}

// segmentNameLength is the fixed width of the dashed filename layout.
const segmentNameLength = 61

// ParseSegmentName decodes an HRIT segment filename. Fields are fixed-width
// and padded with underscores.
func ParseSegmentName(name string) (SegmentName, error) {
	if len(name) != segmentNameLength {
		return SegmentName{}, fmt.Errorf("segment name %q: expected %d characters, got %d",
			name, segmentNameLength, len(name))
	}
	for _, pos := range []int{1, 5, 12, 25, 35, 45, 58} {
		if name[pos] != '-' {
			return SegmentName{}, fmt.Errorf("segment name %q: malformed at position %d", name, pos)
		}
	}

	sn := SegmentName{
		Rate:     name[0:1],
		Format:   strings.TrimRight(name[6:12], "_"),
		Platform: strings.TrimRight(name[13:25], "_"),
		Channel:  strings.TrimRight(name[26:35], "_"),
	}

	segment := strings.TrimRight(name[36:45], "_")
	switch segment {
	case "PRO":
		sn.Kind = KindPrologue
	case "EPI":
		sn.Kind = KindEpilogue
	default:
		n, err := strconv.Atoi(segment)
		if err != nil {
			return SegmentName{}, fmt.Errorf("segment name %q: bad segment field %q", name, segment)
		}
		sn.Kind = KindImage
		sn.Segment = n
	}

	start, err := time.ParseInLocation("200601021504", name[46:58], time.UTC)
	if err != nil {
		return SegmentName{}, fmt.Errorf("segment name %q: bad start time: %w", name, err)
	}
	sn.Start = start
	return sn, nil
}

// ScanKey identifies the repeat cycle a segment belongs to. All segments of
// one full-disc scan share the platform and the nominal start time.
func (sn SegmentName) ScanKey() string {
	return sn.Platform + "-" + sn.Start.Format("200601021504")
}

// IsSegmentName reports whether a filename looks like an HRIT segment.
func IsSegmentName(name string) bool {
	_, err := ParseSegmentName(name)
	return err == nil
}
