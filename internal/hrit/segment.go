package hrit

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Segment is one decoded HRIT image segment: its parsed filename, header
// block, and unpacked pixel samples in scan order.
type Segment struct {
	Name    SegmentName
	Headers *Headers
	Samples []uint16
}

// ReadSegmentFile opens and decodes an HRIT image segment file. Prologue and
// epilogue files carry no image data and are rejected.
func ReadSegmentFile(path string) (*Segment, error) {
	name, err := ParseSegmentName(filepath.Base(path))
	if err != nil {
		return nil, err
	}
	if name.Kind != KindImage {
		return nil, fmt.Errorf("%s: not an image segment", filepath.Base(path))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open segment: %w", err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat segment: %w", err)
	}
	return readSegment(name, bufio.NewReader(f), info.Size())
}

// readSegment decodes a segment from r. size bounds the data field
// allocation so a corrupt header length cannot exhaust memory.
func readSegment(name SegmentName, r io.Reader, size int64) (*Segment, error) {
	headers, err := ParseHeaders(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name.Channel, err)
	}
	if headers.Structure == nil {
		return nil, fmt.Errorf("%s segment %d: missing image structure record", name.Channel, name.Segment)
	}
	if headers.Structure.Compression != 0 {
		return nil, fmt.Errorf("%s segment %d: compressed data fields are not supported", name.Channel, name.Segment)
	}
	if headers.Structure.BitsPerPixel != 10 {
		return nil, fmt.Errorf("%s segment %d: %d bits per pixel, want 10",
			name.Channel, name.Segment, headers.Structure.BitsPerPixel)
	}

	dataBytes := (headers.Primary.DataFieldLength + 7) / 8
	if size >= 0 && dataBytes > uint64(size) {
		return nil, fmt.Errorf("%s segment %d: data field of %d bytes exceeds the %d byte file",
			name.Channel, name.Segment, dataBytes, size)
	}
	packed := make([]byte, dataBytes)
	if _, err := io.ReadFull(r, packed); err != nil {
		return nil, fmt.Errorf("%s segment %d: read data field: %w", name.Channel, name.Segment, err)
	}

	n := int(headers.Structure.Columns) * int(headers.Structure.Lines)
	samples, err := Unpack10Bit(packed, n)
	if err != nil {
		return nil, fmt.Errorf("%s segment %d: %w", name.Channel, name.Segment, err)
	}
	return &Segment{Name: name, Headers: headers, Samples: samples}, nil
}
