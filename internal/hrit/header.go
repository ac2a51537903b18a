package hrit

import (
	"encoding/binary"
	"fmt"
	"io"
	"strings"
	"time"
)

// LRIT/HRIT header record types.
const (
	recordPrimary               = 0
	recordImageStructure        = 1
	recordImageNavigation       = 2
	recordAnnotation            = 4
	recordTimeStamp             = 5
	recordSegmentIdentification = 128
)

// PrimaryHeader is the mandatory first header record of every HRIT file.
type PrimaryHeader struct {
	FileTypeCode      uint8
	TotalHeaderLength uint32
	DataFieldLength   uint64 // in bits
}

// ImageStructure describes the sample layout of an image data field.
type ImageStructure struct {
	BitsPerPixel uint8
	Columns      uint16
	Lines        uint16
	Compression  uint8
}

// ImageNavigation carries the scaled projection coefficients of the
// normalized geostationary projection.
type ImageNavigation struct {
	ProjectionName string
	CFAC           int32
	LFAC           int32
	COFF           int32
	LOFF           int32
}

// SegmentIdentification is the MSG-specific record locating an image segment
// within the full disc.
type SegmentIdentification struct {
	SpacecraftID    uint16
	SpectralChannel uint8
	SegmentNumber   uint16
	PlannedStart    uint16
	PlannedEnd      uint16
	Representation  uint8
}

// Headers aggregates the parsed header records of one HRIT file. Optional
// records are nil when absent.
type Headers struct {
	Primary    PrimaryHeader
	Structure  *ImageStructure
	Navigation *ImageNavigation
	Segment    *SegmentIdentification
	Annotation string
	TimeStamp  time.Time
}

// ccsdsEpoch is the CCSDS day-segmented time code epoch.
var ccsdsEpoch = time.Date(1958, 1, 1, 0, 0, 0, 0, time.UTC)

// ParseHeaders reads the header block from the start of an HRIT file. The
// reader is left positioned at the first byte of the data field.
func ParseHeaders(r io.Reader) (*Headers, error) {
	var rec [3]byte
	if _, err := io.ReadFull(r, rec[:]); err != nil {
		return nil, fmt.Errorf("read primary header: %w", err)
	}
	if rec[0] != recordPrimary {
		return nil, fmt.Errorf("first header record has type %d, want primary", rec[0])
	}
	if length := binary.BigEndian.Uint16(rec[1:3]); length != 16 {
		return nil, fmt.Errorf("primary header record has length %d, want 16", length)
	}

	var primary [13]byte
	if _, err := io.ReadFull(r, primary[:]); err != nil {
		return nil, fmt.Errorf("read primary header: %w", err)
	}
	h := &Headers{
		Primary: PrimaryHeader{
			FileTypeCode:      primary[0],
			TotalHeaderLength: binary.BigEndian.Uint32(primary[1:5]),
			DataFieldLength:   binary.BigEndian.Uint64(primary[5:13]),
		},
	}
	if h.Primary.TotalHeaderLength < 16 {
		return nil, fmt.Errorf("total header length %d shorter than the primary record", h.Primary.TotalHeaderLength)
	}

	rest := make([]byte, h.Primary.TotalHeaderLength-16)
	if _, err := io.ReadFull(r, rest); err != nil {
		return nil, fmt.Errorf("read header block: %w", err)
	}
	for len(rest) > 0 {
		if len(rest) < 3 {
			return nil, fmt.Errorf("truncated header record, %d trailing bytes", len(rest))
		}
		recType := rest[0]
		recLen := int(binary.BigEndian.Uint16(rest[1:3]))
		if recLen < 3 || recLen > len(rest) {
			return nil, fmt.Errorf("header record type %d has bad length %d", recType, recLen)
		}
		payload := rest[3:recLen]
		if err := h.decodeRecord(recType, payload); err != nil {
			return nil, err
		}
		rest = rest[recLen:]
	}
	return h, nil
}

func (h *Headers) decodeRecord(recType uint8, payload []byte) error {
	switch recType {
	case recordImageStructure:
		if len(payload) != 6 {
			return fmt.Errorf("image structure record has %d payload bytes, want 6", len(payload))
		}
		h.Structure = &ImageStructure{
			BitsPerPixel: payload[0],
			Columns:      binary.BigEndian.Uint16(payload[1:3]),
			Lines:        binary.BigEndian.Uint16(payload[3:5]),
			Compression:  payload[5],
		}
	case recordImageNavigation:
		if len(payload) != 48 {
			return fmt.Errorf("image navigation record has %d payload bytes, want 48", len(payload))
		}
		h.Navigation = &ImageNavigation{
			ProjectionName: strings.TrimRight(string(payload[:32]), " \x00"),
			CFAC:           int32(binary.BigEndian.Uint32(payload[32:36])),
			LFAC:           int32(binary.BigEndian.Uint32(payload[36:40])),
			COFF:           int32(binary.BigEndian.Uint32(payload[40:44])),
			LOFF:           int32(binary.BigEndian.Uint32(payload[44:48])),
		}
	case recordAnnotation:
		h.Annotation = strings.TrimRight(string(payload), " \x00")
	case recordTimeStamp:
		if len(payload) != 7 {
			return fmt.Errorf("time stamp record has %d payload bytes, want 7", len(payload))
		}
		days := binary.BigEndian.Uint16(payload[1:3])
		millis := binary.BigEndian.Uint32(payload[3:7])
		h.TimeStamp = ccsdsEpoch.Add(time.Duration(days)*24*time.Hour +
			time.Duration(millis)*time.Millisecond)
	case recordSegmentIdentification:
		if len(payload) != 10 {
			return fmt.Errorf("segment identification record has %d payload bytes, want 10", len(payload))
		}
		h.Segment = &SegmentIdentification{
			SpacecraftID:    binary.BigEndian.Uint16(payload[0:2]),
			SpectralChannel: payload[2],
			SegmentNumber:   binary.BigEndian.Uint16(payload[3:5]),
			PlannedStart:    binary.BigEndian.Uint16(payload[5:7]),
			PlannedEnd:      binary.BigEndian.Uint16(payload[7:9]),
			Representation:  payload[9],
		}
	default:
		// Unknown records are skipped; the record length framing makes
		// that safe.
	}
	return nil
}
