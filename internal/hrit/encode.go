package hrit

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// FormatSegmentName renders the fixed-width dashed filename for a segment.
func FormatSegmentName(sn SegmentName) string {
	segment := ""
	switch sn.Kind {
	case KindPrologue:
		segment = "PRO______"
	case KindEpilogue:
		segment = "EPI______"
	default:
		segment = fmt.Sprintf("%06d___", sn.Segment)
	}
	return fmt.Sprintf("%s-000-%s-%s-%s-%s-%s-__",
		sn.Rate,
		pad(sn.Format, 6),
		pad(sn.Platform, 12),
		pad(sn.Channel, 9),
		segment,
		sn.Start.UTC().Format("200601021504"))
}

func pad(s string, width int) string {
	for len(s) < width {
		s += "_"
	}
	return s
}

// EncodeSegment serializes a segment back into HRIT file bytes. The header
// block carries the primary, image structure, navigation (when set),
// annotation, and segment identification records.
func EncodeSegment(seg *Segment) ([]byte, error) {
	st := seg.Headers.Structure
	if st == nil {
		return nil, fmt.Errorf("encode segment: missing image structure")
	}
	if int(st.Columns)*int(st.Lines) != len(seg.Samples) {
		return nil, fmt.Errorf("encode segment: %d samples for %dx%d",
			len(seg.Samples), st.Columns, st.Lines)
	}

	var records bytes.Buffer
	writeHeaderRecord(&records, recordImageStructure, func(b *bytes.Buffer) {
		b.WriteByte(st.BitsPerPixel)
		writeBE16(b, st.Columns)
		writeBE16(b, st.Lines)
		b.WriteByte(st.Compression)
	})
	if nav := seg.Headers.Navigation; nav != nil {
		writeHeaderRecord(&records, recordImageNavigation, func(b *bytes.Buffer) {
			name := make([]byte, 32)
			copy(name, nav.ProjectionName)
			b.Write(name)
			writeBE32(b, uint32(nav.CFAC))
			writeBE32(b, uint32(nav.LFAC))
			writeBE32(b, uint32(nav.COFF))
			writeBE32(b, uint32(nav.LOFF))
		})
	}
	if seg.Headers.Annotation != "" {
		writeHeaderRecord(&records, recordAnnotation, func(b *bytes.Buffer) {
			b.WriteString(seg.Headers.Annotation)
		})
	}
	if !seg.Headers.TimeStamp.IsZero() {
		writeHeaderRecord(&records, recordTimeStamp, func(b *bytes.Buffer) {
			elapsed := seg.Headers.TimeStamp.Sub(ccsdsEpoch)
			days := uint16(elapsed.Hours() / 24)
			millis := uint32(elapsed.Milliseconds() - int64(days)*24*3600*1000)
			b.WriteByte(64)
			writeBE16(b, days)
			writeBE32(b, millis)
		})
	}
	if id := seg.Headers.Segment; id != nil {
		writeHeaderRecord(&records, recordSegmentIdentification, func(b *bytes.Buffer) {
			writeBE16(b, id.SpacecraftID)
			b.WriteByte(id.SpectralChannel)
			writeBE16(b, id.SegmentNumber)
			writeBE16(b, id.PlannedStart)
			writeBE16(b, id.PlannedEnd)
			b.WriteByte(id.Representation)
		})
	}

	packed := Pack10Bit(seg.Samples)
	var file bytes.Buffer
	file.WriteByte(recordPrimary)
	writeBE16(&file, 16)
	file.WriteByte(seg.Headers.Primary.FileTypeCode)
	writeBE32(&file, uint32(16+records.Len()))
	writeBE64(&file, uint64(len(seg.Samples)*10))
	file.Write(records.Bytes())
	file.Write(packed)
	return file.Bytes(), nil
}

func writeHeaderRecord(b *bytes.Buffer, recType uint8, payload func(*bytes.Buffer)) {
	var body bytes.Buffer
	payload(&body)
	b.WriteByte(recType)
	writeBE16(b, uint16(body.Len()+3))
	b.Write(body.Bytes())
}

func writeBE16(b *bytes.Buffer, v uint16) {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], v)
	b.Write(buf[:])
}

func writeBE32(b *bytes.Buffer, v uint32) {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	b.Write(buf[:])
}

func writeBE64(b *bytes.Buffer, v uint64) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	b.Write(buf[:])
}
