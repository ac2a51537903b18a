package hrit

import "fmt"

// Unpack10Bit expands big-endian 10-bit packed samples into uint16 values.
// Four samples occupy five bytes; trailing pad bits in the final group are
// ignored.
func Unpack10Bit(packed []byte, n int) ([]uint16, error) {
	needed := (n*10 + 7) / 8
	if len(packed) < needed {
		return nil, fmt.Errorf("10-bit unpack: need %d bytes for %d samples, have %d",
			needed, n, len(packed))
	}
	out := make([]uint16, n)
	for i := 0; i < n; i++ {
		bit := i * 10
		byteIdx := bit / 8
		shift := bit % 8
		v := uint32(packed[byteIdx]) << 16
		v |= uint32(packed[byteIdx+1]) << 8
		if byteIdx+2 < len(packed) {
			v |= uint32(packed[byteIdx+2])
		}
		out[i] = uint16(v >> (14 - shift) & 0x3ff)
	}
	return out, nil
}

// Pack10Bit is the inverse of Unpack10Bit. Values above 1023 are truncated
// to 10 bits.
func Pack10Bit(samples []uint16) []byte {
	packed := make([]byte, (len(samples)*10+7)/8)
	for i, s := range samples {
		bit := i * 10
		byteIdx := bit / 8
		shift := bit % 8
		v := uint32(s&0x3ff) << (14 - shift)
		packed[byteIdx] |= byte(v >> 16)
		packed[byteIdx+1] |= byte(v >> 8)
		if byteIdx+2 < len(packed) {
			packed[byteIdx+2] |= byte(v)
		}
	}
	return packed
}
