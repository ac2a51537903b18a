package level1c

import "strings"

// FillValue is the packed fill for int16 datasets.
const FillValue int16 = -32767

// CoordFill marks missing geolocation in the float32 lat/lon datasets.
const CoordFill float32 = -999.0

// Encoding describes how a physical field is packed into the output file:
// packed = (value - AddOffset) / ScaleFactor.
type Encoding struct {
	ScaleFactor float64
	AddOffset   float64
}

// BandEncoding returns the packing for a band given its id_tag. Brightness
// temperatures are offset by 273.15 so the int16 range centers on
// terrestrial temperatures; reflectances are stored as scaled percent.
func BandEncoding(idTag string) Encoding {
	if strings.HasPrefix(idTag, "ch_tb") {
		return Encoding{ScaleFactor: 0.01, AddOffset: 273.15}
	}
	return Encoding{ScaleFactor: 0.01, AddOffset: 0.0}
}

// AngleEncoding is the packing shared by all angle datasets.
func AngleEncoding() Encoding {
	return Encoding{ScaleFactor: 0.01, AddOffset: 0.0}
}

// Pack converts a physical value to its packed int16 representation,
// clamping to the representable range. NaN packs to the fill value.
func (e Encoding) Pack(value float64) int16 {
	if value != value {
		return FillValue
	}
	packed := (value - e.AddOffset) / e.ScaleFactor
	switch {
	case packed >= 32767:
		return 32767
	case packed <= -32766:
		return -32766
	case packed >= 0:
		return int16(packed + 0.5)
	default:
		return int16(packed - 0.5)
	}
}

// Unpack is the inverse of Pack for non-fill values.
func (e Encoding) Unpack(packed int16) float64 {
	return float64(packed)*e.ScaleFactor + e.AddOffset
}
