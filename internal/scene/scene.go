package scene

import (
	"fmt"
	"time"
)

// Field is a single 2-D dataset of a scene: a calibrated band, an angle
// grid, geolocation, or auxiliary per-scanline data.
type Field struct {
	// Name is the output dataset name, for example "image1" or "lat".
	Name string
	// IDTag is the PPS product tag, for example "ch_r06" or "sunzenith".
	IDTag string
	Rows  int
	Cols  int
	// Values holds the field in row-major order. NaN marks missing pixels.
	Values []float32
	// Attrs carries the dataset attributes to be written verbatim.
	Attrs map[string]string
	// NumAttrs carries numeric dataset attributes, such as the sun-earth
	// distance correction factor.
	NumAttrs map[string]float64
}

// At returns the value at the given row and column.
func (f *Field) At(row, col int) float32 {
	return f.Values[row*f.Cols+col]
}

// Validate checks the field dimensions against its payload.
func (f *Field) Validate() error {
	if f.Name == "" {
		return fmt.Errorf("field with id_tag %q has no name", f.IDTag)
	}
	if f.Rows <= 0 || f.Cols <= 0 {
		return fmt.Errorf("field %s: bad shape %dx%d", f.Name, f.Rows, f.Cols)
	}
	if len(f.Values) != f.Rows*f.Cols {
		return fmt.Errorf("field %s: %d values for shape %dx%d",
			f.Name, len(f.Values), f.Rows, f.Cols)
	}
	return nil
}

// Line is a 1-D auxiliary dataset along the scanline dimension, such as
// acquisition timestamps.
type Line struct {
	Name   string
	IDTag  string
	Values []int64
	Attrs  map[string]string
}

// IntField is a 2-D integer dataset whose second dimension is independent of
// the pixel grid, such as the GAC per-scanline quality flags.
type IntField struct {
	Name   string
	IDTag  string
	Rows   int
	Cols   int
	Values []int32
	Attrs  map[string]string
}

// Scalar is a single-value integer dataset carried through from the input,
// such as the GAC overlap bookkeeping lines.
type Scalar struct {
	Name  string
	IDTag string
	Value int32
	Attrs map[string]string
}

// Geo carries the normalized geostationary projection of a scene whose
// geolocation is derived rather than read from the input.
type Geo struct {
	Valid     bool
	SubLonDeg float64
	CFAC      int32
	LFAC      int32
	COFF      int32
	LOFF      int32
}

// Scene is the decoded, calibrated form of one scan, independent of the
// input format. It is the unit passed between the pipeline stages.
type Scene struct {
	Sensor      string // "seviri" or "avhrr"
	Platform    string
	OrbitNumber string
	StartTime   time.Time
	EndTime     time.Time
	Rows        int
	Cols        int

	Bands   []*Field
	Angles  []*Field
	Lat     *Field
	Lon     *Field
	Lines   []*Line
	Ints    []*IntField
	Scalars []*Scalar
	Geo     Geo

	// HeaderAttrs are written as global attributes of the level-1c file.
	HeaderAttrs map[string]string
}

// Band returns the band with the given id_tag, or nil.
func (s *Scene) Band(idTag string) *Field {
	for _, b := range s.Bands {
		if b.IDTag == idTag {
			return b
		}
	}
	return nil
}

// Angle returns the angle field with the given id_tag, or nil.
func (s *Scene) Angle(idTag string) *Field {
	for _, a := range s.Angles {
		if a.IDTag == idTag {
			return a
		}
	}
	return nil
}

// Validate checks internal consistency of the scene before it is handed to
// the writer stage.
func (s *Scene) Validate() error {
	if s.Sensor == "" || s.Platform == "" {
		return fmt.Errorf("scene missing sensor or platform")
	}
	if s.StartTime.IsZero() || s.EndTime.IsZero() {
		return fmt.Errorf("scene missing start or end time")
	}
	if len(s.Bands) == 0 {
		return fmt.Errorf("scene has no bands")
	}
	if s.Lat == nil || s.Lon == nil {
		return fmt.Errorf("scene has no geolocation")
	}
	fields := make([]*Field, 0, len(s.Bands)+len(s.Angles)+2)
	fields = append(fields, s.Bands...)
	fields = append(fields, s.Angles...)
	fields = append(fields, s.Lat, s.Lon)
	for _, f := range fields {
		if err := f.Validate(); err != nil {
			return err
		}
		if f.Rows != s.Rows || f.Cols != s.Cols {
			return fmt.Errorf("field %s: shape %dx%d does not match scene %dx%d",
				f.Name, f.Rows, f.Cols, s.Rows, s.Cols)
		}
	}
	for _, fi := range s.Ints {
		if len(fi.Values) != fi.Rows*fi.Cols {
			return fmt.Errorf("field %s: %d values for shape %dx%d",
				fi.Name, len(fi.Values), fi.Rows, fi.Cols)
		}
		if fi.Rows != s.Rows {
			return fmt.Errorf("field %s: %d rows does not match scene %d", fi.Name, fi.Rows, s.Rows)
		}
	}
	for _, l := range s.Lines {
		if len(l.Values) != s.Rows {
			return fmt.Errorf("line %s: %d values for %d scanlines", l.Name, len(l.Values), s.Rows)
		}
	}
	return nil
}
