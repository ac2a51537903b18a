package level1c

import (
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"time"

	"pps1c/internal/ncwriter"
	"pps1c/internal/scene"
)

// WriteScene packs a calibrated scene into a level-1c netCDF file under dir
// and returns the full output path. The file is placed atomically.
func WriteScene(s *scene.Scene, dir string, now time.Time) (string, error) {
	if err := s.Validate(); err != nil {
		return "", fmt.Errorf("write level1c: %w", err)
	}

	f := ncwriter.NewFile()
	y, err := f.AddDim("y", s.Rows)
	if err != nil {
		return "", err
	}
	x, err := f.AddDim("x", s.Cols)
	if err != nil {
		return "", err
	}

	writeHeaderAttrs(f, s, now)

	for _, band := range s.Bands {
		enc := BandEncoding(band.IDTag)
		if err := addPackedField(f, band, enc, y, x, nil); err != nil {
			return "", err
		}
	}
	for _, angle := range s.Angles {
		spec, ok := AngleSpecFor(angle.IDTag)
		if !ok {
			return "", fmt.Errorf("write level1c: unknown angle id_tag %q", angle.IDTag)
		}
		if err := addPackedField(f, angle, AngleEncoding(), y, x, &spec); err != nil {
			return "", err
		}
	}
	if err := addCoordField(f, s.Lat, "latitude", "latitude coordinate", "degrees_north", y, x); err != nil {
		return "", err
	}
	if err := addCoordField(f, s.Lon, "longitude", "longitude coordinate", "degrees_east", y, x); err != nil {
		return "", err
	}
	for _, line := range s.Lines {
		if err := addLine(f, line, y); err != nil {
			return "", err
		}
	}
	for _, fi := range s.Ints {
		if err := addIntField(f, fi, y, x); err != nil {
			return "", err
		}
	}
	for _, sc := range s.Scalars {
		if err := addScalar(f, sc); err != nil {
			return "", err
		}
	}

	path := filepath.Join(dir, OutputFilename(s.Sensor, s.Platform, s.OrbitNumber, s.StartTime, s.EndTime))
	if err := f.WriteFile(path); err != nil {
		return "", err
	}
	return path, nil
}

func writeHeaderAttrs(f *ncwriter.File, s *scene.Scene, now time.Time) {
	instrument := s.Sensor
	attrs := HeaderAttrs(s.Sensor, s.Platform, instrument, s.OrbitNumber, s.StartTime, s.EndTime, now)
	for k, v := range s.HeaderAttrs {
		attrs[k] = v
	}
	for _, k := range sortedKeys(attrs) {
		f.AddGlobalAttr(k, attrs[k])
	}
}

func addPackedField(f *ncwriter.File, field *scene.Field, enc Encoding, y, x *ncwriter.Dim, spec *AngleSpec) error {
	v, err := f.AddVar(field.Name, ncwriter.Short, y, x)
	if err != nil {
		return err
	}
	v.AddAttr("_FillValue", FillValue)
	v.AddAttr("scale_factor", enc.ScaleFactor)
	v.AddAttr("add_offset", enc.AddOffset)
	if spec != nil {
		v.AddAttr("valid_range", []int16{spec.ValidMin, spec.ValidMax})
		for _, k := range sortedKeys(spec.AngleAttrs()) {
			v.AddAttr(k, spec.AngleAttrs()[k])
		}
	} else {
		for _, k := range sortedKeys(field.Attrs) {
			v.AddAttr(k, field.Attrs[k])
		}
		for _, k := range sortedKeys(field.NumAttrs) {
			v.AddAttr(k, field.NumAttrs[k])
		}
	}

	packed := make([]int16, len(field.Values))
	for i, value := range field.Values {
		packed[i] = enc.Pack(float64(value))
	}
	v.SetShorts(packed)
	return nil
}

func addCoordField(f *ncwriter.File, field *scene.Field, standardName, longName, units string, y, x *ncwriter.Dim) error {
	v, err := f.AddVar(field.Name, ncwriter.Float, y, x)
	if err != nil {
		return err
	}
	v.AddAttr("_FillValue", CoordFill)
	v.AddAttr("standard_name", standardName)
	v.AddAttr("long_name", longName)
	v.AddAttr("units", units)

	values := make([]float32, len(field.Values))
	for i, value := range field.Values {
		if math.IsNaN(float64(value)) {
			values[i] = CoordFill
		} else {
			values[i] = value
		}
	}
	v.SetFloats(values)
	return nil
}

func addLine(f *ncwriter.File, line *scene.Line, y *ncwriter.Dim) error {
	v, err := f.AddVar(line.Name, ncwriter.Double, y)
	if err != nil {
		return err
	}
	for _, k := range sortedKeys(line.Attrs) {
		v.AddAttr(k, line.Attrs[k])
	}
	values := make([]float64, len(line.Values))
	for i, value := range line.Values {
		values[i] = float64(value)
	}
	v.SetDoubles(values)
	return nil
}

func addIntField(f *ncwriter.File, fi *scene.IntField, y, x *ncwriter.Dim) error {
	width := x
	if fi.Cols != x.Len() {
		var err error
		width, err = f.AddDim(fi.Name+"_width", fi.Cols)
		if err != nil {
			return err
		}
	}
	v, err := f.AddVar(fi.Name, ncwriter.Int, y, width)
	if err != nil {
		return err
	}
	for _, k := range sortedKeys(fi.Attrs) {
		v.AddAttr(k, fi.Attrs[k])
	}
	v.SetInts(fi.Values)
	return nil
}

func addScalar(f *ncwriter.File, sc *scene.Scalar) error {
	v, err := f.AddVar(sc.Name, ncwriter.Int)
	if err != nil {
		return err
	}
	for _, k := range sortedKeys(sc.Attrs) {
		v.AddAttr(k, sc.Attrs[k])
	}
	v.SetInts([]int32{sc.Value})
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
