package avhrr

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"

	"pps1c/internal/geom"
	"pps1c/internal/scene"
	"pps1c/internal/services"
)

// OrbitNumber is the fixed orbit field, matching the geostationary output.
const OrbitNumber = "99999"

// Loader converts one EUMETSAT AVHRR GAC FDR file into a scene.
type Loader struct{}

// NewLoader returns a GAC FDR loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads the FDR netCDF file at path.
func (l *Loader) Load(path string) (*scene.Scene, error) {
	nc, err := netcdf.Open(path)
	if err != nil {
		return nil, services.Wrap(services.ErrDecode, "load", "avhrr", filepath.Base(path), err)
	}
	defer nc.Close()

	available := nc.ListVariables()
	if !slices.Contains(available, referenceDataset) {
		return nil, services.Wrap(services.ErrValidation, "load", "avhrr",
			fmt.Sprintf("not AVHRR GAC FDR data: missing %s", referenceDataset), nil)
	}

	globals := stringAttrs(nc.Attributes())
	reference, err := nc.GetVariable(referenceDataset)
	if err != nil {
		return nil, services.Wrap(services.ErrDecode, "load", "avhrr", referenceDataset, err)
	}
	refAttrs := stringAttrs(reference.Attributes)

	platform := lastChainElement(pick(globals, refAttrs, "platform"))
	if platform == "" {
		return nil, services.Wrap(services.ErrValidation, "load", "avhrr",
			"input carries no platform attribute", nil)
	}
	instrument := lastChainElement(pick(globals, refAttrs, "instrument"))
	if instrument == "" {
		instrument = "avhrr"
	}

	start, end, err := sceneTimes(filepath.Base(path), globals)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "load", "avhrr", filepath.Base(path), err)
	}

	refGrid, err := readGrid(reference)
	if err != nil {
		return nil, services.Wrap(services.ErrDecode, "load", "avhrr", referenceDataset, err)
	}

	s := &scene.Scene{
		Sensor:      "avhrr",
		Platform:    platform,
		OrbitNumber: OrbitNumber,
		StartTime:   start,
		EndTime:     end,
		Rows:        refGrid.rows,
		Cols:        refGrid.cols,
		HeaderAttrs: headerAttrs(globals),
	}

	sunEarthFactor := attrFloat(reference.Attributes, "sun_earth_distance_correction_factor",
		attrFloat(nc.Attributes(), "sun_earth_distance_correction_factor", 1.0))

	imageNumber := 0
	for _, band := range Bands {
		if !slices.Contains(available, band.Dataset) {
			continue
		}
		v, err := nc.GetVariable(band.Dataset)
		if err != nil {
			return nil, services.Wrap(services.ErrDecode, "load", "avhrr", band.Dataset, err)
		}
		g, err := readGrid(v)
		if err != nil {
			return nil, services.Wrap(services.ErrDecode, "load", "avhrr", band.Dataset, err)
		}
		if g.rows != s.Rows || g.cols != s.Cols {
			return nil, services.Wrap(services.ErrDecode, "load", "avhrr",
				fmt.Sprintf("%s grid %dx%d does not match %dx%d",
					band.Dataset, g.rows, g.cols, s.Rows, s.Cols), nil)
		}
		s.Bands = append(s.Bands, l.bandField(band, v, g, imageNumber, platform, instrument, sunEarthFactor))
		imageNumber++
	}
	if len(s.Bands) == 0 {
		return nil, services.Wrap(services.ErrValidation, "load", "avhrr", "no usable bands", nil)
	}

	if err := l.addGeolocation(nc, available, s); err != nil {
		return nil, err
	}
	if err := l.addAngles(nc, available, s); err != nil {
		return nil, err
	}
	l.addAncillary(nc, available, s)
	return s, nil
}

func (l *Loader) bandField(band Band, v *api.Variable, g *grid, imageNumber int,
	platform, instrument string, sunEarthFactor float64) *scene.Field {

	attrs := cleanBandAttrs(stringAttrs(v.Attributes))
	attrs["id_tag"] = band.IDTag
	attrs["units"] = band.units()
	attrs["coordinates"] = "lon lat"
	attrs["platform"] = platform
	attrs["instrument"] = instrument

	field := &scene.Field{
		Name:   fmt.Sprintf("image%d", imageNumber),
		IDTag:  band.IDTag,
		Rows:   g.rows,
		Cols:   g.cols,
		Values: g.float32Values(),
		Attrs:  attrs,
	}
	if band.Refl {
		// GAC reflectances always arrive distance-corrected.
		attrs["sun_earth_distance_correction_applied"] = "True"
		field.NumAttrs = map[string]float64{
			"sun_earth_distance_correction_factor": sunEarthFactor,
		}
	}
	return field
}

func (l *Loader) addGeolocation(nc api.Group, available []string, s *scene.Scene) error {
	for _, coord := range []struct {
		dataset string
		name    string
	}{
		{"latitude", "lat"},
		{"longitude", "lon"},
	} {
		if !slices.Contains(available, coord.dataset) {
			return services.Wrap(services.ErrValidation, "load", "avhrr",
				fmt.Sprintf("missing %s dataset", coord.dataset), nil)
		}
		v, err := nc.GetVariable(coord.dataset)
		if err != nil {
			return services.Wrap(services.ErrDecode, "load", "avhrr", coord.dataset, err)
		}
		g, err := readGrid(v)
		if err != nil {
			return services.Wrap(services.ErrDecode, "load", "avhrr", coord.dataset, err)
		}
		field := &scene.Field{
			Name:   coord.name,
			IDTag:  coord.name,
			Rows:   g.rows,
			Cols:   g.cols,
			Values: g.float32Values(),
		}
		if coord.name == "lat" {
			s.Lat = field
		} else {
			s.Lon = field
		}
	}
	return nil
}

// addAngles converts the FDR angle datasets to the PPS convention. The
// azimuth difference dataset is preferred; when absent it is derived from
// the two azimuth datasets.
func (l *Loader) addAngles(nc api.Group, available []string, s *scene.Scene) error {
	readAngle := func(dataset string) (*grid, error) {
		v, err := nc.GetVariable(dataset)
		if err != nil {
			return nil, services.Wrap(services.ErrDecode, "load", "avhrr", dataset, err)
		}
		g, err := readGrid(v)
		if err != nil {
			return nil, services.Wrap(services.ErrDecode, "load", "avhrr", dataset, err)
		}
		return g, nil
	}

	sunz, err := readAngle("solar_zenith_angle")
	if err != nil {
		return err
	}
	satz, err := readAngle("sensor_zenith_angle")
	if err != nil {
		return err
	}

	var azid []float32
	if slices.Contains(available, "sun_sensor_azimuth_difference_angle") {
		g, err := readAngle("sun_sensor_azimuth_difference_angle")
		if err != nil {
			return err
		}
		azid = make([]float32, len(g.values))
		for i, v := range g.values {
			azid[i] = float32(geom.AzimuthDifference(v, 0))
		}
	} else {
		suna, err := readAngle("solar_azimuth_angle")
		if err != nil {
			return err
		}
		sata, err := readAngle("sensor_azimuth_angle")
		if err != nil {
			return err
		}
		azid = make([]float32, len(suna.values))
		for i := range suna.values {
			azid[i] = float32(geom.AzimuthDifference(suna.values[i], sata.values[i]))
		}
	}

	s.Angles = []*scene.Field{
		{Name: "image11", IDTag: "sunzenith", Rows: s.Rows, Cols: s.Cols, Values: sunz.float32Values()},
		{Name: "image12", IDTag: "satzenith", Rows: s.Rows, Cols: s.Cols, Values: satz.float32Values()},
		{Name: "image13", IDTag: "azimuthdiff", Rows: s.Rows, Cols: s.Cols, Values: azid},
	}
	return nil
}

// addAncillary carries the GAC-specific datasets through: the scanline
// acquisition times, the pygac quality flags, and the overlap bookkeeping
// scalars. All are optional.
func (l *Loader) addAncillary(nc api.Group, available []string, s *scene.Scene) {
	if slices.Contains(available, "acq_time") {
		if v, err := nc.GetVariable("acq_time"); err == nil {
			if values, err := readVector(v); err == nil && len(values) == s.Rows {
				attrs := cleanBandAttrs(stringAttrs(v.Attributes))
				attrs["name"] = "scanline_timestamps"
				s.Lines = append(s.Lines, &scene.Line{
					Name:   "scanline_timestamps",
					IDTag:  "scanline_timestamps",
					Values: values,
					Attrs:  attrs,
				})
			}
		}
	}
	if slices.Contains(available, "qual_flags") {
		if v, err := nc.GetVariable("qual_flags"); err == nil {
			if rows, cols, values, err := readIntGrid(v); err == nil && rows == s.Rows {
				s.Ints = append(s.Ints, &scene.IntField{
					Name:   "qual_flags",
					IDTag:  "qual_flags",
					Rows:   rows,
					Cols:   cols,
					Values: values,
					Attrs: map[string]string{
						"id_tag":    "qual_flags",
						"long_name": "pygac quality flags",
					},
				})
			}
		}
	}
	for _, name := range []string{"overlap_free_end", "midnight_line"} {
		if !slices.Contains(available, name) {
			continue
		}
		v, err := nc.GetVariable(name)
		if err != nil {
			continue
		}
		value, err := readScalarInt(v)
		if err != nil {
			continue
		}
		attrs := cleanBandAttrs(stringAttrs(v.Attributes))
		s.Scalars = append(s.Scalars, &scene.Scalar{
			Name:  name,
			IDTag: name,
			Value: value,
			Attrs: attrs,
		})
	}
}

// lastChainElement unwraps provenance chains such as "noaa > NOAA-19".
func lastChainElement(value string) string {
	parts := strings.Split(value, ">")
	return strings.TrimSpace(parts[len(parts)-1])
}

func pick(globals, refAttrs map[string]string, name string) string {
	if v, ok := globals[name]; ok {
		return v
	}
	return refAttrs[name]
}

// sceneTimes derives start and end times from the FDR filename, falling
// back to the time coverage attributes.
func sceneTimes(name string, globals map[string]string) (time.Time, time.Time, error) {
	if start, end, ok := parseFilenameTimes(name); ok {
		return start, end, nil
	}
	start, err1 := parseTimeAttr(globals["time_coverage_start"])
	end, err2 := parseTimeAttr(globals["time_coverage_end"])
	if err1 != nil || err2 != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("cannot determine scene times from %q", name)
	}
	return start, end, nil
}

// IsFDRFilename reports whether a file name looks like an EUMETSAT AVHRR
// GAC FDR product.
func IsFDRFilename(name string) bool {
	return strings.HasPrefix(name, "AVHRR-GAC_FDR") && strings.HasSuffix(name, ".nc")
}

// FilenameTimes extracts the coverage stamps from an FDR file name without
// opening the file.
func FilenameTimes(name string) (start, end time.Time, ok bool) {
	return parseFilenameTimes(name)
}

// parseFilenameTimes reads the stamps from names like
// AVHRR-GAC_FDR_1C_N06_19810330T005421Z_19810330T024632Z_R_O_..._0100.nc.
func parseFilenameTimes(name string) (time.Time, time.Time, bool) {
	if !strings.HasPrefix(name, "AVHRR-GAC_FDR") {
		return time.Time{}, time.Time{}, false
	}
	parts := strings.Split(name, "_")
	if len(parts) < 6 {
		return time.Time{}, time.Time{}, false
	}
	start, err1 := parseTimeAttr(parts[4])
	end, err2 := parseTimeAttr(parts[5])
	if err1 != nil || err2 != nil {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

func parseTimeAttr(value string) (time.Time, error) {
	for _, layout := range []string{
		"20060102T150405Z",
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05",
	} {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", value)
}
