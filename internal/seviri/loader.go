package seviri

import (
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"pps1c/internal/calib"
	"pps1c/internal/geom"
	"pps1c/internal/hrit"
	"pps1c/internal/scene"
	"pps1c/internal/services"
)

// OrbitNumber is the fixed orbit field of geostationary products.
const OrbitNumber = "99999"

// repeatCycle is the nominal full-disc repeat interval.
const repeatCycle = 15 * time.Minute

// Loader decodes and calibrates one SEVIRI repeat cycle into a scene.
type Loader struct {
	CalibMode calib.Mode
}

// NewLoader returns a loader using the given solar calibration mode.
func NewLoader(mode calib.Mode) *Loader {
	return &Loader{CalibMode: mode}
}

// Load reads the HRIT segment files of one scan and produces a calibrated
// scene with pixel (0,0) in the north-west corner. Geolocation and viewing
// geometry are derived later by DeriveGeometry.
func (l *Loader) Load(files []string) (*scene.Scene, error) {
	scan, err := singleScan(files)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(scan.Platform, "MSG") {
		return nil, services.Wrap(services.ErrValidation, "load", "seviri",
			fmt.Sprintf("not SEVIRI data: platform %q", scan.Platform), nil)
	}

	grids := make(map[string]*countGrid, len(Bands))
	var nav *hrit.ImageNavigation
	endTime := scan.Start.Add(repeatCycle)
	for _, band := range Bands {
		grid, bandNav, bandEnd, err := readBand(scan, band.Channel)
		if err != nil {
			return nil, err
		}
		grids[band.Channel] = grid
		if nav == nil {
			nav = bandNav
		}
		if bandEnd.After(endTime) {
			endTime = bandEnd
		}
	}
	if nav == nil {
		return nil, services.Wrap(services.ErrDecode, "load", "seviri",
			"no navigation record in any segment", nil)
	}

	first := grids[Bands[0].Channel]
	rows, cols := first.rows, first.cols
	for _, band := range Bands {
		g := grids[band.Channel]
		if g.rows != rows || g.cols != cols {
			return nil, services.Wrap(services.ErrDecode, "load", "seviri",
				fmt.Sprintf("channel %s grid %dx%d does not match %dx%d",
					band.Channel, g.rows, g.cols, rows, cols), nil)
		}
	}

	s := &scene.Scene{
		Sensor:      "seviri",
		Platform:    scan.Platform,
		OrbitNumber: OrbitNumber,
		StartTime:   scan.Start,
		EndTime:     endTime,
		Rows:        rows,
		Cols:        cols,
	}
	for _, band := range Bands {
		field, err := l.calibrateBand(band, grids[band.Channel], scan)
		if err != nil {
			return nil, err
		}
		s.Bands = append(s.Bands, field)
	}

	subLon, err := parseSubLon(nav.ProjectionName)
	if err != nil {
		return nil, services.Wrap(services.ErrDecode, "load", "seviri", nav.ProjectionName, err)
	}
	s.Geo = scene.Geo{
		Valid:     true,
		SubLonDeg: subLon,
		CFAC:      nav.CFAC,
		LFAC:      nav.LFAC,
		COFF:      nav.COFF,
		LOFF:      nav.LOFF,
	}
	return s, nil
}

type countGrid struct {
	rows, cols int
	counts     []uint16
}

// singleScan groups the input files and requires exactly one complete scan.
func singleScan(files []string) (*Scan, error) {
	scans := GroupSegments(files)
	if len(scans) == 0 {
		return nil, services.Wrap(services.ErrValidation, "load", "seviri",
			"no HRIT image segments among the input files", nil)
	}
	if len(scans) != 1 {
		return nil, services.Wrap(services.ErrValidation, "load", "seviri",
			fmt.Sprintf("input files span %d scans", len(scans)), nil)
	}
	for _, scan := range scans {
		return scan, nil
	}
	return nil, nil
}

// readBand reads and stitches the segments of one channel in segment order.
// Segment 1 holds the southernmost lines, so the stitched grid is flipped
// afterwards by the caller's pixel addressing.
func readBand(scan *Scan, channel string) (*countGrid, *hrit.ImageNavigation, time.Time, error) {
	segments := scan.Segments[channel]
	if len(segments) != SegmentsPerBand {
		return nil, nil, time.Time{}, services.Wrap(services.ErrValidation, "load", "seviri",
			fmt.Sprintf("channel %s has %d of %d segments", channel, len(segments), SegmentsPerBand), nil)
	}

	var (
		grid    *countGrid
		nav     *hrit.ImageNavigation
		latest  time.Time
		segRows int
	)
	for n := 1; n <= SegmentsPerBand; n++ {
		path, ok := segments[n]
		if !ok {
			return nil, nil, time.Time{}, services.Wrap(services.ErrValidation, "load", "seviri",
				fmt.Sprintf("channel %s is missing segment %d", channel, n), nil)
		}
		seg, err := hrit.ReadSegmentFile(path)
		if err != nil {
			return nil, nil, time.Time{}, services.Wrap(services.ErrDecode, "load", "seviri",
				filepath.Base(path), err)
		}
		st := seg.Headers.Structure
		if grid == nil {
			segRows = int(st.Lines)
			grid = &countGrid{
				rows:   segRows * SegmentsPerBand,
				cols:   int(st.Columns),
				counts: make([]uint16, segRows*SegmentsPerBand*int(st.Columns)),
			}
		}
		if int(st.Columns) != grid.cols || int(st.Lines) != segRows {
			return nil, nil, time.Time{}, services.Wrap(services.ErrDecode, "load", "seviri",
				fmt.Sprintf("channel %s segment %d has shape %dx%d, want %dx%d",
					channel, n, st.Lines, st.Columns, segRows, grid.cols), nil)
		}
		copy(grid.counts[(n-1)*segRows*grid.cols:], seg.Samples)
		if seg.Headers.Navigation != nil && nav == nil {
			nav = seg.Headers.Navigation
		}
		if seg.Headers.TimeStamp.After(latest) {
			latest = seg.Headers.TimeStamp
		}
	}
	return grid, nav, latest, nil
}

// calibrateBand converts counts to reflectance or brightness temperature.
// The stitched grid is rotated 180 degrees so pixel (0,0) ends up in the
// north-west corner.
func (l *Loader) calibrateBand(band Band, grid *countGrid, scan *Scan) (*scene.Field, error) {
	var gain, offset float64
	var err error
	if band.Thermal {
		gain, offset, err = calib.ThermalGainOffset(band.Channel)
	} else {
		gain, offset, err = calib.SolarGainOffset(l.CalibMode, scan.Platform, band.Channel, scan.Start)
	}
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "load", "seviri", band.Channel, err)
	}

	n := grid.rows * grid.cols
	values := make([]float32, n)
	nan := float32(math.NaN())
	for i := 0; i < n; i++ {
		// Rotation: output index i reads the opposite corner of the
		// stitched grid.
		count := grid.counts[n-1-i]
		if count == 0 {
			values[i] = nan
			continue
		}
		radiance := gain*float64(count) + offset
		if radiance <= 0 {
			values[i] = nan
			continue
		}
		if band.Thermal {
			bt, err := calib.RadianceToBrightness(band.Channel, radiance)
			if err != nil {
				return nil, services.Wrap(services.ErrDecode, "load", "seviri", band.Channel, err)
			}
			values[i] = float32(bt)
		} else {
			refl, err := calib.RadianceToReflectance(band.Channel, radiance)
			if err != nil {
				return nil, services.Wrap(services.ErrDecode, "load", "seviri", band.Channel, err)
			}
			values[i] = float32(refl)
		}
	}

	field := &scene.Field{
		Name:   band.Name,
		IDTag:  band.IDTag,
		Rows:   grid.rows,
		Cols:   grid.cols,
		Values: values,
		Attrs: map[string]string{
			"id_tag":      band.IDTag,
			"description": "SEVIRI " + band.Channel,
			"units":       band.units(),
			"coordinates": "lon lat",
		},
	}
	if !band.Thermal {
		field.Attrs["sun_earth_distance_correction_applied"] = "False"
		field.Attrs["sun_zenith_angle_correction_applied"] = "False"
		field.NumAttrs = map[string]float64{
			"sun_earth_distance_correction_factor": 1.0,
		}
	}
	return field, nil
}

// DeriveGeometry fills lat/lon and the three PPS angle grids from the
// scene's geostationary projection parameters.
func DeriveGeometry(s *scene.Scene) error {
	if !s.Geo.Valid {
		return services.Wrap(services.ErrValidation, "derive", "seviri",
			"scene carries no projection parameters", nil)
	}
	if err := checkSatelliteAltitude(); err != nil {
		return services.Wrap(services.ErrValidation, "derive", "seviri", "satellite altitude", err)
	}
	subLon := s.Geo.SubLonDeg
	proj := geom.GeosProjection{
		SubLonDeg: subLon,
		CFAC:      s.Geo.CFAC,
		LFAC:      s.Geo.LFAC,
		COFF:      s.Geo.COFF,
		LOFF:      s.Geo.LOFF,
	}

	n := s.Rows * s.Cols
	nan := float32(math.NaN())
	lat := &scene.Field{Name: "lat", IDTag: "lat", Rows: s.Rows, Cols: s.Cols, Values: make([]float32, n)}
	lon := &scene.Field{Name: "lon", IDTag: "lon", Rows: s.Rows, Cols: s.Cols, Values: make([]float32, n)}
	sunz := &scene.Field{Name: "image11", IDTag: "sunzenith", Rows: s.Rows, Cols: s.Cols, Values: make([]float32, n)}
	satz := &scene.Field{Name: "image12", IDTag: "satzenith", Rows: s.Rows, Cols: s.Cols, Values: make([]float32, n)}
	azid := &scene.Field{Name: "image13", IDTag: "azimuthdiff", Rows: s.Rows, Cols: s.Cols, Values: make([]float32, n)}

	duration := s.EndTime.Sub(s.StartTime)
	for r := 0; r < s.Rows; r++ {
		// The instrument scans south to north, so with north at row 0
		// the topmost rows carry the latest acquisition times.
		rowTime := s.StartTime
		if s.Rows > 1 {
			frac := float64(s.Rows-1-r) / float64(s.Rows-1)
			rowTime = s.StartTime.Add(time.Duration(frac * float64(duration)))
		}
		for c := 0; c < s.Cols; c++ {
			i := r*s.Cols + c
			pixLon, pixLat, ok := proj.LonLat(float64(c+1), float64(r+1))
			if !ok {
				lat.Values[i] = nan
				lon.Values[i] = nan
				sunz.Values[i] = nan
				satz.Values[i] = nan
				azid.Values[i] = nan
				continue
			}
			lat.Values[i] = float32(pixLat)
			lon.Values[i] = float32(pixLon)

			sunZenith, sunAzimuth := geom.SolarAngles(rowTime, pixLon, pixLat)
			satZenith, satAzimuth := geom.ObserverAngles(subLon, pixLon, pixLat)
			sunz.Values[i] = float32(sunZenith)
			satz.Values[i] = float32(satZenith)
			azid.Values[i] = float32(geom.AzimuthDifference(sunAzimuth, satAzimuth))
		}
	}

	s.Lat = lat
	s.Lon = lon
	s.Angles = []*scene.Field{sunz, satz, azid}
	return nil
}

// parseSubLon extracts the sub-satellite longitude from a projection name
// such as "GEOS(+000.0)".
func parseSubLon(projection string) (float64, error) {
	begin := strings.Index(projection, "(")
	end := strings.Index(projection, ")")
	if !strings.HasPrefix(projection, "GEOS") || begin < 0 || end <= begin {
		return 0, fmt.Errorf("unsupported projection %q", projection)
	}
	value, err := strconv.ParseFloat(projection[begin+1:end], 64)
	if err != nil {
		return 0, fmt.Errorf("bad sub-satellite longitude in %q: %w", projection, err)
	}
	return value, nil
}

// checkSatelliteAltitude verifies the nominal altitude converts from meters
// to a plausible geostationary height in kilometers.
func checkSatelliteAltitude() error {
	km := geom.GeoAltitude / 1000.0
	if km < 35000 || km > 36000 {
		return fmt.Errorf("satellite altitude %.1f km outside the geostationary range", km)
	}
	return nil
}
