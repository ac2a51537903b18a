package testsupport

import (
	"path/filepath"
	"testing"

	"pps1c/internal/ncwriter"
)

// GACSpec controls the synthetic AVHRR GAC FDR file written by WriteGACFDR.
type GACSpec struct {
	Rows, Cols    int
	PlatformAttr  string
	OmitDatasets  []string // dataset names left out of the file
	BrightnessK   float64  // brightness temperature for the thermal channels
	ReflectancePC float64  // reflectance percent for the solar channels
}

func (spec *GACSpec) fill() {
	if spec.Rows == 0 {
		spec.Rows = 4
	}
	if spec.Cols == 0 {
		spec.Cols = 3
	}
	if spec.PlatformAttr == "" {
		spec.PlatformAttr = "noaa > NOAA-19"
	}
	if spec.BrightnessK == 0 {
		spec.BrightnessK = 283.15
	}
	if spec.ReflectancePC == 0 {
		spec.ReflectancePC = 25.0
	}
}

func (spec *GACSpec) omitted(name string) bool {
	for _, omit := range spec.OmitDatasets {
		if omit == name {
			return true
		}
	}
	return false
}

// WriteGACFDR writes a small synthetic EUMETSAT AVHRR GAC FDR file and
// returns its path. The filename carries the scene start and end stamps.
func WriteGACFDR(t testing.TB, dir string, spec GACSpec) string {
	t.Helper()
	spec.fill()

	f := ncwriter.NewFile()
	y, err := f.AddDim("y", spec.Rows)
	if err != nil {
		t.Fatalf("AddDim: %v", err)
	}
	x, err := f.AddDim("x", spec.Cols)
	if err != nil {
		t.Fatalf("AddDim: %v", err)
	}

	f.AddGlobalAttr("platform", spec.PlatformAttr)
	f.AddGlobalAttr("instrument", "avhrr > avhrr-3")
	f.AddGlobalAttr("id", "DOI:10.15770/EUM_SEC_CLM_0014")
	f.AddGlobalAttr("licence", "EUMETSAT data policy")
	f.AddGlobalAttr("product_version", "1.0.0")
	f.AddGlobalAttr("version_satpy", "0.20.0")
	f.AddGlobalAttr("gac_filename", "NSS.GHRR.NP.D21001.S1200.E1245.B0000000.GC")
	f.AddGlobalAttr("ground_station", "GC")
	f.AddGlobalAttr("comment", "should never reach the output")
	f.AddGlobalAttr("creator_email", "ops@eumetsat.int")
	f.AddGlobalAttr("sun_earth_distance_correction_factor", 0.9833)
	f.AddGlobalAttr("time_coverage_start", "2021-01-01T12:00:00Z")
	f.AddGlobalAttr("time_coverage_end", "2021-01-01T12:45:00Z")

	n := spec.Rows * spec.Cols
	packed := func(physical, scale, offset float64) []int16 {
		values := make([]int16, n)
		raw := int16((physical - offset) / scale)
		for i := range values {
			values[i] = raw
		}
		return values
	}

	addBand := func(name string, physical, offset float64, units string) {
		if spec.omitted(name) {
			return
		}
		v, err := f.AddVar(name, ncwriter.Short, y, x)
		if err != nil {
			t.Fatalf("AddVar %s: %v", name, err)
		}
		v.AddAttr("scale_factor", 0.01)
		v.AddAttr("add_offset", offset)
		v.AddAttr("_FillValue", int16(-32767))
		v.AddAttr("units", units)
		v.AddAttr("long_name", name)
		v.AddAttr("valid_min", int16(0))
		v.SetShorts(packed(physical, 0.01, offset))
	}

	addBand("reflectance_channel_1", spec.ReflectancePC, 0.0, "%")
	addBand("reflectance_channel_2", spec.ReflectancePC, 0.0, "%")
	addBand("reflectance_channel_3", spec.ReflectancePC, 0.0, "%")
	addBand("brightness_temperature_channel_3", spec.BrightnessK, 273.15, "K")
	addBand("brightness_temperature_channel_4", spec.BrightnessK, 273.15, "K")
	addBand("brightness_temperature_channel_5", spec.BrightnessK, 273.15, "K")

	addCoord := func(name string, base float64) {
		if spec.omitted(name) {
			return
		}
		v, err := f.AddVar(name, ncwriter.Float, y, x)
		if err != nil {
			t.Fatalf("AddVar %s: %v", name, err)
		}
		values := make([]float32, n)
		for i := range values {
			values[i] = float32(base) + float32(i)*0.01
		}
		v.SetFloats(values)
	}
	addCoord("latitude", 55.0)
	addCoord("longitude", 12.0)

	addBand("solar_zenith_angle", 60.0, 0.0, "degree")
	addBand("sensor_zenith_angle", 40.0, 0.0, "degree")
	addBand("sun_sensor_azimuth_difference_angle", -120.0, 0.0, "degree")
	addBand("solar_azimuth_angle", 150.0, 0.0, "degree")
	addBand("sensor_azimuth_angle", 30.0, 0.0, "degree")

	if !spec.omitted("acq_time") {
		v, err := f.AddVar("acq_time", ncwriter.Double, y)
		if err != nil {
			t.Fatalf("AddVar acq_time: %v", err)
		}
		v.AddAttr("units", "milliseconds since 1970-01-01")
		values := make([]float64, spec.Rows)
		for i := range values {
			values[i] = 1609502400000 + float64(i)*500
		}
		v.SetDoubles(values)
	}
	if !spec.omitted("qual_flags") {
		width, err := f.AddDim("num_flags", 7)
		if err != nil {
			t.Fatalf("AddDim num_flags: %v", err)
		}
		v, err := f.AddVar("qual_flags", ncwriter.Int, y, width)
		if err != nil {
			t.Fatalf("AddVar qual_flags: %v", err)
		}
		values := make([]int32, spec.Rows*7)
		for i := range values {
			values[i] = int32(i % 3)
		}
		v.SetInts(values)
	}

	addScalar := func(name string, value int32) {
		if spec.omitted(name) {
			return
		}
		v, err := f.AddVar(name, ncwriter.Int)
		if err != nil {
			t.Fatalf("AddVar %s: %v", name, err)
		}
		v.AddAttr("long_name", name)
		v.SetInts([]int32{value})
	}
	addScalar("overlap_free_end", int32(spec.Rows-1))
	addScalar("midnight_line", 2)

	name := "AVHRR-GAC_FDR_1C_N19_20210101T120000Z_20210101T124500Z_R_O_20220101T000000Z_0100.nc"
	path := filepath.Join(dir, name)
	if err := f.WriteFile(path); err != nil {
		t.Fatalf("write GAC fixture: %v", err)
	}
	return path
}
