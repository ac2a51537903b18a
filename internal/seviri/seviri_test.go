package seviri

import (
	"errors"
	"math"
	"testing"
	"time"

	"pps1c/internal/calib"
	"pps1c/internal/scene"
	"pps1c/internal/services"
	"pps1c/internal/testsupport"
)

func TestGroupSegments(t *testing.T) {
	dir := t.TempDir()
	start := time.Date(2021, 1, 1, 12, 0, 0, 0, time.UTC)
	files := testsupport.WriteSEVIRIScan(t, dir, testsupport.SEVIRIScanSpec{Start: start})

	scans := GroupSegments(files)
	if len(scans) != 1 {
		t.Fatalf("expected one scan, got %d", len(scans))
	}
	scan := scans["MSG4-202101011200"]
	if scan == nil {
		t.Fatalf("missing expected scan key, got %v", scans)
	}
	if !scan.Complete() {
		t.Fatal("full repeat cycle should be complete")
	}
	if got := len(scan.SourceFiles()); got != len(Bands)*SegmentsPerBand {
		t.Fatalf("expected %d source files, got %d", len(Bands)*SegmentsPerBand, got)
	}
}

func TestGroupSegmentsSkipsForeignFiles(t *testing.T) {
	scans := GroupSegments([]string{
		"/data/AVHRR-GAC_FDR_1C_N06_20210101T000000Z.nc",
		"/data/H-000-MSG4__-MSG4________-_________-PRO______-202101011200-__",
		"/data/H-000-MSG4__-MSG4________-HRV______-000001___-202101011200-__",
	})
	if len(scans) != 0 {
		t.Fatalf("expected no scans, got %v", scans)
	}
}

func TestIncompleteScan(t *testing.T) {
	dir := t.TempDir()
	spec := testsupport.SEVIRIScanSpec{}
	var files []string
	for segment := 1; segment <= 7; segment++ {
		files = append(files, testsupport.WriteSEVIRISegment(t, dir, "IR_108", segment, spec))
	}
	scans := GroupSegments(files)
	if len(scans) != 1 {
		t.Fatalf("expected one scan, got %d", len(scans))
	}
	for _, scan := range scans {
		if scan.Complete() {
			t.Fatal("scan with a missing segment should be incomplete")
		}
	}

	loader := NewLoader(calib.ModeMeirink)
	if _, err := loader.Load(files); err == nil {
		t.Fatal("expected load error for incomplete scan")
	}
}

func TestLoadProducesCalibratedScene(t *testing.T) {
	dir := t.TempDir()
	start := time.Date(2021, 6, 21, 12, 0, 0, 0, time.UTC)
	spec := testsupport.SEVIRIScanSpec{Start: start, Count: 100}
	files := testsupport.WriteSEVIRIScan(t, dir, spec)

	loader := NewLoader(calib.ModeMeirink)
	s, err := loader.Load(files)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if s.Sensor != "seviri" || s.Platform != "MSG4" || s.OrbitNumber != OrbitNumber {
		t.Fatalf("unexpected scene identity: %+v", s)
	}
	if s.Rows != 16 || s.Cols != 6 {
		t.Fatalf("unexpected scene shape %dx%d", s.Rows, s.Cols)
	}
	if !s.StartTime.Equal(start) || !s.EndTime.Equal(start.Add(15*time.Minute)) {
		t.Fatalf("unexpected scene times %v - %v", s.StartTime, s.EndTime)
	}
	if len(s.Bands) != len(Bands) {
		t.Fatalf("expected %d bands, got %d", len(Bands), len(s.Bands))
	}
	// Band numbering is zero based so the angle datasets keep image11..13.
	if s.Bands[0].Name != "image0" || s.Bands[len(s.Bands)-1].Name != "image10" {
		t.Fatalf("band names %s..%s, want image0..image10",
			s.Bands[0].Name, s.Bands[len(s.Bands)-1].Name)
	}
	if !s.Geo.Valid || s.Geo.SubLonDeg != 0 {
		t.Fatalf("unexpected projection parameters: %+v", s.Geo)
	}
	if s.Lat != nil {
		t.Fatal("geolocation should not be filled before DeriveGeometry")
	}
	if err := DeriveGeometry(s); err != nil {
		t.Fatalf("DeriveGeometry failed: %v", err)
	}
	if err := s.Validate(); err != nil {
		t.Fatalf("loaded scene invalid: %v", err)
	}

	// Solar band: count 100 through the Meirink gain for this date.
	gain, offset, err := calib.MeirinkGainOffset("MSG4", "VIS006", start)
	if err != nil {
		t.Fatalf("MeirinkGainOffset failed: %v", err)
	}
	wantRefl, err := calib.RadianceToReflectance("VIS006", gain*100+offset)
	if err != nil {
		t.Fatalf("RadianceToReflectance failed: %v", err)
	}
	r06 := s.Band("ch_r06")
	if r06 == nil {
		t.Fatal("missing ch_r06 band")
	}
	if got := float64(r06.At(0, 0)); math.Abs(got-wantRefl) > 1e-4 {
		t.Fatalf("expected reflectance %.4f, got %.4f", wantRefl, got)
	}
	if r06.Attrs["sun_earth_distance_correction_applied"] != "False" {
		t.Fatalf("unexpected correction attrs: %v", r06.Attrs)
	}
	if r06.NumAttrs["sun_earth_distance_correction_factor"] != 1.0 {
		t.Fatalf("unexpected correction factor: %v", r06.NumAttrs)
	}

	// Thermal band: the constant count must invert to a finite temperature.
	tb11 := s.Band("ch_tb11")
	if tb11 == nil {
		t.Fatal("missing ch_tb11 band")
	}
	bt := float64(tb11.At(3, 3))
	if math.IsNaN(bt) || bt < 150 || bt > 350 {
		t.Fatalf("implausible brightness temperature %.2f K", bt)
	}
	if tb11.Attrs["units"] != "K" {
		t.Fatalf("unexpected thermal attrs: %v", tb11.Attrs)
	}

	// Geolocation: the fixture centers the grid on the sub-satellite
	// point, row 0 is north of it.
	if s.Lat == nil || s.Lon == nil {
		t.Fatal("missing geolocation")
	}
	if lat := float64(s.Lat.At(0, 2)); lat <= 0 {
		t.Fatalf("row 0 should be in the northern hemisphere, lat %.3f", lat)
	}
	if lat := float64(s.Lat.At(15, 2)); lat >= 0 {
		t.Fatalf("last row should be in the southern hemisphere, lat %.3f", lat)
	}

	// Angles: near-noon summer-solstice sun over the equator, nadir view.
	sunz := s.Angle("sunzenith")
	satz := s.Angle("satzenith")
	azid := s.Angle("azimuthdiff")
	if sunz == nil || satz == nil || azid == nil {
		t.Fatal("missing angle datasets")
	}
	if got := float64(sunz.At(8, 3)); got > 30 {
		t.Fatalf("noon sun zenith at the sub-satellite point is %.2f", got)
	}
	if got := float64(satz.At(8, 3)); got > 2 {
		t.Fatalf("satellite zenith at the sub-satellite point is %.2f", got)
	}
	if got := float64(azid.At(8, 3)); got < 0 || got > 180 {
		t.Fatalf("azimuth difference %.2f outside [0,180]", got)
	}
}

func TestLoadRotatesGrid(t *testing.T) {
	dir := t.TempDir()
	spec := testsupport.SEVIRIScanSpec{}
	var files []string
	for _, channel := range testsupport.SEVIRIChannels {
		for segment := 1; segment <= 8; segment++ {
			segSpec := spec
			if segment == 1 {
				// Count 51 calibrates to zero radiance and
				// becomes a missing pixel.
				segSpec.Count = 51
			}
			files = append(files, testsupport.WriteSEVIRISegment(t, dir, channel, segment, segSpec))
		}
	}

	loader := NewLoader(calib.ModeMeirink)
	s, err := loader.Load(files)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Segment 1 is the southernmost; after rotation its pixels must land
	// in the bottom rows.
	tb11 := s.Band("ch_tb11")
	if !math.IsNaN(float64(tb11.At(s.Rows-1, 0))) {
		t.Fatal("expected missing pixels in the bottom rows")
	}
	if math.IsNaN(float64(tb11.At(0, 0))) {
		t.Fatal("top rows should be valid")
	}
}

func TestDeriveGeometryRequiresProjection(t *testing.T) {
	s := &scene.Scene{Sensor: "seviri", Rows: 2, Cols: 2}
	if err := DeriveGeometry(s); err == nil {
		t.Fatal("expected error for a scene without projection parameters")
	}
	if err := DeriveGeometry(s); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLoadRejectsNonSEVIRI(t *testing.T) {
	dir := t.TempDir()
	files := testsupport.WriteSEVIRIScan(t, dir, testsupport.SEVIRIScanSpec{Platform: "GOES16"})

	loader := NewLoader(calib.ModeMeirink)
	_, err := loader.Load(files)
	if err == nil {
		t.Fatal("expected error for non-SEVIRI platform")
	}
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLoadRejectsMixedScans(t *testing.T) {
	dir := t.TempDir()
	first := testsupport.WriteSEVIRIScan(t, dir, testsupport.SEVIRIScanSpec{
		Start: time.Date(2021, 1, 1, 12, 0, 0, 0, time.UTC),
	})
	second := testsupport.WriteSEVIRIScan(t, dir, testsupport.SEVIRIScanSpec{
		Start: time.Date(2021, 1, 1, 12, 15, 0, 0, time.UTC),
	})

	loader := NewLoader(calib.ModeMeirink)
	if _, err := loader.Load(append(first, second...)); err == nil {
		t.Fatal("expected error for files spanning two scans")
	}
}

func TestParseSubLon(t *testing.T) {
	cases := []struct {
		projection string
		want       float64
		wantErr    bool
	}{
		{"GEOS(+000.0)", 0.0, false},
		{"GEOS(+041.5)", 41.5, false},
		{"GEOS(-137.0)", -137.0, false},
		{"MERCATOR", 0, true},
		{"GEOS(abc)", 0, true},
	}
	for _, tc := range cases {
		got, err := parseSubLon(tc.projection)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("%s: expected error", tc.projection)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s: unexpected error %v", tc.projection, err)
		}
		if got != tc.want {
			t.Fatalf("%s: expected %.1f, got %.1f", tc.projection, tc.want, got)
		}
	}
}
