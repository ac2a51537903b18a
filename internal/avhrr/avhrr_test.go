package avhrr

import (
	"errors"
	"math"
	"testing"
	"time"

	"pps1c/internal/services"
	"pps1c/internal/testsupport"
)

func TestLoadGACFile(t *testing.T) {
	path := testsupport.WriteGACFDR(t, t.TempDir(), testsupport.GACSpec{})

	s, err := NewLoader().Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if s.Sensor != "avhrr" || s.OrbitNumber != OrbitNumber {
		t.Fatalf("unexpected identity: %+v", s)
	}
	if s.Platform != "NOAA-19" {
		t.Fatalf("platform chain not unwrapped: %q", s.Platform)
	}
	wantStart := time.Date(2021, 1, 1, 12, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2021, 1, 1, 12, 45, 0, 0, time.UTC)
	if !s.StartTime.Equal(wantStart) || !s.EndTime.Equal(wantEnd) {
		t.Fatalf("unexpected times %v - %v", s.StartTime, s.EndTime)
	}
	if err := s.Validate(); err != nil {
		t.Fatalf("loaded scene invalid: %v", err)
	}

	if len(s.Bands) != 6 {
		t.Fatalf("expected 6 bands, got %d", len(s.Bands))
	}
	tb11 := s.Band("ch_tb11")
	if tb11 == nil {
		t.Fatal("missing ch_tb11")
	}
	if tb11.Name != "image4" {
		t.Fatalf("expected ch_tb11 as image4, got %s", tb11.Name)
	}
	if got := float64(tb11.At(0, 0)); math.Abs(got-283.15) > 0.01 {
		t.Fatalf("brightness temperature %.3f, want 283.15", got)
	}

	r06 := s.Band("ch_r06")
	if r06 == nil {
		t.Fatal("missing ch_r06")
	}
	if got := float64(r06.At(1, 1)); math.Abs(got-25.0) > 0.01 {
		t.Fatalf("reflectance %.3f, want 25.0", got)
	}
	if r06.Attrs["sun_earth_distance_correction_applied"] != "True" {
		t.Fatalf("GAC reflectances are always distance corrected: %v", r06.Attrs)
	}
	if got := r06.NumAttrs["sun_earth_distance_correction_factor"]; math.Abs(got-0.9833) > 1e-6 {
		t.Fatalf("correction factor %.4f, want 0.9833", got)
	}
	if r06.Attrs["platform"] != "NOAA-19" || r06.Attrs["instrument"] != "avhrr-3" {
		t.Fatalf("band identity attrs: %v", r06.Attrs)
	}
	if _, ok := r06.Attrs["valid_min"]; ok {
		t.Fatal("valid_min should be stripped from band attrs")
	}

	if got := float64(s.Angle("azimuthdiff").At(0, 0)); math.Abs(got-120.0) > 0.01 {
		t.Fatalf("azimuth difference %.3f, want folded 120.0", got)
	}
	if got := float64(s.Angle("sunzenith").At(0, 0)); math.Abs(got-60.0) > 0.01 {
		t.Fatalf("sun zenith %.3f, want 60.0", got)
	}

	if s.Lat == nil || math.Abs(float64(s.Lat.At(0, 0))-55.0) > 1e-4 {
		t.Fatal("latitude dataset wrong or missing")
	}

	if len(s.Lines) != 1 || s.Lines[0].Name != "scanline_timestamps" {
		t.Fatalf("expected scanline_timestamps, got %+v", s.Lines)
	}
	if s.Lines[0].Values[1]-s.Lines[0].Values[0] != 500 {
		t.Fatalf("acq_time spacing lost: %v", s.Lines[0].Values)
	}
	if len(s.Ints) != 1 || s.Ints[0].Name != "qual_flags" || s.Ints[0].Cols != 7 {
		t.Fatalf("expected qual_flags passthrough, got %+v", s.Ints)
	}
	if s.Ints[0].Attrs["long_name"] != "pygac quality flags" {
		t.Fatalf("qual_flags attrs: %v", s.Ints[0].Attrs)
	}

	if len(s.Scalars) != 2 {
		t.Fatalf("expected overlap bookkeeping scalars, got %+v", s.Scalars)
	}
	if s.Scalars[0].Name != "overlap_free_end" || s.Scalars[0].Value != 3 {
		t.Fatalf("overlap_free_end = %+v", s.Scalars[0])
	}
	if s.Scalars[1].Name != "midnight_line" || s.Scalars[1].Value != 2 {
		t.Fatalf("midnight_line = %+v", s.Scalars[1])
	}
}

func TestLoadHeaderSurgery(t *testing.T) {
	path := testsupport.WriteGACFDR(t, t.TempDir(), testsupport.GACSpec{})

	s, err := NewLoader().Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if s.HeaderAttrs["euemtsat_gac_id"] != "DOI:10.15770/EUM_SEC_CLM_0014" {
		t.Fatalf("id rename missing: %v", s.HeaderAttrs)
	}
	if s.HeaderAttrs["eumetsat_licence"] != "EUMETSAT data policy" {
		t.Fatalf("licence rename missing: %v", s.HeaderAttrs)
	}
	if s.HeaderAttrs["gac_filename"] == "" || s.HeaderAttrs["ground_station"] != "GC" {
		t.Fatalf("move-to-header attrs missing: %v", s.HeaderAttrs)
	}
	for _, gone := range []string{"comment", "creator_email", "id", "licence"} {
		if _, ok := s.HeaderAttrs[gone]; ok {
			t.Fatalf("attribute %s should not survive surgery", gone)
		}
	}
}

func TestLoadSkipsMissingBands(t *testing.T) {
	path := testsupport.WriteGACFDR(t, t.TempDir(), testsupport.GACSpec{
		OmitDatasets: []string{"reflectance_channel_3", "brightness_temperature_channel_3"},
	})

	s, err := NewLoader().Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(s.Bands) != 4 {
		t.Fatalf("expected 4 bands, got %d", len(s.Bands))
	}
	if s.Band("ch_r16") != nil || s.Band("ch_tb37") != nil {
		t.Fatal("omitted bands should be skipped")
	}
	// Numbering starts at zero and closes the gaps.
	if r06 := s.Band("ch_r06"); r06 == nil || r06.Name != "image0" {
		t.Fatalf("expected ch_r06 as image0, got %+v", r06)
	}
	if tb11 := s.Band("ch_tb11"); tb11 == nil || tb11.Name != "image2" {
		t.Fatalf("expected ch_tb11 as image2, got %+v", tb11)
	}
}

func TestLoadDerivesAzimuthDifference(t *testing.T) {
	path := testsupport.WriteGACFDR(t, t.TempDir(), testsupport.GACSpec{
		OmitDatasets: []string{"sun_sensor_azimuth_difference_angle"},
	})

	s, err := NewLoader().Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	// |150 - 30| = 120, already inside [0,180].
	if got := float64(s.Angle("azimuthdiff").At(0, 0)); math.Abs(got-120.0) > 0.01 {
		t.Fatalf("derived azimuth difference %.3f, want 120.0", got)
	}
}

func TestLoadRejectsNonGAC(t *testing.T) {
	path := testsupport.WriteGACFDR(t, t.TempDir(), testsupport.GACSpec{
		OmitDatasets: []string{"brightness_temperature_channel_4"},
	})

	_, err := NewLoader().Load(path)
	if err == nil {
		t.Fatal("expected error without the reference channel")
	}
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLoadRequiresGeolocation(t *testing.T) {
	path := testsupport.WriteGACFDR(t, t.TempDir(), testsupport.GACSpec{
		OmitDatasets: []string{"latitude"},
	})
	if _, err := NewLoader().Load(path); err == nil {
		t.Fatal("expected error without latitude")
	}
}

func TestParseFilenameTimes(t *testing.T) {
	start, end, ok := parseFilenameTimes("AVHRR-GAC_FDR_1C_N06_19810330T005421Z_19810330T024632Z_R_O_20200101T000000Z_0100.nc")
	if !ok {
		t.Fatal("expected filename to parse")
	}
	if start.Year() != 1981 || end.Hour() != 2 {
		t.Fatalf("unexpected times %v - %v", start, end)
	}
	if _, _, ok := parseFilenameTimes("H-000-MSG4__-MSG4________-IR_108___-000005___-202101011200-__"); ok {
		t.Fatal("HRIT name should not parse as GAC")
	}
}
