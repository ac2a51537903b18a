package level1c

import (
	"math"
	"testing"
	"time"
)

func TestOutputFilename(t *testing.T) {
	start := time.Date(2021, 1, 1, 12, 0, 0, 250_000_000, time.UTC)
	end := time.Date(2021, 1, 1, 12, 15, 0, 990_000_000, time.UTC)

	got := OutputFilename("seviri", "MSG4", "99999", start, end)
	want := "S_NWC_seviri_msg4_99999_20210101T1200002Z_20210101T1215009Z.nc"
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestOutputFilenameStripsDashes(t *testing.T) {
	start := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	got := OutputFilename("avhrr", "Metop-B", "12345", start, start)
	want := "S_NWC_avhrr_metopb_12345_20210101T0000000Z_20210101T0000000Z.nc"
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestBandEncoding(t *testing.T) {
	tb := BandEncoding("ch_tb11")
	if tb.AddOffset != 273.15 || tb.ScaleFactor != 0.01 {
		t.Fatalf("unexpected tb encoding %+v", tb)
	}
	refl := BandEncoding("ch_r06")
	if refl.AddOffset != 0.0 || refl.ScaleFactor != 0.01 {
		t.Fatalf("unexpected reflectance encoding %+v", refl)
	}
}

func TestPackUnpack(t *testing.T) {
	enc := BandEncoding("ch_tb11")
	packed := enc.Pack(280.0)
	if packed != 685 {
		t.Fatalf("expected 280 K to pack to 685, got %d", packed)
	}
	if got := enc.Unpack(packed); math.Abs(got-280.0) > 0.005 {
		t.Fatalf("unpack drifted to %g", got)
	}
}

func TestPackEdgeCases(t *testing.T) {
	enc := AngleEncoding()
	if enc.Pack(math.NaN()) != FillValue {
		t.Fatal("NaN should pack to the fill value")
	}
	if enc.Pack(1e9) != 32767 {
		t.Fatal("overflow should clamp to 32767")
	}
	if enc.Pack(-1e9) != -32766 {
		t.Fatal("underflow should clamp above the fill value")
	}
	if enc.Pack(45.004) != 4500 {
		t.Fatalf("expected rounding to 4500, got %d", enc.Pack(45.004))
	}
}

func TestAngleSpecs(t *testing.T) {
	sun, ok := AngleSpecFor("sunzenith")
	if !ok || sun.Name != "image11" || sun.ValidMax != 18000 {
		t.Fatalf("unexpected sunzenith spec %+v", sun)
	}
	sat, ok := AngleSpecFor("satzenith")
	if !ok || sat.Name != "image12" || sat.ValidMax != 9000 {
		t.Fatalf("unexpected satzenith spec %+v", sat)
	}
	azi, ok := AngleSpecFor("azimuthdiff")
	if !ok || azi.Name != "image13" {
		t.Fatalf("unexpected azimuthdiff spec %+v", azi)
	}
	if _, ok := AngleSpecFor("sunazimuth"); ok {
		t.Fatal("sunazimuth is not a level-1c angle dataset")
	}

	attrs := sun.AngleAttrs()
	if attrs["units"] != "degree" || attrs["coordinates"] != "lon lat" {
		t.Fatalf("unexpected angle attrs %v", attrs)
	}
}

func TestHeaderAttrs(t *testing.T) {
	start := time.Date(2021, 1, 1, 12, 0, 0, 0, time.UTC)
	end := start.Add(15 * time.Minute)
	created := time.Date(2021, 1, 2, 8, 30, 0, 0, time.UTC)

	attrs := HeaderAttrs("seviri", "MSG4", "seviri", "99999", start, end, created)
	if attrs["source"] != "pps1c" {
		t.Fatalf("unexpected source %q", attrs["source"])
	}
	if attrs["start_time"] != "2021-01-01 12:00:00" || attrs["end_time"] != "2021-01-01 12:15:00" {
		t.Fatalf("unexpected time attrs: %v", attrs)
	}
	if attrs["date_created"] != "2021-01-02T08:30:00Z" {
		t.Fatalf("unexpected date_created %q", attrs["date_created"])
	}
}
