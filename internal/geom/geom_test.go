package geom

import (
	"math"
	"testing"
	"time"
)

func TestSolarAnglesEquinoxNoon(t *testing.T) {
	// Near the March equinox at local solar noon on the equator the sun is
	// close to the zenith.
	noon := time.Date(2021, 3, 20, 12, 0, 0, 0, time.UTC)
	zenith, _ := SolarAngles(noon, 0, 0)
	if zenith > 3 {
		t.Fatalf("expected near-zenith sun, got %.2f degrees", zenith)
	}
}

func TestSolarAnglesMidnight(t *testing.T) {
	midnight := time.Date(2021, 3, 20, 0, 0, 0, 0, time.UTC)
	zenith, _ := SolarAngles(midnight, 0, 0)
	if zenith < 150 {
		t.Fatalf("expected sun far below horizon, got %.2f degrees", zenith)
	}
}

func TestSolarAnglesSubsolarPoint(t *testing.T) {
	// At 2000-01-01 12:00 UTC the subsolar point sits near (0.82E, 23.03S):
	// GMST is 18.697375 h, right ascension 281.28 degrees, declination
	// -23.03 degrees.
	noon := time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)
	zenith, _ := SolarAngles(noon, 0.82, -23.03)
	if zenith > 0.1 {
		t.Fatalf("expected sun at the zenith of the subsolar point, got %.3f degrees", zenith)
	}
}

func TestSolarAnglesContinuousAcrossMidnight(t *testing.T) {
	before := time.Date(2021, 6, 14, 23, 59, 59, 0, time.UTC)
	after := time.Date(2021, 6, 15, 0, 0, 1, 0, time.UTC)
	zBefore, _ := SolarAngles(before, 90, 0)
	zAfter, _ := SolarAngles(after, 90, 0)
	if diff := math.Abs(zAfter - zBefore); diff > 0.05 {
		t.Fatalf("sun zenith jumped %.3f degrees across a 2 s step (%.3f -> %.3f)",
			diff, zBefore, zAfter)
	}
}

func TestAzimuthDifferenceFolds(t *testing.T) {
	cases := []struct {
		a, b, want float64
	}{
		{10, 350, 20},
		{0, 180, 180},
		{90, 90, 0},
		{355, 5, 10},
		{270, 45, 135},
	}
	for _, tc := range cases {
		got := AzimuthDifference(tc.a, tc.b)
		if math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("AzimuthDifference(%v, %v) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestObserverAnglesSubSatellitePoint(t *testing.T) {
	// Directly under the spacecraft the satellite is at the zenith.
	zenith, _ := ObserverAngles(0, 0, 0)
	if zenith > 0.1 {
		t.Fatalf("expected zenith ~0 at sub-satellite point, got %.3f", zenith)
	}
}

func TestObserverAnglesIncreasesOffNadir(t *testing.T) {
	z1, _ := ObserverAngles(0, 10, 0)
	z2, _ := ObserverAngles(0, 40, 0)
	if !(z2 > z1 && z1 > 0) {
		t.Fatalf("expected zenith to grow off nadir, got %.2f then %.2f", z1, z2)
	}
}

func TestObserverAzimuthNorthernHemisphere(t *testing.T) {
	// North of the sub-satellite point the spacecraft appears due south.
	_, azimuth := ObserverAngles(0, 0, 45)
	if math.Abs(azimuth-180) > 1 {
		t.Fatalf("expected azimuth ~180, got %.2f", azimuth)
	}
}

func seviriFullDisc() GeosProjection {
	return GeosProjection{
		SubLonDeg: 0,
		CFAC:      13642337,
		LFAC:      13642337,
		COFF:      1856,
		LOFF:      1856,
	}
}

func TestGeosProjectionCenter(t *testing.T) {
	proj := seviriFullDisc()
	lon, lat, ok := proj.LonLat(1856, 1856)
	if !ok {
		t.Fatal("expected center pixel on disc")
	}
	if math.Abs(lon) > 0.05 || math.Abs(lat) > 0.05 {
		t.Fatalf("expected (0,0) at image center, got (%.4f, %.4f)", lon, lat)
	}
}

func TestGeosProjectionOffDisc(t *testing.T) {
	proj := seviriFullDisc()
	if _, _, ok := proj.LonLat(0, 0); ok {
		t.Fatal("expected image corner to look into space")
	}
}

func TestGeosProjectionHemispheres(t *testing.T) {
	proj := seviriFullDisc()
	lonE, _, ok := proj.LonLat(2500, 1856)
	if !ok {
		t.Fatal("expected pixel on disc")
	}
	lonW, _, ok := proj.LonLat(1200, 1856)
	if !ok {
		t.Fatal("expected pixel on disc")
	}
	if !(lonE > 0 && lonW < 0) {
		t.Fatalf("expected east/west split around center, got %.2f and %.2f", lonE, lonW)
	}

	_, latN, ok := proj.LonLat(1856, 1200)
	if !ok {
		t.Fatal("expected pixel on disc")
	}
	if latN <= 0 {
		t.Fatalf("expected northern latitude above center line, got %.2f", latN)
	}
}

func TestGeosProjectionSubLonShift(t *testing.T) {
	proj := seviriFullDisc()
	proj.SubLonDeg = 41.5
	lon, _, ok := proj.LonLat(1856, 1856)
	if !ok {
		t.Fatal("expected center pixel on disc")
	}
	if math.Abs(lon-41.5) > 0.05 {
		t.Fatalf("expected center longitude near 41.5, got %.4f", lon)
	}
}
