package geom

import "math"

// GeosProjection inverts the normalized geostationary projection used by
// SEVIRI level-1.5 navigation headers (CGMS LRIT/HRIT global specification).
type GeosProjection struct {
	// SubLonDeg is the sub-satellite longitude in degrees east.
	SubLonDeg float64
	// CFAC/LFAC are the column and line scaling factors, COFF/LOFF the
	// offsets, as carried in the image navigation record.
	CFAC int32
	LFAC int32
	COFF int32
	LOFF int32
}

// ratio2 is (req/rpol)^2 for the SEVIRI reference ellipsoid.
var ratio2 = (EquatorRadius * EquatorRadius) / (PolarRadius * PolarRadius)

// LonLat converts a pixel position (column, line, both zero-based fractional)
// to geodetic longitude and latitude in degrees. ok is false when the pixel
// looks past the earth limb into space.
func (p GeosProjection) LonLat(column, line float64) (lon, lat float64, ok bool) {
	// Scaling factors carry 2^-16 units per the navigation record.
	x := (column - float64(p.COFF)) * 65536 / float64(p.CFAC) * deg2rad
	y := (line - float64(p.LOFF)) * 65536 / float64(p.LFAC) * deg2rad

	cosX, sinX := math.Cos(x), math.Sin(x)
	cosY, sinY := math.Cos(y), math.Sin(y)

	h := EquatorRadius + GeoAltitude
	sa := (h*cosX*cosY)*(h*cosX*cosY) - (cosY*cosY+ratio2*sinY*sinY)*(h*h-EquatorRadius*EquatorRadius)
	if sa < 0 {
		return 0, 0, false
	}

	sn := (h*cosX*cosY - math.Sqrt(sa)) / (cosY*cosY + ratio2*sinY*sinY)
	s1 := h - sn*cosX*cosY
	s2 := sn * sinX * cosY
	s3 := -sn * sinY
	sxy := math.Sqrt(s1*s1 + s2*s2)

	lon = math.Atan2(s2, s1)*rad2deg + p.SubLonDeg
	lat = math.Atan(ratio2*s3/sxy) * rad2deg

	// Normalize to [-180, 180].
	for lon > 180 {
		lon -= 360
	}
	for lon < -180 {
		lon += 360
	}
	return lon, lat, true
}
