package geom

import "math"

// Earth ellipsoid used by the geostationary projection (GRS-ish radii in
// meters, as carried in SEVIRI navigation headers).
const (
	EquatorRadius = 6378169.0
	PolarRadius   = 6356583.8
	GeoAltitude   = 35785831.0
)

// ObserverAngles computes the satellite zenith and azimuth (degrees, azimuth
// clockwise from north) seen from a ground point, for a geostationary
// spacecraft at the given sub-satellite longitude.
func ObserverAngles(sspLonDeg, lonDeg, latDeg float64) (zenith, azimuth float64) {
	satX, satY, satZ := geocentric(sspLonDeg, 0, GeoAltitude)
	obsX, obsY, obsZ := geocentric(lonDeg, latDeg, 0)

	dx := satX - obsX
	dy := satY - obsY
	dz := satZ - obsZ

	lon := lonDeg * deg2rad
	lat := latDeg * deg2rad
	sinLon, cosLon := math.Sincos(lon)
	sinLat, cosLat := math.Sincos(lat)

	// Local east/north/up components of the observer-to-satellite vector.
	east := -sinLon*dx + cosLon*dy
	north := -sinLat*cosLon*dx - sinLat*sinLon*dy + cosLat*dz
	up := cosLat*cosLon*dx + cosLat*sinLon*dy + sinLat*dz

	rng := math.Sqrt(east*east + north*north + up*up)
	elevation := math.Asin(up/rng) * rad2deg
	zenith = 90 - elevation

	azimuth = math.Atan2(east, north) * rad2deg
	if azimuth < 0 {
		azimuth += 360
	}
	return zenith, azimuth
}

// geocentric converts geodetic coordinates (degrees, meters above the
// ellipsoid) to ECEF meters.
func geocentric(lonDeg, latDeg, alt float64) (x, y, z float64) {
	lon := lonDeg * deg2rad
	lat := latDeg * deg2rad
	sinLat, cosLat := math.Sincos(lat)

	e2 := 1 - (PolarRadius*PolarRadius)/(EquatorRadius*EquatorRadius)
	n := EquatorRadius / math.Sqrt(1-e2*sinLat*sinLat)

	x = (n + alt) * cosLat * math.Cos(lon)
	y = (n + alt) * cosLat * math.Sin(lon)
	z = (n*(1-e2) + alt) * sinLat
	return x, y, z
}
