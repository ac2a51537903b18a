package geom

import (
	"math"
	"time"
)

const deg2rad = math.Pi / 180
const rad2deg = 180 / math.Pi

// jdays2000 returns fractional days since the J2000.0 epoch.
func jdays2000(t time.Time) float64 {
	epoch := time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)
	return t.Sub(epoch).Seconds() / 86400.0
}

// sunPosition returns the sun's apparent declination and right ascension in
// radians for the given instant.
func sunPosition(t time.Time) (declination, rightAscension float64) {
	d := jdays2000(t)

	meanLongitude := math.Mod(280.460+0.9856474*d, 360)
	meanAnomaly := (357.528 + 0.9856003*d) * deg2rad
	eclipticLongitude := (meanLongitude + 1.915*math.Sin(meanAnomaly) + 0.020*math.Sin(2*meanAnomaly)) * deg2rad
	obliquity := (23.439 - 4.0e-7*d) * deg2rad

	declination = math.Asin(math.Sin(obliquity) * math.Sin(eclipticLongitude))
	rightAscension = math.Atan2(math.Cos(obliquity)*math.Sin(eclipticLongitude), math.Cos(eclipticLongitude))
	return declination, rightAscension
}

// greenwichSiderealTime returns GMST in radians. The daily term takes days
// at the previous UTC midnight; the UT hours of the day enter only through
// the sidereal rate factor.
func greenwichSiderealTime(t time.Time) float64 {
	u := t.UTC()
	midnight := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	d0 := jdays2000(midnight)
	ut := u.Sub(midnight).Hours()
	gmstHours := math.Mod(6.697375+0.0657098242*d0+1.00273790935*ut, 24)
	if gmstHours < 0 {
		gmstHours += 24
	}
	return gmstHours * 15 * deg2rad
}

// SolarAngles computes the solar zenith and azimuth (degrees, azimuth
// clockwise from north) for a ground point at the given instant. Longitude
// and latitude are in degrees, east and north positive.
func SolarAngles(t time.Time, lonDeg, latDeg float64) (zenith, azimuth float64) {
	declination, rightAscension := sunPosition(t)
	lat := latDeg * deg2rad

	localSidereal := greenwichSiderealTime(t) + lonDeg*deg2rad
	hourAngle := localSidereal - rightAscension

	cosZenith := math.Sin(lat)*math.Sin(declination) + math.Cos(lat)*math.Cos(declination)*math.Cos(hourAngle)
	cosZenith = math.Max(-1, math.Min(1, cosZenith))
	zenith = math.Acos(cosZenith) * rad2deg

	azimuth = math.Atan2(
		-math.Sin(hourAngle),
		math.Tan(declination)*math.Cos(lat)-math.Sin(lat)*math.Cos(hourAngle),
	) * rad2deg
	if azimuth < 0 {
		azimuth += 360
	}
	return zenith, azimuth
}

// AzimuthDifference folds the absolute difference between two azimuths
// (degrees) into the [0, 180] range.
func AzimuthDifference(az1, az2 float64) float64 {
	diff := math.Abs(az1 - az2)
	diff = math.Mod(diff, 360)
	if diff > 180 {
		diff = 360 - diff
	}
	return diff
}
