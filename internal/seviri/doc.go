// Package seviri turns the HRIT segment files of one Meteosat Second
// Generation repeat cycle into a calibrated, geolocated scene.
package seviri
