// Package geom computes the per-pixel geometry needed for level-1c
// ancillary datasets: solar zenith and azimuth, satellite zenith and
// azimuth for a geostationary observer, the folded sun-satellite azimuth
// difference, and the inverse of the normalized geostationary projection
// used by SEVIRI navigation headers.
package geom
