// Package avhrr converts EUMETSAT AVHRR GAC FDR netCDF files into
// calibrated scenes, applying the PPS attribute surgery on the way.
package avhrr
