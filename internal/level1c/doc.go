// Package level1c implements the semantics shared by all instrument
// backends: the product filename, the int16 packing of bands and angles,
// the angle and header attribute tables, and the netCDF writer.
package level1c
