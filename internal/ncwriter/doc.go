// Package ncwriter assembles netCDF files in the 64-bit offset classic
// format (CDF-2). Only fixed dimensions are supported; the unlimited record
// dimension is not used by the level-1c output.
package ncwriter
