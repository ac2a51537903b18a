// Package calib converts raw SEVIRI detector counts to physical units:
// bidirectional reflectance for the solar channels and brightness
// temperature for the thermal channels.
package calib
