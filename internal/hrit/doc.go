// Package hrit decodes EUMETSAT LRIT/HRIT transmission files: the dashed
// segment filename layout, the binary header records, and the 10-bit packed
// image data field.
package hrit
