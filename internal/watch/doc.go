// Package watch turns files appearing in the input directory into queued
// scans. HRIT segments are grouped per repeat cycle and held back until the
// scan is complete and quiet for the settle window; AVHRR GAC FDR files are
// enqueued individually.
package watch
