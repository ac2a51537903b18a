// Package scene defines the in-memory form of a calibrated scan shared by
// the instrument loaders and the level-1c writer, plus its on-disk
// intermediate representation.
package scene
