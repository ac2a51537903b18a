// Package pipeline provides the three workflow stage handlers of the
// conversion pipeline: loading (decode and calibrate a scan into a scene),
// deriving (geolocation and viewing geometry), and writing (the level-1c
// product file plus the completion announcement).
//
// Stages hand scenes to each other through compressed scene files in the
// work directory, so each stage can be retried without re-running the
// previous one.
package pipeline
