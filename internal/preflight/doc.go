// Package preflight provides readiness checks for the filesystem paths and
// external endpoints the converter depends on.
//
// These checks run in two contexts:
//   - The workflow manager calls RunAll before starting its lanes. If any
//     check fails, the daemon refuses to process until the issue is fixed.
//   - The CLI "pps1c status" command uses individual check functions to
//     display environment health.
//
// Each check is gated by its config toggle -- disabled features are skipped.
package preflight
