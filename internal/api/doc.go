// Package api provides transport-friendly views of queue and workflow state
// plus the one-shot conversion entry points shared by the CLI and the
// daemon's HTTP and IPC surfaces.
package api
