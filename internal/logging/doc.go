// Package logging provides the shared slog construction and helpers used
// across the daemon, workflow manager, and CLI. It supports a human
// readable console format and a JSON format for log aggregation, plus
// context-aware field extraction so stage handlers automatically carry
// item and stage identifiers on every record.
package logging
