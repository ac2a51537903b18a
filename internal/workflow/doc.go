// Package workflow advances queue items through the configured processing
// stages.
//
// The Manager polls the queue, reclaims stale work via heartbeats, and feeds
// items into registered stage handlers (loader, deriver, writer) while
// capturing progress and failure metadata. It also aggregates queue stats and
// calls stage health checks for status reporting.
//
// The workflow runs two independent lanes: foreground (decoding and
// calibrating input scans) and background (angle derivation, product
// writing). Each lane polls for items matching its statuses and processes
// them independently, so decoding of scan B can proceed while scan A is
// being written out.
//
// Add new lifecycle stages by extending StageSet, updating the queue status
// enums, and teaching the manager how to transition items; this package is
// the authoritative home for that coordination logic.
package workflow
