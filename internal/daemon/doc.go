// Package daemon ties the input watcher, the workflow manager and the HTTP
// API together behind a single lock-guarded process.
package daemon
