// Package storelog provides the structured logger shared by internal/block,
// internal/directory, and internal/query for lifecycle events: block
// load/unload/eviction, bucket splits, and query optimization passes.
//
// The teacher package logs subsystem events with the standard library's log
// package; this port follows the rest of the retrieval pack (erigon,
// turbo-geth) in using zap's SugaredLogger for the same purpose, so callers
// get leveled, structured key/value fields instead of formatted strings.
package storelog
