// Package relation implements Relation, the named, typed table a client
// inserts into and scans: a thin adapter that pairs a RelationDefinition
// (column identifiers and kinds) and a PrimaryKeyDefinition with an
// internal/directory.BlockDirectory.
//
// A volatile relation (NewVolatile) never persists to disk, so it leaves no
// directory behind. Close removes a persistent relation's on-disk directory
// entirely, standing in for the original's drop-triggered cleanup since Go
// has no destructors; on a volatile relation it is a no-op.
package relation
