// Package tuple implements Tuple, a single row: an ordered sequence of
// internal/types.Value with no knowledge of its own schema. Relations store
// Tuples; internal/query's projection and join operators build new Tuples by
// concatenating and selectively dropping positions from existing ones.
package tuple
