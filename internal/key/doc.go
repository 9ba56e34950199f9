// Package key implements primary-key definitions and the wide-integer
// fingerprint that internal/directory hashes tuples by.
//
// A PrimaryKeyDefinition names the column positions that make up a key and
// carries four deterministic hash seeds derived from those positions, so two
// processes that open the same relation definition always hash its keys the
// same way without persisting the seeds anywhere. PrimaryKey pairs a
// definition with the values projected from one tuple and produces the
// fingerprint: the column value itself when the key is a single unsigned
// integer (preserving its natural ordering and keeping small-integer keys
// dense), or a math/big accumulator built by shifting and OR-ing a seeded
// 64-bit hash of each column otherwise.
package key
