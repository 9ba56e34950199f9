// Package types implements RadDB's value system: a tagged union over numeric,
// text, time, and boolean variants, plus the line-oriented wire codec used by
// block files.
//
// # Scope
//
// This is deliberately a small, external-collaborator-shaped package (see
// SPEC_FULL.md §1): the storage and algebra engines only ever need a Value's
// equality, ordering (within a variant), seedable hash, and textual
// serialize/parse pair. It is not a general-purpose type system — there is no
// coercion between variants, no arithmetic, and no user-defined types.
//
// # Variants
//
// Numeric: Float32, Float64, Int{8,16,32,64}, Uint{8,16,32,64}.
// Text: Char, String, Binary, Blob. No length bound is stored or enforced
// for String or Binary.
// Time: Date, DateTime, Timestamp, Year.
// Boolean, and Null (the "optional variant" spec.md §4.G's outer-join padding
// needs; the original Rust source has no such variant because outer joins
// were unimplemented there).
package types
