// Package directory implements BlockDirectory, an extendible-hash index over
// a relation's blocks.
//
// A directory maps primary-key hashes to buckets through a power-of-two
// directory table: the low globalDepth bits of a hash select a directory
// entry, which names the bucket holding that hash. Each bucket additionally
// carries its own localDepth — the number of low bits that actually
// distinguish it from its split sibling — so several directory entries can
// point at the same bucket until it grows crowded enough to split.
//
// Insert grows the structure on demand: when a bucket reaches capacity it
// splits in two, doubling the directory first if the bucket's local depth
// has caught up to the global depth. This mirrors the teacher's
// internal/shard package in spirit — an owned, lockable, per-partition unit
// addressed by a routing key — generalized here to an extendible hash
// instead of a fixed shard count.
package directory
