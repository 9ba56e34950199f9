// Package block implements Block, a single fixed-capacity on-disk page of
// tuples addressed by a primary-key hash.
//
// A Block starts unloaded: its backing file exists on disk but its tuples
// are not held in memory. The first ReadView or WriteView call loads the
// file's lines ("<hash>:<tuple>\n") into memory, mapping the file read-only
// with mmap so the initial scan avoids a buffered-copy for large pages.
// Concurrent loaders coordinate through a singleflight.Group so only one
// goroutine ever performs the actual read.
//
// Every view acquisition records an access timestamp; once the rolling
// average of the last ROLLING_AVERAGE_COUNT inter-access gaps exceeds
// MIN_TIME_FOR_MAINTAIN_LOAD, the block is unloaded again at the end of the
// access that pushed it over the threshold (truncate-and-rewrite), trading a
// future reload for the memory back. A block created with NewUnbacked never
// touches disk at all — used for volatile relations.
package block
