package directory

import "github.com/dreamware/raddb/internal/tuple"

// StoredTupleIterator performs a full scan of every tuple in a directory,
// one bucket at a time. It holds the directory's read lock for its entire
// lifetime, so callers should drain or Close it promptly.
type StoredTupleIterator struct {
	dir       *BlockDirectory
	bucketNum int
	maxBucket int
	buffer    []tuple.Tuple
	closed    bool
}

// StoredTuples returns an iterator over every tuple currently stored in d.
func (d *BlockDirectory) StoredTuples() *StoredTupleIterator {
	d.mu.RLock()
	return &StoredTupleIterator{dir: d, maxBucket: len(d.buckets)}
}

// Next returns the next tuple in the scan, or false once exhausted.
func (it *StoredTupleIterator) Next() (tuple.Tuple, bool) {
	for len(it.buffer) == 0 {
		if it.bucketNum >= it.maxBucket {
			it.Close()
			return nil, false
		}
		b := it.dir.buckets[it.bucketNum]
		it.bucketNum++

		r, err := b.block.ReadView()
		if err != nil {
			continue
		}
		it.buffer = append(it.buffer, r.All()...)
		r.Close()
	}
	t := it.buffer[0]
	it.buffer = it.buffer[1:]
	return t, true
}

// Close releases the iterator's hold on the directory's read lock. Safe to
// call more than once.
func (it *StoredTupleIterator) Close() {
	if it.closed {
		return
	}
	it.closed = true
	it.dir.mu.RUnlock()
}

// BlockIterator scans a directory bucket by bucket, handing back a whole
// bucket's tuples per Next call instead of one tuple at a time. Join
// operators use this for block-nested-loop scans, where batching the inner
// relation's I/O by block matters more than per-tuple streaming.
type BlockIterator struct {
	dir       *BlockDirectory
	bucketNum int
	maxBucket int
	closed    bool
}

// Blocks returns a bucket-at-a-time iterator over d.
func (d *BlockDirectory) Blocks() *BlockIterator {
	d.mu.RLock()
	return &BlockIterator{dir: d, maxBucket: len(d.buckets)}
}

// Next returns the next bucket's tuples, or false once exhausted.
func (it *BlockIterator) Next() ([]tuple.Tuple, bool) {
	if it.bucketNum >= it.maxBucket {
		it.Close()
		return nil, false
	}
	b := it.dir.buckets[it.bucketNum]
	it.bucketNum++

	r, err := b.block.ReadView()
	if err != nil {
		return nil, false
	}
	defer r.Close()
	return r.All(), true
}

// Close releases the iterator's hold on the directory's read lock. Safe to
// call more than once.
func (it *BlockIterator) Close() {
	if it.closed {
		return
	}
	it.closed = true
	it.dir.mu.RUnlock()
}
