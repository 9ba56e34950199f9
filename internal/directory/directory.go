package directory

import (
	"math/big"
	"sync"

	"github.com/dreamware/raddb/internal/block"
	"github.com/dreamware/raddb/internal/identifier"
	"github.com/dreamware/raddb/internal/key"
	"github.com/dreamware/raddb/internal/storelog"
	"github.com/dreamware/raddb/internal/tuple"
	"github.com/pkg/errors"
)

// BlockDirectory maintains the extendible-hash index over a relation's
// blocks. Callers only ever control the bucket capacity; splitting and
// directory growth are automatic.
type BlockDirectory struct {
	parentTable identifier.Identifier
	schema      block.Schema
	storageRoot string
	volatile    bool
	bucketSize  int
	pkDef       key.PrimaryKeyDefinition

	mu          sync.RWMutex
	buckets     []*bucket
	globalDepth int
	mask        *big.Int
	directories map[string]int
}

// New creates an empty directory. storageRoot and parentTable locate each
// bucket's backing file on disk; a volatile directory never creates backing
// files at all (used by temporary relations).
func New(storageRoot string, parentTable identifier.Identifier, schema block.Schema, bucketSize int, pkDef key.PrimaryKeyDefinition, volatile bool) *BlockDirectory {
	d := &BlockDirectory{
		parentTable: parentTable,
		schema:      schema,
		storageRoot: storageRoot,
		volatile:    volatile,
		bucketSize:  bucketSize,
		pkDef:       pkDef,
		globalDepth: 1,
		directories: make(map[string]int),
	}
	d.mask = mask(d.globalDepth)
	return d
}

// mask returns the depth-bit all-ones mask: mask(3) == 0b111.
func mask(depth int) *big.Int {
	m := big.NewInt(0)
	one := big.NewInt(1)
	for i := 0; i < depth; i++ {
		m.Lsh(m, 1)
		m.Or(m, one)
	}
	return m
}

// HashTuple computes t's primary-key hash under this directory's key
// definition.
func (d *BlockDirectory) HashTuple(t tuple.Tuple) *big.Int {
	return d.pkDef.Project(t).Hash()
}

func (d *BlockDirectory) directoryNumber(hash *big.Int) *big.Int {
	return new(big.Int).And(hash, d.mask)
}

func dirKey(n *big.Int) string { return n.Text(16) }

// CreateNewBucket allocates a fresh block and bucket at localDepth, appends
// it to the directory's bucket list, and returns its index. Callers must
// hold the write lock.
func (d *BlockDirectory) CreateNewBucket(localDepth int) (int, error) {
	id := len(d.buckets)
	var blk *block.Block
	if d.volatile {
		blk = block.NewUnbacked(d.parentTable, id, d.schema)
	} else {
		b, err := block.New(d.storageRoot, d.parentTable, id, d.schema)
		if err != nil {
			return 0, errors.Wrapf(err, "directory: creating bucket %d for %s", id, d.parentTable)
		}
		blk = b
	}
	d.buckets = append(d.buckets, &bucket{localDepth: localDepth, block: blk})
	return id, nil
}

// bucketForDirectory returns the bucket index routed to by dirNum, creating
// a fresh depth-1 bucket and directory entry if none exists yet. Callers
// must hold the write lock.
func (d *BlockDirectory) bucketForDirectory(dirNum *big.Int) (int, error) {
	k := dirKey(dirNum)
	if idx, ok := d.directories[k]; ok {
		return idx, nil
	}
	idx, err := d.CreateNewBucket(1)
	if err != nil {
		return 0, err
	}
	d.directories[k] = idx
	return idx, nil
}

// ExpandDirectory doubles the directory table, incrementing the global
// depth: every existing entry gets a sibling whose key has the new high bit
// set, initially routed to the same bucket as its unset-bit twin. Callers
// must hold the write lock.
func (d *BlockDirectory) ExpandDirectory() {
	highBit := new(big.Int).Lsh(big.NewInt(1), uint(d.globalDepth))
	next := make(map[string]int, len(d.directories)*2)
	for k, v := range d.directories {
		n, _ := new(big.Int).SetString(k, 16)
		sibling := new(big.Int).Or(n, highBit)
		next[dirKey(n)] = v
		next[dirKey(sibling)] = v
	}
	d.directories = next
	d.globalDepth++
	d.mask = mask(d.globalDepth)
}

// Split grows bucketIndex into two buckets, expanding the directory first if
// the bucket's local depth has caught up to the global depth. Callers must
// hold the write lock.
func (d *BlockDirectory) Split(bucketIndex int, dirNum *big.Int) error {
	b := d.buckets[bucketIndex]
	if b.localDepth == d.globalDepth {
		d.ExpandDirectory()
	}
	b.localDepth++
	localDepth := b.localDepth

	w, err := b.block.WriteView()
	if err != nil {
		return errors.Wrap(err, "directory: opening bucket for split")
	}
	displaced := w.TakeAllWithKey()
	w.Close()

	newIndex, err := d.CreateNewBucket(localDepth)
	if err != nil {
		return err
	}

	smallMask := mask(localDepth - 1)
	originalCheck := new(big.Int).And(smallMask, dirNum)
	higherCheck := new(big.Int).Or(originalCheck, new(big.Int).Lsh(big.NewInt(1), uint(localDepth-1)))
	localMask := mask(localDepth)

	for k, v := range d.directories {
		if v != bucketIndex {
			continue
		}
		n, _ := new(big.Int).SetString(k, 16)
		maskedLocal := new(big.Int).And(n, localMask)
		if maskedLocal.Cmp(higherCheck) == 0 {
			d.directories[k] = newIndex
		}
	}

	storelog.Named("directory").Infow("split bucket", "table", d.parentTable.String(),
		"bucket", bucketIndex, "new_bucket", newIndex, "local_depth", localDepth, "moved", len(displaced))

	for _, ht := range displaced {
		hash := d.HashTuple(ht.Tuple)
		dn := d.directoryNumber(hash)
		idx, ok := d.directories[dirKey(dn)]
		if !ok {
			return errors.Errorf("directory: no bucket routed for %s after split", dirKey(dn))
		}
		target := d.buckets[idx]
		tw, err := target.block.WriteView()
		if err != nil {
			return errors.Wrap(err, "directory: redistributing tuple after split")
		}
		tw.InsertTuple(hash, ht.Tuple)
		tw.Close()
	}
	return nil
}

// Insert adds t, keyed by its primary-key hash, growing the directory as
// needed. It returns the tuple previously stored under the same key, if
// any.
func (d *BlockDirectory) Insert(t tuple.Tuple) (tuple.Tuple, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.insertLocked(t)
}

func (d *BlockDirectory) insertLocked(t tuple.Tuple) (tuple.Tuple, error) {
	hash := d.HashTuple(t)
	dirNum := d.directoryNumber(hash)
	bucketIndex, err := d.bucketForDirectory(dirNum)
	if err != nil {
		return nil, err
	}

	if d.buckets[bucketIndex].len() >= d.bucketSize {
		if err := d.Split(bucketIndex, dirNum); err != nil {
			return nil, err
		}
		return d.insertLocked(t)
	}

	w, err := d.buckets[bucketIndex].block.WriteView()
	if err != nil {
		return nil, err
	}
	defer w.Close()
	old, _ := w.InsertTuple(hash, t)

	if w.Len() > d.bucketSize {
		return nil, errors.Errorf("directory: bucket %d overflowed capacity %d", bucketIndex, d.bucketSize)
	}
	return old, nil
}

// BucketCount returns the number of buckets currently allocated.
func (d *BlockDirectory) BucketCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.buckets)
}

// Len returns the total number of tuples stored across every bucket.
func (d *BlockDirectory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	total := 0
	for _, b := range d.buckets {
		total += b.len()
	}
	return total
}

// GlobalDepth returns the directory's current global depth.
func (d *BlockDirectory) GlobalDepth() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.globalDepth
}

// Rename updates the identifier used to locate this directory's backing
// files. It does not move any file already on disk — RelationDefinition
// callers are responsible for any physical move (spec.md's rename operation
// is logical-only, see DESIGN.md).
func (d *BlockDirectory) Rename(name identifier.Identifier) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.parentTable = name
}
