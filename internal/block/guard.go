package block

import (
	"math/big"
	"sync/atomic"

	"github.com/dreamware/raddb/internal/tuple"
)

// ReadGuard grants read-only access to a block's loaded contents. Callers
// must call Close when finished; until then the block cannot be unloaded
// out from under them.
type ReadGuard struct {
	block *Block
}

// ReadView locks the block for reading, loading it first if necessary, and
// returns a guard scoping that access.
func (b *Block) ReadView() (*ReadGuard, error) {
	b.usage.RLock()
	atomic.AddInt32(&b.reads, 1)
	b.accessed.addAccess()
	if err := b.ensureLoaded(); err != nil {
		atomic.AddInt32(&b.reads, -1)
		b.usage.RUnlock()
		return nil, err
	}
	return &ReadGuard{block: b}, nil
}

// Close releases the read lock and allows the block to be considered for
// eviction.
func (g *ReadGuard) Close() {
	atomic.AddInt32(&g.block.reads, -1)
	g.block.usage.RUnlock()
	g.block.notifyFinish()
}

// GetTuple returns the tuple stored under hash, if any.
func (g *ReadGuard) GetTuple(hash *big.Int) (tuple.Tuple, bool) {
	g.block.mu.Lock()
	defer g.block.mu.Unlock()
	return g.block.c.get(hash)
}

// All returns every tuple currently stored in the block, in no particular
// order.
func (g *ReadGuard) All() []tuple.Tuple {
	g.block.mu.Lock()
	defer g.block.mu.Unlock()
	return g.block.c.all()
}

// AllWithKey returns every (hash, tuple) pair currently stored.
func (g *ReadGuard) AllWithKey() []HashedTuple {
	g.block.mu.Lock()
	defer g.block.mu.Unlock()
	out := make([]HashedTuple, len(g.block.c.entries))
	for i, e := range g.block.c.entries {
		out[i] = HashedTuple{Hash: e.hash, Tuple: e.tuple}
	}
	return out
}

// Len returns the number of tuples currently visible through this guard.
func (g *ReadGuard) Len() int {
	g.block.mu.Lock()
	defer g.block.mu.Unlock()
	return len(g.block.c.entries)
}

// HashedTuple pairs a tuple with the primary-key hash it is stored under.
type HashedTuple struct {
	Hash  *big.Int
	Tuple tuple.Tuple
}

// WriteGuard grants mutating access to a block's loaded contents.
type WriteGuard struct {
	block *Block
}

// WriteView locks the block for writing, loading it first if necessary, and
// returns a guard scoping that access.
func (b *Block) WriteView() (*WriteGuard, error) {
	b.usage.Lock()
	b.accessed.addAccess()
	if err := b.ensureLoaded(); err != nil {
		b.usage.Unlock()
		return nil, err
	}
	return &WriteGuard{block: b}, nil
}

// Close releases the write lock and allows the block to be considered for
// eviction.
func (g *WriteGuard) Close() {
	g.block.usage.Unlock()
	g.block.notifyFinish()
}

// InsertTuple stores t under hash, returning the tuple it replaced (if any).
func (g *WriteGuard) InsertTuple(hash *big.Int, t tuple.Tuple) (tuple.Tuple, bool) {
	g.block.mu.Lock()
	defer g.block.mu.Unlock()
	return g.block.c.insert(hash, t)
}

// RemoveTuple deletes the tuple stored under hash, returning it if present.
func (g *WriteGuard) RemoveTuple(hash *big.Int) (tuple.Tuple, bool) {
	g.block.mu.Lock()
	defer g.block.mu.Unlock()
	return g.block.c.remove(hash)
}

// GetTuple returns the tuple stored under hash, if any.
func (g *WriteGuard) GetTuple(hash *big.Int) (tuple.Tuple, bool) {
	g.block.mu.Lock()
	defer g.block.mu.Unlock()
	return g.block.c.get(hash)
}

// TakeAll empties the block, returning every tuple it held.
func (g *WriteGuard) TakeAll() []tuple.Tuple {
	g.block.mu.Lock()
	defer g.block.mu.Unlock()
	return g.block.c.takeAll()
}

// TakeAllWithKey empties the block, returning every (hash, tuple) pair it
// held — used when a bucket splits and must redistribute its tuples.
func (g *WriteGuard) TakeAllWithKey() []HashedTuple {
	g.block.mu.Lock()
	defer g.block.mu.Unlock()
	taken := g.block.c.takeAllWithKey()
	out := make([]HashedTuple, len(taken))
	for i, e := range taken {
		out[i] = HashedTuple{Hash: e.hash, Tuple: e.tuple}
	}
	return out
}

// Len returns the number of tuples currently visible through this guard.
func (g *WriteGuard) Len() int {
	g.block.mu.Lock()
	defer g.block.mu.Unlock()
	return len(g.block.c.entries)
}
