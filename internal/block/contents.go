package block

import (
	"math/big"
	"os"

	"github.com/dreamware/raddb/internal/tuple"
)

// entry pairs a tuple with its primary-key hash, the unit a block persists.
type entry struct {
	hash  *big.Int
	tuple tuple.Tuple
}

// contents is a block's in-memory state while loaded.
type contents struct {
	file    *os.File
	entries []entry
}

func (c *contents) indexOf(hash *big.Int) int {
	for i, e := range c.entries {
		if e.hash.Cmp(hash) == 0 {
			return i
		}
	}
	return -1
}

func (c *contents) get(hash *big.Int) (tuple.Tuple, bool) {
	if i := c.indexOf(hash); i >= 0 {
		return c.entries[i].tuple, true
	}
	return nil, false
}

// insert replaces the tuple stored at hash and returns the prior value, or
// appends a new entry and returns (nil, false).
func (c *contents) insert(hash *big.Int, t tuple.Tuple) (tuple.Tuple, bool) {
	if i := c.indexOf(hash); i >= 0 {
		old := c.entries[i].tuple
		c.entries[i].tuple = t
		return old, true
	}
	c.entries = append(c.entries, entry{hash: hash, tuple: t})
	return nil, false
}

func (c *contents) remove(hash *big.Int) (tuple.Tuple, bool) {
	i := c.indexOf(hash)
	if i < 0 {
		return nil, false
	}
	t := c.entries[i].tuple
	c.entries = append(c.entries[:i], c.entries[i+1:]...)
	return t, true
}

func (c *contents) all() []tuple.Tuple {
	out := make([]tuple.Tuple, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.tuple
	}
	return out
}

func (c *contents) takeAll() []tuple.Tuple {
	out := c.all()
	c.entries = nil
	return out
}

func (c *contents) takeAllWithKey() []entry {
	out := c.entries
	c.entries = nil
	return out
}
