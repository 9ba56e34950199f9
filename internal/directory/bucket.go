package directory

import "github.com/dreamware/raddb/internal/block"

// bucket pairs a block with the local depth that determines how many
// directory entries currently route to it.
type bucket struct {
	localDepth int
	block      *block.Block
}

func (b *bucket) len() int {
	return b.block.Len()
}
