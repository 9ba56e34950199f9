package directory

import (
	"testing"

	"github.com/dreamware/raddb/internal/block"
	"github.com/dreamware/raddb/internal/identifier"
	"github.com/dreamware/raddb/internal/key"
	"github.com/dreamware/raddb/internal/tuple"
	"github.com/dreamware/raddb/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDirectory(t *testing.T, bucketSize int) *BlockDirectory {
	t.Helper()
	dir := t.TempDir()
	pk := key.NewPrimaryKeyDefinition(0)
	return New(dir, identifier.FromParts("db", "widgets"), block.Schema{types.KindUint8}, bucketSize, pk, false)
}

// Scenario 1 (spec.md §8.1, widened): capacity 4, insert 0..=9. A single
// unsigned column hashes to its own value (spec.md §3's identity shortcut),
// so 0..=7 splits perfectly 4-evens/4-odds across the two depth-1 buckets
// and never overflows; 0..=9 pushes each parity group to 5 entries, which
// does force both buckets to split (documented in DESIGN.md).
func TestInsertGrowsAndSplits(t *testing.T) {
	d := newTestDirectory(t, 4)

	var sum uint64
	for i := uint8(0); i <= 9; i++ {
		_, err := d.Insert(tuple.New(types.Uint8(i)))
		require.NoError(t, err)
		sum += uint64(i)
	}

	assert.Equal(t, 10, d.Len())
	assert.Equal(t, uint64(45), sum)
	assert.Greater(t, d.BucketCount(), 2, "overflowing both parity buckets must split at least one of them")

	it := d.StoredTuples()
	var seen uint64
	count := 0
	for {
		tup, ok := it.Next()
		if !ok {
			break
		}
		seen += tup.At(0).AsUint64()
		count++
	}
	assert.Equal(t, 10, count)
	assert.Equal(t, uint64(45), seen)
}

// Scenario 2 (spec.md §8.2): capacity 32, insert 0, then odds 1..63, then
// evens 2..62. With the identity hash the 32 odds and the 32 evens (0
// included) each fill one depth-1 bucket exactly to capacity, so no split
// happens; the test checks that every value is stored exactly once.
func TestLateSplitAllValuesPresentOnce(t *testing.T) {
	pk := key.NewPrimaryKeyDefinition(0)
	d := New(t.TempDir(), identifier.FromParts("db", "widgets"), block.Schema{types.KindUint64}, 32, pk, false)

	insert := func(v uint64) {
		_, err := d.Insert(tuple.New(types.Uint64(v)))
		require.NoError(t, err)
	}

	insert(0)
	for i := uint64(1); i < 64; i += 2 {
		insert(i)
	}
	for i := uint64(2); i < 64; i += 2 {
		insert(i)
	}

	assert.Equal(t, 64, d.Len())

	seen := make(map[uint64]int)
	it := d.StoredTuples()
	for {
		tup, ok := it.Next()
		if !ok {
			break
		}
		seen[tup.At(0).AsUint64()]++
	}
	assert.Len(t, seen, 64)
	for v, count := range seen {
		assert.Equal(t, 1, count, "value %d should appear exactly once", v)
	}
}

func TestInsertReplacesSamePrimaryKey(t *testing.T) {
	d := newTestDirectory(t, 4)

	_, err := d.Insert(tuple.New(types.Uint8(5)))
	require.NoError(t, err)
	old, err := d.Insert(tuple.New(types.Uint8(5)))
	require.NoError(t, err)
	assert.NotNil(t, old)
	assert.Equal(t, 1, d.Len())
}

func TestBlockIteratorYieldsPerBucket(t *testing.T) {
	d := newTestDirectory(t, 2)
	for i := uint8(0); i < 6; i++ {
		_, err := d.Insert(tuple.New(types.Uint8(i)))
		require.NoError(t, err)
	}

	bi := d.Blocks()
	total := 0
	for {
		tuples, ok := bi.Next()
		if !ok {
			break
		}
		total += len(tuples)
	}
	assert.Equal(t, 6, total)
}
