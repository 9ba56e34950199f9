package relation

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/dreamware/raddb/internal/identifier"
	"github.com/dreamware/raddb/internal/tuple"
	"github.com/dreamware/raddb/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func widgetsDefinition() RelationDefinition {
	table := identifier.FromParts("db", "widgets")
	return NewDefinition(
		Column{ID: identifier.WithParent(table, "id"), Kind: types.KindUint64},
		Column{ID: identifier.WithParent(table, "name"), Kind: types.KindString},
	)
}

func TestEmptyRelation(t *testing.T) {
	r := New(t.TempDir(), identifier.FromParts("db", "widgets"), widgetsDefinition(), []int{0}, 4)
	assert.True(t, r.IsEmpty())
	assert.Equal(t, 0, r.Len())
}

func TestAddOne(t *testing.T) {
	r := New(t.TempDir(), identifier.FromParts("db", "widgets"), widgetsDefinition(), []int{0}, 4)

	old, err := r.Insert(tuple.New(types.Uint64(1), types.String("bolt")))
	require.NoError(t, err)
	assert.Nil(t, old)
	assert.Equal(t, 1, r.Len())
	assert.False(t, r.IsEmpty())
}

func TestAddMany(t *testing.T) {
	r := New(t.TempDir(), identifier.FromParts("db", "widgets"), widgetsDefinition(), []int{0}, 4)

	for i := uint64(0); i < 20; i++ {
		_, err := r.Insert(tuple.New(types.Uint64(i), types.String("w")))
		require.NoError(t, err)
	}
	assert.Equal(t, 20, r.Len())

	it := r.Tuples()
	count := 0
	for {
		_, ok := it.Next()
		if !ok {
			break
		}
		count++
	}
	assert.Equal(t, 20, count)
}

func TestAddManyRandom(t *testing.T) {
	r := New(t.TempDir(), identifier.FromParts("db", "widgets"), widgetsDefinition(), []int{0}, 8)

	seen := make(map[uint64]bool)
	rng := rand.New(rand.NewSource(7))
	for len(seen) < 500 {
		v := rng.Uint64() % 100000
		if seen[v] {
			continue
		}
		seen[v] = true
		_, err := r.Insert(tuple.New(types.Uint64(v), types.String("w")))
		require.NoError(t, err)
	}

	assert.Equal(t, len(seen), r.Len())

	it := r.Tuples()
	found := make(map[uint64]bool)
	for {
		tup, ok := it.Next()
		if !ok {
			break
		}
		found[tup.At(0).AsUint64()] = true
	}
	assert.Equal(t, seen, found)
}

func TestGetFieldIndex(t *testing.T) {
	r := New(t.TempDir(), identifier.FromParts("db", "widgets"), widgetsDefinition(), []int{0}, 4)
	table := identifier.FromParts("db", "widgets")

	idx, ok := r.GetFieldIndex(identifier.WithParent(table, "name"))
	require.True(t, ok)
	assert.Equal(t, 1, idx)

	_, ok = r.GetFieldIndex(identifier.WithParent(table, "missing"))
	assert.False(t, ok)
}

func TestInsertReplacesOnSamePrimaryKey(t *testing.T) {
	r := New(t.TempDir(), identifier.FromParts("db", "widgets"), widgetsDefinition(), []int{0}, 4)

	_, err := r.Insert(tuple.New(types.Uint64(1), types.String("bolt")))
	require.NoError(t, err)
	old, err := r.Insert(tuple.New(types.Uint64(1), types.String("nut")))
	require.NoError(t, err)
	require.NotNil(t, old)
	assert.Equal(t, "bolt", old.At(1).AsString())
	assert.Equal(t, 1, r.Len())
}

func TestCloseRemovesStorageDirectory(t *testing.T) {
	root := t.TempDir()
	name := identifier.FromParts("db", "widgets")
	r := New(root, name, widgetsDefinition(), []int{0}, 4)

	_, err := r.Insert(tuple.New(types.Uint64(1), types.String("bolt")))
	require.NoError(t, err)

	path := filepath.Join(root, filepath.Join(name.Parts()...))
	_, err = os.Stat(path)
	require.NoError(t, err, "expected backing directory to exist after insert")

	require.NoError(t, r.Close())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

// Scenario 6 (spec.md §8.6): volatile relation lifecycle — create, insert a
// large batch of distinct values, checksum-sum, full-scan, verify sum, then
// Close and confirm no on-disk trace remains.
func TestVolatileRelationLifecycle(t *testing.T) {
	root := t.TempDir()
	name := identifier.FromParts("db", "scratch")
	def := NewDefinition(Column{ID: identifier.WithParent(name, "v"), Kind: types.KindUint64})
	r := NewVolatile(root, name, def, []int{0}, 64)

	rng := rand.New(rand.NewSource(42))
	seen := make(map[uint64]bool)
	var wantSum uint64
	for len(seen) < 2048 {
		v := rng.Uint64() % (1 << 40)
		if seen[v] {
			continue
		}
		seen[v] = true
		wantSum += v
		_, err := r.Insert(tuple.New(types.Uint64(v)))
		require.NoError(t, err)
	}

	assert.Equal(t, 2048, r.Len())

	it := r.Tuples()
	var gotSum uint64
	count := 0
	for {
		tup, ok := it.Next()
		if !ok {
			break
		}
		gotSum += tup.At(0).AsUint64()
		count++
	}
	assert.Equal(t, 2048, count)
	assert.Equal(t, wantSum, gotSum)

	require.NoError(t, r.Close())
	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries, "volatile relation must never have written to disk")
}

func TestRename(t *testing.T) {
	r := New(t.TempDir(), identifier.FromParts("db", "widgets"), widgetsDefinition(), []int{0}, 4)
	newName := identifier.FromParts("db", "gadgets")
	r.Rename(newName)
	assert.True(t, r.Name().Equal(newName))
}
