package relation

import (
	"strings"
	"testing"

	"github.com/dreamware/raddb/internal/identifier"
	"github.com/dreamware/raddb/internal/tuple"
	"github.com/dreamware/raddb/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTempRelationGetsUniqueNamespace(t *testing.T) {
	root := t.TempDir()
	name := identifier.FromParts("db", "joinresult")
	def := NewDefinition(Column{ID: identifier.WithParent(name, "v"), Kind: types.KindUint64})

	a := NewTempRelation(NewVolatile(root, name, def, []int{0}, 4))
	b := NewTempRelation(NewVolatile(root, name, def, []int{0}, 4))

	assert.True(t, strings.HasPrefix(a.Name().String(), "temp"))
	assert.True(t, strings.HasPrefix(b.Name().String(), "temp"))
	assert.False(t, a.Name().Equal(b.Name()), "each temp relation must get a distinct namespace")
	assert.True(t, strings.HasSuffix(a.Name().String(), "db::joinresult"))
}

func TestTempRelationUsableAfterRename(t *testing.T) {
	root := t.TempDir()
	name := identifier.FromParts("db", "joinresult")
	def := NewDefinition(Column{ID: identifier.WithParent(name, "v"), Kind: types.KindUint64})

	temp := NewTempRelation(NewVolatile(root, name, def, []int{0}, 4))
	_, err := temp.Insert(tuple.New(types.Uint64(5)))
	require.NoError(t, err)
	assert.Equal(t, 1, temp.Len())
	require.NoError(t, temp.Close())
}
