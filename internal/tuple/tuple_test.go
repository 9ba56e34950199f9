package tuple

import (
	"testing"

	"github.com/dreamware/raddb/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConcat(t *testing.T) {
	a := New(types.Int32(1), types.Int32(2))
	b := New(types.Int32(3))
	got := a.Concat(b)
	assert.True(t, got.Equal(New(types.Int32(1), types.Int32(2), types.Int32(3))))
}

func TestRemoveAtDescendingOrder(t *testing.T) {
	row := New(types.Int32(0), types.Int32(1), types.Int32(2), types.Int32(3))
	got := RemoveAt(row, 3, 1)
	assert.True(t, got.Equal(New(types.Int32(0), types.Int32(2))))
}

func TestProject(t *testing.T) {
	row := New(types.Int32(10), types.Int32(20), types.Int32(30))
	got := Project(row, 2, 0)
	assert.True(t, got.Equal(New(types.Int32(30), types.Int32(10))))
}

func TestSerializeParseRoundTrip(t *testing.T) {
	row := New(types.Int32(7), types.String("hi"), types.Null())
	kinds := []types.Kind{types.KindInt32, types.KindString, types.KindInt32}

	line := row.Serialize()
	got, err := Parse(line, kinds)
	require.NoError(t, err)
	assert.True(t, row.Equal(got))
}
