package identifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLen(t *testing.T) {
	assert.Equal(t, 1, New("hello").Len())
	assert.Equal(t, 3, FromParts("db", "table", "field").Len())
}

func TestStripHighestParent(t *testing.T) {
	full := FromParts("db", "table", "field")

	strip1, ok := full.StripHighestParent()
	require.True(t, ok)
	assert.True(t, strip1.Equal(FromParts("table", "field")))

	strip2, ok := strip1.StripHighestParent()
	require.True(t, ok)
	assert.True(t, strip2.Equal(FromParts("field")))

	_, ok = strip2.StripHighestParent()
	assert.False(t, ok, "a single-segment identifier has nothing left to strip")
}

func TestFromPartsPanicsOnEmpty(t *testing.T) {
	assert.Panics(t, func() {
		FromParts()
	})
}

func TestDisplay(t *testing.T) {
	assert.Equal(t, "table", New("table").String())
	assert.Equal(t, "db::table::field", FromParts("db", "table", "field").String())
}

func TestConcatenation(t *testing.T) {
	concat := Concat(New("db"), New("table"))
	assert.True(t, concat.Equal(FromParts("db", "table")))

	concat = Concat(New("db"), FromParts("table", "field"))
	assert.True(t, concat.Equal(FromParts("db", "table", "field")))
}

func TestFirstAndParent(t *testing.T) {
	full := FromParts("db", "table", "field")
	assert.Equal(t, "db", full.First().Base())

	parent, ok := full.Parent()
	require.True(t, ok)
	assert.True(t, parent.Equal(FromParts("db", "table")))

	_, ok = New("field").Parent()
	assert.False(t, ok)
}
