package query

import (
	"testing"

	"github.com/dreamware/raddb/internal/identifier"
	"github.com/dreamware/raddb/internal/relation"
	"github.com/dreamware/raddb/internal/tuple"
	"github.com/dreamware/raddb/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRelation(t *testing.T, tableName string, fieldNames ...string) (*relation.Relation, identifier.Identifier) {
	t.Helper()
	table := identifier.FromParts("db", tableName)
	cols := make([]relation.Column, len(fieldNames))
	for i, f := range fieldNames {
		cols[i] = relation.Column{ID: identifier.WithParent(table, f), Kind: types.KindUint64}
	}
	def := relation.NewDefinition(cols...)
	return relation.New(t.TempDir(), table, def, []int{0}, 8), table
}

func fieldID(table identifier.Identifier, name string) identifier.Identifier {
	return identifier.WithParent(table, name)
}

func TestSourceSchemaMatchesRelation(t *testing.T) {
	rel, table := newRelation(t, "widgets", "id", "name")
	n := Source(rel)
	require.Len(t, n.Schema, 2)
	assert.True(t, n.Schema[0].ID.Equal(fieldID(table, "id")))
	assert.Equal(t, 1, n.Nodes())
}

func TestProjectionSchema(t *testing.T) {
	rel, table := newRelation(t, "widgets", "id", "name")
	src := Source(rel)
	proj := Projection(src, []ProjectionField{Flat(fieldID(table, "name"))})
	require.Len(t, proj.Schema, 1)
	assert.True(t, proj.Schema[0].ID.Equal(fieldID(table, "name")))
	assert.Equal(t, 2, proj.Nodes())
}

func TestProjectionRename(t *testing.T) {
	rel, table := newRelation(t, "widgets", "id")
	src := Source(rel)
	proj := Projection(src, []ProjectionField{Renamed(fieldID(table, "id"), "widget_id")})
	assert.Equal(t, "widget_id", proj.Schema[0].ID.String())
}

func TestCrossProductConcatenatesSchema(t *testing.T) {
	left, _ := newRelation(t, "a", "x")
	right, _ := newRelation(t, "b", "y")
	cp := CrossProduct(Source(left), Source(right))
	assert.Len(t, cp.Schema, 2)
	assert.Equal(t, 3, cp.Nodes())
}

func TestFindRelation(t *testing.T) {
	left, leftTable := newRelation(t, "a", "x")
	right, _ := newRelation(t, "b", "y")
	cp := CrossProduct(Source(left), Source(right))

	found := cp.FindRelation(leftTable)
	require.NotNil(t, found)
	assert.Same(t, left, found.Relation)

	assert.Nil(t, cp.FindRelation(identifier.FromParts("db", "missing")))
}

func TestFindRelationUsesAlias(t *testing.T) {
	rel, table := newRelation(t, "a", "x")
	_ = table
	aliased := SourceWithName(rel, "aliased")
	assert.NotNil(t, aliased.FindRelation(identifier.New("aliased")))
}

func TestFindRelations(t *testing.T) {
	left, leftTable := newRelation(t, "a", "x")
	right, rightTable := newRelation(t, "b", "y")
	cp := CrossProduct(Source(left), Source(right))

	both := cp.FindRelations([]identifier.Identifier{leftTable, rightTable})
	assert.Same(t, cp, both)

	onlyLeft := cp.FindRelations([]identifier.Identifier{leftTable})
	assert.Same(t, cp.Left, onlyLeft)

	assert.Nil(t, cp.FindRelations([]identifier.Identifier{identifier.FromParts("db", "nope")}))
}

func TestFindNodeWithFieldAmbiguous(t *testing.T) {
	left, leftTable := newRelation(t, "a", "shared")
	right, rightTable := newRelation(t, "b", "other")
	cp := CrossProduct(Source(left), Source(right))

	found := cp.FindNodeWithField(fieldID(leftTable, "shared"))
	require.NotNil(t, found)

	assert.Nil(t, cp.FindNodeWithField(identifier.New("shared")))
	_ = rightTable

	// the same relation under two sources exposes the field twice
	selfJoin := CrossProduct(Source(left), SourceWithName(left, "a2"))
	assert.Nil(t, selfJoin.FindNodeWithField(fieldID(leftTable, "shared")))
}

func TestContainsAllFields(t *testing.T) {
	left, leftTable := newRelation(t, "a", "x")
	right, rightTable := newRelation(t, "b", "y")
	cp := CrossProduct(Source(left), Source(right))

	assert.True(t, cp.ContainsAllFields([]identifier.Identifier{leftTable, rightTable}))
	assert.False(t, cp.ContainsAllFields([]identifier.Identifier{identifier.FromParts("db", "z")}))
}

func TestIsParentOrSelf(t *testing.T) {
	left, _ := newRelation(t, "a", "x")
	right, _ := newRelation(t, "b", "y")
	leftSrc := Source(left)
	cp := CrossProduct(leftSrc, Source(right))

	assert.True(t, cp.IsParentOrSelf(cp))
	assert.True(t, cp.IsParentOrSelf(leftSrc))
	assert.False(t, leftSrc.IsParentOrSelf(cp))
}

func TestApproximateCreatedTuplesCrossProduct(t *testing.T) {
	left, leftTable := newRelation(t, "a", "x")
	right, rightTable := newRelation(t, "b", "y")
	for i := uint64(0); i < 10; i++ {
		_, err := left.Insert(tuple.New(types.Uint64(i)))
		require.NoError(t, err)
		_, err = right.Insert(tuple.New(types.Uint64(i)))
		require.NoError(t, err)
	}

	cp := CrossProduct(Source(left), Source(right))
	assert.Equal(t, 100, cp.ApproximateCreatedTuples())

	inner := InnerJoin(Source(left), Source(right), NewJoinCondition(fieldID(leftTable, "x"), fieldID(rightTable, "y")))
	assert.Equal(t, 10, inner.ApproximateCreatedTuples())
}
