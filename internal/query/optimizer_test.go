package query

import (
	"testing"

	"github.com/dreamware/raddb/internal/identifier"
	"github.com/dreamware/raddb/internal/tuple"
	"github.com/dreamware/raddb/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Scenario 3 (spec.md §8.3): AND-split equivalence. A relation of 1000
// tuples; tree σ(field1=32 ∧ field1≠34)(R) vs. its optimized form must
// produce equal results, equal estimated cardinality, and the optimized
// tree has exactly one more node (the AND split into two Selection nodes).
func TestAndSplitEquivalence(t *testing.T) {
	rel, table := newRelation(t, "test1", "field1")
	for i := uint64(0); i < 1000; i++ {
		_, err := rel.Insert(tuple.New(types.Uint64(i)))
		require.NoError(t, err)
	}

	field1 := fieldID(table, "field1")
	buildTree := func() *Node {
		return SelectOnCondition(Source(rel), And(
			NewCondition(field1, Equals(OperandUnsignedNumber(32))),
			NewCondition(field1, Nequals(OperandUnsignedNumber(34))),
		))
	}

	original := buildTree()
	originalCount := original.Nodes()
	originalEstimate := original.ApproximateCreatedTuples()

	optimizer, err := NewOptimizer(buildTree(), 10)
	require.NoError(t, err)
	optimizer.Optimize()
	optimized := optimizer.Root()

	assert.Equal(t, originalEstimate, optimized.ApproximateCreatedTuples())
	assert.NotEqual(t, originalCount, optimized.Nodes())
	assert.Equal(t, originalCount+1, optimized.Nodes())

	originalResult, err := Execute(original)
	require.NoError(t, err)
	optimizedResult, err := Execute(optimized)
	require.NoError(t, err)

	assert.Equal(t, tuplesToSet(originalResult.Tuples()), tuplesToSet(optimizedResult.Tuples()))
	assert.Len(t, optimizedResult.Tuples(), 1)
	assert.Equal(t, uint64(32), optimizedResult.Tuples()[0].At(0).AsUint64())
}

func TestAndSplitShapeNoTopLevelAnd(t *testing.T) {
	rel, table := newRelation(t, "test1", "field1")
	field1 := fieldID(table, "field1")
	tree := SelectOnCondition(Source(rel), And(
		NewCondition(field1, Equals(OperandUnsignedNumber(1))),
		NewCondition(field1, Nequals(OperandUnsignedNumber(2))),
	))

	optimizer, err := NewOptimizer(tree, 0)
	require.NoError(t, err)
	optimizer.Optimize()

	var walk func(*Node)
	walk = func(n *Node) {
		if n.Op == OpSelection {
			assert.False(t, n.Condition.IsConjunction(), "no selection should retain a top-level And after splitting")
		}
		if n.Left != nil {
			walk(n.Left)
		}
		if n.Right != nil {
			walk(n.Right)
		}
	}
	walk(optimizer.Root())
}

func TestOptimizerMissingFieldErrorsAtConstruction(t *testing.T) {
	rel, _ := newRelation(t, "test1", "field1")
	missing := identifier.FromParts("db", "test1", "nope")
	tree := SelectOnCondition(Source(rel), NewCondition(missing, Equals(OperandUnsignedNumber(1))))

	_, err := NewOptimizer(tree, 10)
	require.Error(t, err)
	var mfe *MissingFieldError
	assert.ErrorAs(t, err, &mfe)
}

func TestOptimizerSamplesCollectedForUnambiguousField(t *testing.T) {
	rel, table := newRelation(t, "test1", "field1")
	for i := uint64(0); i < 50; i++ {
		_, err := rel.Insert(tuple.New(types.Uint64(i)))
		require.NoError(t, err)
	}
	field1 := fieldID(table, "field1")
	tree := SelectOnCondition(Source(rel), NewCondition(field1, Equals(OperandUnsignedNumber(1))))

	optimizer, err := NewOptimizer(tree, 5)
	require.NoError(t, err)
	samples := optimizer.Samples()
	require.Contains(t, samples, field1.String())
	assert.Len(t, samples[field1.String()], 5)
}

func TestCostMonotonicity(t *testing.T) {
	rel, table := newRelation(t, "test1", "field1")
	for i := uint64(0); i < 200; i++ {
		_, err := rel.Insert(tuple.New(types.Uint64(i)))
		require.NoError(t, err)
	}
	field1 := fieldID(table, "field1")
	tree := SelectOnCondition(SelectOnCondition(Source(rel),
		NewCondition(field1, Nequals(OperandUnsignedNumber(1)))),
		NewCondition(field1, Equals(OperandUnsignedNumber(2))))

	before := tree.ApproximateCreatedTuples()
	optimizer, err := NewOptimizer(tree, 0)
	require.NoError(t, err)
	ratio := optimizer.Optimize()
	after := optimizer.Root().ApproximateCreatedTuples()

	assert.LessOrEqual(t, after, before)
	assert.LessOrEqual(t, ratio, 1.0+1e-9)
}

func tuplesToSet(tuples []tuple.Tuple) map[string]int {
	out := make(map[string]int, len(tuples))
	for _, t := range tuples {
		out[t.Serialize()]++
	}
	return out
}
