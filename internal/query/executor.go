package query

import (
	"github.com/dreamware/raddb/internal/identifier"
	"github.com/dreamware/raddb/internal/relation"
	"github.com/dreamware/raddb/internal/tuple"
	"github.com/dreamware/raddb/internal/types"
	"github.com/pkg/errors"
)

// ResultKind tags which variant a QueryResult is, per spec.md §9's rewrite
// of the "reflection-flavored repeatable iterator test": the executor
// branches on this tag instead of probing a result at runtime.
type ResultKind int

const (
	// BlockStream results wrap a Relation directly: every read re-opens the
	// relation's block iterator from the start, so the result can be
	// rescanned as many times as a block-nested-loop join needs without
	// materializing in between.
	BlockStream ResultKind = iota
	// Materialized results are a fixed, already-computed tuple list — the
	// output of every operator that isn't a bare Source.
	Materialized
)

// QueryResult is the output of executing one query node: a schema plus the
// rows it produced, and the cost bookkeeping spec.md §4.G defines.
//
// A Source node's result is BlockStream; it re-reads rel's blocks on every
// block scan, and Tuples caches a flattened copy the first time it is
// called. Every other operator materializes
// its output into tuples at Kind Materialized, since nothing backs a
// Selection/Projection/join result with an on-disk relation to rescan.
type QueryResult struct {
	Schema       []relation.Column
	Kind         ResultKind
	rel          *relation.Relation // set only when Kind == BlockStream
	tuples       []tuple.Tuple      // set when Kind == Materialized; lazily filled for BlockStream
	totalCreated int
}

func newBlockStreamResult(schema []relation.Column, rel *relation.Relation) *QueryResult {
	return &QueryResult{Schema: schema, Kind: BlockStream, rel: rel, totalCreated: rel.Len()}
}

func newMaterializedResult(schema []relation.Column, tuples []tuple.Tuple, totalCreated int) *QueryResult {
	return &QueryResult{Schema: schema, Kind: Materialized, tuples: tuples, totalCreated: totalCreated}
}

// blocks returns r's tuples grouped the way they're physically stored: one
// slice per relation block for a BlockStream result (re-reading the
// relation from scratch on every call, so the caller can rescan it as many
// times as a block-nested-loop join needs), or a single slice holding every
// tuple for a Materialized result.
func (r *QueryResult) blocks() [][]tuple.Tuple {
	if r.Kind == Materialized {
		return [][]tuple.Tuple{r.tuples}
	}
	it := r.rel.Blocks()
	defer it.Close()

	var out [][]tuple.Tuple
	for {
		b, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, b)
	}
	return out
}

// Tuples returns every row the result holds, materializing a BlockStream
// result (and caching the result) on first call.
func (r *QueryResult) Tuples() []tuple.Tuple {
	if r.Kind == Materialized {
		return r.tuples
	}
	if r.tuples == nil {
		for _, b := range r.blocks() {
			r.tuples = append(r.tuples, b...)
		}
	}
	return r.tuples
}

// Len returns the number of rows in the result.
func (r *QueryResult) Len() int { return len(r.Tuples()) }

// TotalCreatedTuples is the execution-cost counter from spec.md §4.G: this
// node's own output length plus the sum of every child's TotalCreatedTuples.
func (r *QueryResult) TotalCreatedTuples() int { return r.totalCreated }

// Execute interprets n (and its subtree) into a QueryResult.
func Execute(n *Node) (*QueryResult, error) {
	switch n.Op {
	case OpSource:
		return executeSource(n)
	case OpProjection:
		return executeProjection(n)
	case OpSelection:
		return executeSelection(n)
	case OpCrossProduct:
		return executeCrossProduct(n)
	case OpInnerJoin:
		return executeInnerJoin(n)
	case OpLeftJoin:
		return executeOuterJoin(n, true)
	case OpRightJoin:
		return executeOuterJoin(n, false)
	case OpNaturalJoin:
		return executeNaturalJoin(n)
	default:
		return nil, &InvalidQueryShapeError{Detail: "unrecognized operator"}
	}
}

func executeSource(n *Node) (*QueryResult, error) {
	if n.Relation == nil {
		return nil, &InvalidQueryShapeError{Detail: "source node without a backing relation"}
	}
	return newBlockStreamResult(n.Schema, n.Relation), nil
}

func executeProjection(n *Node) (*QueryResult, error) {
	if n.Left == nil {
		return nil, &InvalidQueryShapeError{Detail: "projection without a child"}
	}
	child, err := Execute(n.Left)
	if err != nil {
		return nil, err
	}

	positions := make([]int, len(n.Fields))
	for i, f := range n.Fields {
		idx, ok := schemaIndex(child.Schema, f.ID)
		if !ok {
			return nil, &MissingFieldError{Field: f.ID}
		}
		positions[i] = idx
	}

	childTuples := child.Tuples()
	out := make([]tuple.Tuple, len(childTuples))
	for i, t := range childTuples {
		out[i] = tuple.Project(t, positions...)
	}
	return newMaterializedResult(n.Schema, out, len(out)+child.totalCreated), nil
}

func executeSelection(n *Node) (*QueryResult, error) {
	if n.Left == nil {
		return nil, &InvalidQueryShapeError{Detail: "selection without a child"}
	}
	child, err := Execute(n.Left)
	if err != nil {
		return nil, err
	}

	var out []tuple.Tuple
	for _, t := range child.Tuples() {
		ok, err := evalCondition(n.Condition, child.Schema, t)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, t)
		}
	}
	return newMaterializedResult(n.Schema, out, len(out)+child.totalCreated), nil
}

// blockNestedLoop implements spec.md §4.G's CrossProduct/InnerJoin iteration
// schedule: the outer side is walked block by block, and for every outer
// block the inner side's blocks are rescanned from the start. A
// Materialized inner side is just one block, reused as-is on every outer
// iteration; a BlockStream inner side (a repeatable Source) is genuinely
// re-read from its relation each time, so this never requires holding the
// whole inner relation in memory at once.
func blockNestedLoop(left, right *QueryResult, match func(l, r tuple.Tuple) bool) []tuple.Tuple {
	var out []tuple.Tuple
	for _, lblock := range left.blocks() {
		for _, rblock := range right.blocks() {
			for _, l := range lblock {
				for _, r := range rblock {
					if match == nil || match(l, r) {
						out = append(out, l.Concat(r))
					}
				}
			}
		}
	}
	return out
}

func executeCrossProduct(n *Node) (*QueryResult, error) {
	left, right, err := executeChildren(n)
	if err != nil {
		return nil, err
	}

	out := blockNestedLoop(left, right, nil)
	return newMaterializedResult(n.Schema, out, len(out)+left.totalCreated+right.totalCreated), nil
}

func executeInnerJoin(n *Node) (*QueryResult, error) {
	left, right, err := executeChildren(n)
	if err != nil {
		return nil, err
	}

	leftIdx, ok := schemaIndex(left.Schema, n.JoinCond.LeftID)
	if !ok {
		return nil, &MissingFieldError{Field: n.JoinCond.LeftID}
	}
	rightIdx, ok := schemaIndex(right.Schema, n.JoinCond.RightID)
	if !ok {
		return nil, &MissingFieldError{Field: n.JoinCond.RightID}
	}

	out := blockNestedLoop(left, right, func(l, r tuple.Tuple) bool {
		return valuesEqual(l.At(leftIdx), r.At(rightIdx))
	})
	return newMaterializedResult(n.Schema, out, len(out)+left.totalCreated+right.totalCreated), nil
}

// executeOuterJoin implements LeftJoin (preserveLeft=true) and RightJoin
// (preserveLeft=false): every tuple of the preserved side appears at least
// once, padded with Null on the other side's columns when no match exists.
// Tracking which preserved-side tuples matched requires seeing every
// candidate up front, so — per spec.md §4.G, which leaves outer-join
// streaming optional — both sides are materialized here rather than walked
// block-nested-loop.
func executeOuterJoin(n *Node, preserveLeft bool) (*QueryResult, error) {
	left, right, err := executeChildren(n)
	if err != nil {
		return nil, err
	}

	leftIdx, ok := schemaIndex(left.Schema, n.JoinCond.LeftID)
	if !ok {
		return nil, &MissingFieldError{Field: n.JoinCond.LeftID}
	}
	rightIdx, ok := schemaIndex(right.Schema, n.JoinCond.RightID)
	if !ok {
		return nil, &MissingFieldError{Field: n.JoinCond.RightID}
	}

	nullPad := func(width int) tuple.Tuple {
		t := make(tuple.Tuple, width)
		for i := range t {
			t[i] = types.Null()
		}
		return t
	}

	leftTuples, rightTuples := left.Tuples(), right.Tuples()
	var out []tuple.Tuple
	if preserveLeft {
		for _, l := range leftTuples {
			matched := false
			for _, r := range rightTuples {
				if valuesEqual(l.At(leftIdx), r.At(rightIdx)) {
					out = append(out, l.Concat(r))
					matched = true
				}
			}
			if !matched {
				out = append(out, l.Concat(nullPad(len(right.Schema))))
			}
		}
	} else {
		for _, r := range rightTuples {
			matched := false
			for _, l := range leftTuples {
				if valuesEqual(l.At(leftIdx), r.At(rightIdx)) {
					out = append(out, l.Concat(r))
					matched = true
				}
			}
			if !matched {
				out = append(out, nullPad(len(left.Schema)).Concat(r))
			}
		}
	}

	return newMaterializedResult(n.Schema, out, len(out)+left.totalCreated+right.totalCreated), nil
}

// executeNaturalJoin matches rows on every field name the two sides share
// (by base identifier, since two distinct relations' fully-qualified field
// identifiers never collide even when they name "the same" column).
func executeNaturalJoin(n *Node) (*QueryResult, error) {
	left, right, err := executeChildren(n)
	if err != nil {
		return nil, err
	}

	var sharedLeft, sharedRight []int
	for li, lc := range left.Schema {
		for ri, rc := range right.Schema {
			if lc.ID.Base() == rc.ID.Base() {
				sharedLeft = append(sharedLeft, li)
				sharedRight = append(sharedRight, ri)
			}
		}
	}

	out := blockNestedLoop(left, right, func(l, r tuple.Tuple) bool {
		for i := range sharedLeft {
			if !valuesEqual(l.At(sharedLeft[i]), r.At(sharedRight[i])) {
				return false
			}
		}
		return true
	})
	return newMaterializedResult(n.Schema, out, len(out)+left.totalCreated+right.totalCreated), nil
}

func executeChildren(n *Node) (*QueryResult, *QueryResult, error) {
	if n.Left == nil || n.Right == nil {
		return nil, nil, &InvalidQueryShapeError{Detail: "two-child operator missing a child"}
	}
	left, err := Execute(n.Left)
	if err != nil {
		return nil, nil, err
	}
	right, err := Execute(n.Right)
	if err != nil {
		return nil, nil, err
	}
	return left, right, nil
}

func schemaIndex(schema []relation.Column, id identifier.Identifier) (int, bool) {
	for i, c := range schema {
		if c.ID.Equal(id) {
			return i, true
		}
	}
	return 0, false
}

func operandValue(op Operand, schema []relation.Column, t tuple.Tuple) (types.Value, error) {
	switch op.kind {
	case operandID:
		idx, ok := schemaIndex(schema, op.id)
		if !ok {
			return types.Value{}, &MissingFieldError{Field: op.id}
		}
		return t.At(idx), nil
	case operandSigned:
		return types.Int64(op.signed), nil
	case operandUnsigned:
		return types.Uint64(op.unsigned), nil
	case operandFloat:
		return types.Float64(op.float), nil
	case operandString:
		return types.String(op.str), nil
	default:
		return types.Value{}, errors.New("query: operand of unknown kind")
	}
}

func evalCondition(c Condition, schema []relation.Column, t tuple.Tuple) (bool, error) {
	return evalOperation(c.Base, c.Operation, schema, t)
}

func evalOperation(base identifier.Identifier, op ConditionOperation, schema []relation.Column, t tuple.Tuple) (bool, error) {
	switch op.kind {
	case opEquals, opNequals:
		idx, ok := schemaIndex(schema, base)
		if !ok {
			return false, &MissingFieldError{Field: base}
		}
		operandVal, err := operandValue(op.operand, schema, t)
		if err != nil {
			return false, err
		}
		eq := valuesEqual(t.At(idx), operandVal)
		if op.kind == opNequals {
			return !eq, nil
		}
		return eq, nil
	case opAnd:
		left, err := evalOperation(base, *op.left, schema, t)
		if err != nil || !left {
			return false, err
		}
		return evalCondition(*op.right, schema, t)
	case opOr:
		left, err := evalOperation(base, *op.left, schema, t)
		if err != nil {
			return false, err
		}
		if left {
			return true, nil
		}
		return evalCondition(*op.right, schema, t)
	default:
		return false, errors.New("query: condition operation of unknown kind")
	}
}

// valuesEqual compares two values for the purposes of condition/join
// evaluation, treating same-category numeric kinds (e.g. Uint8 vs. the
// Uint64 an UnsignedNumber operand literal always carries) as comparable
// even when their exact Kind differs, which types.Value.Equal deliberately
// does not do.
func valuesEqual(a, b types.Value) bool {
	if a.Kind() == b.Kind() {
		return a.Equal(b)
	}
	switch {
	case a.Kind().IsUnsignedInteger() && b.Kind().IsUnsignedInteger():
		return a.AsUint64() == b.AsUint64()
	case isSignedInteger(a.Kind()) && isSignedInteger(b.Kind()):
		return a.AsInt64() == b.AsInt64()
	case isFloatKind(a.Kind()) && isFloatKind(b.Kind()):
		return a.AsFloat64() == b.AsFloat64()
	default:
		return false
	}
}

func isSignedInteger(k types.Kind) bool {
	switch k {
	case types.KindInt8, types.KindInt16, types.KindInt32, types.KindInt64, types.KindYear:
		return true
	default:
		return false
	}
}

func isFloatKind(k types.Kind) bool {
	return k == types.KindFloat32 || k == types.KindFloat64
}
