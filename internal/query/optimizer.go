package query

import (
	"math/rand"
	"time"

	"github.com/dreamware/raddb/internal/identifier"
	"github.com/dreamware/raddb/internal/storelog"
	"github.com/dreamware/raddb/internal/types"
)

// maxRewritePasses bounds the fixed-point loop Optimize runs; the rule set
// is confluent in practice well under this, it only guards against a rule
// bug that would otherwise oscillate forever.
const maxRewritePasses = 64

// Optimizer rewrites a query tree toward a cheaper equivalent plan and
// tracks a reservoir sample per selection-referenced field, per spec.md
// §4.F.
type Optimizer struct {
	root        *Node
	startTuples int
	samples     map[string][]types.Value
}

// NewOptimizer walks query to collect every field referenced by a
// Selection node; for each field resolving to exactly one source relation,
// it draws up to sampleBudget random values from that relation (reservoir
// sampling) for future histogram-driven selectivity. A field that matches
// zero source relations is a hard error; one matching more than one is
// left unsampled (ambiguous), matching spec.md §4.F's "resolves to exactly
// one source relation" qualifier.
func NewOptimizer(query *Node, sampleBudget int) (*Optimizer, error) {
	samples := make(map[string][]types.Value)
	for _, field := range collectSelectionFields(query) {
		matches := query.sourcesWithField(field)
		switch len(matches) {
		case 0:
			return nil, &MissingFieldError{Field: field}
		case 1:
			vals, err := sampleField(field, matches[0], sampleBudget)
			if err != nil {
				return nil, err
			}
			samples[field.String()] = vals
		default:
			// ambiguous: resolves to more than one relation, skip sampling.
		}
	}

	return &Optimizer{
		root:        query,
		startTuples: query.ApproximateCreatedTuples(),
		samples:     samples,
	}, nil
}

// Samples returns the reservoir sample collected per field, keyed by the
// field's string identifier.
func (o *Optimizer) Samples() map[string][]types.Value {
	return o.samples
}

// Root returns the (possibly rewritten) query tree.
func (o *Optimizer) Root() *Node { return o.root }

// Optimize applies rewrites until a fixed point, then returns
// new_estimate/original_estimate — the ratio of created tuples the
// optimized plan is expected to produce relative to the original.
func (o *Optimizer) Optimize() float64 {
	start := o.startTuples
	if start == 0 {
		start = 1
	}

	for i := 0; i < maxRewritePasses; i++ {
		newRoot, changed := rewriteOnce(o.root)
		o.root = newRoot
		if !changed {
			break
		}
	}

	ratio := float64(o.root.ApproximateCreatedTuples()) / float64(start)
	storelog.Named("optimizer").Infow("optimized query", "nodes", o.root.Nodes(), "ratio", ratio)
	return ratio
}

func sampleField(field identifier.Identifier, source *Node, budget int) ([]types.Value, error) {
	if budget <= 0 {
		return nil, nil
	}
	idx, ok := source.Relation.GetFieldIndex(field)
	if !ok {
		return nil, &MissingFieldError{Field: field}
	}

	it := source.Relation.Tuples()
	defer it.Close()

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	reservoir := make([]types.Value, 0, budget)
	count := 0
	for {
		tup, ok := it.Next()
		if !ok {
			break
		}
		count++
		v := tup.At(idx)
		if len(reservoir) < budget {
			reservoir = append(reservoir, v)
			continue
		}
		j := rng.Intn(count)
		if j < budget {
			reservoir[j] = v
		}
	}
	return reservoir, nil
}

func collectSelectionFields(n *Node) []identifier.Identifier {
	seen := make(map[string]identifier.Identifier)
	var walk func(*Node)
	walk = func(cur *Node) {
		if cur.Op == OpSelection {
			for _, f := range referencedFields(cur.Condition) {
				seen[f.String()] = f
			}
		}
		for _, c := range cur.children() {
			walk(c)
		}
	}
	walk(n)

	out := make([]identifier.Identifier, 0, len(seen))
	for _, f := range seen {
		out = append(out, f)
	}
	return out
}

// rewriteOnce applies every rule once, bottom-up, returning the (possibly
// replaced) subtree root and whether anything changed.
func rewriteOnce(n *Node) (*Node, bool) {
	changed := false
	if n.Left != nil {
		newLeft, c := rewriteOnce(n.Left)
		n.Left = newLeft
		changed = changed || c
	}
	if n.Right != nil {
		newRight, c := rewriteOnce(n.Right)
		n.Right = newRight
		changed = changed || c
	}

	newNode, c := applyRules(n)
	if c {
		assignTreeIDs(newNode)
	}
	return newNode, changed || c
}

// applyRules tries each rewrite rule against n in turn, returning the first
// one that fires.
func applyRules(n *Node) (*Node, bool) {
	if nn, ok := tryAndSplit(n); ok {
		return nn, true
	}
	if nn, ok := tryCascadeProjection(n); ok {
		return nn, true
	}
	if nn, ok := trySelectionToJoin(n); ok {
		return nn, true
	}
	if nn, ok := trySplitProjectionAcrossJoin(n); ok {
		return nn, true
	}
	if nn, ok := tryPushSelectionBelowProjection(n); ok {
		return nn, true
	}
	if nn, ok := tryPushSelectionThroughJoin(n); ok {
		return nn, true
	}
	if nn, ok := trySwapSelections(n); ok {
		return nn, true
	}
	if nn, ok := tryCommuteJoin(n); ok {
		return nn, true
	}
	return n, false
}

// Rule 1: AND-splitting.
func tryAndSplit(n *Node) (*Node, bool) {
	if n.Op != OpSelection || !n.Condition.IsConjunction() {
		return n, false
	}
	split := n.Condition.SplitAnd()
	cur := n.Left
	for _, cond := range split {
		cur = SelectOnCondition(cur, cond)
	}
	return cur, true
}

// Rule 2: selection commutation, reordering by estimated selectivity so the
// more selective (lower-selectivity) condition runs first.
func trySwapSelections(n *Node) (*Node, bool) {
	if n.Op != OpSelection || n.Left.Op != OpSelection {
		return n, false
	}
	grandchildTuples := n.Left.Left.ApproximateCreatedTuples()
	outerSel := n.Condition.Selectivity(grandchildTuples)
	innerSel := n.Left.Condition.Selectivity(grandchildTuples)
	if outerSel >= innerSel {
		return n, false
	}
	newInner := SelectOnCondition(n.Left.Left, n.Condition)
	newOuter := SelectOnCondition(newInner, n.Left.Condition)
	return newOuter, true
}

// Rule 3: cascade projection.
func tryCascadeProjection(n *Node) (*Node, bool) {
	if n.Op != OpProjection || n.Left.Op != OpProjection {
		return n, false
	}
	return Projection(n.Left.Left, n.Fields), true
}

// Rule 4: projection/selection commutation — push a selection that only
// references projected fields below the projection.
func tryPushSelectionBelowProjection(n *Node) (*Node, bool) {
	if n.Op != OpSelection || n.Left.Op != OpProjection {
		return n, false
	}
	proj := n.Left
	mapping := make(map[string]identifier.Identifier, len(proj.Fields))
	for _, f := range proj.Fields {
		mapping[f.outputID().String()] = f.ID
	}
	translated, ok := mapCondition(n.Condition, func(id identifier.Identifier) (identifier.Identifier, bool) {
		mapped, ok := mapping[id.String()]
		return mapped, ok
	})
	if !ok {
		return n, false
	}
	inner := SelectOnCondition(proj.Left, translated)
	return Projection(inner, proj.Fields), true
}

// Rule 5: join commutation — for symmetric operators, put the smaller
// estimated operand on the left.
func tryCommuteJoin(n *Node) (*Node, bool) {
	switch n.Op {
	case OpCrossProduct, OpInnerJoin, OpNaturalJoin:
	default:
		return n, false
	}
	l := n.Left.ApproximateCreatedTuples()
	r := n.Right.ApproximateCreatedTuples()
	if r >= l {
		return n, false
	}
	switch n.Op {
	case OpCrossProduct:
		return CrossProduct(n.Right, n.Left), true
	case OpInnerJoin:
		return InnerJoin(n.Right, n.Left, n.JoinCond.Swapped()), true
	case OpNaturalJoin:
		return NaturalJoin(n.Right, n.Left), true
	}
	return n, false
}

// Rule 6: σ over × becomes ⋈.
func trySelectionToJoin(n *Node) (*Node, bool) {
	if n.Op != OpSelection || n.Left.Op != OpCrossProduct {
		return n, false
	}
	cond := n.Condition
	if cond.IsConjunction() || cond.Operation.kind != opEquals {
		return n, false
	}
	if cond.Operation.operand.kind != operandID {
		return n, false
	}
	fieldA := cond.Base
	fieldB := cond.Operation.operand.id
	cp := n.Left

	_, leftHasA := cp.Left.FieldIndex(fieldA)
	_, rightHasB := cp.Right.FieldIndex(fieldB)
	_, leftHasB := cp.Left.FieldIndex(fieldB)
	_, rightHasA := cp.Right.FieldIndex(fieldA)

	switch {
	case leftHasA && rightHasB:
		return InnerJoin(cp.Left, cp.Right, NewJoinCondition(fieldA, fieldB)), true
	case leftHasB && rightHasA:
		return InnerJoin(cp.Left, cp.Right, NewJoinCondition(fieldB, fieldA)), true
	}
	return n, false
}

// Rule 7: projection split across inner join.
func trySplitProjectionAcrossJoin(n *Node) (*Node, bool) {
	if n.Op != OpProjection || n.Left.Op != OpInnerJoin {
		return n, false
	}
	join := n.Left

	var leftFields, rightFields []ProjectionField
	for _, f := range n.Fields {
		if _, ok := join.Left.FieldIndex(f.ID); ok {
			leftFields = append(leftFields, f)
		} else if _, ok := join.Right.FieldIndex(f.ID); ok {
			rightFields = append(rightFields, f)
		}
	}

	leftKeyCovered := containsField(leftFields, join.JoinCond.LeftID)
	rightKeyCovered := containsField(rightFields, join.JoinCond.RightID)
	augmentedLeft, augmentedRight := leftFields, rightFields
	if !leftKeyCovered {
		augmentedLeft = append(append([]ProjectionField(nil), leftFields...), Flat(join.JoinCond.LeftID))
	}
	if !rightKeyCovered {
		augmentedRight = append(append([]ProjectionField(nil), rightFields...), Flat(join.JoinCond.RightID))
	}

	newJoin := InnerJoin(Projection(join.Left, augmentedLeft), Projection(join.Right, augmentedRight), join.JoinCond)
	if leftKeyCovered && rightKeyCovered {
		return newJoin, true
	}
	return Projection(newJoin, n.Fields), true
}

func containsField(fields []ProjectionField, id identifier.Identifier) bool {
	for _, f := range fields {
		if f.ID.Equal(id) {
			return true
		}
	}
	return false
}

// Rule 8 (optional): selection push-through-join.
func tryPushSelectionThroughJoin(n *Node) (*Node, bool) {
	if n.Op != OpSelection {
		return n, false
	}
	join := n.Left
	switch join.Op {
	case OpInnerJoin, OpLeftJoin, OpRightJoin, OpNaturalJoin, OpCrossProduct:
	default:
		return n, false
	}

	fields := referencedFields(n.Condition)
	allLeft, allRight := true, true
	for _, f := range fields {
		if _, ok := join.Left.FieldIndex(f); !ok {
			allLeft = false
		}
		if _, ok := join.Right.FieldIndex(f); !ok {
			allRight = false
		}
	}

	switch {
	case allLeft:
		return rebuildJoin(join, SelectOnCondition(join.Left, n.Condition), join.Right), true
	case allRight:
		return rebuildJoin(join, join.Left, SelectOnCondition(join.Right, n.Condition)), true
	}
	return n, false
}

func rebuildJoin(join *Node, left, right *Node) *Node {
	switch join.Op {
	case OpInnerJoin:
		return InnerJoin(left, right, join.JoinCond)
	case OpLeftJoin:
		return LeftJoin(left, right, join.JoinCond)
	case OpRightJoin:
		return RightJoin(left, right, join.JoinCond)
	case OpNaturalJoin:
		return NaturalJoin(left, right)
	case OpCrossProduct:
		return CrossProduct(left, right)
	}
	return join
}

// referencedFields collects every field identifier c touches, recursing
// through nested And/Or.
func referencedFields(c Condition) []identifier.Identifier {
	var out []identifier.Identifier
	var walk func(base identifier.Identifier, op ConditionOperation)
	walk = func(base identifier.Identifier, op ConditionOperation) {
		out = append(out, base)
		switch op.kind {
		case opEquals, opNequals:
			if op.operand.kind == operandID {
				out = append(out, op.operand.id)
			}
		case opAnd, opOr:
			walk(base, *op.left)
			walk(op.right.Base, op.right.Operation)
		}
	}
	walk(c.Base, c.Operation)
	return out
}

// mapCondition rewrites every identifier referenced by c through fn,
// failing (ok=false) if fn cannot map one of them — used to translate a
// selection's condition across a projection boundary.
func mapCondition(c Condition, fn func(identifier.Identifier) (identifier.Identifier, bool)) (Condition, bool) {
	base, ok := fn(c.Base)
	if !ok {
		return Condition{}, false
	}
	op, ok := mapOperation(c.Operation, fn)
	if !ok {
		return Condition{}, false
	}
	return Condition{Base: base, Operation: op}, true
}

func mapOperation(op ConditionOperation, fn func(identifier.Identifier) (identifier.Identifier, bool)) (ConditionOperation, bool) {
	switch op.kind {
	case opEquals, opNequals:
		operand := op.operand
		if operand.kind == operandID {
			mapped, ok := fn(operand.id)
			if !ok {
				return ConditionOperation{}, false
			}
			operand = OperandID(mapped)
		}
		return ConditionOperation{kind: op.kind, operand: operand}, true
	case opAnd, opOr:
		left, ok := mapOperation(*op.left, fn)
		if !ok {
			return ConditionOperation{}, false
		}
		right, ok := mapCondition(*op.right, fn)
		if !ok {
			return ConditionOperation{}, false
		}
		if op.kind == opAnd {
			return andOp(left, right), true
		}
		return orOp(left, right), true
	}
	return ConditionOperation{}, false
}
