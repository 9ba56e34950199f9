package query

import (
	"github.com/dreamware/raddb/internal/identifier"
	"github.com/dreamware/raddb/internal/relation"
	"github.com/dreamware/raddb/internal/types"
)

// Op tags which relational operator a Node performs.
type Op int

const (
	OpSource Op = iota
	OpProjection
	OpSelection
	OpCrossProduct
	OpInnerJoin
	OpLeftJoin
	OpRightJoin
	OpNaturalJoin
)

// ProjectionField names one output column of a Projection node: the
// underlying field to keep, optionally under a new name.
type ProjectionField struct {
	ID     identifier.Identifier
	Rename string
}

// Flat builds a projection field with no rename.
func Flat(id identifier.Identifier) ProjectionField { return ProjectionField{ID: id} }

// Renamed builds a projection field that surfaces under name instead of
// id's own base.
func Renamed(id identifier.Identifier, name string) ProjectionField {
	return ProjectionField{ID: id, Rename: name}
}

func (f ProjectionField) outputID() identifier.Identifier {
	if f.Rename == "" {
		return f.ID
	}
	return identifier.New(f.Rename)
}

// Node is one operator in a query tree. Exactly one of Left/Right is set
// for one-child operators (Projection, Selection); both are set for
// two-child operators (the joins and CrossProduct); neither is set for
// Source, the tree's only leaf shape.
type Node struct {
	Op Op

	// Source
	Relation *relation.Relation
	Alias    string

	// Projection
	Fields []ProjectionField

	// Selection
	Condition Condition

	// Joins
	JoinCond JoinCondition

	Left, Right *Node

	Schema []relation.Column
	TreeID int
}

// Source builds a leaf node scanning rel under its own name.
func Source(rel *relation.Relation) *Node {
	n := &Node{Op: OpSource, Relation: rel, Schema: append([]relation.Column(nil), rel.Attributes()...)}
	assignTreeIDs(n)
	return n
}

// SourceWithName builds a leaf node scanning rel under alias instead of its
// own name — used so a query can join a relation against itself.
func SourceWithName(rel *relation.Relation, alias string) *Node {
	n := &Node{Op: OpSource, Relation: rel, Alias: alias, Schema: append([]relation.Column(nil), rel.Attributes()...)}
	assignTreeIDs(n)
	return n
}

// sourceName returns the name a Source node answers to for FindRelation
// purposes: its alias if renamed, else the backing relation's own name.
func (n *Node) sourceName() string {
	if n.Alias != "" {
		return n.Alias
	}
	return n.Relation.Name().String()
}

// Projection builds a node retaining exactly the listed fields, in order.
func Projection(child *Node, fields []ProjectionField) *Node {
	schema := make([]relation.Column, len(fields))
	for i, f := range fields {
		schema[i] = relation.Column{ID: f.outputID(), Kind: findKind(child.Schema, f.ID)}
	}
	n := &Node{Op: OpProjection, Fields: append([]ProjectionField(nil), fields...), Left: child, Schema: schema}
	assignTreeIDs(n)
	return n
}

// findKind looks up id's declared kind in schema, defaulting to KindNull if
// absent (a missing-field error is raised separately at optimizer
// construction, per spec.md §7's propagation policy).
func findKind(schema []relation.Column, id identifier.Identifier) types.Kind {
	for _, c := range schema {
		if c.ID.Equal(id) {
			return c.Kind
		}
	}
	return types.KindNull
}

// SelectOnCondition builds a filtering node; its output schema is
// unchanged from its child's.
func SelectOnCondition(child *Node, cond Condition) *Node {
	n := &Node{Op: OpSelection, Condition: cond, Left: child, Schema: append([]relation.Column(nil), child.Schema...)}
	assignTreeIDs(n)
	return n
}

// SelectEq builds a convenience Selection testing id for equality against
// value.
func SelectEq(child *Node, id identifier.Identifier, value Operand) *Node {
	return SelectOnCondition(child, NewCondition(id, Equals(value)))
}

// CrossProduct builds an unconditional product of left and right; its
// schema is the concatenation of both children's schemas.
func CrossProduct(left, right *Node) *Node {
	n := &Node{Op: OpCrossProduct, Left: left, Right: right, Schema: concatSchema(left.Schema, right.Schema)}
	assignTreeIDs(n)
	return n
}

// InnerJoin builds an equi-join of left and right on cond.
func InnerJoin(left, right *Node, cond JoinCondition) *Node {
	n := &Node{Op: OpInnerJoin, Left: left, Right: right, JoinCond: cond, Schema: concatSchema(left.Schema, right.Schema)}
	assignTreeIDs(n)
	return n
}

// LeftJoin builds a left outer equi-join of left and right on cond.
func LeftJoin(left, right *Node, cond JoinCondition) *Node {
	n := &Node{Op: OpLeftJoin, Left: left, Right: right, JoinCond: cond, Schema: concatSchema(left.Schema, right.Schema)}
	assignTreeIDs(n)
	return n
}

// RightJoin builds a right outer equi-join of left and right on cond.
func RightJoin(left, right *Node, cond JoinCondition) *Node {
	n := &Node{Op: OpRightJoin, Left: left, Right: right, JoinCond: cond, Schema: concatSchema(left.Schema, right.Schema)}
	assignTreeIDs(n)
	return n
}

// NaturalJoin builds a join matching left and right on every field name
// they share.
func NaturalJoin(left, right *Node) *Node {
	n := &Node{Op: OpNaturalJoin, Left: left, Right: right, Schema: concatSchema(left.Schema, right.Schema)}
	assignTreeIDs(n)
	return n
}

func concatSchema(left, right []relation.Column) []relation.Column {
	out := make([]relation.Column, 0, len(left)+len(right))
	out = append(out, left...)
	out = append(out, right...)
	return out
}

// children returns n's direct children, in left-to-right order.
func (n *Node) children() []*Node {
	var out []*Node
	if n.Left != nil {
		out = append(out, n.Left)
	}
	if n.Right != nil {
		out = append(out, n.Right)
	}
	return out
}

// assignTreeIDs numbers every node in n's subtree by post-order traversal
// (children before parents), so an optimizer rewrite that replaces a
// subtree can cheaply renumber just that subtree.
func assignTreeIDs(n *Node) int {
	next := 0
	var walk func(*Node)
	walk = func(cur *Node) {
		for _, c := range cur.children() {
			walk(c)
		}
		cur.TreeID = next
		next++
	}
	walk(n)
	return next
}

// Nodes returns the total number of nodes in n's subtree.
func (n *Node) Nodes() int {
	count := 0
	var walk func(*Node)
	walk = func(cur *Node) {
		count++
		for _, c := range cur.children() {
			walk(c)
		}
	}
	walk(n)
	return count
}

// FindRelation returns the deepest node whose source relation answers to
// id, or nil if none does.
func (n *Node) FindRelation(id identifier.Identifier) *Node {
	var deepest *Node
	var depth = -1
	var walk func(cur *Node, d int)
	walk = func(cur *Node, d int) {
		if cur.Op == OpSource && cur.sourceName() == id.String() {
			if d > depth {
				deepest = cur
				depth = d
			}
		}
		for _, c := range cur.children() {
			walk(c, d+1)
		}
	}
	walk(n, 0)
	return deepest
}

// FindRelations returns the deepest node that has access to every id in
// ids (the union of source relations reachable under it); if two distinct
// children each cover only part of the set, their common parent n is
// returned.
func (n *Node) FindRelations(ids []identifier.Identifier) *Node {
	covers := func(cur *Node) bool {
		names := sourceNamesUnder(cur)
		for _, id := range ids {
			if !names[id.String()] {
				return false
			}
		}
		return true
	}
	if !covers(n) {
		return nil
	}
	for _, c := range n.children() {
		if found := c.FindRelations(ids); found != nil {
			return found
		}
	}
	return n
}

func sourceNamesUnder(n *Node) map[string]bool {
	names := make(map[string]bool)
	var walk func(*Node)
	walk = func(cur *Node) {
		if cur.Op == OpSource {
			names[cur.sourceName()] = true
		}
		for _, c := range cur.children() {
			walk(c)
		}
	}
	walk(n)
	return names
}

// sourcesWithField returns every descendant Source node whose relation
// exposes field.
func (n *Node) sourcesWithField(field identifier.Identifier) []*Node {
	var matches []*Node
	var walk func(*Node)
	walk = func(cur *Node) {
		if cur.Op == OpSource {
			if _, ok := cur.Relation.GetFieldIndex(field); ok {
				matches = append(matches, cur)
			}
		}
		for _, c := range cur.children() {
			walk(c)
		}
	}
	walk(n)
	return matches
}

// FindNodeWithField returns the deepest source node whose relation exposes
// field, or nil if zero or more than one (ambiguous) descendant source does.
func (n *Node) FindNodeWithField(field identifier.Identifier) *Node {
	matches := n.sourcesWithField(field)
	if len(matches) != 1 {
		return nil
	}
	return matches[0]
}

// IsParentOrSelf reports whether other is n itself or one of n's
// descendants, using pointer identity (the Go analogue of the original's
// raw-address comparison).
func (n *Node) IsParentOrSelf(other *Node) bool {
	if n == other {
		return true
	}
	for _, c := range n.children() {
		if c.IsParentOrSelf(other) {
			return true
		}
	}
	return false
}

// ContainsAllFields reports whether every id in ids resolves under n.
func (n *Node) ContainsAllFields(ids []identifier.Identifier) bool {
	return n.FindRelations(ids) != nil
}

// FieldIndex returns the position of id within n's resulting schema.
func (n *Node) FieldIndex(id identifier.Identifier) (int, bool) {
	for i, c := range n.Schema {
		if c.ID.Equal(id) {
			return i, true
		}
	}
	return 0, false
}
