package identifier

import "strings"

// Identifier is an immutable namespace path. The zero value is not valid;
// construct one with New or FromParts.
type Identifier struct {
	parent *Identifier
	base   string
}

// New creates an identifier with no namespace, e.g. Identifier("table").
func New(base string) Identifier {
	return Identifier{base: base}
}

// WithParent creates an identifier nested under parent, e.g.
// WithParent(db, "table") -> db::table.
func WithParent(parent Identifier, base string) Identifier {
	p := parent
	return Identifier{parent: &p, base: base}
}

// Concat reparents child's topmost ancestor onto parent, e.g.
// Concat("db", "table::field") -> db::table::field.
func Concat(parent, child Identifier) Identifier {
	return FromParts(append(parent.Parts(), child.Parts()...)...)
}

// Base returns the identifier's own (innermost) segment.
func (id Identifier) Base() string { return id.base }

// Parent returns the enclosing namespace and true, or the zero Identifier
// and false if id has no parent.
func (id Identifier) Parent() (Identifier, bool) {
	if id.parent == nil {
		return Identifier{}, false
	}
	return *id.parent, true
}

// First returns the outermost (root) segment of the identifier chain.
func (id Identifier) First() Identifier {
	p := id
	for p.parent != nil {
		p = *p.parent
	}
	return p
}

// StripHighestParent drops the outermost namespace segment, returning the
// remainder and true; returns false if id has no parent to strip (it is
// already a single segment).
//
//	db::table::field -> table::field -> field -> (false)
func (id Identifier) StripHighestParent() (Identifier, bool) {
	if id.parent == nil {
		return Identifier{}, false
	}
	if id.parent.parent == nil {
		return Identifier{base: id.base}, true
	}
	strippedParent, _ := id.parent.StripHighestParent()
	return Identifier{parent: &strippedParent, base: id.base}, true
}

// Len returns the number of segments in the identifier.
func (id Identifier) Len() int {
	n := 1
	for p := id.parent; p != nil; p = p.parent {
		n++
	}
	return n
}

// Parts returns the identifier's segments from outermost to innermost.
func (id Identifier) Parts() []string {
	n := id.Len()
	parts := make([]string, n)
	p := &id
	for i := n - 1; i >= 0; i-- {
		parts[i] = p.base
		p = p.parent
	}
	return parts
}

// FromParts builds an identifier from segments given outermost-first, e.g.
// FromParts("db", "table", "field") -> db::table::field. Panics if parts is
// empty, matching the original's "cannot create an empty identifier" panic.
func FromParts(parts ...string) Identifier {
	if len(parts) == 0 {
		panic("identifier: cannot create an empty identifier")
	}
	id := New(parts[0])
	for _, p := range parts[1:] {
		id = WithParent(id, p)
	}
	return id
}

// Equal reports whether id and other name the same path.
func (id Identifier) Equal(other Identifier) bool {
	a, b := id.Parts(), other.Parts()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// String renders the identifier as its "::"-joined path.
func (id Identifier) String() string {
	return strings.Join(id.Parts(), "::")
}
