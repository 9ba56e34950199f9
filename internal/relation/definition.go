package relation

import (
	"github.com/dreamware/raddb/internal/block"
	"github.com/dreamware/raddb/internal/identifier"
	"github.com/dreamware/raddb/internal/types"
)

// Column names one field of a relation: a fully-qualified identifier (e.g.
// db::table::field) and its value kind.
type Column struct {
	ID   identifier.Identifier
	Kind types.Kind
}

// RelationDefinition is the ordered list of a relation's columns. Two
// definitions are interchangeable wherever only field names/kinds matter —
// internal/query compares and rewrites schemas through this type.
type RelationDefinition struct {
	Columns []Column
}

// NewDefinition builds a definition from the given columns, in order.
func NewDefinition(columns ...Column) RelationDefinition {
	return RelationDefinition{Columns: append([]Column(nil), columns...)}
}

// Len returns the number of columns.
func (d RelationDefinition) Len() int { return len(d.Columns) }

// Schema projects the definition's column kinds, the shape internal/block
// needs to parse stored tuples.
func (d RelationDefinition) Schema() block.Schema {
	s := make(block.Schema, len(d.Columns))
	for i, c := range d.Columns {
		s[i] = c.Kind
	}
	return s
}

// IndexOf returns the position of id within the definition, or -1.
func (d RelationDefinition) IndexOf(id identifier.Identifier) int {
	for i, c := range d.Columns {
		if c.ID.Equal(id) {
			return i
		}
	}
	return -1
}

// minIDLength returns the shortest column-identifier length in the
// definition (a relation whose columns are joined from sources at
// different nesting depths can have columns of mixed length).
func (d RelationDefinition) minIDLength() int {
	min := -1
	for _, c := range d.Columns {
		l := c.ID.Len()
		if min == -1 || l < min {
			min = l
		}
	}
	return min
}

// allIDLenSame reports whether every column identifier has the same length.
func (d RelationDefinition) allIDLenSame() bool {
	if len(d.Columns) == 0 {
		return true
	}
	first := d.Columns[0].ID.Len()
	for _, c := range d.Columns[1:] {
		if c.ID.Len() != first {
			return false
		}
	}
	return true
}

// StripHighestPrefix drops the outermost namespace segment from every
// column whose identifier still has one, used to derive join-output field
// names when two joined relations share a namespace prefix. Columns that
// would become empty (single-segment identifiers already) are dropped
// entirely; if that empties the whole definition, ok is false.
func (d RelationDefinition) StripHighestPrefix() (RelationDefinition, bool) {
	var out []Column

	if d.allIDLenSame() {
		for _, c := range d.Columns {
			if stripped, ok := c.ID.StripHighestParent(); ok {
				out = append(out, Column{ID: stripped, Kind: c.Kind})
			}
		}
	} else {
		min := d.minIDLength()
		for _, c := range d.Columns {
			if c.ID.Len() > min {
				if stripped, ok := c.ID.StripHighestParent(); ok {
					out = append(out, Column{ID: stripped, Kind: c.Kind})
				}
				continue
			}
			out = append(out, c)
		}
	}

	if len(out) == 0 {
		return RelationDefinition{}, false
	}
	return RelationDefinition{Columns: out}, true
}

// Shr strips the highest prefix rhs times, stopping early (returning the
// last non-empty result) if stripping would otherwise empty the
// definition — the Go equivalent of the original's `Shr` operator overload.
func (d RelationDefinition) Shr(rhs int) RelationDefinition {
	cur := d
	for i := 0; i < rhs; i++ {
		next, ok := cur.StripHighestPrefix()
		if !ok {
			break
		}
		cur = next
	}
	return cur
}

// Equal reports whether two definitions name the same columns in the same
// order.
func (d RelationDefinition) Equal(other RelationDefinition) bool {
	if len(d.Columns) != len(other.Columns) {
		return false
	}
	for i := range d.Columns {
		if !d.Columns[i].ID.Equal(other.Columns[i].ID) || d.Columns[i].Kind != other.Columns[i].Kind {
			return false
		}
	}
	return true
}
