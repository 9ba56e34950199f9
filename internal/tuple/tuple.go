package tuple

import (
	"github.com/dreamware/raddb/internal/types"
)

// Tuple is an ordered row of values. It carries no schema of its own — the
// owning relation's RelationDefinition supplies field names and kinds.
type Tuple []types.Value

// New builds a Tuple from the given values, copying them into a new slice so
// the caller's slice is not shared.
func New(values ...types.Value) Tuple {
	t := make(Tuple, len(values))
	copy(t, values)
	return t
}

// Len returns the number of fields in the tuple.
func (t Tuple) Len() int { return len(t) }

// At returns the value at position i.
func (t Tuple) At(i int) types.Value { return t[i] }

// Concat returns a new tuple with other's fields appended after t's, used by
// cross product and the join operators to build their output rows.
func (t Tuple) Concat(other Tuple) Tuple {
	out := make(Tuple, 0, len(t)+len(other))
	out = append(out, t...)
	out = append(out, other...)
	return out
}

// RemoveAt returns a new tuple with the fields at the given positions
// dropped. positions is collected into a set up front, so the single pass
// below drops every marked index regardless of the order positions were
// given in (spec.md §4.A's projection operator relies on this).
func RemoveAt(t Tuple, positions ...int) Tuple {
	drop := make(map[int]bool, len(positions))
	for _, p := range positions {
		drop[p] = true
	}

	out := make(Tuple, 0, len(t)-len(drop))
	for i, v := range t {
		if drop[i] {
			continue
		}
		out = append(out, v)
	}
	return out
}

// Project returns a new tuple containing only the fields at the given
// positions, in the order given.
func Project(t Tuple, positions ...int) Tuple {
	out := make(Tuple, len(positions))
	for i, p := range positions {
		out[i] = t[p]
	}
	return out
}

// Equal reports whether t and other hold the same values in the same order.
func (t Tuple) Equal(other Tuple) bool {
	if len(t) != len(other) {
		return false
	}
	for i := range t {
		if !t[i].Equal(other[i]) {
			return false
		}
	}
	return true
}

// Serialize renders the tuple using internal/types' line codec.
func (t Tuple) Serialize() string {
	return types.SerializeValues([]types.Value(t))
}

// Parse decodes a line into a Tuple against the given column kinds.
func Parse(line string, kinds []types.Kind) (Tuple, error) {
	values, err := types.ParseLine(line, kinds)
	if err != nil {
		return nil, err
	}
	return Tuple(values), nil
}
