package key

import (
	"encoding/binary"
	"math/big"

	"github.com/dreamware/raddb/internal/tuple"
	"github.com/dreamware/raddb/internal/types"
	"github.com/spaolacci/murmur3"
)

// PrimaryKeyDefinition names the ordered column positions that make up a
// relation's primary key, plus four seeds derived deterministically from
// those positions (spec.md §3's "deterministic 4-word hash seeds").
type PrimaryKeyDefinition struct {
	Positions []int
	seeds     [4]uint64
}

// NewPrimaryKeyDefinition builds a definition for the given ordered column
// positions. The seeds are a pure function of positions, so two definitions
// built from the same positions always hash identically.
func NewPrimaryKeyDefinition(positions ...int) PrimaryKeyDefinition {
	buf := make([]byte, 8*len(positions))
	for i, p := range positions {
		binary.LittleEndian.PutUint64(buf[i*8:], uint64(p))
	}
	var seeds [4]uint64
	for i := range seeds {
		seeds[i] = murmur3.Sum64WithSeed(buf, uint32(i))
	}
	return PrimaryKeyDefinition{Positions: append([]int(nil), positions...), seeds: seeds}
}

// Arity returns the number of columns in the key.
func (d PrimaryKeyDefinition) Arity() int { return len(d.Positions) }

// Project extracts a PrimaryKey view from t using d's positions.
func (d PrimaryKeyDefinition) Project(t tuple.Tuple) PrimaryKey {
	values := make([]types.Value, len(d.Positions))
	for i, p := range d.Positions {
		values[i] = t.At(p)
	}
	return PrimaryKey{def: d, values: values}
}

// PrimaryKey is the subsequence of a tuple's values at a definition's key
// positions.
type PrimaryKey struct {
	def    PrimaryKeyDefinition
	values []types.Value
}

// Values returns the key's projected column values, in key order.
func (k PrimaryKey) Values() []types.Value { return append([]types.Value(nil), k.values...) }

// Equal reports whether two keys hold the same values in the same order.
func (k PrimaryKey) Equal(other PrimaryKey) bool {
	if len(k.values) != len(other.values) {
		return false
	}
	for i := range k.values {
		if !k.values[i].Equal(other.values[i]) {
			return false
		}
	}
	return true
}

// Hash produces the key's wide-integer fingerprint. When the key is a
// single unsigned-integer column, the fingerprint is that integer's value
// unchanged, preserving its natural ordering and keeping small keys dense.
// Otherwise it accumulates a big.Int by, for each column in order, shifting
// left 64 bits and OR-ing in a seeded 64-bit hash of that column's value.
func (k PrimaryKey) Hash() *big.Int {
	if len(k.values) == 1 && k.values[0].Kind().IsUnsignedInteger() {
		return new(big.Int).SetUint64(k.values[0].AsUint64())
	}

	acc := big.NewInt(0)
	for i, v := range k.values {
		seed := k.def.seeds[i%len(k.def.seeds)]
		h := v.Hash(seed)
		acc.Lsh(acc, 64)
		hashBig := new(big.Int).SetUint64(h)
		acc.Or(acc, hashBig)
	}
	return acc
}
