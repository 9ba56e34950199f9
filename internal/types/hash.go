package types

import (
	"encoding/binary"
	"math"

	"github.com/spaolacci/murmur3"
)

// Hash returns a 64-bit seeded hash of v, used by internal/key to build a
// primary key's wide-integer fingerprint (spec.md §3/§4.A). Two equal Values
// always hash the same for a given seed; unequal values of the same Kind
// hash the same only by coincidence.
func (v Value) Hash(seed uint64) uint64 {
	var buf []byte
	switch v.kind {
	case KindNull:
		return murmur3.Sum64WithSeed([]byte{0}, uint32(seed))
	case KindFloat32, KindFloat64:
		buf = make([]byte, 8)
		binary.LittleEndian.PutUint64(buf, math.Float64bits(v.f))
	case KindInt8, KindInt16, KindInt32, KindInt64, KindYear:
		buf = make([]byte, 8)
		binary.LittleEndian.PutUint64(buf, uint64(v.i))
	case KindUint8, KindUint16, KindUint32, KindUint64, KindBool:
		buf = make([]byte, 8)
		binary.LittleEndian.PutUint64(buf, v.u)
	case KindChar, KindString:
		buf = []byte(v.s)
	case KindBinary, KindBlob:
		buf = v.b
	case KindDate, KindDateTime, KindTimestamp:
		buf = make([]byte, 8)
		binary.LittleEndian.PutUint64(buf, uint64(v.tm.UnixNano()))
	default:
		buf = []byte{}
	}
	return murmur3.Sum64WithSeed(buf, uint32(seed))
}
