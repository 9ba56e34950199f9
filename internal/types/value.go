package types

import (
	"bytes"
	"fmt"
	"time"
)

// Value is a single typed datum. The zero Value is a Float32 zero (KindFloat32
// is the first Kind); use Null for the null value.
//
// Only one of the storage fields is meaningful for a given Kind:
//
//	numeric (signed)    -> i
//	numeric (unsigned)  -> u
//	numeric (float)     -> f
//	char, string        -> s
//	binary, blob        -> b
//	date/datetime/ts    -> tm
//	year                -> i
//	bool                -> u != 0
type Value struct {
	kind Kind
	i    int64
	u    uint64
	f    float64
	s    string
	b    []byte
	tm   time.Time
}

// Null returns the Null value.
func Null() Value { return Value{kind: KindNull} }

// IsNull reports whether v holds the Null variant.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Kind returns the tag of v.
func (v Value) Kind() Kind { return v.kind }

func Float32(f float32) Value { return Value{kind: KindFloat32, f: float64(f)} }
func Float64(f float64) Value { return Value{kind: KindFloat64, f: f} }
func Int8(i int8) Value       { return Value{kind: KindInt8, i: int64(i)} }
func Int16(i int16) Value     { return Value{kind: KindInt16, i: int64(i)} }
func Int32(i int32) Value     { return Value{kind: KindInt32, i: int64(i)} }
func Int64(i int64) Value     { return Value{kind: KindInt64, i: i} }
func Uint8(u uint8) Value     { return Value{kind: KindUint8, u: uint64(u)} }
func Uint16(u uint16) Value   { return Value{kind: KindUint16, u: uint64(u)} }
func Uint32(u uint32) Value   { return Value{kind: KindUint32, u: uint64(u)} }
func Uint64(u uint64) Value   { return Value{kind: KindUint64, u: u} }
func Bool(b bool) Value {
	if b {
		return Value{kind: KindBool, u: 1}
	}
	return Value{kind: KindBool, u: 0}
}

func Char(c rune) Value            { return Value{kind: KindChar, s: string(c)} }
func String(s string) Value        { return Value{kind: KindString, s: s} }
func Binary(b []byte) Value        { return Value{kind: KindBinary, b: append([]byte(nil), b...)} }
func Blob(b []byte) Value          { return Value{kind: KindBlob, b: append([]byte(nil), b...)} }
func Date(t time.Time) Value       { return Value{kind: KindDate, tm: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)} }
func DateTime(t time.Time) Value   { return Value{kind: KindDateTime, tm: t} }
func Timestamp(t time.Time) Value  { return Value{kind: KindTimestamp, tm: t} }
func Year(y int32) Value           { return Value{kind: KindYear, i: int64(y)} }

// AsInt64 returns the signed integer payload, valid for signed Numeric kinds
// and KindYear.
func (v Value) AsInt64() int64 { return v.i }

// AsUint64 returns the unsigned integer payload, valid for unsigned Numeric
// kinds, and 0/1 for KindBool.
func (v Value) AsUint64() uint64 { return v.u }

// AsFloat64 returns the float payload, valid for KindFloat32/KindFloat64.
func (v Value) AsFloat64() float64 { return v.f }

// AsBool returns the boolean payload, valid for KindBool.
func (v Value) AsBool() bool { return v.u != 0 }

// AsString returns the text payload, valid for KindChar/KindString.
func (v Value) AsString() string { return v.s }

// AsBytes returns the binary payload, valid for KindBinary/KindBlob.
func (v Value) AsBytes() []byte { return v.b }

// AsTime returns the time payload, valid for KindDate/KindDateTime/KindTimestamp.
func (v Value) AsTime() time.Time { return v.tm }

// Equal implements total equality: values of different Kind are never equal.
// Null is equal only to another Null, whatever column either came from,
// matching the wire format's single NULL token.
func (v Value) Equal(other Value) bool {
	if v.kind == KindNull || other.kind == KindNull {
		return v.kind == other.kind
	}
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindFloat32, KindFloat64:
		return v.f == other.f
	case KindInt8, KindInt16, KindInt32, KindInt64, KindYear:
		return v.i == other.i
	case KindUint8, KindUint16, KindUint32, KindUint64, KindBool:
		return v.u == other.u
	case KindChar, KindString:
		return v.s == other.s
	case KindBinary, KindBlob:
		return bytes.Equal(v.b, other.b)
	case KindDate, KindDateTime, KindTimestamp:
		return v.tm.Equal(other.tm)
	default:
		return false
	}
}

// Compare orders two same-Kind values, returning -1/0/1. ok is false if the
// kinds differ or the kind has no total order (spec only requires ordering on
// same-variant pairs).
func (v Value) Compare(other Value) (result int, ok bool) {
	if v.kind != other.kind {
		return 0, false
	}
	switch v.kind {
	case KindFloat32, KindFloat64:
		return cmpFloat(v.f, other.f), true
	case KindInt8, KindInt16, KindInt32, KindInt64, KindYear:
		return cmpInt(v.i, other.i), true
	case KindUint8, KindUint16, KindUint32, KindUint64:
		return cmpUint(v.u, other.u), true
	case KindBool:
		return cmpUint(v.u, other.u), true
	case KindChar, KindString:
		switch {
		case v.s < other.s:
			return -1, true
		case v.s > other.s:
			return 1, true
		default:
			return 0, true
		}
	case KindBinary, KindBlob:
		return bytes.Compare(v.b, other.b), true
	case KindDate, KindDateTime, KindTimestamp:
		switch {
		case v.tm.Before(other.tm):
			return -1, true
		case v.tm.After(other.tm):
			return 1, true
		default:
			return 0, true
		}
	default:
		return 0, false
	}
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpUint(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// String implements fmt.Stringer, matching the original's Display impl:
// quoted text/binary, bare numerics/bool/time, and "NULL" for the null value.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "NULL"
	case KindFloat32, KindFloat64:
		return trimFloat(v.f)
	case KindInt8, KindInt16, KindInt32, KindInt64, KindYear:
		return fmt.Sprintf("%d", v.i)
	case KindUint8, KindUint16, KindUint32, KindUint64:
		return fmt.Sprintf("%d", v.u)
	case KindBool:
		return fmt.Sprintf("%t", v.AsBool())
	case KindChar, KindString:
		return fmt.Sprintf("%q", v.s)
	case KindBinary, KindBlob:
		return fmt.Sprintf("%q", string(v.b))
	case KindDate:
		return v.tm.Format("2006-01-02")
	case KindDateTime:
		return v.tm.Format("2006-01-02T15:04:05")
	case KindTimestamp:
		return v.tm.Format(time.RFC3339)
	default:
		return "?"
	}
}

func trimFloat(f float64) string {
	return fmt.Sprintf("%g", f)
}
