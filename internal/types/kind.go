package types

// Kind tags which variant a Value holds. It doubles as the column type in a
// relation's schema (RelationDefinition entries are (identifier, Kind) pairs).
type Kind uint8

const (
	KindFloat32 Kind = iota
	KindFloat64
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindChar
	KindString
	KindBinary
	KindBlob
	KindDate
	KindDateTime
	KindTimestamp
	KindYear
	KindBool
	KindNull
)

// String returns the name used in error messages and debug output.
func (k Kind) String() string {
	switch k {
	case KindFloat32:
		return "float32"
	case KindFloat64:
		return "float64"
	case KindInt8:
		return "int8"
	case KindInt16:
		return "int16"
	case KindInt32:
		return "int32"
	case KindInt64:
		return "int64"
	case KindUint8:
		return "uint8"
	case KindUint16:
		return "uint16"
	case KindUint32:
		return "uint32"
	case KindUint64:
		return "uint64"
	case KindChar:
		return "char"
	case KindString:
		return "string"
	case KindBinary:
		return "binary"
	case KindBlob:
		return "blob"
	case KindDate:
		return "date"
	case KindDateTime:
		return "datetime"
	case KindTimestamp:
		return "timestamp"
	case KindYear:
		return "year"
	case KindBool:
		return "bool"
	case KindNull:
		return "null"
	default:
		return "unknown"
	}
}

// IsNumeric reports whether the kind is one of the Numeric variants.
func (k Kind) IsNumeric() bool {
	return k <= KindUint64
}

// IsUnsignedInteger reports whether the kind is one of the Unsigned variants,
// used by PrimaryKey.Hash's single-column identity-hash special case.
func (k Kind) IsUnsignedInteger() bool {
	switch k {
	case KindUint8, KindUint16, KindUint32, KindUint64:
		return true
	default:
		return false
	}
}
