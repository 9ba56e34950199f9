package types

import (
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// ErrParse is wrapped by every codec failure, carrying the offending field
// text (spec.md §7: "every error carries the offending identifier or file
// path").
var ErrParse = errors.New("types: parse failure")

// Serialize renders a single Value as the token that belongs in a block
// file's pipe-separated line: double-quoted with backslash-escaping for
// text/binary/blob, bare decimal for numerics/year, "true"/"false" for
// booleans, ISO-8601 for time kinds, and the literal token "NULL" for Null.
func (v Value) Serialize() string {
	switch v.kind {
	case KindNull:
		return "NULL"
	case KindChar, KindString:
		return quote(v.s)
	case KindBinary, KindBlob:
		return quote(string(v.b))
	case KindBool:
		return strconv.FormatBool(v.AsBool())
	case KindFloat32:
		return strconv.FormatFloat(v.f, 'g', -1, 32)
	case KindFloat64:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindInt8, KindInt16, KindInt32, KindInt64, KindYear:
		return strconv.FormatInt(v.i, 10)
	case KindUint8, KindUint16, KindUint32, KindUint64:
		return strconv.FormatUint(v.u, 10)
	case KindDate:
		return v.tm.Format("2006-01-02")
	case KindDateTime:
		return v.tm.Format("2006-01-02T15:04:05")
	case KindTimestamp:
		return v.tm.Format(time.RFC3339)
	default:
		return "NULL"
	}
}

func quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"', '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// SerializeValues joins values with the literal field separator "|", the
// format written by internal/block on unload.
func SerializeValues(values []Value) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = v.Serialize()
	}
	return strings.Join(parts, "|")
}

// splitFields splits a pipe-separated line into raw field tokens, treating
// '|' inside a double-quoted span as literal and honoring backslash escapes,
// per spec.md §6: "Field separator | is literal inside quotes only when
// escaped; a parser must tolerate trailing whitespace."
func splitFields(line string) []string {
	line = strings.TrimRight(line, " \t\r\n")
	var fields []string
	var cur strings.Builder
	inQuotes := false
	escaped := false
	for _, r := range line {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\':
			cur.WriteRune(r)
			escaped = true
		case r == '"':
			cur.WriteRune(r)
			inQuotes = !inQuotes
		case r == '|' && !inQuotes:
			fields = append(fields, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	fields = append(fields, cur.String())
	return fields
}

// unquote reverses quote: strips the surrounding double quotes and resolves
// backslash escapes of '"' and '\'.
func unquote(field string) (string, error) {
	if len(field) < 2 || field[0] != '"' || field[len(field)-1] != '"' {
		return "", errors.Wrapf(ErrParse, "field %q is not a quoted token", field)
	}
	inner := field[1 : len(field)-1]
	var b strings.Builder
	escaped := false
	for _, r := range inner {
		if escaped {
			b.WriteRune(r)
			escaped = false
			continue
		}
		if r == '\\' {
			escaped = true
			continue
		}
		b.WriteRune(r)
	}
	if escaped {
		return "", errors.Wrapf(ErrParse, "field %q ends with a dangling escape", field)
	}
	return b.String(), nil
}

// Parse decodes a single field token against the expected Kind.
func Parse(field string, kind Kind) (Value, error) {
	field = strings.TrimSpace(field)
	if field == "NULL" {
		return Null(), nil
	}
	switch kind {
	case KindChar:
		s, err := unquote(field)
		if err != nil {
			return Value{}, err
		}
		r := []rune(s)
		if len(r) == 0 {
			return Char(0), nil
		}
		return Char(r[0]), nil
	case KindString:
		s, err := unquote(field)
		if err != nil {
			return Value{}, err
		}
		return String(s), nil
	case KindBinary, KindBlob:
		s, err := unquote(field)
		if err != nil {
			return Value{}, err
		}
		if kind == KindBinary {
			return Binary([]byte(s)), nil
		}
		return Blob([]byte(s)), nil
	case KindBool:
		b, err := strconv.ParseBool(field)
		if err != nil {
			return Value{}, errors.Wrapf(ErrParse, "bad bool literal %q: %v", field, err)
		}
		return Bool(b), nil
	case KindFloat32:
		f, err := strconv.ParseFloat(field, 32)
		if err != nil {
			return Value{}, errors.Wrapf(ErrParse, "bad float32 literal %q: %v", field, err)
		}
		return Float32(float32(f)), nil
	case KindFloat64:
		f, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return Value{}, errors.Wrapf(ErrParse, "bad float64 literal %q: %v", field, err)
		}
		return Float64(f), nil
	case KindInt8:
		i, err := strconv.ParseInt(field, 10, 8)
		if err != nil {
			return Value{}, errors.Wrapf(ErrParse, "bad int8 literal %q: %v", field, err)
		}
		return Int8(int8(i)), nil
	case KindInt16:
		i, err := strconv.ParseInt(field, 10, 16)
		if err != nil {
			return Value{}, errors.Wrapf(ErrParse, "bad int16 literal %q: %v", field, err)
		}
		return Int16(int16(i)), nil
	case KindInt32:
		i, err := strconv.ParseInt(field, 10, 32)
		if err != nil {
			return Value{}, errors.Wrapf(ErrParse, "bad int32 literal %q: %v", field, err)
		}
		return Int32(int32(i)), nil
	case KindInt64:
		i, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return Value{}, errors.Wrapf(ErrParse, "bad int64 literal %q: %v", field, err)
		}
		return Int64(i), nil
	case KindYear:
		i, err := strconv.ParseInt(field, 10, 32)
		if err != nil {
			return Value{}, errors.Wrapf(ErrParse, "bad year literal %q: %v", field, err)
		}
		return Year(int32(i)), nil
	case KindUint8:
		u, err := strconv.ParseUint(field, 10, 8)
		if err != nil {
			return Value{}, errors.Wrapf(ErrParse, "bad uint8 literal %q: %v", field, err)
		}
		return Uint8(uint8(u)), nil
	case KindUint16:
		u, err := strconv.ParseUint(field, 10, 16)
		if err != nil {
			return Value{}, errors.Wrapf(ErrParse, "bad uint16 literal %q: %v", field, err)
		}
		return Uint16(uint16(u)), nil
	case KindUint32:
		u, err := strconv.ParseUint(field, 10, 32)
		if err != nil {
			return Value{}, errors.Wrapf(ErrParse, "bad uint32 literal %q: %v", field, err)
		}
		return Uint32(uint32(u)), nil
	case KindUint64:
		u, err := strconv.ParseUint(field, 10, 64)
		if err != nil {
			return Value{}, errors.Wrapf(ErrParse, "bad uint64 literal %q: %v", field, err)
		}
		return Uint64(u), nil
	case KindDate:
		t, err := time.Parse("2006-01-02", field)
		if err != nil {
			return Value{}, errors.Wrapf(ErrParse, "bad date literal %q: %v", field, err)
		}
		return Date(t), nil
	case KindDateTime:
		t, err := time.Parse("2006-01-02T15:04:05", field)
		if err != nil {
			return Value{}, errors.Wrapf(ErrParse, "bad datetime literal %q: %v", field, err)
		}
		return DateTime(t), nil
	case KindTimestamp:
		t, err := time.Parse(time.RFC3339, field)
		if err != nil {
			return Value{}, errors.Wrapf(ErrParse, "bad timestamp literal %q: %v", field, err)
		}
		return Timestamp(t), nil
	default:
		return Value{}, errors.Wrapf(ErrParse, "unsupported kind %v for field %q", kind, field)
	}
}

// ParseLine decodes a full pipe-separated record against the schema's
// ordered kinds. It returns an error naming the field count mismatch or the
// first field that fails to parse (spec.md §7 "Parse failure").
func ParseLine(line string, kinds []Kind) ([]Value, error) {
	fields := splitFields(line)
	if len(fields) != len(kinds) {
		return nil, errors.Wrapf(ErrParse, "expected %d fields, got %d in line %q", len(kinds), len(fields), line)
	}
	values := make([]Value, len(fields))
	for i, field := range fields {
		v, err := Parse(field, kinds[i])
		if err != nil {
			return nil, errors.Wrapf(err, "field %d (%s)", i, kinds[i])
		}
		values[i] = v
	}
	return values, nil
}
