package query

import (
	"fmt"

	"github.com/dreamware/raddb/internal/identifier"
)

// MissingFieldError reports a query referencing an identifier no reachable
// source relation supplies.
type MissingFieldError struct {
	Field identifier.Identifier
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("query: no relation in this query supplies field %s", e.Field.String())
}

// InvalidQueryShapeError reports a structurally malformed node — a
// selection without exactly one child, or a join without two — which
// spec.md §7 classifies as a caller/optimizer bug rather than an
// operational error.
type InvalidQueryShapeError struct {
	Detail string
}

func (e *InvalidQueryShapeError) Error() string {
	return fmt.Sprintf("query: invalid query shape: %s", e.Detail)
}
