package relation

import (
	"fmt"
	"sync/atomic"

	"github.com/dreamware/raddb/internal/identifier"
)

// tempCount assigns each TempRelation a unique, process-lifetime ordinal,
// mirroring the original's TEMP_COUNT atomic counter.
var tempCount uint64

// TempRelation is a volatile relation used to hold a query operator's
// intermediate results. It is renamed under a temp<N>::<original-name>
// namespace on construction so concurrently running queries never collide
// on storage paths. Being volatile it never writes to disk, so its Close
// has no directory to remove.
type TempRelation struct {
	*Relation
}

// NewTempRelation wraps base as a uniquely-named volatile relation. base
// should already be volatile (built via NewVolatile); NewTempRelation only
// renames it into the temp namespace.
func NewTempRelation(base *Relation) *TempRelation {
	id := atomic.AddUint64(&tempCount, 1)
	prefix := identifier.New(fmt.Sprintf("temp%d", id))
	base.Rename(identifier.Concat(prefix, base.Name()))
	return &TempRelation{Relation: base}
}

// Close releases the temporary relation's storage. Safe to call even though
// the underlying relation is volatile and never wrote to disk.
func (t *TempRelation) Close() error {
	return t.Relation.Close()
}
