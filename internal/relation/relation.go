package relation

import (
	"os"
	"path/filepath"

	"github.com/dreamware/raddb/internal/directory"
	"github.com/dreamware/raddb/internal/identifier"
	"github.com/dreamware/raddb/internal/key"
	"github.com/dreamware/raddb/internal/tuple"
	"github.com/pkg/errors"
)

// DefaultBucketSize is the capacity used when a caller doesn't care to tune
// it, matching the bucket size spec.md's worked scenarios use most often.
const DefaultBucketSize = 32

// Relation is a named, typed table: a RelationDefinition paired with the
// BlockDirectory that actually stores its tuples.
type Relation struct {
	name  identifier.Identifier
	def   RelationDefinition
	pkDef key.PrimaryKeyDefinition
	dir   *directory.BlockDirectory

	storageRoot string
	volatile    bool
}

// New creates a persistent relation rooted at storageRoot, backed by files
// under name's path.
func New(storageRoot string, name identifier.Identifier, def RelationDefinition, pkPositions []int, bucketSize int) *Relation {
	pkDef := key.NewPrimaryKeyDefinition(pkPositions...)
	dir := directory.New(storageRoot, name, def.Schema(), bucketSize, pkDef, false)
	return &Relation{name: name, def: def, pkDef: pkDef, dir: dir, storageRoot: storageRoot}
}

// NewVolatile creates a relation whose blocks never touch disk — used for
// query-intermediate and temporary relations.
func NewVolatile(storageRoot string, name identifier.Identifier, def RelationDefinition, pkPositions []int, bucketSize int) *Relation {
	pkDef := key.NewPrimaryKeyDefinition(pkPositions...)
	dir := directory.New(storageRoot, name, def.Schema(), bucketSize, pkDef, true)
	return &Relation{name: name, def: def, pkDef: pkDef, dir: dir, storageRoot: storageRoot, volatile: true}
}

// Name returns the relation's fully-qualified identifier.
func (r *Relation) Name() identifier.Identifier { return r.name }

// Attributes returns the relation's columns, in definition order.
func (r *Relation) Attributes() []Column { return append([]Column(nil), r.def.Columns...) }

// PrimaryKey returns the definition of the relation's primary key.
func (r *Relation) PrimaryKey() key.PrimaryKeyDefinition { return r.pkDef }

// Len returns the number of tuples currently stored.
func (r *Relation) Len() int { return r.dir.Len() }

// IsEmpty reports whether the relation holds no tuples.
func (r *Relation) IsEmpty() bool { return r.Len() == 0 }

// GetRelationDefinition returns the relation's column definition.
func (r *Relation) GetRelationDefinition() RelationDefinition { return r.def }

// GetFieldIndex returns the position of id among the relation's columns.
func (r *Relation) GetFieldIndex(id identifier.Identifier) (int, bool) {
	idx := r.def.IndexOf(id)
	if idx < 0 {
		return 0, false
	}
	return idx, true
}

// Insert stores t, returning the tuple it replaced under the same primary
// key, if any.
func (r *Relation) Insert(t tuple.Tuple) (tuple.Tuple, error) {
	old, err := r.dir.Insert(t)
	if err != nil {
		return nil, errors.Wrapf(err, "relation: inserting into %s", r.name)
	}
	return old, nil
}

// Tuples returns a full-scan iterator over every stored tuple.
func (r *Relation) Tuples() *directory.StoredTupleIterator { return r.dir.StoredTuples() }

// Blocks returns a bucket-at-a-time scan iterator, for block-nested-loop
// join strategies.
func (r *Relation) Blocks() *directory.BlockIterator { return r.dir.Blocks() }

// Rename updates the relation's identifier, propagating the change to its
// backing directory (logical-only; see DESIGN.md).
func (r *Relation) Rename(name identifier.Identifier) {
	r.name = name
	r.dir.Rename(name)
}

// Close removes a persistent relation's on-disk storage directory entirely,
// standing in for the original's drop-triggered cleanup since Go has no
// destructors. For a volatile relation it does nothing and returns nil: its
// blocks never write to disk, so there is nothing to remove.
func (r *Relation) Close() error {
	if r.volatile || r.storageRoot == "" {
		return nil
	}
	path := filepath.Join(r.storageRoot, filepath.Join(r.name.Parts()...))
	if err := os.RemoveAll(path); err != nil {
		return errors.Wrapf(err, "relation: removing storage for %s", r.name)
	}
	return nil
}
