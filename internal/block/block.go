package block

import (
	"bufio"
	"math/big"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/dreamware/raddb/internal/identifier"
	"github.com/dreamware/raddb/internal/storelog"
	"github.com/dreamware/raddb/internal/tuple"
	"github.com/dreamware/raddb/internal/types"
	"github.com/edsrzf/mmap-go"
	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"
)

// Schema is the ordered column kinds a block needs to parse its stored
// tuples. internal/relation derives this from a RelationDefinition; block
// itself has no notion of column names.
type Schema []types.Kind

// DefaultStorageRoot is the directory blocks create their backing files
// under, mirroring the original's "DB_STORAGE" root.
const DefaultStorageRoot = "DB_STORAGE"

// Block is a single page of a relation's extendible-hash directory.
type Block struct {
	parentTable   identifier.Identifier
	blockNum      int
	schema        Schema
	storageRoot   string
	noBackingFile bool

	usage sync.RWMutex
	group singleflight.Group

	mu          sync.Mutex // guards c and reads below
	c           *contents
	unloadedLen int // tuple count written out by the last unload
	reads       int32
	accessed    accessInformation
}

// New creates a block backed by a file under storageRoot, creating the file
// (and its parent directories) if it does not already exist. The block
// starts unloaded.
func New(storageRoot string, parentTable identifier.Identifier, blockNum int, schema Schema) (*Block, error) {
	b := &Block{
		parentTable: parentTable,
		blockNum:    blockNum,
		schema:      schema,
		storageRoot: storageRoot,
	}
	if err := b.initializeFile(); err != nil {
		return nil, errors.Wrapf(err, "block: initializing backing file for %s block %d", parentTable, blockNum)
	}
	return b, nil
}

// NewUnbacked creates a block that never touches disk, used by volatile
// relations. It starts pre-loaded and empty.
func NewUnbacked(parentTable identifier.Identifier, blockNum int, schema Schema) *Block {
	b := &Block{
		parentTable:   parentTable,
		blockNum:      blockNum,
		schema:        schema,
		noBackingFile: true,
	}
	b.c = &contents{}
	return b
}

// Len returns the number of tuples currently stored in the block, without
// requiring a view. While the block is unloaded it reports the count written
// by its last unload; a block opened over an existing file reports 0 until
// it is first loaded.
func (b *Block) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.c == nil {
		return b.unloadedLen
	}
	return len(b.c.entries)
}

func (b *Block) fileName() string {
	parts := append([]string{b.storageRoot}, b.parentTable.Parts()...)
	parts = append(parts, "block_"+strconv.Itoa(b.blockNum)+".txt")
	return filepath.Join(parts...)
}

func (b *Block) initializeFile() error {
	name := b.fileName()
	if _, err := os.Stat(name); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(name, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return err
	}
	return f.Close()
}

// isLoaded reports whether the block's contents currently reside in memory.
func (b *Block) isLoaded() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.c != nil
}

// ensureLoaded loads the block if needed, de-duplicating concurrent callers
// through a singleflight.Group so only one of them performs the disk read.
func (b *Block) ensureLoaded() error {
	if b.isLoaded() {
		return nil
	}
	_, err, _ := b.group.Do("load", func() (interface{}, error) {
		if b.isLoaded() {
			return nil, nil
		}
		return nil, b.load()
	})
	return err
}

// load reads the block's backing file into memory via a read-only mmap and
// parses each "<hash>:<tuple>" line against the block's schema.
func (b *Block) load() error {
	if b.noBackingFile {
		b.mu.Lock()
		if b.c == nil {
			b.c = &contents{}
		}
		b.mu.Unlock()
		return nil
	}

	name := b.fileName()
	f, err := os.OpenFile(name, os.O_RDWR, 0o644)
	if err != nil {
		return errors.Wrapf(err, "block: opening %s", name)
	}

	info, statErr := f.Stat()
	var entries []entry
	if statErr == nil && info.Size() > 0 {
		mapped, mmapErr := mmap.Map(f, mmap.RDONLY, 0)
		if mmapErr != nil {
			f.Close()
			return errors.Wrapf(mmapErr, "block: mmap %s", name)
		}
		raw := string(mapped)
		mapped.Unmap()

		for _, line := range strings.Split(raw, "\n") {
			line = strings.TrimRight(line, "\r")
			if line == "" {
				continue
			}
			e, parseErr := parseEntry(line, b.schema)
			if parseErr != nil {
				f.Close()
				return errors.Wrapf(parseErr, "block: parsing %s", name)
			}
			entries = append(entries, e)
		}
	}

	b.mu.Lock()
	b.c = &contents{file: f, entries: entries}
	b.mu.Unlock()

	storelog.Named("block").Debugw("loaded block", "path", name, "tuples", len(entries))
	return nil
}

func parseEntry(line string, schema Schema) (entry, error) {
	idx := strings.IndexByte(line, ':')
	if idx < 0 {
		return entry{}, errors.Errorf("malformed block line, missing ':' separator: %q", line)
	}
	hashText, tupleText := line[:idx], line[idx+1:]
	hash, ok := new(big.Int).SetString(hashText, 10)
	if !ok {
		return entry{}, errors.Errorf("malformed hash %q", hashText)
	}
	t, err := tuple.Parse(tupleText, schema)
	if err != nil {
		return entry{}, err
	}
	return entry{hash: hash, tuple: t}, nil
}

// unload writes the block's in-memory entries back to its backing file via
// truncate-and-rewrite and drops them from memory. Callers must hold no
// outstanding views (unload is only invoked once a guard's Close confirms
// the block has gone cold).
func (b *Block) unload() error {
	if b.noBackingFile {
		return nil
	}
	b.mu.Lock()
	c := b.c
	b.c = nil
	if c != nil {
		b.unloadedLen = len(c.entries)
	}
	b.mu.Unlock()
	if c == nil {
		return nil
	}
	if c.file != nil {
		c.file.Close()
	}

	name := b.fileName()
	f, err := os.Create(name)
	if err != nil {
		return errors.Wrapf(err, "block: recreating %s", name)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, e := range c.entries {
		if _, err := w.WriteString(e.hash.Text(10)); err != nil {
			return errors.Wrapf(err, "block: writing %s", name)
		}
		if err := w.WriteByte(':'); err != nil {
			return err
		}
		if _, err := w.WriteString(e.tuple.Serialize()); err != nil {
			return err
		}
		if err := w.WriteByte('\n'); err != nil {
			return err
		}
	}
	if err := w.Flush(); err != nil {
		return errors.Wrapf(err, "block: flushing %s", name)
	}
	storelog.Named("block").Debugw("unloaded block", "path", name, "tuples", len(c.entries))
	return nil
}

// notifyFinish is called when a view's Close runs; it unloads the block if
// it has gone cold and no other view holds it open.
func (b *Block) notifyFinish() {
	b.mu.Lock()
	reads := atomic.LoadInt32(&b.reads)
	loaded := b.c != nil
	cold := b.accessed.shouldUnload()
	b.mu.Unlock()

	if reads == 0 && loaded && cold {
		if err := b.unload(); err != nil {
			storelog.Named("block").Warnw("failed to unload block", "error", err)
		}
	}
}
