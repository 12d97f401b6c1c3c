// Package storage is the public single-table storage engine: it wraps the
// B+-tree pager package with validation, a serializing lock, logging, and
// maintenance scheduling, the way the source database's execute_statement
// layer sits on top of its Table/Cursor primitives.
package storage

import (
	"fmt"
	"io"
	"log"
	"math"
	"sync"

	"github.com/cranked/recstore/internal/storage/pager"
)

// Record is the single fixed-shape row this engine stores.
type Record = pager.Record

// Options configures Open.
type Options struct {
	// MaxLoadedPages bounds the buffer pool's resident frame count
	// (config.go's max_loaded_pages). Zero uses pager.DefaultMaxLoadedPages.
	MaxLoadedPages int

	// Logger receives this table's log output. Defaults to log.Default().
	Logger *log.Logger

	// LogInstanceTag prefixes every log line with this table's short
	// instance id (config.go's log_instance_tag). Off by default.
	LogInstanceTag bool
}

// Table is a single id-keyed table backed by one page file. Every exported
// method takes the same lock, so spec.md §5's "exactly one in-flight tree
// operation at a time" holds regardless of how many goroutines call in —
// including the maintenance scheduler's own cron goroutine.
type Table struct {
	mu    sync.Mutex
	pager *pager.Pager
}

// Open opens (creating if necessary) the table's page file at path.
func Open(path string, opts Options) (*Table, error) {
	p, err := pager.Open(path, pager.Options{
		MaxLoadedPages: opts.MaxLoadedPages,
		Logger:         opts.Logger,
		LogInstanceTag: opts.LogInstanceTag,
	})
	if err != nil {
		return nil, err
	}
	return &Table{pager: p}, nil
}

// Insert adds a new row under id. id must fit in a uint32 — the on-disk key
// width — and username/email must fit the fixed record shape.
func (t *Table) Insert(id int64, username, email string) error {
	if id < 0 || id > math.MaxUint32 {
		return fmt.Errorf("%w: id %d out of range for a uint32 key", ErrInputValidation, id)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pager.Insert(uint32(id), Record{ID: uint32(id), Username: username, Email: email})
}

// Select returns every row in ascending id order.
func (t *Table) Select() []Record {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pager.Select()
}

// Delete removes the row under id.
func (t *Table) Delete(id int64) error {
	if id < 0 || id > math.MaxUint32 {
		return fmt.Errorf("%w: id %d out of range for a uint32 key", ErrInputValidation, id)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pager.Delete(uint32(id))
}

// Count returns the number of rows currently stored.
func (t *Table) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pager.Count()
}

// Flush writes back pending pages without closing the table. Exposed for
// the maintenance scheduler (scheduler.go); ordinary callers don't need it,
// since every mutation already goes through the pool's write-through
// eviction policy.
func (t *Table) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pager.Flush()
}

// Close flushes and releases the underlying file. The Table must not be
// used afterward.
func (t *Table) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pager.Close()
}

// Constants returns the page-layout constants derived from the compile-time
// record and page shape — see SPEC_FULL.md §4's diagnostic dump.
func (t *Table) Constants() pager.Constants {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pager.Constants()
}

// DumpTree writes a human-readable tree dump to w.
func (t *Table) DumpTree(w io.Writer) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pager.DumpTree(w)
}
