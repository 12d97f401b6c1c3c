package pager

import (
	"bytes"
	"errors"
	"log"
	"path/filepath"
	"testing"
)

func openTestPager(t *testing.T, opts Options) *Pager {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	p, err := Open(path, opts)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { p.Close() })
	return p
}

func rec(id uint32) Record {
	return Record{ID: id, Username: "user", Email: "user@example.com"}
}

func TestOpenFreshFileHasEmptyRoot(t *testing.T) {
	p := openTestPager(t, Options{})
	if got := p.Count(); got != 0 {
		t.Fatalf("Count() on fresh file = %d, want 0", got)
	}
	if got := len(p.Select()); got != 0 {
		t.Fatalf("Select() on fresh file returned %d rows, want 0", got)
	}
}

func TestInsertAndSelectOrdersByID(t *testing.T) {
	p := openTestPager(t, Options{})
	ids := []uint32{5, 1, 9, 3, 7}
	for _, id := range ids {
		if err := p.Insert(id, rec(id)); err != nil {
			t.Fatalf("Insert(%d): %v", id, err)
		}
	}

	rows := p.Select()
	if len(rows) != len(ids) {
		t.Fatalf("Select() returned %d rows, want %d", len(rows), len(ids))
	}
	for i := 1; i < len(rows); i++ {
		if rows[i-1].ID >= rows[i].ID {
			t.Fatalf("rows not ascending at %d: %d >= %d", i, rows[i-1].ID, rows[i].ID)
		}
	}
}

func TestInsertDuplicateKeyFails(t *testing.T) {
	p := openTestPager(t, Options{})
	if err := p.Insert(1, rec(1)); err != nil {
		t.Fatalf("first Insert: %v", err)
	}
	err := p.Insert(1, rec(1))
	if !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("second Insert error = %v, want ErrDuplicateKey", err)
	}
}

func TestDeleteKeyNotFoundFails(t *testing.T) {
	p := openTestPager(t, Options{})
	err := p.Delete(42)
	if !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("Delete on empty table error = %v, want ErrKeyNotFound", err)
	}
}

func TestInsertThenDeleteRemovesRow(t *testing.T) {
	p := openTestPager(t, Options{})
	if err := p.Insert(1, rec(1)); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := p.Delete(1); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got := p.Count(); got != 0 {
		t.Fatalf("Count() after delete = %d, want 0", got)
	}
	err := p.Delete(1)
	if !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("second Delete error = %v, want ErrKeyNotFound", err)
	}
}

// TestManyInsertsForceSplitsAndStayOrdered drives enough rows through the
// tree to force both leaf splits (LeafNodeMaxCells is 13 for a 4096-byte
// page) and internal splits (InternalNodeMaxCells is deliberately small, at
// 3, so a modest number of leaf splits already forces several levels of
// internal splitting).
func TestManyInsertsForceSplitsAndStayOrdered(t *testing.T) {
	p := openTestPager(t, Options{})
	const n = 2000
	for i := uint32(0); i < n; i++ {
		// Insert out of order to exercise mid-leaf insertion, not just
		// always-append-at-the-end.
		id := (i * 7919) % n
		if err := p.Insert(id, rec(id)); err != nil {
			t.Fatalf("Insert(%d): %v", id, err)
		}
	}

	if got := p.Count(); got != n {
		t.Fatalf("Count() = %d, want %d", got, n)
	}

	rows := p.Select()
	if len(rows) != n {
		t.Fatalf("Select() returned %d rows, want %d", len(rows), n)
	}
	for i, row := range rows {
		if row.ID != uint32(i) {
			t.Fatalf("row %d has ID %d, want %d", i, row.ID, i)
		}
	}
}

// TestManyDeletesForceMergesAndStayOrdered inserts a large ordered key
// range, then deletes most of it, exercising leafMerge/internalMerge
// (borrow and full-absorb branches) and the eventual root collapse back
// down to a single leaf.
func TestManyDeletesForceMergesAndStayOrdered(t *testing.T) {
	p := openTestPager(t, Options{})
	const n = 1000
	for id := uint32(0); id < n; id++ {
		if err := p.Insert(id, rec(id)); err != nil {
			t.Fatalf("Insert(%d): %v", id, err)
		}
	}

	// Delete every key except a handful scattered through the range.
	keep := map[uint32]bool{0: true, 1: true, n / 2: true, n - 2: true, n - 1: true}
	for id := uint32(0); id < n; id++ {
		if keep[id] {
			continue
		}
		if err := p.Delete(id); err != nil {
			t.Fatalf("Delete(%d): %v", id, err)
		}
	}

	rows := p.Select()
	if len(rows) != len(keep) {
		t.Fatalf("Select() returned %d rows, want %d", len(rows), len(keep))
	}
	for _, row := range rows {
		if !keep[row.ID] {
			t.Fatalf("unexpected surviving row %d", row.ID)
		}
	}
	if got := p.Count(); got != len(keep) {
		t.Fatalf("Count() = %d, want %d", got, len(keep))
	}
}

func TestDeleteAllRowsCollapsesToEmptyLeafRoot(t *testing.T) {
	p := openTestPager(t, Options{})
	const n = 800
	for id := uint32(0); id < n; id++ {
		if err := p.Insert(id, rec(id)); err != nil {
			t.Fatalf("Insert(%d): %v", id, err)
		}
	}
	for id := uint32(0); id < n; id++ {
		if err := p.Delete(id); err != nil {
			t.Fatalf("Delete(%d): %v", id, err)
		}
	}
	if got := p.Count(); got != 0 {
		t.Fatalf("Count() = %d, want 0 after deleting everything", got)
	}
	if got := len(p.Select()); got != 0 {
		t.Fatalf("Select() = %d rows, want 0", got)
	}

	// The tree must still be usable afterward.
	if err := p.Insert(1, rec(1)); err != nil {
		t.Fatalf("Insert after full collapse: %v", err)
	}
	if got := p.Count(); got != 1 {
		t.Fatalf("Count() after re-insert = %d, want 1", got)
	}
}

func TestCloseAndReopenPersistsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persist.db")
	p, err := Open(path, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	for id := uint32(0); id < 300; id++ {
		if err := p.Insert(id, rec(id)); err != nil {
			t.Fatalf("Insert(%d): %v", id, err)
		}
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	p2, err := Open(path, Options{})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer p2.Close()

	if got := p2.Count(); got != 300 {
		t.Fatalf("Count() after reopen = %d, want 300", got)
	}
	rows := p2.Select()
	for i, row := range rows {
		if row.ID != uint32(i) {
			t.Fatalf("row %d has ID %d, want %d", i, row.ID, i)
		}
	}
}

// TestDefaultBufferPoolEvictsUnderLargeTree keeps the pool at its default
// size (far smaller than the dozens of pages a 500-row tree occupies),
// exercising the write-through eviction path on every operation instead of
// relying on the whole tree fitting in memory at once.
func TestDefaultBufferPoolEvictsUnderLargeTree(t *testing.T) {
	p := openTestPager(t, Options{})
	const n = 500
	for id := uint32(0); id < n; id++ {
		if err := p.Insert(id, rec(id)); err != nil {
			t.Fatalf("Insert(%d): %v", id, err)
		}
	}
	for id := uint32(0); id < n; id += 2 {
		if err := p.Delete(id); err != nil {
			t.Fatalf("Delete(%d): %v", id, err)
		}
	}

	rows := p.Select()
	if len(rows) != n/2 {
		t.Fatalf("Select() returned %d rows, want %d", len(rows), n/2)
	}
	for _, row := range rows {
		if row.ID%2 == 0 {
			t.Fatalf("even id %d should have been deleted", row.ID)
		}
	}
}

// TestFreedPagesAreReusedBeforeGrowingFile drives enough inserts to grow
// the file across several leaf/internal splits, deletes everything (which
// pushes every now-unused page onto the free stack down to the empty
// single-leaf-root state), then reinserts and checks that the pages handed
// back out come from the free stack rather than extending numPages, per
// spec.md §8 property 6.
func TestFreedPagesAreReusedBeforeGrowingFile(t *testing.T) {
	p := openTestPager(t, Options{})
	const n = 600
	for id := uint32(0); id < n; id++ {
		if err := p.Insert(id, rec(id)); err != nil {
			t.Fatalf("Insert(%d): %v", id, err)
		}
	}
	grownPages := p.pool.numPages
	if grownPages <= 1 {
		t.Fatalf("numPages after %d inserts = %d, want > 1", n, grownPages)
	}

	for id := uint32(0); id < n; id++ {
		if err := p.Delete(id); err != nil {
			t.Fatalf("Delete(%d): %v", id, err)
		}
	}
	if got := p.free.Count(); got == 0 {
		t.Fatal("free stack empty after deleting an entire multi-page tree")
	}

	numPagesBeforeReinsert := p.pool.numPages
	for id := uint32(0); id < n; id++ {
		if err := p.Insert(id, rec(id)); err != nil {
			t.Fatalf("re-Insert(%d): %v", id, err)
		}
	}
	if p.pool.numPages > numPagesBeforeReinsert {
		t.Fatalf("numPages grew from %d to %d on reinsert; freed pages were not reused first",
			numPagesBeforeReinsert, p.pool.numPages)
	}
}

// TestLogInstanceTagGatesLogPrefix checks that LogInstanceTag actually
// controls whether log lines carry the pager's short instance id: off by
// default, present only when explicitly requested.
func TestLogInstanceTagGatesLogPrefix(t *testing.T) {
	var buf bytes.Buffer
	baseLogger := log.New(&buf, "", 0)

	path := filepath.Join(t.TempDir(), "test.db")
	p, err := Open(path, Options{Logger: baseLogger})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	p.logger.Print("no tag")
	p.Close()
	if got := buf.String(); got != "no tag\n" {
		t.Fatalf("log line with LogInstanceTag=false = %q, want %q", got, "no tag\n")
	}

	buf.Reset()
	path2 := filepath.Join(t.TempDir(), "test2.db")
	p2, err := Open(path2, Options{Logger: baseLogger, LogInstanceTag: true})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	p2.logger.Print("tagged")
	p2.Close()

	want := "[pager " + shortID(p2.InstanceID()) + "] tagged\n"
	if got := buf.String(); got != want {
		t.Fatalf("log line with LogInstanceTag=true = %q, want %q", got, want)
	}
}

func TestInstanceIDIsUniquePerOpen(t *testing.T) {
	p1 := openTestPager(t, Options{})
	p2 := openTestPager(t, Options{})
	if p1.InstanceID() == p2.InstanceID() {
		t.Fatal("two separately opened pagers got the same instance id")
	}
}
