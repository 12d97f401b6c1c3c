package storage

import (
	"bytes"
	"errors"
	"math"
	"path/filepath"
	"testing"
)

func openTestTable(t *testing.T) *Table {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	tbl, err := Open(path, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { tbl.Close() })
	return tbl
}

func TestTableInsertAndSelect(t *testing.T) {
	tbl := openTestTable(t)
	if err := tbl.Insert(1, "alice", "alice@example.com"); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := tbl.Insert(2, "bob", "bob@example.com"); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	rows := tbl.Select()
	if len(rows) != 2 {
		t.Fatalf("Select() returned %d rows, want 2", len(rows))
	}
	if rows[0].Username != "alice" || rows[1].Username != "bob" {
		t.Fatalf("unexpected row contents: %+v", rows)
	}
}

func TestTableInsertDuplicateKey(t *testing.T) {
	tbl := openTestTable(t)
	if err := tbl.Insert(1, "alice", "alice@example.com"); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	err := tbl.Insert(1, "alice2", "alice2@example.com")
	if !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("second Insert error = %v, want ErrDuplicateKey", err)
	}
}

func TestTableInsertRejectsIDOutOfRange(t *testing.T) {
	tbl := openTestTable(t)
	if err := tbl.Insert(-1, "x", "x@x.com"); !errors.Is(err, ErrInputValidation) {
		t.Fatalf("negative id error = %v, want ErrInputValidation", err)
	}
	if err := tbl.Insert(math.MaxUint32+1, "x", "x@x.com"); !errors.Is(err, ErrInputValidation) {
		t.Fatalf("overflowing id error = %v, want ErrInputValidation", err)
	}
	if err := tbl.Insert(math.MaxUint32, "x", "x@x.com"); err != nil {
		t.Fatalf("id at exactly MaxUint32 should be accepted, got %v", err)
	}
}

func TestTableDeleteKeyNotFound(t *testing.T) {
	tbl := openTestTable(t)
	err := tbl.Delete(1)
	if !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("Delete error = %v, want ErrKeyNotFound", err)
	}
}

func TestTableDeleteRejectsIDOutOfRange(t *testing.T) {
	tbl := openTestTable(t)
	if err := tbl.Delete(-1); !errors.Is(err, ErrInputValidation) {
		t.Fatalf("negative id Delete error = %v, want ErrInputValidation", err)
	}
}

func TestTableCountAndFlush(t *testing.T) {
	tbl := openTestTable(t)
	for i := int64(0); i < 10; i++ {
		if err := tbl.Insert(i, "u", "u@x.com"); err != nil {
			t.Fatalf("Insert(%d): %v", i, err)
		}
	}
	if got := tbl.Count(); got != 10 {
		t.Fatalf("Count() = %d, want 10", got)
	}
	if err := tbl.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if got := tbl.Count(); got != 10 {
		t.Fatalf("Count() after Flush = %d, want 10", got)
	}
}

func TestTableConstantsAndDumpTree(t *testing.T) {
	tbl := openTestTable(t)
	if err := tbl.Insert(1, "a", "a@x.com"); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	c := tbl.Constants()
	if c.RowSize <= 0 {
		t.Fatalf("Constants().RowSize = %d, want positive", c.RowSize)
	}

	var buf bytes.Buffer
	if err := tbl.DumpTree(&buf); err != nil {
		t.Fatalf("DumpTree: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("DumpTree wrote nothing")
	}
}

func TestTableCloseThenReopenPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	tbl, err := Open(path, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := tbl.Insert(1, "alice", "alice@example.com"); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := tbl.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	tbl2, err := Open(path, Options{})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer tbl2.Close()
	if got := tbl2.Count(); got != 1 {
		t.Fatalf("Count() after reopen = %d, want 1", got)
	}
}
