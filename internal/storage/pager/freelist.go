package pager

// freeStack is an in-memory LIFO of reclaimed page numbers, mirroring the
// fixed-size on-disk region described by fileHeader. It is the idiomatic
// equivalent of push_free_page/pop_free_page/is_empty_stack/is_full_stack
// from the source database, kept as a small wrapper (Alloc/Free/Count
// method names) rather than the page-chain free-list this package used to
// implement — this spec's free-page bookkeeping lives entirely in the
// fixed file header, never in its own chain of pages.
type freeStack struct {
	entries [TableMaxPages]uint32
	count   uint32
}

func newFreeStack(h fileHeader) *freeStack {
	return &freeStack{entries: h.freedStack, count: h.freedCount}
}

// isEmpty reports whether the stack holds no reclaimed pages.
func (f *freeStack) isEmpty() bool { return f.count == 0 }

// isFull reports whether the stack has reached TableMaxPages entries.
func (f *freeStack) isFull() bool { return f.count >= TableMaxPages }

// Free pushes a reclaimed page number. A full stack silently drops the
// page rather than failing the caller's operation — the source database
// does the same (prints a warning and returns), since losing track of one
// reclaimable page only wastes space, it does not corrupt the tree.
func (f *freeStack) Free(pageNum uint32) {
	if f.isFull() {
		return
	}
	f.entries[f.count] = pageNum
	f.count++
}

// Alloc pops the most recently freed page number, or returns
// InvalidPageNum if the stack is empty.
func (f *freeStack) Alloc() uint32 {
	if f.isEmpty() {
		return InvalidPageNum
	}
	f.count--
	return f.entries[f.count]
}

// Count returns the number of reclaimed pages available for reuse.
func (f *freeStack) Count() int { return int(f.count) }

func (f *freeStack) header() fileHeader {
	return fileHeader{freedCount: f.count, freedStack: f.entries}
}
