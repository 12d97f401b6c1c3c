package pager

import (
	"fmt"
	"io"
	"log"
	"os"
)

// lruNode is one entry in the doubly-linked LRU list of resident pages.
// head is the most-recently-used end, tail is the least-recently-used end —
// the same orientation as the source database's LRU_List.
type lruNode struct {
	pageNum    uint32
	prev, next *lruNode
}

// pool is the fixed-capacity, pinned, LRU-evicted page cache described by
// spec §4.1. It owns the file handle and is the only component that ever
// touches raw page bytes on disk; the B+-tree operates exclusively through
// pinScope.pin, never through pool directly.
type pool struct {
	file      *os.File
	maxLoaded int

	// diskPages is the number of pages physically present in the file at
	// last flush; a getPage miss below this reads from disk, at or above
	// it zero-fills a brand-new page.
	diskPages uint32

	// numPages is one past the highest page number ever loaded by getPage
	// in this process — the source database's pager->num_pages.
	numPages uint32

	frames  [TableMaxPages]int32 // frame slot index per page, or -1
	pinned  [TableMaxPages]bool
	buffers [][]byte // length maxLoaded; nil entries are unused slots

	lruHead, lruTail *lruNode
	lruIndex         map[uint32]*lruNode
	loadedCount      int

	logger *log.Logger
}

func newPool(file *os.File, diskPages uint32, maxLoaded int, logger *log.Logger) *pool {
	p := &pool{
		file:      file,
		maxLoaded: maxLoaded,
		diskPages: diskPages,
		numPages:  diskPages,
		buffers:   make([][]byte, maxLoaded),
		lruIndex:  make(map[uint32]*lruNode),
		logger:    logger,
	}
	for i := range p.frames {
		p.frames[i] = -1
	}
	return p
}

// getPage returns the buffer for pageNum, pinning it and promoting it to
// most-recently-used. It is fatal (panics) for pageNum to be out of range —
// the caller has a corrupted page number, which the source database treats
// as unrecoverable (exit(EXIT_FAILURE) in get_page).
func (p *pool) getPage(pageNum uint32) []byte {
	if pageNum >= TableMaxPages {
		p.logger.Panicf("pager: page number %d out of bounds (max %d)", pageNum, TableMaxPages)
	}

	p.pinned[pageNum] = true
	p.touchLRU(pageNum)

	if p.frames[pageNum] != -1 {
		return p.buffers[p.frames[pageNum]]
	}

	// Cache miss: materialize a zeroed frame, loading from disk if the
	// page already exists there.
	buf := NewZeroPage()
	if pageNum < p.diskPages {
		if err := p.readPageAt(pageNum, buf); err != nil {
			p.logger.Panicf("pager: reading page %d: %v", pageNum, err)
		}
	}
	if pageNum >= p.numPages {
		p.numPages = pageNum + 1
	}

	slot := p.reserveSlot()
	p.frames[pageNum] = int32(slot)
	p.buffers[slot] = buf
	return buf
}

// reserveSlot returns a free frame-buffer slot, evicting the LRU unpinned
// victim if the pool is at capacity.
func (p *pool) reserveSlot() int {
	if p.loadedCount < p.maxLoaded {
		for i, b := range p.buffers {
			if b == nil {
				p.loadedCount++
				return i
			}
		}
	}
	return p.evictOne()
}

// evictOne writes back and frees the least-recently-used unpinned page,
// returning its now-empty frame slot. Walking from the LRU tail backward
// and skipping pinned pages mirrors remove_least_recently_used; finding no
// unpinned candidate is a fatal, fail-loud condition (spec §4.1) — it means
// more pages are pinned simultaneously than maxLoaded allows.
func (p *pool) evictOne() int {
	node := p.lruTail
	for node != nil && p.pinned[node.pageNum] {
		node = node.prev
	}
	if node == nil {
		p.logger.Panicf("pager: no unpinned page available to evict (maxLoaded=%d)", p.maxLoaded)
	}

	victim := node.pageNum
	slot := p.frames[victim]
	if err := p.writePageAt(victim, p.buffers[slot]); err != nil {
		p.logger.Panicf("pager: flushing evicted page %d: %v", victim, err)
	}

	p.unlinkLRU(node)
	delete(p.lruIndex, victim)
	p.frames[victim] = -1
	p.buffers[slot] = nil
	p.loadedCount--
	return int(slot)
}

// unpin clears the pin flag for pageNum. It is the single-page primitive
// unpinAll is built from.
func (p *pool) unpin(pageNum uint32) {
	if pageNum < TableMaxPages {
		p.pinned[pageNum] = false
	}
}

func (p *pool) touchLRU(pageNum uint32) {
	if node, ok := p.lruIndex[pageNum]; ok {
		p.unlinkLRU(node)
	}
	node := &lruNode{pageNum: pageNum, next: p.lruHead}
	if p.lruHead != nil {
		p.lruHead.prev = node
	}
	p.lruHead = node
	if p.lruTail == nil {
		p.lruTail = node
	}
	p.lruIndex[pageNum] = node
}

func (p *pool) unlinkLRU(node *lruNode) {
	if node.prev != nil {
		node.prev.next = node.next
	}
	if node.next != nil {
		node.next.prev = node.prev
	}
	if node == p.lruHead {
		p.lruHead = node.next
	}
	if node == p.lruTail {
		p.lruTail = node.prev
	}
	node.prev, node.next = nil, nil
}

func (p *pool) readPageAt(pageNum uint32, dst []byte) error {
	off := int64(HeaderEnd) + int64(pageNum)*PageSize
	_, err := p.file.ReadAt(dst, off)
	if err != nil && err != io.EOF {
		return fmt.Errorf("read page %d: %w", pageNum, err)
	}
	return nil
}

func (p *pool) writePageAt(pageNum uint32, src []byte) error {
	off := int64(HeaderEnd) + int64(pageNum)*PageSize
	if _, err := p.file.WriteAt(src, off); err != nil {
		return fmt.Errorf("write page %d: %w", pageNum, err)
	}
	if pageNum >= p.diskPages {
		p.diskPages = pageNum + 1
	}
	return nil
}

// flushAll writes back every currently resident page, used on Close and
// by the maintenance scheduler (§2.5 of SPEC_FULL.md). There is no dirty
// bit — every resident page is treated as possibly dirty, matching the
// source database's write policy.
func (p *pool) flushAll() error {
	for pageNum, slot := range p.frames {
		if slot == -1 {
			continue
		}
		if err := p.writePageAt(uint32(pageNum), p.buffers[slot]); err != nil {
			return err
		}
	}
	return nil
}
