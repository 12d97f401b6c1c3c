package pager

import "fmt"

// btree implements the single-table B+-tree described in spec.md §4: search,
// insert with node splitting, and delete with borrow/merge rebalancing. It
// never touches the file directly — every page access goes through a
// pinScope, which is what lets leaf_split_and_insert and friends hold
// several pages pinned across one mutation without the pool evicting one out
// from under them.
//
// The root always lives at page 0 and never moves, even across a root
// split (create_new_root copies the old root's content down into a new
// page) or a root collapse during merge (internal_merge / leaf_merge copy
// the surviving child's content up into page 0). This mirrors the source
// database exactly and is why next_leaf can safely use page 0 as "no
// successor" — page 0 is always the root and is never a legitimate
// successor or child reference.
type btree struct {
	pool *pool
	free *freeStack
	root uint32
}

func newBTree(pool *pool, free *freeStack) *btree {
	return &btree{pool: pool, free: free, root: 0}
}

// allocatePage returns a free page number, preferring one off the free
// stack before growing the file.
func (bt *btree) allocatePage() uint32 {
	if pageNum := bt.free.Alloc(); pageNum != InvalidPageNum {
		return pageNum
	}
	return bt.pool.numPages
}

func (bt *btree) freePage(pageNum uint32) {
	bt.free.Free(pageNum)
}

// --- search ---

// findChildIndex returns the smallest cell index in an internal node whose
// key is >= searchKey, or numKeys if none is (meaning the right child owns
// it). Binary search over the sorted cell-key array, matching
// internal_node_find_child.
func findChildIndex(buf []byte, searchKey uint32) int {
	lo, hi := 0, int(internalNumKeys(buf))
	for lo != hi {
		mid := (lo + hi) / 2
		if internalCellKey(buf, mid) >= searchKey {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return lo
}

// leafFind returns the index at which key belongs within a leaf's sorted
// cell array — either the cell already holding it, or the insertion point.
func leafFind(buf []byte, key uint32) int {
	lo, hi := 0, int(leafNumCells(buf))
	for lo != hi {
		mid := (lo + hi) / 2
		if leafCellKey(buf, mid) == key {
			return mid
		}
		if key < leafCellKey(buf, mid) {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return lo
}

// descend walks from the root to the leaf that owns key, pinning every page
// visited in scope. The caller's scope stays valid for as long as it needs
// the returned leaf (and any ancestors it pinned along the way).
func (bt *btree) descend(scope *pinScope, key uint32) (leafPage uint32, cellNum int) {
	pageNum := bt.root
	buf := scope.pin(pageNum)
	for getNodeType(buf) == NodeInternal {
		idx := findChildIndex(buf, key)
		pageNum = internalChild(buf, idx)
		buf = scope.pin(pageNum)
	}
	return pageNum, leafFind(buf, key)
}

func (bt *btree) leftmostLeaf(scope *pinScope) uint32 {
	pageNum := bt.root
	buf := scope.pin(pageNum)
	for getNodeType(buf) == NodeInternal {
		pageNum = internalChild(buf, 0)
		buf = scope.pin(pageNum)
	}
	return pageNum
}

// tableFind is table_find: a self-contained search returning a Cursor
// positioned at key's cell, or its would-be insertion point.
func (bt *btree) tableFind(key uint32) *Cursor {
	scope := newPinScope(bt.pool)
	defer scope.unpinAll()

	leafPage, cellNum := bt.descend(scope, key)
	return &Cursor{leafPage: leafPage, cellNum: cellNum}
}

func (bt *btree) selectAll() []Record {
	var out []Record
	c := bt.tableStart()
	for !c.endOfTable {
		out = append(out, bt.cursorValue(c))
		bt.cursorAdvance(c)
	}
	return out
}

func (bt *btree) count() int {
	scope := newPinScope(bt.pool)
	defer scope.unpinAll()

	n := 0
	pageNum := bt.leftmostLeaf(scope)
	for {
		buf := scope.pin(pageNum)
		n += int(leafNumCells(buf))
		next := leafNextLeaf(buf)
		if next == 0 {
			return n
		}
		pageNum = next
	}
}

// --- insert ---

func (bt *btree) insert(key uint32, rec Record) error {
	scope := newPinScope(bt.pool)
	defer scope.unpinAll()

	leafPage, cellNum := bt.descend(scope, key)
	buf := scope.pin(leafPage)
	if cellNum < int(leafNumCells(buf)) && leafCellKey(buf, cellNum) == key {
		return fmt.Errorf("%w: id %d already present", ErrDuplicateKey, key)
	}

	bt.leafInsert(scope, leafPage, cellNum, key, rec)
	return nil
}

// leafInsert places key/rec at cellNum in leafPage, splitting the leaf first
// if it is already full. Matches leaf_node_insert.
func (bt *btree) leafInsert(scope *pinScope, leafPage uint32, cellNum int, key uint32, rec Record) {
	buf := scope.pin(leafPage)
	if int(leafNumCells(buf)) >= LeafNodeMaxCells {
		bt.leafSplitAndInsert(scope, leafPage, cellNum, key, rec)
		return
	}
	leafInsertCellAt(buf, cellNum, key, rec)
}

// leafSplitAndInsert splits a full leaf into two, distributing the existing
// LeafNodeMaxCells cells plus the new one across old and new leaves
// (LeafNodeLeftSplitCount in the old page, the rest in the new one), then
// re-links the leaf chain and propagates the split up to the parent.
// Matches leaf_node_split_and_insert.
func (bt *btree) leafSplitAndInsert(scope *pinScope, oldPage uint32, cellNum int, key uint32, rec Record) {
	oldBuf := scope.pin(oldPage)
	oldMax := bt.nodeMaxKey(scope, oldBuf)
	newPage := bt.allocatePage()
	newBuf := scope.pin(newPage)
	initializeLeaf(newBuf)
	setNodeParent(newBuf, nodeParent(oldBuf))
	setLeafNextLeaf(newBuf, leafNextLeaf(oldBuf))
	setLeafNextLeaf(oldBuf, newPage)

	// Redistribute cells [0, LeafNodeMaxCells] (the existing LeafNodeMaxCells
	// cells plus the new one being inserted) from the highest index down, so
	// a cell is only ever written after its old contents (if any) have
	// already been read — including when the destination is the same page
	// the source cell lives on.
	for i := LeafNodeMaxCells; i >= 0; i-- {
		var destBuf []byte
		var destIdx int
		if i >= LeafNodeLeftSplitCount {
			destBuf = newBuf
			destIdx = i - LeafNodeLeftSplitCount
		} else {
			destBuf = oldBuf
			destIdx = i
		}

		switch {
		case i == cellNum:
			setLeafCellKey(destBuf, destIdx, key)
			setLeafCellRecord(destBuf, destIdx, rec)
		case i > cellNum:
			srcIdx := i - 1
			k := leafCellKey(oldBuf, srcIdx)
			r := deserializeRecord(leafCellRecord(oldBuf, srcIdx))
			setLeafCellKey(destBuf, destIdx, k)
			setLeafCellRecord(destBuf, destIdx, r)
		default:
			k := leafCellKey(oldBuf, i)
			r := deserializeRecord(leafCellRecord(oldBuf, i))
			setLeafCellKey(destBuf, destIdx, k)
			setLeafCellRecord(destBuf, destIdx, r)
		}
	}

	setLeafNumCells(oldBuf, uint32(LeafNodeLeftSplitCount))
	setLeafNumCells(newBuf, uint32(LeafNodeMaxCells+1-LeafNodeLeftSplitCount))

	if nodeIsRoot(oldBuf) {
		bt.createNewRoot(scope, newPage)
		return
	}

	parentPage := nodeParent(oldBuf)
	bt.updateInternalKey(scope, parentPage, oldMax, bt.nodeMaxKey(scope, oldBuf))
	bt.internalInsert(scope, parentPage, newPage)
}

func (bt *btree) updateInternalKey(scope *pinScope, parentPage uint32, oldKey, newKey uint32) {
	buf := scope.pin(parentPage)
	updateInternalKey(buf, oldKey, newKey)
}

func updateInternalKey(buf []byte, oldKey, newKey uint32) {
	idx := findChildIndex(buf, oldKey)
	if idx < int(internalNumKeys(buf)) {
		setInternalCellKey(buf, idx, newKey)
	}
}

// createNewRoot replaces the root's content with a fresh internal node
// whose two children are a copy of the old root (moved to a new page) and
// rightPage, matching create_new_root. The root page number itself never
// changes.
//
// If the old root was already an internal node (this call came from
// internal_split_and_insert), the freshly allocated right-hand page must be
// initialized as an empty internal node before the caller populates it —
// the parallel pre-init of the left-hand page is not load-bearing, since
// the very next line overwrites it wholesale with the old root's bytes.
func (bt *btree) createNewRoot(scope *pinScope, rightPage uint32) {
	rootBuf := scope.pin(bt.root)
	wasInternal := getNodeType(rootBuf) == NodeInternal

	leftPage := bt.allocatePage()
	leftBuf := scope.pin(leftPage)
	rightBuf := scope.pin(rightPage)
	if wasInternal {
		initializeInternal(rightBuf)
	}

	copy(leftBuf, rootBuf)
	setNodeIsRoot(leftBuf, false)

	if wasInternal {
		n := int(internalNumKeys(leftBuf))
		for i := 0; i <= n; i++ {
			child := scope.pin(internalChild(leftBuf, i))
			setNodeParent(child, leftPage)
		}
	}

	leftMax := bt.nodeMaxKey(scope, leftBuf)

	initializeInternal(rootBuf)
	setNodeIsRoot(rootBuf, true)
	setInternalNumKeys(rootBuf, 1)
	setInternalCellChild(rootBuf, 0, leftPage)
	setInternalCellKey(rootBuf, 0, leftMax)
	setInternalRightChild(rootBuf, rightPage)

	setNodeParent(leftBuf, bt.root)
	setNodeParent(rightBuf, bt.root)
}

// internalInsert inserts childPage into parentPage, splitting the parent
// first if it is already full, and sets childPage's parent pointer to
// parentPage (or to wherever the split relocated it). Matches
// internal_node_insert, with the child-reparenting its call sites otherwise
// each repeat folded in here once.
func (bt *btree) internalInsert(scope *pinScope, parentPage, childPage uint32) {
	parentBuf := scope.pin(parentPage)
	childBuf := scope.pin(childPage)
	childMax := bt.nodeMaxKey(scope, childBuf)
	index := findChildIndex(parentBuf, childMax)

	originalNumKeys := int(internalNumKeys(parentBuf))
	if originalNumKeys >= InternalNodeMaxCells {
		bt.internalSplitAndInsert(scope, parentPage, childPage)
		return
	}

	rightChildPage := internalRightChild(parentBuf)
	if rightChildPage == InvalidPageNum {
		setInternalRightChild(parentBuf, childPage)
		setNodeParent(childBuf, parentPage)
		return
	}

	rightChildBuf := scope.pin(rightChildPage)
	rightChildMax := bt.nodeMaxKey(scope, rightChildBuf)
	if childMax > rightChildMax {
		// childPage becomes the new right child; the old one is demoted to
		// a regular cell at the end of the array.
		setInternalCellChild(parentBuf, originalNumKeys, rightChildPage)
		setInternalCellKey(parentBuf, originalNumKeys, rightChildMax)
		setInternalNumKeys(parentBuf, uint32(originalNumKeys+1))
		setInternalRightChild(parentBuf, childPage)
	} else {
		internalInsertCellAt(parentBuf, index, childPage, childMax)
	}
	setNodeParent(childBuf, parentPage)
}

// internalSplitAndInsert splits a full internal node in two, matching
// internal_node_split_and_insert: the old right child is folded into the
// new node first, then cells are peeled off the old node's top half one at
// a time and reinserted into the new node, and finally the incoming child
// is placed into whichever half its key belongs in.
func (bt *btree) internalSplitAndInsert(scope *pinScope, parentPageArg, childPage uint32) {
	oldPage := parentPageArg
	oldBuf := scope.pin(oldPage)
	oldMax := bt.nodeMaxKey(scope, oldBuf)
	childBuf := scope.pin(childPage)
	childMax := bt.nodeMaxKey(scope, childBuf)

	newPage := bt.allocatePage()
	newBuf := scope.pin(newPage)
	splittingRoot := nodeIsRoot(oldBuf)

	var parentPage uint32
	if splittingRoot {
		bt.createNewRoot(scope, newPage)
		parentPage = bt.root
		parentBuf := scope.pin(parentPage)
		oldPage = internalChild(parentBuf, 0)
		oldBuf = scope.pin(oldPage)
	} else {
		parentPage = nodeParent(oldBuf)
		initializeInternal(newBuf)
	}

	// Move the old node's right child into the new node first.
	bt.internalInsert(scope, newPage, internalRightChild(oldBuf))
	setInternalRightChild(oldBuf, InvalidPageNum)

	// Peel cells above the midpoint off the old node and into the new one.
	for i := InternalNodeMaxCells - 1; i > InternalNodeMaxCells/2; i-- {
		bt.internalInsert(scope, newPage, internalCellChild(oldBuf, i))
		setInternalNumKeys(oldBuf, internalNumKeys(oldBuf)-1)
	}

	// The cell just below the midpoint becomes the old node's new right
	// child, and is no longer counted as a cell.
	setInternalRightChild(oldBuf, internalCellChild(oldBuf, int(internalNumKeys(oldBuf))-1))
	setInternalNumKeys(oldBuf, internalNumKeys(oldBuf)-1)

	maxAfterSplit := bt.nodeMaxKey(scope, oldBuf)
	destPage := newPage
	if childMax < maxAfterSplit {
		destPage = oldPage
	}
	bt.internalInsert(scope, destPage, childPage)

	bt.updateInternalKey(scope, parentPage, oldMax, bt.nodeMaxKey(scope, oldBuf))

	if !splittingRoot {
		bt.internalInsert(scope, parentPage, newPage)
	}
}

// --- ancestor key propagation ---

// walkToKeyOwner finds the internal node whose own cell (not merely its
// right_child pointer) references node's subtree, for use when node's max
// key has just changed and an ancestor's separator key needs updating. It
// climbs past every ancestor for which node is only reachable via the
// right_child chain, stopping at the first ancestor that holds it by key,
// or at the root. Used by leafDelete and by leafMerge's absorb branch; the
// borrow branches of leafMerge and internalMerge update their parent's key
// directly, since the node whose max grows there is never the parent's
// right child.
func (bt *btree) walkToKeyOwner(scope *pinScope, node uint32) uint32 {
	nodeBuf := scope.pin(node)
	nodeMax := bt.nodeMaxKey(scope, nodeBuf)

	p1 := nodeParent(nodeBuf)
	p1Buf := scope.pin(p1)
	index := findChildIndex(p1Buf, nodeMax)
	if index != int(internalNumKeys(p1Buf)) || nodeIsRoot(p1Buf) {
		return p1
	}

	curPage := p1
	ancestorPage := nodeParent(p1Buf)
	ancestorBuf := scope.pin(ancestorPage)

	for internalRightChild(ancestorBuf) == curPage && !nodeIsRoot(ancestorBuf) {
		curBuf := scope.pin(curPage)
		nextCur := nodeParent(curBuf)
		nextAncestor := nodeParent(ancestorBuf)

		curPage = nextCur
		ancestorPage = nextAncestor
		ancestorBuf = scope.pin(ancestorPage)
	}
	return ancestorPage
}

func (bt *btree) propagateKeyUpdate(scope *pinScope, node uint32, oldMax, newMax uint32) {
	owner := bt.walkToKeyOwner(scope, node)
	ownerBuf := scope.pin(owner)
	updateInternalKey(ownerBuf, oldMax, newMax)
}

// --- delete ---

// LeafNodeMinCells is the minimum occupancy a non-root leaf must keep, the
// same split point used to divide a full leaf in two.
const LeafNodeMinCells = LeafNodeLeftSplitCount

func (bt *btree) delete(key uint32) error {
	scope := newPinScope(bt.pool)
	defer scope.unpinAll()

	leafPage, cellNum := bt.descend(scope, key)
	buf := scope.pin(leafPage)
	if cellNum >= int(leafNumCells(buf)) || leafCellKey(buf, cellNum) != key {
		return fmt.Errorf("%w: id %d", ErrKeyNotFound, key)
	}

	bt.leafDelete(scope, leafPage, cellNum)
	return nil
}

// leafDelete removes the cell at cellNum from leafPage, propagating a
// shrunk max key up to the ancestors if the removed cell was the leaf's
// last, then merges the leaf with a sibling if it dropped below the
// minimum occupancy. Matches leaf_node_delete.
func (bt *btree) leafDelete(scope *pinScope, leafPage uint32, cellNum int) {
	buf := scope.pin(leafPage)
	numCells := int(leafNumCells(buf))

	switch {
	case cellNum+1 < numCells:
		leafDeleteCellAt(buf, cellNum)
	case !nodeIsRoot(buf):
		oldMax := leafCellKey(buf, cellNum)
		newMax := leafCellKey(buf, cellNum-1)
		bt.propagateKeyUpdate(scope, leafPage, oldMax, newMax)
		setLeafNumCells(buf, uint32(numCells-1))
	default:
		setLeafNumCells(buf, uint32(numCells-1))
	}

	if !nodeIsRoot(buf) && int(leafNumCells(buf)) < LeafNodeMinCells {
		bt.leafMerge(scope, leafPage)
	}
}

// leafMerge rebalances an underfull leaf by borrowing one cell from a
// sibling, or by fully absorbing into a sibling when the sibling is itself
// at the minimum. Matches leaf_node_merge.
func (bt *btree) leafMerge(scope *pinScope, leafPage uint32) {
	leafBuf := scope.pin(leafPage)
	parentPage := nodeParent(leafBuf)
	parentBuf := scope.pin(parentPage)

	leafMax := bt.nodeMaxKey(scope, leafBuf)
	index := findChildIndex(parentBuf, leafMax)

	siblingIndex := index + 1
	if index == int(internalNumKeys(parentBuf)) {
		siblingIndex = index - 1
	}
	siblingPage := internalChild(parentBuf, siblingIndex)
	siblingBuf := scope.pin(siblingPage)
	siblingOldMax := bt.nodeMaxKey(scope, siblingBuf)

	if int(leafNumCells(siblingBuf)) > LeafNodeMinCells {
		siblingCellNum := 0
		if siblingIndex == index-1 {
			siblingCellNum = int(leafNumCells(siblingBuf)) - 1
		}
		key := leafCellKey(siblingBuf, siblingCellNum)
		rec := deserializeRecord(leafCellRecord(siblingBuf, siblingCellNum))

		bt.leafInsert(scope, leafPage, leafFind(leafBuf, key), key, rec)
		newLeafMax := bt.nodeMaxKey(scope, leafBuf)
		updateInternalKey(parentBuf, leafMax, newLeafMax)

		bt.leafDelete(scope, siblingPage, leafFind(siblingBuf, key))
		return
	}

	// Sibling is at the minimum too: absorb this leaf's cells into it.
	n := int(leafNumCells(leafBuf))
	for i := 0; i < n; i++ {
		key := leafCellKey(leafBuf, i)
		rec := deserializeRecord(leafCellRecord(leafBuf, i))
		bt.leafInsert(scope, siblingPage, leafFind(siblingBuf, key), key, rec)
	}

	if int(internalNumKeys(parentBuf)) == 1 && nodeIsRoot(parentBuf) {
		copy(parentBuf, siblingBuf)
		setNodeType(parentBuf, NodeLeaf)
		setNodeIsRoot(parentBuf, true)
		setLeafNextLeaf(parentBuf, 0)
		bt.freePage(siblingPage)
		bt.freePage(leafPage)
		return
	}

	newSiblingMax := bt.nodeMaxKey(scope, siblingBuf)
	bt.propagateKeyUpdate(scope, leafPage, siblingOldMax, newSiblingMax)

	if index == int(internalNumKeys(parentBuf)) {
		setLeafNextLeaf(siblingBuf, leafNextLeaf(leafBuf))
	} else {
		bt.relinkPredecessor(scope, leafPage, siblingPage)
	}

	bt.internalDelete(scope, parentPage, leafPage, index)
}

// relinkPredecessor finds the leaf whose next_leaf currently points at
// leafPage and repoints it at siblingPage, skipping leafPage (about to be
// freed) out of the chain. Matches the predecessor-chain fix-up in
// leaf_node_merge.
func (bt *btree) relinkPredecessor(scope *pinScope, leafPage, siblingPage uint32) {
	pageNum := bt.leftmostLeaf(scope)
	buf := scope.pin(pageNum)
	for leafNextLeaf(buf) != leafPage && pageNum != leafPage {
		pageNum = leafNextLeaf(buf)
		buf = scope.pin(pageNum)
	}
	if pageNum != leafPage {
		setLeafNextLeaf(buf, siblingPage)
	}
}

// internalDelete removes childPage — at cell index, or the right_child slot
// if index equals numKeys — from parentPage, then merges parentPage if it
// drops to zero keys. Matches internal_node_delete.
func (bt *btree) internalDelete(scope *pinScope, parentPage, childPage uint32, index int) {
	childBuf := scope.pin(childPage)
	parentBuf := scope.pin(parentPage)
	numKeys := int(internalNumKeys(parentBuf))

	if index == numKeys {
		setInternalRightChild(parentBuf, internalCellChild(parentBuf, index-1))

		oldMax := bt.nodeMaxKey(scope, childBuf)
		newRightBuf := scope.pin(internalRightChild(parentBuf))
		newMax := bt.nodeMaxKey(scope, newRightBuf)
		// The generalized ancestor walk degenerates to a direct update on
		// parentBuf here: the source database's own internal_node_delete
		// compares the parent's right_child to the parent's own page
		// number, a condition that can never hold, so it never actually
		// climbs past this immediate parent even when the parent is
		// itself a right-child several levels up. Preserved as observed.
		updateInternalKey(parentBuf, oldMax, newMax)
	} else {
		for i := index; i+1 < numKeys; i++ {
			copyInternalCellRaw(parentBuf, i, i+1)
		}
	}

	setInternalNumKeys(parentBuf, uint32(numKeys-1))
	bt.freePage(childPage)

	if int(internalNumKeys(parentBuf)) < 1 && !nodeIsRoot(parentBuf) {
		bt.internalMerge(scope, parentPage)
	}
}

func copyInternalCellRaw(buf []byte, dst, src int) {
	copy(buf[internalCellOffset(dst):internalCellOffset(dst)+internalCellSize],
		buf[internalCellOffset(src):internalCellOffset(src)+internalCellSize])
}

// removeInternalChildAt removes the child at index (or the right_child
// slot, when index equals numKeys) from an internal node, shifting
// remaining cells left and decrementing numKeys, with no page-freeing or
// key-propagation side effect — the caller (internalMerge's borrow branch)
// has already absorbed the child elsewhere and handles those separately.
func removeInternalChildAt(buf []byte, index int) {
	n := int(internalNumKeys(buf))
	if index == n {
		setInternalRightChild(buf, internalCellChild(buf, n-1))
	} else {
		for i := index; i+1 < n; i++ {
			copyInternalCellRaw(buf, i, i+1)
		}
	}
	setInternalNumKeys(buf, uint32(n-1))
}

// internalMerge rebalances an underfull internal node by borrowing one
// child from a sibling, or by fully absorbing into a sibling (or, at the
// root, absorbing the sibling into the root in place) when the sibling
// itself holds only one key. Matches internal_node_merge.
func (bt *btree) internalMerge(scope *pinScope, nodePage uint32) {
	nodeBuf := scope.pin(nodePage)
	parentPage := nodeParent(nodeBuf)
	parentBuf := scope.pin(parentPage)
	origRightChild := scope.pin(internalRightChild(nodeBuf))

	nodeMax := bt.nodeMaxKey(scope, nodeBuf)
	index := findChildIndex(parentBuf, nodeMax)

	siblingIndex := index + 1
	if index == int(internalNumKeys(parentBuf)) {
		siblingIndex = index - 1
	}
	siblingPage := internalChild(parentBuf, siblingIndex)
	siblingBuf := scope.pin(siblingPage)

	if int(internalNumKeys(siblingBuf)) > 1 {
		siblingCellNum := 0
		if siblingIndex == index-1 {
			siblingCellNum = int(internalNumKeys(siblingBuf))
		}
		sourcePage := internalChild(siblingBuf, siblingCellNum)
		sourceBuf := scope.pin(sourcePage)

		setNodeParent(sourceBuf, nodePage)
		setInternalNumKeys(nodeBuf, internalNumKeys(nodeBuf)+1)

		sourceMax := bt.nodeMaxKey(scope, sourceBuf)
		childMax := bt.nodeMaxKey(scope, origRightChild)

		if sourceMax > childMax {
			setInternalCellChild(nodeBuf, 0, internalRightChild(nodeBuf))
			setInternalCellKey(nodeBuf, 0, childMax)
			setInternalRightChild(nodeBuf, sourcePage)
			updateInternalKey(parentBuf, childMax, sourceMax)
		} else {
			setInternalCellChild(nodeBuf, 0, sourcePage)
			setInternalCellKey(nodeBuf, 0, sourceMax)
		}

		removeInternalChildAt(siblingBuf, siblingCellNum)
		return
	}

	// Sibling holds exactly one key: absorb node's sole remaining child
	// into it and drop node.
	if int(internalNumKeys(parentBuf)) == 1 && nodeIsRoot(parentBuf) {
		bt.internalInsert(scope, siblingPage, internalRightChild(nodeBuf))
		n := int(internalNumKeys(siblingBuf))
		for i := 0; i <= n; i++ {
			child := scope.pin(internalChild(siblingBuf, i))
			setNodeParent(child, nodeParent(nodeBuf))
		}
		copy(parentBuf, siblingBuf)
		setNodeIsRoot(parentBuf, true)
		bt.freePage(siblingPage)
		bt.freePage(nodePage)
		return
	}

	bt.internalInsert(scope, siblingPage, internalRightChild(nodeBuf))
	setNodeParent(origRightChild, siblingPage)
	bt.internalDelete(scope, parentPage, nodePage, index)
}
