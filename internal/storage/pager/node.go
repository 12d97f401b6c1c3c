package pager

import "encoding/binary"

// Node layout
//
// Every page is either a leaf or an internal node. Both begin with the
// 6-byte common header from page.go (node type, is-root flag, parent
// pointer), followed by a type-specific header, followed by a packed array
// of fixed-size cells. Nothing is variable-length, so there is no slot
// directory and no free-space bookkeeping beyond a cell count — this is the
// classic B+-tree layout the source database builds, not the slotted-page
// layout this package used before.
//
// Leaf header (starts at commonHeaderSize):
//	numCells  uint32
//	nextLeaf  uint32   page number of the next leaf in key order, or
//	                   0 for the rightmost leaf
// Leaf cell: key uint32, then a RecordSize-byte serialized Record.
//
// Internal header (starts at commonHeaderSize):
//	numKeys    uint32
//	rightChild uint32  page number of the subtree holding keys > all cells
// Internal cell: child uint32, key uint32 — child is the page number of the
// subtree holding keys <= key.
const (
	leafNumCellsOffset = commonHeaderSize
	leafNextLeafOffset = leafNumCellsOffset + 4
	leafHeaderSize     = leafNextLeafOffset + 4 // 14

	leafKeySize    = 4
	leafCellSize   = leafKeySize + RecordSize // 297
	leafSpace      = PageSize - leafHeaderSize
	LeafNodeMaxCells        = leafSpace / leafCellSize
	LeafNodeRightSplitCount = (LeafNodeMaxCells + 1) / 2
	LeafNodeLeftSplitCount  = (LeafNodeMaxCells + 1) - LeafNodeRightSplitCount

	internalNumKeysOffset    = commonHeaderSize
	internalRightChildOffset = internalNumKeysOffset + 4
	internalHeaderSize       = internalRightChildOffset + 4 // 14

	internalCellSize = 4 + 4 // child, key

	// InternalNodeMaxCells is kept deliberately small, matching the source
	// database's own artificially low INTERNAL_NODE_MAX_KEYS — a realistic
	// page-sized fan-out would make internal splits nearly unreachable in
	// tests built on a handful of rows.
	InternalNodeMaxCells = 3
)

// --- leaf accessors ---

func leafNumCells(buf []byte) uint32 {
	return binary.LittleEndian.Uint32(buf[leafNumCellsOffset:])
}

func setLeafNumCells(buf []byte, n uint32) {
	binary.LittleEndian.PutUint32(buf[leafNumCellsOffset:], n)
}

func leafNextLeaf(buf []byte) uint32 {
	return binary.LittleEndian.Uint32(buf[leafNextLeafOffset:])
}

func setLeafNextLeaf(buf []byte, pageNum uint32) {
	binary.LittleEndian.PutUint32(buf[leafNextLeafOffset:], pageNum)
}

func leafCellOffset(i int) int {
	return leafHeaderSize + i*leafCellSize
}

func leafCellKey(buf []byte, i int) uint32 {
	off := leafCellOffset(i)
	return binary.LittleEndian.Uint32(buf[off:])
}

func setLeafCellKey(buf []byte, i int, key uint32) {
	off := leafCellOffset(i)
	binary.LittleEndian.PutUint32(buf[off:], key)
}

func leafCellRecord(buf []byte, i int) []byte {
	off := leafCellOffset(i) + leafKeySize
	return buf[off : off+RecordSize]
}

func setLeafCellRecord(buf []byte, i int, rec Record) {
	off := leafCellOffset(i) + leafKeySize
	serializeRecord(rec, buf[off:off+RecordSize])
}

// initializeLeaf resets buf in place to an empty leaf node. next_leaf is set
// to 0, not InvalidPageNum: spec.md's on-disk format reserves 0 (not
// UINT32_MAX) to mean "no successor", which is sound only because page 0
// is always the root — a leaf's next_leaf can equal 0 only when that leaf
// *is* page 0, i.e. the whole tree is one leaf and there is no successor.
func initializeLeaf(buf []byte) {
	setNodeType(buf, NodeLeaf)
	setNodeIsRoot(buf, false)
	setLeafNumCells(buf, 0)
	setLeafNextLeaf(buf, 0)
}

// leafInsertCellAt shifts cells [i:numCells) right by one slot and writes
// key/rec into the opening at i. Callers must ensure numCells <
// LeafNodeMaxCells before calling.
func leafInsertCellAt(buf []byte, i int, key uint32, rec Record) {
	n := int(leafNumCells(buf))
	for j := n; j > i; j-- {
		copy(buf[leafCellOffset(j):leafCellOffset(j)+leafCellSize], buf[leafCellOffset(j-1):leafCellOffset(j-1)+leafCellSize])
	}
	setLeafCellKey(buf, i, key)
	setLeafCellRecord(buf, i, rec)
	setLeafNumCells(buf, uint32(n+1))
}

// leafDeleteCellAt removes the cell at i, shifting later cells left.
func leafDeleteCellAt(buf []byte, i int) {
	n := int(leafNumCells(buf))
	for j := i; j < n-1; j++ {
		copy(buf[leafCellOffset(j):leafCellOffset(j)+leafCellSize], buf[leafCellOffset(j+1):leafCellOffset(j+1)+leafCellSize])
	}
	setLeafNumCells(buf, uint32(n-1))
}

// --- internal accessors ---

func internalNumKeys(buf []byte) uint32 {
	return binary.LittleEndian.Uint32(buf[internalNumKeysOffset:])
}

func setInternalNumKeys(buf []byte, n uint32) {
	binary.LittleEndian.PutUint32(buf[internalNumKeysOffset:], n)
}

func internalRightChild(buf []byte) uint32 {
	return binary.LittleEndian.Uint32(buf[internalRightChildOffset:])
}

func setInternalRightChild(buf []byte, pageNum uint32) {
	binary.LittleEndian.PutUint32(buf[internalRightChildOffset:], pageNum)
}

func internalCellOffset(i int) int {
	return internalHeaderSize + i*internalCellSize
}

func internalCellChild(buf []byte, i int) uint32 {
	off := internalCellOffset(i)
	return binary.LittleEndian.Uint32(buf[off:])
}

func setInternalCellChild(buf []byte, i int, pageNum uint32) {
	off := internalCellOffset(i)
	binary.LittleEndian.PutUint32(buf[off:], pageNum)
}

func internalCellKey(buf []byte, i int) uint32 {
	off := internalCellOffset(i) + 4
	return binary.LittleEndian.Uint32(buf[off:])
}

func setInternalCellKey(buf []byte, i int, key uint32) {
	off := internalCellOffset(i) + 4
	binary.LittleEndian.PutUint32(buf[off:], key)
}

// internalChild returns the page number of the i-th child, where i may
// equal numKeys to mean the right child.
func internalChild(buf []byte, i int) uint32 {
	n := int(internalNumKeys(buf))
	if i == n {
		return internalRightChild(buf)
	}
	return internalCellChild(buf, i)
}

func initializeInternal(buf []byte) {
	setNodeType(buf, NodeInternal)
	setNodeIsRoot(buf, false)
	setInternalNumKeys(buf, 0)
	setInternalRightChild(buf, InvalidPageNum)
}

func internalInsertCellAt(buf []byte, i int, child, key uint32) {
	n := int(internalNumKeys(buf))
	for j := n; j > i; j-- {
		copy(buf[internalCellOffset(j):internalCellOffset(j)+internalCellSize], buf[internalCellOffset(j-1):internalCellOffset(j-1)+internalCellSize])
	}
	setInternalCellChild(buf, i, child)
	setInternalCellKey(buf, i, key)
	setInternalNumKeys(buf, uint32(n+1))
}

func internalDeleteCellAt(buf []byte, i int) {
	n := int(internalNumKeys(buf))
	for j := i; j < n-1; j++ {
		copy(buf[internalCellOffset(j):internalCellOffset(j)+internalCellSize], buf[internalCellOffset(j+1):internalCellOffset(j+1)+internalCellSize])
	}
	setInternalNumKeys(buf, uint32(n-1))
}

// nodeMaxKey returns the largest key reachable under this node: the last
// cell's key for a leaf, or a recursive descent down the right child for
// an internal node (get_node_max_key in the source database).
func (bt *btree) nodeMaxKey(scope *pinScope, buf []byte) uint32 {
	if getNodeType(buf) == NodeLeaf {
		n := int(leafNumCells(buf))
		return leafCellKey(buf, n-1)
	}
	rightChild := scope.pin(internalRightChild(buf))
	return bt.nodeMaxKey(scope, rightChild)
}
