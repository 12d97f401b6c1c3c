package pager

import (
	"fmt"
	"io"
)

// Constants mirrors db.c's print_constants: the derived layout numbers a
// test or operator would otherwise have to recompute by hand.
type Constants struct {
	RowSize                 int
	CommonNodeHeaderSize    int
	LeafNodeHeaderSize      int
	LeafNodeCellSize        int
	LeafNodeSpaceForCells   int
	LeafNodeMaxCells        int
	LeafNodeLeftSplitCount  int
	LeafNodeRightSplitCount int
	InternalNodeHeaderSize  int
	InternalNodeCellSize    int
	InternalNodeMaxCells    int
}

// Constants returns the page-layout constants derived from PageSize and the
// fixed record shape, for diagnostics and tests to assert against instead
// of re-deriving the arithmetic.
func (p *Pager) Constants() Constants {
	return Constants{
		RowSize:                 RecordSize,
		CommonNodeHeaderSize:    commonHeaderSize,
		LeafNodeHeaderSize:      leafHeaderSize,
		LeafNodeCellSize:        leafCellSize,
		LeafNodeSpaceForCells:   leafSpace,
		LeafNodeMaxCells:        LeafNodeMaxCells,
		LeafNodeLeftSplitCount:  LeafNodeLeftSplitCount,
		LeafNodeRightSplitCount: LeafNodeRightSplitCount,
		InternalNodeHeaderSize:  internalHeaderSize,
		InternalNodeCellSize:    internalCellSize,
		InternalNodeMaxCells:    InternalNodeMaxCells,
	}
}

// DumpTree writes a human-readable, indented tree dump to w, mirroring
// db.c's print_tree: leaves show their cell count and keys, internal nodes
// show each child's subtree recursively followed by its own key, then the
// right child.
func (p *Pager) DumpTree(w io.Writer) error {
	scope := newPinScope(p.bt.pool)
	defer scope.unpinAll()
	return p.bt.dumpNode(scope, w, p.bt.root, 0)
}

func (bt *btree) dumpNode(scope *pinScope, w io.Writer, pageNum uint32, depth int) error {
	buf := scope.pin(pageNum)
	indent := func(extra int) string {
		s := ""
		for i := 0; i < depth+extra; i++ {
			s += "  "
		}
		return s
	}

	if getNodeType(buf) == NodeLeaf {
		n := int(leafNumCells(buf))
		if _, err := fmt.Fprintf(w, "%sleaf (size %d)\n", indent(0), n); err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			if _, err := fmt.Fprintf(w, "%s- %d\n", indent(1), leafCellKey(buf, i)); err != nil {
				return err
			}
		}
		return nil
	}

	numKeys := int(internalNumKeys(buf))
	if _, err := fmt.Fprintf(w, "%sinternal (size %d)\n", indent(0), numKeys); err != nil {
		return err
	}
	for i := 0; i < numKeys; i++ {
		child := internalCellChild(buf, i)
		if err := bt.dumpNode(scope, w, child, depth+1); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%skey %d\n", indent(1), internalCellKey(buf, i)); err != nil {
			return err
		}
	}
	return bt.dumpNode(scope, w, internalRightChild(buf), depth+1)
}
