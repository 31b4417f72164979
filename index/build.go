package index

import (
	"github.com/devicetree-go/fdt/blob"
	"github.com/devicetree-go/fdt/errs"
)

// Build performs the one-shot, single-pass construction of an indexed Tree:
// it walks b once via the streaming layer and packs a node or prop record
// into arena for every item encountered, threading each node record to its
// parent, first child and next record by arena byte offset. arena must be
// at least as large as LayoutFor(b).Size; Build never grows or reallocates
// it.
//
// For a leaf, next is either its next sibling or, absent one, the next node
// in document order reachable by walking back up through ancestors --
// disambiguated at query time by comparing parents. The threading rewires a
// trailing next link on every new node the way a threaded binary tree does:
// the previously created record (wherever its own subtree bottomed out), the
// previous sibling, and the parent all get their next repointed at the node
// just added. A node with children but no later sibling is therefore left
// with next naming its own last child; DFS never follows that link (such a
// node continues at its first child) and the parent comparison rejects it
// as a sibling.
func Build(b blob.Blob, arena []byte) (*Tree, error) {
	it := (&b).Iter()

	pos := 0
	// stack[d] holds the arena offset of the currently open node at
	// depth d, so a node's parent is always stack[d-1] without the
	// streaming layer needing to surface explicit EndNode events: every
	// Node item already reports its own Depth.
	var stack []int32
	rootOff := noRef
	prevNewNodeOff := noRef

	for {
		item, ok, err := it.NextItem()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}

		if n, isNode := item.AsNode(); isNode {
			if pos+nodeRecordSize > len(arena) {
				return nil, errs.NotEnoughMemoryf("arena exhausted packing node record at depth %d", n.Depth())
			}

			d := n.Depth()
			stack = stack[:min(len(stack), d)]

			parent := noRef
			if d > 0 {
				parent = stack[d-1]
			}

			newOff := int32(pos)
			putNodeRecord(arena, pos, parent, noRef, noRef, n.NameOffset(), len(n.NameBytes()), 0)
			pos += nodeRecordSize

			if parent != noRef {
				// Capture parent's previously-last-child pointer before any
				// write this iteration touches it: parent and prevNewNodeOff
				// are the same record for a first child, and rewiring
				// prevNewNodeOff's next first would make this read see the
				// node being created right now instead of the real previous
				// sibling (or none).
				prevSibling := nodeNext(arena, int(parent))

				setNodeNext(arena, int(prevNewNodeOff), newOff)
				if prevSibling != noRef {
					setNodeNext(arena, int(prevSibling), newOff)
				}
				setNodeNext(arena, int(parent), newOff)
				if nodeFirstChild(arena, int(parent)) == noRef {
					setNodeFirstChild(arena, int(parent), newOff)
				}
			}

			stack = append(stack, newOff)
			prevNewNodeOff = newOff
			if rootOff == noRef {
				rootOff = newOff
			}

			continue
		}

		p, _ := item.AsProp()
		if len(stack) == 0 {
			return nil, errs.ParseErrorf("property record with no open node while building index")
		}
		curNodeOff := stack[len(stack)-1]

		if pos+propRecordSize > len(arena) {
			return nil, errs.NotEnoughMemoryf("arena exhausted packing prop record for node at offset %d", curNodeOff)
		}

		putPropRecord(arena, pos, p.NameOffset(), p.ValueOffset(), p.Length())
		pos += propRecordSize
		incNodeNumProps(arena, int(curNodeOff))
	}

	if rootOff == noRef {
		return nil, errs.ParseErrorf("structure block contains no root node")
	}

	return &Tree{blob: b, arena: arena[:pos], root: rootOff}, nil
}
