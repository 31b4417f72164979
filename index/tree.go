// Package index implements the indexed layer: a single-pass builder packs
// every node and property into a caller-supplied arena, threading node
// records together by byte offset so that, once built, traversal is O(1)
// per step with no further parsing -- including parent and sibling lookups
// the streaming layer cannot do without walking forward from the root.
package index

import (
	"iter"

	"github.com/devicetree-go/fdt/blob"
	"github.com/devicetree-go/fdt/format"
)

// Tree is a built index: the original blob plus the arena Build packed
// records into. It is immutable and safe for concurrent use by multiple
// readers once constructed.
type Tree struct {
	blob  blob.Blob
	arena []byte
	root  int32
}

// Root returns the tree's root node.
func (t *Tree) Root() Node {
	return Node{tree: t, off: int(t.root)}
}

// Fdt returns the underlying blob the index was built from.
func (t *Tree) Fdt() blob.Blob {
	return t.blob
}

// Buf returns the arena backing this index's records.
func (t *Tree) Buf() []byte {
	return t.arena
}

// Item is one item produced by an indexed walk: either a Node or a Prop.
type Item struct {
	Kind format.ItemKind
	Node Node
	Prop Prop
}

// AsNode returns the item's Node and true if Kind is ItemNode.
func (it Item) AsNode() (Node, bool) {
	if it.Kind == format.ItemNode {
		return it.Node, true
	}

	return Node{}, false
}

// AsProp returns the item's Prop and true if Kind is ItemProp.
func (it Item) AsProp() (Prop, bool) {
	if it.Kind == format.ItemProp {
		return it.Prop, true
	}

	return Prop{}, false
}

// nextDFS returns the arena offset of the next node in document order after
// off: its first child if it has one, otherwise its threaded next pointer.
func nextDFS(arena []byte, off int32) int32 {
	if fc := nodeFirstChild(arena, int(off)); fc != noRef {
		return fc
	}

	return nodeNext(arena, int(off))
}

// isDescendantOf reports whether off has ancestor among its chain of
// parents (or is itself unbounded when ancestor is noRef).
func isDescendantOf(arena []byte, off, ancestor int32) bool {
	if ancestor == noRef {
		return true
	}
	for cur := off; cur != noRef; cur = nodeParent(arena, int(cur)) {
		if cur == ancestor {
			return true
		}
	}

	return false
}

// ItemIter is the generic indexed walk used by both whole-tree iteration
// (Tree.Items) and node-scoped Descendants: it enumerates a starting node's
// own properties (only, if initial is true) and then repeatedly advances by
// nextDFS, stopping once it leaves the bound node's subtree (bound == noRef
// means unbounded, the whole tree).
type ItemIter struct {
	tree    *Tree
	cur     int32
	propIdx int
	initial bool
	bound   int32
}

// Next returns the next item, or ok=false once the walk is exhausted.
func (it *ItemIter) Next() (Item, bool) {
	if it.cur == noRef {
		return Item{}, false
	}

	if !it.initial {
		it.initial = true

		return Item{Kind: format.ItemNode, Node: Node{tree: it.tree, off: int(it.cur)}}, true
	}

	arena := it.tree.arena
	if it.propIdx < nodeNumProps(arena, int(it.cur)) {
		p := Prop{tree: it.tree, off: propsBase(int(it.cur)) + it.propIdx*propRecordSize, nodeOff: int(it.cur)}
		it.propIdx++

		return Item{Kind: format.ItemProp, Prop: p}, true
	}

	it.propIdx = 0
	nxt := nextDFS(arena, it.cur)
	if nxt == noRef || !isDescendantOf(arena, nxt, it.bound) {
		it.cur = noRef

		return Item{}, false
	}
	it.cur = nxt

	return Item{Kind: format.ItemNode, Node: Node{tree: it.tree, off: int(nxt)}}, true
}

// seqFromPull adapts an ItemIter-style stepper into an iter.Seq2.
func seqFromPull(next func() (Item, bool)) iter.Seq2[Item, error] {
	return func(yield func(Item, error) bool) {
		for {
			item, ok := next()
			if !ok {
				return
			}
			if !yield(item, nil) {
				return
			}
		}
	}
}

// Items returns a pull iterator over every item (node or property) in the
// whole tree, in document order, starting with the root.
func (t *Tree) Items() *ItemIter {
	return &ItemIter{tree: t, cur: t.root, bound: noRef}
}

// AllItems is the range-over-func form of Items.
func (t *Tree) AllItems() iter.Seq2[Item, error] {
	return seqFromPull(t.Items().Next)
}

// Nodes returns a pull iterator over every node in the tree, in document
// order.
func (t *Tree) Nodes() *nodeFilterIter {
	return &nodeFilterIter{items: t.Items()}
}

type nodeFilterIter struct{ items *ItemIter }

func (it *nodeFilterIter) Next() (Node, bool) {
	for {
		item, ok := it.items.Next()
		if !ok {
			return Node{}, false
		}
		if n, isNode := item.AsNode(); isNode {
			return n, true
		}
	}
}

// AllNodes is the range-over-func form of Nodes.
func (t *Tree) AllNodes() iter.Seq[Node] {
	return func(yield func(Node) bool) {
		it := t.Nodes()
		for {
			n, ok := it.Next()
			if !ok {
				return
			}
			if !yield(n) {
				return
			}
		}
	}
}

// Props returns a pull iterator over every property in the tree, in
// document order.
func (t *Tree) Props() *propFilterIter {
	return &propFilterIter{items: t.Items()}
}

type propFilterIter struct{ items *ItemIter }

func (it *propFilterIter) Next() (Prop, bool) {
	for {
		item, ok := it.items.Next()
		if !ok {
			return Prop{}, false
		}
		if p, isProp := item.AsProp(); isProp {
			return p, true
		}
	}
}

// CompatibleNodes returns a pull iterator over every node in the tree whose
// "compatible" property's string list contains match.
func (t *Tree) CompatibleNodes(match string) *compatFilterIter {
	return &compatFilterIter{nodes: t.Nodes(), match: match}
}

type compatFilterIter struct {
	nodes *nodeFilterIter
	match string
}

func (it *compatFilterIter) Next() (Node, bool, error) {
	for {
		n, ok := it.nodes.Next()
		if !ok {
			return Node{}, false, nil
		}

		has, err := n.HasCompatible(it.match)
		if err != nil {
			return Node{}, false, err
		}
		if has {
			return n, true, nil
		}
	}
}

// AllCompatibleNodes is the range-over-func form of CompatibleNodes.
func (t *Tree) AllCompatibleNodes(match string) iter.Seq2[Node, error] {
	return func(yield func(Node, error) bool) {
		it := t.CompatibleNodes(match)
		for {
			n, ok, err := it.Next()
			if err != nil {
				yield(Node{}, err)

				return
			}
			if !ok {
				return
			}
			if !yield(n, nil) {
				return
			}
		}
	}
}

