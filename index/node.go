package index

import (
	"iter"

	"github.com/devicetree-go/fdt/encoding"
)

// Node is an indexed handle to one device tree node: a tree pointer plus
// the byte offset of its record in the tree's arena. It is a small value
// type, cheap to copy.
type Node struct {
	tree *Tree
	off  int
}

// Name resolves and UTF-8 validates the node's unit name from the blob's
// structure block.
func (n Node) Name() (string, error) {
	off := nodeNameOff(n.tree.arena, n.off)
	length := nodeNameLen(n.tree.arena, n.off)
	raw := n.tree.blob.Bytes()[off : off+length]

	return encoding.ValidatedString(raw)
}

// NumProps returns the number of properties recorded directly on this node.
func (n Node) NumProps() int {
	return nodeNumProps(n.tree.arena, n.off)
}

// Parent returns n's parent node, or ok=false for the root.
func (n Node) Parent() (Node, bool) {
	p := nodeParent(n.tree.arena, n.off)
	if p == noRef {
		return Node{}, false
	}

	return Node{tree: n.tree, off: int(p)}, true
}

// IsParentOf reports whether n is other's parent.
func (n Node) IsParentOf(other Node) bool {
	p, ok := other.Parent()

	return ok && p.off == n.off && p.tree == n.tree
}

// IsSiblingOf reports whether n and other share a parent. Two nodes with no
// parent (both roots of different trees) are not considered siblings.
func (n Node) IsSiblingOf(other Node) bool {
	np, nok := n.Parent()
	op, ook := other.Parent()

	return nok && ook && np.off == op.off && np.tree == op.tree
}

// siblingChainIter walks a chain of nodes linked by "next" while each
// successive next remains a sibling (shares the chain's parent).
type siblingChainIter struct {
	tree *Tree
	cur  int32
}

func (it *siblingChainIter) Next() (Node, bool) {
	if it.cur == noRef {
		return Node{}, false
	}

	cur := Node{tree: it.tree, off: int(it.cur)}

	nxt := nodeNext(it.tree.arena, int(it.cur))
	if nxt != noRef && nodeParent(it.tree.arena, int(nxt)) == nodeParent(it.tree.arena, int(it.cur)) {
		it.cur = nxt
	} else {
		it.cur = noRef
	}

	return cur, true
}

// Children returns a pull iterator over n's direct child nodes, in document
// order, resolved in O(1) per step via the first_child/next threading built
// by Build -- no reparsing of n's subtree is needed.
func (n Node) Children() *siblingChainIter {
	return &siblingChainIter{tree: n.tree, cur: nodeFirstChild(n.tree.arena, n.off)}
}

// AllChildren is the range-over-func form of Children.
func (n Node) AllChildren() iter.Seq[Node] {
	return func(yield func(Node) bool) {
		it := n.Children()
		for {
			c, ok := it.Next()
			if !ok {
				return
			}
			if !yield(c) {
				return
			}
		}
	}
}

// Siblings returns a pull iterator over n's later sibling nodes (not
// including n itself).
func (n Node) Siblings() *siblingChainIter {
	nxt := nodeNext(n.tree.arena, n.off)
	if nxt != noRef && nodeParent(n.tree.arena, int(nxt)) != nodeParent(n.tree.arena, n.off) {
		nxt = noRef
	}

	return &siblingChainIter{tree: n.tree, cur: nxt}
}

// AllSiblings is the range-over-func form of Siblings.
func (n Node) AllSiblings() iter.Seq[Node] {
	return func(yield func(Node) bool) {
		it := n.Siblings()
		for {
			s, ok := it.Next()
			if !ok {
				return
			}
			if !yield(s) {
				return
			}
		}
	}
}

// Props returns a pull iterator over n's own direct properties, in document
// order.
func (n Node) Props() *nodePropIter {
	return &nodePropIter{tree: n.tree, nodeOff: n.off, off: propsBase(n.off), remaining: n.NumProps()}
}

type nodePropIter struct {
	tree      *Tree
	nodeOff   int
	off       int
	remaining int
}

func (it *nodePropIter) Next() (Prop, bool) {
	if it.remaining == 0 {
		return Prop{}, false
	}

	p := Prop{tree: it.tree, off: it.off, nodeOff: it.nodeOff}
	it.off += propRecordSize
	it.remaining--

	return p, true
}

// AllProps is the range-over-func form of Props.
func (n Node) AllProps() iter.Seq[Prop] {
	return func(yield func(Prop) bool) {
		it := n.Props()
		for {
			p, ok := it.Next()
			if !ok {
				return
			}
			if !yield(p) {
				return
			}
		}
	}
}

// Descendants returns a pull iterator over every item (node or property)
// within n's subtree, not including n itself as a Node item but including
// n's own properties, matching the streaming layer's Node.Descendants.
func (n Node) Descendants() *ItemIter {
	return &ItemIter{tree: n.tree, cur: int32(n.off), initial: true, bound: int32(n.off)}
}

// AllDescendants is the range-over-func form of Descendants.
func (n Node) AllDescendants() iter.Seq2[Item, error] {
	return seqFromPull(n.Descendants().Next)
}

// HasCompatible reports whether n has a "compatible" property whose
// NUL-separated string list contains match, walking the full list rather
// than only its first entry.
func (n Node) HasCompatible(match string) (bool, error) {
	it := n.Props()
	for {
		p, ok := it.Next()
		if !ok {
			return false, nil
		}

		name, err := p.Name()
		if err != nil {
			return false, err
		}
		if name != "compatible" {
			continue
		}

		for s := range p.IterStr() {
			if s == match {
				return true, nil
			}
		}

		return false, nil
	}
}

// CompatibleDescendants returns a pull iterator over nodes within n's
// subtree (not including n itself) whose "compatible" property contains
// match.
func (n Node) CompatibleDescendants(match string) *compatDescendantIter {
	return &compatDescendantIter{items: n.Descendants(), match: match}
}

type compatDescendantIter struct {
	items *ItemIter
	match string
}

func (it *compatDescendantIter) Next() (Node, bool, error) {
	for {
		item, ok := it.items.Next()
		if !ok {
			return Node{}, false, nil
		}

		n, isNode := item.AsNode()
		if !isNode {
			continue
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
