package blob

import (
	"iter"

	"github.com/devicetree-go/fdt/encoding"
)

// Node is a streaming handle to one device tree node. It is a small value
// type borrowing a sub-slice of the blob's buffer for its name and holding a
// cloned Iter cursor positioned just after the name, ready to decode the
// node's properties and children.
type Node struct {
	cursor    Iter
	rawName   []byte
	parentOff int
	depth     int
}

// Name returns the node's UTF-8 validated unit name. The root node's name is
// the empty string.
func (n Node) Name() (string, error) {
	return encoding.ValidatedString(n.rawName)
}

// Depth returns the node's nesting level: 0 for the root, 1 for its direct
// children, and so on.
func (n Node) Depth() int {
	return n.depth
}

// TokenOffset returns the structure-block byte offset of the node's own
// BeginNode token, the anchor Prop.Node reparses from and the offset the
// index builder records a node's name relative to.
func (n Node) TokenOffset() int {
	return n.parentOff
}

// NameOffset returns the structure-block byte offset of the node's raw name
// bytes (immediately following its 4-byte BeginNode token code).
func (n Node) NameOffset() int {
	return n.parentOff + 4
}

// NameBytes returns the node's raw unit name, a zero-copy sub-slice of the
// blob's buffer, without UTF-8 validating or allocating.
func (n Node) NameBytes() []byte {
	return n.rawName
}

// Props returns a pull iterator over the node's own direct properties, in
// document order, not including any descendant's properties.
func (n Node) Props() *propIter {
	return &propIter{cursor: n.cursor}
}

// AllProps is the range-over-func form of Props.
func (n Node) AllProps() iter.Seq2[Prop, error] {
	return func(yield func(Prop, error) bool) {
		it := n.Props()
		for {
			p, ok, err := it.Next()
			if err != nil {
				yield(Prop{}, err)

				return
			}
			if !ok {
				return
			}
			if !yield(p, nil) {
				return
			}
		}
	}
}

type propIter struct {
	cursor Iter
}

func (it *propIter) Next() (Prop, bool, error) {
	return it.cursor.NextNodeProp()
}

// Descendants returns a pull iterator over every item (node or property)
// within n's subtree, not including n itself.
func (n Node) Descendants() *subtreeIter {
	return &subtreeIter{cursor: n.cursor, baseDepth: n.depth + 1}
}

// AllDescendants is the range-over-func form of Descendants.
func (n Node) AllDescendants() iter.Seq2[Item, error] {
	return seqFromPull(n.Descendants().Next)
}

// Children returns a pull iterator over n's direct child nodes only,
// skipping grandchildren and n's own properties.
func (n Node) Children() *childIter {
	return &childIter{sub: n.Descendants(), wantDepth: n.depth + 1}
}

// AllChildren is the range-over-func form of Children.
func (n Node) AllChildren() iter.Seq[Node] {
	return func(yield func(Node) bool) {
		it := n.Children()
		for {
			c, ok, err := it.Next()
			if err != nil || !ok {
				return
			}
			if !yield(c) {
				return
			}
		}
	}
}

type childIter struct {
	sub       *subtreeIter
	wantDepth int
}

func (it *childIter) Next() (Node, bool, error) {
	for {
		item, ok, err := it.sub.Next()
		if err != nil || !ok {
			return Node{}, ok, err
		}
		if c, isNode := item.AsNode(); isNode && c.Depth() == it.wantDepth {
			return c, true, nil
		}
	}
}

// afterSubtree drains n's own subtree and returns the cursor positioned
// immediately past n's closing EndNode token, ready to walk n's siblings.
func (n Node) afterSubtree() (Iter, error) {
	return n.Descendants().drain()
}

// SiblingsAndDescendants returns a pull iterator over every item following
// n's subtree within the same parent: n's later siblings and all of their
// descendants, stopping when the parent's own node ends. Calling it on the
// root node yields nothing, since the root has no parent and no siblings.
func (n Node) SiblingsAndDescendants() (*subtreeIter, error) {
	after, err := n.afterSubtree()
	if err != nil {
		return nil, err
	}

	return &subtreeIter{cursor: after, baseDepth: n.depth}, nil
}

// Siblings returns a pull iterator over n's later sibling nodes only (not
// their descendants).
func (n Node) Siblings() (*childIter, error) {
	sub, err := n.SiblingsAndDescendants()
	if err != nil {
		return nil, err
	}

	return &childIter{sub: sub, wantDepth: n.depth}, nil
}

// AllSiblings is the range-over-func form of Siblings. Since Siblings can
// fail while positioning the cursor past n's own subtree, a pre-existing
// error there surfaces as an empty sequence; callers needing the error
// should call Siblings directly.
func (n Node) AllSiblings() iter.Seq[Node] {
	return func(yield func(Node) bool) {
		it, err := n.Siblings()
		if err != nil {
			return
		}
		for {
			s, ok, err := it.Next()
			if err != nil || !ok {
				return
			}
			if !yield(s) {
				return
			}
		}
	}
}

// HasCompatible reports whether n has a "compatible" property whose
// NUL-separated string list contains match, walking the full list rather
// than only its first entry.
func (n Node) HasCompatible(match string) (bool, error) {
	it := n.Props()
	for {
		p, ok, err := it.Next()
		if err != nil {
			return false, err
		}
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

		for s := range encoding.StringSeq(p.value) {
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
func (n Node) CompatibleDescendants(match string) *compatIter {
	return &compatIter{cursor: n.cursor, baseDepth: n.depth + 1, match: match}
}

type compatIter struct {
	cursor    Iter
	baseDepth int
	match     string
}

func (it *compatIter) Next() (Node, bool, error) {
	sub := &subtreeIter{cursor: it.cursor, baseDepth: it.baseDepth}
	for {
		item, ok, err := sub.Next()
		if err != nil || !ok {
			it.cursor = sub.cursor

			return Node{}, ok, err
		}

		n, isNode := item.AsNode()
		if !isNode {
			continue
		}

		has, err := n.HasCompatible(it.match)
		if err != nil {
			it.cursor = sub.cursor

			return Node{}, false, err
		}
		if has {
			it.cursor = sub.cursor

			return n, true, nil
		}
	}
}
