package blob

import (
	"iter"

	"github.com/devicetree-go/fdt/errs"
	"github.com/devicetree-go/fdt/format"
	"github.com/devicetree-go/fdt/internal/token"
)

// noParent is the sentinel value of currentPropParentOff meaning "no node is
// currently open", the Go substitute for fdt-rs's Option<NonZeroUsize>.
const noParent = -1

// Iter is the primitive streaming cursor: a single offset into the structure
// block plus the minimal state (the most recently opened node's offset, and
// depth) needed to validate that a Prop token follows a node and to support
// the depth-bounded derived iterators below. It is cheap to copy by value.
type Iter struct {
	blob                   *Blob
	offset                 int
	currentPropParentOff   int
	currentPropParentDepth int
	depth                  int
}

// Item is one item produced by the streaming walk: either a Node or a Prop,
// tagged by Kind.
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

// NextItem decodes and returns the next node or property in document order.
// It returns ok=false, err=nil at the end of the structure block.
func (c *Iter) NextItem() (Item, bool, error) {
	for {
		oldOffset := c.offset
		tok, err := token.NextBounded(c.blob.data, &c.offset, c.blob.maxNodeNameLen())
		if err != nil {
			return Item{}, false, err
		}

		switch tok.Type {
		case format.TokenBeginNode:
			c.depth++
			c.currentPropParentOff = oldOffset
			c.currentPropParentDepth = c.depth - 1

			child := *c
			node := Node{cursor: child, rawName: tok.Name, parentOff: oldOffset, depth: c.depth - 1}

			return Item{Kind: format.ItemNode, Node: node}, true, nil

		case format.TokenProp:
			if c.currentPropParentOff == noParent {
				return Item{}, false, errs.ParseErrorf("property token at offset %d with no open node", oldOffset)
			}

			prop := Prop{
				blob:        c.blob,
				parentOff:   c.currentPropParentOff,
				parentDepth: c.currentPropParentDepth,
				tokenOff:    oldOffset,
				nameOff:     tok.PropNameOff,
				value:       tok.PropValue,
			}

			return Item{Kind: format.ItemProp, Prop: prop}, true, nil

		case format.TokenEndNode:
			c.depth--
			c.currentPropParentOff = noParent

			continue

		case format.TokenNop:
			continue

		case format.TokenEnd:
			return Item{}, false, nil

		default:
			return Item{}, false, errs.ParseErrorf("unhandled token type %v", tok.Type)
		}
	}
}

// NextNode skips over properties, returning the next Node in document order.
func (c *Iter) NextNode() (Node, bool, error) {
	for {
		item, ok, err := c.NextItem()
		if err != nil || !ok {
			return Node{}, ok, err
		}
		if n, isNode := item.AsNode(); isNode {
			return n, true, nil
		}
	}
}

// NextProp skips over nodes, returning the next Prop in document order.
func (c *Iter) NextProp() (Prop, bool, error) {
	for {
		item, ok, err := c.NextItem()
		if err != nil || !ok {
			return Prop{}, ok, err
		}
		if p, isProp := item.AsProp(); isProp {
			return p, true, nil
		}
	}
}

// NextNodeProp returns the very next item if it is a Prop, or ok=false if the
// next item is a Node (or the end of stream) rather than advancing past it
// -- the streaming equivalent of "does the current node have another
// property, or has its property list ended".
//
// Unlike NextNode/NextProp it does not skip: callers use it to enumerate
// exactly one node's direct properties before moving on to its children.
func (c *Iter) NextNodeProp() (Prop, bool, error) {
	save := *c

	item, ok, err := c.NextItem()
	if err != nil || !ok {
		return Prop{}, ok, err
	}
	if p, isProp := item.AsProp(); isProp {
		return p, true, nil
	}

	*c = save

	return Prop{}, false, nil
}

// NextCompatibleNode scans forward for the next node, at or after the
// cursor, whose "compatible" property's NUL-separated string list contains
// match. It walks the full list, not merely the first entry.
func (c *Iter) NextCompatibleNode(match string) (Node, bool, error) {
	for {
		n, ok, err := c.NextNode()
		if err != nil || !ok {
			return Node{}, ok, err
		}

		has, err := n.HasCompatible(match)
		if err != nil {
			return Node{}, false, err
		}
		if has {
			return n, true, nil
		}
	}
}

// Descendants returns a pull-style iterator over every item -- nodes and
// properties -- within node's subtree, not including node itself.
func (c *Iter) Descendants(baseDepth int) *subtreeIter {
	return &subtreeIter{cursor: *c, baseDepth: baseDepth}
}

type subtreeIter struct {
	cursor    Iter
	baseDepth int
	done      bool
}

func (s *subtreeIter) Next() (Item, bool, error) {
	if s.done {
		return Item{}, false, nil
	}

	save := s.cursor
	item, ok, err := s.cursor.NextItem()
	if err != nil || !ok {
		s.done = true
		if err == nil {
			s.cursor = save
		}

		return Item{}, ok, err
	}

	// A node is judged by its own depth: the EndNode closing the subtree is
	// consumed inside NextItem, so a following sibling's BeginNode leaves the
	// cursor depth where it was.
	depth := s.cursor.depth
	if n, isNode := item.AsNode(); isNode {
		depth = n.depth
	}
	if depth < s.baseDepth {
		// The item lies past the subtree; rewind so the cursor drain hands
		// back still yields it.
		s.done = true
		s.cursor = save

		return Item{}, false, nil
	}

	return item, true, nil
}

// drain runs s to completion, discarding items, and returns the cursor
// positioned immediately after the subtree -- used to resume a walk at the
// sibling level once a node's own subtree has been fully accounted for.
func (s *subtreeIter) drain() (Iter, error) {
	for {
		_, ok, err := s.Next()
		if err != nil {
			return Iter{}, err
		}
		if !ok {
			return s.cursor, nil
		}
	}
}

// seqFromPull adapts any (Item, bool, error)-returning stepper into an
// iter.Seq2[Item, error], the Go 1.23 range-over-func convenience form
// wrapping a pull iterator.
func seqFromPull(next func() (Item, bool, error)) iter.Seq2[Item, error] {
	return func(yield func(Item, error) bool) {
		for {
			item, ok, err := next()
			if err != nil {
				yield(Item{}, err)

				return
			}
			if !ok {
				return
			}
			if !yield(item, nil) {
				return
			}
		}
	}
}
