// Package blob implements the streaming layer: a single-pass, allocation-free
// walk over an immutable FDT buffer driven by internal/token. Every handle
// (Node, Prop) is a small, cheaply copied value that borrows slices of the
// caller's buffer; nothing is copied out of it.
package blob

import (
	"iter"

	"github.com/devicetree-go/fdt/errs"
	"github.com/devicetree-go/fdt/format"
	"github.com/devicetree-go/fdt/internal/hash"
	"github.com/devicetree-go/fdt/section"
)

const maxStrictNodeNameLen = format.MaxNodeNameLen - 1

// Blob wraps a parsed, validated FDT buffer. It is immutable and safe for
// concurrent use by multiple readers once constructed.
type Blob struct {
	data   []byte
	header section.Header
	cfg    config
}

// Open validates data's header (section.ParseHeader) and returns a Blob
// borrowing it. data must hold exactly the blob: section.ParseHeader already
// rejects a totalsize larger than len(data), and Open itself rejects the
// opposite case, a buffer larger than totalsize, since a caller handing over
// trailing bytes beyond the blob is as much a sizing error as handing over
// too few.
func Open(data []byte, opts ...Option) (Blob, error) {
	cfg := defaultConfig()
	if err := applyOptions(&cfg, opts); err != nil {
		return Blob{}, err
	}

	h, err := section.ParseHeader(data)
	if err != nil {
		return Blob{}, err
	}

	if len(data) != int(h.TotalSize) {
		return Blob{}, errs.ParseErrorf("buffer length %d does not match totalsize %d", len(data), h.TotalSize)
	}

	return Blob{data: data, header: h, cfg: cfg}, nil
}

func (b Blob) maxNodeNameLen() int {
	if b.cfg.strictNodeNames {
		return maxStrictNodeNameLen
	}
	if b.cfg.maxNodeNameLen > 0 {
		return b.cfg.maxNodeNameLen
	}

	return len(b.data)
}

// Bytes returns the raw blob buffer this Blob was opened from.
func (b Blob) Bytes() []byte { return b.data }

// Header returns the parsed fixed header.
func (b Blob) Header() section.Header { return b.header }

// TotalSize returns the header's totalsize field.
func (b Blob) TotalSize() uint32 { return b.header.TotalSize }

// Version returns the header's version field.
func (b Blob) Version() uint32 { return b.header.Version }

// LastCompVersion returns the header's last_comp_version field.
func (b Blob) LastCompVersion() uint32 { return b.header.LastCompVersion }

// BootCpuidPhys returns the header's boot_cpuid_phys field.
func (b Blob) BootCpuidPhys() uint32 { return b.header.BootCpuidPhys }

// OffDtStruct returns the byte offset of the structure block.
func (b Blob) OffDtStruct() uint32 { return b.header.OffDtStruct }

// OffDtStrings returns the byte offset of the strings block.
func (b Blob) OffDtStrings() uint32 { return b.header.OffDtStrings }

// OffMemRsvmap returns the byte offset of the memory reservation block.
func (b Blob) OffMemRsvmap() uint32 { return b.header.OffMemRsvmap }

// SizeDtStruct returns the byte size of the structure block.
func (b Blob) SizeDtStruct() uint32 { return b.header.SizeDtStruct }

// SizeDtStrings returns the byte size of the strings block.
func (b Blob) SizeDtStrings() uint32 { return b.header.SizeDtStrings }

// Fingerprint returns the xxHash64 of the raw blob bytes. It is a pure
// function of the buffer's content, useful as a cache key for callers that
// keep an index built from this blob around across repeated parses of what
// may be the same tree (e.g. a VM manager handed the same DTB per boot).
func (b Blob) Fingerprint() uint64 {
	return hash.ID(string(b.data))
}

// Iter returns a primitive streaming cursor positioned at the start of the
// structure block, ready to decode the root node.
func (b *Blob) Iter() *Iter {
	return &Iter{
		blob:                  b,
		offset:                int(b.header.OffDtStruct),
		currentPropParentOff: -1,
		depth:                 0,
	}
}

// Root returns the tree's root node: the first, and only top-level, node in
// the structure block.
func (b *Blob) Root() (Node, error) {
	it := b.Iter()
	n, ok, err := it.NextNode()
	if err != nil {
		return Node{}, err
	}
	if !ok {
		return Node{}, errs.ParseErrorf("structure block contains no root node")
	}

	return n, nil
}

// Nodes returns a pull iterator over every node in the tree, in document
// (DFS pre-)order, starting with the root.
func (b *Blob) Nodes() *nodeIter {
	return &nodeIter{cursor: b.Iter()}
}

type nodeIter struct{ cursor *Iter }

func (it *nodeIter) Next() (Node, bool, error) { return it.cursor.NextNode() }

// AllNodes is the range-over-func form of Nodes.
func (b *Blob) AllNodes() iter.Seq[Node] {
	return func(yield func(Node) bool) {
		it := b.Nodes()
		for {
			n, ok, err := it.Next()
			if err != nil || !ok {
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
func (b *Blob) Props() *blobPropIter {
	return &blobPropIter{cursor: b.Iter()}
}

type blobPropIter struct{ cursor *Iter }

func (it *blobPropIter) Next() (Prop, bool, error) { return it.cursor.NextProp() }

// CompatibleNodes returns a pull iterator over every node in the tree whose
// "compatible" property's string list contains match.
func (b *Blob) CompatibleNodes(match string) *compatibleIter {
	return &compatibleIter{cursor: b.Iter(), match: match}
}

type compatibleIter struct {
	cursor *Iter
	match  string
}

func (it *compatibleIter) Next() (Node, bool, error) {
	return it.cursor.NextCompatibleNode(it.match)
}

// AllCompatibleNodes is the range-over-func form of CompatibleNodes.
func (b *Blob) AllCompatibleNodes(match string) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		it := b.CompatibleNodes(match)
		for {
			n, ok, err := it.Next()
			if err != nil || !ok {
				return
			}
			if !yield(n) {
				return
			}
		}
	}
}

// ReservedEntries returns a pull-style iterator over the memory reservation
// block: successive section.ReserveEntry values until the terminating zero
// entry, the end of the blob, or the header's TotalSize boundary.
func (b Blob) ReservedEntries() *ReserveIter {
	return &ReserveIter{data: b.data, offset: int(b.header.OffMemRsvmap), limit: int(b.header.TotalSize)}
}

// AllReservedEntries is the range-over-func form of ReservedEntries.
func (b Blob) AllReservedEntries() iter.Seq[section.ReserveEntry] {
	return func(yield func(section.ReserveEntry) bool) {
		it := b.ReservedEntries()
		for {
			e, ok, err := it.Next()
			if err != nil || !ok {
				return
			}
			if !yield(e) {
				return
			}
		}
	}
}

// ReserveIter is the pull-style Reserve-Map Iterator (component 4.9).
type ReserveIter struct {
	data   []byte
	offset int
	limit  int
}

// Next returns the next reservation entry, or ok=false once the terminator,
// the TotalSize boundary, or the buffer end is reached.
func (it *ReserveIter) Next() (section.ReserveEntry, bool, error) {
	if it.offset+16 > it.limit || it.offset+16 > len(it.data) {
		return section.ReserveEntry{}, false, nil
	}

	e, err := section.ParseReserveEntry(it.data, it.offset)
	if err != nil {
		return section.ReserveEntry{}, false, err
	}
	if e.IsTerminator() {
		return section.ReserveEntry{}, false, nil
	}

	it.offset += 16

	return e, true, nil
}
