package blob

import (
	"iter"

	"github.com/devicetree-go/fdt/encoding"
	"github.com/devicetree-go/fdt/errs"
	"github.com/devicetree-go/fdt/internal/bytesio"
)

// Prop is a streaming handle to one device tree property. Its value is a
// sub-slice of the blob's buffer; its name is resolved from the strings
// block lazily, only when Name is called.
type Prop struct {
	blob        *Blob
	parentOff   int
	parentDepth int
	tokenOff    int
	nameOff     uint32
	value       []byte
}

// Name resolves and UTF-8 validates the property's name from the strings
// block.
func (p Prop) Name() (string, error) {
	off := int(p.blob.header.OffDtStrings) + int(p.nameOff)
	if p.nameOff >= p.blob.header.SizeDtStrings {
		return "", errs.InvalidOffsetf("property name offset %d exceeds strings block size %d", p.nameOff, p.blob.header.SizeDtStrings)
	}

	raw, err := bytesio.ReadBString0(p.blob.data, off)
	if err != nil {
		return "", err
	}

	return encoding.ValidatedString(raw)
}

// NameOffset returns the property's raw name offset into the strings block,
// as stored in its Prop token -- the same representation the index builder
// packs into a prop record.
func (p Prop) NameOffset() uint32 {
	return p.nameOff
}

// ValueOffset returns the structure-block byte offset of the property's raw
// value, the anchor the index builder records a prop's value relative to.
func (p Prop) ValueOffset() int {
	return p.tokenOff + 12
}

// Length returns the byte length of the property's value.
func (p Prop) Length() int {
	return len(p.value)
}

// Raw returns the property's raw value, a sub-slice of the blob's buffer.
func (p Prop) Raw() []byte {
	return p.value
}

// U32 decodes the value as a single big-endian 32-bit cell.
func (p Prop) U32() (uint32, error) { return encoding.U32(p.value) }

// U64 decodes the value as a 64-bit cell pair.
func (p Prop) U64() (uint64, error) { return encoding.U64(p.value) }

// Phandle decodes the value as an opaque <phandle> cell.
func (p Prop) Phandle() (uint32, error) { return encoding.Phandle(p.value) }

// Str decodes the value as a single NUL-terminated string.
func (p Prop) Str() (string, error) { return encoding.Str(p.value) }

// IterStr returns a restartable sequence over the value's NUL-separated
// string list. An empty value yields zero strings rather than an error.
func (p Prop) IterStr() iter.Seq[string] { return encoding.StringSeq(p.value) }

// Node reconstructs the property's owning node by reparsing the structure
// block from the node's BeginNode offset. The returned Node's Depth matches
// its true position in the tree.
func (p Prop) Node() (Node, error) {
	it := Iter{blob: p.blob, offset: p.parentOff, currentPropParentOff: noParent}

	n, ok, err := it.NextNode()
	if err != nil {
		return Node{}, err
	}
	if !ok {
		return Node{}, errs.ParseErrorf("property's parent node at offset %d could not be reparsed", p.parentOff)
	}

	n.depth += p.parentDepth
	n.cursor.depth += p.parentDepth

	return n, nil
}
