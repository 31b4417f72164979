package index

import (
	"iter"

	"github.com/devicetree-go/fdt/encoding"
	"github.com/devicetree-go/fdt/errs"
	"github.com/devicetree-go/fdt/internal/bytesio"
)

// Prop is an indexed handle to one device tree property: a tree pointer,
// the byte offset of its record in the tree's arena, and its owning node's
// offset (known for free at every construction site, so Node never needs a
// backward arena scan to find it).
type Prop struct {
	tree    *Tree
	off     int
	nodeOff int
}

// Name resolves and UTF-8 validates the property's name from the blob's
// strings block.
func (p Prop) Name() (string, error) {
	b := p.tree.blob
	nameOff := propNameOff(p.tree.arena, p.off)
	if nameOff >= b.SizeDtStrings() {
		return "", errs.InvalidOffsetf("property name offset %d exceeds strings block size %d", nameOff, b.SizeDtStrings())
	}

	raw, err := bytesio.ReadBString0(b.Bytes(), int(b.OffDtStrings())+int(nameOff))
	if err != nil {
		return "", err
	}

	return encoding.ValidatedString(raw)
}

// Raw returns the property's raw value, a sub-slice of the blob's buffer.
func (p Prop) Raw() []byte {
	off := propValueOff(p.tree.arena, p.off)
	length := propValueLen(p.tree.arena, p.off)

	return p.tree.blob.Bytes()[off : off+length]
}

// Length returns the byte length of the property's value.
func (p Prop) Length() int {
	return propValueLen(p.tree.arena, p.off)
}

// U32 decodes the value as a single big-endian 32-bit cell.
func (p Prop) U32() (uint32, error) { return encoding.U32(p.Raw()) }

// U64 decodes the value as a 64-bit cell pair.
func (p Prop) U64() (uint64, error) { return encoding.U64(p.Raw()) }

// Phandle decodes the value as an opaque <phandle> cell.
func (p Prop) Phandle() (uint32, error) { return encoding.Phandle(p.Raw()) }

// Str decodes the value as a single NUL-terminated string.
func (p Prop) Str() (string, error) { return encoding.Str(p.Raw()) }

// IterStr returns a restartable sequence over the value's NUL-separated
// string list. An empty value yields zero strings rather than an error.
func (p Prop) IterStr() iter.Seq[string] { return encoding.StringSeq(p.Raw()) }

// Node returns the property's owning node, an O(1) lookup since the owner
// is recorded alongside the property the moment it is produced.
func (p Prop) Node() Node {
	return Node{tree: p.tree, off: p.nodeOff}
}
