// Package fdtbuild builds small, hand-checkable FDT blobs for use in tests.
// It is not part of the public API: tests construct a tree of known shape
// with it and assert the traversal/count/compatible-match behavior the
// parser packages predict for that shape, rather than depending on a single
// checked-in binary fixture.
package fdtbuild

import (
	"encoding/binary"

	"github.com/devicetree-go/fdt/format"
)

// Builder assembles a structure block and strings block token-by-token,
// then emits a complete blob via Build.
type Builder struct {
	structure []byte
	strings   []byte
	stringOff map[string]uint32
	reserves  []byte
}

// New creates an empty Builder.
func New() *Builder {
	return &Builder{stringOff: make(map[string]uint32)}
}

// AddReserveEntry appends one memory reservation block entry.
func (b *Builder) AddReserveEntry(address, size uint64) *Builder {
	entry := make([]byte, 16)
	binary.BigEndian.PutUint64(entry[0:8], address)
	binary.BigEndian.PutUint64(entry[8:16], size)
	b.reserves = append(b.reserves, entry...)

	return b
}

// BeginNode emits FDT_BEGIN_NODE for the given unit name.
func (b *Builder) BeginNode(name string) *Builder {
	b.appendU32(uint32(format.TokenBeginNode))
	b.appendString(name)

	return b
}

// EndNode emits FDT_END_NODE.
func (b *Builder) EndNode() *Builder {
	b.appendU32(uint32(format.TokenEndNode))

	return b
}

// Nop emits an FDT_NOP token.
func (b *Builder) Nop() *Builder {
	b.appendU32(uint32(format.TokenNop))

	return b
}

// PropEmpty adds a zero-length property.
func (b *Builder) PropEmpty(name string) *Builder {
	return b.prop(name, nil)
}

// PropString adds a single NUL-terminated string property.
func (b *Builder) PropString(name, value string) *Builder {
	data := append([]byte(value), 0)
	return b.prop(name, data)
}

// PropStringList adds a property holding a NUL-separated list of strings.
func (b *Builder) PropStringList(name string, values []string) *Builder {
	var data []byte
	for _, v := range values {
		data = append(data, v...)
		data = append(data, 0)
	}

	return b.prop(name, data)
}

// PropU32 adds a single big-endian uint32 property (e.g. #address-cells).
func (b *Builder) PropU32(name string, value uint32) *Builder {
	data := make([]byte, 4)
	binary.BigEndian.PutUint32(data, value)

	return b.prop(name, data)
}

// PropU32Array adds an array-of-uint32 property.
func (b *Builder) PropU32Array(name string, values []uint32) *Builder {
	data := make([]byte, len(values)*4)
	for i, v := range values {
		binary.BigEndian.PutUint32(data[i*4:], v)
	}

	return b.prop(name, data)
}

// PropU64 adds a single big-endian uint64 property (e.g. a reg address).
func (b *Builder) PropU64(name string, value uint64) *Builder {
	data := make([]byte, 8)
	binary.BigEndian.PutUint64(data, value)

	return b.prop(name, data)
}

// PropBytes adds a raw-bytes property verbatim.
func (b *Builder) PropBytes(name string, data []byte) *Builder {
	return b.prop(name, data)
}

func (b *Builder) prop(name string, data []byte) *Builder {
	b.appendU32(uint32(format.TokenProp))
	b.appendU32(uint32(len(data)))
	b.appendU32(b.addString(name))
	b.appendBytes(data)

	return b
}

// Build finalizes the structure and strings blocks and assembles a complete
// blob with a valid header and the reserve-map entries added via
// AddReserveEntry, terminated by the required zero entry.
func (b *Builder) Build() []byte {
	b.appendU32(uint32(format.TokenEnd))

	headerSize := uint32(format.HeaderSize)
	rsvmapOff := headerSize
	rsvmapSize := uint32(len(b.reserves) + 16) // + terminator entry
	structOff := rsvmapOff + rsvmapSize
	structSize := uint32(len(b.structure))
	stringsOff := structOff + structSize
	stringsSize := uint32(len(b.strings))
	totalSize := stringsOff + stringsSize

	header := make([]byte, headerSize)
	binary.BigEndian.PutUint32(header[0:], format.Magic)
	binary.BigEndian.PutUint32(header[4:], totalSize)
	binary.BigEndian.PutUint32(header[8:], structOff)
	binary.BigEndian.PutUint32(header[12:], stringsOff)
	binary.BigEndian.PutUint32(header[16:], rsvmapOff)
	binary.BigEndian.PutUint32(header[20:], 17)
	binary.BigEndian.PutUint32(header[24:], format.CompatibleVersion)
	binary.BigEndian.PutUint32(header[28:], 0)
	binary.BigEndian.PutUint32(header[32:], stringsSize)
	binary.BigEndian.PutUint32(header[36:], structSize)

	blob := make([]byte, totalSize)
	copy(blob, header)
	copy(blob[rsvmapOff:], b.reserves) // terminator entry is the trailing zeros
	copy(blob[structOff:], b.structure)
	copy(blob[stringsOff:], b.strings)

	return blob
}

func (b *Builder) appendU32(v uint32) {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, v)
	b.structure = append(b.structure, buf...)
}

func (b *Builder) appendString(s string) {
	data := append([]byte(s), 0)
	b.structure = append(b.structure, data...)
	for len(b.structure)%format.StructAlign != 0 {
		b.structure = append(b.structure, 0)
	}
}

func (b *Builder) appendBytes(data []byte) {
	b.structure = append(b.structure, data...)
	for len(b.structure)%format.StructAlign != 0 {
		b.structure = append(b.structure, 0)
	}
}

func (b *Builder) addString(name string) uint32 {
	if off, ok := b.stringOff[name]; ok {
		return off
	}

	off := uint32(len(b.strings))
	b.stringOff[name] = off
	b.strings = append(b.strings, name...)
	b.strings = append(b.strings, 0)

	return off
}
