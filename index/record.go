package index

import "encoding/binary"

// noRef is the arena-offset sentinel meaning "no link", the offset-based
// substitute for a null pointer: offsets are always >= 0, so -1 can never
// collide with a real record position.
const noRef int32 = -1

// Record layouts. Both are 4-byte aligned and packed as fixed-width fields
// directly into the caller's arena -- there is no separate in-memory struct
// slice; every field is read and written through encoding/binary calls
// against the arena bytes, so the arena is the only allocation the index
// ever needs.
const (
	nodeRecordSize = 24 // parent,firstChild,next int32 + nameOff,nameLen,numProps uint32
	propRecordSize = 12 // nameOff,valueOff,valueLen uint32
	recordAlign    = 4
)

// Compile-time assertion that both record sizes are already aligned, so a
// node record followed immediately by N prop records (the "packed array"
// layout borrowed from fdt-rs's DTINode/DTIProp) never needs re-padding
// between the two record kinds.
const (
	_ = uint(-(nodeRecordSize % recordAlign)) // fails to compile if non-zero
	_ = uint(-(propRecordSize % recordAlign))
)

func putNodeRecord(arena []byte, off int, parent, firstChild, next int32, nameOff int, nameLen int, numProps uint32) {
	b := arena[off : off+nodeRecordSize]
	binary.BigEndian.PutUint32(b[0:4], uint32(parent))
	binary.BigEndian.PutUint32(b[4:8], uint32(firstChild))
	binary.BigEndian.PutUint32(b[8:12], uint32(next))
	binary.BigEndian.PutUint32(b[12:16], uint32(nameOff))
	binary.BigEndian.PutUint32(b[16:20], uint32(nameLen))
	binary.BigEndian.PutUint32(b[20:24], numProps)
}

func nodeParent(arena []byte, off int) int32 {
	return int32(binary.BigEndian.Uint32(arena[off : off+4]))
}

func setNodeParent(arena []byte, off int, v int32) {
	binary.BigEndian.PutUint32(arena[off:off+4], uint32(v))
}

func nodeFirstChild(arena []byte, off int) int32 {
	return int32(binary.BigEndian.Uint32(arena[off+4 : off+8]))
}

func setNodeFirstChild(arena []byte, off int, v int32) {
	binary.BigEndian.PutUint32(arena[off+4:off+8], uint32(v))
}

func nodeNext(arena []byte, off int) int32 {
	return int32(binary.BigEndian.Uint32(arena[off+8 : off+12]))
}

func setNodeNext(arena []byte, off int, v int32) {
	binary.BigEndian.PutUint32(arena[off+8:off+12], uint32(v))
}

func nodeNameOff(arena []byte, off int) int {
	return int(binary.BigEndian.Uint32(arena[off+12 : off+16]))
}

func nodeNameLen(arena []byte, off int) int {
	return int(binary.BigEndian.Uint32(arena[off+16 : off+20]))
}

func nodeNumProps(arena []byte, off int) int {
	return int(binary.BigEndian.Uint32(arena[off+20 : off+24]))
}

func incNodeNumProps(arena []byte, off int) {
	n := nodeNumProps(arena, off)
	binary.BigEndian.PutUint32(arena[off+20:off+24], uint32(n+1))
}

// propsBase returns the arena offset of the packed prop record array that
// immediately follows the node record at off.
func propsBase(off int) int {
	return off + nodeRecordSize
}

func putPropRecord(arena []byte, off int, nameOff uint32, valueOff, valueLen int) {
	b := arena[off : off+propRecordSize]
	binary.BigEndian.PutUint32(b[0:4], nameOff)
	binary.BigEndian.PutUint32(b[4:8], uint32(valueOff))
	binary.BigEndian.PutUint32(b[8:12], uint32(valueLen))
}

func propNameOff(arena []byte, off int) uint32 {
	return binary.BigEndian.Uint32(arena[off : off+4])
}

func propValueOff(arena []byte, off int) int {
	return int(binary.BigEndian.Uint32(arena[off+4 : off+8]))
}

func propValueLen(arena []byte, off int) int {
	return int(binary.BigEndian.Uint32(arena[off+8 : off+12]))
}
