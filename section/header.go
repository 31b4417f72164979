// Package section defines the fixed-size binary structures of the FDT wire
// format: the 40-byte header and the memory-reservation block entries. It
// handles their validation and big-endian decoding, leaving the variable
// length structure and strings blocks to internal/token and blob.
package section

import (
	"fmt"
	"unsafe"

	"github.com/devicetree-go/fdt/errs"
	"github.com/devicetree-go/fdt/format"
	"github.com/devicetree-go/fdt/internal/bytesio"
)

// Header is the fixed 40-byte header that opens every FDT blob (Devicetree
// Specification v0.3 §5.2).
type Header struct {
	Magic             uint32 // byte offset 0-3
	TotalSize         uint32 // byte offset 4-7
	OffDtStruct       uint32 // byte offset 8-11
	OffDtStrings      uint32 // byte offset 12-15
	OffMemRsvmap      uint32 // byte offset 16-19
	Version           uint32 // byte offset 20-23
	LastCompVersion   uint32 // byte offset 24-27
	BootCpuidPhys     uint32 // byte offset 28-31
	SizeDtStrings     uint32 // byte offset 32-35
	SizeDtStruct      uint32 // byte offset 36-39
}

// ReadTotalSize reads only the first 8 bytes of a blob (magic + totalsize),
// validating the magic number, so a caller can size a buffer before parsing
// the rest of the header.
func ReadTotalSize(prefix []byte) (uint32, error) {
	if len(prefix) < 8 {
		return 0, errs.InvalidOffsetf("header prefix too short: need 8 bytes, got %d", len(prefix))
	}

	magic := bytesio.UncheckedReadBEU32(prefix, 0)
	if magic != format.Magic {
		return 0, fmt.Errorf("%w: got %#08x, want %#08x", errs.ErrInvalidMagic, magic, format.Magic)
	}

	return bytesio.UncheckedReadBEU32(prefix, 4), nil
}

// ParseHeader parses and validates the 40-byte header at the start of data.
//
// Validation, in order (spec §4.2):
//  1. data is at least format.HeaderSize bytes and 32-bit aligned.
//  2. the magic number matches format.Magic.
//  3. totalsize does not exceed len(data).
//  4. off_mem_rsvmap and off_dt_struct are both 32-bit aligned.
//  5. last_comp_version is no newer than format.CompatibleVersion.
func ParseHeader(data []byte) (Header, error) {
	if len(data) < format.HeaderSize {
		return Header{}, errs.InvalidOffsetf("buffer too short for header: need %d bytes, got %d", format.HeaderSize, len(data))
	}

	if len(data) > 0 && uintptr(unsafe.Pointer(&data[0]))%format.StructAlign != 0 {
		return Header{}, errs.InvalidParameter("buffer start address is not 32-bit aligned")
	}

	var h Header

	magic := bytesio.UncheckedReadBEU32(data, 0)
	if magic != format.Magic {
		return Header{}, fmt.Errorf("%w: got %#08x, want %#08x", errs.ErrInvalidMagic, magic, format.Magic)
	}
	h.Magic = magic

	h.TotalSize = bytesio.UncheckedReadBEU32(data, 4)
	h.OffDtStruct = bytesio.UncheckedReadBEU32(data, 8)
	h.OffDtStrings = bytesio.UncheckedReadBEU32(data, 12)
	h.OffMemRsvmap = bytesio.UncheckedReadBEU32(data, 16)
	h.Version = bytesio.UncheckedReadBEU32(data, 20)
	h.LastCompVersion = bytesio.UncheckedReadBEU32(data, 24)
	h.BootCpuidPhys = bytesio.UncheckedReadBEU32(data, 28)
	h.SizeDtStrings = bytesio.UncheckedReadBEU32(data, 32)
	h.SizeDtStruct = bytesio.UncheckedReadBEU32(data, 36)

	if uint64(h.TotalSize) > uint64(len(data)) {
		return Header{}, errs.InvalidOffsetf("totalsize %d exceeds buffer length %d", h.TotalSize, len(data))
	}

	if h.OffMemRsvmap%format.StructAlign != 0 {
		return Header{}, errs.ParseErrorf("off_mem_rsvmap %d is not 32-bit aligned", h.OffMemRsvmap)
	}

	if h.OffDtStruct%format.StructAlign != 0 {
		return Header{}, errs.ParseErrorf("off_dt_struct %d is not 32-bit aligned", h.OffDtStruct)
	}

	if h.LastCompVersion > format.CompatibleVersion {
		return Header{}, errs.ParseErrorf("last_comp_version %d is newer than supported version %d", h.LastCompVersion, format.CompatibleVersion)
	}

	return h, nil
}

func (h Header) String() string {
	return fmt.Sprintf(
		"Header{Magic: %#08x, TotalSize: %d, OffDtStruct: %d, OffDtStrings: %d, OffMemRsvmap: %d, Version: %d, LastCompVersion: %d, BootCpuidPhys: %d, SizeDtStrings: %d, SizeDtStruct: %d}",
		h.Magic, h.TotalSize, h.OffDtStruct, h.OffDtStrings, h.OffMemRsvmap, h.Version, h.LastCompVersion, h.BootCpuidPhys, h.SizeDtStrings, h.SizeDtStruct,
	)
}
