// Package encoding decodes typed property values shared by the streaming
// (blob) and indexed (index) layers: cells, strings, and raw byte payloads.
// Keeping the decode logic here means both layers expose the exact same
// typed accessors without duplicating the byte-level work.
package encoding

import (
	"encoding/binary"
	"iter"

	"github.com/devicetree-go/fdt/errs"
	"github.com/devicetree-go/fdt/internal/bytesio"
)

// U32 decodes a property value as a single big-endian 32-bit cell.
func U32(buf []byte) (uint32, error) {
	if len(buf) != 4 {
		return 0, errs.ParseErrorf("u32 property must be exactly 4 bytes, got %d", len(buf))
	}

	return binary.BigEndian.Uint32(buf), nil
}

// U64 decodes a property value as a pair of big-endian 32-bit cells forming
// one 64-bit value, matching how #address-cells: 2 properties are encoded.
func U64(buf []byte) (uint64, error) {
	if len(buf) != 8 {
		return 0, errs.ParseErrorf("u64 property must be exactly 8 bytes, got %d", len(buf))
	}

	return binary.BigEndian.Uint64(buf), nil
}

// Phandle decodes a property value as a <phandle> cell. fdt never resolves
// the referenced node; the value is returned opaque, for the caller to look
// up itself.
func Phandle(buf []byte) (uint32, error) {
	return U32(buf)
}

// Str decodes a property value as a single NUL-terminated string, returning
// the text before the first NUL. A property with no NUL byte anywhere in its
// value -- including a zero-length value, which trivially contains none --
// is malformed as a <string> and reports errs.ErrStringEncoding.
func Str(buf []byte) (string, error) {
	for i, b := range buf {
		if b == 0 {
			return ValidatedString(buf[:i])
		}
	}

	return "", errs.StringEncoding(errs.ParseErrorf("property value has no NUL terminator"))
}

// ValidatedString validates b as UTF-8 and converts it to a string, wrapping
// any failure as errs.ErrStringEncoding.
func ValidatedString(b []byte) (string, error) {
	return bytesio.ValidString(b)
}

// StringSeq iterates the NUL-separated list of strings held in a
// <stringlist> property value (e.g. "compatible"). The returned sequence is
// restartable: each range over it rescans buf from the start, since
// iter.Seq values are plain generator functions in Go, not stateful cursors.
// An empty buf yields zero strings rather than an error, matching how
// exhausting an empty stream is simply "no items" rather than malformed
// input.
func StringSeq(buf []byte) iter.Seq[string] {
	return func(yield func(string) bool) {
		start := 0
		for i, b := range buf {
			if b != 0 {
				continue
			}

			s, err := ValidatedString(buf[start:i])
			if err != nil {
				return
			}

			if !yield(s) {
				return
			}

			start = i + 1
		}
	}
}
