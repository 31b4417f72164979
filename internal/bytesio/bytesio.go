// Package bytesio provides bounds-checked and unchecked big-endian reads over
// an immutable byte slice, plus NUL-terminated string scanning. It is the
// lowest layer of the FDT parser: every other package reads the blob only
// through these functions.
package bytesio

import (
	"unicode/utf8"

	"github.com/devicetree-go/fdt/errs"
)

// ReadBEU32 reads a big-endian uint32 at off, bounds-checked against len(buf).
func ReadBEU32(buf []byte, off int) (uint32, error) {
	if off < 0 || off+4 > len(buf) {
		return 0, errs.InvalidOffsetf("read u32 at %d: out of bounds (len %d)", off, len(buf))
	}

	return UncheckedReadBEU32(buf, off), nil
}

// ReadBEU64 reads a big-endian uint64 at off, bounds-checked against len(buf).
func ReadBEU64(buf []byte, off int) (uint64, error) {
	if off < 0 || off+8 > len(buf) {
		return 0, errs.InvalidOffsetf("read u64 at %d: out of bounds (len %d)", off, len(buf))
	}

	return UncheckedReadBEU64(buf, off), nil
}

// UncheckedReadBEU32 reads a big-endian uint32 at off without a bounds check.
// The caller must have already established off+4 <= len(buf), e.g. the
// tokenizer validating the cursor before each token.
func UncheckedReadBEU32(buf []byte, off int) uint32 {
	_ = buf[off+3] // bounds check hint, eliminated by the compiler when inlined
	return uint32(buf[off])<<24 | uint32(buf[off+1])<<16 | uint32(buf[off+2])<<8 | uint32(buf[off+3])
}

// UncheckedReadBEU64 reads a big-endian uint64 at off without a bounds check.
func UncheckedReadBEU64(buf []byte, off int) uint64 {
	hi := UncheckedReadBEU32(buf, off)
	lo := UncheckedReadBEU32(buf, off+4)

	return uint64(hi)<<32 | uint64(lo)
}

// ReadBString0 returns the NUL-terminated byte slice starting at pos, scanning
// to the end of buf. It returns errs.ErrParseError if no NUL byte is found.
func ReadBString0(buf []byte, pos int) ([]byte, error) {
	if pos < 0 || pos > len(buf) {
		return nil, errs.InvalidOffsetf("read string at %d: out of bounds (len %d)", pos, len(buf))
	}

	for i := pos; i < len(buf); i++ {
		if buf[i] == 0 {
			return buf[pos:i], nil
		}
	}

	return nil, errs.ParseErrorf("unterminated string starting at offset %d", pos)
}

// NReadBString0 returns the NUL-terminated byte slice starting at pos,
// scanning no further than min(pos+maxLen, len(buf)). It is used by the
// tokenizer to bound a node name scan to format.MaxNodeNameLen-1 bytes in
// strict mode.
func NReadBString0(buf []byte, pos, maxLen int) ([]byte, error) {
	if pos < 0 || pos > len(buf) {
		return nil, errs.InvalidOffsetf("read string at %d: out of bounds (len %d)", pos, len(buf))
	}

	end := pos + maxLen
	if end > len(buf) {
		end = len(buf)
	}

	for i := pos; i < end; i++ {
		if buf[i] == 0 {
			return buf[pos:i], nil
		}
	}

	return nil, errs.ParseErrorf("unterminated string starting at offset %d within %d bytes", pos, maxLen)
}

// ValidString validates b as UTF-8, returning errs.ErrStringEncoding if it
// is not, so callers can defer validation to the accessor rather than paying
// for it during tokenization.
func ValidString(b []byte) (string, error) {
	if !utf8.Valid(b) {
		return "", errs.StringEncoding(errs.ParseErrorf("invalid UTF-8 in %d-byte string", len(b)))
	}

	return string(b), nil
}
