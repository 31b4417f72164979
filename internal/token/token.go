// Package token implements the structure-block tokenizer: decoding one
// FDT_* token at a time from an aligned cursor into a buffer, advancing the
// cursor past the token's payload and any required padding.
package token

import (
	"github.com/devicetree-go/fdt/errs"
	"github.com/devicetree-go/fdt/format"
	"github.com/devicetree-go/fdt/internal/bytesio"
)

// Token is one decoded structure-block token. Its fields are populated
// according to Type; BeginNode populates Name, Prop populates PropLen,
// PropNameOff and PropValue, all others carry no payload.
type Token struct {
	Type format.TokenType

	// Name is the raw (not yet UTF-8 validated) unit name of a BeginNode
	// token, a sub-slice of the caller's buffer.
	Name []byte

	// PropLen is the byte length of a Prop token's value.
	PropLen uint32
	// PropNameOff is the byte offset into the strings block of a Prop
	// token's name.
	PropNameOff uint32
	// PropValue is a Prop token's value, a sub-slice of the caller's buffer.
	PropValue []byte
}

// Next decodes the token at *off and advances *off past it, including any
// trailing padding, to the next token boundary. buf is the full blob; *off
// must already be 4-byte aligned and within the structure block.
//
// Next returns a Token{Type: format.TokenEnd} when it decodes FDT_END; the
// caller must stop requesting further tokens at that point, since nothing
// beyond FDT_END is defined to be more structure-block data.
//
// Next is the strict-mode entry point, bounding a BeginNode name scan to
// format.MaxNodeNameLen-1 bytes; NextBounded lets a caller relax that bound.
func Next(buf []byte, off *int) (Token, error) {
	return NextBounded(buf, off, format.MaxNodeNameLen-1)
}

// NextBounded is Next with an explicit bound on how many bytes a BeginNode
// name scan may consume before it must find a terminating NUL. Lenient
// parsing modes pass a larger bound (e.g. len(buf)) to recover a name from a
// blob that violates the Devicetree Specification's name-length limit
// instead of failing outright.
func NextBounded(buf []byte, off *int, maxNameLen int) (Token, error) {
	if *off%format.StructAlign != 0 {
		return Token{}, errs.ParseErrorf("structure block cursor %d is not 4-byte aligned", *off)
	}

	code, err := bytesio.ReadBEU32(buf, *off)
	if err != nil {
		return Token{}, errs.ParseErrorf("reading token at offset %d: %v", *off, err)
	}
	*off += 4

	switch format.TokenType(code) {
	case format.TokenBeginNode:
		name, err := bytesio.NReadBString0(buf, *off, maxNameLen)
		if err != nil {
			return Token{}, errs.ParseErrorf("reading node name at offset %d: %v", *off, err)
		}
		*off = format.AlignUp(*off+len(name)+1, format.StructAlign)

		return Token{Type: format.TokenBeginNode, Name: name}, nil

	case format.TokenEndNode:
		return Token{Type: format.TokenEndNode}, nil

	case format.TokenProp:
		propLen, err := bytesio.ReadBEU32(buf, *off)
		if err != nil {
			return Token{}, errs.ParseErrorf("reading prop length at offset %d: %v", *off, err)
		}

		nameOff, err := bytesio.ReadBEU32(buf, *off+4)
		if err != nil {
			return Token{}, errs.ParseErrorf("reading prop nameoff at offset %d: %v", *off, err)
		}
		if uint64(nameOff) > uint64(len(buf)) {
			return Token{}, errs.ParseErrorf("prop nameoff %d exceeds blob length %d", nameOff, len(buf))
		}

		valueStart := *off + 8
		valueEnd := valueStart + int(propLen)
		if valueEnd < valueStart || valueEnd > len(buf) {
			return Token{}, errs.InvalidOffsetf("prop value [%d:%d] out of bounds (len %d)", valueStart, valueEnd, len(buf))
		}

		value := buf[valueStart:valueEnd]
		*off = format.AlignUp(valueEnd, format.StructAlign)

		return Token{Type: format.TokenProp, PropLen: propLen, PropNameOff: nameOff, PropValue: value}, nil

	case format.TokenNop:
		return Token{Type: format.TokenNop}, nil

	case format.TokenEnd:
		return Token{Type: format.TokenEnd}, nil

	default:
		return Token{}, errs.ParseErrorf("unrecognized token code %#08x at offset %d", code, *off-4)
	}
}
