package section

import (
	"fmt"

	"github.com/devicetree-go/fdt/errs"
	"github.com/devicetree-go/fdt/format"
	"github.com/devicetree-go/fdt/internal/bytesio"
)

// ReserveEntry is one entry of the memory reservation block: a physical
// address and a size, both in bytes (Devicetree Specification v0.3 §5.3).
// The block is terminated by an entry whose Address and Size are both zero.
type ReserveEntry struct {
	Address uint64
	Size    uint64
}

// IsTerminator reports whether e is the zero entry that ends the reserve map.
func (e ReserveEntry) IsTerminator() bool {
	return e.Address == 0 && e.Size == 0
}

func (e ReserveEntry) String() string {
	return fmt.Sprintf("ReserveEntry{Address: %#x, Size: %#x}", e.Address, e.Size)
}

// ParseReserveEntry reads one ReserveEntry at off, which must be 8-byte
// aligned relative to the start of buf.
func ParseReserveEntry(buf []byte, off int) (ReserveEntry, error) {
	if off%format.ReserveMapAlign != 0 {
		return ReserveEntry{}, errs.InvalidParameterf("reserve entry offset %d is not 8-byte aligned", off)
	}

	addr, err := bytesio.ReadBEU64(buf, off)
	if err != nil {
		return ReserveEntry{}, err
	}

	size, err := bytesio.ReadBEU64(buf, off+8)
	if err != nil {
		return ReserveEntry{}, err
	}

	return ReserveEntry{Address: addr, Size: size}, nil
}
