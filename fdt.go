// Package fdt provides a zero-copy parser for Flattened Device Tree (FDT /
// DTB) binaries, implementing the Devicetree Specification v0.3's wire
// format.
//
// # Two layers
//
// The blob package is the streaming layer: a single forward pass over the
// buffer with no auxiliary memory. The index package is the indexed layer:
// one pre-pass packs every node and property into a caller-supplied arena,
// after which parent, sibling, and child lookups are O(1) with no further
// parsing. This package provides thin, commonly-used entry points over both;
// for anything beyond them, use blob and index directly.
//
// # Basic usage
//
//	b, err := fdt.Open(raw)
//	if err != nil {
//	    return err
//	}
//	for n := range b.AllNodes() {
//	    name, _ := n.Name()
//	    fmt.Println(name)
//	}
//
// Building an index once a blob has been opened:
//
//	layout, err := fdt.LayoutFor(b)
//	if err != nil {
//	    return err
//	}
//	arena := make([]byte, layout.Size)
//	tree, err := fdt.BuildIndex(b, arena)
package fdt

import (
	"encoding/binary"

	"github.com/devicetree-go/fdt/blob"
	"github.com/devicetree-go/fdt/format"
	"github.com/devicetree-go/fdt/index"
	"github.com/devicetree-go/fdt/internal/options"
	"github.com/devicetree-go/fdt/section"
)

// openConfig is the resolved policy for Open and OpenFromAddress. It never
// affects wire-format semantics the specification pins down, only parsing
// tolerance and, for OpenFromAddress, how the caller's known size is used.
type openConfig struct {
	blobOpts []blob.Option
	addrSize uint32
}

// OpenOption configures Open and OpenFromAddress.
type OpenOption = options.Option[*openConfig]

// WithStrictNodeNames controls whether a BeginNode unit name whose NUL does
// not fall within the first format.MaxNodeNameLen-1 bytes is a hard parse
// error (the default) or is instead read in full with a wider scan bound, for
// lenient parsing of malformed blobs.
func WithStrictNodeNames(strict bool) OpenOption {
	return options.NoError(func(c *openConfig) {
		c.blobOpts = append(c.blobOpts, blob.WithStrictNodeNames(strict))
	})
}

// WithOpenFromAddressSize tells OpenFromAddress the blob's exact totalsize
// up front, letting it map the buffer in a single step instead of reading
// the 8-byte header prefix first and remapping once the real size is known.
// Early-boot callers that already parsed totalsize out-of-band should use
// this.
func WithOpenFromAddressSize(size uint32) OpenOption {
	return options.NoError(func(c *openConfig) {
		c.addrSize = size
	})
}

func resolveOpenConfig(opts []OpenOption) (openConfig, error) {
	var c openConfig
	if err := options.Apply(&c, opts...); err != nil {
		return openConfig{}, err
	}

	return c, nil
}

// VerifyMagic reports whether b begins with the FDT magic number, without
// validating or parsing the rest of the header. It is a cheap pre-check a
// caller can run before committing to a full Open, e.g. when sniffing a
// buffer of unknown origin.
func VerifyMagic(b []byte) bool {
	if len(b) < 4 {
		return false
	}

	return binary.BigEndian.Uint32(b) == format.Magic
}

// ReadTotalSize reads the totalsize field out of a blob's leading 8 bytes
// (magic + totalsize), validating the magic number along the way, so a
// caller can size a buffer before reading and parsing the rest of it.
func ReadTotalSize(headerPrefix []byte) (uint32, error) {
	return section.ReadTotalSize(headerPrefix)
}

// Open validates b's header and returns a Blob borrowing it. len(b) must
// equal the header's reported totalsize; a longer or shorter b is rejected.
func Open(b []byte, opts ...OpenOption) (blob.Blob, error) {
	cfg, err := resolveOpenConfig(opts)
	if err != nil {
		return blob.Blob{}, err
	}

	return blob.Open(b, cfg.blobOpts...)
}

// OpenFromAddress treats addr as the physical or virtual address of an FDT
// blob already mapped into this process's address space -- the pattern an
// early-boot payload uses when a bootloader hands it a device tree pointer
// directly, with no surrounding byte slice to speak of. Without
// WithOpenFromAddressSize, it first reads the 8-byte header prefix to learn
// totalsize, then remaps the full blob; with it, the caller's known size is
// used directly and only one unsafe slice is constructed.
//
// The caller is responsible for addr pointing at addressable memory that
// remains valid and unchanged for as long as the returned Blob, and anything
// derived from it, is in use.
func OpenFromAddress(addr uintptr, opts ...OpenOption) (blob.Blob, error) {
	cfg, err := resolveOpenConfig(opts)
	if err != nil {
		return blob.Blob{}, err
	}

	if cfg.addrSize > 0 {
		b := unsafeSliceAt(addr, int(cfg.addrSize))

		return blob.Open(b, cfg.blobOpts...)
	}

	prefix := unsafeSliceAt(addr, format.HeaderPrefixSize)

	totalSize, err := section.ReadTotalSize(prefix)
	if err != nil {
		return blob.Blob{}, err
	}

	b := unsafeSliceAt(addr, int(totalSize))

	return blob.Open(b, cfg.blobOpts...)
}

// BuildIndex builds an indexed Tree from b into the caller-supplied arena.
// It is a thin forward to index.Build, named to round out the package's
// wrapper surface alongside Open.
func BuildIndex(b blob.Blob, arena []byte) (*index.Tree, error) {
	return index.Build(b, arena)
}

// LayoutFor computes the arena size and alignment BuildIndex requires for
// b, without allocating or retaining anything beyond the returned Layout.
func LayoutFor(b blob.Blob) (index.Layout, error) {
	return index.LayoutFor(b)
}
