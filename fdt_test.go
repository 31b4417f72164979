package fdt_test

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fdt "github.com/devicetree-go/fdt"
	"github.com/devicetree-go/fdt/internal/fdtbuild"
)

func buildSample() []byte {
	return fdtbuild.New().
		BeginNode("").
		PropString("compatible", "vendor,board").
		BeginNode("cpus").
		PropU32("#address-cells", 1).
		PropU32("#size-cells", 0).
		BeginNode("cpu@0").
		PropU32("reg", 0).
		PropString("compatible", "riscv,cpu").
		EndNode().
		EndNode().
		Build()
}

func TestVerifyMagic(t *testing.T) {
	raw := buildSample()
	assert.True(t, fdt.VerifyMagic(raw))
	assert.False(t, fdt.VerifyMagic([]byte{0, 1, 2}))
	assert.False(t, fdt.VerifyMagic(nil))

	corrupt := append([]byte(nil), raw...)
	corrupt[0] ^= 0xff
	assert.False(t, fdt.VerifyMagic(corrupt))
}

func TestReadTotalSize(t *testing.T) {
	raw := buildSample()

	size, err := fdt.ReadTotalSize(raw[:8])
	require.NoError(t, err)
	assert.Equal(t, uint32(len(raw)), size)

	_, err = fdt.ReadTotalSize(raw[:4])
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	raw := buildSample()

	b, err := fdt.Open(raw)
	require.NoError(t, err)

	root, err := b.Root()
	require.NoError(t, err)
	name, err := root.Name()
	require.NoError(t, err)
	assert.Equal(t, "", name)
}

func TestOpen_WithStrictNodeNames(t *testing.T) {
	raw := buildSample()

	b, err := fdt.Open(raw, fdt.WithStrictNodeNames(false))
	require.NoError(t, err)

	_, err = b.Root()
	require.NoError(t, err)
}

func TestOpenFromAddress(t *testing.T) {
	raw := buildSample()
	addr := uintptr(unsafe.Pointer(&raw[0]))

	b, err := fdt.OpenFromAddress(addr)
	require.NoError(t, err)
	assert.Equal(t, uint32(len(raw)), b.TotalSize())

	root, err := b.Root()
	require.NoError(t, err)
	name, err := root.Name()
	require.NoError(t, err)
	assert.Equal(t, "", name)
}

func TestOpenFromAddress_WithKnownSize(t *testing.T) {
	raw := buildSample()
	addr := uintptr(unsafe.Pointer(&raw[0]))

	b, err := fdt.OpenFromAddress(addr, fdt.WithOpenFromAddressSize(uint32(len(raw))))
	require.NoError(t, err)
	assert.Equal(t, uint32(len(raw)), b.TotalSize())
}

func TestLayoutForAndBuildIndex(t *testing.T) {
	raw := buildSample()

	b, err := fdt.Open(raw)
	require.NoError(t, err)

	layout, err := fdt.LayoutFor(b)
	require.NoError(t, err)
	assert.Greater(t, layout.Size, 0)

	arena := make([]byte, layout.Size)
	tree, err := fdt.BuildIndex(b, arena)
	require.NoError(t, err)

	name, err := tree.Root().Name()
	require.NoError(t, err)
	assert.Equal(t, "", name)
}
