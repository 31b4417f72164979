package section

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devicetree-go/fdt/errs"
	"github.com/devicetree-go/fdt/format"
)

func buildHeader(totalSize, structOff, stringsOff, rsvmapOff, version, lastComp uint32) []byte {
	buf := make([]byte, format.HeaderSize)
	binary.BigEndian.PutUint32(buf[0:4], format.Magic)
	binary.BigEndian.PutUint32(buf[4:8], totalSize)
	binary.BigEndian.PutUint32(buf[8:12], structOff)
	binary.BigEndian.PutUint32(buf[12:16], stringsOff)
	binary.BigEndian.PutUint32(buf[16:20], rsvmapOff)
	binary.BigEndian.PutUint32(buf[20:24], version)
	binary.BigEndian.PutUint32(buf[24:28], lastComp)

	return buf
}

func TestParseHeader_Valid(t *testing.T) {
	buf := buildHeader(format.HeaderSize, format.HeaderSize, format.HeaderSize, format.HeaderSize, 17, 16)
	h, err := ParseHeader(buf)
	require.NoError(t, err)
	assert.Equal(t, format.Magic, h.Magic)
	assert.Equal(t, uint32(format.HeaderSize), h.TotalSize)
	assert.Equal(t, uint32(17), h.Version)
}

func TestParseHeader_BadMagic(t *testing.T) {
	buf := buildHeader(format.HeaderSize, 0, 0, 0, 17, 16)
	binary.BigEndian.PutUint32(buf[0:4], 0xdeadbeef)

	_, err := ParseHeader(buf)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrInvalidMagic))
}

func TestParseHeader_TooShort(t *testing.T) {
	_, err := ParseHeader(make([]byte, 10))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrInvalidOffset))
}

func TestParseHeader_TotalSizeExceedsBuffer(t *testing.T) {
	buf := buildHeader(1000, 0, 0, 0, 17, 16)
	_, err := ParseHeader(buf)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrInvalidOffset))
}

func TestParseHeader_MisalignedMemRsvmap(t *testing.T) {
	buf := buildHeader(format.HeaderSize, format.HeaderSize, format.HeaderSize, format.HeaderSize+1, 17, 16)
	_, err := ParseHeader(buf)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrParseError))
}

func TestParseHeader_MisalignedDtStruct(t *testing.T) {
	buf := buildHeader(format.HeaderSize, format.HeaderSize+1, format.HeaderSize, format.HeaderSize, 17, 16)
	_, err := ParseHeader(buf)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrParseError))
}

func TestParseHeader_IncompatibleVersion(t *testing.T) {
	buf := buildHeader(format.HeaderSize, 0, 0, 0, 17, 99)
	_, err := ParseHeader(buf)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrParseError))
}

func TestReadTotalSize(t *testing.T) {
	buf := buildHeader(1234, 0, 0, 0, 17, 16)
	size, err := ReadTotalSize(buf[:8])
	require.NoError(t, err)
	assert.Equal(t, uint32(1234), size)
}

func TestReadTotalSize_TooShort(t *testing.T) {
	_, err := ReadTotalSize(make([]byte, 4))
	assert.Error(t, err)
}
