package core

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

// buildMinimalHeader assembles a syntactically valid, empty-section dex
// header: no strings, types, protos, fields, methods or classes.
func buildMinimalHeader() []byte {
	b := make([]byte, headerSize)
	copy(b[0:8], []byte("dex\n035\x00"))
	binary.LittleEndian.PutUint32(b[32:36], headerSize) // file_size
	binary.LittleEndian.PutUint32(b[36:40], headerSize) // header_size
	binary.LittleEndian.PutUint32(b[40:44], endianConstant)
	return b
}

func TestParseHeaderMinimal(t *testing.T) {
	h, err := ParseHeader(buildMinimalHeader())
	require.NoError(t, err)
	require.Equal(t, "035", h.Version)
	require.Equal(t, uint32(headerSize), h.FileSize)
}

func TestParseHeaderBadMagic(t *testing.T) {
	b := buildMinimalHeader()
	b[0] = 'X'
	_, err := ParseHeader(b)
	require.Error(t, err)
	require.Contains(t, err.Error(), "BAD_MAGIC")
}

func TestParseHeaderBadEndian(t *testing.T) {
	b := buildMinimalHeader()
	binary.LittleEndian.PutUint32(b[40:44], 0xDEADBEEF)
	_, err := ParseHeader(b)
	require.Error(t, err)
	require.Contains(t, err.Error(), "BAD_ENDIAN")
}

func TestParseHeaderTruncated(t *testing.T) {
	_, err := ParseHeader(make([]byte, 10))
	require.Error(t, err)
	require.Contains(t, err.Error(), "BOUNDS")
}

func TestParseHeaderSectionOutOfRange(t *testing.T) {
	b := buildMinimalHeader()
	binary.LittleEndian.PutUint32(b[56:60], 1)          // string_ids_size = 1
	binary.LittleEndian.PutUint32(b[60:64], 0x10000000) // string_ids_off way past file_size
	_, err := ParseHeader(b)
	require.Error(t, err)
}
