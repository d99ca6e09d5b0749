package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeMUTF8ASCII(t *testing.T) {
	data := []byte("Hello\x00")
	units, pos, err := DecodeMUTF8(data, 0, 5)
	require.NoError(t, err)
	require.Equal(t, len(data), pos)
	require.Equal(t, "Hello", UTF16ToString(units))
}

func TestDecodeMUTF8OverlongNUL(t *testing.T) {
	// The DEX/MUTF-8 overlong NUL encoding: C0 80, followed by "x" then
	// the real terminating NUL.
	data := []byte{0xC0, 0x80, 'x', 0x00}
	units, pos, err := DecodeMUTF8(data, 0, 2)
	require.NoError(t, err)
	require.Equal(t, len(data), pos)
	require.Equal(t, uint16(0), units[0])
	require.Equal(t, uint16('x'), units[1])
}

func TestDecodeMUTF8TwoByte(t *testing.T) {
	// U+00E9 (é) encodes as 0xC3 0xA9 in (M)UTF-8.
	data := []byte{0xC3, 0xA9, 0x00}
	units, _, err := DecodeMUTF8(data, 0, 1)
	require.NoError(t, err)
	require.Equal(t, uint16(0x00E9), units[0])
}

func TestDecodeMUTF8SurrogatePair(t *testing.T) {
	// U+1F600 encoded as a CESU-8 surrogate pair: two 3-byte sequences
	// for D83D and DE00, declared as 2 code units.
	hi := EncodeMUTF8([]uint16{0xD83D})
	lo := EncodeMUTF8([]uint16{0xDE00})
	data := append(hi[:len(hi)-1], lo...) // drop the NUL the helper appended mid-stream

	units, _, err := DecodeMUTF8(data, 0, 2)
	require.NoError(t, err)
	require.Equal(t, []uint16{0xD83D, 0xDE00}, units)
	require.Equal(t, "\U0001F600", UTF16ToString(units))
}

func TestDecodeMUTF8TruncatedFails(t *testing.T) {
	data := []byte{0xE0, 0x80}
	_, _, err := DecodeMUTF8(data, 0, 1)
	require.Error(t, err)
	require.Contains(t, err.Error(), "BAD_STRING")
}

func TestDecodeMUTF8BadContinuationFails(t *testing.T) {
	data := []byte{0xC3, 0x00, 0x00}
	_, _, err := DecodeMUTF8(data, 0, 1)
	require.Error(t, err)
}

func TestMUTF8RoundTrip(t *testing.T) {
	cases := [][]uint16{
		{},
		{'a', 'b', 'c'},
		{0x00E9, 0x4E2D},
		{0xD83D, 0xDE00},
	}

	for _, units := range cases {
		encoded := EncodeMUTF8(units)
		decoded, pos, err := DecodeMUTF8(encoded, 0, uint32(len(units)))
		require.NoError(t, err)
		require.Equal(t, len(encoded), pos)
		require.Equal(t, units, decoded)
	}
}
