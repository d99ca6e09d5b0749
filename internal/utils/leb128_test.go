package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestULEB128RoundTrip(t *testing.T) {
	values := []uint32{0, 1, 127, 128, 300, 16384, 0x7FFFFFFF, 0xFFFFFFFF}

	for _, v := range values {
		buf := EncodeULEB128(nil, v)
		got, pos, err := ReadULEB128(buf, 0)
		require.NoError(t, err)
		require.Equal(t, v, got)
		require.Equal(t, len(buf), pos)
	}
}

func TestSLEB128RoundTrip(t *testing.T) {
	values := []int32{0, 1, -1, 63, -64, 64, -65, 1000000, -1000000, 0x7FFFFFFF, -0x80000000}

	for _, v := range values {
		buf := EncodeSLEB128(nil, v)
		got, pos, err := ReadSLEB128(buf, 0)
		require.NoError(t, err)
		require.Equal(t, v, got)
		require.Equal(t, len(buf), pos)
	}
}

func TestReadULEB128Offset(t *testing.T) {
	// two values back to back
	buf := EncodeULEB128(nil, 5)
	buf = EncodeULEB128(buf, 300)

	v1, pos, err := ReadULEB128(buf, 0)
	require.NoError(t, err)
	require.Equal(t, uint32(5), v1)

	v2, pos2, err := ReadULEB128(buf, pos)
	require.NoError(t, err)
	require.Equal(t, uint32(300), v2)
	require.Equal(t, len(buf), pos2)
}

func TestReadULEB128TooLong(t *testing.T) {
	// 6 bytes, each with the continuation bit set - exceeds the 5 byte cap.
	buf := []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x01}
	_, _, err := ReadULEB128(buf, 0)
	require.Error(t, err)
	require.Contains(t, err.Error(), "BAD_LEB")
}

func TestReadULEB128p1(t *testing.T) {
	tests := []struct {
		name string
		raw  uint32
		want int32
	}{
		{name: "absent sentinel", raw: 0, want: -1},
		{name: "value zero", raw: 1, want: 0},
		{name: "value five", raw: 6, want: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := EncodeULEB128(nil, tt.raw)
			got, _, err := ReadULEB128p1(buf, 0)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestReadSLEB128TooLong(t *testing.T) {
	buf := []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x01}
	_, _, err := ReadSLEB128(buf, 0)
	require.Error(t, err)
	require.Contains(t, err.Error(), "BAD_LEB")
}

func TestReadIntBits(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		hint byte
		want int64
	}{
		{name: "1-byte negative", data: []byte{0xFF}, hint: 0x00, want: -1},
		{name: "1-byte positive", data: []byte{0x7F}, hint: 0x00, want: 0x7F},
		{name: "2-byte", data: []byte{0x34, 0x12}, hint: 0x01 << 5, want: 0x1234},
		{name: "8-byte max length", data: []byte{0, 0, 0, 0, 0, 0, 0, 0x80}, hint: 0x07 << 5, want: -0x8000000000000000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, pos, err := ReadIntBits(tt.data, 0, tt.hint)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
			require.Equal(t, len(tt.data), pos)
		})
	}
}

func TestReadUintBits(t *testing.T) {
	data := []byte{0xFF}
	got, _, err := ReadUintBits(data, 0, 0x00)
	require.NoError(t, err)
	require.Equal(t, uint64(0xFF), got)
}

func TestReadFloatBits(t *testing.T) {
	// A single 0xFF byte should left-align to the top byte of the word.
	data := []byte{0xFF}
	got, _, err := ReadFloatBits(data, 0, 0x00)
	require.NoError(t, err)
	require.Equal(t, uint64(0xFF)<<56, got)

	// Four bytes representing float32 1.0 (0x3F800000) should occupy the
	// high 32 bits, zero-padded on the low end.
	data4 := []byte{0x00, 0x00, 0x80, 0x3F}
	got4, _, err := ReadFloatBits(data4, 0, 0x03<<5)
	require.NoError(t, err)
	require.Equal(t, uint64(0x3F800000)<<32, got4)
}

func TestLEBBoundsPropagation(t *testing.T) {
	_, _, err := ReadULEB128([]byte{0x80}, 0)
	require.Error(t, err)

	_, _, err = ReadIntBits([]byte{0x01}, 0, 0x07<<5)
	require.Error(t, err)
}
