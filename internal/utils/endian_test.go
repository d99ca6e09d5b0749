package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUbyte(t *testing.T) {
	data := []byte{0x00, 0xFF, 0x7F}

	v, err := Ubyte(data, 0)
	require.NoError(t, err)
	require.Equal(t, byte(0x00), v)

	v, err = Ubyte(data, 1)
	require.NoError(t, err)
	require.Equal(t, byte(0xFF), v)

	_, err = Ubyte(data, 3)
	require.Error(t, err)

	_, err = Ubyte(data, -1)
	require.Error(t, err)
}

func TestSbyte(t *testing.T) {
	data := []byte{0xFF, 0x7F}

	v, err := Sbyte(data, 0)
	require.NoError(t, err)
	require.Equal(t, int8(-1), v)

	v, err = Sbyte(data, 1)
	require.NoError(t, err)
	require.Equal(t, int8(127), v)
}

func TestUshort(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		off      int
		expected uint16
		wantErr  bool
	}{
		{name: "zero", data: []byte{0x00, 0x00}, off: 0, expected: 0},
		{name: "little endian order", data: []byte{0x34, 0x12}, off: 0, expected: 0x1234},
		{name: "max value", data: []byte{0xFF, 0xFF}, off: 0, expected: 0xFFFF},
		{name: "with offset", data: []byte{0x00, 0x00, 0x01, 0x00}, off: 2, expected: 1},
		{name: "truncated", data: []byte{0x01}, off: 0, wantErr: true},
		{name: "out of range offset", data: []byte{0x01, 0x02}, off: 5, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Ushort(tt.data, tt.off)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.expected, v)
		})
	}
}

func TestSshort(t *testing.T) {
	v, err := Sshort([]byte{0xFF, 0xFF}, 0)
	require.NoError(t, err)
	require.Equal(t, int16(-1), v)
}

func TestUint(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		off      int
		expected uint32
		wantErr  bool
	}{
		{name: "zero", data: []byte{0, 0, 0, 0}, off: 0, expected: 0},
		{name: "little endian order", data: []byte{0x78, 0x56, 0x34, 0x12}, off: 0, expected: 0x12345678},
		{name: "max value", data: []byte{0xFF, 0xFF, 0xFF, 0xFF}, off: 0, expected: 0xFFFFFFFF},
		{name: "typical dex string_ids offset", data: []byte{0x70, 0x00, 0x00, 0x00}, off: 0, expected: 0x70},
		{name: "truncated", data: []byte{0x01, 0x02}, off: 0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Uint(tt.data, tt.off)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.expected, v)
		})
	}
}

func TestSint(t *testing.T) {
	v, err := Sint([]byte{0xFF, 0xFF, 0xFF, 0xFF}, 0)
	require.NoError(t, err)
	require.Equal(t, int32(-1), v)
}

func TestUlongSlong(t *testing.T) {
	data := []byte{0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x80}

	u, err := Ulong(data, 0)
	require.NoError(t, err)
	require.Equal(t, uint64(0x8000000000000001), u)

	s, err := Slong(data, 0)
	require.NoError(t, err)
	require.Equal(t, int64(-9223372036854775807), s)

	_, err = Ulong(data[:4], 0)
	require.Error(t, err)
}

func TestBoundsErrorMessage(t *testing.T) {
	_, err := Uint([]byte{0x01}, 0)
	require.Error(t, err)
	require.Contains(t, err.Error(), "BOUNDS")
}

func BenchmarkUint(b *testing.B) {
	data := []byte{0x78, 0x56, 0x34, 0x12}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_, _ = Uint(data, 0)
	}
}
