package utils

import "fmt"

// BoundsError is returned by every out-of-range primitive read, matching
// the BOUNDS failure category for primitive decoders.
type BoundsError struct {
	Offset, Length, ImageSize int
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("BOUNDS: offset %d length %d exceeds image size %d", e.Offset, e.Length, e.ImageSize)
}

func boundsCheck(b []byte, off, length int) error {
	if off < 0 || length < 0 || off+length > len(b) {
		return &BoundsError{Offset: off, Length: length, ImageSize: len(b)}
	}
	return nil
}

// Ubyte reads an unsigned 8-bit value at offset off.
func Ubyte(b []byte, off int) (byte, error) {
	if err := boundsCheck(b, off, 1); err != nil {
		return 0, err
	}
	return b[off], nil
}

// Sbyte reads a signed 8-bit value at offset off.
func Sbyte(b []byte, off int) (int8, error) {
	v, err := Ubyte(b, off)
	return int8(v), err
}

// Ushort reads a little-endian unsigned 16-bit value at offset off.
func Ushort(b []byte, off int) (uint16, error) {
	if err := boundsCheck(b, off, 2); err != nil {
		return 0, err
	}
	return uint16(b[off]) | uint16(b[off+1])<<8, nil
}

// Sshort reads a little-endian signed 16-bit value at offset off.
func Sshort(b []byte, off int) (int16, error) {
	v, err := Ushort(b, off)
	return int16(v), err
}

// Uint reads a little-endian unsigned 32-bit value at offset off.
func Uint(b []byte, off int) (uint32, error) {
	if err := boundsCheck(b, off, 4); err != nil {
		return 0, err
	}
	return uint32(b[off]) | uint32(b[off+1])<<8 | uint32(b[off+2])<<16 | uint32(b[off+3])<<24, nil
}

// Sint reads a little-endian signed 32-bit value at offset off.
func Sint(b []byte, off int) (int32, error) {
	v, err := Uint(b, off)
	return int32(v), err
}

// Ulong reads a little-endian unsigned 64-bit value at offset off.
func Ulong(b []byte, off int) (uint64, error) {
	if err := boundsCheck(b, off, 8); err != nil {
		return 0, err
	}
	lo, _ := Uint(b, off)
	hi, _ := Uint(b, off+4)
	return uint64(lo) | uint64(hi)<<32, nil
}

// Slong reads a little-endian signed 64-bit value at offset off.
func Slong(b []byte, off int) (int64, error) {
	v, err := Ulong(b, off)
	return int64(v), err
}
