package utils

import "fmt"

// maxLEBBytes caps ULEB128/SLEB128 decoding at 5 bytes — enough for any
// unsigned/signed 32-bit value, and the limit spec.md's BAD_LEB failure
// mode is defined against.
const maxLEBBytes = 5

// ReadULEB128 reads an unsigned LEB128 value starting at off, returning
// the decoded value and the offset of the first byte after it.
func ReadULEB128(b []byte, off int) (uint32, int, error) {
	var result uint32
	var shift uint
	pos := off

	for i := 0; i < maxLEBBytes; i++ {
		v, err := Ubyte(b, pos)
		if err != nil {
			return 0, pos, err
		}
		pos++
		result |= uint32(v&0x7F) << shift
		if v&0x80 == 0 {
			return result, pos, nil
		}
		shift += 7
	}
	return 0, pos, fmt.Errorf("BAD_LEB: uleb128 exceeds %d bytes at offset %d", maxLEBBytes, off)
}

// ReadULEB128p1 reads a "uleb128p1" value — ULEB128 encoding a value one
// greater than the true value, so that the true value -1 (absence) is
// encoded as 0. Returns the true (possibly -1) value.
func ReadULEB128p1(b []byte, off int) (int32, int, error) {
	v, pos, err := ReadULEB128(b, off)
	if err != nil {
		return 0, pos, err
	}
	return int32(v) - 1, pos, nil
}

// ReadSLEB128 reads a signed LEB128 value starting at off.
func ReadSLEB128(b []byte, off int) (int32, int, error) {
	var result int32
	var shift uint
	pos := off
	var v byte
	var err error

	for i := 0; i < maxLEBBytes; i++ {
		v, err = Ubyte(b, pos)
		if err != nil {
			return 0, pos, err
		}
		pos++
		result |= int32(v&0x7F) << shift
		shift += 7
		if v&0x80 == 0 {
			if shift < 32 && v&0x40 != 0 {
				result |= -1 << shift
			}
			return result, pos, nil
		}
	}
	return 0, pos, fmt.Errorf("BAD_LEB: sleb128 exceeds %d bytes at offset %d", maxLEBBytes, off)
}

// EncodeULEB128 appends the ULEB128 encoding of v to buf, returning the
// extended slice. Used by tests exercising the LEB round-trip invariant
// and has no other caller in the reader itself.
func EncodeULEB128(buf []byte, v uint32) []byte {
	for {
		b := byte(v & 0x7F)
		v >>= 7
		if v != 0 {
			buf = append(buf, b|0x80)
		} else {
			buf = append(buf, b)
			return buf
		}
	}
}

// EncodeSLEB128 appends the SLEB128 encoding of v to buf.
func EncodeSLEB128(buf []byte, v int32) []byte {
	more := true
	for more {
		b := byte(v & 0x7F)
		v >>= 7
		signBitSet := b&0x40 != 0
		if (v == 0 && !signBitSet) || (v == -1 && signBitSet) {
			more = false
		} else {
			b |= 0x80
		}
		buf = append(buf, b)
	}
	return buf
}

// bitsLength extracts the 3-bit "length-1" field DEX packs into bits 5..7
// of an encoded_value header byte, returning the number of value bytes
// (1..8) that follow.
func bitsLength(hint byte) int {
	return int((hint>>5)&0x7) + 1
}

// ReadIntBits decodes the DEX encoded-value integer packing: read the
// number of bytes hint's length field specifies, little-endian, then
// sign-extend to 64 bits. Used for VALUE_BYTE/SHORT/INT/LONG.
func ReadIntBits(b []byte, off int, hint byte) (int64, int, error) {
	length := bitsLength(hint)
	if err := boundsCheck(b, off, length); err != nil {
		return 0, off, err
	}
	var v uint64
	for i := 0; i < length; i++ {
		v |= uint64(b[off+i]) << (8 * uint(i))
	}
	// Sign-extend from the top bit of the last byte read.
	shift := uint(64 - length*8)
	return int64(v<<shift) >> shift, off + length, nil
}

// ReadUintBits is ReadIntBits without sign extension. Used for
// VALUE_CHAR and the index-carrying variants (VALUE_STRING, VALUE_TYPE,
// VALUE_FIELD, VALUE_METHOD, VALUE_ENUM).
func ReadUintBits(b []byte, off int, hint byte) (uint64, int, error) {
	length := bitsLength(hint)
	if err := boundsCheck(b, off, length); err != nil {
		return 0, off, err
	}
	var v uint64
	for i := 0; i < length; i++ {
		v |= uint64(b[off+i]) << (8 * uint(i))
	}
	return v, off + length, nil
}

// ReadFloatBits decodes VALUE_FLOAT/VALUE_DOUBLE: read hint's length
// bytes little-endian and left-align them into a 64-bit word (the DEX
// writer zero-pads on the low end for truncated-precision floats).
func ReadFloatBits(b []byte, off int, hint byte) (uint64, int, error) {
	length := bitsLength(hint)
	if err := boundsCheck(b, off, length); err != nil {
		return 0, off, err
	}
	var v uint64
	for i := 0; i < length; i++ {
		v |= uint64(b[off+i]) << (8 * uint(i))
	}
	return v << uint(8*(8-length)), off + length, nil
}
