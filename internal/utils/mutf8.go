package utils

import "fmt"

// DecodeMUTF8 decodes a Modified UTF-8 byte sequence of the given
// declared code-unit count into a UTF-16 code-unit slice. DEX (like the
// Java class file format) encodes NUL as the overlong two-byte sequence
// C0 80 and encodes supplementary-plane code points as a CESU-8 pair of
// three-byte sequences rather than a single four-byte UTF-8 sequence;
// both forms are passed through as UTF-16 code units without combining
// surrogate pairs into a single rune, matching the DEX writer's own
// code-unit accounting.
func DecodeMUTF8(b []byte, off int, codeUnitCount uint32) ([]uint16, int, error) {
	units := make([]uint16, 0, codeUnitCount)
	pos := off

	for i := uint32(0); i < codeUnitCount; i++ {
		b0, err := Ubyte(b, pos)
		if err != nil {
			return nil, pos, fmt.Errorf("BAD_STRING: truncated mutf-8 at unit %d: %w", i, err)
		}

		switch {
		case b0 == 0:
			return nil, pos, fmt.Errorf("BAD_STRING: unexpected raw NUL at offset %d", pos)
		case b0 < 0x80:
			units = append(units, uint16(b0))
			pos++
		case b0&0xE0 == 0xC0:
			b1, err := Ubyte(b, pos+1)
			if err != nil {
				return nil, pos, fmt.Errorf("BAD_STRING: truncated 2-byte mutf-8 at offset %d: %w", pos, err)
			}
			if b1&0xC0 != 0x80 {
				return nil, pos, fmt.Errorf("BAD_STRING: invalid 2-byte mutf-8 continuation at offset %d", pos)
			}
			units = append(units, uint16(b0&0x1F)<<6|uint16(b1&0x3F))
			pos += 2
		case b0&0xF0 == 0xE0:
			b1, err := Ubyte(b, pos+1)
			if err != nil {
				return nil, pos, fmt.Errorf("BAD_STRING: truncated 3-byte mutf-8 at offset %d: %w", pos, err)
			}
			b2, err := Ubyte(b, pos+2)
			if err != nil {
				return nil, pos, fmt.Errorf("BAD_STRING: truncated 3-byte mutf-8 at offset %d: %w", pos, err)
			}
			if b1&0xC0 != 0x80 || b2&0xC0 != 0x80 {
				return nil, pos, fmt.Errorf("BAD_STRING: invalid 3-byte mutf-8 continuation at offset %d", pos)
			}
			units = append(units, uint16(b0&0x0F)<<12|uint16(b1&0x3F)<<6|uint16(b2&0x3F))
			pos += 3
		default:
			return nil, pos, fmt.Errorf("BAD_STRING: invalid mutf-8 lead byte 0x%02x at offset %d", b0, pos)
		}
	}

	// The terminating NUL is present in the stream but not counted in
	// codeUnitCount; consume it if present so callers can rely on pos
	// pointing past the whole string field.
	if nul, err := Ubyte(b, pos); err == nil && nul == 0 {
		pos++
	}

	return units, pos, nil
}

// EncodeMUTF8 encodes a UTF-16 code-unit slice back to Modified UTF-8,
// used to exercise the decode/encode round-trip invariant.
func EncodeMUTF8(units []uint16) []byte {
	out := make([]byte, 0, len(units)+1)
	for _, u := range units {
		switch {
		case u == 0:
			out = append(out, 0xC0, 0x80)
		case u < 0x80:
			out = append(out, byte(u))
		case u < 0x800:
			out = append(out, byte(0xC0|u>>6), byte(0x80|u&0x3F))
		default:
			out = append(out, byte(0xE0|u>>12), byte(0x80|(u>>6)&0x3F), byte(0x80|u&0x3F))
		}
	}
	out = append(out, 0x00)
	return out
}

// UTF16ToString converts decoded UTF-16 code units (including CESU-8
// surrogate pairs) to a Go string, combining surrogate pairs into their
// supplementary-plane runes.
func UTF16ToString(units []uint16) string {
	runes := make([]rune, 0, len(units))
	for i := 0; i < len(units); i++ {
		u := units[i]
		if u >= 0xD800 && u <= 0xDBFF && i+1 < len(units) {
			lo := units[i+1]
			if lo >= 0xDC00 && lo <= 0xDFFF {
				r := (rune(u-0xD800)<<10 | rune(lo-0xDC00)) + 0x10000
				runes = append(runes, r)
				i++
				continue
			}
		}
		runes = append(runes, rune(u))
	}
	return string(runes)
}
