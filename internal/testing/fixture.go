// Package testing provides a DEX image fixture builder. It has no
// recording visitor, and the current tests build their fixtures in-file
// instead of importing it.
package testing

import "encoding/binary"

// Builder assembles a minimal dex image byte-by-byte, tracking section
// offsets as they're appended so tests don't hand-compute them.
type Builder struct {
	buf []byte
}

// NewBuilder starts a Builder with headerSize zero bytes reserved for
// the dex header, to be patched in with PatchU32 once every section
// has been appended.
func NewBuilder(headerSize int) *Builder {
	return &Builder{buf: make([]byte, headerSize)}
}

// Offset returns the current end-of-buffer offset, the value to record
// before appending a new section.
func (b *Builder) Offset() uint32 { return uint32(len(b.buf)) }

// Bytes returns the buffer built so far.
func (b *Builder) Bytes() []byte { return b.buf }

// Append appends raw bytes.
func (b *Builder) Append(data ...byte) *Builder {
	b.buf = append(b.buf, data...)
	return b
}

// AppendU16 appends a little-endian uint16.
func (b *Builder) AppendU16(v uint16) *Builder {
	buf := make([]byte, 2)
	binary.LittleEndian.PutUint16(buf, v)
	return b.Append(buf...)
}

// AppendU32 appends a little-endian uint32.
func (b *Builder) AppendU32(v uint32) *Builder {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, v)
	return b.Append(buf...)
}

// AppendULEB128 appends v as ULEB128.
func (b *Builder) AppendULEB128(v uint32) *Builder {
	for {
		byt := byte(v & 0x7F)
		v >>= 7
		if v != 0 {
			b.buf = append(b.buf, byt|0x80)
		} else {
			b.buf = append(b.buf, byt)
			return b
		}
	}
}

// AppendStringData appends a string_data_item (uleb128 length + MUTF-8
// bytes + NUL) for ASCII-only fixture strings.
func (b *Builder) AppendStringData(s string) *Builder {
	return b.AppendULEB128(uint32(len(s))).Append([]byte(s)...).Append(0x00)
}

// Align4 pads the buffer to a 4-byte boundary with zero bytes.
func (b *Builder) Align4() *Builder {
	for len(b.buf)%4 != 0 {
		b.buf = append(b.buf, 0)
	}
	return b
}

// PatchU32 overwrites the little-endian uint32 at off.
func (b *Builder) PatchU32(off int, v uint32) {
	binary.LittleEndian.PutUint32(b.buf[off:off+4], v)
}
