package core

import (
	"fmt"

	"github.com/godexlib/dex/internal/utils"
)

const (
	headerSize      = 0x70
	endianConstant  = 0x12345678
	dexMagicPrefix  = "dex\n"
	minSupportedVer = "035"
)

// Header is the fully-parsed 0x70 byte dex header, giving Pipe the
// section table it needs to build every constant-pool view.
type Header struct {
	Version       string
	Checksum      uint32
	Signature     [20]byte
	FileSize      uint32
	HeaderSize    uint32
	LinkSize      uint32
	LinkOff       uint32
	MapOff        uint32
	StringIDsSize uint32
	StringIDsOff  uint32
	TypeIDsSize   uint32
	TypeIDsOff    uint32
	ProtoIDsSize  uint32
	ProtoIDsOff   uint32
	FieldIDsSize  uint32
	FieldIDsOff   uint32
	MethodIDsSize uint32
	MethodIDsOff  uint32
	ClassDefsSize uint32
	ClassDefsOff  uint32
	DataSize      uint32
	DataOff       uint32
}

// ParseHeader validates and decodes the dex header at the start of
// image. It never trusts FileSize beyond what the image actually holds.
func ParseHeader(image []byte) (*Header, error) {
	if len(image) < headerSize {
		return nil, utils.WrapError("parsing header", fmt.Errorf("BOUNDS: image of %d bytes shorter than header size %d", len(image), headerSize))
	}
	if string(image[0:4]) != dexMagicPrefix {
		return nil, utils.WrapError("parsing header", fmt.Errorf("BAD_MAGIC: missing %q prefix", dexMagicPrefix))
	}
	version := string(image[4:7])
	if image[7] != 0x00 {
		return nil, utils.WrapError("parsing header", fmt.Errorf("BAD_MAGIC: version field not NUL-terminated"))
	}

	h := &Header{Version: version}

	var err error
	read := func(off int) uint32 {
		if err != nil {
			return 0
		}
		var v uint32
		v, err = utils.Uint(image, off)
		return v
	}

	h.Checksum = read(8)
	copy(h.Signature[:], image[12:32])
	h.FileSize = read(32)
	h.HeaderSize = read(36)
	endianTag := read(40)
	h.LinkSize = read(44)
	h.LinkOff = read(48)
	h.MapOff = read(52)
	h.StringIDsSize = read(56)
	h.StringIDsOff = read(60)
	h.TypeIDsSize = read(64)
	h.TypeIDsOff = read(68)
	h.ProtoIDsSize = read(72)
	h.ProtoIDsOff = read(76)
	h.FieldIDsSize = read(80)
	h.FieldIDsOff = read(84)
	h.MethodIDsSize = read(88)
	h.MethodIDsOff = read(92)
	h.ClassDefsSize = read(96)
	h.ClassDefsOff = read(100)
	h.DataSize = read(104)
	h.DataOff = read(108)
	if err != nil {
		return nil, utils.WrapError("parsing header", err)
	}

	if endianTag != endianConstant {
		return nil, utils.WrapError("parsing header", fmt.Errorf("BAD_ENDIAN: endian_tag 0x%08x, only little-endian dex is supported", endianTag))
	}
	if h.HeaderSize != headerSize {
		return nil, utils.WrapError("parsing header", fmt.Errorf("BAD_HEADER: header_size %d, want %d", h.HeaderSize, headerSize))
	}
	if uint64(h.FileSize) > uint64(len(image)) {
		return nil, utils.WrapError("parsing header", fmt.Errorf("BOUNDS: file_size %d exceeds image length %d", h.FileSize, len(image)))
	}

	for _, s := range []struct {
		name       string
		size, off  uint32
		recordSize uint32
	}{
		{"string_ids", h.StringIDsSize, h.StringIDsOff, 4},
		{"type_ids", h.TypeIDsSize, h.TypeIDsOff, 4},
		{"proto_ids", h.ProtoIDsSize, h.ProtoIDsOff, 12},
		{"field_ids", h.FieldIDsSize, h.FieldIDsOff, 8},
		{"method_ids", h.MethodIDsSize, h.MethodIDsOff, 8},
		{"class_defs", h.ClassDefsSize, h.ClassDefsOff, 32},
	} {
		if s.size == 0 {
			continue
		}
		span, err := utils.SafeMultiply(uint64(s.size), uint64(s.recordSize))
		if err != nil {
			return nil, utils.WrapError("parsing header", fmt.Errorf("%s: %w", s.name, err))
		}
		if err := utils.ValidateBufferSize(span, utils.MaxSectionSize, s.name); err != nil {
			return nil, utils.WrapError("parsing header", err)
		}
		if err := utils.CheckOffsetRange(s.off, uint32(span), h.FileSize); err != nil {
			return nil, utils.WrapError("parsing header", fmt.Errorf("%s: %w", s.name, err))
		}
	}

	return h, nil
}
