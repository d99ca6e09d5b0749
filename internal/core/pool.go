package core

import (
	"fmt"

	"github.com/godexlib/dex/internal/utils"
)

// Pool resolves every constant-pool reference in a dex image: strings,
// types, field/method signatures, and type_list parameter sequences. All
// accessors are pure reads over the image; nothing is cached beyond what
// a single Pipe call needs, since callers own one Pool per image.
type Pool struct {
	image  []byte
	header *Header
}

// NewPool builds a Pool bound to image and its already-parsed header.
func NewPool(image []byte, header *Header) *Pool {
	return &Pool{image: image, header: header}
}

// String resolves a string_ids index to its decoded value.
func (p *Pool) String(idx uint32) (string, error) {
	if idx == 0xFFFFFFFF {
		return "", nil
	}
	if err := utils.CheckIndexRange(int32(idx), p.header.StringIDsSize, "string_ids"); err != nil {
		return "", utils.WrapError("resolving string", err)
	}
	entryOff := int(p.header.StringIDsOff) + int(idx)*4
	dataOff, err := utils.Uint(p.image, entryOff)
	if err != nil {
		return "", utils.WrapError("resolving string", err)
	}
	count, pos, err := utils.ReadULEB128(p.image, int(dataOff))
	if err != nil {
		return "", utils.WrapError("resolving string", err)
	}
	if count > 0 {
		if err := utils.ValidateBufferSize(uint64(count), utils.MaxStringSize, "string_data_item"); err != nil {
			return "", utils.WrapError("resolving string", err)
		}
	}
	units, _, err := utils.DecodeMUTF8(p.image, pos, count)
	if err != nil {
		return "", utils.WrapError("resolving string", err)
	}
	return utils.UTF16ToString(units), nil
}

// Type resolves a type_ids index to its raw type descriptor (e.g.
// "Ljava/lang/String;", "I", "[[Z").
func (p *Pool) Type(idx uint32) (string, error) {
	if idx == 0xFFFFFFFF {
		return "", nil
	}
	if err := utils.CheckIndexRange(int32(idx), p.header.TypeIDsSize, "type_ids"); err != nil {
		return "", utils.WrapError("resolving type", err)
	}
	entryOff := int(p.header.TypeIDsOff) + int(idx)*4
	descIdx, err := utils.Uint(p.image, entryOff)
	if err != nil {
		return "", utils.WrapError("resolving type", err)
	}
	return p.String(descIdx)
}

// TypeList resolves a type_list offset (0 means "no list") to the
// ordered descriptor slice it names.
func (p *Pool) TypeList(off uint32) ([]string, error) {
	if off == 0 {
		return nil, nil
	}
	size, err := utils.Uint(p.image, int(off))
	if err != nil {
		return nil, utils.WrapError("resolving type_list", err)
	}
	out := make([]string, 0, size)
	pos := int(off) + 4
	for i := uint32(0); i < size; i++ {
		typeIdx, err := utils.Ushort(p.image, pos)
		if err != nil {
			return nil, utils.WrapError("resolving type_list", err)
		}
		desc, err := p.Type(uint32(typeIdx))
		if err != nil {
			return nil, utils.WrapError("resolving type_list", err)
		}
		out = append(out, desc)
		pos += 2
	}
	return out, nil
}

// protoEntry is a decoded proto_ids record.
type protoEntry struct {
	ShortyIdx     uint32
	ReturnTypeIdx uint32
	ParametersOff uint32
}

func (p *Pool) proto(idx uint32) (protoEntry, error) {
	if err := utils.CheckIndexRange(int32(idx), p.header.ProtoIDsSize, "proto_ids"); err != nil {
		return protoEntry{}, err
	}
	off := int(p.header.ProtoIDsOff) + int(idx)*12
	shorty, err := utils.Uint(p.image, off)
	if err != nil {
		return protoEntry{}, err
	}
	ret, err := utils.Uint(p.image, off+4)
	if err != nil {
		return protoEntry{}, err
	}
	params, err := utils.Uint(p.image, off+8)
	if err != nil {
		return protoEntry{}, err
	}
	return protoEntry{ShortyIdx: shorty, ReturnTypeIdx: ret, ParametersOff: params}, nil
}

// Field resolves a field_ids index to a fully-qualified FieldRef.
func (p *Pool) Field(idx uint32) (FieldRef, error) {
	if err := utils.CheckIndexRange(int32(idx), p.header.FieldIDsSize, "field_ids"); err != nil {
		return FieldRef{}, utils.WrapError("resolving field", err)
	}
	off := int(p.header.FieldIDsOff) + int(idx)*8
	classIdx, err := utils.Ushort(p.image, off)
	if err != nil {
		return FieldRef{}, utils.WrapError("resolving field", err)
	}
	typeIdx, err := utils.Ushort(p.image, off+2)
	if err != nil {
		return FieldRef{}, utils.WrapError("resolving field", err)
	}
	nameIdx, err := utils.Uint(p.image, off+4)
	if err != nil {
		return FieldRef{}, utils.WrapError("resolving field", err)
	}

	class, err := p.Type(uint32(classIdx))
	if err != nil {
		return FieldRef{}, utils.WrapError("resolving field", err)
	}
	ftype, err := p.Type(uint32(typeIdx))
	if err != nil {
		return FieldRef{}, utils.WrapError("resolving field", err)
	}
	name, err := p.String(nameIdx)
	if err != nil {
		return FieldRef{}, utils.WrapError("resolving field", err)
	}
	return FieldRef{DeclaringClass: class, Type: ftype, Name: name}, nil
}

// Method resolves a method_ids index to a fully-qualified MethodRef.
func (p *Pool) Method(idx uint32) (MethodRef, error) {
	if err := utils.CheckIndexRange(int32(idx), p.header.MethodIDsSize, "method_ids"); err != nil {
		return MethodRef{}, utils.WrapError("resolving method", err)
	}
	off := int(p.header.MethodIDsOff) + int(idx)*8
	classIdx, err := utils.Ushort(p.image, off)
	if err != nil {
		return MethodRef{}, utils.WrapError("resolving method", err)
	}
	protoIdx, err := utils.Ushort(p.image, off+2)
	if err != nil {
		return MethodRef{}, utils.WrapError("resolving method", err)
	}
	nameIdx, err := utils.Uint(p.image, off+4)
	if err != nil {
		return MethodRef{}, utils.WrapError("resolving method", err)
	}

	class, err := p.Type(uint32(classIdx))
	if err != nil {
		return MethodRef{}, utils.WrapError("resolving method", err)
	}
	name, err := p.String(nameIdx)
	if err != nil {
		return MethodRef{}, utils.WrapError("resolving method", err)
	}
	proto, err := p.proto(uint32(protoIdx))
	if err != nil {
		return MethodRef{}, utils.WrapError("resolving method", fmt.Errorf("proto_ids[%d]: %w", protoIdx, err))
	}
	ret, err := p.Type(proto.ReturnTypeIdx)
	if err != nil {
		return MethodRef{}, utils.WrapError("resolving method", err)
	}
	params, err := p.TypeList(proto.ParametersOff)
	if err != nil {
		return MethodRef{}, utils.WrapError("resolving method", err)
	}
	return MethodRef{DeclaringClass: class, ReturnType: ret, ParamTypes: params, Name: name}, nil
}
