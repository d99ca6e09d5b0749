package core

import (
	"fmt"
	"math"

	"github.com/godexlib/dex/internal/utils"
)

// Value type tags from encoded_value's header byte (bits 0..4).
const (
	valueByte       = 0x00
	valueShort      = 0x02
	valueChar       = 0x03
	valueInt        = 0x04
	valueLong       = 0x06
	valueFloat      = 0x10
	valueDouble     = 0x11
	valueMethodType = 0x15
	valueMethodHdl  = 0x16
	valueString     = 0x17
	valueType       = 0x18
	valueField      = 0x19
	valueMethod     = 0x1a
	valueEnum       = 0x1b
	valueArray      = 0x1c
	valueAnnotation = 0x1d
	valueNull       = 0x1e
	valueBoolean    = 0x1f
)

// Annotation is the decoded form of an encoded_annotation: a type and
// its name/value element pairs, in declaration order.
type Annotation struct {
	Type     string
	Elements []AnnotationElement
}

// AnnotationElement is one name/value pair of an encoded_annotation.
type AnnotationElement struct {
	Name  string
	Value interface{}
}

// encodedValue decodes one encoded_value starting at off, returning the
// Go value, the offset just past it, and any error.
func (p *Pool) encodedValue(b []byte, off int) (interface{}, int, error) {
	header, err := utils.Ubyte(b, off)
	if err != nil {
		return nil, off, utils.WrapError("decoding encoded_value", err)
	}
	tag := header & 0x1F
	pos := off + 1

	switch tag {
	case valueByte:
		v, next, err := utils.ReadIntBits(b, pos, header)
		return int8(v), next, err
	case valueShort:
		v, next, err := utils.ReadIntBits(b, pos, header)
		return int16(v), next, err
	case valueChar:
		v, next, err := utils.ReadUintBits(b, pos, header)
		return uint16(v), next, err
	case valueInt:
		v, next, err := utils.ReadIntBits(b, pos, header)
		return int32(v), next, err
	case valueLong:
		v, next, err := utils.ReadIntBits(b, pos, header)
		return v, next, err
	case valueFloat:
		bits, next, err := utils.ReadFloatBits(b, pos, header)
		if err != nil {
			return nil, next, err
		}
		return math.Float32frombits(uint32(bits >> 32)), next, nil
	case valueDouble:
		bits, next, err := utils.ReadFloatBits(b, pos, header)
		if err != nil {
			return nil, next, err
		}
		return math.Float64frombits(bits), next, nil
	case valueMethodType, valueMethodHdl:
		v, next, err := utils.ReadUintBits(b, pos, header)
		return uint32(v), next, err
	case valueString:
		idx, next, err := utils.ReadUintBits(b, pos, header)
		if err != nil {
			return nil, next, err
		}
		s, err := p.String(uint32(idx))
		return s, next, err
	case valueType:
		idx, next, err := utils.ReadUintBits(b, pos, header)
		if err != nil {
			return nil, next, err
		}
		s, err := p.Type(uint32(idx))
		return s, next, err
	case valueField, valueEnum:
		idx, next, err := utils.ReadUintBits(b, pos, header)
		if err != nil {
			return nil, next, err
		}
		ref, err := p.Field(uint32(idx))
		return ref, next, err
	case valueMethod:
		idx, next, err := utils.ReadUintBits(b, pos, header)
		if err != nil {
			return nil, next, err
		}
		ref, err := p.Method(uint32(idx))
		return ref, next, err
	case valueArray:
		return p.encodedArray(b, pos)
	case valueAnnotation:
		return p.encodedAnnotation(b, pos)
	case valueNull:
		return nil, pos, nil
	case valueBoolean:
		return (header>>5)&0x1 != 0, pos, nil
	default:
		return nil, pos, fmt.Errorf("BAD_VALUE: unknown encoded_value tag 0x%02x at offset %d", tag, off)
	}
}

// encodedArray decodes an encoded_array (size-prefixed list of
// encoded_value), used both standalone (static field initial values)
// and nested inside VALUE_ARRAY.
func (p *Pool) encodedArray(b []byte, off int) ([]interface{}, int, error) {
	size, pos, err := utils.ReadULEB128(b, off)
	if err != nil {
		return nil, pos, utils.WrapError("decoding encoded_array", err)
	}
	out := make([]interface{}, 0, size)
	for i := uint32(0); i < size; i++ {
		var v interface{}
		v, pos, err = p.encodedValue(b, pos)
		if err != nil {
			return nil, pos, err
		}
		out = append(out, v)
	}
	return out, pos, nil
}

func (p *Pool) encodedAnnotation(b []byte, off int) (*Annotation, int, error) {
	typeIdx, pos, err := utils.ReadULEB128(b, off)
	if err != nil {
		return nil, pos, utils.WrapError("decoding encoded_annotation", err)
	}
	typeName, err := p.Type(typeIdx)
	if err != nil {
		return nil, pos, utils.WrapError("decoding encoded_annotation", err)
	}
	size, pos2, err := utils.ReadULEB128(b, pos)
	if err != nil {
		return nil, pos2, utils.WrapError("decoding encoded_annotation", err)
	}
	pos = pos2

	elems := make([]AnnotationElement, 0, size)
	for i := uint32(0); i < size; i++ {
		nameIdx, next, err := utils.ReadULEB128(b, pos)
		if err != nil {
			return nil, next, utils.WrapError("decoding encoded_annotation", err)
		}
		pos = next
		name, err := p.String(nameIdx)
		if err != nil {
			return nil, pos, utils.WrapError("decoding encoded_annotation", err)
		}
		var v interface{}
		v, pos, err = p.encodedValue(b, pos)
		if err != nil {
			return nil, pos, err
		}
		elems = append(elems, AnnotationElement{Name: name, Value: v})
	}
	return &Annotation{Type: typeName, Elements: elems}, pos, nil
}

// EncodedArray is the exported entry point for standalone encoded_array
// fields (class_def_item.static_values, annotation_element arrays).
func (p *Pool) EncodedArray(b []byte, off int) ([]interface{}, int, error) {
	return p.encodedArray(b, off)
}

// EncodedAnnotation is the exported entry point for standalone
// encoded_annotation items (annotation_item bodies).
func (p *Pool) EncodedAnnotation(b []byte, off int) (*Annotation, int, error) {
	return p.encodedAnnotation(b, off)
}
