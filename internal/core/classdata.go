package core

import (
	"log"

	"github.com/godexlib/dex/internal/utils"
)

// EncodedField is one class_data_item field entry, with its
// accumulated (not delta) field_ids index.
type EncodedField struct {
	FieldIdx    uint32
	AccessFlags uint32
}

// EncodedMethod is one class_data_item method entry, with its
// accumulated method_ids index and the code_item offset (0 if the
// method is abstract or native and has no body).
type EncodedMethod struct {
	MethodIdx   uint32
	AccessFlags uint32
	CodeOff     uint32
}

// ClassData is the fully decoded class_data_item: four index-accumulated
// lists in declaration order.
type ClassData struct {
	StaticFields   []EncodedField
	InstanceFields []EncodedField
	DirectMethods  []EncodedMethod
	VirtualMethods []EncodedMethod
}

// ParseClassData decodes the class_data_item at off. off == 0 means the
// class declares no fields or methods at all; ParseClassData returns an
// empty, non-nil ClassData in that case.
func ParseClassData(image []byte, off uint32) (*ClassData, error) {
	cd := &ClassData{}
	if off == 0 {
		return cd, nil
	}

	pos := int(off)
	sizes := make([]uint32, 4)
	for i := range sizes {
		v, next, err := utils.ReadULEB128(image, pos)
		if err != nil {
			return nil, utils.WrapError("decoding class_data_item", err)
		}
		sizes[i] = v
		pos = next
	}

	readFields := func(count uint32) ([]EncodedField, error) {
		out := make([]EncodedField, 0, count)
		var idx uint32
		for i := uint32(0); i < count; i++ {
			diff, next, err := utils.ReadULEB128(image, pos)
			if err != nil {
				return nil, err
			}
			pos = next
			idx += diff
			flags, next2, err := utils.ReadULEB128(image, pos)
			if err != nil {
				return nil, err
			}
			pos = next2
			out = append(out, EncodedField{FieldIdx: idx, AccessFlags: flags})
		}
		return out, nil
	}

	readMethods := func(count uint32) ([]EncodedMethod, error) {
		out := make([]EncodedMethod, 0, count)
		var idx uint32
		for i := uint32(0); i < count; i++ {
			diff, next, err := utils.ReadULEB128(image, pos)
			if err != nil {
				return nil, err
			}
			pos = next
			idx += diff
			flags, next2, err := utils.ReadULEB128(image, pos)
			if err != nil {
				return nil, err
			}
			pos = next2
			codeOff, next3, err := utils.ReadULEB128(image, pos)
			if err != nil {
				return nil, err
			}
			pos = next3
			out = append(out, EncodedMethod{MethodIdx: idx, AccessFlags: flags, CodeOff: codeOff})
		}
		return out, nil
	}

	var err error
	if cd.StaticFields, err = readFields(sizes[0]); err != nil {
		return nil, utils.WrapError("decoding static_fields", err)
	}
	if cd.InstanceFields, err = readFields(sizes[1]); err != nil {
		return nil, utils.WrapError("decoding instance_fields", err)
	}
	if cd.DirectMethods, err = readMethods(sizes[2]); err != nil {
		return nil, utils.WrapError("decoding direct_methods", err)
	}
	if cd.VirtualMethods, err = readMethods(sizes[3]); err != nil {
		return nil, utils.WrapError("decoding virtual_methods", err)
	}
	return cd, nil
}

// DedupMethods drops later entries that repeat an earlier entry's
// MethodIdx, the policy class_data_item nominally forbids but some
// writers violate; disabled by the KeepAllMethods flag. Each drop is
// logged as a WARN through logger.
func DedupMethods(methods []EncodedMethod, logger *log.Logger) []EncodedMethod {
	seen := make(map[uint32]bool, len(methods))
	out := make([]EncodedMethod, 0, len(methods))
	for _, m := range methods {
		if seen[m.MethodIdx] {
			logger.Printf("WARN: duplicated method method_ids[%d], dropping repeat", m.MethodIdx)
			continue
		}
		seen[m.MethodIdx] = true
		out = append(out, m)
	}
	return out
}

// IsConstructor reports whether name is an instance or static
// constructor name, the two special method names DEX reserves.
func IsConstructor(name string) bool {
	return name == "<init>" || name == "<clinit>"
}
