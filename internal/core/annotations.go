package core

import "github.com/godexlib/dex/internal/utils"

// AnnotationItem is one decoded annotation_item: its visibility and
// payload.
type AnnotationItem struct {
	Visibility AnnotationVisibility
	Annotation *Annotation
}

// Directory is the fully decoded annotations_directory_item attached to
// a class_def_item, keyed the way consumers need to look it up: by
// field_ids/method_ids index for members, in declaration order for the
// class itself and for each method's parameter list.
type Directory struct {
	ClassAnnotations []*AnnotationItem
	Fields           map[uint32][]*AnnotationItem
	Methods          map[uint32][]*AnnotationItem
	Parameters       map[uint32][][]*AnnotationItem
}

// ParseAnnotationSet decodes an annotation_set_item at off (0 means
// "no annotations").
func (p *Pool) ParseAnnotationSet(off uint32) ([]*AnnotationItem, error) {
	if off == 0 {
		return nil, nil
	}
	size, err := utils.Uint(p.image, int(off))
	if err != nil {
		return nil, utils.WrapError("decoding annotation_set_item", err)
	}
	out := make([]*AnnotationItem, 0, size)
	pos := int(off) + 4
	for i := uint32(0); i < size; i++ {
		itemOff, err := utils.Uint(p.image, pos)
		if err != nil {
			return nil, utils.WrapError("decoding annotation_set_item", err)
		}
		pos += 4
		item, err := p.parseAnnotationItem(itemOff)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func (p *Pool) parseAnnotationItem(off uint32) (*AnnotationItem, error) {
	vis, err := utils.Ubyte(p.image, int(off))
	if err != nil {
		return nil, utils.WrapError("decoding annotation_item", err)
	}
	ann, _, err := p.EncodedAnnotation(p.image, int(off)+1)
	if err != nil {
		return nil, utils.WrapError("decoding annotation_item", err)
	}
	return &AnnotationItem{Visibility: AnnotationVisibility(vis), Annotation: ann}, nil
}

// ParseAnnotationSetRefList decodes an annotation_set_ref_list, used for
// per-parameter annotation lists (one annotation_set per parameter).
func (p *Pool) ParseAnnotationSetRefList(off uint32) ([][]*AnnotationItem, error) {
	if off == 0 {
		return nil, nil
	}
	size, err := utils.Uint(p.image, int(off))
	if err != nil {
		return nil, utils.WrapError("decoding annotation_set_ref_list", err)
	}
	out := make([][]*AnnotationItem, 0, size)
	pos := int(off) + 4
	for i := uint32(0); i < size; i++ {
		setOff, err := utils.Uint(p.image, pos)
		if err != nil {
			return nil, utils.WrapError("decoding annotation_set_ref_list", err)
		}
		pos += 4
		set, err := p.ParseAnnotationSet(setOff)
		if err != nil {
			return nil, err
		}
		out = append(out, set)
	}
	return out, nil
}

// ParseAnnotationsDirectory decodes the annotations_directory_item at
// off (0 means the class has no annotations at all).
func (p *Pool) ParseAnnotationsDirectory(off uint32) (*Directory, error) {
	d := &Directory{
		Fields:     map[uint32][]*AnnotationItem{},
		Methods:    map[uint32][]*AnnotationItem{},
		Parameters: map[uint32][][]*AnnotationItem{},
	}
	if off == 0 {
		return d, nil
	}

	read32 := func(pos int) (uint32, error) { return utils.Uint(p.image, pos) }

	classAnnOff, err := read32(int(off))
	if err != nil {
		return nil, utils.WrapError("decoding annotations_directory_item", err)
	}
	fieldsSize, err := read32(int(off) + 4)
	if err != nil {
		return nil, utils.WrapError("decoding annotations_directory_item", err)
	}
	methodsSize, err := read32(int(off) + 8)
	if err != nil {
		return nil, utils.WrapError("decoding annotations_directory_item", err)
	}
	paramsSize, err := read32(int(off) + 12)
	if err != nil {
		return nil, utils.WrapError("decoding annotations_directory_item", err)
	}

	if d.ClassAnnotations, err = p.ParseAnnotationSet(classAnnOff); err != nil {
		return nil, err
	}

	pos := int(off) + 16
	for i := uint32(0); i < fieldsSize; i++ {
		fieldIdx, err := read32(pos)
		if err != nil {
			return nil, utils.WrapError("decoding field_annotation", err)
		}
		annOff, err := read32(pos + 4)
		if err != nil {
			return nil, utils.WrapError("decoding field_annotation", err)
		}
		pos += 8
		set, err := p.ParseAnnotationSet(annOff)
		if err != nil {
			return nil, err
		}
		d.Fields[fieldIdx] = set
	}

	for i := uint32(0); i < methodsSize; i++ {
		methodIdx, err := read32(pos)
		if err != nil {
			return nil, utils.WrapError("decoding method_annotation", err)
		}
		annOff, err := read32(pos + 4)
		if err != nil {
			return nil, utils.WrapError("decoding method_annotation", err)
		}
		pos += 8
		set, err := p.ParseAnnotationSet(annOff)
		if err != nil {
			return nil, err
		}
		d.Methods[methodIdx] = set
	}

	for i := uint32(0); i < paramsSize; i++ {
		methodIdx, err := read32(pos)
		if err != nil {
			return nil, utils.WrapError("decoding parameter_annotation", err)
		}
		refListOff, err := read32(pos + 4)
		if err != nil {
			return nil, utils.WrapError("decoding parameter_annotation", err)
		}
		pos += 8
		refs, err := p.ParseAnnotationSetRefList(refListOff)
		if err != nil {
			return nil, err
		}
		d.Parameters[methodIdx] = refs
	}

	return d, nil
}
