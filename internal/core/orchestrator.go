package core

import (
	"log"

	"github.com/godexlib/dex/internal/utils"
)

const noIndex = 0xFFFFFFFF

// AccConstructor is the access_flags bit (0x10000) dex writers are
// expected to set on every <init>/<clinit> method.
const AccConstructor = 0x10000

// ClassDef is a decoded class_def_item.
type ClassDef struct {
	ClassIdx        uint32
	AccessFlags     uint32
	SuperclassIdx   uint32
	InterfacesOff   uint32
	SourceFileIdx   uint32
	AnnotationsOff  uint32
	ClassDataOff    uint32
	StaticValuesOff uint32
}

func parseClassDef(image []byte, off int) (ClassDef, error) {
	var cd ClassDef
	read := func(o int) (uint32, error) { return utils.Uint(image, o) }

	fields := []*uint32{
		&cd.ClassIdx, &cd.AccessFlags, &cd.SuperclassIdx, &cd.InterfacesOff,
		&cd.SourceFileIdx, &cd.AnnotationsOff, &cd.ClassDataOff, &cd.StaticValuesOff,
	}
	for i, f := range fields {
		v, err := read(off + i*4)
		if err != nil {
			return cd, err
		}
		*f = v
	}
	return cd, nil
}

// Pipe drives the full visitor tree over image: one FileVisitor.Visit
// call per class_def_item, in class_defs order, honoring flags. A class
// whose decode fails aborts the whole call unless flags has
// IgnoreReadException, in which case the failure is logged and that
// class is skipped.
func Pipe(image []byte, v FileVisitor, flags Flag, logger *log.Logger) error {
	header, err := ParseHeader(image)
	if err != nil {
		return utils.WrapError("pipe", err)
	}
	pool := NewPool(image, header)

	for i := uint32(0); i < header.ClassDefsSize; i++ {
		off := int(header.ClassDefsOff) + int(i)*32
		cd, err := parseClassDef(image, off)
		if err != nil {
			cerr := &ClassError{Index: i, Err: err}
			if flags.Has(IgnoreReadException) {
				logger.Printf("skipping class_defs[%d]: %v", i, cerr)
				continue
			}
			return cerr
		}

		if err := pipeClass(pool, cd, v, flags, logger); err != nil {
			className, _ := pool.Type(cd.ClassIdx)
			cerr := &ClassError{Index: i, ClassName: className, Err: err}
			if flags.Has(IgnoreReadException) {
				logger.Printf("skipping class: %v", cerr)
				continue
			}
			return cerr
		}
	}

	v.VisitEnd()
	return nil
}

func pipeClass(pool *Pool, cd ClassDef, v FileVisitor, flags Flag, logger *log.Logger) error {
	className, err := pool.Type(cd.ClassIdx)
	if err != nil {
		return err
	}
	superClass := ""
	if cd.SuperclassIdx != noIndex {
		if superClass, err = pool.Type(cd.SuperclassIdx); err != nil {
			return err
		}
	}
	interfaces, err := pool.TypeList(cd.InterfacesOff)
	if err != nil {
		return err
	}

	cv := v.Visit(cd.AccessFlags, className, superClass, interfaces)
	if cv == nil {
		return nil
	}
	defer cv.VisitEnd()

	if !flags.Has(SkipDebug) && cd.SourceFileIdx != noIndex {
		sourceFile, err := pool.String(cd.SourceFileIdx)
		if err != nil {
			return err
		}
		cv.VisitSourceFile(sourceFile)
	}

	var dir *Directory
	if !flags.Has(SkipAnnotation) {
		if dir, err = pool.ParseAnnotationsDirectory(cd.AnnotationsOff); err != nil {
			return err
		}
		for _, ann := range dir.ClassAnnotations {
			visitAnnotationTree(cv.VisitAnnotation(ann.Annotation.Type, ann.Visibility), ann.Annotation)
		}
	} else {
		dir = &Directory{Fields: map[uint32][]*AnnotationItem{}, Methods: map[uint32][]*AnnotationItem{}, Parameters: map[uint32][][]*AnnotationItem{}}
	}

	cdata, err := ParseClassData(pool.image, cd.ClassDataOff)
	if err != nil {
		return err
	}

	var staticValues []interface{}
	if cd.ClassDataOff != 0 && cd.StaticValuesOff != 0 && !flags.Has(SkipFieldConstant) {
		if staticValues, _, err = pool.EncodedArray(pool.image, int(cd.StaticValuesOff)); err != nil {
			return err
		}
	}

	allFields := append(append([]EncodedField{}, cdata.StaticFields...), cdata.InstanceFields...)
	for i, ef := range allFields {
		fieldRef, err := pool.Field(ef.FieldIdx)
		if err != nil {
			return err
		}
		var value interface{}
		if i < len(staticValues) {
			value = staticValues[i]
		}
		fv := cv.VisitField(ef.AccessFlags, fieldRef, value)
		if fv == nil {
			continue
		}
		for _, ann := range dir.Fields[ef.FieldIdx] {
			visitAnnotationTree(fv.VisitAnnotation(ann.Annotation.Type, ann.Visibility), ann.Annotation)
		}
		fv.VisitEnd()
	}

	directMethods := cdata.DirectMethods
	virtualMethods := cdata.VirtualMethods
	if !flags.Has(KeepAllMethods) {
		directMethods = DedupMethods(directMethods, logger)
		virtualMethods = DedupMethods(virtualMethods, logger)
	}
	allMethods := append(append([]EncodedMethod{}, directMethods...), virtualMethods...)

	for _, em := range allMethods {
		if err := pipeMethod(pool, em, dir, cv, flags, logger); err != nil {
			name, _ := pool.Method(em.MethodIdx)
			return &MethodError{MethodName: name.Name, Err: err}
		}
	}

	return nil
}

func pipeMethod(pool *Pool, em EncodedMethod, dir *Directory, cv ClassVisitor, flags Flag, logger *log.Logger) error {
	methodRef, err := pool.Method(em.MethodIdx)
	if err != nil {
		return err
	}
	if IsConstructor(methodRef.Name) && em.AccessFlags&AccConstructor == 0 {
		logger.Printf("WARN: method %s lacks ACC_CONSTRUCTOR", methodRef.Name)
	}

	mv := cv.VisitMethod(em.AccessFlags, methodRef)
	if mv == nil {
		return nil
	}
	defer mv.VisitEnd()

	for _, ann := range dir.Methods[em.MethodIdx] {
		visitAnnotationTree(mv.VisitAnnotation(ann.Annotation.Type, ann.Visibility), ann.Annotation)
	}
	for pi, paramSet := range dir.Parameters[em.MethodIdx] {
		for _, ann := range paramSet {
			visitAnnotationTree(mv.VisitParameterAnnotation(pi, ann.Annotation.Type, ann.Visibility), ann.Annotation)
		}
	}

	skipCode := flags.Has(SkipCode)
	if skipCode && flags.Has(KeepClinit) && methodRef.Name == "<clinit>" {
		skipCode = false
	}
	if em.CodeOff == 0 || skipCode {
		return nil
	}
	cvv := mv.VisitCode()
	if cvv == nil {
		return nil
	}
	defer cvv.VisitEnd()

	ci, err := ParseCodeItem(pool.image, em.CodeOff)
	if err != nil {
		return err
	}
	cvv.VisitRegisters(ci.RegistersSize, ci.InsSize, ci.OutsSize)

	var tries []TryBlock
	if ci.TriesSize > 0 {
		if tries, err = pool.ParseTries(ci.TriesOff, ci.HandlersOff, uint32(ci.TriesSize)); err != nil {
			return err
		}
		for _, tb := range tries {
			var types []string
			var labels []Label
			for _, h := range tb.Handlers {
				types = append(types, h.Type)
				labels = append(labels, Label{Offset: h.Addr})
			}
			var catchAll *Label
			if tb.CatchAll != nil {
				catchAll = &Label{Offset: *tb.CatchAll}
			}
			cvv.VisitTryCatch(Label{Offset: tb.StartAddr}, Label{Offset: tb.EndAddr}, types, labels, catchAll)
		}
	}

	if err := Traverse(pool, ci, tries, cvv, logger); err != nil {
		return err
	}

	if !flags.Has(SkipDebug) && ci.DebugInfoOff != 0 {
		info, err := pool.ParseDebugInfo(ci.DebugInfoOff)
		if err != nil {
			return err
		}
		for i, name := range info.ParameterNames {
			if name != "" {
				mv.VisitParameterName(i, name)
			}
		}
		if dv := cvv.VisitDebug(); dv != nil {
			if err := pool.Run(info, dv); err != nil {
				return err
			}
		}
	}

	return nil
}

func visitAnnotationTree(av AnnotationVisitor, ann *Annotation) {
	if av == nil {
		return
	}
	for _, elem := range ann.Elements {
		av.Visit(elem.Name, elem.Value)
	}
	av.VisitEnd()
}
