// Package core implements the streaming DEX container decoder: section
// indexing, the constant pools, class/method/code traversal, and the
// try/catch and debug-info state machines that drive a caller-supplied
// visitor tree.
package core

// Flag is a bitmask of traversal options, passed through from the
// package dex public API to Pipe.
type Flag uint32

// Bit assignments match the documented configuration table exactly
// (note bit 1 is unused and EnableDebugLog sits far above the rest),
// so a caller comparing a raw bitmask against the documented table
// sees the same numbers this package uses.
const (
	// SkipDebug skips debug_info_item parsing and DexDebugVisitor calls.
	SkipDebug Flag = 1 << 0
	// SkipCode skips code_item bodies: no instruction traversal, no
	// DexCodeVisitor calls at all, except for <clinit> when KeepClinit is
	// also set.
	SkipCode Flag = 1 << 2
	// SkipAnnotation skips annotations_directory_item parsing.
	SkipAnnotation Flag = 1 << 3
	// SkipFieldConstant skips static field initial-value zipping from
	// encoded_array_item onto the visited field list.
	SkipFieldConstant Flag = 1 << 4
	// IgnoreReadException converts a class-scoped decode failure into a
	// logged warning and a skipped class, instead of aborting Pipe.
	IgnoreReadException Flag = 1 << 5
	// KeepAllMethods disables the dedup-by-signature policy applied to
	// class_data_item's method lists.
	KeepAllMethods Flag = 1 << 6
	// KeepClinit keeps decoding <clinit>'s body even when SkipCode is
	// set.
	KeepClinit Flag = 1 << 7
	// EnableDebugLog occupies bit 16 of the flag table. Pipe does not read
	// it: setting it adds no per-instruction logging.
	EnableDebugLog Flag = 1 << 16
)

// Has reports whether f contains all bits of other.
func (f Flag) Has(other Flag) bool { return f&other == other }

// Label identifies a code-unit offset within a method's instruction
// stream. Visitors compare Labels by Offset; two Labels with equal
// Offset refer to the same program point.
type Label struct {
	Offset uint32
}

// Instruction is a single decoded bytecode statement, already resolved
// against the constant pools: string/type/field/method indices are
// replaced with their decoded names, and branch/switch operands are
// replaced with Labels.
type Instruction struct {
	Offset    uint32
	Op        byte
	Mnemonic  string
	Registers []uint16

	// Exactly one of the following is populated, depending on the
	// opcode's index/operand kind.
	Literal     int64
	WideLiteral uint64
	StringVal   string
	TypeVal     string
	Field       *FieldRef
	Method      *MethodRef
	Target      *Label
	Targets     []SwitchCase
	ArrayData   *FillArrayData
}

// SwitchCase is one packed/sparse-switch entry: a key and its target.
type SwitchCase struct {
	Key    int32
	Target Label
}

// FillArrayData is the decoded payload of a fill-array-data instruction.
type FillArrayData struct {
	ElementWidth uint16
	Data         []byte
}

// FieldRef and MethodRef are resolved constant-pool references.
type FieldRef struct {
	DeclaringClass string
	Type           string
	Name           string
}

type MethodRef struct {
	DeclaringClass string
	ReturnType     string
	ParamTypes     []string
	Name           string
}

// AnnotationVisibility mirrors the DEX visibility byte of an
// annotation_item.
type AnnotationVisibility byte

const (
	VisibilityBuild   AnnotationVisibility = 0x00
	VisibilityRuntime AnnotationVisibility = 0x01
	VisibilitySystem  AnnotationVisibility = 0x02
)

// FileVisitor is the entry point of the visitor tree: Pipe calls Visit
// once per class_def_item, in class_defs order. Returning a nil
// DexClassVisitor skips that class's subtree entirely without an error.
type FileVisitor interface {
	Visit(accessFlags uint32, className, superClass string, interfaces []string) ClassVisitor
	VisitEnd()
}

// ClassVisitor receives one class's source file, fields, methods and
// annotations. Any Visit* method may return nil to skip that member's
// subtree.
type ClassVisitor interface {
	VisitSourceFile(name string)
	VisitAnnotation(name string, visibility AnnotationVisibility) AnnotationVisitor
	VisitField(accessFlags uint32, field FieldRef, value interface{}) FieldVisitor
	VisitMethod(accessFlags uint32, method MethodRef) MethodVisitor
	VisitEnd()
}

// FieldVisitor receives a single field's annotations.
type FieldVisitor interface {
	VisitAnnotation(name string, visibility AnnotationVisibility) AnnotationVisitor
	VisitEnd()
}

// MethodVisitor receives a method's code body, parameter names, and
// annotations.
type MethodVisitor interface {
	VisitParameterName(index int, name string)
	VisitAnnotation(name string, visibility AnnotationVisibility) AnnotationVisitor
	VisitParameterAnnotation(index int, name string, visibility AnnotationVisibility) AnnotationVisitor
	VisitCode() CodeVisitor
	VisitEnd()
}

// CodeVisitor receives a method body's registers/ins/outs counts, its
// instruction stream (in traversal order, interleaved with labels), its
// try/catch blocks, and its debug-info state machine.
type CodeVisitor interface {
	VisitRegisters(totalRegisters, insSize, outsSize uint16)
	VisitTryCatch(start, end Label, handlerTypes []string, handlerLabels []Label, catchAllHandler *Label)
	VisitLabel(label Label)
	VisitInstruction(insn Instruction)
	VisitDebug() DebugVisitor
	VisitEnd()
}

// DebugVisitor receives the expanded debug-info state-machine events:
// one per source-position/local-variable change.
type DebugVisitor interface {
	VisitLineNumber(line int, offset Label)
	VisitStartLocal(reg uint16, name, typeName, signature string, offset Label)
	VisitEndLocal(reg uint16, offset Label)
	VisitRestartLocal(reg uint16, offset Label)
	VisitPrologueEnd(offset Label)
	VisitEpilogueBegin(offset Label)
	VisitEnd()
}

// AnnotationVisitor receives an annotation's element name/value pairs.
type AnnotationVisitor interface {
	Visit(name string, value interface{})
	VisitEnd()
}
