package dex

import "github.com/godexlib/dex/internal/core"

// The visitor tree is defined in internal/core, where the orchestrator
// that drives it lives; these aliases give package dex a self-contained
// public API without exposing internal/core itself.
type (
	DexFileVisitor       = core.FileVisitor
	DexClassVisitor      = core.ClassVisitor
	DexFieldVisitor      = core.FieldVisitor
	DexMethodVisitor     = core.MethodVisitor
	DexCodeVisitor       = core.CodeVisitor
	DexDebugVisitor      = core.DebugVisitor
	DexAnnotationVisitor = core.AnnotationVisitor

	Label       = core.Label
	Instruction = core.Instruction
	SwitchCase  = core.SwitchCase
	FieldRef    = core.FieldRef
	MethodRef   = core.MethodRef

	AnnotationVisibility = core.AnnotationVisibility
)

const (
	VisibilityBuild   = core.VisibilityBuild
	VisibilityRuntime = core.VisibilityRuntime
	VisibilitySystem  = core.VisibilitySystem
)
