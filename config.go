package dex

import "github.com/godexlib/dex/internal/core"

// Flag is a bitmask of Pipe traversal options.
type Flag = core.Flag

// Named flags, OR'd together and passed to Reader.Pipe.
const (
	// SkipDebug skips debug_info_item parsing; DexCodeVisitor.VisitDebug
	// is never called.
	SkipDebug = core.SkipDebug
	// SkipCode skips code_item bodies entirely; DexMethodVisitor.VisitCode
	// is never called, except for <clinit> when KeepClinit is also set.
	SkipCode = core.SkipCode
	// SkipAnnotation skips annotations_directory_item parsing.
	SkipAnnotation = core.SkipAnnotation
	// SkipFieldConstant skips zipping encoded_array_item static field
	// initial values onto VisitField's value argument.
	SkipFieldConstant = core.SkipFieldConstant
	// IgnoreReadException turns a class-scoped decode failure into a
	// logged warning and a skipped class, instead of aborting Pipe.
	IgnoreReadException = core.IgnoreReadException
	// KeepAllMethods disables the default drop-duplicate-method-index
	// policy applied to class_data_item's method lists.
	KeepAllMethods = core.KeepAllMethods
	// KeepClinit keeps decoding <clinit>'s body even when SkipCode is
	// set; it has no effect unless SkipCode is also set.
	KeepClinit = core.KeepClinit
	// EnableDebugLog occupies bit 16 of the flag table. Pipe does not
	// read it: setting it adds no per-instruction logging.
	EnableDebugLog = core.EnableDebugLog
)
