package dex

import "github.com/godexlib/dex/internal/core"

// ClassError and MethodError are the scoped failure types Pipe's
// underlying errors unwrap to (via errors.As) when IgnoreReadException
// is not set and a class or method fails to decode.
type (
	ClassError  = core.ClassError
	MethodError = core.MethodError
)
