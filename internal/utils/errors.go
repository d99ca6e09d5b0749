// Package utils provides shared primitives for the DEX reader:
// contextual errors, overflow-safe arithmetic, and little-endian
// decoding of the wire formats DEX uses (fixed-width integers, ULEB128,
// SLEB128, and MUTF-8 strings).
package utils

import "fmt"

// DexError represents a structured, contextual decode error.
type DexError struct {
	Context string
	Cause   error
}

// Error implements the error interface.
func (e *DexError) Error() string {
	return fmt.Sprintf("%s: %v", e.Context, e.Cause)
}

// WrapError creates a contextual error. Returns nil if cause is nil, so
// callers can write `return utils.WrapError(ctx, err)` unconditionally.
func WrapError(context string, cause error) error {
	if cause == nil {
		return nil
	}
	return &DexError{
		Context: context,
		Cause:   cause,
	}
}

// Unwrap provides compatibility with errors.Unwrap().
func (e *DexError) Unwrap() error {
	return e.Cause
}
