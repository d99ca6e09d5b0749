// Package opcodes holds the static attribute table for the 256 Dalvik
// instruction opcodes: their wire format, operand width, and the index
// kind (if any) the format's constant-pool operand addresses.
package opcodes

// Format identifies the fixed code-unit layout of an instruction.
type Format int

const (
	FmtUnknown Format = iota
	Fmt10x            // op
	Fmt12x            // op vA, vB (nibbles)
	Fmt11n            // op vA, #+B (nibble literal)
	Fmt11x            // op vAA
	Fmt10t            // op +AA
	Fmt20t            // op +AAAA
	Fmt22x            // op vAA, vBBBB
	Fmt21t            // op vAA, +BBBB
	Fmt21s            // op vAA, #+BBBB
	Fmt21h            // op vAA, #+BBBB0000[...]
	Fmt21c            // op vAA, thing@BBBB
	Fmt23x            // op vAA, vBB, vCC
	Fmt22b            // op vAA, vBB, #+CC
	Fmt22s            // op vA, vB, #+CCCC
	Fmt22t            // op vA, vB, +CCCC
	Fmt22c            // op vA, vB, thing@CCCC
	Fmt32x            // op vAAAA, vBBBB
	Fmt30t            // op +AAAAAAAA
	Fmt31t            // op vAA, +BBBBBBBB
	Fmt31c            // op vAA, string@BBBBBBBB
	Fmt31i            // op vAA, #+BBBBBBBB
	Fmt35c            // op {vC,vD,vE,vF,vG}, thing@BBBB
	Fmt3rc            // op {vCCCC .. vNNNN}, thing@BBBB
	Fmt51l            // op vAA, #+BBBBBBBBBBBBBBBB
)

// CodeUnits returns the fixed length of an instruction in this format,
// measured in 16-bit code units.
func (f Format) CodeUnits() int {
	switch f {
	case Fmt10x, Fmt12x, Fmt11n, Fmt11x, Fmt10t:
		return 1
	case Fmt20t, Fmt22x, Fmt21t, Fmt21s, Fmt21h, Fmt21c, Fmt23x, Fmt22b, Fmt22s, Fmt22t, Fmt22c:
		return 2
	case Fmt32x, Fmt30t, Fmt31t, Fmt31c, Fmt31i, Fmt35c, Fmt3rc:
		return 3
	case Fmt51l:
		return 5
	default:
		return 0
	}
}

// IndexType identifies what kind of constant-pool entry a format's
// index-carrying operand addresses.
type IndexType int

const (
	IndexNone IndexType = iota
	IndexString
	IndexType_
	IndexField
	IndexMethod
)
