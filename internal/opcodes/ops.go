package opcodes

// Info describes one opcode's decode shape and control-flow behavior.
type Info struct {
	Name        string
	Format      Format
	Index       IndexType
	CanBranch   bool // unconditional or conditional jump to a code-relative target
	CanSwitch   bool // packed-switch / sparse-switch
	CanContinue bool // execution may fall through to the next instruction
	Defined     bool
}

// Table is indexed by opcode byte (0x00-0xFF). Undefined slots decode as
// the zero Info (Defined == false), matching spec's BAD_OP handling: a
// zero-width warning rather than a hard failure.
var Table [256]Info

func set(op byte, name string, f Format, idx IndexType, branch, sw, cont bool) {
	Table[op] = Info{Name: name, Format: f, Index: idx, CanBranch: branch, CanSwitch: sw, CanContinue: cont, Defined: true}
}

func init() {
	set(0x00, "nop", Fmt10x, IndexNone, false, false, true)

	set(0x01, "move", Fmt12x, IndexNone, false, false, true)
	set(0x02, "move/from16", Fmt22x, IndexNone, false, false, true)
	set(0x03, "move/16", Fmt32x, IndexNone, false, false, true)
	set(0x04, "move-wide", Fmt12x, IndexNone, false, false, true)
	set(0x05, "move-wide/from16", Fmt22x, IndexNone, false, false, true)
	set(0x06, "move-wide/16", Fmt32x, IndexNone, false, false, true)
	set(0x07, "move-object", Fmt12x, IndexNone, false, false, true)
	set(0x08, "move-object/from16", Fmt22x, IndexNone, false, false, true)
	set(0x09, "move-object/16", Fmt32x, IndexNone, false, false, true)

	set(0x0a, "move-result", Fmt11x, IndexNone, false, false, true)
	set(0x0b, "move-result-wide", Fmt11x, IndexNone, false, false, true)
	set(0x0c, "move-result-object", Fmt11x, IndexNone, false, false, true)
	set(0x0d, "move-exception", Fmt11x, IndexNone, false, false, true)

	set(0x0e, "return-void", Fmt10x, IndexNone, false, false, false)
	set(0x0f, "return", Fmt11x, IndexNone, false, false, false)
	set(0x10, "return-wide", Fmt11x, IndexNone, false, false, false)
	set(0x11, "return-object", Fmt11x, IndexNone, false, false, false)

	set(0x12, "const/4", Fmt11n, IndexNone, false, false, true)
	set(0x13, "const/16", Fmt21s, IndexNone, false, false, true)
	set(0x14, "const", Fmt31i, IndexNone, false, false, true)
	set(0x15, "const/high16", Fmt21h, IndexNone, false, false, true)
	set(0x16, "const-wide/16", Fmt21s, IndexNone, false, false, true)
	set(0x17, "const-wide/32", Fmt31i, IndexNone, false, false, true)
	set(0x18, "const-wide", Fmt51l, IndexNone, false, false, true)
	set(0x19, "const-wide/high16", Fmt21h, IndexNone, false, false, true)
	set(0x1a, "const-string", Fmt21c, IndexString, false, false, true)
	set(0x1b, "const-string/jumbo", Fmt31c, IndexString, false, false, true)
	set(0x1c, "const-class", Fmt21c, IndexType_, false, false, true)

	set(0x1d, "monitor-enter", Fmt11x, IndexNone, false, false, true)
	set(0x1e, "monitor-exit", Fmt11x, IndexNone, false, false, true)
	set(0x1f, "check-cast", Fmt21c, IndexType_, false, false, true)
	set(0x20, "instance-of", Fmt22c, IndexType_, false, false, true)
	set(0x21, "array-length", Fmt12x, IndexNone, false, false, true)
	set(0x22, "new-instance", Fmt21c, IndexType_, false, false, true)
	set(0x23, "new-array", Fmt22c, IndexType_, false, false, true)
	set(0x24, "filled-new-array", Fmt35c, IndexType_, false, false, true)
	set(0x25, "filled-new-array/range", Fmt3rc, IndexType_, false, false, true)
	set(0x26, "fill-array-data", Fmt31t, IndexNone, false, false, true)
	set(0x27, "throw", Fmt11x, IndexNone, false, false, false)

	set(0x28, "goto", Fmt10t, IndexNone, true, false, false)
	set(0x29, "goto/16", Fmt20t, IndexNone, true, false, false)
	set(0x2a, "goto/32", Fmt30t, IndexNone, true, false, false)
	set(0x2b, "packed-switch", Fmt31t, IndexNone, false, true, true)
	set(0x2c, "sparse-switch", Fmt31t, IndexNone, false, true, true)

	cmp := []string{"cmpl-float", "cmpg-float", "cmpl-double", "cmpg-double", "cmp-long"}
	for i, name := range cmp {
		set(byte(0x2d+i), name, Fmt23x, IndexNone, false, false, true)
	}

	ifTest := []string{"if-eq", "if-ne", "if-lt", "if-ge", "if-gt", "if-le"}
	for i, name := range ifTest {
		set(byte(0x32+i), name, Fmt22t, IndexNone, true, false, true)
	}
	ifTestz := []string{"if-eqz", "if-nez", "if-ltz", "if-gez", "if-gtz", "if-lez"}
	for i, name := range ifTestz {
		set(byte(0x38+i), name, Fmt21t, IndexNone, true, false, true)
	}

	arrayOp := []string{"aget", "aget-wide", "aget-object", "aget-boolean", "aget-byte", "aget-char", "aget-short",
		"aput", "aput-wide", "aput-object", "aput-boolean", "aput-byte", "aput-char", "aput-short"}
	for i, name := range arrayOp {
		set(byte(0x44+i), name, Fmt23x, IndexNone, false, false, true)
	}

	instanceOp := []string{"iget", "iget-wide", "iget-object", "iget-boolean", "iget-byte", "iget-char", "iget-short",
		"iput", "iput-wide", "iput-object", "iput-boolean", "iput-byte", "iput-char", "iput-short"}
	for i, name := range instanceOp {
		set(byte(0x52+i), name, Fmt22c, IndexField, false, false, true)
	}

	staticOp := []string{"sget", "sget-wide", "sget-object", "sget-boolean", "sget-byte", "sget-char", "sget-short",
		"sput", "sput-wide", "sput-object", "sput-boolean", "sput-byte", "sput-char", "sput-short"}
	for i, name := range staticOp {
		set(byte(0x60+i), name, Fmt21c, IndexField, false, false, true)
	}

	invoke := []string{"invoke-virtual", "invoke-super", "invoke-direct", "invoke-static", "invoke-interface"}
	for i, name := range invoke {
		set(byte(0x6e+i), name, Fmt35c, IndexMethod, false, false, true)
	}
	invokeRange := []string{"invoke-virtual/range", "invoke-super/range", "invoke-direct/range", "invoke-static/range", "invoke-interface/range"}
	for i, name := range invokeRange {
		set(byte(0x74+i), name, Fmt3rc, IndexMethod, false, false, true)
	}

	unop := []string{"neg-int", "not-int", "neg-long", "not-long", "neg-float", "neg-double",
		"int-to-long", "int-to-float", "int-to-double", "long-to-int", "long-to-float", "long-to-double",
		"float-to-int", "float-to-long", "float-to-double", "double-to-int", "double-to-long", "double-to-float",
		"int-to-byte", "int-to-char", "int-to-short"}
	for i, name := range unop {
		set(byte(0x7b+i), name, Fmt12x, IndexNone, false, false, true)
	}

	binop := []string{"add-int", "sub-int", "mul-int", "div-int", "rem-int", "and-int", "or-int", "xor-int",
		"shl-int", "shr-int", "ushr-int",
		"add-long", "sub-long", "mul-long", "div-long", "rem-long", "and-long", "or-long", "xor-long",
		"shl-long", "shr-long", "ushr-long",
		"add-float", "sub-float", "mul-float", "div-float", "rem-float",
		"add-double", "sub-double", "mul-double", "div-double", "rem-double"}
	for i, name := range binop {
		set(byte(0x90+i), name, Fmt23x, IndexNone, false, false, true)
	}
	for i, name := range binop {
		set(byte(0xb0+i), name+"/2addr", Fmt12x, IndexNone, false, false, true)
	}

	lit16 := []string{"add-int/lit16", "rsub-int", "mul-int/lit16", "div-int/lit16", "rem-int/lit16", "and-int/lit16", "or-int/lit16", "xor-int/lit16"}
	for i, name := range lit16 {
		set(byte(0xd0+i), name, Fmt22s, IndexNone, false, false, true)
	}
	lit8 := []string{"add-int/lit8", "rsub-int/lit8", "mul-int/lit8", "div-int/lit8", "rem-int/lit8", "and-int/lit8",
		"or-int/lit8", "xor-int/lit8", "shl-int/lit8", "shr-int/lit8", "ushr-int/lit8"}
	for i, name := range lit8 {
		set(byte(0xd8+i), name, Fmt22b, IndexNone, false, false, true)
	}

	// 0x3e-0x43, 0x73, 0x79-0x7a, 0xe3-0xff are unassigned in the
	// standard (non-quickened) dex instruction set and are left at the
	// zero Info value, decoded as BAD_OP by the traversal engine.
}

// IsFillArrayData reports whether op is the fill-array-data pseudo-branch,
// which shares Fmt31t with packed-switch/sparse-switch but addresses a
// data payload rather than a set of code targets.
func IsFillArrayData(op byte) bool { return op == 0x26 }

// IsPackedSwitch reports whether op is packed-switch.
func IsPackedSwitch(op byte) bool { return op == 0x2b }

// IsSparseSwitch reports whether op is sparse-switch.
func IsSparseSwitch(op byte) bool { return op == 0x2c }

// IsTwoRegisterCompareBranch reports whether op is one of the six
// Fmt22t two-register compare branches (if-eq .. if-le). These are the
// only branches where both compared operands are registers, so they
// are the only ones subject to the degenerate b==c rewrite.
func IsTwoRegisterCompareBranch(op byte) bool { return op >= 0x32 && op <= 0x37 }

// DegenerateAlwaysTaken reports, for a two-register compare branch
// whose operands are equal, whether the comparison is always true
// (if-eq, if-ge, if-le collapse to an unconditional jump) as opposed
// to always false (if-ne, if-gt, if-lt collapse to a nop).
func DegenerateAlwaysTaken(op byte) bool {
	switch op {
	case 0x32, 0x35, 0x37: // if-eq, if-ge, if-le
		return true
	}
	return false
}
