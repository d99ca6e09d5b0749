package core

import (
	"fmt"
	"log"
	"sort"

	"github.com/godexlib/dex/internal/opcodes"
	"github.com/godexlib/dex/internal/utils"
)

// CodeItem is the decoded code_item header: register/parameter counts
// and the raw instruction stream's location, left undecoded until
// Traverse walks it.
type CodeItem struct {
	RegistersSize uint16
	InsSize       uint16
	OutsSize      uint16
	TriesSize     uint16
	DebugInfoOff  uint32
	InsnsSize     uint32
	InsnsOff      uint32 // absolute byte offset of the first instruction
	TriesOff      uint32 // 0 if TriesSize == 0
	HandlersOff   uint32
}

// ParseCodeItem decodes a code_item header at off.
func ParseCodeItem(image []byte, off uint32) (*CodeItem, error) {
	ci := &CodeItem{}
	pos := int(off)

	fields := []*uint16{&ci.RegistersSize, &ci.InsSize, &ci.OutsSize, &ci.TriesSize}
	for _, f := range fields {
		v, err := utils.Ushort(image, pos)
		if err != nil {
			return nil, utils.WrapError("decoding code_item", err)
		}
		*f = v
		pos += 2
	}

	var err error
	ci.DebugInfoOff, err = utils.Uint(image, pos)
	if err != nil {
		return nil, utils.WrapError("decoding code_item", err)
	}
	pos += 4
	ci.InsnsSize, err = utils.Uint(image, pos)
	if err != nil {
		return nil, utils.WrapError("decoding code_item", err)
	}
	if err := utils.ValidateBufferSize(uint64(ci.InsnsSize), utils.MaxInstructionStream, "code_item insns"); err != nil {
		return nil, utils.WrapError("decoding code_item", err)
	}
	pos += 4

	ci.InsnsOff = uint32(pos)
	pos += int(ci.InsnsSize) * 2

	if ci.TriesSize > 0 {
		if ci.InsnsSize%2 != 0 {
			pos += 2 // align to 4 bytes
		}
		ci.TriesOff = uint32(pos)
		pos += int(ci.TriesSize) * 8
		ci.HandlersOff = uint32(pos)
	}

	return ci, nil
}

// traversalState is the mutable state threaded through Pass A and Pass B.
type traversalState struct {
	pool    *Pool
	ci      *CodeItem
	visited []bool // indexed by code-unit address, true once an instruction starts there
	labels  map[uint32]bool
	logger  *log.Logger
}

// Traverse decodes ci's reachable instructions (a two-pass walk: Pass A
// discovers every reachable address via a work queue seeded from offset
// 0 plus every try/catch target; Pass B emits instructions in address
// order, interleaving VisitLabel calls at every discovered branch
// target) and drives cv.
func Traverse(pool *Pool, ci *CodeItem, tries []TryBlock, cv CodeVisitor, logger *log.Logger) error {
	st := &traversalState{
		pool:    pool,
		ci:      ci,
		visited: make([]bool, ci.InsnsSize+1),
		labels:  map[uint32]bool{},
		logger:  logger,
	}

	roots := []uint32{0}
	for _, tb := range tries {
		roots = append(roots, tb.StartAddr)
		for _, h := range tb.Handlers {
			roots = append(roots, h.Addr)
			st.labels[h.Addr] = true
		}
		if tb.CatchAll != nil {
			roots = append(roots, *tb.CatchAll)
			st.labels[*tb.CatchAll] = true
		}
		st.labels[tb.StartAddr] = true
	}

	if err := st.discover(roots); err != nil {
		return err
	}
	return st.emit(cv)
}

// discover runs Pass A: a work-queue walk that marks every reachable
// instruction start and records every branch/switch-case target as a
// label.
func (st *traversalState) discover(roots []uint32) error {
	queue := append([]uint32{}, roots...)
	queued := map[uint32]bool{}
	for _, r := range roots {
		queued[r] = true
	}

	for len(queue) > 0 {
		addr := queue[0]
		queue = queue[1:]
		if addr >= st.ci.InsnsSize || st.visited[addr] {
			continue
		}

		op, err := utils.Ubyte(st.pool.image, int(st.ci.InsnsOff)+int(addr)*2)
		if err != nil {
			return utils.WrapError("traversing code", err)
		}
		info := opcodes.Table[op]

		width := uint32(1)
		canContinue := true
		canBranch := false
		canSwitch := false
		if info.Defined {
			width = uint32(info.Format.CodeUnits())
			canContinue = info.CanContinue
			canBranch = info.CanBranch
			canSwitch = info.CanSwitch
		} else {
			st.logger.Printf("BAD_OP: undefined opcode 0x%02x at offset %d, treated as zero-effect", op, addr)
		}
		if width == 0 {
			width = 1
		}

		// A two-register compare branch whose operands are the same
		// register is a degenerate comparison: if-eq/ge/le always take
		// the branch (so there is no fallthrough), if-ne/gt/lt never
		// take it (so the target is neither a label nor reachable).
		if info.Defined && opcodes.IsTwoRegisterCompareBranch(op) {
			b1, err := utils.Ubyte(st.pool.image, int(st.ci.InsnsOff)+int(addr)*2+1)
			if err != nil {
				return utils.WrapError("traversing code", err)
			}
			if b1&0xF == b1>>4 {
				if opcodes.DegenerateAlwaysTaken(op) {
					canContinue = false
				} else {
					canBranch = false
				}
			}
		}

		for i := uint32(0); i < width && addr+i < uint32(len(st.visited)); i++ {
			st.visited[addr+i] = true
		}
		next := addr + width

		if canContinue && next <= st.ci.InsnsSize {
			if !queued[next] {
				queue = append(queue, next)
				queued[next] = true
			}
		}

		if !info.Defined {
			continue
		}

		if canBranch {
			target, err := branchTarget(st.pool.image, st.ci.InsnsOff, addr, op, info.Format)
			if err != nil {
				return utils.WrapError("traversing code", err)
			}
			st.labels[target] = true
			if !queued[target] {
				queue = append(queue, target)
				queued[target] = true
			}
		}

		if canSwitch {
			targets, err := st.switchTargets(addr, op)
			if err != nil {
				return err
			}
			for _, t := range targets {
				st.labels[t] = true
				if !queued[t] {
					queue = append(queue, t)
					queued[t] = true
				}
			}
		}
	}
	return nil
}

// emit runs Pass B: walk addresses in ascending order, decoding and
// visiting every instruction Pass A marked reachable, interleaving
// VisitLabel calls. A label's offset does not always land on an
// instruction's start address (a branch can target a code unit in the
// middle of a wider preceding instruction), so labels are not matched
// against the current address exactly; instead, immediately before
// emitting the instruction at a given address, every not-yet-emitted
// label at or before that address is flushed first.
func (st *traversalState) emit(cv CodeVisitor) error {
	labelOffsets := make([]uint32, 0, len(st.labels))
	for off := range st.labels {
		labelOffsets = append(labelOffsets, off)
	}
	sort.Slice(labelOffsets, func(i, j int) bool { return labelOffsets[i] < labelOffsets[j] })

	li := 0
	flushLabelsUpTo := func(addr uint32) {
		for li < len(labelOffsets) && labelOffsets[li] <= addr {
			cv.VisitLabel(Label{Offset: labelOffsets[li]})
			li++
		}
	}

	addr := uint32(0)
	for addr < st.ci.InsnsSize {
		if !st.visited[addr] {
			addr++
			continue
		}
		flushLabelsUpTo(addr)

		op, err := utils.Ubyte(st.pool.image, int(st.ci.InsnsOff)+int(addr)*2)
		if err != nil {
			return utils.WrapError("emitting instructions", err)
		}
		info := opcodes.Table[op]
		if !info.Defined {
			addr++
			continue
		}

		insn, err := st.decodeInstruction(addr, op, info)
		if err != nil {
			return utils.WrapError(fmt.Sprintf("decoding instruction at offset %d", addr), err)
		}
		cv.VisitInstruction(insn)
		addr += uint32(info.Format.CodeUnits())
	}
	flushLabelsUpTo(st.ci.InsnsSize)
	cv.VisitEnd()
	return nil
}

func codeUnit(image []byte, insnsOff, addr uint32) (uint16, error) {
	return utils.Ushort(image, int(insnsOff)+int(addr)*2)
}

func branchTarget(image []byte, insnsOff, addr uint32, op byte, f opcodes.Format) (uint32, error) {
	switch f {
	case opcodes.Fmt10t:
		b, err := utils.Ubyte(image, int(insnsOff)+int(addr)*2+1)
		return uint32(int32(addr) + int32(int8(b))), err
	case opcodes.Fmt20t, opcodes.Fmt21t, opcodes.Fmt22t:
		u, err := codeUnit(image, insnsOff, addr+1)
		return uint32(int32(addr) + int32(int16(u))), err
	case opcodes.Fmt30t, opcodes.Fmt31t:
		lo, err := codeUnit(image, insnsOff, addr+1)
		if err != nil {
			return 0, err
		}
		hi, err := codeUnit(image, insnsOff, addr+2)
		if err != nil {
			return 0, err
		}
		off := int32(uint32(lo) | uint32(hi)<<16)
		return uint32(int32(addr) + off), nil
	default:
		return 0, fmt.Errorf("BAD_OP: format %v has no branch target", f)
	}
}

// switchTargets reads the packed/sparse-switch payload referenced by
// the switch instruction at addr and returns every case target as an
// absolute code-unit address.
func (st *traversalState) switchTargets(addr uint32, op byte) ([]uint32, error) {
	payloadRel, err := branchTarget(st.pool.image, st.ci.InsnsOff, addr, op, opcodes.Fmt31t)
	if err != nil {
		return nil, utils.WrapError("reading switch payload", err)
	}
	payloadOff := int(st.ci.InsnsOff) + int(payloadRel)*2

	ident, err := utils.Ushort(st.pool.image, payloadOff)
	if err != nil {
		return nil, utils.WrapError("reading switch payload", err)
	}

	size, err := utils.Ushort(st.pool.image, payloadOff+2)
	if err != nil {
		return nil, utils.WrapError("reading switch payload", err)
	}

	var targets []uint32
	if opcodes.IsPackedSwitch(op) && ident == 0x0100 {
		pos := payloadOff + 8 // past ident, size, first_key
		for i := uint16(0); i < size; i++ {
			rel, err := utils.Sint(st.pool.image, pos)
			if err != nil {
				return nil, utils.WrapError("reading packed-switch targets", err)
			}
			targets = append(targets, uint32(int32(addr)+rel))
			pos += 4
		}
	} else if opcodes.IsSparseSwitch(op) && ident == 0x0200 {
		targetsStart := payloadOff + 4 + int(size)*4
		pos := targetsStart
		for i := uint16(0); i < size; i++ {
			rel, err := utils.Sint(st.pool.image, pos)
			if err != nil {
				return nil, utils.WrapError("reading sparse-switch targets", err)
			}
			targets = append(targets, uint32(int32(addr)+rel))
			pos += 4
		}
	} else {
		st.logger.Printf("BAD_SWITCH: switch payload at offset %d has unexpected ident 0x%04x", payloadRel, ident)
	}
	return targets, nil
}

// decodeInstruction fully decodes the instruction at addr, resolving
// its index operand (if any) against the constant pool.
func (st *traversalState) decodeInstruction(addr uint32, op byte, info opcodes.Info) (Instruction, error) {
	image := st.pool.image
	insnsOff := st.ci.InsnsOff
	insn := Instruction{Offset: addr, Op: op, Mnemonic: info.Name}

	byte1, err := utils.Ubyte(image, int(insnsOff)+int(addr)*2+1)
	if err != nil {
		return insn, err
	}

	switch info.Format {
	case opcodes.Fmt10x:
		// no operands

	case opcodes.Fmt12x:
		insn.Registers = []uint16{uint16(byte1 & 0xF), uint16(byte1 >> 4)}

	case opcodes.Fmt11n:
		insn.Registers = []uint16{uint16(byte1 & 0xF)}
		insn.Literal = int64(int8(byte1&0xF0) >> 4)

	case opcodes.Fmt11x:
		insn.Registers = []uint16{uint16(byte1)}

	case opcodes.Fmt10t, opcodes.Fmt20t, opcodes.Fmt30t:
		target, err := branchTarget(image, insnsOff, addr, op, info.Format)
		if err != nil {
			return insn, err
		}
		insn.Target = &Label{Offset: target}

	case opcodes.Fmt22x:
		reg, err := codeUnit(image, insnsOff, addr+1)
		if err != nil {
			return insn, err
		}
		insn.Registers = []uint16{uint16(byte1), reg}

	case opcodes.Fmt21t:
		target, err := branchTarget(image, insnsOff, addr, op, info.Format)
		if err != nil {
			return insn, err
		}
		insn.Registers = []uint16{uint16(byte1)}
		insn.Target = &Label{Offset: target}

	case opcodes.Fmt21s:
		u, err := codeUnit(image, insnsOff, addr+1)
		if err != nil {
			return insn, err
		}
		insn.Registers = []uint16{uint16(byte1)}
		insn.Literal = int64(int16(u))

	case opcodes.Fmt21h:
		u, err := codeUnit(image, insnsOff, addr+1)
		if err != nil {
			return insn, err
		}
		insn.Registers = []uint16{uint16(byte1)}
		if op == 0x19 { // const-wide/high16
			insn.WideLiteral = uint64(u) << 48
		} else { // const/high16
			insn.WideLiteral = uint64(uint32(u) << 16)
		}

	case opcodes.Fmt21c:
		idx, err := codeUnit(image, insnsOff, addr+1)
		if err != nil {
			return insn, err
		}
		insn.Registers = []uint16{uint16(byte1)}
		if err := st.resolveIndex(&insn, info.Index, uint32(idx)); err != nil {
			return insn, err
		}

	case opcodes.Fmt23x:
		u, err := codeUnit(image, insnsOff, addr+1)
		if err != nil {
			return insn, err
		}
		insn.Registers = []uint16{uint16(byte1), uint16(byte(u)), uint16(byte(u >> 8))}

	case opcodes.Fmt22b:
		u, err := codeUnit(image, insnsOff, addr+1)
		if err != nil {
			return insn, err
		}
		insn.Registers = []uint16{uint16(byte1), uint16(byte(u))}
		insn.Literal = int64(int8(byte(u >> 8)))

	case opcodes.Fmt22s:
		u, err := codeUnit(image, insnsOff, addr+1)
		if err != nil {
			return insn, err
		}
		insn.Registers = []uint16{uint16(byte1 & 0xF), uint16(byte1 >> 4)}
		insn.Literal = int64(int16(u))

	case opcodes.Fmt22t:
		target, err := branchTarget(image, insnsOff, addr, op, info.Format)
		if err != nil {
			return insn, err
		}
		regA, regB := uint16(byte1&0xF), uint16(byte1>>4)
		insn.Registers = []uint16{regA, regB}
		if regA == regB {
			// Degenerate compare: the two operands are the same
			// register, so the test's outcome is a compile-time
			// constant. if-eq/ge/le rewrite to an unconditional
			// jump; if-ne/gt/lt rewrite to a nop (no target at all).
			if opcodes.DegenerateAlwaysTaken(op) {
				insn.Mnemonic = "goto"
				insn.Target = &Label{Offset: target}
			}
		} else {
			insn.Target = &Label{Offset: target}
		}

	case opcodes.Fmt22c:
		idx, err := codeUnit(image, insnsOff, addr+1)
		if err != nil {
			return insn, err
		}
		insn.Registers = []uint16{uint16(byte1 & 0xF), uint16(byte1 >> 4)}
		if err := st.resolveIndex(&insn, info.Index, uint32(idx)); err != nil {
			return insn, err
		}

	case opcodes.Fmt32x:
		a, err := codeUnit(image, insnsOff, addr+1)
		if err != nil {
			return insn, err
		}
		b, err := codeUnit(image, insnsOff, addr+2)
		if err != nil {
			return insn, err
		}
		insn.Registers = []uint16{a, b}

	case opcodes.Fmt31t:
		if opcodes.IsFillArrayData(op) {
			data, err := st.decodeFillArrayData(addr)
			if err != nil {
				return insn, err
			}
			insn.Registers = []uint16{uint16(byte1)}
			insn.ArrayData = data
		} else {
			cases, err := st.decodeSwitchCases(addr, op)
			if err != nil {
				return insn, err
			}
			insn.Registers = []uint16{uint16(byte1)}
			insn.Targets = cases
		}

	case opcodes.Fmt31c:
		idx, err := uint32Unit(image, insnsOff, addr+1)
		if err != nil {
			return insn, err
		}
		insn.Registers = []uint16{uint16(byte1)}
		if err := st.resolveIndex(&insn, info.Index, idx); err != nil {
			return insn, err
		}

	case opcodes.Fmt31i:
		v, err := uint32Unit(image, insnsOff, addr+1)
		if err != nil {
			return insn, err
		}
		insn.Registers = []uint16{uint16(byte1)}
		insn.Literal = int64(int32(v))

	case opcodes.Fmt35c:
		idx, err := codeUnit(image, insnsOff, addr+1)
		if err != nil {
			return insn, err
		}
		u2, err := codeUnit(image, insnsOff, addr+2)
		if err != nil {
			return insn, err
		}
		count := byte1 >> 4
		g := byte1 & 0xF
		c := byte(u2) & 0xF
		d := byte(u2) >> 4
		e := byte(u2>>8) & 0xF
		f := byte(u2>>8) >> 4
		all := []uint16{uint16(c), uint16(d), uint16(e), uint16(f), uint16(g)}
		insn.Registers = all[:count]
		if err := st.resolveIndex(&insn, info.Index, uint32(idx)); err != nil {
			return insn, err
		}

	case opcodes.Fmt3rc:
		idx, err := codeUnit(image, insnsOff, addr+1)
		if err != nil {
			return insn, err
		}
		first, err := codeUnit(image, insnsOff, addr+2)
		if err != nil {
			return insn, err
		}
		count := byte1
		regs := make([]uint16, count)
		for i := range regs {
			regs[i] = first + uint16(i)
		}
		insn.Registers = regs
		if err := st.resolveIndex(&insn, info.Index, uint32(idx)); err != nil {
			return insn, err
		}

	case opcodes.Fmt51l:
		var v uint64
		for i := 0; i < 4; i++ {
			u, err := codeUnit(image, insnsOff, addr+1+uint32(i))
			if err != nil {
				return insn, err
			}
			v |= uint64(u) << (16 * uint(i))
		}
		insn.Registers = []uint16{uint16(byte1)}
		insn.WideLiteral = v
	}

	return insn, nil
}

func uint32Unit(image []byte, insnsOff, addr uint32) (uint32, error) {
	lo, err := codeUnit(image, insnsOff, addr)
	if err != nil {
		return 0, err
	}
	hi, err := codeUnit(image, insnsOff, addr+1)
	if err != nil {
		return 0, err
	}
	return uint32(lo) | uint32(hi)<<16, nil
}

func (st *traversalState) resolveIndex(insn *Instruction, kind opcodes.IndexType, idx uint32) error {
	switch kind {
	case opcodes.IndexString:
		s, err := st.pool.String(idx)
		insn.StringVal = s
		return err
	case opcodes.IndexType_:
		s, err := st.pool.Type(idx)
		insn.TypeVal = s
		return err
	case opcodes.IndexField:
		ref, err := st.pool.Field(idx)
		insn.Field = &ref
		return err
	case opcodes.IndexMethod:
		ref, err := st.pool.Method(idx)
		insn.Method = &ref
		return err
	}
	return nil
}

func (st *traversalState) decodeSwitchCases(addr uint32, op byte) ([]SwitchCase, error) {
	payloadRel, err := branchTarget(st.pool.image, st.ci.InsnsOff, addr, op, opcodes.Fmt31t)
	if err != nil {
		return nil, err
	}
	payloadOff := int(st.ci.InsnsOff) + int(payloadRel)*2
	size, err := utils.Ushort(st.pool.image, payloadOff+2)
	if err != nil {
		return nil, err
	}

	var cases []SwitchCase
	if opcodes.IsPackedSwitch(op) {
		firstKey, err := utils.Sint(st.pool.image, payloadOff+4)
		if err != nil {
			return nil, err
		}
		pos := payloadOff + 8
		for i := uint16(0); i < size; i++ {
			rel, err := utils.Sint(st.pool.image, pos)
			if err != nil {
				return nil, err
			}
			cases = append(cases, SwitchCase{Key: firstKey + int32(i), Target: Label{Offset: uint32(int32(addr) + rel)}})
			pos += 4
		}
	} else {
		keysStart := payloadOff + 4
		targetsStart := keysStart + int(size)*4
		for i := uint16(0); i < size; i++ {
			key, err := utils.Sint(st.pool.image, keysStart+int(i)*4)
			if err != nil {
				return nil, err
			}
			rel, err := utils.Sint(st.pool.image, targetsStart+int(i)*4)
			if err != nil {
				return nil, err
			}
			cases = append(cases, SwitchCase{Key: key, Target: Label{Offset: uint32(int32(addr) + rel)}})
		}
	}
	return cases, nil
}

func (st *traversalState) decodeFillArrayData(addr uint32) (*FillArrayData, error) {
	payloadRel, err := branchTarget(st.pool.image, st.ci.InsnsOff, addr, 0x26, opcodes.Fmt31t)
	if err != nil {
		return nil, err
	}
	payloadOff := int(st.ci.InsnsOff) + int(payloadRel)*2

	width, err := utils.Ushort(st.pool.image, payloadOff+2)
	if err != nil {
		return nil, err
	}
	size, err := utils.Uint(st.pool.image, payloadOff+4)
	if err != nil {
		return nil, err
	}
	dataOff := payloadOff + 8
	total := int(uint64(size) * uint64(width))
	if err := utils.CheckOffsetRange(uint32(dataOff), uint32(total), uint32(len(st.pool.image))); err != nil {
		return nil, err
	}
	data := make([]byte, total)
	copy(data, st.pool.image[dataOff:dataOff+total])
	return &FillArrayData{ElementWidth: width, Data: data}, nil
}
