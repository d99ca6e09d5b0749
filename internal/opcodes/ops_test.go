package opcodes

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKnownOpcodeShapes(t *testing.T) {
	tests := []struct {
		op     byte
		name   string
		format Format
		index  IndexType
	}{
		{0x00, "nop", Fmt10x, IndexNone},
		{0x0e, "return-void", Fmt10x, IndexNone},
		{0x12, "const/4", Fmt11n, IndexNone},
		{0x1a, "const-string", Fmt21c, IndexString},
		{0x24, "filled-new-array", Fmt35c, IndexType_},
		{0x28, "goto", Fmt10t, IndexNone},
		{0x2b, "packed-switch", Fmt31t, IndexNone},
		{0x52, "iget", Fmt22c, IndexField},
		{0x60, "sget", Fmt21c, IndexField},
		{0x6e, "invoke-virtual", Fmt35c, IndexMethod},
		{0x74, "invoke-virtual/range", Fmt3rc, IndexMethod},
		{0x90, "add-int", Fmt23x, IndexNone},
		{0xb0, "add-int/2addr", Fmt12x, IndexNone},
		{0xd0, "add-int/lit16", Fmt22s, IndexNone},
		{0xd8, "add-int/lit8", Fmt22b, IndexNone},
	}

	for _, tt := range tests {
		info := Table[tt.op]
		require.Truef(t, info.Defined, "opcode 0x%02x should be defined", tt.op)
		require.Equal(t, tt.name, info.Name)
		require.Equal(t, tt.format, info.Format)
		require.Equal(t, tt.index, info.Index)
	}
}

func TestControlFlowAttributes(t *testing.T) {
	require.True(t, Table[0x28].CanBranch)
	require.False(t, Table[0x28].CanContinue)

	require.True(t, Table[0x38].CanBranch) // if-eqz
	require.True(t, Table[0x38].CanContinue)

	require.True(t, Table[0x2b].CanSwitch)
	require.False(t, Table[0x2b].CanBranch)

	require.False(t, Table[0x0e].CanContinue) // return-void
	require.False(t, Table[0x27].CanContinue) // throw
}

func TestUnassignedSlotsAreZeroValue(t *testing.T) {
	for _, op := range []byte{0x3e, 0x73, 0x79, 0xe3, 0xff} {
		require.False(t, Table[op].Defined, "opcode 0x%02x should be unassigned", op)
	}
}

func TestFormatCodeUnits(t *testing.T) {
	require.Equal(t, 1, Fmt10x.CodeUnits())
	require.Equal(t, 2, Fmt22c.CodeUnits())
	require.Equal(t, 3, Fmt35c.CodeUnits())
	require.Equal(t, 5, Fmt51l.CodeUnits())
	require.Equal(t, 0, FmtUnknown.CodeUnits())
}

func TestFillArrayDataVsSwitchDisambiguation(t *testing.T) {
	require.True(t, IsFillArrayData(0x26))
	require.True(t, IsPackedSwitch(0x2b))
	require.True(t, IsSparseSwitch(0x2c))
	require.False(t, IsFillArrayData(0x2b))
}
