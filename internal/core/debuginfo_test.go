package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type recordingDebugVisitor struct {
	lines  []int
	starts []string
	ended  bool
}

func (r *recordingDebugVisitor) VisitLineNumber(line int, offset Label) {
	r.lines = append(r.lines, line)
}
func (r *recordingDebugVisitor) VisitStartLocal(reg uint16, name, typeName, signature string, offset Label) {
	r.starts = append(r.starts, name)
}
func (r *recordingDebugVisitor) VisitEndLocal(reg uint16, offset Label)     {}
func (r *recordingDebugVisitor) VisitRestartLocal(reg uint16, offset Label) {}
func (r *recordingDebugVisitor) VisitPrologueEnd(offset Label)              {}
func (r *recordingDebugVisitor) VisitEpilogueBegin(offset Label)            {}
func (r *recordingDebugVisitor) VisitEnd()                                  { r.ended = true }

func TestParseDebugInfoHeader(t *testing.T) {
	image, h, idxOf := buildPoolFixture(t)
	p := NewPool(image, h)

	base := uint32(len(image))
	data := []byte{
		10,                      // line_start = 10
		1,                       // parameters_size = 1
		byte(idxOf["name"] + 1), // uleb128p1 param name
		0x00,                    // DBG_END_SEQUENCE
	}
	p.image = append(image, data...)

	info, err := p.ParseDebugInfo(base)
	require.NoError(t, err)
	require.Equal(t, uint32(10), info.LineStart)
	require.Equal(t, []string{"name"}, info.ParameterNames)
}

func TestRunDebugInfoSpecialOpcode(t *testing.T) {
	image, h, _ := buildPoolFixture(t)
	p := NewPool(image, h)

	base := uint32(len(image))
	data := []byte{
		5,                   // line_start = 5
		0,                   // parameters_size = 0
		0x07,                // DBG_SET_PROLOGUE_END
		dbgFirstSpecial + 4, // special: adjusted=4, addr_diff=0, line_diff=dbgLineBase+4=0
		0x00,                // DBG_END_SEQUENCE
	}
	p.image = append(image, data...)

	info, err := p.ParseDebugInfo(base)
	require.NoError(t, err)

	rec := &recordingDebugVisitor{}
	require.NoError(t, p.Run(info, rec))
	require.Equal(t, []int{5}, rec.lines)
	require.True(t, rec.ended)
}

func TestRunDebugInfoStartLocal(t *testing.T) {
	image, h, idxOf := buildPoolFixture(t)
	p := NewPool(image, h)

	base := uint32(len(image))
	data := []byte{
		1, 0, // line_start=1, parameters_size=0
		0x03,                    // DBG_START_LOCAL
		0x00,                    // register_num = 0
		byte(idxOf["name"] + 1), // name_idx+1
		byte(idxOf["I"] + 1),    // type_idx+1
		0x00,                    // DBG_END_SEQUENCE
	}
	p.image = append(image, data...)

	info, err := p.ParseDebugInfo(base)
	require.NoError(t, err)

	rec := &recordingDebugVisitor{}
	require.NoError(t, p.Run(info, rec))
	require.Equal(t, []string{"name"}, rec.starts)
}

func TestRunDebugInfoRestartLocalWithoutStartFails(t *testing.T) {
	image, h, _ := buildPoolFixture(t)
	p := NewPool(image, h)

	base := uint32(len(image))
	data := []byte{
		1, 0, // line_start=1, parameters_size=0
		0x06, // DBG_RESTART_LOCAL
		0x00, // register_num = 0, never started
		0x00, // DBG_END_SEQUENCE
	}
	p.image = append(image, data...)

	info, err := p.ParseDebugInfo(base)
	require.NoError(t, err)

	rec := &recordingDebugVisitor{}
	err = p.Run(info, rec)
	require.Error(t, err)
	require.Contains(t, err.Error(), "BAD_DEBUG")
}

func TestRunDebugInfoRestartLocalAfterStartSucceeds(t *testing.T) {
	image, h, idxOf := buildPoolFixture(t)
	p := NewPool(image, h)

	base := uint32(len(image))
	data := []byte{
		1, 0, // line_start=1, parameters_size=0
		0x03,                    // DBG_START_LOCAL
		0x00,                    // register_num = 0
		byte(idxOf["name"] + 1), // name_idx+1
		byte(idxOf["I"] + 1),    // type_idx+1
		0x05,                    // DBG_END_LOCAL
		0x00,                    // register_num = 0
		0x06,                    // DBG_RESTART_LOCAL
		0x00,                    // register_num = 0
		0x00,                    // DBG_END_SEQUENCE
	}
	p.image = append(image, data...)

	info, err := p.ParseDebugInfo(base)
	require.NoError(t, err)

	rec := &recordingDebugVisitor{}
	require.NoError(t, p.Run(info, rec))
}
