package core

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseTriesWithCatchAll(t *testing.T) {
	image, h, _ := buildPoolFixture(t)
	p := NewPool(image, h)

	handlersOff := uint32(len(image))
	// encoded_catch_handler_list: size=1 handler list
	image = append(image, 0x01)
	// encoded_catch_handler: size=-1 (1 typed handler + catch-all)
	image = append(image, 0x7F) // sleb128 -1
	image = append(image, 0x02) // type_idx = 2 (LFoo;)
	image = append(image, 0x0A) // addr = 10
	image = append(image, 0x14) // catch_all addr = 20

	triesOff := uint32(len(image))
	tryItem := make([]byte, 8)
	binary.LittleEndian.PutUint32(tryItem[0:4], 0) // start_addr
	binary.LittleEndian.PutUint16(tryItem[4:6], 5) // insn_count
	binary.LittleEndian.PutUint16(tryItem[6:8], 1) // handler_off = 1 (relative to handlersOff, past the list size byte)
	image = append(image, tryItem...)

	p.image = image
	blocks, err := p.ParseTries(triesOff, handlersOff, 1)
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	require.Equal(t, uint32(0), blocks[0].StartAddr)
	require.Equal(t, uint32(5), blocks[0].EndAddr)
	require.Len(t, blocks[0].Handlers, 1)
	require.Equal(t, "LFoo;", blocks[0].Handlers[0].Type)
	require.Equal(t, uint32(10), blocks[0].Handlers[0].Addr)
	require.NotNil(t, blocks[0].CatchAll)
	require.Equal(t, uint32(20), *blocks[0].CatchAll)
}

func TestParseTriesSharedHandlerOffset(t *testing.T) {
	image, h, _ := buildPoolFixture(t)
	p := NewPool(image, h)

	handlersOff := uint32(len(image))
	image = append(image, 0x01) // list size = 1
	image = append(image, 0x01) // encoded_catch_handler size = 1 (no catch-all)
	image = append(image, 0x02) // type_idx = 2
	image = append(image, 0x05) // addr = 5

	triesOff := uint32(len(image))
	for i := 0; i < 2; i++ {
		item := make([]byte, 8)
		binary.LittleEndian.PutUint32(item[0:4], uint32(i*10))
		binary.LittleEndian.PutUint16(item[4:6], 3)
		binary.LittleEndian.PutUint16(item[6:8], 1) // handler_off, past the list size byte
		image = append(image, item...)
	}

	p.image = image
	blocks, err := p.ParseTries(triesOff, handlersOff, 2)
	require.NoError(t, err)
	require.Len(t, blocks, 2)
	require.Nil(t, blocks[0].CatchAll)
	require.Equal(t, blocks[0].Handlers, blocks[1].Handlers)
}

func TestParseTriesZeroSize(t *testing.T) {
	image, h, _ := buildPoolFixture(t)
	p := NewPool(image, h)
	blocks, err := p.ParseTries(0, 0, 0)
	require.NoError(t, err)
	require.Nil(t, blocks)
}
