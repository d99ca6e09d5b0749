package core

import (
	"fmt"

	"github.com/godexlib/dex/internal/utils"
)

// CatchHandler is one typed entry of an encoded_catch_handler.
type CatchHandler struct {
	Type string
	Addr uint32
}

// TryBlock is a fully resolved try_item: the covered instruction range
// and the handler list (and optional catch-all) it shares with every
// other try_item pointing at the same handler_off.
type TryBlock struct {
	StartAddr uint32
	EndAddr   uint32 // exclusive: StartAddr + InsnCount
	Handlers  []CatchHandler
	CatchAll  *uint32
}

// ParseTries decodes triesSize try_item records at triesOff, resolving
// each one's handler_off against the encoded_catch_handler_list at
// handlersOff. Handler lists are shared by offset, so repeated offsets
// are decoded once.
func (p *Pool) ParseTries(triesOff, handlersOff uint32, triesSize uint32) ([]TryBlock, error) {
	if triesSize == 0 {
		return nil, nil
	}

	handlerCache := map[uint32][]CatchHandler{}
	catchAllCache := map[uint32]*uint32{}

	resolve := func(relOff uint16) ([]CatchHandler, *uint32, error) {
		abs := handlersOff + uint32(relOff)
		if h, ok := handlerCache[abs]; ok {
			return h, catchAllCache[abs], nil
		}
		handlers, catchAll, err := p.parseEncodedCatchHandler(int(abs))
		if err != nil {
			return nil, nil, err
		}
		handlerCache[abs] = handlers
		catchAllCache[abs] = catchAll
		return handlers, catchAll, nil
	}

	out := make([]TryBlock, 0, triesSize)
	pos := int(triesOff)
	for i := uint32(0); i < triesSize; i++ {
		startAddr, err := utils.Uint(p.image, pos)
		if err != nil {
			return nil, utils.WrapError("decoding try_item", err)
		}
		insnCount, err := utils.Ushort(p.image, pos+4)
		if err != nil {
			return nil, utils.WrapError("decoding try_item", err)
		}
		handlerOff, err := utils.Ushort(p.image, pos+6)
		if err != nil {
			return nil, utils.WrapError("decoding try_item", err)
		}
		pos += 8

		handlers, catchAll, err := resolve(handlerOff)
		if err != nil {
			return nil, err
		}
		out = append(out, TryBlock{
			StartAddr: startAddr,
			EndAddr:   startAddr + uint32(insnCount),
			Handlers:  handlers,
			CatchAll:  catchAll,
		})
	}
	return out, nil
}

// parseEncodedCatchHandler decodes a single encoded_catch_handler: a
// signed count (negative meaning "typed handlers plus an explicit
// catch-all follows") and the type/addr pairs it covers.
func (p *Pool) parseEncodedCatchHandler(off int) ([]CatchHandler, *uint32, error) {
	size, pos, err := utils.ReadSLEB128(p.image, off)
	if err != nil {
		return nil, nil, utils.WrapError("decoding encoded_catch_handler", err)
	}

	count := size
	hasCatchAll := size <= 0
	if count < 0 {
		count = -count
	}

	handlers := make([]CatchHandler, 0, count)
	for i := int32(0); i < count; i++ {
		typeIdx, next, err := utils.ReadULEB128(p.image, pos)
		if err != nil {
			return nil, nil, utils.WrapError("decoding encoded_type_addr_pair", err)
		}
		pos = next
		addr, next2, err := utils.ReadULEB128(p.image, pos)
		if err != nil {
			return nil, nil, utils.WrapError("decoding encoded_type_addr_pair", err)
		}
		pos = next2

		typeName, err := p.Type(typeIdx)
		if err != nil {
			return nil, nil, utils.WrapError(fmt.Sprintf("resolving catch type at handler offset %d", off), err)
		}
		handlers = append(handlers, CatchHandler{Type: typeName, Addr: addr})
	}

	var catchAll *uint32
	if hasCatchAll {
		addr, _, err := utils.ReadULEB128(p.image, pos)
		if err != nil {
			return nil, nil, utils.WrapError("decoding encoded_catch_handler catch-all", err)
		}
		catchAll = &addr
	}

	return handlers, catchAll, nil
}
