// Package dex implements a streaming reader for the Dalvik Executable
// (DEX) container format: the binary class file format Android compiles
// Java/Kotlin bytecode into. Reader decodes the section headers and
// constant pools of a dex image and drives a caller-supplied visitor
// tree (Pipe) over its classes, fields, methods, bytecode, try/catch
// blocks and debug info, without ever materializing the whole decoded
// tree in memory at once.
package dex

import (
	"fmt"
	"io"
	"log"

	"github.com/godexlib/dex/internal/core"
)

// Reader holds one dex image and the logger Pipe calls use to report
// non-fatal decode events (BAD_OP, BAD_SWITCH, and IgnoreReadException
// skips). A Reader has no other state: it owns no file handles and does
// no I/O of its own, so the same Reader can Pipe repeatedly.
type Reader struct {
	image  []byte
	header *core.Header
	logger *log.Logger
}

// New validates image's dex header and returns a Reader over it. The
// header is parsed eagerly so a malformed image fails here rather than
// partway through the first Pipe call.
func New(image []byte) (*Reader, error) {
	h, err := core.ParseHeader(image)
	if err != nil {
		return nil, fmt.Errorf("dex: %w", err)
	}
	return &Reader{image: image, header: h, logger: log.New(io.Discard, "", 0)}, nil
}

// SetLogger redirects Pipe's diagnostic output. The default Reader logs
// nothing; pass a *log.Logger writing to os.Stderr (or any io.Writer) to
// see BAD_OP/BAD_SWITCH warnings. There is no per-instruction tracing:
// the EnableDebugLog flag is not read by Pipe.
func (r *Reader) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// Pipe drives v over every class_def_item in the image, in declaration
// order, honoring flags. Returning nil from a FileVisitor/ClassVisitor/
// MethodVisitor/CodeVisitor method skips that node's subtree without
// failing the call. Pipe is safe to call more than once on the same
// Reader; each call re-walks the image from scratch and visitors see no
// state left over from a previous call.
func (r *Reader) Pipe(v DexFileVisitor, flags Flag) error {
	if err := core.Pipe(r.image, v, core.Flag(flags), r.logger); err != nil {
		return fmt.Errorf("dex: %w", err)
	}
	return nil
}

// Header exposes the parsed dex header fields a caller might want
// before committing to a full Pipe, such as the format version.
func (r *Reader) Header() Header {
	return Header{
		Version:  r.header.Version,
		Checksum: r.header.Checksum,
		FileSize: r.header.FileSize,
	}
}

// Header is the subset of the dex header useful to callers outside the
// decoder itself.
type Header struct {
	Version  string
	Checksum uint32
	FileSize uint32
}
