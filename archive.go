package dex

import (
	"archive/zip"
	"fmt"
	"io"
)

// ArchiveReader reads every *.dex entry out of an APK (or any zip
// archive), in archive order, each as an independent Reader. Multi-dex
// APKs (classes.dex, classes2.dex, ...) are common; ArchiveReader does
// not merge them, it only enumerates.
type ArchiveReader struct {
	zr *zip.Reader
}

// OpenArchive opens a zip archive (typically an .apk) for dex
// enumeration. size must be the true length of r's underlying data.
func OpenArchive(r io.ReaderAt, size int64) (*ArchiveReader, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("dex: opening archive: %w", err)
	}
	return &ArchiveReader{zr: zr}, nil
}

// DexEntries returns the archive-order list of *.dex member names.
func (a *ArchiveReader) DexEntries() []string {
	var names []string
	for _, f := range a.zr.File {
		if isDexName(f.Name) {
			names = append(names, f.Name)
		}
	}
	return names
}

// Open decodes the named *.dex member into a Reader.
func (a *ArchiveReader) Open(name string) (*Reader, error) {
	for _, f := range a.zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("dex: opening archive member %s: %w", name, err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("dex: reading archive member %s: %w", name, err)
		}
		return New(data)
	}
	return nil, fmt.Errorf("dex: no archive member named %s", name)
}

// Each opens every *.dex member in archive order and calls fn with its
// Reader, stopping at the first error. fn is responsible for calling
// Pipe with whatever visitor and flags it needs for that member.
func (a *ArchiveReader) Each(fn func(name string, r *Reader) error) error {
	for _, name := range a.DexEntries() {
		r, err := a.Open(name)
		if err != nil {
			return err
		}
		if err := fn(name, r); err != nil {
			return err
		}
	}
	return nil
}

func isDexName(name string) bool {
	return len(name) > 4 && name[len(name)-4:] == ".dex"
}
