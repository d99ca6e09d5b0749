package dex

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func buildTestArchive(t *testing.T, entries map[string][]byte) *bytes.Reader {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, data := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return bytes.NewReader(buf.Bytes())
}

func TestArchiveDexEntriesFiltersNonDex(t *testing.T) {
	r := buildTestArchive(t, map[string][]byte{
		"classes.dex":         buildMinimalDex(t),
		"classes2.dex":        buildMinimalDex(t),
		"AndroidManifest.xml": []byte("not dex"),
	})
	a, err := OpenArchive(r, int64(r.Len()))
	require.NoError(t, err)

	entries := a.DexEntries()
	require.Len(t, entries, 2)
	require.Contains(t, entries, "classes.dex")
	require.Contains(t, entries, "classes2.dex")
}

func TestArchiveOpenAndPipeEachMember(t *testing.T) {
	r := buildTestArchive(t, map[string][]byte{
		"classes.dex": buildMinimalDex(t),
	})
	a, err := OpenArchive(r, int64(r.Len()))
	require.NoError(t, err)

	var seen []string
	err = a.Each(func(name string, rd *Reader) error {
		seen = append(seen, name)
		return rd.Pipe(&skipAllVisitor{}, 0)
	})
	require.NoError(t, err)
	require.Equal(t, []string{"classes.dex"}, seen)
}

func TestArchiveOpenMissingMember(t *testing.T) {
	r := buildTestArchive(t, map[string][]byte{"classes.dex": buildMinimalDex(t)})
	a, err := OpenArchive(r, int64(r.Len()))
	require.NoError(t, err)

	_, err = a.Open("classes9.dex")
	require.Error(t, err)
}
