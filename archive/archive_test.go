package archive

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// buildZip writes a zip archive containing the given name->content pairs,
// using stored method for names ending in ".stored" and deflate otherwise.
func buildZip(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range entries {
		method := zip.Deflate
		if filepath.Ext(name) == ".stored" {
			method = zip.Store
		}
		w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: method})
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestMemoryArchiveReadAt(t *testing.T) {
	phys := OpenMemory([]byte("hello world"))
	defer phys.Close()

	require.Equal(t, int64(11), phys.Len())

	buf := make([]byte, 5)
	n, err := phys.ReadAt(buf, 6)
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, "world", string(buf))
}

func TestMemoryArchiveReadAtPastEOF(t *testing.T) {
	phys := OpenMemory([]byte("abc"))
	defer phys.Close()

	buf := make([]byte, 4)
	n, err := phys.ReadAt(buf, 0)
	require.ErrorIs(t, err, io.EOF)
	require.Equal(t, 3, n)
}

func TestFileArchiveReadAtAndClose(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.bin")
	require.NoError(t, os.WriteFile(path, []byte("physical archive contents"), 0o644))

	var freed int
	phys, err := OpenFile(path, func() { freed++ })
	require.NoError(t, err)

	buf := make([]byte, len("archive"))
	n, err := phys.ReadAt(buf, int64(len("physical ")))
	require.NoError(t, err)
	require.Equal(t, len("archive"), n)
	require.Equal(t, "archive", string(buf))

	require.NoError(t, phys.Close())
	require.Equal(t, 1, freed, "one chunk should be released on close")
}

func TestOpenFileRejectsEmptyArchive(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.zip")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	_, err := OpenFile(path, nil)
	require.Error(t, err)
}

func TestSliceEqualityIsStructural(t *testing.T) {
	phys := OpenMemory([]byte("x"))
	defer phys.Close()

	a := Slice{Physical: phys, Offset: 0, Length: 1}
	b := Slice{Physical: phys, Offset: 0, Length: 1}
	require.Equal(t, a, b)
}

func TestLogicalParsesEntriesAndRoots(t *testing.T) {
	data := buildZip(t, map[string]string{
		"com/example/Foo.class":    "deflated-bytes",
		"com/example/Bar.class.stored": "stored-bytes",
	})
	phys := OpenMemory(data)
	defer phys.Close()
	slice := WholeFile(phys)

	logical, err := NewLogical(context.Background(), slice, ZipCentralDirectoryParser{})
	require.NoError(t, err)
	require.Len(t, logical.Entries, 2)

	e := logical.FindEntry("com/example/Foo.class")
	require.NotNil(t, e)
	require.True(t, e.Deflated)
	require.Same(t, logical, e.Parent())

	require.True(t, logical.HasDirPrefix("com/example/"))
	require.False(t, logical.HasDirPrefix("org/"))

	logical.AddClasspathRoot("")
	logical.AddClasspathRoot("com/")
	require.Equal(t, []string{"com/"}, logical.ClasspathRoots())
}

func TestEntryOpenRoundTripsStoredAndDeflated(t *testing.T) {
	data := buildZip(t, map[string]string{
		"plain.txt.stored": "stored content",
		"squeezed.txt":      "deflated content deflated content deflated content",
	})
	phys := OpenMemory(data)
	defer phys.Close()
	logical, err := NewLogical(context.Background(), WholeFile(phys), ZipCentralDirectoryParser{})
	require.NoError(t, err)

	stored := logical.FindEntry("plain.txt.stored")
	require.NotNil(t, stored)
	require.False(t, stored.Deflated)
	rc, err := stored.Open()
	require.NoError(t, err)
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, "stored content", string(b))
	require.NoError(t, rc.Close())

	deflated := logical.FindEntry("squeezed.txt")
	require.NotNil(t, deflated)
	require.True(t, deflated.Deflated)
	rc, err = deflated.Open()
	require.NoError(t, err)
	b, err = io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, "deflated content deflated content deflated content", string(b))
	require.NoError(t, rc.Close())
}

func TestParseRejectsNonArchive(t *testing.T) {
	phys := OpenMemory([]byte("not a zip file at all"))
	defer phys.Close()

	_, err := NewLogical(context.Background(), WholeFile(phys), ZipCentralDirectoryParser{})
	require.Error(t, err)
}
