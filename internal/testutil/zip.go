// Package testutil provides fixtures shared by classpathfs's package
// tests: in-memory zip archives and manifest files, built without
// touching disk unless a test explicitly asks for a temp file.
package testutil

import (
	"archive/zip"
	"bytes"
	"path/filepath"
)

// ZipEntry describes one file to add to a built archive.
type ZipEntry struct {
	Name    string
	Content string
	// Stored forces the stored (uncompressed) method instead of deflate.
	Stored bool
}

// BuildZip writes a zip archive containing entries in order and returns
// its raw bytes.
func BuildZip(entries ...ZipEntry) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		method := zip.Deflate
		if e.Stored {
			method = zip.Store
		}
		w, err := zw.CreateHeader(&zip.FileHeader{Name: e.Name, Method: method})
		if err != nil {
			return nil, err
		}
		if _, err := w.Write([]byte(e.Content)); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteZipFile builds a zip archive and writes it to path under dir, returning
// the full path.
func WriteZipFile(dir, name string, entries ...ZipEntry) (string, error) {
	data, err := BuildZip(entries...)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, name)
	return path, writeFile(path, data)
}

// ManifestEntry builds a META-INF/MANIFEST.MF entry with the given
// Class-Path header value. The header is written on a single line however
// long the value is; it is not folded into continuation lines.
func ManifestEntry(classPath string) ZipEntry {
	content := "Manifest-Version: 1.0\r\n"
	if classPath != "" {
		content += "Class-Path: " + classPath + "\r\n"
	}
	return ZipEntry{Name: "META-INF/MANIFEST.MF", Content: content, Stored: true}
}
