package archive

import (
	"archive/zip"
	"context"
	"strings"

	"github.com/archscan/classpathfs/classpatherr"
)

// ZipCentralDirectoryParser is the default CentralDirectoryParser. Central
// directory parsing is explicitly out of scope for the nested archive
// core (it is listed as an external collaborator), so the default
// implementation reaches for the standard library's archive/zip rather
// than reimplementing EOCD/CDFH parsing -- this is the one place in the
// module that falls back to the standard library, justified in DESIGN.md.
type ZipCentralDirectoryParser struct{}

// Parse reads slice's central directory and returns its non-directory
// entries in central-directory order.
func (ZipCentralDirectoryParser) Parse(_ context.Context, slice Slice) ([]*Entry, error) {
	zr, err := zip.NewReader(slice.Reader(), slice.Length)
	if err != nil {
		return nil, classpatherr.Wrap(err, classpatherr.CodeNotArchive, "archive.Parse", "")
	}

	entries := make([]*Entry, 0, len(zr.File))
	for _, f := range zr.File {
		if strings.HasSuffix(f.Name, "/") {
			// Directory entries are discarded; directories are inferred
			// from name prefixes of the file entries instead.
			continue
		}
		dataOffset, err := f.DataOffset()
		if err != nil {
			continue
		}
		entries = append(entries, &Entry{
			Name:             f.Name,
			Offset:           dataOffset,
			CompressedSize:   int64(f.CompressedSize64),
			UncompressedSize: int64(f.UncompressedSize64),
			Deflated:         f.Method == zip.Deflate,
		})
	}
	return entries, nil
}
