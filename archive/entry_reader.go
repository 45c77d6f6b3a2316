package archive

import (
	"io"

	"github.com/klauspost/compress/flate"
)

// Open returns a reader over the entry's decompressed bytes. Stored
// entries are read directly from the parent archive's backing bytes;
// deflated entries are transparently inflated with klauspost/compress's
// drop-in flate reader.
//
// Callers that inflate many entries in a hot loop (nested-archive
// extraction) should prefer a pooled flate.Resetter from a recycler
// instead of calling Open repeatedly -- see nestedarchive's inflater
// pool, which this method deliberately does not use so that one-off reads
// (e.g. manifest parsing) stay simple.
func (e *Entry) Open() (io.ReadCloser, error) {
	sr := io.NewSectionReader(e.parent.Slice.Physical, e.parent.Slice.Offset+e.Offset, e.CompressedSize)
	if !e.Deflated {
		return io.NopCloser(sr), nil
	}
	return flate.NewReader(sr), nil
}
