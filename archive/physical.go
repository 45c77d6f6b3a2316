// Package archive implements the physical/slice/logical archive layers: a
// PhysicalArchive owns the bytes backing one or more logical archives (a
// memory-mapped file or an in-memory buffer), an ArchiveSlice is a bounded
// region of a PhysicalArchive, and a Logical archive is a parsed view
// (central directory loaded) over a Slice.
package archive

import (
	"context"
	"io"

	"github.com/archscan/classpathfs/classpatherr"
	"github.com/archscan/classpathfs/singleton"
)

// chunkSize bounds each individual memory mapping, because the mmap
// syscall wrapper used by fileArchive maps a length expressed as a
// platform int; archives larger than one chunk are mapped as an array of
// chunkSize-sized regions instead of one oversized mapping.
const chunkSize int64 = 1 << 32

// MaxSingleRegion is the largest amount of data that can be held in one
// chunk -- the ceiling nestedarchive enforces before inflating a nested
// entry to memory rather than to a temporary file.
const MaxSingleRegion int64 = chunkSize - 1

// PhysicalArchive owns a handle to a byte source and exposes random-access
// reads over it. It is implemented either by a memory-mapped file
// (fileArchive) or by a single in-memory buffer (memoryArchive).
type PhysicalArchive interface {
	io.ReaderAt
	io.Closer

	// Len returns the total length of the backing bytes.
	Len() int64
}

func numChunks(size int64) int {
	if size == 0 {
		return 1
	}
	return int(((size - 1) / chunkSize) + 1)
}

// chunkBounds returns the byte range [start, end) covered by chunk idx of
// an archive of the given total size.
func chunkBounds(idx int, size int64) (start, end int64) {
	start = int64(idx) * chunkSize
	end = start + chunkSize
	if end > size {
		end = size
	}
	return start, end
}

// readAtChunked implements io.ReaderAt generically over a set of lazily
// materialized chunks, used by both the file- and memory-backed archives
// (the latter simply has a single chunk). get must return the bytes for
// chunk idx, mapping or reading it into memory on first use.
func readAtChunked(size int64, get func(idx int) ([]byte, error), p []byte, off int64) (int, error) {
	if off < 0 || off >= size {
		if len(p) == 0 && off == size {
			return 0, nil
		}
		return 0, io.EOF
	}

	total := 0
	for total < len(p) {
		pos := off + int64(total)
		if pos >= size {
			break
		}
		idx := int(pos / chunkSize)
		chunk, err := get(idx)
		if err != nil {
			return total, err
		}
		chunkStart, _ := chunkBounds(idx, size)
		inChunk := int(pos - chunkStart)
		n := copy(p[total:], chunk[inChunk:])
		total += n
	}
	if total < len(p) {
		return total, io.EOF
	}
	return total, nil
}

// chunkMap is the per-archive singleton.Map[int, []byte] used so that a
// given 2^32 chunk is mapped (or read) at most once, even when multiple
// readers race to access it.
type chunkMap = *singleton.Map[int, []byte]

func newChunkMap(factory func(context.Context, int) ([]byte, error)) chunkMap {
	return singleton.New(factory)
}

func mappingError(op, path string, err error) error {
	return classpatherr.Wrap(err, classpatherr.CodeMapping, op, path)
}
