package archive

import (
	"context"
	"os"
	"runtime"
	"sync"

	"github.com/archscan/classpathfs/classpatherr"
)

// ReleaseNotifier is invoked once for every chunk a fileArchive unmaps, so
// an owning handler can track mmap pressure across all the archives it
// manages (see nestedarchive.Handler.freedMmapRef).
type ReleaseNotifier func()

// fileArchive is a PhysicalArchive backed by a memory-mapped file. Chunks
// are mapped lazily, at most once each, through chunkMap.
type fileArchive struct {
	path string // canonical
	file *os.File
	size int64

	backend mmapBackend
	chunks  chunkMap
	onFree  ReleaseNotifier

	mu     sync.Mutex
	closed bool
}

// OpenFile constructs a PhysicalArchive over canonicalPath, which must
// already be an existing, readable, regular file. onFree, if non-nil, is
// called once per chunk released on Close.
func OpenFile(canonicalPath string, onFree ReleaseNotifier) (PhysicalArchive, error) {
	f, err := os.Open(canonicalPath)
	if err != nil {
		return nil, classpatherr.Wrap(err, classpatherr.CodeNotFound, "archive.OpenFile", canonicalPath)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, classpatherr.Wrap(err, classpatherr.CodeNotFound, "archive.OpenFile", canonicalPath)
	}
	if info.Size() == 0 {
		_ = f.Close()
		return nil, classpatherr.New(classpatherr.CodeNotArchive, "archive.OpenFile", canonicalPath, "archive is empty")
	}

	a := &fileArchive{
		path:    canonicalPath,
		file:    f,
		size:    info.Size(),
		backend: newMmapBackend(),
		onFree:  onFree,
	}
	a.chunks = newChunkMap(a.mapChunk)
	return a, nil
}

func (a *fileArchive) mapChunk(_ context.Context, idx int) ([]byte, error) {
	start, end := chunkBounds(idx, a.size)
	b, err := a.backend.Map(a.file, start, end-start)
	if err != nil {
		// Recovery attempt: request a GC to encourage the runtime to
		// release previously dropped mappings, then retry once.
		runtime.GC()
		b, err = a.backend.Map(a.file, start, end-start)
		if err != nil {
			return nil, mappingError("archive.Chunk", a.path, err)
		}
	}
	return b, nil
}

func (a *fileArchive) ReadAt(p []byte, off int64) (int, error) {
	return readAtChunked(a.size, func(idx int) ([]byte, error) {
		return a.chunks.Get(context.Background(), idx)
	}, p, off)
}

func (a *fileArchive) Len() int64 { return a.size }

// Close releases chunk mappings before closing the file handle, notifying
// onFree once per released chunk, in that order -- unmapping after the
// handle is closed is unsafe. The release notifications feed the owning
// handler's GC-request heuristic; the unmapping itself happens here.
func (a *fileArchive) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	a.mu.Unlock()

	for _, chunk := range a.chunks.Values() {
		_ = a.backend.Unmap(chunk)
		if a.onFree != nil {
			a.onFree()
		}
	}
	a.chunks.Clear()
	return a.file.Close()
}
