//go:build !linux && !darwin

package archive

import (
	"fmt"
	"os"
)

// readBackend stands in for mmap on platforms where we don't wire the raw
// unix.Mmap syscall (the original Java implementation disables mmap-based
// reading on Windows for the same reason: a locked mapped file cannot be
// deleted). Each chunk is read fully into a heap buffer instead; callers
// see an identical []byte view, just not kernel-backed.
type readBackend struct{}

func (readBackend) Map(f *os.File, offset, length int64) ([]byte, error) {
	buf := make([]byte, length)
	if length == 0 {
		return buf, nil
	}
	if _, err := f.ReadAt(buf, offset); err != nil {
		return nil, fmt.Errorf("read offset=%d length=%d: %w", offset, length, err)
	}
	return buf, nil
}

func (readBackend) Unmap(b []byte) error { return nil }

func newMmapBackend() mmapBackend { return readBackend{} }
