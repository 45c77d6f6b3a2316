//go:build linux || darwin

package archive

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// unixMmapBackend maps chunks with the real mmap(2) syscall, grounded on
// the read-only MAP_SHARED mapping used for cache reads in
// lib/artifactstore/cache_device.go: no copy into the Go heap, pages are
// faulted in by the kernel on first access.
type unixMmapBackend struct{}

func (unixMmapBackend) Map(f *os.File, offset, length int64) ([]byte, error) {
	if length == 0 {
		return []byte{}, nil
	}
	b, err := unix.Mmap(int(f.Fd()), offset, int(length), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap offset=%d length=%d: %w", offset, length, err)
	}
	return b, nil
}

func (unixMmapBackend) Unmap(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	return unix.Munmap(b)
}

func newMmapBackend() mmapBackend { return unixMmapBackend{} }
