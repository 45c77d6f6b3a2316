package archive

// memoryArchive is a PhysicalArchive backed by a single in-memory buffer,
// used when a deflated nested entry is small enough to inflate to RAM
// instead of to a temporary file.
type memoryArchive struct {
	data []byte
}

// OpenMemory wraps data (already inflated) as a PhysicalArchive. data must
// fit within a single chunk; callers enforce the size ceiling before
// calling this (see nestedarchive's inflate-to-RAM path).
func OpenMemory(data []byte) PhysicalArchive {
	return &memoryArchive{data: data}
}

func (a *memoryArchive) ReadAt(p []byte, off int64) (int, error) {
	return readAtChunked(int64(len(a.data)), func(int) ([]byte, error) {
		return a.data, nil
	}, p, off)
}

func (a *memoryArchive) Len() int64 { return int64(len(a.data)) }

func (a *memoryArchive) Close() error {
	a.data = nil
	return nil
}
