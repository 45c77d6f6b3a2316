package archive

import "io"

// Slice is a bounded region within a PhysicalArchive representing one
// logical archive. Slices are cheap value objects; equality is structural
// over (Physical, Offset, Length), which is exactly what Go's built-in
// struct comparison gives as long as the same *fileArchive/*memoryArchive
// pointer is reused for a given canonical file -- a guarantee the
// singleton map handing out PhysicalArchives upholds.
type Slice struct {
	Physical PhysicalArchive
	Offset   int64
	Length   int64
}

// WholeFile returns a Slice spanning the entirety of phys.
func WholeFile(phys PhysicalArchive) Slice {
	return Slice{Physical: phys, Offset: 0, Length: phys.Len()}
}

// Reader returns an io.SectionReader limited to the slice's extent within
// its backing PhysicalArchive.
func (s Slice) Reader() *io.SectionReader {
	return io.NewSectionReader(s.Physical, s.Offset, s.Length)
}
