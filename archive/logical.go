package archive

import (
	"context"
	"strings"
	"sync"

	"github.com/archscan/classpathfs/classpatherr"
)

// CentralDirectoryParser is the external collaborator responsible for
// reading an archive's central directory and producing its entry list.
// Central-directory parsing itself is out of scope for this core (see
// ZipCentralDirectoryParser); this interface is the seam an embedder
// implements.
type CentralDirectoryParser interface {
	Parse(ctx context.Context, slice Slice) ([]*Entry, error)
}

// Logical is a parsed view over an ArchiveSlice: its entry list and a
// mutable set of directory prefixes to be treated as classpath roots.
type Logical struct {
	Slice   Slice
	Entries []*Entry

	mu             sync.Mutex
	classpathRoots map[string]struct{}
	closed         bool
}

// NewLogical parses slice's central directory via parser and constructs
// the Logical archive layered on top of it.
func NewLogical(ctx context.Context, slice Slice, parser CentralDirectoryParser) (*Logical, error) {
	entries, err := parser.Parse(ctx, slice)
	if err != nil {
		return nil, classpatherr.Wrap(err, classpatherr.CodeNotArchive, "archive.NewLogical", "")
	}
	l := &Logical{
		Slice:          slice,
		Entries:        entries,
		classpathRoots: make(map[string]struct{}),
	}
	for _, e := range entries {
		e.parent = l
	}
	return l, nil
}

// FindEntry returns the entry with the given name, or nil if none exists.
func (l *Logical) FindEntry(name string) *Entry {
	for _, e := range l.Entries {
		if e.Name == name {
			return e
		}
	}
	return nil
}

// HasDirPrefix reports whether any entry's name starts with prefix,
// meaning prefix should be treated as a directory within this archive
// even though it has no entry of its own.
func (l *Logical) HasDirPrefix(prefix string) bool {
	for _, e := range l.Entries {
		if strings.HasPrefix(e.Name, prefix) {
			return true
		}
	}
	return false
}

// AddClasspathRoot registers dir as an intra-archive package root. Empty
// roots are ignored, matching the top-level open() case where the package
// root is "".
func (l *Logical) AddClasspathRoot(dir string) {
	if dir == "" {
		return
	}
	l.mu.Lock()
	l.classpathRoots[dir] = struct{}{}
	l.mu.Unlock()
}

// ClasspathRoots returns a snapshot of the registered package roots.
func (l *Logical) ClasspathRoots() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, 0, len(l.classpathRoots))
	for r := range l.classpathRoots {
		out = append(out, r)
	}
	return out
}

// Close marks the Logical archive closed. Logical holds only a
// non-owning reference to its Slice's PhysicalArchive -- actual teardown
// of the backing bytes is the owning Handler's responsibility, driven by
// its allocated-archives queue.
func (l *Logical) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	return nil
}
