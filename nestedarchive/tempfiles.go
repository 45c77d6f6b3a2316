package nestedarchive

import (
	"errors"
	"os"
	"strings"
	"sync"
)

// tempFileSanitizeChars are replaced with "_" when composing a temp file's
// leaf name, so that archive-relative paths (which may contain any of
// these) are safe to embed in a filesystem path component.
const tempFileSanitizeChars = `/\:?&= `

// tempFileRegistry tracks every temp file this handler has created, in
// creation order, so Close can delete them in reverse order, avoiding
// deleting a directory before files inside it if a future extension
// nests temp paths.
type tempFileRegistry struct {
	dir string

	mu    sync.Mutex
	paths []string
}

func newTempFileRegistry(dir string) *tempFileRegistry {
	if dir == "" {
		dir = os.TempDir()
	}
	return &tempFileRegistry{dir: dir}
}

// sanitizeLeaf replaces every character in tempFileSanitizeChars with "_".
func sanitizeLeaf(leaf string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(tempFileSanitizeChars, r) {
			return '_'
		}
		return r
	}, leaf)
}

// create opens a new temp file named "<randomPrefix>---<sanitizedLeaf>"
// under the registry's directory and records it for later deletion. The
// "---" separator is part of the external contract: debugging tools rely
// on it to identify session temp files.
func (r *tempFileRegistry) create(leaf string) (*os.File, error) {
	pattern := "*---" + sanitizeLeaf(leaf)
	f, err := os.CreateTemp(r.dir, pattern)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.paths = append(r.paths, f.Name())
	r.mu.Unlock()
	return f, nil
}

// forget removes path from the registry without deleting it, used when an
// extraction fails partway and the caller deletes the partial file itself.
func (r *tempFileRegistry) forget(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, p := range r.paths {
		if p == path {
			r.paths = append(r.paths[:i], r.paths[i+1:]...)
			return
		}
	}
}

// deleteAll removes every registered temp file in reverse-insertion order
// and returns the combined error, if any. It is safe to call more than
// once; already-removed paths are ignored.
func (r *tempFileRegistry) deleteAll() error {
	r.mu.Lock()
	paths := r.paths
	r.paths = nil
	r.mu.Unlock()

	var errs []error
	for i := len(paths) - 1; i >= 0; i-- {
		if err := os.Remove(paths[i]); err != nil && !os.IsNotExist(err) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func removeIgnoreNotExist(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
