package pathresolve

import (
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
)

// LocalFilesystem returns a go-billy filesystem rooted at the OS root, for
// callers that work in terms of billy.Filesystem. The classpath resolver
// and its tests do not use it; they go through Exists and Canonicalize on
// the real filesystem.
func LocalFilesystem() billy.Filesystem {
	return osfs.New("/")
}

// ExistsFS is Exists's billy.Filesystem-backed counterpart, used so the
// same existence check exercised against the real filesystem can be
// exercised against an in-memory fixture (go-billy/v5/memfs) in tests
// without touching disk.
func ExistsFS(fsys billy.Filesystem, path string) (isFile, isDir bool, err error) {
	info, err := fsys.Stat(path)
	if err != nil {
		return false, false, err
	}
	mode := info.Mode()
	return mode.IsRegular(), mode.IsDir(), nil
}
