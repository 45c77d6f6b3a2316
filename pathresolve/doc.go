// Package pathresolve canonicalizes classpath-entry path strings: it
// strips redundant "./" components, resolves "..", normalizes path
// separators, and resolves a raw path against a parent directory. It
// normalizes path separators in the style of a minio-client pathutil
// helper, extended with OS-canonical symlink resolution for on-disk
// entries via filepath.EvalSymlinks.
package pathresolve
