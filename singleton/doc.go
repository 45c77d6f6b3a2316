// Package singleton implements the at-most-once-per-key factory cache used
// throughout classpathfs: chunk mapping, canonical-file-to-physical-archive
// resolution, and nested-path resolution all need exactly one construction
// per key while letting unrelated keys proceed fully concurrently.
package singleton
