//go:build linux

package nestedarchive

import "runtime"

// gcHintOnLinux requests a collection. The hint is advisory: fileArchive
// already unmaps each chunk explicitly in Close, so the collection does
// not itself release any mapping.
func gcHintOnLinux() { runtime.GC() }
