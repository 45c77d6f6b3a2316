//go:build !linux

package nestedarchive

// gcHintOnLinux is a no-op outside Linux; other platforms are assumed
// free of the 64K-mapping ceiling the hint works around during normal
// operation (Close still requests a collection before deleting temp files
// on platforms other than Linux and Darwin -- see close.go).
func gcHintOnLinux() {}
