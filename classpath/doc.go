// Package classpath resolves a raw, positionally ordered classpath into a
// deduplicated, canonicalized list of paths, expanding any jar manifest
// Class-Path references in place so each reference takes on a precedence
// key immediately following its referrer.
package classpath
