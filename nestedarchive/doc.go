// Package nestedarchive resolves "!"-delimited nested archive paths to
// logical archives, and owns every resource reachable from that
// resolution: physical archives, parsed logical archives, temporary
// files, and pooled inflaters/module readers. A Handler is the sole owner
// of this state; callers interact through Open and the pooled-resource
// accessors and release everything in one Close.
package nestedarchive
