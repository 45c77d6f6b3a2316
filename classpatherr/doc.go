// Package classpatherr implements the error taxonomy from the propagation
// policy of the classpath resolver and nested archive handler: per-entry
// validation failures are non-fatal and are logged and skipped, while
// mapping failures, closed-after-use, and oversized-entry failures are
// surfaced to the caller of the originating operation.
package classpatherr
