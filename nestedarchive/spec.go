package nestedarchive

// ScanSpec carries the subset of scan configuration the handler consults
// when resolving nested archive paths. Any other scan flags a caller
// tracks pass through its own config layer untouched.
type ScanSpec struct {
	// BlacklistSystemJars is read by the classpath package; the handler
	// itself does not filter on it, but carries it for callers that build
	// both from one config value.
	BlacklistSystemJars bool

	// ScanNestedJars, when false, causes Open to fail with CodeDisabled on
	// any path segment that resolves to a file rather than a directory.
	ScanNestedJars bool

	// EnableRemoteJarScanning, when false, causes Open to fail with
	// CodeDisabled on any path whose outermost segment is an http(s) URL.
	EnableRemoteJarScanning bool
}
