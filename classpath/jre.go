package classpath

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// jreBlacklist caches canonical directories known to belong to the
// platform runtime, populated opportunistically as paths are validated so
// repeated entries under the same install avoid re-deriving the answer.
type jreBlacklist struct {
	mu    sync.Mutex
	known map[string]bool
}

func newJREBlacklist() *jreBlacklist {
	return &jreBlacklist{known: make(map[string]bool)}
}

// systemJarMarkers are path components that conventionally identify a
// directory as part of a JRE/JDK installation rather than application
// code (e.g. ".../jvm/.../rt.jar").
var systemJarMarkers = []string{
	string(filepath.Separator) + "jvm" + string(filepath.Separator),
	string(filepath.Separator) + "jre" + string(filepath.Separator),
	string(filepath.Separator) + "jmods" + string(filepath.Separator),
}

// isSystemPath reports whether dir (the directory containing a candidate
// classpath entry) lies under a known or heuristically detected JRE path.
func (b *jreBlacklist) isSystemPath(dir string) bool {
	b.mu.Lock()
	if known, ok := b.known[dir]; ok {
		b.mu.Unlock()
		return known
	}
	b.mu.Unlock()

	isSystem := matchesSystemMarker(dir) || underJavaHome(dir)

	b.mu.Lock()
	b.known[dir] = isSystem
	b.mu.Unlock()
	return isSystem
}

func matchesSystemMarker(dir string) bool {
	for _, marker := range systemJarMarkers {
		if strings.Contains(dir, marker) {
			return true
		}
	}
	return false
}

func underJavaHome(dir string) bool {
	home := os.Getenv("JAVA_HOME")
	if home == "" {
		return false
	}
	rel, err := filepath.Rel(home, dir)
	if err != nil {
		return false
	}
	return rel == "." || !strings.HasPrefix(rel, "..")
}
