package classpath

import (
	"bufio"
	"context"
	"io"
	"strings"

	"github.com/archscan/classpathfs/archive"
	"github.com/archscan/classpathfs/classpatherr"
)

// ManifestParser is the external collaborator that, given a canonical
// archive path, returns its manifest's Class-Path header value.
type ManifestParser interface {
	ClassPath(ctx context.Context, canonicalPath string) (value string, ok bool, err error)
}

// manifestEntryName is the conventional location of a jar manifest.
const manifestEntryName = "META-INF/MANIFEST.MF"

// DefaultManifestParser reads META-INF/MANIFEST.MF from an archive opened
// directly through the archive package (this subsystem does not route
// through nestedarchive.Handler: manifest lookups for top-level classpath
// entries need no "!"-path resolution, only the archive's own central
// directory).
type DefaultManifestParser struct {
	NewParser func() archive.CentralDirectoryParser
}

// ClassPath opens canonicalPath as a zip archive, locates its manifest,
// and extracts the unfolded Class-Path header value, if present.
func (p DefaultManifestParser) ClassPath(ctx context.Context, canonicalPath string) (string, bool, error) {
	physical, err := archive.OpenFile(canonicalPath, nil)
	if err != nil {
		return "", false, classpatherr.Wrap(err, classpatherr.CodeNotArchive, "classpath.ClassPath", canonicalPath)
	}
	defer physical.Close()

	parser := p.parser()
	logical, err := archive.NewLogical(ctx, archive.WholeFile(physical), parser)
	if err != nil {
		return "", false, err
	}

	entry := logical.FindEntry(manifestEntryName)
	if entry == nil {
		return "", false, nil
	}
	rc, err := entry.Open()
	if err != nil {
		return "", false, classpatherr.Wrap(err, classpatherr.CodeNotArchive, "classpath.ClassPath", canonicalPath)
	}
	defer rc.Close()

	return parseClassPathHeader(rc)
}

func (p DefaultManifestParser) parser() archive.CentralDirectoryParser {
	if p.NewParser != nil {
		return p.NewParser()
	}
	return archive.ZipCentralDirectoryParser{}
}

// parseClassPathHeader scans manifest lines, unfolding continuation lines
// (any line beginning with a single space is a continuation of the
// previous header, per the jar manifest format), and returns the value of
// the first Class-Path header found.
func parseClassPathHeader(r io.Reader) (string, bool, error) {
	scanner := bufio.NewScanner(r)
	var (
		inClassPath bool
		value       strings.Builder
		found       bool
	)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.HasPrefix(line, " ") {
			if inClassPath {
				value.WriteString(strings.TrimPrefix(line, " "))
			}
			continue
		}
		inClassPath = false
		const header = "Class-Path:"
		if !found && strings.HasPrefix(line, header) {
			found = true
			inClassPath = true
			value.WriteString(strings.TrimLeft(strings.TrimPrefix(line, header), " "))
		}
	}
	if err := scanner.Err(); err != nil {
		return "", false, err
	}
	return value.String(), found, nil
}
