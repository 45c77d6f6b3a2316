package nestedarchive

import (
	"context"
	"io"
	"os"
	"path"
	"strings"

	"github.com/archscan/classpathfs/archive"
	"github.com/archscan/classpathfs/classpatherr"
	"github.com/archscan/classpathfs/pathresolve"
)

// Open resolves a "!"-delimited nested archive path to a logical archive
// and the intra-archive package root the path names, memoizing the result
// per path string.
func (h *Handler) Open(ctx context.Context, nestedPath string) (*archive.Logical, string, error) {
	if h.closed.Load() {
		return nil, "", classpatherr.New(classpatherr.CodeClosed, "nestedarchive.Open", nestedPath, "handler is closed")
	}
	res, err := h.nestedPaths.Get(ctx, nestedPath)
	if err != nil {
		return nil, "", err
	}
	return res.logical, res.packageRoot, nil
}

// resolveNestedPath is the nestedPaths SingletonMap factory: it implements
// the split-at-last-"!" recursion described by the handler's open state
// machine. It must not hold any per-key lock across the recursive call on
// the parent path -- singleton.Map already serializes only per key, so
// recursing through Get on a different (shorter) key cannot deadlock, and
// termination is guaranteed because each recursion strips one "!" segment.
func (h *Handler) resolveNestedPath(ctx context.Context, nestedPath string) (openResult, error) {
	idx := strings.LastIndex(nestedPath, "!")
	if idx < 0 {
		return h.resolveBase(ctx, nestedPath)
	}
	return h.resolveRecursive(ctx, nestedPath[:idx], nestedPath[idx+1:])
}

func (h *Handler) resolveBase(ctx context.Context, raw string) (openResult, error) {
	var localPath string
	if isRemote(raw) {
		if !h.spec.EnableRemoteJarScanning {
			return openResult{}, classpatherr.New(classpatherr.CodeDisabled, "nestedarchive.Open", raw, "remote jar scanning is disabled")
		}
		downloaded, err := h.downloadRemote(ctx, raw)
		if err != nil {
			return openResult{}, err
		}
		localPath = downloaded
	} else {
		canon, err := pathresolve.Canonicalize(raw)
		if err != nil {
			return openResult{}, classpatherr.Wrap(err, classpatherr.CodeNotFound, "nestedarchive.Open", raw)
		}
		localPath = canon
	}

	info, err := os.Stat(localPath)
	if err != nil {
		return openResult{}, classpatherr.Wrap(err, classpatherr.CodeNotFound, "nestedarchive.Open", localPath)
	}
	if !info.Mode().IsRegular() {
		return openResult{}, classpatherr.New(classpatherr.CodeNotArchive, "nestedarchive.Open", localPath, "not a regular file")
	}

	physical, err := h.canonicalFiles.Get(ctx, localPath)
	if err != nil {
		return openResult{}, err
	}
	logical, err := h.slices.Get(ctx, archive.WholeFile(physical))
	if err != nil {
		return openResult{}, err
	}
	return openResult{logical: logical, packageRoot: ""}, nil
}

func (h *Handler) resolveRecursive(ctx context.Context, parentRaw, childRaw string) (openResult, error) {
	sanitizedChild, explicitDir := pathresolve.StripArchiveSlashes(childRaw)

	parent, err := h.nestedPaths.Get(ctx, parentRaw)
	if err != nil {
		return openResult{}, err
	}
	parentLogical := parent.logical

	if explicitDir {
		parentLogical.AddClasspathRoot(sanitizedChild)
		return openResult{logical: parentLogical, packageRoot: sanitizedChild}, nil
	}

	if entry := parentLogical.FindEntry(sanitizedChild); entry != nil {
		if !h.spec.ScanNestedJars {
			return openResult{}, classpatherr.New(classpatherr.CodeDisabled, "nestedarchive.Open", sanitizedChild, "nested jar scanning is disabled")
		}
		slice, err := h.entrySlices.Get(ctx, entry)
		if err != nil {
			return openResult{}, err
		}
		logical, err := h.slices.Get(ctx, slice)
		if err != nil {
			return openResult{}, err
		}
		return openResult{logical: logical, packageRoot: ""}, nil
	}

	if parentLogical.HasDirPrefix(sanitizedChild + "/") {
		parentLogical.AddClasspathRoot(sanitizedChild)
		return openResult{logical: parentLogical, packageRoot: sanitizedChild}, nil
	}

	return openResult{}, classpatherr.New(classpatherr.CodeNotFound, "nestedarchive.Open", sanitizedChild, "path does not exist")
}

// resolveEntrySlice is the entrySlices SingletonMap factory: it performs
// the nested-archive extraction branch of the open state machine for a
// file child that must itself be an archive.
func (h *Handler) resolveEntrySlice(ctx context.Context, entry *archive.Entry) (archive.Slice, error) {
	parent := entry.Parent()

	if !entry.Deflated {
		return archive.Slice{
			Physical: parent.Slice.Physical,
			Offset:   parent.Slice.Offset + entry.Offset,
			Length:   entry.CompressedSize,
		}, nil
	}

	needsTempFile := entry.UncompressedSize == 0 ||
		entry.UncompressedSize >= nestedExtractThreshold ||
		entry.CompressedSize >= nestedExtractThreshold

	if needsTempFile {
		slice, err := h.extractEntryToTempFile(ctx, entry)
		if err == nil {
			return slice, nil
		}
		h.log.Warn(ctx, "nested entry extraction to temp file failed, falling back to memory", "entry", entry.Name, "error", err)
	}

	if entry.UncompressedSize > archive.MaxSingleRegion {
		return archive.Slice{}, classpatherr.New(classpatherr.CodeTooLarge, "nestedarchive.Open", entry.Name, "uncompressed size exceeds single-region inflation ceiling")
	}

	data, err := h.inflateEntryToMemory(entry)
	if err != nil {
		return archive.Slice{}, classpatherr.Wrap(err, classpatherr.CodeExtraction, "nestedarchive.Open", entry.Name)
	}
	return archive.WholeFile(archive.OpenMemory(data)), nil
}

func (h *Handler) compressedReader(entry *archive.Entry) io.Reader {
	parent := entry.Parent()
	return io.NewSectionReader(parent.Slice.Physical, parent.Slice.Offset+entry.Offset, entry.CompressedSize)
}

func (h *Handler) extractEntryToTempFile(ctx context.Context, entry *archive.Entry) (archive.Slice, error) {
	inflater, release, err := h.BorrowInflater(h.compressedReader(entry))
	if err != nil {
		return archive.Slice{}, err
	}
	defer release()

	f, err := h.tempFiles.create(path.Base(entry.Name))
	if err != nil {
		return archive.Slice{}, classpatherr.Wrap(err, classpatherr.CodeExtraction, "nestedarchive.Open", entry.Name)
	}
	name := f.Name()

	if _, err := io.Copy(f, inflater); err != nil {
		_ = f.Close()
		h.tempFiles.forget(name)
		_ = removeIgnoreNotExist(name)
		return archive.Slice{}, classpatherr.Wrap(err, classpatherr.CodeExtraction, "nestedarchive.Open", entry.Name)
	}
	if err := f.Close(); err != nil {
		h.tempFiles.forget(name)
		_ = removeIgnoreNotExist(name)
		return archive.Slice{}, classpatherr.Wrap(err, classpatherr.CodeExtraction, "nestedarchive.Open", entry.Name)
	}

	physical, err := h.canonicalFiles.Get(ctx, name)
	if err != nil {
		return archive.Slice{}, err
	}
	h.additionalMu.Lock()
	h.additional = append(h.additional, physical)
	h.additionalMu.Unlock()

	return archive.WholeFile(physical), nil
}

func (h *Handler) inflateEntryToMemory(entry *archive.Entry) ([]byte, error) {
	inflater, release, err := h.BorrowInflater(h.compressedReader(entry))
	if err != nil {
		return nil, err
	}
	defer release()
	return io.ReadAll(inflater)
}
