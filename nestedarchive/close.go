package nestedarchive

import (
	"runtime"

	"github.com/archscan/classpathfs/classpatherr"
)

// Close tears the handler down in the order described by the handler's
// resource-teardown contract: logical archives close before the physical
// archives they reference, which close before their backing temp files
// are deleted, and every step is idempotent so a second Close observes no
// additional effect. Failures closing individual archives are aggregated
// rather than silently dropped.
func (h *Handler) Close() error {
	if !h.closed.CompareAndSwap(false, true) {
		return nil
	}

	h.inflaters.ForceClose()

	h.moduleReadersMu.Lock()
	pools := h.moduleReaders
	h.moduleReaders = nil
	h.moduleReadersMu.Unlock()
	for _, pool := range pools {
		pool.ForceClose()
	}

	h.slices.Clear()
	h.nestedPaths.Clear()

	h.allocatedMu.Lock()
	allocated := h.allocated
	h.allocated = nil
	h.allocatedMu.Unlock()

	var errs []error
	for _, logical := range allocated {
		if err := logical.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	for _, physical := range h.canonicalFiles.Values() {
		if err := physical.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	h.canonicalFiles.Clear()

	h.additionalMu.Lock()
	additional := h.additional
	h.additional = nil
	h.additionalMu.Unlock()
	for _, physical := range additional {
		if err := physical.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	h.entrySlices.Clear()

	gcHintBeforeTempFileDeletion()

	if err := h.tempFiles.deleteAll(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) == 0 {
		return nil
	}
	return classpatherr.Join(classpatherr.CodeExtraction, "nestedarchive.Close", "", errs...)
}

// gcHintBeforeTempFileDeletion requests a collection on platforms where a
// mapped file cannot be deleted while mapped, since close() unmaps chunks
// by dropping references rather than explicit unmap calls on those
// platforms' fallback backend.
func gcHintBeforeTempFileDeletion() {
	if runtime.GOOS != "linux" && runtime.GOOS != "darwin" {
		runtime.GC()
	}
}
