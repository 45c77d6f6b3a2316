package nestedarchive

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/flate"

	"github.com/archscan/classpathfs/classpatherr"
	"github.com/archscan/classpathfs/recycler"
)

// flateResetter is satisfied by klauspost/compress/flate's reader; pooling
// requires rebinding it to a new source on each borrow instead of
// allocating a fresh inflater per entry.
type flateResetter interface {
	io.Reader
	Reset(r io.Reader, dict []byte) error
}

func newInflaterPool() *recycler.ExceptionlessPool[flateResetter] {
	return recycler.NewExceptionless(func() flateResetter {
		return flate.NewReader(bytes.NewReader(nil)).(flateResetter)
	}, func(flateResetter) {})
}

// BorrowInflater hands out a pooled inflater already reset to read from
// src, plus a release function that must be called once the caller is
// done reading. Handing out a scoped accessor rather than the pool itself
// keeps callers from forgetting to release it on an error path.
func (h *Handler) BorrowInflater(src io.Reader) (io.Reader, func(), error) {
	if h.closed.Load() {
		return nil, nil, classpatherr.New(classpatherr.CodeClosed, "nestedarchive.BorrowInflater", "", "handler is closed")
	}
	inf, release := h.inflaters.Borrow()
	if err := inf.Reset(src, nil); err != nil {
		release()
		return nil, nil, classpatherr.Wrap(err, classpatherr.CodeExtraction, "nestedarchive.BorrowInflater", "")
	}
	return inf, release, nil
}
