package nestedarchive

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/archscan/classpathfs/archive"
	"github.com/archscan/classpathfs/classpatherr"
	"github.com/archscan/classpathfs/internal/xlog"
	"github.com/archscan/classpathfs/recycler"
	"github.com/archscan/classpathfs/singleton"
)

// mmapPressureInterval is how many chunk releases accumulate before the
// handler asks the runtime for a collection (on Linux only).
const mmapPressureInterval = 20000

// nestedExtractThreshold is the uncompressed-size cutoff above which a
// deflated nested entry is extracted to a temp file instead of RAM.
const nestedExtractThreshold = 32 * 1024 * 1024

// ModuleReaderFactory opens a reader for a module reference (spec's
// module-reader factory collaborator). Handler pools readers per
// reference via the recycler mechanism.
type ModuleReaderFactory func(moduleRef string) (io.ReadCloser, error)

type openResult struct {
	logical     *archive.Logical
	packageRoot string
}

// Handler resolves "!"-delimited nested archive paths and owns every
// resource reachable from that resolution. The zero value is not usable;
// construct with New.
type Handler struct {
	spec          ScanSpec
	log           *xlog.Logger
	parser        archive.CentralDirectoryParser
	moduleFactory ModuleReaderFactory
	httpClient    HTTPDoer
	tempFiles     *tempFileRegistry

	canonicalFiles *singleton.Map[string, archive.PhysicalArchive]
	slices         *singleton.Map[archive.Slice, *archive.Logical]
	entrySlices    *singleton.Map[*archive.Entry, archive.Slice]
	nestedPaths    *singleton.Map[string, openResult]

	inflaters *recycler.ExceptionlessPool[flateResetter]

	moduleReadersMu sync.Mutex
	moduleReaders   map[string]*recycler.Pool[io.ReadCloser]

	allocatedMu sync.Mutex
	allocated   []*archive.Logical

	additionalMu sync.Mutex
	additional   []archive.PhysicalArchive

	mmapReleases atomic.Int64
	closed       atomic.Bool
}

// Option configures a Handler constructed by New.
type Option func(*Handler)

// WithLogger overrides the default (slog.Default()) logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) { h.log = xlog.New(l) }
}

// WithCentralDirectoryParser overrides the default archive/zip-backed
// parser, e.g. in tests that want to inject a fake.
func WithCentralDirectoryParser(p archive.CentralDirectoryParser) Option {
	return func(h *Handler) { h.parser = p }
}

// WithModuleReaderFactory installs the collaborator used to open readers
// for module references passed to BorrowModuleReader.
func WithModuleReaderFactory(f ModuleReaderFactory) Option {
	return func(h *Handler) { h.moduleFactory = f }
}

// WithTempDir overrides the directory temp files are created in (default
// os.TempDir()).
func WithTempDir(dir string) Option {
	return func(h *Handler) { h.tempFiles = newTempFileRegistry(dir) }
}

// WithHTTPClient overrides the client used to download remote archive
// roots. Accepts anything satisfying Do(*http.Request) (*http.Response, error).
func WithHTTPClient(c HTTPDoer) Option {
	return func(h *Handler) { h.httpClient = c }
}

// New constructs a Handler for the given scan spec.
func New(spec ScanSpec, opts ...Option) *Handler {
	h := &Handler{
		spec:          spec,
		log:           xlog.Default(),
		parser:        archive.ZipCentralDirectoryParser{},
		httpClient:    defaultHTTPClient(),
		tempFiles:     newTempFileRegistry(""),
		moduleReaders: make(map[string]*recycler.Pool[io.ReadCloser]),
	}
	for _, opt := range opts {
		opt(h)
	}

	h.inflaters = newInflaterPool()
	h.canonicalFiles = singleton.New(h.openCanonicalFile)
	h.slices = singleton.New(h.parseSlice)
	h.entrySlices = singleton.New(h.resolveEntrySlice)
	h.nestedPaths = singleton.New(h.resolveNestedPath)
	return h
}

// freedMmapRef is invoked once per PhysicalArchive chunk release. Every
// mmapPressureInterval-th call requests a collection on Linux; elsewhere
// the hint is a no-op. fileArchive unmaps chunks explicitly in Close, so
// the hint is advisory and releases no mapping by itself.
func (h *Handler) freedMmapRef() {
	n := h.mmapReleases.Add(1)
	if n%mmapPressureInterval == 0 {
		gcHintOnLinux()
	}
}

func (h *Handler) openCanonicalFile(_ context.Context, canonicalPath string) (archive.PhysicalArchive, error) {
	return archive.OpenFile(canonicalPath, h.freedMmapRef)
}

func (h *Handler) parseSlice(ctx context.Context, slice archive.Slice) (*archive.Logical, error) {
	logical, err := archive.NewLogical(ctx, slice, h.parser)
	if err != nil {
		return nil, err
	}
	h.allocatedMu.Lock()
	h.allocated = append(h.allocated, logical)
	h.allocatedMu.Unlock()
	return logical, nil
}

// BorrowModuleReader hands out a pooled reader for moduleRef, lazily
// creating its pool on first use.
func (h *Handler) BorrowModuleReader(moduleRef string) (io.ReadCloser, func(), error) {
	if h.closed.Load() {
		return nil, nil, classpatherr.New(classpatherr.CodeClosed, "nestedarchive.BorrowModuleReader", moduleRef, "handler is closed")
	}
	if h.moduleFactory == nil {
		return nil, nil, classpatherr.New(classpatherr.CodeDisabled, "nestedarchive.BorrowModuleReader", moduleRef, "no module reader factory configured")
	}

	h.moduleReadersMu.Lock()
	pool, ok := h.moduleReaders[moduleRef]
	if !ok {
		pool = recycler.New(func() (io.ReadCloser, error) {
			return h.moduleFactory(moduleRef)
		}, func(rc io.ReadCloser) { _ = rc.Close() })
		h.moduleReaders[moduleRef] = pool
	}
	h.moduleReadersMu.Unlock()

	v, release, err := pool.Borrow()
	if err != nil {
		return nil, nil, classpatherr.Wrap(err, classpatherr.CodeExtraction, "nestedarchive.BorrowModuleReader", moduleRef)
	}
	return v, release, nil
}
