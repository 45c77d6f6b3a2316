package classpath

import (
	"context"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/archscan/classpathfs/classpatherr"
	"github.com/archscan/classpathfs/internal/xlog"
	"github.com/archscan/classpathfs/pathresolve"
)

// ScanSpec carries the subset of scan configuration the resolver
// consults.
type ScanSpec struct {
	BlacklistSystemJars bool
}

// Option configures a Resolver constructed by New.
type Option func(*Resolver)

// WithLogger overrides the default (slog.Default()) logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) { r.log = xlog.New(l) }
}

// WithManifestParser overrides the default archive/zip-backed manifest
// parser.
func WithManifestParser(p ManifestParser) Option {
	return func(r *Resolver) { r.parser = p }
}

// WithWorkers overrides the default worker count of 1. The calling
// goroutine always participates as a worker too, so N=1 still resolves
// correctly -- it degrades to sequential processing on the caller alone.
func WithWorkers(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.workers = n
		}
	}
}

// Resolver resolves a raw, positionally ordered classpath into a
// deduplicated, canonicalized list, expanding manifest Class-Path
// references as it goes. The zero value is not usable; construct with
// New.
type Resolver struct {
	spec    ScanSpec
	workers int
	parser  ManifestParser
	log     *xlog.Logger
	jre     *jreBlacklist

	queue     *elementQueue
	remaining atomic.Int64
	killAll   atomic.Bool

	pathToEarliestKey sync.Map // canonicalPath string -> OrderKey

	validMu sync.Mutex
	valid   []*OrderedElement

	errMu sync.Mutex
	err   error
}

// New constructs a Resolver for the given scan spec.
func New(spec ScanSpec, opts ...Option) *Resolver {
	r := &Resolver{
		spec:    spec,
		workers: 1,
		parser:  DefaultManifestParser{},
		log:     xlog.Default(),
		jre:     newJREBlacklist(),
		queue:   newElementQueue(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve resolves raw (positionally ordered, possibly relative to cwd)
// into the deduplicated, canonicalized classpath.
func (r *Resolver) Resolve(ctx context.Context, raw []string, cwd string) ([]string, error) {
	for i, rawPath := range raw {
		el := &OrderedElement{
			OrderKey:   RootKey(i, len(raw)),
			ParentPath: cwd,
			RawPath:    rawPath,
		}
		r.remaining.Add(1)
		r.queue.push(el)
	}

	stop := r.watchContext(ctx)
	defer stop()

	var wg sync.WaitGroup
	for i := 1; i < r.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.runWorker()
		}()
	}
	r.runWorker() // the calling goroutine participates as a worker too
	wg.Wait()

	r.killAll.Store(true)
	r.queue.wake()

	if err := r.loadErr(); err != nil {
		return nil, err
	}
	return r.finalize(), nil
}

// watchContext returns a stop function; while active it sets killAll and
// records an Interrupted error if ctx is cancelled before Resolve drains
// naturally.
func (r *Resolver) watchContext(ctx context.Context) func() {
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			r.storeErr(classpatherr.Wrap(ctx.Err(), classpatherr.CodeInterrupted, "classpath.Resolve", ""))
			r.killAll.Store(true)
			r.queue.wake()
		case <-done:
		}
	}()
	return func() { close(done) }
}

func (r *Resolver) runWorker() {
	for {
		el, ok := r.queue.popWait(&r.remaining, &r.killAll)
		if !ok {
			return
		}
		r.process(el)
	}
}

func (r *Resolver) process(el *OrderedElement) {
	defer func() {
		remaining := r.remaining.Add(-1)
		if remaining == 0 {
			r.queue.wake()
		}
	}()

	if !r.validate(el) {
		return
	}
	r.addValid(el)

	if !el.IsFile {
		return
	}
	r.expandManifest(el)
}

// validate implements OrderedClasspathElement.isValid: path resolution,
// existence, system-jar blacklisting, and first-wins dedup.
func (r *Resolver) validate(el *OrderedElement) bool {
	el.ResolvedPath = pathresolve.Resolve(el.RawPath, el.ParentPath)

	canonical, err := pathresolve.Canonicalize(el.ResolvedPath)
	if err != nil {
		r.log.Debug(context.Background(), "classpath entry does not exist", "path", el.ResolvedPath, "error", err)
		return false
	}
	el.CanonicalPath = canonical

	isFile, isDir, err := pathresolve.Exists(canonical)
	if err != nil || (!isFile && !isDir) {
		r.log.Debug(context.Background(), "classpath entry is neither a file nor a directory", "path", canonical)
		return false
	}
	el.IsFile, el.IsDir = isFile, isDir

	if r.spec.BlacklistSystemJars && r.jre.isSystemPath(filepath.Dir(canonical)) {
		r.log.Debug(context.Background(), "classpath entry blacklisted as a system jar", "path", canonical)
		return false
	}

	return r.claim(canonical, el.OrderKey)
}

// claim implements the dedup compare-and-update: it returns true iff el's
// OrderKey becomes (or already was) the earliest claim on canonical.
func (r *Resolver) claim(canonical string, key OrderKey) bool {
	for {
		actual, loaded := r.pathToEarliestKey.LoadOrStore(canonical, key)
		if !loaded {
			return true
		}
		existing := actual.(OrderKey)
		if key >= existing {
			return false
		}
		if r.pathToEarliestKey.CompareAndSwap(canonical, actual, key) {
			return true
		}
	}
}

func (r *Resolver) addValid(el *OrderedElement) {
	r.validMu.Lock()
	r.valid = append(r.valid, el)
	r.validMu.Unlock()
}

// expandManifest parses el's Class-Path manifest header, if any, and
// enqueues one child OrderedElement per listed entry with an OrderKey
// that sorts immediately after el and before el's next sibling.
func (r *Resolver) expandManifest(el *OrderedElement) {
	classPath, ok, err := r.parser.ClassPath(context.Background(), el.CanonicalPath)
	if err != nil {
		r.log.Debug(context.Background(), "manifest parse failed", "path", el.CanonicalPath, "error", err)
		return
	}
	if !ok || strings.TrimSpace(classPath) == "" {
		return
	}

	entries := strings.Fields(classPath)
	parentDir := filepath.Dir(el.CanonicalPath)
	for i, childRaw := range entries {
		child := &OrderedElement{
			OrderKey:   el.OrderKey.Child(i, len(entries)),
			ParentPath: parentDir,
			RawPath:    childRaw,
		}
		r.remaining.Add(1)
		r.queue.push(child)
	}
}

func (r *Resolver) storeErr(err error) {
	r.errMu.Lock()
	if r.err == nil {
		r.err = err
	}
	r.errMu.Unlock()
}

func (r *Resolver) loadErr() error {
	r.errMu.Lock()
	defer r.errMu.Unlock()
	return r.err
}

// finalize sorts the accumulated valid elements by OrderKey and emits
// each one's canonical path, skipping any canonical path already emitted
// -- the retracted-claim elements from validate's dedup pass remain in
// valid, but always sort after the element that ultimately won the claim.
func (r *Resolver) finalize() []string {
	r.validMu.Lock()
	valid := r.valid
	r.validMu.Unlock()

	sort.Slice(valid, func(i, j int) bool { return valid[i].OrderKey < valid[j].OrderKey })

	seen := make(map[string]struct{}, len(valid))
	out := make([]string, 0, len(valid))
	for _, el := range valid {
		if _, ok := seen[el.CanonicalPath]; ok {
			continue
		}
		seen[el.CanonicalPath] = struct{}{}
		out = append(out, el.CanonicalPath)
	}
	return out
}
