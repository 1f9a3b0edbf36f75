// pkg/handle/registry.go
package handle

import (
	"context"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/arc-language/aptcache/pkg/cachefile"
	"github.com/arc-language/aptcache/pkg/core"
	"github.com/arc-language/aptcache/pkg/pkgcache"
)

// CacheID identifies an open cache handle
type CacheID uint64

// IterID identifies a package iterator handle
type IterID uint64

// iterTag marks iterator ids so they never collide with cache ids
const iterTag = 1 << 63

// Opener loads a cache file for CreateCache
type Opener func(ctx context.Context) (*cachefile.CacheFile, error)

type cacheEntry struct {
	file  *cachefile.CacheFile
	iters map[IterID]struct{}
}

type iterEntry struct {
	owner CacheID
	it    pkgcache.PkgIterator
}

// Registry maps opaque ids to caches and iterators. Ids are never reused,
// so an id whose owner was released is reported as stale instead of
// aliasing a newer object. Every iterator belongs to the arena of the cache
// it was created from and is dropped when that cache is released.
type Registry struct {
	mu     sync.Mutex
	open   Opener
	logger *log.Logger

	lastCache uint64
	lastIter  uint64
	caches    map[CacheID]*cacheEntry
	iters     map[IterID]*iterEntry
}

// NewRegistry creates a registry that opens caches with open.
// A nil open uses cachefile.OpenDefault.
func NewRegistry(open Opener, logger *log.Logger) *Registry {
	if open == nil {
		open = cachefile.OpenDefault
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Registry{
		open:   open,
		logger: logger,
		caches: make(map[CacheID]*cacheEntry),
		iters:  make(map[IterID]*iterEntry),
	}
}

// missingCache tells a cache id that was never issued from a released one
func (r *Registry) missingCache(id CacheID) error {
	if id == 0 || uint64(id) > r.lastCache {
		return core.ErrInvalidHandle
	}
	return core.ErrStaleHandle
}

func (r *Registry) missingIter(iid IterID) error {
	if uint64(iid)&iterTag == 0 {
		return core.ErrInvalidHandle
	}
	if n := uint64(iid) &^ iterTag; n == 0 || n > r.lastIter {
		return core.ErrInvalidHandle
	}
	return core.ErrStaleHandle
}

// CreateCache opens a cache and returns its handle
func (r *Registry) CreateCache(ctx context.Context) (CacheID, error) {
	file, err := r.open(ctx)
	if err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastCache++
	id := CacheID(r.lastCache)
	r.caches[id] = &cacheEntry{file: file, iters: make(map[IterID]struct{})}
	r.logger.Debug("created cache", "id", id, "packages", file.GetPkgCache().PackageCount())
	return id, nil
}

// ReleaseCache closes the cache and drops every iterator in its arena.
// The released iterator ids are returned so callers can free whatever they
// associated with them.
func (r *Registry) ReleaseCache(id CacheID) ([]IterID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.caches[id]
	if !ok {
		return nil, r.missingCache(id)
	}
	delete(r.caches, id)

	released := make([]IterID, 0, len(entry.iters))
	for iid := range entry.iters {
		delete(r.iters, iid)
		released = append(released, iid)
	}
	r.logger.Debug("released cache", "id", id, "iterators", len(released))

	if err := entry.file.Close(); err != nil {
		return released, err
	}
	return released, nil
}

// File returns the cache file behind a handle
func (r *Registry) File(id CacheID) (*cachefile.CacheFile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.caches[id]
	if !ok {
		return nil, r.missingCache(id)
	}
	return entry.file, nil
}

func (r *Registry) newIter(id CacheID, position func(*pkgcache.Cache) pkgcache.PkgIterator) (IterID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.caches[id]
	if !ok {
		return 0, r.missingCache(id)
	}
	r.lastIter++
	iid := IterID(iterTag | r.lastIter)
	r.iters[iid] = &iterEntry{owner: id, it: position(entry.file.GetPkgCache())}
	entry.iters[iid] = struct{}{}
	return iid, nil
}

// Begin returns an iterator at the first entry of the package table
func (r *Registry) Begin(id CacheID) (IterID, error) {
	return r.newIter(id, func(c *pkgcache.Cache) pkgcache.PkgIterator {
		return c.PkgBegin()
	})
}

// FindName returns an iterator at the package called name, or at end
func (r *Registry) FindName(id CacheID, name string) (IterID, error) {
	return r.newIter(id, func(c *pkgcache.Cache) pkgcache.PkgIterator {
		return c.FindPkg(name)
	})
}

// FindNameArch returns an iterator at name for architecture arch, or at end
func (r *Registry) FindNameArch(id CacheID, name, arch string) (IterID, error) {
	return r.newIter(id, func(c *pkgcache.Cache) pkgcache.PkgIterator {
		return c.FindPkgArch(name, arch)
	})
}

// ReleaseIter frees an iterator handle
func (r *Registry) ReleaseIter(iid IterID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.iters[iid]
	if !ok {
		return r.missingIter(iid)
	}
	delete(r.iters, iid)
	if owner, ok := r.caches[entry.owner]; ok {
		delete(owner.iters, iid)
	}
	return nil
}

// LiveIterators returns the number of iterators in a cache's arena
func (r *Registry) LiveIterators(id CacheID) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry, ok := r.caches[id]; ok {
		return len(entry.iters)
	}
	return 0
}

func (r *Registry) withIter(iid IterID, fn func(*iterEntry) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.iters[iid]
	if !ok {
		return r.missingIter(iid)
	}
	return fn(entry)
}

// Next advances an iterator. At end it stays at end.
func (r *Registry) Next(iid IterID) error {
	return r.withIter(iid, func(e *iterEntry) error {
		e.it.Next()
		return nil
	})
}

// End reports whether an iterator is at the end sentinel
func (r *Registry) End(iid IterID) (bool, error) {
	var end bool
	err := r.withIter(iid, func(e *iterEntry) error {
		end = e.it.End()
		return nil
	})
	return end, err
}

func (r *Registry) field(iid IterID, get func(pkgcache.PkgIterator) string) (string, error) {
	var s string
	err := r.withIter(iid, func(e *iterEntry) error {
		if e.it.End() {
			return core.ErrAtEnd
		}
		s = get(e.it)
		return nil
	})
	return s, err
}

// Name returns the current package name
func (r *Registry) Name(iid IterID) (string, error) {
	return r.field(iid, pkgcache.PkgIterator.Name)
}

// Arch returns the current package architecture
func (r *Registry) Arch(iid IterID) (string, error) {
	return r.field(iid, pkgcache.PkgIterator.Arch)
}

// CurrentVersion returns the installed version string, "" when the package
// is not installed
func (r *Registry) CurrentVersion(iid IterID) (string, error) {
	return r.field(iid, pkgcache.PkgIterator.CurVersion)
}

// Pretty renders the package under iid against the dependency view of the
// given cache. The iterator must come from that cache.
func (r *Registry) Pretty(id CacheID, iid IterID) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.caches[id]
	if !ok {
		return "", r.missingCache(id)
	}
	e, ok := r.iters[iid]
	if !ok {
		return "", r.missingIter(iid)
	}
	if e.owner != id {
		return "", &core.Error{Op: "pretty", Err: core.ErrInvalidHandle}
	}
	if e.it.End() {
		return "", &core.Error{Op: "pretty", Err: core.ErrAtEnd}
	}
	return pkgcache.PrettyPkg(c.file.GetDepCache(), e.it), nil
}
