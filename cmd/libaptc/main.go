// Command libaptc builds the C-linkage surface of the package cache.
//
//	go build -buildmode=c-shared -o libaptc.so ./cmd/libaptc
//
// Callers include aptc.h. Every handle is an opaque pointer to C memory
// holding a registry id; no Go pointer crosses the boundary.
package main

/*
#include <stdbool.h>
#include <stdlib.h>

#include "records.h"
*/
import "C"

import (
	"context"
	"errors"
	"os"
	"sync"
	"unsafe"

	"github.com/charmbracelet/log"

	"github.com/arc-language/aptcache/pkg/config"
	"github.com/arc-language/aptcache/pkg/core"
	"github.com/arc-language/aptcache/pkg/handle"
)

var (
	logger   = log.NewWithOptions(os.Stderr, log.Options{Prefix: "libaptc", Level: log.WarnLevel})
	registry = handle.NewRegistry(nil, logger)

	// C records of live iterators, freed with their cache
	mu    sync.Mutex
	iters = make(map[handle.IterID]*C.PPkgIterator)
)

func main() {}

//export init_config_system
func init_config_system() {
	cfg, err := config.Load("")
	if err != nil {
		logger.Error("loading configuration", "err", err)
		cfg = config.DefaultConfig()
	}
	if cfg.Debug {
		logger.SetLevel(log.DebugLevel)
	}
	if err := config.Init(cfg); err != nil {
		logger.Error("initializing system", "err", err)
	}
}

//export pkg_cache_create
func pkg_cache_create() *C.PCache {
	id, err := registry.CreateCache(context.Background())
	if err != nil {
		logger.Error("creating cache", "err", err)
		return nil
	}
	p := (*C.PCache)(C.malloc(C.size_t(C.sizeof_PCache)))
	p.id = C.uint64_t(id)
	return p
}

//export pkg_cache_release
func pkg_cache_release(cache *C.PCache) {
	if cache == nil {
		return
	}
	released, err := registry.ReleaseCache(handle.CacheID(cache.id))
	if err != nil {
		logger.Warn("releasing cache", "err", err)
	}

	mu.Lock()
	for _, iid := range released {
		if p, ok := iters[iid]; ok {
			freeIter(p)
			delete(iters, iid)
		}
	}
	mu.Unlock()

	C.free(unsafe.Pointer(cache))
}

func wrapIter(cache *C.PCache, iid handle.IterID, err error) *C.PPkgIterator {
	if err != nil {
		logger.Warn("creating iterator", "err", err)
		return nil
	}
	p := (*C.PPkgIterator)(C.calloc(1, C.size_t(C.sizeof_PPkgIterator)))
	p.id = C.uint64_t(iid)
	p.cache = cache.id

	mu.Lock()
	iters[iid] = p
	mu.Unlock()
	return p
}

//export pkg_cache_pkg_iter
func pkg_cache_pkg_iter(cache *C.PCache) *C.PPkgIterator {
	if cache == nil {
		return nil
	}
	iid, err := registry.Begin(handle.CacheID(cache.id))
	return wrapIter(cache, iid, err)
}

//export pkg_cache_find_name
func pkg_cache_find_name(cache *C.PCache, name *C.char) *C.PPkgIterator {
	if cache == nil || name == nil {
		return nil
	}
	iid, err := registry.FindName(handle.CacheID(cache.id), C.GoString(name))
	return wrapIter(cache, iid, err)
}

//export pkg_cache_find_name_arch
func pkg_cache_find_name_arch(cache *C.PCache, name *C.char, arch *C.char) *C.PPkgIterator {
	if cache == nil || name == nil || arch == nil {
		return nil
	}
	iid, err := registry.FindNameArch(handle.CacheID(cache.id), C.GoString(name), C.GoString(arch))
	return wrapIter(cache, iid, err)
}

//export pkg_iter_release
func pkg_iter_release(iterator *C.PPkgIterator) {
	if iterator == nil {
		return
	}
	iid := handle.IterID(iterator.id)
	if err := registry.ReleaseIter(iid); err != nil && !errors.Is(err, core.ErrStaleHandle) {
		logger.Warn("releasing iterator", "err", err)
	}

	mu.Lock()
	if p, ok := iters[iid]; ok && p == iterator {
		delete(iters, iid)
		freeIter(p)
	}
	mu.Unlock()
}

//export pkg_iter_next
func pkg_iter_next(iterator *C.PPkgIterator) {
	if iterator == nil {
		return
	}
	if err := registry.Next(handle.IterID(iterator.id)); err != nil {
		logger.Warn("advancing iterator", "err", err)
		return
	}
	clearStrings(iterator)
}

//export pkg_iter_end
func pkg_iter_end(iterator *C.PPkgIterator) C.bool {
	if iterator == nil {
		return C.bool(true)
	}
	end, err := registry.End(handle.IterID(iterator.id))
	if err != nil {
		// A stale iterator has nothing left to visit
		return C.bool(true)
	}
	return C.bool(end)
}

// borrowed caches s in *slot so the pointer stays valid until the next
// advance or release of the iterator
func borrowed(slot **C.char, s string, err error) *C.char {
	if err != nil {
		return nil
	}
	if *slot == nil {
		*slot = C.CString(s)
	}
	return *slot
}

//export pkg_iter_name
func pkg_iter_name(iterator *C.PPkgIterator) *C.char {
	if iterator == nil {
		return nil
	}
	s, err := registry.Name(handle.IterID(iterator.id))
	return borrowed(&iterator.name, s, err)
}

//export pkg_iter_arch
func pkg_iter_arch(iterator *C.PPkgIterator) *C.char {
	if iterator == nil {
		return nil
	}
	s, err := registry.Arch(handle.IterID(iterator.id))
	return borrowed(&iterator.arch, s, err)
}

//export pkg_iter_current_version
func pkg_iter_current_version(iterator *C.PPkgIterator) *C.char {
	if iterator == nil {
		return nil
	}
	s, err := registry.CurrentVersion(handle.IterID(iterator.id))
	if err == nil && s == "" {
		return nil
	}
	return borrowed(&iterator.version, s, err)
}

//export pkg_iter_pretty
func pkg_iter_pretty(cache *C.PCache, iterator *C.PPkgIterator) *C.char {
	if cache == nil || iterator == nil {
		return nil
	}
	s, err := registry.Pretty(handle.CacheID(cache.id), handle.IterID(iterator.id))
	if err != nil {
		logger.Warn("pretty printing", "err", err)
		return nil
	}
	// Owned by the caller, released with free()
	return C.CString(s)
}

func clearStrings(p *C.PPkgIterator) {
	for _, slot := range []**C.char{&p.name, &p.arch, &p.version} {
		if *slot != nil {
			C.free(unsafe.Pointer(*slot))
			*slot = nil
		}
	}
}

func freeIter(p *C.PPkgIterator) {
	clearStrings(p)
	C.free(unsafe.Pointer(p))
}
