// cmd/libaptc/session.go
package main

/*
#include <stdlib.h>

#include "records.h"
*/
import "C"

import (
	"unsafe"

	"github.com/arc-language/aptcache/pkg/handle"
)

// cacheRef and iterRef drive the exported entry points with Go values, the
// way a C caller would.
type cacheRef struct{ p *C.PCache }

type iterRef struct{ p *C.PPkgIterator }

func createCache() cacheRef {
	return cacheRef{pkg_cache_create()}
}

// cacheRecord builds a cache record around id, as a caller holding a copy
// of an old handle would have
func cacheRecord(id handle.CacheID) cacheRef {
	p := (*C.PCache)(C.malloc(C.size_t(C.sizeof_PCache)))
	p.id = C.uint64_t(id)
	return cacheRef{p}
}

func (c cacheRef) valid() bool { return c.p != nil }

func (c cacheRef) id() handle.CacheID { return handle.CacheID(c.p.id) }

// release frees the cache and every iterator created from it
func (c cacheRef) release() { pkg_cache_release(c.p) }

func (c cacheRef) begin() iterRef {
	return iterRef{pkg_cache_pkg_iter(c.p)}
}

func (c cacheRef) find(name string) iterRef {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	return iterRef{pkg_cache_find_name(c.p, cname)}
}

func (c cacheRef) findArch(name, arch string) iterRef {
	cname, carch := C.CString(name), C.CString(arch)
	defer C.free(unsafe.Pointer(cname))
	defer C.free(unsafe.Pointer(carch))
	return iterRef{pkg_cache_find_name_arch(c.p, cname, carch)}
}

func (c cacheRef) pretty(it iterRef) (string, bool) {
	s := pkg_iter_pretty(c.p, it.p)
	if s == nil {
		return "", false
	}
	defer C.free(unsafe.Pointer(s))
	return C.GoString(s), true
}

// iterRecord builds an iterator record around iid, outside the arena
func iterRecord(cache handle.CacheID, iid handle.IterID) iterRef {
	p := (*C.PPkgIterator)(C.calloc(1, C.size_t(C.sizeof_PPkgIterator)))
	p.id = C.uint64_t(iid)
	p.cache = C.uint64_t(cache)
	return iterRef{p}
}

// free releases a record built by cacheRecord or iterRecord
func (c cacheRef) free() { C.free(unsafe.Pointer(c.p)) }

func (it iterRef) free() { freeIter(it.p) }

func (it iterRef) valid() bool { return it.p != nil }

func (it iterRef) id() handle.IterID { return handle.IterID(it.p.id) }

func (it iterRef) release() { pkg_iter_release(it.p) }

func (it iterRef) next() { pkg_iter_next(it.p) }

func (it iterRef) end() bool { return bool(pkg_iter_end(it.p)) }

func (it iterRef) name() (string, bool) { return goString(pkg_iter_name(it.p)) }

func (it iterRef) arch() (string, bool) { return goString(pkg_iter_arch(it.p)) }

func (it iterRef) currentVersion() (string, bool) {
	return goString(pkg_iter_current_version(it.p))
}

// namePtr returns the address of the borrowed name, 0 when none is held
func (it iterRef) namePtr() uintptr {
	return uintptr(unsafe.Pointer(pkg_iter_name(it.p)))
}

// borrowedCount returns how many borrowed strings the record holds
func (it iterRef) borrowedCount() int {
	n := 0
	for _, s := range []*C.char{it.p.name, it.p.arch, it.p.version} {
		if s != nil {
			n++
		}
	}
	return n
}

// liveRecords returns the number of iterator records owned by the library
func liveRecords() int {
	mu.Lock()
	defer mu.Unlock()
	return len(iters)
}

func goString(s *C.char) (string, bool) {
	if s == nil {
		return "", false
	}
	return C.GoString(s), true
}
