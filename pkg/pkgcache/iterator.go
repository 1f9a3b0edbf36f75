// pkg/pkgcache/iterator.go
package pkgcache

// PkgIterator is a copyable cursor into a cache's package table. The zero
// value is at end.
type PkgIterator struct {
	cache *Cache
	pos   int
}

// Cache returns the cache the iterator walks
func (it PkgIterator) Cache() *Cache {
	return it.cache
}

// End reports whether the iterator equals the table's end sentinel
func (it PkgIterator) End() bool {
	if it.cache == nil {
		return true
	}
	return it == it.cache.PkgEnd()
}

// Next moves to the next package in table order. At end it stays at end.
func (it *PkgIterator) Next() {
	if it.End() {
		return
	}
	it.pos++
}

// Package returns the current package, nil at end
func (it PkgIterator) Package() *Package {
	if it.End() {
		return nil
	}
	return it.cache.packages[it.pos]
}

// Index returns the table position of the iterator
func (it PkgIterator) Index() int {
	return it.pos
}

// Name returns the package name, "" at end
func (it PkgIterator) Name() string {
	if p := it.Package(); p != nil {
		return p.Name
	}
	return ""
}

// Arch returns the package architecture, "" at end
func (it PkgIterator) Arch() string {
	if p := it.Package(); p != nil {
		return p.Arch
	}
	return ""
}

// FullName returns "name:arch". With pretty set, the architecture is left
// out for native packages.
func (it PkgIterator) FullName(pretty bool) string {
	p := it.Package()
	if p == nil {
		return ""
	}
	if pretty && p.Arch == it.cache.native {
		return p.Name
	}
	return p.Name + ":" + p.Arch
}

// CurrentVer returns the installed version, nil when not installed
func (it PkgIterator) CurrentVer() *Version {
	if p := it.Package(); p != nil {
		return p.Current
	}
	return nil
}

// CurVersion returns the installed version string, "" when not installed
func (it PkgIterator) CurVersion() string {
	if v := it.CurrentVer(); v != nil {
		return v.VerStr
	}
	return ""
}

// VersionList returns all versions, highest first
func (it PkgIterator) VersionList() []*Version {
	if p := it.Package(); p != nil {
		return p.Versions
	}
	return nil
}
