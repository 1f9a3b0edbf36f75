// pkg/pkgcache/cache.go
package pkgcache

import (
	"fmt"
	"strings"

	"github.com/arc-language/aptcache/pkg/deb"
)

// FileKind is where a package file's records came from
type FileKind int

const (
	FileStatus  FileKind = iota // dpkg status database
	FileList                    // apt Packages list
	FileArchive                 // standalone .deb
)

// PackageFile is one source of version records
type PackageFile struct {
	ID        int
	Kind      FileKind
	Path      string
	Site      string
	Archive   string // Suite from the Release file
	Version   string // release version, e.g. 12.5
	Codename  string
	Origin    string
	Label     string
	Component string
	Arch      string

	NotAutomatic         bool
	ButAutomaticUpgrades bool
	Verified             bool // size and hash match the Release entry
}

// String renders the file the way apt-cache policy lists it
func (f *PackageFile) String() string {
	switch f.Kind {
	case FileStatus:
		return f.Path
	case FileArchive:
		return f.Path
	default:
		if f.Archive == "" && f.Codename == "" {
			return fmt.Sprintf("%s Packages", f.Site)
		}
		suite := f.Codename
		if suite == "" {
			suite = f.Archive
		}
		return fmt.Sprintf("%s %s/%s %s Packages", f.Site, suite, f.Component, f.Arch)
	}
}

// ReleaseInfo renders the release line of apt-cache policy, for example
// "v=12.5,o=Debian,a=stable,n=bookworm,l=Debian,c=main,b=amd64". Files that
// are not lists have none.
func (f *PackageFile) ReleaseInfo() string {
	if f.Kind != FileList {
		return ""
	}
	var parts []string
	for _, kv := range [][2]string{
		{"v", f.Version},
		{"o", f.Origin},
		{"a", f.Archive},
		{"n", f.Codename},
		{"l", f.Label},
		{"c", f.Component},
		{"b", f.Arch},
	} {
		if kv[1] != "" {
			parts = append(parts, kv[0]+"="+kv[1])
		}
	}
	return strings.Join(parts, ",")
}

// VerFile ties a version to a package file it was seen in
type VerFile struct {
	File     *PackageFile
	Filename string
	Size     int64
	SHA256   string
}

// Version is one version of a package
type Version struct {
	VerStr        string
	Arch          string // as written in the record, may be "all"
	MultiArch     string
	Section       string
	Priority      string
	Source        string
	Maintainer    string
	Description   string
	InstalledSize int64
	Depends       map[deb.DepType][]deb.OrGroup
	Provides      []deb.Relation
	Files         []VerFile

	pkg *Package
}

// ParentPkg returns the package this version belongs to
func (v *Version) ParentPkg() *Package {
	return v.pkg
}

// Downloadable reports whether any non-status file carries the version
func (v *Version) Downloadable() bool {
	for _, vf := range v.Files {
		if vf.File.Kind != FileStatus {
			return true
		}
	}
	return false
}

// Package is one (name, architecture) entry of the package table.
// Virtual packages have no versions.
type Package struct {
	ID       int
	Name     string
	Arch     string
	Versions []*Version // highest version first
	Current  *Version   // installed version, nil when not installed
	State    deb.Status // selection/flag/state from dpkg, zero when unknown

	providedBy []*Version
}

// ProvidesList returns the versions that provide this package name
func (p *Package) ProvidesList() []*Version {
	return p.providedBy
}

// Cache is the parsed package database
type Cache struct {
	native   string
	archs    []string
	packages []*Package
	index    map[string]*Package // "name:arch"
	groups   map[string][]*Package
	files    []*PackageFile
}

// NativeArch returns the architecture bare names resolve to
func (c *Cache) NativeArch() string {
	return c.native
}

// Architectures returns the native architecture followed by the foreign ones
func (c *Cache) Architectures() []string {
	return c.archs
}

// PackageCount returns the size of the package table
func (c *Cache) PackageCount() int {
	return len(c.packages)
}

// VersionCount returns the number of versions across all packages
func (c *Cache) VersionCount() int {
	n := 0
	for _, p := range c.packages {
		n += len(p.Versions)
	}
	return n
}

// Files returns the package files the cache was built from
func (c *Cache) Files() []*PackageFile {
	return c.files
}

// Package returns the package at table position id
func (c *Cache) Package(id int) *Package {
	if id < 0 || id >= len(c.packages) {
		return nil
	}
	return c.packages[id]
}

// FindGroup returns every architecture of name, native first
func (c *Cache) FindGroup(name string) []*Package {
	return c.groups[name]
}

// PkgBegin returns an iterator at the first entry of the package table
func (c *Cache) PkgBegin() PkgIterator {
	return PkgIterator{cache: c, pos: 0}
}

// PkgEnd returns the end sentinel of the package table
func (c *Cache) PkgEnd() PkgIterator {
	return PkgIterator{cache: c, pos: len(c.packages)}
}

// FindPkg looks a package up by name. "name:arch" selects an architecture;
// a bare name resolves to the native architecture and otherwise to the
// first architecture the package exists for. The result is at end when
// nothing matches.
func (c *Cache) FindPkg(name string) PkgIterator {
	if n, arch, ok := cutArch(name); ok {
		return c.FindPkgArch(n, arch)
	}
	if it := c.FindPkgArch(name, c.native); !it.End() {
		return it
	}
	if group := c.groups[name]; len(group) > 0 {
		return c.iteratorFor(group[0])
	}
	return c.PkgEnd()
}

// FindPkgArch looks a package up by name and architecture. "native" and
// "all" mean the native architecture; "any" matches the first architecture
// in the group.
func (c *Cache) FindPkgArch(name, arch string) PkgIterator {
	switch arch {
	case "", "native", "all":
		arch = c.native
	case "any":
		if group := c.groups[name]; len(group) > 0 {
			return c.iteratorFor(group[0])
		}
		return c.PkgEnd()
	}
	if p, ok := c.index[name+":"+arch]; ok {
		return c.iteratorFor(p)
	}
	return c.PkgEnd()
}

func (c *Cache) iteratorFor(p *Package) PkgIterator {
	return PkgIterator{cache: c, pos: p.ID}
}

func cutArch(name string) (string, string, bool) {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == ':' {
			return name[:i], name[i+1:], true
		}
	}
	return name, "", false
}
