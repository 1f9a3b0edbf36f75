// pkg/pkgcache/builder.go
package pkgcache

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/arc-language/aptcache/pkg/deb"
)

// Builder accumulates package records and produces a Cache
type Builder struct {
	native string
	archs  []string
	rank   map[string]int
	logger *log.Logger

	pkgs  map[string]*Package
	files []*PackageFile
}

// NewBuilder creates a builder for the given native and foreign
// architectures. Records for any other architecture are ignored.
func NewBuilder(native string, foreign []string, logger *log.Logger) *Builder {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	archs := append([]string{native}, foreign...)
	rank := make(map[string]int, len(archs))
	for i, a := range archs {
		if _, ok := rank[a]; !ok {
			rank[a] = i
		}
	}
	return &Builder{
		native: native,
		archs:  archs,
		rank:   rank,
		logger: logger,
		pkgs:   make(map[string]*Package),
	}
}

func (b *Builder) addFile(f *PackageFile) *PackageFile {
	f.ID = len(b.files)
	b.files = append(b.files, f)
	return f
}

// AddStatus loads the dpkg status database. A missing file is treated as an
// empty database.
func (b *Builder) AddStatus(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			b.logger.Warn("status file missing, assuming nothing is installed", "path", path)
			return nil
		}
		return fmt.Errorf("opening status file: %w", err)
	}
	defer f.Close()

	records, err := deb.ParsePackages(f)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	file := b.addFile(&PackageFile{Kind: FileStatus, Path: path})
	installed := 0
	for _, rec := range records {
		if rec.Status == nil {
			continue
		}
		pkg, ver := b.addRecord(rec, VerFile{File: file})
		if pkg == nil {
			continue
		}
		pkg.State = *rec.Status
		if ver != nil && rec.Status.HasCurrentVersion() {
			pkg.Current = ver
			installed++
		}
	}
	b.logger.Debug("loaded status", "path", path, "records", len(records), "installed", installed)
	return nil
}

// AddIndex loads one Packages list together with its Release data
func (b *Builder) AddIndex(idx deb.IndexFile) error {
	file := &PackageFile{
		Kind:      FileList,
		Path:      idx.Path,
		Site:      idx.Site,
		Archive:   idx.Suite,
		Component: idx.Component,
		Arch:      idx.Arch,
	}

	if idx.ReleasePath != "" {
		rf, err := os.Open(idx.ReleasePath)
		if err != nil {
			return fmt.Errorf("opening release file: %w", err)
		}
		release, err := deb.ParseRelease(rf)
		rf.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", idx.ReleasePath, err)
		}
		if release.Suite != "" {
			file.Archive = release.Suite
		}
		file.Version = release.Version
		file.Codename = release.Codename
		file.Origin = release.Origin
		file.Label = release.Label
		file.NotAutomatic = release.NotAutomatic
		file.ButAutomaticUpgrades = release.ButAutomaticUpgrades
		b.checkRelease(release, idx, file)
	}

	r, err := deb.OpenIndex(idx.Path)
	if err != nil {
		return err
	}
	defer r.Close()

	records, err := deb.ParsePackages(r)
	if err != nil {
		return fmt.Errorf("%s: %w", idx.Path, err)
	}

	b.addFile(file)
	for _, rec := range records {
		b.addRecord(rec, VerFile{
			File:     file,
			Filename: rec.Filename,
			Size:     rec.Size,
			SHA256:   rec.SHA256,
		})
	}
	b.logger.Debug("loaded index", "path", idx.Path, "records", len(records))
	return nil
}

// checkRelease compares a list file with what its Release announces.
// Problems are logged; the list is loaded either way, like apt does for
// lists it already accepted.
func (b *Builder) checkRelease(release *deb.Release, idx deb.IndexFile, file *PackageFile) {
	if idx.Arch != "" && !release.HasArchitecture(idx.Arch) {
		b.logger.Warn("release does not list architecture", "path", idx.Path, "arch", idx.Arch)
	}
	if idx.Component != "" && !release.HasComponent(idx.Component) {
		b.logger.Warn("release does not list component", "path", idx.Path, "component", idx.Component)
	}
	if idx.ReleaseName == "" {
		return
	}
	listed, err := release.VerifyFile(idx.ReleaseName, idx.Path)
	switch {
	case err != nil:
		b.logger.Warn("list file does not match release", "path", idx.Path, "err", err)
	case !listed:
		b.logger.Debug("list file not in release", "path", idx.Path, "name", idx.ReleaseName)
	default:
		file.Verified = true
	}
}

// AddDeb adds the package contained in a local .deb file
func (b *Builder) AddDeb(path string) error {
	rec, err := deb.ReadDebFile(path)
	if err != nil {
		return err
	}
	file := b.addFile(&PackageFile{Kind: FileArchive, Path: path, Arch: rec.Architecture})
	b.addRecord(rec, VerFile{File: file, Filename: rec.Filename, Size: rec.Size})
	b.logger.Debug("loaded archive", "path", path, "package", rec.Package, "version", rec.Version)
	return nil
}

// pkgArch maps a record's architecture to the table architecture.
// Architecture-independent packages live under the native architecture.
func (b *Builder) pkgArch(arch string) (string, bool) {
	if arch == "" || arch == "all" {
		return b.native, true
	}
	_, ok := b.rank[arch]
	return arch, ok
}

func (b *Builder) getPackage(name, arch string) *Package {
	key := name + ":" + arch
	p, ok := b.pkgs[key]
	if !ok {
		p = &Package{Name: name, Arch: arch}
		b.pkgs[key] = p
	}
	return p
}

func (b *Builder) addRecord(rec *deb.PackageRecord, vf VerFile) (*Package, *Version) {
	arch, ok := b.pkgArch(rec.Architecture)
	if !ok {
		return nil, nil
	}
	pkg := b.getPackage(rec.Package, arch)
	if rec.Version == "" {
		return pkg, nil
	}

	for _, v := range pkg.Versions {
		if v.VerStr == rec.Version {
			v.Files = append(v.Files, vf)
			mergeRecord(v, rec)
			return pkg, v
		}
	}

	v := &Version{
		VerStr:        rec.Version,
		Arch:          rec.Architecture,
		MultiArch:     rec.MultiArch,
		Section:       rec.Section,
		Priority:      rec.Priority,
		Source:        rec.Source,
		Maintainer:    rec.Maintainer,
		Description:   rec.Description,
		InstalledSize: rec.InstalledSize,
		Depends:       rec.Relations,
		Provides:      rec.Provides,
		Files:         []VerFile{vf},
		pkg:           pkg,
	}
	pkg.Versions = append(pkg.Versions, v)
	return pkg, v
}

// mergeRecord fills fields the first record of a version left empty
func mergeRecord(v *Version, rec *deb.PackageRecord) {
	if v.Section == "" {
		v.Section = rec.Section
	}
	if v.Priority == "" {
		v.Priority = rec.Priority
	}
	if v.Description == "" {
		v.Description = rec.Description
	}
	if v.Depends == nil {
		v.Depends = rec.Relations
	}
	if v.Provides == nil {
		v.Provides = rec.Provides
	}
}

// Build sorts the table and returns the finished cache
func (b *Builder) Build() *Cache {
	// Provided names become virtual packages when nothing real has the name
	for _, p := range b.packageList() {
		for _, v := range p.Versions {
			for _, prov := range v.Provides {
				target := b.getPackage(prov.Name, p.Arch)
				target.providedBy = append(target.providedBy, v)
			}
		}
	}

	packages := b.packageList()
	sort.Slice(packages, func(i, j int) bool {
		if packages[i].Name != packages[j].Name {
			return packages[i].Name < packages[j].Name
		}
		return b.rank[packages[i].Arch] < b.rank[packages[j].Arch]
	})

	c := &Cache{
		native:   b.native,
		archs:    b.archs,
		packages: packages,
		index:    make(map[string]*Package, len(packages)),
		groups:   make(map[string][]*Package),
		files:    b.files,
	}
	for i, p := range packages {
		p.ID = i
		sort.SliceStable(p.Versions, func(x, y int) bool {
			return CompareVersions(p.Versions[x].VerStr, p.Versions[y].VerStr) > 0
		})
		c.index[p.Name+":"+p.Arch] = p
		c.groups[p.Name] = append(c.groups[p.Name], p)
	}

	b.logger.Debug("built cache", "packages", len(packages), "files", len(b.files))
	return c
}

func (b *Builder) packageList() []*Package {
	list := make([]*Package, 0, len(b.pkgs))
	for _, p := range b.pkgs {
		list = append(list, p)
	}
	return list
}
