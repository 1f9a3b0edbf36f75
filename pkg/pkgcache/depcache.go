// pkg/pkgcache/depcache.go
package pkgcache

import (
	"github.com/arc-language/aptcache/pkg/deb"
)

// StateCache is the dependency-resolution state of one package. Nothing is
// ever marked, so the install version is always the current one.
type StateCache struct {
	Current     *Version
	Candidate   *Version
	Install     *Version
	CandVersion string

	NowBroken  bool // a Depends of the installed version has no installed satisfier
	InstBroken bool // a Depends of the candidate cannot be met by anything in the cache
}

// Upgradable reports whether the candidate differs from the installed version
func (s StateCache) Upgradable() bool {
	return s.Current != nil && s.Candidate != nil && s.Candidate != s.Current
}

// Keep reports whether the package stays as it is
func (s StateCache) Keep() bool {
	return s.Install == s.Current
}

// DepCache is the dependency-resolution view over a cache
type DepCache struct {
	cache  *Cache
	policy *Policy
	states []StateCache
}

// NewDepCache computes package states for every entry of c
func NewDepCache(c *Cache, policy *Policy) *DepCache {
	if policy == nil {
		policy = NewPolicy(c)
	}
	d := &DepCache{
		cache:  c,
		policy: policy,
		states: make([]StateCache, len(c.packages)),
	}

	for i, pkg := range c.packages {
		st := &d.states[i]
		st.Current = pkg.Current
		st.Install = pkg.Current
		st.Candidate = policy.Candidate(pkg)
		if st.Candidate != nil {
			st.CandVersion = st.Candidate.VerStr
		}
	}
	for i := range c.packages {
		st := &d.states[i]
		if st.Current != nil {
			st.NowBroken = !d.dependsMet(st.Current, true)
		}
		if st.Candidate != nil {
			st.InstBroken = !d.dependsMet(st.Candidate, false)
		}
	}
	return d
}

// Cache returns the underlying package cache
func (d *DepCache) Cache() *Cache {
	return d.cache
}

// Policy returns the policy candidates were chosen with
func (d *DepCache) Policy() *Policy {
	return d.policy
}

// State returns the state of the package under it
func (d *DepCache) State(it PkgIterator) StateCache {
	if it.End() || it.cache != d.cache {
		return StateCache{}
	}
	return d.states[it.pos]
}

// BrokenCount returns the number of installed packages with unmet
// dependencies
func (d *DepCache) BrokenCount() int {
	n := 0
	for _, st := range d.states {
		if st.NowBroken {
			n++
		}
	}
	return n
}

func (d *DepCache) dependsMet(v *Version, now bool) bool {
	for _, typ := range []deb.DepType{deb.PreDepends, deb.Depends} {
		for _, group := range v.Depends[typ] {
			if !d.GroupSatisfied(v, group, now) {
				return false
			}
		}
	}
	return true
}

// GroupSatisfied reports whether any alternative of group can be met for
// the depending version from. With now set only installed versions count;
// otherwise any version in the cache does.
func (d *DepCache) GroupSatisfied(from *Version, group deb.OrGroup, now bool) bool {
	for _, rel := range group {
		if !rel.AppliesTo(d.cache.native) {
			// Restricted to other architectures, trivially met
			return true
		}
		if d.RelationSatisfied(from, rel, now) {
			return true
		}
	}
	return false
}

// RelationSatisfied reports whether rel can be met for from
func (d *DepCache) RelationSatisfied(from *Version, rel deb.Relation, now bool) bool {
	for _, target := range d.targets(from, rel) {
		for _, v := range target.Versions {
			if now && target.Current != v {
				continue
			}
			if CheckVersion(v.VerStr, rel.Op, rel.Version) {
				return true
			}
		}
		for _, prov := range target.providedBy {
			if now && prov.pkg.Current != prov {
				continue
			}
			if providesSatisfy(prov, rel) {
				return true
			}
		}
	}
	return false
}

// providesSatisfy checks a provider against a possibly versioned relation.
// Unversioned provides never satisfy a versioned relation.
func providesSatisfy(prov *Version, rel deb.Relation) bool {
	if rel.Op == "" {
		return true
	}
	for _, p := range prov.Provides {
		if p.Name != rel.Name {
			continue
		}
		if p.Op == deb.OpEqual && CheckVersion(p.Version, rel.Op, rel.Version) {
			return true
		}
	}
	return false
}

// targets returns the packages a relation may be met by
func (d *DepCache) targets(from *Version, rel deb.Relation) []*Package {
	switch rel.Arch {
	case "any":
		// Only Multi-Arch: allowed packages may be depended on as :any,
		// but the cache does not enforce it
		return d.cache.groups[rel.Name]
	case "":
	default:
		if p := d.cache.FindPkgArch(rel.Name, rel.Arch).Package(); p != nil {
			return []*Package{p}
		}
		return nil
	}

	arch := d.cache.native
	if from != nil && from.pkg != nil {
		arch = from.pkg.Arch
	}
	var out []*Package
	for _, p := range d.cache.groups[rel.Name] {
		if p.Arch == arch || multiArchForeign(p) {
			out = append(out, p)
		}
	}
	return out
}

// multiArchForeign reports whether any version of p may satisfy
// dependencies of packages from other architectures
func multiArchForeign(p *Package) bool {
	for _, v := range p.Versions {
		if v.MultiArch == "foreign" {
			return true
		}
	}
	return false
}
