// pkg/pkgcache/policy.go
package pkgcache

// Pin priorities apt assigns without user pinning
const (
	PriorityUnavailable  = -1 // known only from dpkg's status, without being installed
	PriorityNotAutomatic = 1
	PriorityStatus       = 100
	PriorityDefault      = 500
	PriorityDowngrade    = 1000 // needed to select a version below the installed one
)

// Policy picks candidate versions from file priorities
type Policy struct {
	cache *Cache
}

// NewPolicy creates the default policy for c
func NewPolicy(c *Cache) *Policy {
	return &Policy{cache: c}
}

// FilePriority returns the pin priority of a package file
func (p *Policy) FilePriority(f *PackageFile) int {
	switch {
	case f.Kind == FileStatus:
		return PriorityStatus
	case f.NotAutomatic && f.ButAutomaticUpgrades:
		return PriorityStatus
	case f.NotAutomatic:
		return PriorityNotAutomatic
	default:
		return PriorityDefault
	}
}

// Priority returns the highest priority among the files carrying v. The
// status file only counts for the installed version.
func (p *Policy) Priority(v *Version) int {
	var cur *Version
	if v.pkg != nil {
		cur = v.pkg.Current
	}
	return p.priority(v, cur)
}

func (p *Policy) priority(v, cur *Version) int {
	best := PriorityUnavailable
	for _, vf := range v.Files {
		if vf.File.Kind == FileStatus && v != cur {
			continue
		}
		if prio := p.FilePriority(vf.File); prio > best {
			best = prio
		}
	}
	return best
}

// Candidate returns the version apt would install for pkg, nil for virtual
// packages and for packages known only from the status file. Versions older than the installed one are not considered unless
// pinned for downgrade; among the rest the highest priority wins and ties go
// to the higher version.
func (p *Policy) Candidate(pkg *Package) *Version {
	cur := pkg.Current
	var cand *Version
	candPrio := PriorityUnavailable
	// Versions are sorted highest first, so the first maximum wins ties
	for _, v := range pkg.Versions {
		prio := p.priority(v, cur)
		if prio < 0 {
			continue
		}
		if cur != nil && v != cur && prio < PriorityDowngrade && CompareVersions(v.VerStr, cur.VerStr) < 0 {
			continue
		}
		if prio > candPrio {
			cand, candPrio = v, prio
		}
	}
	return cand
}
