// pkg/pkgcache/version.go
package pkgcache

import (
	"strings"

	debversion "github.com/knqyf263/go-deb-version"

	"github.com/arc-language/aptcache/pkg/deb"
)

// CompareVersions orders two Debian version strings. Unparseable versions
// fall back to plain string ordering.
func CompareVersions(a, b string) int {
	va, errA := debversion.NewVersion(a)
	vb, errB := debversion.NewVersion(b)
	if errA != nil || errB != nil {
		return strings.Compare(a, b)
	}
	return va.Compare(vb)
}

// CheckVersion reports whether ver satisfies "op ref"
func CheckVersion(ver, op, ref string) bool {
	if op == "" {
		return true
	}
	cmp := CompareVersions(ver, ref)
	switch op {
	case deb.OpLess:
		return cmp < 0
	case deb.OpLessEqual:
		return cmp <= 0
	case deb.OpEqual:
		return cmp == 0
	case deb.OpGreaterEqual:
		return cmp >= 0
	case deb.OpGreater:
		return cmp > 0
	default:
		return false
	}
}
