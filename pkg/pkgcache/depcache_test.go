package pkgcache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arc-language/aptcache/pkg/deb"
)

func fixtureDepCache(t *testing.T) *DepCache {
	t.Helper()
	c := fixtureCache(t)
	return NewDepCache(c, NewPolicy(c))
}

func TestDepCacheStates(t *testing.T) {
	d := fixtureDepCache(t)
	c := d.Cache()
	require.NotNil(t, d.Policy())

	apt := d.State(find(t, c, "apt"))
	assert.Equal(t, "2.6.1", apt.CandVersion)
	assert.Same(t, apt.Current, apt.Install)
	assert.True(t, apt.Keep())
	assert.False(t, apt.Upgradable())
	assert.False(t, apt.NowBroken)
	assert.False(t, apt.InstBroken)

	libc6 := d.State(find(t, c, "libc6:i386"))
	assert.True(t, libc6.Upgradable())
	assert.Equal(t, "2.36-9+deb12u4", libc6.CandVersion)
	assert.Equal(t, "2.36-9", libc6.Current.VerStr)

	broken := d.State(find(t, c, "brokenpkg"))
	assert.True(t, broken.NowBroken)
	assert.True(t, broken.InstBroken)

	curl := d.State(find(t, c, "curl"))
	assert.Nil(t, curl.Current)
	assert.False(t, curl.NowBroken)
	assert.True(t, curl.InstBroken)
	assert.False(t, curl.Upgradable())

	hello := d.State(find(t, c, "hello"))
	assert.False(t, hello.InstBroken)

	awk := d.State(find(t, c, "awk"))
	assert.Nil(t, awk.Candidate)
	assert.Equal(t, "", awk.CandVersion)
	assert.True(t, awk.Keep())

	assert.Equal(t, 1, d.BrokenCount())
	assert.Equal(t, StateCache{}, d.State(c.PkgEnd()))
}

func TestDepCacheForeignIterator(t *testing.T) {
	d := fixtureDepCache(t)
	other := fixtureCache(t)
	assert.Equal(t, StateCache{}, d.State(other.PkgBegin()))
}

func TestGroupSatisfiedProvides(t *testing.T) {
	d := fixtureDepCache(t)
	hello := find(t, d.Cache(), "hello").VersionList()[0]

	awk := deb.OrGroup{{Name: "awk"}}
	assert.True(t, d.GroupSatisfied(hello, awk, false))
	assert.False(t, d.GroupSatisfied(hello, awk, true), "mawk is not installed")

	versioned := deb.OrGroup{{Name: "awk", Op: deb.OpGreaterEqual, Version: "1"}}
	assert.False(t, d.GroupSatisfied(hello, versioned, false), "unversioned provides")
}

func TestGroupSatisfiedAlternatives(t *testing.T) {
	d := fixtureDepCache(t)
	apt := find(t, d.Cache(), "apt").CurrentVer()

	assert.True(t, d.GroupSatisfied(apt, deb.OrGroup{{Name: "gpgv2"}, {Name: "gpgv"}}, true))
	assert.False(t, d.GroupSatisfied(apt, deb.OrGroup{{Name: "gpgv2"}, {Name: "gpgv1"}}, false))
	assert.False(t, d.GroupSatisfied(apt, deb.OrGroup{{Name: "libc6", Op: deb.OpGreaterEqual, Version: "2.37"}}, false))
	assert.True(t, d.GroupSatisfied(apt, deb.OrGroup{{Name: "libc6", Op: deb.OpGreater, Version: "2.36-9"}}, false))
	assert.False(t, d.GroupSatisfied(apt, deb.OrGroup{{Name: "libc6", Op: deb.OpGreater, Version: "2.36-9"}}, true))

	// Restricted to another architecture, nothing to satisfy
	assert.True(t, d.GroupSatisfied(apt, deb.OrGroup{{Name: "missing-lib", Archs: []string{"arm64"}}}, true))
}

func TestRelationSatisfiedMultiArch(t *testing.T) {
	d := fixtureDepCache(t)
	c := d.Cache()
	libc6i386 := find(t, c, "libc6:i386").CurrentVer()

	// adduser is Multi-Arch: foreign and satisfies every architecture
	assert.True(t, d.RelationSatisfied(libc6i386, deb.Relation{Name: "adduser"}, true))
	// passwd only satisfies amd64 dependents
	assert.False(t, d.RelationSatisfied(libc6i386, deb.Relation{Name: "passwd"}, true))
	assert.True(t, d.RelationSatisfied(libc6i386, deb.Relation{Name: "passwd", Arch: "amd64"}, true))
	assert.True(t, d.RelationSatisfied(libc6i386, deb.Relation{Name: "passwd", Arch: "any"}, true))
	assert.False(t, d.RelationSatisfied(libc6i386, deb.Relation{Name: "passwd", Arch: "arm64"}, true))

	apt := find(t, c, "apt").CurrentVer()
	assert.True(t, d.RelationSatisfied(apt, deb.Relation{Name: "libc6", Arch: "i386"}, true))
}

func TestProvidesSatisfyVersioned(t *testing.T) {
	prov := &Version{Provides: []deb.Relation{{Name: "mail-transport-agent", Op: deb.OpEqual, Version: "2.0"}}}
	assert.True(t, providesSatisfy(prov, deb.Relation{Name: "mail-transport-agent"}))
	assert.True(t, providesSatisfy(prov, deb.Relation{Name: "mail-transport-agent", Op: deb.OpGreaterEqual, Version: "1.5"}))
	assert.False(t, providesSatisfy(prov, deb.Relation{Name: "mail-transport-agent", Op: deb.OpGreater, Version: "2.0"}))
	assert.False(t, providesSatisfy(prov, deb.Relation{Name: "other", Op: deb.OpGreaterEqual, Version: "1"}))
}
