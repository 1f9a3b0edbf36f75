package deb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRelation(t *testing.T) {
	tests := []struct {
		input string
		want  Relation
	}{
		{"libc6", Relation{Name: "libc6"}},
		{"libc6 (>= 2.34)", Relation{Name: "libc6", Op: OpGreaterEqual, Version: "2.34"}},
		{"libc6(>=2.34)", Relation{Name: "libc6", Op: OpGreaterEqual, Version: "2.34"}},
		{"python3:any", Relation{Name: "python3", Arch: "any"}},
		{"libcurl4 (= 7.88.1-10)", Relation{Name: "libcurl4", Op: OpEqual, Version: "7.88.1-10"}},
		{"foo (<< 2:1.0~rc1)", Relation{Name: "foo", Op: OpLess, Version: "2:1.0~rc1"}},
		{"foo (< 1.0)", Relation{Name: "foo", Op: OpLessEqual, Version: "1.0"}},
		{"foo (> 1.0)", Relation{Name: "foo", Op: OpGreaterEqual, Version: "1.0"}},
		{"foo (>> 1.0)", Relation{Name: "foo", Op: OpGreater, Version: "1.0"}},
		{"libc6-dev [!hurd-i386]", Relation{Name: "libc6-dev", Archs: []string{"!hurd-i386"}}},
		{"gcc (>= 12) [amd64 i386]", Relation{Name: "gcc", Op: OpGreaterEqual, Version: "12", Archs: []string{"amd64", "i386"}}},
		{"debhelper <!nocheck>", Relation{Name: "debhelper"}},
		{"pytest (>= 7) <!nocheck>", Relation{Name: "pytest", Op: OpGreaterEqual, Version: "7"}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseRelation(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRelationErrors(t *testing.T) {
	for _, input := range []string{"", "foo (>= )", "foo (~ 1)", "foo (>= 1", "foo [amd64", "two words"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseRelation(input)
			assert.Error(t, err)
		})
	}
}

func TestParseRelations(t *testing.T) {
	groups, err := ParseRelations("adduser, gpgv | gpgv2 | gpgv1,  libc6 (>= 2.34),")
	require.NoError(t, err)
	require.Len(t, groups, 3)
	assert.Len(t, groups[0], 1)
	assert.Len(t, groups[1], 3)
	assert.Equal(t, "gpgv | gpgv2 | gpgv1", groups[1].String())

	_, err = ParseRelations("a, b (>= )")
	assert.Error(t, err)
}

func TestRelationString(t *testing.T) {
	rel := Relation{Name: "libc6", Arch: "any", Op: OpGreaterEqual, Version: "2.34", Archs: []string{"amd64"}}
	assert.Equal(t, "libc6:any (>= 2.34) [amd64]", rel.String())
}

func TestRelationAppliesTo(t *testing.T) {
	assert.True(t, Relation{Name: "a"}.AppliesTo("amd64"))

	only := Relation{Name: "a", Archs: []string{"amd64", "arm64"}}
	assert.True(t, only.AppliesTo("amd64"))
	assert.False(t, only.AppliesTo("i386"))

	except := Relation{Name: "a", Archs: []string{"!i386"}}
	assert.True(t, except.AppliesTo("amd64"))
	assert.False(t, except.AppliesTo("i386"))
}

func TestDepTypeString(t *testing.T) {
	assert.Equal(t, "PreDepends", PreDepends.String())
	assert.Equal(t, "Depends", Depends.String())
	assert.Equal(t, "Breaks", Breaks.String())
	assert.Equal(t, "DepType(0)", DepType(0).String())
}
