package deb

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleStatus = `# generated by hand
Package: apt
Status: install ok installed
Installed-Size: 4156
Architecture: amd64
Version: 2.6.1
Depends: adduser, gpgv | gpgv2, libc6 (>= 2.34)
Provides: apt-transport-https (= 2.6.1)
Description: commandline package manager
 This package provides commandline tools.
 .
 It also installs apt-get.

Package: oldconf
Status: deinstall ok config-files
Architecture: amd64
Version: 0.9-1
`

func TestEachParagraph(t *testing.T) {
	paragraphs, err := ParseParagraphs(strings.NewReader(sampleStatus))
	require.NoError(t, err)
	require.Len(t, paragraphs, 2)

	p := paragraphs[0]
	assert.Equal(t, "apt", p.Get("package"))
	assert.Equal(t, "apt", p.Get("PACKAGE"))
	assert.True(t, p.Has("Installed-Size"))
	assert.False(t, p.Has("Homepage"))
	assert.Equal(t, "", p.Get("Homepage"))
	assert.Equal(t, "Package", p.Fields[0])
	assert.Equal(t,
		"commandline package manager\nThis package provides commandline tools.\n\nIt also installs apt-get.",
		p.Get("Description"))
}

func TestEachParagraphCallbackError(t *testing.T) {
	calls := 0
	err := EachParagraph(strings.NewReader(sampleStatus), func(*Paragraph) error {
		calls++
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 1, calls)
}

func TestParsePackages(t *testing.T) {
	records, err := ParsePackages(strings.NewReader(sampleStatus))
	require.NoError(t, err)
	require.Len(t, records, 2)

	apt := records[0]
	assert.Equal(t, "apt", apt.Package)
	assert.Equal(t, "2.6.1", apt.Version)
	assert.Equal(t, int64(4156*1024), apt.InstalledSize)
	require.NotNil(t, apt.Status)
	assert.Equal(t, Status{Selected: SelInstall, Inst: InstOk, Current: CurInstalled}, *apt.Status)

	deps := apt.Relations[Depends]
	require.Len(t, deps, 3)
	assert.Equal(t, "gpgv | gpgv2", deps[1].String())
	assert.Equal(t, "libc6 (>= 2.34)", deps[2].String())

	require.Len(t, apt.Provides, 1)
	assert.Equal(t, Relation{Name: "apt-transport-https", Op: OpEqual, Version: "2.6.1"}, apt.Provides[0])

	old := records[1]
	require.NotNil(t, old.Status)
	assert.False(t, old.Status.HasCurrentVersion())
	assert.Nil(t, old.Relations)
}

func TestParsePackagesSkipsForeignStanzas(t *testing.T) {
	input := "Origin: Debian\nLabel: Debian\n\nPackage: hello\nVersion: 2.10-3\n"
	records, err := ParsePackages(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "hello", records[0].Package)
	assert.Nil(t, records[0].Status)
}

func TestParsePackagesErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"bad status", "Package: a\nStatus: install ok\n"},
		{"bad relation", "Package: a\nDepends: b (>= )\n"},
		{"bad provides", "Package: a\nProvides: (= 1)\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePackages(strings.NewReader(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestRecordFromParagraphRequiresPackage(t *testing.T) {
	p := &Paragraph{values: map[string]string{}}
	p.set("Version", "1.0")
	_, err := RecordFromParagraph(p)
	assert.Error(t, err)
}
