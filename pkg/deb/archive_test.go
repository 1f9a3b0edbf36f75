package deb

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arc-language/aptcache/internal/testfixture"
)

func TestReadControl(t *testing.T) {
	p, err := ReadControl(bytes.NewReader(testfixture.Deb(t, testfixture.HelloControl)))
	require.NoError(t, err)
	assert.Equal(t, "hello", p.Get("Package"))
	assert.Equal(t, "2.10-3", p.Get("Version"))
	assert.Equal(t, "libc6 (>= 2.34), mawk | awk", p.Get("Depends"))
}

func TestReadControlNotADeb(t *testing.T) {
	_, err := ReadControl(bytes.NewReader([]byte("plain text")))
	assert.Error(t, err)
}

func TestReadDebFile(t *testing.T) {
	data := testfixture.Deb(t, testfixture.HelloControl)
	path := filepath.Join(t.TempDir(), testfixture.HelloDeb)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	rec, err := ReadDebFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", rec.Package)
	assert.Equal(t, "amd64", rec.Architecture)
	assert.Equal(t, int64(280*1024), rec.InstalledSize)
	assert.Equal(t, int64(len(data)), rec.Size)
	assert.Equal(t, path, rec.Filename)
	require.Len(t, rec.Relations[Depends], 2)

	_, err = ReadDebFile(filepath.Join(t.TempDir(), "missing.deb"))
	assert.Error(t, err)
}
