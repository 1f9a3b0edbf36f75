package platform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectExplicit(t *testing.T) {
	sys, err := Detect(DetectOptions{
		Architecture:  "arm64",
		Architectures: []string{"armhf", "arm64", "armhf"},
		StatusFile:    "/var/lib/dpkg/status",
	})
	require.NoError(t, err)

	assert.Equal(t, SystemLabel, sys.Label)
	assert.Equal(t, ArchArm64, sys.NativeArch)
	assert.Equal(t, []Architecture{ArchArmhf}, sys.ForeignArchs)
	assert.Equal(t, []string{"arm64", "armhf"}, sys.Architectures())
	assert.Equal(t, "/var/lib/dpkg/status", sys.StatusFile)
	assert.Contains(t, sys.String(), "native: arm64")
}

func TestDetectArchFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arch")
	require.NoError(t, os.WriteFile(path, []byte("amd64\ni386\n"), 0o644))

	sys, err := Detect(DetectOptions{Architecture: "amd64", ArchFile: path})
	require.NoError(t, err)
	assert.Equal(t, []Architecture{ArchI386}, sys.ForeignArchs)

	// Explicit foreign architectures win over the file
	sys, err = Detect(DetectOptions{Architecture: "amd64", Architectures: []string{"arm64"}, ArchFile: path})
	require.NoError(t, err)
	assert.Equal(t, []Architecture{ArchArm64}, sys.ForeignArchs)
}

func TestDetectArchFilePorts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arch")
	require.NoError(t, os.WriteFile(path, []byte("amd64\ni386\nx32\nhurd-i386\n"), 0o644))

	sys, err := Detect(DetectOptions{Architecture: "amd64", ArchFile: path})
	require.NoError(t, err)
	assert.Equal(t, []Architecture{ArchI386, "x32", "hurd-i386"}, sys.ForeignArchs)
}

func TestDetectInvalid(t *testing.T) {
	_, err := Detect(DetectOptions{Architecture: "x86_64"})
	assert.Error(t, err)

	_, err = Detect(DetectOptions{Architecture: "amd64", Architectures: []string{"all"}})
	assert.Error(t, err)
}

func TestDetectHost(t *testing.T) {
	if _, err := DetectArchitecture(); err != nil {
		t.Skip("unsupported GOARCH")
	}
	sys, err := Detect(DetectOptions{})
	require.NoError(t, err)
	assert.Empty(t, sys.ForeignArchs)
}
