package deb

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arc-language/aptcache/internal/testfixture"
)

func TestParseReleaseClearsigned(t *testing.T) {
	rel, err := ParseRelease(strings.NewReader(testfixture.MainRelease))
	require.NoError(t, err)

	assert.Equal(t, "Debian", rel.Origin)
	assert.Equal(t, "Debian", rel.Label)
	assert.Equal(t, "stable", rel.Suite)
	assert.Equal(t, "12.5", rel.Version)
	assert.Equal(t, "bookworm", rel.Codename)
	assert.Equal(t, []string{"all", "amd64", "i386"}, rel.Architectures)
	assert.Equal(t, []string{"main", "contrib", "non-free-firmware", "non-free"}, rel.Components)
	assert.False(t, rel.NotAutomatic)

	sum := sha256.Sum256([]byte(testfixture.MainAmd64))
	require.Len(t, rel.SHA256, 2)
	assert.Equal(t, FileHash{
		Hash: hex.EncodeToString(sum[:]),
		Size: int64(len(testfixture.MainAmd64)),
		Name: "main/binary-amd64/Packages",
	}, rel.SHA256[0])
	assert.Equal(t, FileHash{Hash: "0123abcd", Size: 1024, Name: "main/binary-amd64/Packages.xz"}, rel.SHA256[1])
	require.Len(t, rel.MD5Sum, 1)
	assert.Equal(t, "main/binary-amd64/Packages", rel.MD5Sum[0].Name)
}

func TestReleaseVerifyFile(t *testing.T) {
	rel, err := ParseRelease(strings.NewReader(testfixture.MainRelease))
	require.NoError(t, err)

	dir := t.TempDir()
	good := filepath.Join(dir, "Packages")
	require.NoError(t, os.WriteFile(good, []byte(testfixture.MainAmd64), 0o644))

	listed, err := rel.VerifyFile("main/binary-amd64/Packages", good)
	require.NoError(t, err)
	assert.True(t, listed)

	// Same size, different content
	tampered := filepath.Join(dir, "tampered")
	data := []byte(testfixture.MainAmd64)
	data[0] = 'p'
	require.NoError(t, os.WriteFile(tampered, data, 0o644))
	listed, err = rel.VerifyFile("main/binary-amd64/Packages", tampered)
	assert.True(t, listed)
	assert.ErrorIs(t, err, ErrHashMismatch)

	listed, err = rel.VerifyFile("main/binary-amd64/Packages.xz", good)
	assert.True(t, listed)
	assert.ErrorIs(t, err, ErrHashMismatch)

	listed, err = rel.VerifyFile("main/binary-i386/Packages.gz", good)
	require.NoError(t, err)
	assert.False(t, listed)
}

func TestReleaseVerifyFileMD5(t *testing.T) {
	rel, err := ParseRelease(strings.NewReader("MD5Sum:\n" +
		" 5d41402abc4b2a76b9719d911017c592 5 main/binary-amd64/Packages\n"))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "Packages")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))
	listed, err := rel.VerifyFile("main/binary-amd64/Packages", path)
	require.NoError(t, err)
	assert.True(t, listed)
}

func TestReleaseCoverage(t *testing.T) {
	rel, err := ParseRelease(strings.NewReader(testfixture.MainRelease))
	require.NoError(t, err)

	assert.True(t, rel.HasArchitecture("i386"))
	assert.False(t, rel.HasArchitecture("s390x"))
	assert.True(t, rel.HasComponent("main"))
	assert.True(t, rel.HasComponent("updates/main"))
	assert.False(t, rel.HasComponent("contrib-extra"))

	empty := &Release{}
	assert.True(t, empty.HasArchitecture("s390x"))
	assert.True(t, empty.HasComponent("anything"))
}

func TestParseReleaseFlags(t *testing.T) {
	rel, err := ParseRelease(strings.NewReader(testfixture.BackportsRelease))
	require.NoError(t, err)
	assert.Equal(t, "bookworm-backports", rel.Codename)
	assert.True(t, rel.NotAutomatic)
	assert.True(t, rel.ButAutomaticUpgrades)
}

func TestStripClearsign(t *testing.T) {
	signed := "-----BEGIN PGP SIGNED MESSAGE-----\r\n" +
		"Hash: SHA256\r\n" +
		"\r\n" +
		"Suite: stable\r\n" +
		"- -----not a signature\r\n" +
		"-----BEGIN PGP SIGNATURE-----\r\n" +
		"abc\r\n" +
		"-----END PGP SIGNATURE-----\r\n"
	assert.Equal(t, "Suite: stable\n-----not a signature", string(stripClearsign([]byte(signed))))

	plain := []byte("Suite: stable\n")
	assert.Equal(t, plain, stripClearsign(plain))
}
