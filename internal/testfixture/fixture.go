// Package testfixture writes a small Debian package database to disk for
// tests.
package testfixture

import (
	"archive/tar"
	"bytes"
	"crypto/md5"
	"crypto/sha256"
	"fmt"
	"hash"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/blakesmith/ar"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"

	"github.com/arc-language/aptcache/pkg/config"
)

// Number of entries in the package table built from the fixture:
// 11 real package/architecture pairs from status and lists, the virtual
// package awk, and hello from the local .deb.
const PackageCount = 13

// Names of the fixture packages in table order
var PackageOrder = []string{
	"adduser:amd64",
	"apt:amd64",
	"awk:amd64",
	"brokenpkg:amd64",
	"curl:amd64",
	"gpgv:amd64",
	"hello:amd64",
	"libapt-pkg6.0:amd64",
	"libc6:amd64",
	"libc6:i386",
	"mawk:amd64",
	"oldconf:amd64",
	"passwd:amd64",
}

// Status is the dpkg status database
const Status = `Package: apt
Status: install ok installed
Priority: important
Section: admin
Installed-Size: 4156
Maintainer: APT Development Team <deity@lists.debian.org>
Architecture: amd64
Version: 2.6.1
Depends: adduser, gpgv | gpgv2, libapt-pkg6.0 (>= 2.6.1), libc6 (>= 2.34)
Description: commandline package manager
 This package provides commandline tools for searching and
 managing as well as querying information about packages.

Package: libapt-pkg6.0
Status: install ok installed
Architecture: amd64
Multi-Arch: same
Version: 2.6.1
Depends: libc6 (>= 2.34)

Package: libc6
Status: install ok installed
Architecture: amd64
Multi-Arch: same
Version: 2.36-9

Package: libc6
Status: install ok installed
Architecture: i386
Multi-Arch: same
Version: 2.36-9

Package: adduser
Status: install ok installed
Architecture: all
Multi-Arch: foreign
Version: 3.134
Depends: passwd

Package: passwd
Status: install ok installed
Architecture: amd64
Version: 1:4.13+dfsg1-1

Package: gpgv
Status: install ok installed
Architecture: amd64
Multi-Arch: foreign
Version: 2.2.40-1.1

Package: oldconf
Status: deinstall ok config-files
Architecture: amd64
Version: 0.9-1

Package: brokenpkg
Status: hold ok installed
Architecture: amd64
Version: 1.0-1
Depends: missing-lib (>= 2)
`

// MainRelease is the clearsigned InRelease of bookworm. Its hash lists
// cover the amd64 list only, so the i386 list is left unverified.
var MainRelease = `-----BEGIN PGP SIGNED MESSAGE-----
Hash: SHA512

Origin: Debian
Label: Debian
Suite: stable
Version: 12.5
Codename: bookworm
Date: Sat, 10 Feb 2024 09:59:38 UTC
Architectures: all amd64 i386
Components: main contrib non-free-firmware non-free
Description: Debian 12.5 Released 10 February 2024
MD5Sum:
 ` + hashEntry(md5.New(), MainAmd64, "main/binary-amd64/Packages") + `
SHA256:
 ` + hashEntry(sha256.New(), MainAmd64, "main/binary-amd64/Packages") + `
 0123abcd 1024 main/binary-amd64/Packages.xz
-----BEGIN PGP SIGNATURE-----

iQIzBAEBCgAdFiEE
-----END PGP SIGNATURE-----
`

func hashEntry(h hash.Hash, data, name string) string {
	h.Write([]byte(data))
	return fmt.Sprintf("%x %d %s", h.Sum(nil), len(data), name)
}

// MainAmd64 is the bookworm main amd64 Packages list
const MainAmd64 = `Package: apt
Version: 2.6.1
Architecture: amd64
Priority: important
Section: admin
Depends: adduser, gpgv | gpgv2, libapt-pkg6.0 (>= 2.6.1), libc6 (>= 2.34)
Filename: pool/main/a/apt/apt_2.6.1_amd64.deb
Size: 1372
SHA256: 7c3d3b0d4a1b1a0f

Package: curl
Version: 7.88.1-10
Architecture: amd64
Depends: libc6 (>= 2.17), libcurl4 (= 7.88.1-10)
Filename: pool/main/c/curl/curl_7.88.1-10_amd64.deb
Size: 315

Package: libc6
Version: 2.36-9+deb12u4
Architecture: amd64
Multi-Arch: same
Filename: pool/main/g/glibc/libc6_2.36-9+deb12u4_amd64.deb
Size: 2757

Package: mawk
Version: 1.3.4.20200120-3.1
Architecture: amd64
Multi-Arch: foreign
Provides: awk
Filename: pool/main/m/mawk/mawk_1.3.4.20200120-3.1_amd64.deb

Package: toaster
Version: 1.0
Architecture: s390x
`

// MainI386 is the bookworm main i386 Packages list, stored gzipped
const MainI386 = `Package: libc6
Version: 2.36-9+deb12u4
Architecture: i386
Multi-Arch: same
Filename: pool/main/g/glibc/libc6_2.36-9+deb12u4_i386.deb
`

// BackportsRelease is the unsigned Release of bookworm-backports
const BackportsRelease = `Origin: Debian Backports
Label: Debian Backports
Suite: stable-backports
Codename: bookworm-backports
NotAutomatic: yes
ButAutomaticUpgrades: yes
Architectures: amd64
Components: main
`

// BackportsAmd64 is the backports main amd64 Packages list, stored xz compressed
const BackportsAmd64 = `Package: apt
Version: 2.7.0~bpo12+1
Architecture: amd64
Depends: libc6 (>= 2.34)
Filename: pool/main/a/apt/apt_2.7.0~bpo12+1_amd64.deb
`

// HelloControl is the control file inside hello_2.10-3_amd64.deb
const HelloControl = `Package: hello
Version: 2.10-3
Architecture: amd64
Maintainer: Santiago Vila <sanvila@debian.org>
Installed-Size: 280
Depends: libc6 (>= 2.34), mawk | awk
Section: devel
Priority: optional
Description: example package based on GNU hello
`

// Names of the files written below the lists directory
const (
	MainReleaseFile     = "deb.debian.org_debian_dists_bookworm_InRelease"
	MainAmd64File       = "deb.debian.org_debian_dists_bookworm_main_binary-amd64_Packages"
	MainI386File        = "deb.debian.org_debian_dists_bookworm_main_binary-i386_Packages.gz"
	BackportsRelFile    = "deb.debian.org_debian_dists_bookworm-backports_Release"
	BackportsAmd64File  = "deb.debian.org_debian_dists_bookworm-backports_main_binary-amd64_Packages.xz"
	HelloDeb            = "hello_2.10-3_amd64.deb"
	NativeArchitecture  = "amd64"
	ForeignArchitecture = "i386"
)

// Write populates root with the fixture database and returns a config
// pointing at it
func Write(t testing.TB, root string) *config.Config {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Rebase(root)
	cfg.Architecture = NativeArchitecture
	cfg.Architectures = []string{ForeignArchitecture}
	cfg.Debs = []string{HelloDeb}

	for _, dir := range []string{filepath.Dir(cfg.Dir.Status), cfg.Dir.Lists, cfg.Dir.Archives} {
		require.NoError(t, os.MkdirAll(dir, 0o755))
	}

	writeFile(t, cfg.Dir.Status, []byte(Status))
	writeFile(t, cfg.Dir.ArchFile, []byte("amd64\ni386\n"))
	writeFile(t, filepath.Join(cfg.Dir.Lists, MainReleaseFile), []byte(MainRelease))
	writeFile(t, filepath.Join(cfg.Dir.Lists, MainAmd64File), []byte(MainAmd64))
	writeFile(t, filepath.Join(cfg.Dir.Lists, MainI386File), Gzip(t, []byte(MainI386)))
	writeFile(t, filepath.Join(cfg.Dir.Lists, BackportsRelFile), []byte(BackportsRelease))
	writeFile(t, filepath.Join(cfg.Dir.Lists, BackportsAmd64File), Xz(t, []byte(BackportsAmd64)))
	writeFile(t, filepath.Join(cfg.Dir.Lists, "lock"), nil)
	writeFile(t, filepath.Join(cfg.Dir.Archives, HelloDeb), Deb(t, HelloControl))

	return cfg
}

// State initializes the global configuration for a fresh fixture and
// returns it
func State(t testing.TB) *config.State {
	t.Helper()

	cfg := Write(t, t.TempDir())
	require.NoError(t, config.Init(cfg))
	t.Cleanup(config.Reset)

	state, err := config.Global()
	require.NoError(t, err)
	return state
}

func writeFile(t testing.TB, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

// Gzip compresses data
func Gzip(t testing.TB, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

// Xz compresses data
func Xz(t testing.TB, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	require.NoError(t, err)
	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

// Deb builds a minimal .deb whose control.tar.gz holds control
func Deb(t testing.TB, control string) []byte {
	t.Helper()

	var tarBuf bytes.Buffer
	tw := tar.NewWriter(&tarBuf)
	require.NoError(t, tw.WriteHeader(&tar.Header{
		Name:     "./control",
		Mode:     0o644,
		Size:     int64(len(control)),
		Typeflag: tar.TypeReg,
		ModTime:  time.Unix(0, 0),
	}))
	_, err := tw.Write([]byte(control))
	require.NoError(t, err)
	require.NoError(t, tw.Close())
	controlTar := Gzip(t, tarBuf.Bytes())

	var deb bytes.Buffer
	aw := ar.NewWriter(&deb)
	require.NoError(t, aw.WriteGlobalHeader())
	member := func(name string, data []byte) {
		require.NoError(t, aw.WriteHeader(&ar.Header{
			Name:    name,
			Mode:    0o644,
			Size:    int64(len(data)),
			ModTime: time.Unix(0, 0),
		}))
		_, err := aw.Write(data)
		require.NoError(t, err)
	}
	member("debian-binary", []byte("2.0\n"))
	member("control.tar.gz", controlTar)
	return deb.Bytes()
}
