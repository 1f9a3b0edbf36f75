// pkg/deb/release.go
package deb

import (
	"bufio"
	"bytes"
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
)

// ErrHashMismatch is returned when a file does not match its Release entry
var ErrHashMismatch = errors.New("hash mismatch")

// Release represents a Debian Release or InRelease file
type Release struct {
	Origin               string
	Label                string
	Suite                string
	Version              string
	Codename             string
	Architectures        []string
	Components           []string
	NotAutomatic         bool
	ButAutomaticUpgrades bool
	MD5Sum               []FileHash
	SHA256               []FileHash
}

// FileHash represents a file hash entry in a Release file
type FileHash struct {
	Hash string
	Size int64
	Name string
}

const (
	pgpSignedHeader = "-----BEGIN PGP SIGNED MESSAGE-----"
	pgpSignature    = "-----BEGIN PGP SIGNATURE-----"
)

// ParseRelease parses a Release file. Clearsigned InRelease files are
// accepted; the signature is stripped, not verified.
func ParseRelease(r io.Reader) (*Release, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading release file: %w", err)
	}
	data = stripClearsign(data)

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	release := &Release{}
	var currentHashType string

	for scanner.Scan() {
		line := scanner.Text()

		// Skip empty lines
		if line == "" {
			continue
		}

		// Continuation line (hash entry)
		if strings.HasPrefix(line, " ") {
			if currentHashType != "" {
				parts := strings.Fields(line)
				if len(parts) >= 3 {
					size, _ := strconv.ParseInt(parts[1], 10, 64)
					fileHash := FileHash{
						Hash: parts[0],
						Size: size,
						Name: parts[2],
					}

					switch currentHashType {
					case "MD5Sum":
						release.MD5Sum = append(release.MD5Sum, fileHash)
					case "SHA256":
						release.SHA256 = append(release.SHA256, fileHash)
					}
				}
			}
			continue
		}
		currentHashType = ""

		// Parse field: value
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}

		field := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		switch field {
		case "Origin":
			release.Origin = value
		case "Label":
			release.Label = value
		case "Suite":
			release.Suite = value
		case "Version":
			release.Version = value
		case "Codename":
			release.Codename = value
		case "Architectures":
			release.Architectures = strings.Fields(value)
		case "Components":
			release.Components = strings.Fields(value)
		case "NotAutomatic":
			release.NotAutomatic = strings.EqualFold(value, "yes")
		case "ButAutomaticUpgrades":
			release.ButAutomaticUpgrades = strings.EqualFold(value, "yes")
		case "MD5Sum", "SHA256":
			currentHashType = field
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning release file: %w", err)
	}

	return release, nil
}

// VerifyFile checks the file at path against the Release entry for name, a
// path relative to the dists directory such as main/binary-amd64/Packages.gz.
// SHA256 is preferred over MD5Sum. It reports false when name is not listed.
func (r *Release) VerifyFile(name, path string) (bool, error) {
	sums := []struct {
		entries []FileHash
		newHash func() hash.Hash
	}{
		{r.SHA256, sha256.New},
		{r.MD5Sum, md5.New},
	}
	for _, sum := range sums {
		for _, fh := range sum.entries {
			if fh.Name == name {
				return true, verifyFileHash(path, fh, sum.newHash())
			}
		}
	}
	return false, nil
}

func verifyFileHash(path string, expected FileHash, h hash.Hash) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	size, err := io.Copy(h, f)
	if err != nil {
		return fmt.Errorf("computing hash: %w", err)
	}
	if size != expected.Size {
		return fmt.Errorf("%s: %w: size %d, expected %d", expected.Name, ErrHashMismatch, size, expected.Size)
	}
	if actual := hex.EncodeToString(h.Sum(nil)); !strings.EqualFold(actual, expected.Hash) {
		return fmt.Errorf("%s: %w: got %s, expected %s", expected.Name, ErrHashMismatch, actual, expected.Hash)
	}
	return nil
}

// HasArchitecture reports whether the Release covers arch. A Release
// without an Architectures field covers everything.
func (r *Release) HasArchitecture(arch string) bool {
	return len(r.Architectures) == 0 || slices.Contains(r.Architectures, arch)
}

// HasComponent reports whether the Release lists component. Only the last
// path element is compared, so updates/main matches main.
func (r *Release) HasComponent(component string) bool {
	if len(r.Components) == 0 {
		return true
	}
	last := component[strings.LastIndex(component, "/")+1:]
	for _, c := range r.Components {
		if c == component || c[strings.LastIndex(c, "/")+1:] == last {
			return true
		}
	}
	return false
}

// stripClearsign returns the signed text of an OpenPGP clearsigned message,
// or data unchanged when it is not one.
func stripClearsign(data []byte) []byte {
	if !bytes.HasPrefix(bytes.TrimSpace(data), []byte(pgpSignedHeader)) {
		return data
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	var out []string
	inHeader := true
	for _, line := range lines[1:] {
		line = strings.TrimRight(line, "\r")
		if inHeader {
			// Armor headers (Hash: SHA512) end at the first blank line
			if line == "" {
				inHeader = false
			}
			continue
		}
		if strings.HasPrefix(line, pgpSignature) {
			break
		}
		// Dash-escaped lines
		out = append(out, strings.TrimPrefix(line, "- "))
	}
	return []byte(strings.Join(out, "\n"))
}
