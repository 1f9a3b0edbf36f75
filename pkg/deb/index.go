// pkg/deb/index.go
package deb

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// ErrUnsupportedCompression is returned for index files apt may write but
// that cannot be decompressed here (lz4, bzip2).
var ErrUnsupportedCompression = errors.New("unsupported compression")

// compression suffixes apt uses for list files, in preference order
var compressionSuffixes = []string{".gz", ".xz", ".zst", ".lz4", ".bz2"}

// NewDecompressor wraps r according to the compression suffix of name
func NewDecompressor(name string, r io.Reader) (io.ReadCloser, error) {
	switch {
	case strings.HasSuffix(name, ".gz"):
		gzReader, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("creating gzip reader: %w", err)
		}
		return gzReader, nil
	case strings.HasSuffix(name, ".xz"):
		xzReader, err := xz.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("creating xz reader: %w", err)
		}
		return io.NopCloser(xzReader), nil
	case strings.HasSuffix(name, ".zst"):
		zstdReader, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("creating zstd reader: %w", err)
		}
		return zstdReader.IOReadCloser(), nil
	case strings.HasSuffix(name, ".lz4"), strings.HasSuffix(name, ".bz2"):
		return nil, fmt.Errorf("%s: %w", filepath.Base(name), ErrUnsupportedCompression)
	default:
		// Assume uncompressed
		return io.NopCloser(r), nil
	}
}

type indexReader struct {
	io.ReadCloser
	file *os.File
}

func (r *indexReader) Close() error {
	err := r.ReadCloser.Close()
	if ferr := r.file.Close(); err == nil {
		err = ferr
	}
	return err
}

// OpenIndex opens a possibly compressed index file
func OpenIndex(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening index: %w", err)
	}
	rc, err := NewDecompressor(path, f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &indexReader{ReadCloser: rc, file: f}, nil
}

// IndexFile describes one Packages list under apt's lists directory
type IndexFile struct {
	Path        string // full path of the list file
	ReleasePath string // InRelease or Release next to it, empty when absent
	ReleaseName string // name of the list in the Release, e.g. main/binary-amd64/Packages.xz
	Site        string // archive host and path, e.g. deb.debian.org/debian
	Suite       string // distribution as written in sources.list
	Component   string
	Arch        string
}

// ListIndexes finds the binary Packages files in an apt lists directory.
// A missing directory yields no indexes.
func ListIndexes(dir string) ([]IndexFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading lists directory: %w", err)
	}

	names := make(map[string]bool, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names[e.Name()] = true
		}
	}

	var indexes []IndexFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		base := trimCompression(name)
		if !strings.HasSuffix(base, "_Packages") {
			continue
		}
		// Prefer the uncompressed copy when both exist
		if base != name && names[base] {
			continue
		}

		idx := parseListName(strings.TrimSuffix(base, "_Packages"))
		idx.Path = filepath.Join(dir, name)
		if idx.Suite != "" {
			prefix := listPrefix(base)
			for _, candidate := range []string{prefix + "InRelease", prefix + "Release"} {
				if names[candidate] {
					idx.ReleasePath = filepath.Join(dir, candidate)
					break
				}
			}
			idx.ReleaseName = releaseName(idx, strings.TrimPrefix(name, base))
		}
		indexes = append(indexes, idx)
	}

	sort.Slice(indexes, func(i, j int) bool { return indexes[i].Path < indexes[j].Path })
	return indexes, nil
}

func trimCompression(name string) string {
	for _, suffix := range compressionSuffixes {
		if strings.HasSuffix(name, suffix) {
			return strings.TrimSuffix(name, suffix)
		}
	}
	return name
}

// listPrefix returns "<site>_dists_<suite>_" for a list file name
func listPrefix(base string) string {
	idx := strings.Index(base, "_dists_")
	if idx == -1 {
		return ""
	}
	rest := base[idx+len("_dists_"):]
	suite, _, _ := strings.Cut(rest, "_")
	return base[:idx+len("_dists_")] + suite + "_"
}

// releaseName rebuilds the dists-relative path apt fetched the list from
func releaseName(idx IndexFile, suffix string) string {
	name := "Packages" + suffix
	if idx.Arch != "" {
		name = "binary-" + idx.Arch + "/" + name
	}
	if idx.Component != "" {
		name = idx.Component + "/" + name
	}
	return name
}

// parseListName splits "<site>_dists_<suite>_<component>_binary-<arch>"
func parseListName(stem string) IndexFile {
	var idx IndexFile
	site, rest, ok := strings.Cut(stem, "_dists_")
	if !ok {
		// Flat repository: no suite or component
		idx.Site = strings.ReplaceAll(stem, "_", "/")
		return idx
	}
	idx.Site = strings.ReplaceAll(site, "_", "/")

	parts := strings.Split(rest, "_")
	if len(parts) > 0 {
		idx.Suite = parts[0]
	}
	for _, p := range parts[1:] {
		if arch, ok := strings.CutPrefix(p, "binary-"); ok {
			idx.Arch = arch
			continue
		}
		if idx.Component == "" {
			idx.Component = p
		} else {
			idx.Component += "/" + p
		}
	}
	return idx
}
