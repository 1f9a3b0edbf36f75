// pkg/deb/archive.go
package deb

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/blakesmith/ar"
)

// ReadControl extracts the control stanza from a .deb read from r
func ReadControl(r io.Reader) (*Paragraph, error) {
	// The .deb file is an ar archive
	arReader := ar.NewReader(r)

	for {
		header, err := arReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading ar entry: %w", err)
		}

		// GNU ar terminates member names with '/'
		name := strings.TrimRight(strings.TrimSpace(header.Name), "/")
		if !strings.HasPrefix(name, "control.tar") {
			continue
		}

		tr, err := NewDecompressor(name, arReader)
		if err != nil {
			return nil, err
		}
		defer tr.Close()
		return readControlTar(tar.NewReader(tr))
	}

	return nil, fmt.Errorf("no control.tar.* found in .deb package")
}

func readControlTar(tarReader *tar.Reader) (*Paragraph, error) {
	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading tar entry: %w", err)
		}

		if strings.TrimPrefix(header.Name, "./") != "control" || !header.FileInfo().Mode().IsRegular() {
			continue
		}

		paragraphs, err := ParseParagraphs(tarReader)
		if err != nil {
			return nil, err
		}
		if len(paragraphs) == 0 {
			return nil, fmt.Errorf("empty control file")
		}
		return paragraphs[0], nil
	}
	return nil, fmt.Errorf("no control file in control archive")
}

// ReadDebFile reads the package record of a local .deb file. Filename and
// Size are filled from the file itself.
func ReadDebFile(path string) (*PackageRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening .deb file: %w", err)
	}
	defer f.Close()

	p, err := ReadControl(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	rec, err := RecordFromParagraph(p)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if info, err := f.Stat(); err == nil {
		rec.Size = info.Size()
	}
	rec.Filename = path
	return rec, nil
}
