// pkg/deb/parser.go
package deb

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Paragraph is one stanza of a deb822 control file. Field names are matched
// case-insensitively.
type Paragraph struct {
	Fields []string // field names in file order, as written
	values map[string]string
}

// Get returns the value of field, or "" when absent
func (p *Paragraph) Get(field string) string {
	return p.values[strings.ToLower(field)]
}

// Has reports whether field is present
func (p *Paragraph) Has(field string) bool {
	_, ok := p.values[strings.ToLower(field)]
	return ok
}

func (p *Paragraph) set(field, value string) {
	key := strings.ToLower(field)
	if _, ok := p.values[key]; !ok {
		p.Fields = append(p.Fields, field)
	}
	p.values[key] = value
}

// EachParagraph calls fn for every stanza in r
func EachParagraph(r io.Reader, fn func(*Paragraph) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024) // Handle large descriptions

	var current *Paragraph
	var lastField string

	flush := func() error {
		if current == nil {
			return nil
		}
		p := current
		current = nil
		lastField = ""
		return fn(p)
	}

	for scanner.Scan() {
		line := scanner.Text()

		// Empty line indicates end of stanza
		if strings.TrimSpace(line) == "" {
			if err := flush(); err != nil {
				return err
			}
			continue
		}

		if strings.HasPrefix(line, "#") {
			continue
		}

		// Continuation line (starts with space or tab)
		if line[0] == ' ' || line[0] == '\t' {
			if current != nil && lastField != "" {
				cont := strings.TrimSpace(line)
				if cont == "." {
					cont = ""
				}
				current.set(lastField, current.Get(lastField)+"\n"+cont)
			}
			continue
		}

		// Parse field: value
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}

		if current == nil {
			current = &Paragraph{values: make(map[string]string)}
		}
		lastField = strings.TrimSpace(parts[0])
		current.set(lastField, strings.TrimSpace(parts[1]))
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanning control file: %w", err)
	}

	// Don't forget the last stanza
	return flush()
}

// ParseParagraphs parses every stanza in r
func ParseParagraphs(r io.Reader) ([]*Paragraph, error) {
	var paragraphs []*Paragraph
	err := EachParagraph(r, func(p *Paragraph) error {
		paragraphs = append(paragraphs, p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paragraphs, nil
}

// PackageRecord is a binary package stanza from a Packages or status file
type PackageRecord struct {
	Package       string
	Version       string
	Architecture  string
	MultiArch     string
	Source        string
	Maintainer    string
	InstalledSize int64
	Relations     map[DepType][]OrGroup
	Provides      []Relation
	Description   string
	Homepage      string
	Section       string
	Priority      string
	Filename      string
	Size          int64
	SHA256        string
	Status        *Status // only set for dpkg status records
}

// Index-order of relation fields as they appear in control files
var relationFields = []struct {
	field string
	typ   DepType
}{
	{"Pre-Depends", PreDepends},
	{"Depends", Depends},
	{"Recommends", Recommends},
	{"Suggests", Suggests},
	{"Enhances", Enhances},
	{"Breaks", Breaks},
	{"Conflicts", Conflicts},
	{"Replaces", Replaces},
	{"Obsoletes", Obsoletes},
}

// RecordFromParagraph converts a stanza into a PackageRecord
func RecordFromParagraph(p *Paragraph) (*PackageRecord, error) {
	rec := &PackageRecord{
		Package:      p.Get("Package"),
		Version:      p.Get("Version"),
		Architecture: p.Get("Architecture"),
		MultiArch:    p.Get("Multi-Arch"),
		Source:       p.Get("Source"),
		Maintainer:   p.Get("Maintainer"),
		Description:  p.Get("Description"),
		Homepage:     p.Get("Homepage"),
		Section:      p.Get("Section"),
		Priority:     p.Get("Priority"),
		Filename:     p.Get("Filename"),
		SHA256:       p.Get("SHA256"),
	}
	if rec.Package == "" {
		return nil, fmt.Errorf("stanza without Package field")
	}

	if v := p.Get("Installed-Size"); v != "" {
		if size, err := strconv.ParseInt(v, 10, 64); err == nil {
			rec.InstalledSize = size * 1024 // Convert from KB to bytes
		}
	}
	if v := p.Get("Size"); v != "" {
		if size, err := strconv.ParseInt(v, 10, 64); err == nil {
			rec.Size = size
		}
	}

	for _, rf := range relationFields {
		v := p.Get(rf.field)
		if v == "" {
			continue
		}
		groups, err := ParseRelations(v)
		if err != nil {
			return nil, fmt.Errorf("package %s: %s: %w", rec.Package, rf.field, err)
		}
		if rec.Relations == nil {
			rec.Relations = make(map[DepType][]OrGroup)
		}
		rec.Relations[rf.typ] = groups
	}

	if v := p.Get("Provides"); v != "" {
		groups, err := ParseRelations(v)
		if err != nil {
			return nil, fmt.Errorf("package %s: Provides: %w", rec.Package, err)
		}
		for _, g := range groups {
			rec.Provides = append(rec.Provides, g...)
		}
	}

	if v := p.Get("Status"); v != "" {
		st, err := ParseStatus(v)
		if err != nil {
			return nil, fmt.Errorf("package %s: %w", rec.Package, err)
		}
		rec.Status = &st
	}

	return rec, nil
}

// ParsePackages parses a Debian Packages or dpkg status file
func ParsePackages(r io.Reader) ([]*PackageRecord, error) {
	var packages []*PackageRecord
	err := EachParagraph(r, func(p *Paragraph) error {
		if !p.Has("Package") {
			return nil
		}
		rec, err := RecordFromParagraph(p)
		if err != nil {
			return err
		}
		packages = append(packages, rec)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("parsing packages: %w", err)
	}
	return packages, nil
}
