// pkg/deb/relation.go
package deb

import (
	"fmt"
	"strings"
)

// DepType is the kind of a package relationship field
type DepType int

const (
	Depends DepType = iota + 1
	PreDepends
	Suggests
	Recommends
	Conflicts
	Replaces
	Obsoletes
	Breaks
	Enhances
)

// String returns the field name apt uses for the relation type
func (t DepType) String() string {
	switch t {
	case Depends:
		return "Depends"
	case PreDepends:
		return "PreDepends"
	case Suggests:
		return "Suggests"
	case Recommends:
		return "Recommends"
	case Conflicts:
		return "Conflicts"
	case Replaces:
		return "Replaces"
	case Obsoletes:
		return "Obsoletes"
	case Breaks:
		return "Breaks"
	case Enhances:
		return "Enhances"
	default:
		return fmt.Sprintf("DepType(%d)", int(t))
	}
}

// Relation operators
const (
	OpLess         = "<<"
	OpLessEqual    = "<="
	OpEqual        = "="
	OpGreaterEqual = ">="
	OpGreater      = ">>"
)

// Relation is a single package reference such as "libc6:any (>= 2.34) [amd64]"
type Relation struct {
	Name    string
	Arch    string   // qualifier after ':', empty when none
	Op      string   // one of the Op constants, empty when unversioned
	Version string   // version the operator applies to
	Archs   []string // architecture restriction list, may contain !negations
}

// String renders the relation the way it appears in control files
func (r Relation) String() string {
	var b strings.Builder
	b.WriteString(r.Name)
	if r.Arch != "" {
		b.WriteString(":")
		b.WriteString(r.Arch)
	}
	if r.Op != "" {
		fmt.Fprintf(&b, " (%s %s)", r.Op, r.Version)
	}
	if len(r.Archs) > 0 {
		fmt.Fprintf(&b, " [%s]", strings.Join(r.Archs, " "))
	}
	return b.String()
}

// AppliesTo reports whether the architecture restriction list admits arch
func (r Relation) AppliesTo(arch string) bool {
	if len(r.Archs) == 0 {
		return true
	}
	negated := strings.HasPrefix(r.Archs[0], "!")
	for _, a := range r.Archs {
		if strings.TrimPrefix(a, "!") == arch {
			return !negated
		}
	}
	return negated
}

// OrGroup is a list of alternatives separated by '|'
type OrGroup []Relation

// String renders the alternatives joined by " | "
func (g OrGroup) String() string {
	parts := make([]string, len(g))
	for i, r := range g {
		parts[i] = r.String()
	}
	return strings.Join(parts, " | ")
}

// ParseRelations parses a comma-separated relationship field
func ParseRelations(s string) ([]OrGroup, error) {
	var groups []OrGroup
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		var group OrGroup
		for _, alt := range strings.Split(part, "|") {
			rel, err := ParseRelation(alt)
			if err != nil {
				return nil, err
			}
			group = append(group, rel)
		}
		groups = append(groups, group)
	}
	return groups, nil
}

// ParseRelation parses one alternative of a relationship field
func ParseRelation(s string) (Relation, error) {
	s = strings.TrimSpace(s)
	var rel Relation

	// Architecture restriction: [amd64 !i386]
	if idx := strings.Index(s, "["); idx != -1 {
		end := strings.Index(s[idx:], "]")
		if end == -1 {
			return rel, fmt.Errorf("unterminated architecture list in %q", s)
		}
		rel.Archs = strings.Fields(s[idx+1 : idx+end])
		s = strings.TrimSpace(s[:idx] + s[idx+end+1:])
	}

	// Build profile restrictions <!nocheck> are not interpreted
	if idx := strings.Index(s, "<"); idx != -1 && !strings.Contains(s[:idx], "(") {
		s = strings.TrimSpace(s[:idx])
	}

	// Version constraint: (>= 1.0)
	if idx := strings.Index(s, "("); idx != -1 {
		end := strings.Index(s[idx:], ")")
		if end == -1 {
			return rel, fmt.Errorf("unterminated version constraint in %q", s)
		}
		op, ver, err := parseConstraint(s[idx+1 : idx+end])
		if err != nil {
			return rel, fmt.Errorf("%q: %w", s, err)
		}
		rel.Op, rel.Version = op, ver
		s = strings.TrimSpace(s[:idx])
	}

	if name, arch, ok := strings.Cut(s, ":"); ok {
		rel.Name, rel.Arch = strings.TrimSpace(name), strings.TrimSpace(arch)
	} else {
		rel.Name = s
	}
	if rel.Name == "" || strings.ContainsAny(rel.Name, " \t\n") {
		return rel, fmt.Errorf("invalid package name in relation %q", s)
	}

	return rel, nil
}

func parseConstraint(s string) (string, string, error) {
	s = strings.TrimSpace(s)
	// Longest operators first
	for _, op := range []string{"<<", "<=", ">=", ">>", "=", "<", ">"} {
		if strings.HasPrefix(s, op) {
			ver := strings.TrimSpace(s[len(op):])
			if ver == "" {
				return "", "", fmt.Errorf("missing version after %s", op)
			}
			// Obsolete single-character forms mean <= and >=
			switch op {
			case "<":
				op = OpLessEqual
			case ">":
				op = OpGreaterEqual
			}
			return op, ver, nil
		}
	}
	return "", "", fmt.Errorf("unknown relation operator in %q", s)
}
