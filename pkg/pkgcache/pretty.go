// pkg/pkgcache/pretty.go
package pkgcache

import (
	"fmt"
	"strings"

	"github.com/arc-language/aptcache/pkg/deb"
)

// PrettyPkg renders a human-readable description of the package under it:
// the compact state line, the version table and a dependency summary of
// the candidate.
func PrettyPkg(d *DepCache, it PkgIterator) string {
	if it.End() {
		return "invalid package"
	}

	var b strings.Builder
	b.WriteString(StateLine(d, it))
	b.WriteString("\n")
	b.WriteString(FormatPolicy(d, it))

	st := d.State(it)
	if st.Candidate != nil {
		writeDepends(&b, d, st.Candidate)
	}
	if provs := it.Package().ProvidesList(); len(provs) > 0 {
		b.WriteString("  Provided by:\n")
		for _, v := range provs {
			fmt.Fprintf(&b, "    %s %s\n", PkgIterator{cache: d.cache, pos: v.pkg.ID}.FullName(true), v.VerStr)
		}
	}
	return b.String()
}

// StateLine renders apt's one-line package summary, for example
// "apt < 2.6.1 @ii K >"
func StateLine(d *DepCache, it PkgIterator) string {
	if it.End() {
		return "invalid package"
	}
	pkg := it.Package()
	st := d.State(it)

	current := "none"
	if pkg.Current != nil {
		current = pkg.Current.VerStr
	}
	candidate := st.CandVersion
	if candidate == "" {
		candidate = "none"
	}
	install := "none"
	if st.Install != nil {
		install = st.Install.VerStr
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s < %s", it.FullName(false), current)
	if current != install && install != "none" {
		fmt.Fprintf(&b, " -> %s", install)
	}
	if install != candidate && current != candidate {
		fmt.Fprintf(&b, " | %s", candidate)
	}

	b.WriteString(" @")
	b.WriteString(selectedFlag(pkg.State.Selected))
	b.WriteString(instFlag(pkg.State.Inst))
	b.WriteString(currentFlag(pkg.State.Current))
	b.WriteString(" ")
	if st.Upgradable() {
		b.WriteString("u")
	}
	if st.Keep() {
		b.WriteString("K")
	}
	if st.NowBroken {
		b.WriteString(" Nb")
	}
	if st.InstBroken {
		b.WriteString(" Ib")
	}
	b.WriteString(" >")
	return b.String()
}

// FormatPolicy renders the apt-cache policy block of a package
func FormatPolicy(d *DepCache, it PkgIterator) string {
	if it.End() {
		return ""
	}
	pkg := it.Package()
	st := d.State(it)

	var b strings.Builder
	fmt.Fprintf(&b, "%s:\n", it.FullName(true))
	fmt.Fprintf(&b, "  Installed: %s\n", orNone(pkg.Current))
	fmt.Fprintf(&b, "  Candidate: %s\n", orNone(st.Candidate))
	b.WriteString("  Version table:\n")
	for _, v := range pkg.Versions {
		marker := "    "
		if v == pkg.Current {
			marker = " ***"
		}
		fmt.Fprintf(&b, "%s %s %d\n", marker, v.VerStr, d.policy.Priority(v))
		for _, vf := range v.Files {
			fmt.Fprintf(&b, "        %3d %s\n", d.policy.FilePriority(vf.File), vf.File)
		}
	}
	return b.String()
}

func writeDepends(b *strings.Builder, d *DepCache, v *Version) {
	for _, typ := range []deb.DepType{deb.PreDepends, deb.Depends, deb.Recommends, deb.Conflicts, deb.Breaks} {
		groups := v.Depends[typ]
		if len(groups) == 0 {
			continue
		}
		fmt.Fprintf(b, "  %s (%s):\n", typ, v.VerStr)
		for _, g := range groups {
			mark := "ok"
			switch typ {
			case deb.Conflicts, deb.Breaks:
				if d.GroupSatisfied(v, g, true) {
					mark = "!!"
				}
			default:
				if !d.GroupSatisfied(v, g, true) {
					mark = "--"
					if !d.GroupSatisfied(v, g, false) {
						mark = "!!"
					}
				}
			}
			fmt.Fprintf(b, "    [%s] %s\n", mark, g)
		}
	}
}

func orNone(v *Version) string {
	if v == nil {
		return "(none)"
	}
	return v.VerStr
}

func selectedFlag(s deb.SelectedState) string {
	switch s {
	case deb.SelUnknown:
		return "u"
	case deb.SelInstall:
		return "i"
	case deb.SelHold:
		return "h"
	case deb.SelDeInstall:
		return "r"
	case deb.SelPurge:
		return "p"
	default:
		return "X"
	}
}

func instFlag(s deb.InstState) string {
	switch s {
	case deb.InstOk:
		return ""
	case deb.InstReInstReq:
		return "R"
	case deb.InstHoldInst:
		return "H"
	case deb.InstHoldReInstReq:
		return "HR"
	default:
		return "X"
	}
}

func currentFlag(s deb.CurrentState) string {
	switch s {
	case deb.CurNotInstalled:
		return "n"
	case deb.CurConfigFiles:
		return "c"
	case deb.CurHalfInstalled:
		return "H"
	case deb.CurUnpacked:
		return "U"
	case deb.CurHalfConfigured:
		return "F"
	case deb.CurTriggersAwaited:
		return "W"
	case deb.CurTriggersPending:
		return "T"
	case deb.CurInstalled:
		return "i"
	default:
		return "X"
	}
}
