// pkg/deb/status.go
package deb

import (
	"fmt"
	"strings"
)

// SelectedState is the first word of a dpkg Status field
type SelectedState int

const (
	SelUnknown SelectedState = iota
	SelInstall
	SelHold
	SelDeInstall
	SelPurge
)

// InstState is the second word of a dpkg Status field
type InstState int

const (
	InstOk InstState = iota
	InstReInstReq
	InstHoldInst
	InstHoldReInstReq
)

// CurrentState is the third word of a dpkg Status field
type CurrentState int

const (
	CurNotInstalled CurrentState = iota
	CurConfigFiles
	CurHalfInstalled
	CurUnpacked
	CurHalfConfigured
	CurTriggersAwaited
	CurTriggersPending
	CurInstalled
)

// Status is a parsed "want flag status" triple
type Status struct {
	Selected SelectedState
	Inst     InstState
	Current  CurrentState
}

var selectedWords = map[string]SelectedState{
	"unknown":   SelUnknown,
	"install":   SelInstall,
	"hold":      SelHold,
	"deinstall": SelDeInstall,
	"purge":     SelPurge,
}

var instWords = map[string]InstState{
	"ok":             InstOk,
	"reinstreq":      InstReInstReq,
	"hold":           InstHoldInst,
	"hold-reinstreq": InstHoldReInstReq,
}

var currentWords = map[string]CurrentState{
	"not-installed":    CurNotInstalled,
	"config-files":     CurConfigFiles,
	"half-installed":   CurHalfInstalled,
	"unpacked":         CurUnpacked,
	"half-configured":  CurHalfConfigured,
	"triggers-awaited": CurTriggersAwaited,
	"triggers-pending": CurTriggersPending,
	"installed":        CurInstalled,
}

// ParseStatus parses a dpkg Status field such as "install ok installed"
func ParseStatus(s string) (Status, error) {
	var st Status
	words := strings.Fields(s)
	if len(words) != 3 {
		return st, fmt.Errorf("malformed status %q", s)
	}

	var ok bool
	if st.Selected, ok = selectedWords[words[0]]; !ok {
		return st, fmt.Errorf("unknown selection state %q", words[0])
	}
	if st.Inst, ok = instWords[words[1]]; !ok {
		return st, fmt.Errorf("unknown flag %q", words[1])
	}
	if st.Current, ok = currentWords[words[2]]; !ok {
		return st, fmt.Errorf("unknown package state %q", words[2])
	}
	return st, nil
}

// HasCurrentVersion reports whether dpkg considers a version of the package
// present on disk. Packages that are not installed or only have
// configuration files left have no current version.
func (s Status) HasCurrentVersion() bool {
	return s.Current != CurNotInstalled && s.Current != CurConfigFiles
}
