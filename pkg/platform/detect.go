// pkg/platform/detect.go
package platform

import (
	"fmt"
)

// SystemLabel is the label of the only packaging system supported
const SystemLabel = "Debian dpkg interface"

// System is the detected packaging system
type System struct {
	Label        string
	NativeArch   Architecture
	ForeignArchs []Architecture
	StatusFile   string
}

// DetectOptions overrides what Detect would otherwise discover
type DetectOptions struct {
	Architecture  string   // native architecture, detected when empty
	Architectures []string // foreign architectures, read from ArchFile when empty
	ArchFile      string   // dpkg's arch list, usually /var/lib/dpkg/arch
	StatusFile    string   // dpkg status database
}

// Detect figures out the native and foreign architectures of the system
func Detect(opts DetectOptions) (*System, error) {
	native := Architecture(opts.Architecture)
	if native == "" {
		detected, err := DetectArchitecture()
		if err != nil {
			return nil, fmt.Errorf("detecting architecture: %w", err)
		}
		native = detected
	}
	if !native.IsValid() {
		return nil, fmt.Errorf("invalid native architecture: %s", native)
	}

	var foreign []Architecture
	if len(opts.Architectures) > 0 {
		for _, a := range opts.Architectures {
			foreign = append(foreign, Architecture(a))
		}
	} else if opts.ArchFile != "" {
		listed, err := ReadArchFile(opts.ArchFile)
		if err != nil {
			return nil, err
		}
		foreign = listed
	}

	sys := &System{
		Label:      SystemLabel,
		NativeArch: native,
		StatusFile: opts.StatusFile,
	}
	seen := map[Architecture]bool{native: true}
	for _, a := range foreign {
		if seen[a] {
			continue
		}
		if !a.IsValid() {
			return nil, fmt.Errorf("invalid foreign architecture: %s", a)
		}
		seen[a] = true
		sys.ForeignArchs = append(sys.ForeignArchs, a)
	}

	return sys, nil
}

// Architectures returns the native architecture followed by the foreign ones
func (s *System) Architectures() []string {
	archs := make([]string, 0, len(s.ForeignArchs)+1)
	archs = append(archs, s.NativeArch.String())
	for _, a := range s.ForeignArchs {
		archs = append(archs, a.String())
	}
	return archs
}

// String returns a string representation of the system
func (s *System) String() string {
	return fmt.Sprintf("%s (native: %s, foreign: %v)", s.Label, s.NativeArch, s.ForeignArchs)
}
