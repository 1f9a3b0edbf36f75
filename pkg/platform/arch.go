// pkg/platform/arch.go
package platform

import (
	"bufio"
	"fmt"
	"os"
	"runtime"
	"strings"
)

// Architecture represents a Debian architecture
type Architecture string

const (
	// Common architectures
	ArchAmd64    Architecture = "amd64"   // x86_64
	ArchI386     Architecture = "i386"    // x86 32-bit
	ArchArm64    Architecture = "arm64"   // ARM 64-bit
	ArchArmhf    Architecture = "armhf"   // ARM hard float
	ArchArmel    Architecture = "armel"   // ARM soft float
	ArchPpc64el  Architecture = "ppc64el" // PowerPC 64-bit little endian
	ArchS390x    Architecture = "s390x"   // IBM S/390
	ArchMips64el Architecture = "mips64el"
	ArchMipsel   Architecture = "mipsel"
	ArchMips64   Architecture = "mips64"
	ArchMips     Architecture = "mips"
	ArchPpc64    Architecture = "ppc64"
	ArchRiscv64  Architecture = "riscv64"
	ArchLoong64  Architecture = "loong64"

	// Pseudo architectures used in control data
	ArchAll    Architecture = "all"    // Architecture-independent
	ArchAny    Architecture = "any"    // Relation qualifier: any architecture
	ArchNative Architecture = "native" // Relation qualifier: the native architecture
)

// AllArchitectures lists the architectures a Go binary can run on natively.
// Any other well-formed name is still accepted as a foreign architecture.
var AllArchitectures = []Architecture{
	ArchAmd64,
	ArchI386,
	ArchArm64,
	ArchArmhf,
	ArchArmel,
	ArchPpc64el,
	ArchS390x,
	ArchMips64el,
	ArchMipsel,
	ArchMips64,
	ArchMips,
	ArchPpc64,
	ArchRiscv64,
	ArchLoong64,
}

// DetectArchitecture maps the running GOARCH to its Debian architecture
func DetectArchitecture() (Architecture, error) {
	switch runtime.GOARCH {
	case "amd64":
		return ArchAmd64, nil
	case "386":
		return ArchI386, nil
	case "arm64":
		return ArchArm64, nil
	case "arm":
		// Default to armhf for ARM 32-bit
		return ArchArmhf, nil
	case "ppc64le":
		return ArchPpc64el, nil
	case "s390x":
		return ArchS390x, nil
	case "mips64le":
		return ArchMips64el, nil
	case "mipsle":
		return ArchMipsel, nil
	case "mips64":
		return ArchMips64, nil
	case "mips":
		return ArchMips, nil
	case "ppc64":
		return ArchPpc64, nil
	case "riscv64":
		return ArchRiscv64, nil
	case "loong64":
		return ArchLoong64, nil
	default:
		return "", fmt.Errorf("unsupported architecture: %s", runtime.GOARCH)
	}
}

// String returns the string representation of the architecture
func (a Architecture) String() string {
	return string(a)
}

// IsValid checks if a is a well-formed name of a real architecture, such as
// amd64, x32 or hurd-i386. Pseudo architectures are not valid.
func (a Architecture) IsValid() bool {
	switch a {
	case "", ArchAll, ArchAny, ArchNative, "source":
		return false
	}
	for i, r := range a {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		case r == '-' && i > 0 && i < len(a)-1:
		default:
			return false
		}
	}
	return true
}

// ReadArchFile reads dpkg's architecture list (one per line).
// A missing file yields an empty list.
func ReadArchFile(path string) ([]Architecture, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening arch file: %w", err)
	}
	defer f.Close()

	var archs []Architecture
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		archs = append(archs, Architecture(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading arch file: %w", err)
	}
	return archs, nil
}
