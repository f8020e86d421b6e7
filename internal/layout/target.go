package layout

import (
	"fmt"
	"strings"
)

// Arch is the CPU family of a target triple.
type Arch uint8

const (
	ArchX86_64 Arch = iota + 1
	ArchX86
	ArchAArch64
)

func (a Arch) String() string {
	switch a {
	case ArchX86_64:
		return "x86_64"
	case ArchX86:
		return "x86"
	case ArchAArch64:
		return "aarch64"
	default:
		return "unknown"
	}
}

// OS is the operating system of a target triple.
type OS uint8

const (
	OSLinux OS = iota + 1
	OSDarwin
)

func (o OS) String() string {
	switch o {
	case OSLinux:
		return "linux"
	case OSDarwin:
		return "darwin"
	default:
		return "unknown"
	}
}

// Target describes the ABI target triple and its pointer properties.
type Target struct {
	Triple     string
	Arch       Arch
	OS         OS
	PtrSize    int
	PtrAlign   int
	DataLayout string
}

const (
	dataLayoutX86_64Linux  = "e-m:e-p270:32:32-p271:32:32-p272:64:64-i64:64-f80:128-n8:16:32:64-S128"
	dataLayoutX86_64Darwin = "e-m:o-p270:32:32-p271:32:32-p272:64:64-i64:64-f80:128-n8:16:32:64-S128"
	dataLayoutX86Linux     = "e-m:e-p:32:32-p270:32:32-p271:32:32-p272:64:64-f64:32:64-f80:32-n8:16:32-S128"
	dataLayoutX86Darwin    = "e-m:o-p:32:32-p270:32:32-p271:32:32-p272:64:64-f64:32:64-f80:128-n8:16:32-S128"
	dataLayoutAArch64Linux = "e-m:e-i8:8:32-i16:16:32-i64:64-i128:128-n32:64-S128"
	dataLayoutAArch64Mac   = "e-m:o-i64:64-i128:128-n32:64-S128"
)

// DefaultTriple is used when neither the manifest nor the CLI name one.
const DefaultTriple = "x86_64-unknown-linux-gnu"

// X86_64Linux returns the default target.
func X86_64Linux() Target {
	t, _ := ParseTarget(DefaultTriple)
	return t
}

// ParseTarget recognizes x86_64, i386/i686 and aarch64/arm64 triples on
// Linux and Darwin.
func ParseTarget(triple string) (Target, error) {
	parts := strings.Split(triple, "-")
	if len(parts) < 2 {
		return Target{}, fmt.Errorf("malformed target triple %q", triple)
	}
	t := Target{Triple: triple}
	switch parts[0] {
	case "x86_64", "amd64":
		t.Arch, t.PtrSize = ArchX86_64, 8
	case "i386", "i486", "i586", "i686", "x86":
		t.Arch, t.PtrSize = ArchX86, 4
	case "aarch64", "arm64":
		t.Arch, t.PtrSize = ArchAArch64, 8
	default:
		return Target{}, fmt.Errorf("unsupported architecture %q in target triple %q", parts[0], triple)
	}
	t.PtrAlign = t.PtrSize
	switch {
	case strings.Contains(triple, "linux"):
		t.OS = OSLinux
	case strings.Contains(triple, "darwin"), strings.Contains(triple, "macos"), strings.Contains(triple, "apple"):
		t.OS = OSDarwin
	default:
		return Target{}, fmt.Errorf("unsupported operating system in target triple %q", triple)
	}
	t.DataLayout = dataLayoutFor(t.Arch, t.OS)
	return t, nil
}

func dataLayoutFor(a Arch, o OS) string {
	switch {
	case a == ArchX86_64 && o == OSLinux:
		return dataLayoutX86_64Linux
	case a == ArchX86_64:
		return dataLayoutX86_64Darwin
	case a == ArchX86 && o == OSLinux:
		return dataLayoutX86Linux
	case a == ArchX86:
		return dataLayoutX86Darwin
	case o == OSLinux:
		return dataLayoutAArch64Linux
	default:
		return dataLayoutAArch64Mac
	}
}
