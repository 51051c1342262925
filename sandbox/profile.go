package sandbox

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/docker/go-units"
)

// Default runtime binaries. The remote variant talks to the host's runtime
// socket and is what works from inside a container.
const (
	DefaultLocalBinary  = "podman"
	DefaultRemoteBinary = "podman-remote"
)

// Profile describes the resource and isolation limits of one sandboxed run.
//
// A Profile is a plain value: it is built once from the resolved
// configuration and copied freely. Every string field ends up inside a
// shell command line, so Validate only accepts shell-safe tokens.
type Profile struct {
	CPU          string // fractional CPU count, e.g. "0.5"
	Memory       string // human size, e.g. "100m"
	Swap         string // human size; validated but never passed to the runtime
	Network      string // runtime network mode, e.g. "none"
	PIDs         uint64
	Image        string
	MaxRuntimeMS uint64
	InContainer  bool
	LocalBinary  string
	RemoteBinary string
}

// Timeout returns the wall-clock ceiling of a run
func (p Profile) Timeout() time.Duration {
	return time.Duration(p.MaxRuntimeMS) * time.Millisecond
}

// RuntimeBinary selects the container runtime to invoke. When this process
// itself runs in a container the local socket is not reachable, so the
// remote-capable binary is used instead.
func (p Profile) RuntimeBinary() string {
	if p.InContainer {
		if p.RemoteBinary == "" {
			return DefaultRemoteBinary
		}
		return p.RemoteBinary
	}
	if p.LocalBinary == "" {
		return DefaultLocalBinary
	}
	return p.LocalBinary
}

var (
	shellSafe  = regexp.MustCompile(`^[A-Za-z0-9._:/@+=-]+$`)
	decimalCPU = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)
)

// IsShellSafe reports whether s can be placed unquoted in a POSIX shell
// command line without being split or expanded.
func IsShellSafe(s string) bool {
	return shellSafe.MatchString(s)
}

// ValidCPU reports whether s is a positive plain decimal such as "0.5" or "2".
// Exponents, hex floats, NaN and Inf are rejected.
func ValidCPU(s string) bool {
	if !decimalCPU.MatchString(s) {
		return false
	}
	cpu, err := strconv.ParseFloat(s, 64)
	return err == nil && cpu > 0
}

// Validate checks every invariant of the profile
func (p Profile) Validate() error {
	if !ValidCPU(p.CPU) {
		return fmt.Errorf("invalid cpu limit %q: must be a positive decimal", p.CPU)
	}

	if err := validateSize("memory", p.Memory); err != nil {
		return err
	}
	if err := validateSize("swap", p.Swap); err != nil {
		return err
	}

	if !IsShellSafe(p.Network) {
		return fmt.Errorf("invalid network mode %q", p.Network)
	}
	if p.PIDs < 1 {
		return fmt.Errorf("pid limit must be at least 1, got: %d", p.PIDs)
	}
	if !IsShellSafe(p.Image) {
		return fmt.Errorf("invalid image reference %q", p.Image)
	}
	if p.MaxRuntimeMS == 0 {
		return fmt.Errorf("max runtime must be positive, got: %d", p.MaxRuntimeMS)
	}

	if binary := p.RuntimeBinary(); !IsShellSafe(binary) {
		return fmt.Errorf("invalid runtime binary %q", binary)
	}

	return nil
}

func validateSize(name, value string) error {
	if !IsShellSafe(value) {
		return fmt.Errorf("invalid %s limit %q", name, value)
	}
	n, err := units.RAMInBytes(value)
	if err != nil {
		return fmt.Errorf("invalid %s limit %q: %w", name, value, err)
	}
	if n <= 0 {
		return fmt.Errorf("invalid %s limit %q: must be positive", name, value)
	}
	return nil
}
