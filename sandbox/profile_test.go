package sandbox

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProfile() Profile {
	return Profile{
		CPU:          "0.5",
		Memory:       "100m",
		Swap:         "5m",
		Network:      "none",
		PIDs:         64,
		Image:        "ghcr.io/theconner/rustbot-runner:latest",
		MaxRuntimeMS: 5000,
		LocalBinary:  DefaultLocalBinary,
		RemoteBinary: DefaultRemoteBinary,
	}
}

func TestProfileRuntimeBinary(t *testing.T) {
	t.Run("LocalWhenNotInContainer", func(t *testing.T) {
		p := testProfile()
		p.InContainer = false
		assert.Equal(t, "podman", p.RuntimeBinary())
	})

	t.Run("RemoteWhenInContainer", func(t *testing.T) {
		p := testProfile()
		p.InContainer = true
		assert.Equal(t, "podman-remote", p.RuntimeBinary())
	})

	t.Run("DefaultsWhenUnset", func(t *testing.T) {
		p := Profile{}
		assert.Equal(t, DefaultLocalBinary, p.RuntimeBinary())
		p.InContainer = true
		assert.Equal(t, DefaultRemoteBinary, p.RuntimeBinary())
	})

	t.Run("CustomBinaries", func(t *testing.T) {
		p := testProfile()
		p.LocalBinary = "docker"
		p.RemoteBinary = "docker-remote"
		assert.Equal(t, "docker", p.RuntimeBinary())
		p.InContainer = true
		assert.Equal(t, "docker-remote", p.RuntimeBinary())
	})
}

func TestProfileTimeout(t *testing.T) {
	p := testProfile()
	assert.Equal(t, 5*time.Second, p.Timeout())
}

func TestProfileValidate(t *testing.T) {
	require.NoError(t, testProfile().Validate())

	tests := []struct {
		name    string
		mutate  func(p *Profile)
		message string
	}{
		{"EmptyCPU", func(p *Profile) { p.CPU = "" }, "invalid cpu limit"},
		{"NegativeCPU", func(p *Profile) { p.CPU = "-1" }, "invalid cpu limit"},
		{"NonNumericCPU", func(p *Profile) { p.CPU = "half" }, "invalid cpu limit"},
		{"ZeroCPU", func(p *Profile) { p.CPU = "0.0" }, "invalid cpu limit"},
		{"NaNCPU", func(p *Profile) { p.CPU = "NaN" }, "invalid cpu limit"},
		{"InfCPU", func(p *Profile) { p.CPU = "Inf" }, "invalid cpu limit"},
		{"SignedInfCPU", func(p *Profile) { p.CPU = "+Inf" }, "invalid cpu limit"},
		{"HexFloatCPU", func(p *Profile) { p.CPU = "0x1p-2" }, "invalid cpu limit"},
		{"ExponentCPU", func(p *Profile) { p.CPU = "1e400" }, "invalid cpu limit"},
		{"TrailingDotCPU", func(p *Profile) { p.CPU = "1." }, "invalid cpu limit"},
		{"EmptyMemory", func(p *Profile) { p.Memory = "" }, "invalid memory limit"},
		{"BadMemory", func(p *Profile) { p.Memory = "lots" }, "invalid memory limit"},
		{"ZeroMemory", func(p *Profile) { p.Memory = "0" }, "invalid memory limit"},
		{"BadSwap", func(p *Profile) { p.Swap = "5 m" }, "invalid swap limit"},
		{"EmptyNetwork", func(p *Profile) { p.Network = "" }, "invalid network mode"},
		{"InjectedNetwork", func(p *Profile) { p.Network = "none;id" }, "invalid network mode"},
		{"ZeroPIDs", func(p *Profile) { p.PIDs = 0 }, "pid limit must be at least 1"},
		{"EmptyImage", func(p *Profile) { p.Image = "" }, "invalid image reference"},
		{"InjectedImage", func(p *Profile) { p.Image = "alpine $(id)" }, "invalid image reference"},
		{"ZeroRuntime", func(p *Profile) { p.MaxRuntimeMS = 0 }, "max runtime must be positive"},
		{"InjectedBinary", func(p *Profile) { p.LocalBinary = "podman&&id" }, "invalid runtime binary"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testProfile()
			tt.mutate(&p)
			err := p.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestValidCPU(t *testing.T) {
	for _, s := range []string{"0.5", "1", "2.25", "16", "0.001"} {
		assert.True(t, ValidCPU(s), s)
	}
	for _, s := range []string{"", "0", "0.0", "-1", ".5", "1.", "NaN", "nan", "Inf", "+Inf", "-Inf", "0x1p-2", "1e3", "1_0", " 1"} {
		assert.False(t, ValidCPU(s), s)
	}
}

func TestIsShellSafe(t *testing.T) {
	safe := []string{"podman", "ghcr.io/a/b:latest", "aGk=", "a+b/c==", "--cpus=0.5", "img@sha256:abc"}
	for _, s := range safe {
		assert.True(t, IsShellSafe(s), s)
	}

	unsafe := []string{"", "a b", "a;b", "$x", "`id`", "'q'", "\"q\"", "a\nb", "a|b", "a&b", "(x)", "a>b", "~", "*"}
	for _, s := range unsafe {
		assert.False(t, IsShellSafe(s), s)
	}
}
