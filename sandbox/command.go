package sandbox

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

const containerNamePrefix = "runbot-"

// RuntimeCommand is a fully assembled container-runtime invocation. It lives
// for a single run and is never reused.
type RuntimeCommand struct {
	Binary        string
	Args          []string // runtime arguments up to and including the image
	Payload       string   // in-container command, already shell-safe
	ContainerName string
}

// Line renders the command as the single string handed to "sh -c".
//
// The runner image's entrypoint expects the in-container command as one
// opaque string, which an argv vector cannot express without the runtime
// re-splitting it. The shell therefore does the splitting, which is only
// sound because every token was checked by IsShellSafe.
func (c RuntimeCommand) Line() string {
	parts := make([]string, 0, len(c.Args)+2)
	parts = append(parts, c.Binary)
	parts = append(parts, c.Args...)
	if c.Payload != "" {
		parts = append(parts, c.Payload)
	}
	return strings.Join(parts, " ")
}

// BuildFlags returns the hardening and resource flags for p, in a fixed order.
// Swap is intentionally absent: combined with the memory limit it makes the
// OCI runtime reject the container under common cgroup setups.
func BuildFlags(p Profile) []string {
	return []string{
		"--cap-drop=ALL",
		"--security-opt=no-new-privileges",
		"--cpus=" + p.CPU,
		"--memory=" + p.Memory,
		"--network=" + p.Network,
		"--pids-limit=" + strconv.FormatUint(p.PIDs, 10),
	}
}

// BuildCommand assembles the runtime invocation for payloadCmd under p. The
// container gets a unique name so it can be killed if the run times out.
func BuildCommand(p Profile, payloadCmd string) (RuntimeCommand, error) {
	return buildCommand(p, payloadCmd, containerNamePrefix+uuid.NewString())
}

func buildCommand(p Profile, payloadCmd, name string) (RuntimeCommand, error) {
	if err := p.Validate(); err != nil {
		return RuntimeCommand{}, fmt.Errorf("invalid profile: %w", err)
	}
	if !IsShellSafe(name) {
		return RuntimeCommand{}, fmt.Errorf("invalid container name %q", name)
	}
	for _, token := range strings.Fields(payloadCmd) {
		if !IsShellSafe(token) {
			return RuntimeCommand{}, fmt.Errorf("payload command is not shell-safe")
		}
	}
	if strings.Join(strings.Fields(payloadCmd), " ") != payloadCmd {
		return RuntimeCommand{}, fmt.Errorf("payload command has irregular whitespace")
	}

	args := []string{"run", "--rm", "--name", name}
	args = append(args, BuildFlags(p)...)
	args = append(args, p.Image)

	return RuntimeCommand{
		Binary:        p.RuntimeBinary(),
		Args:          args,
		Payload:       payloadCmd,
		ContainerName: name,
	}, nil
}
