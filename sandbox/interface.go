// Package sandbox provides secure code execution capabilities.
//
// The sandbox package implements the execution engine for running untrusted
// snippets inside a container runtime. It turns a Profile into a runtime
// command line, transports the payload into the container and supervises the
// child process under a wall-clock limit.
package sandbox

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// Status classifies how a sandboxed run ended
type Status int

const (
	// StatusCompleted means the child exited before the deadline, with any exit code
	StatusCompleted Status = iota
	// StatusTimedOut means the deadline fired first and the child was killed
	StatusTimedOut
	// StatusLaunchFailed means the child could never be started
	StatusLaunchFailed
)

func (s Status) String() string {
	switch s {
	case StatusCompleted:
		return "completed"
	case StatusTimedOut:
		return "timed_out"
	case StatusLaunchFailed:
		return "launch_failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Outcome is the result of exactly one sandboxed run.
//
// Stdout and Stderr are only populated for StatusCompleted and hold the raw
// bytes written by the child; they are not guaranteed to be valid UTF-8.
// Err is only populated for StatusLaunchFailed.
type Outcome struct {
	Status   Status
	ExitCode int
	Stdout   []byte
	Stderr   []byte
	Err      error
	Duration time.Duration
}

func launchFailed(err error) Outcome {
	return Outcome{Status: StatusLaunchFailed, Err: err}
}

// Executor runs an untrusted payload in a sandbox described by profile.
// It never returns an error: every failure is folded into the Outcome.
type Executor interface {
	Execute(profile Profile, payload string) Outcome
}

// CommandRunner defines an interface for executing short-lived system commands
type CommandRunner interface {
	RunCommand(ctx context.Context, args []string) (stdout, stderr string, exitCode int, err error)
}

// RealCommandRunner implements CommandRunner using actual exec commands
type RealCommandRunner struct{}

// RunCommand executes the given command with arguments. A process killed by a
// signal reports exit code -1.
func (RealCommandRunner) RunCommand(ctx context.Context, args []string) (stdout, stderr string, exitCode int, err error) {
	if len(args) < 1 {
		return "", "", 0, fmt.Errorf("no command provided")
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...) //nolint:gosec // args are built from a validated profile

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	err = cmd.Run()

	exitCode = 0
	if err != nil {
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			exitCode = exitError.ExitCode()
		} else {
			return "", "", 0, err
		}
	}

	return stdoutBuf.String(), stderrBuf.String(), exitCode, nil
}
