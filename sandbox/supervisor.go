package sandbox

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

const (
	shellBinary = "sh"

	// waitDelay bounds how long Wait keeps reading pipes after the child is gone
	waitDelay = 2 * time.Second

	// stopTimeout bounds the best-effort container kill after a timeout
	stopTimeout = 10 * time.Second
)

// Supervisor spawns one RuntimeCommand and races it against a deadline
type Supervisor struct {
	logger    *zap.Logger
	cmdRunner CommandRunner
	lookPath  func(file string) (string, error)
}

// SupervisorOption defines a functional option for Supervisor
type SupervisorOption func(*Supervisor)

// WithSupervisorCommandRunner sets the CommandRunner used to kill timed-out containers
func WithSupervisorCommandRunner(cmdRunner CommandRunner) SupervisorOption {
	return func(s *Supervisor) {
		s.cmdRunner = cmdRunner
	}
}

// NewSupervisor creates a Supervisor with default implementations
func NewSupervisor(logger *zap.Logger, opts ...SupervisorOption) *Supervisor {
	s := &Supervisor{
		logger:    logger,
		cmdRunner: &RealCommandRunner{},
		lookPath:  exec.LookPath,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Run executes cmd through the shell and waits at most limit for it to exit.
//
// Exactly one outcome is produced. If the deadline kill fired the run is
// TimedOut and all output is dropped; any exit observed without that kill is
// Completed, whatever the exit code.
func (s *Supervisor) Run(cmd RuntimeCommand, limit time.Duration) Outcome {
	if limit <= 0 {
		return launchFailed(fmt.Errorf("time limit must be positive, got: %s", limit))
	}

	shell, err := s.lookPath(shellBinary)
	if err != nil {
		return launchFailed(fmt.Errorf("shell unavailable: %w", err))
	}
	// The shell would report a missing runtime as exit 127, which is
	// indistinguishable from the payload exiting 127.
	if _, err := s.lookPath(cmd.Binary); err != nil {
		return launchFailed(fmt.Errorf("container runtime %q unavailable: %w", cmd.Binary, err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), limit)
	defer cancel()

	var expired atomic.Bool

	proc := exec.CommandContext(ctx, shell, "-c", cmd.Line()) //nolint:gosec // every token is shell-safe
	proc.SysProcAttr = processGroupAttr()
	proc.Cancel = deadlineKill(&expired, func() error { return killProcessGroup(proc.Process) })
	proc.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	proc.Stdout = &stdout
	proc.Stderr = &stderr

	start := time.Now()
	if err := proc.Start(); err != nil {
		return launchFailed(fmt.Errorf("failed to start container runtime: %w", err))
	}

	waitErr := proc.Wait()
	elapsed := time.Since(start)

	if expired.Load() {
		s.stopContainer(cmd)
		return Outcome{Status: StatusTimedOut, Duration: elapsed}
	}

	if waitErr != nil && !errors.Is(waitErr, exec.ErrWaitDelay) {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return launchFailed(fmt.Errorf("failed to wait for container runtime: %w", waitErr))
		}
	}

	return Outcome{
		Status:   StatusCompleted,
		ExitCode: proc.ProcessState.ExitCode(),
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		Duration: elapsed,
	}
}

// stopContainer kills the container a timed-out client was driving. Killing
// the client alone leaves the container running under the runtime daemon.
func (s *Supervisor) stopContainer(cmd RuntimeCommand) {
	if cmd.ContainerName == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	_, stderr, exitCode, err := s.cmdRunner.RunCommand(ctx, []string{cmd.Binary, "kill", cmd.ContainerName})
	if err != nil || exitCode != 0 {
		// The runtime may never have created the container
		s.logger.Warn("failed to kill container after timeout",
			zap.String("container", cmd.ContainerName),
			zap.Int("exit_code", exitCode),
			zap.String("stderr", stderr),
			zap.Error(err))
	}
}

// deadlineKill runs kill when the deadline fires and marks the run expired
// unless the process group was already gone, so a child that exited just
// before the deadline still counts as completed.
func deadlineKill(expired *atomic.Bool, kill func() error) func() error {
	return func() error {
		err := kill()
		if !errors.Is(err, os.ErrProcessDone) {
			expired.Store(true)
		}
		return err
	}
}
