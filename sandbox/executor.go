package sandbox

import (
	"fmt"

	"go.uber.org/zap"
)

// ContainerExecutor implements Executor on top of a container runtime CLI
type ContainerExecutor struct {
	logger     *zap.Logger
	supervisor *Supervisor
	build      func(p Profile, payloadCmd string) (RuntimeCommand, error)
}

// ContainerExecutorOption defines a functional option for ContainerExecutor
type ContainerExecutorOption func(*ContainerExecutor)

// WithSupervisor sets the Supervisor for ContainerExecutor
func WithSupervisor(supervisor *Supervisor) ContainerExecutorOption {
	return func(e *ContainerExecutor) {
		e.supervisor = supervisor
	}
}

// NewContainerExecutor creates a new ContainerExecutor with default implementations and optional interfaces
func NewContainerExecutor(logger *zap.Logger, opts ...ContainerExecutorOption) *ContainerExecutor {
	executor := &ContainerExecutor{
		logger: logger,
		build:  BuildCommand,
	}

	for _, opt := range opts {
		opt(executor)
	}

	if executor.supervisor == nil {
		executor.supervisor = NewSupervisor(logger)
	}

	return executor
}

// Execute runs payload in a fresh container. Exactly one attempt is made.
func (e *ContainerExecutor) Execute(profile Profile, payload string) Outcome {
	cmd, err := e.build(profile, PayloadCommand([]byte(payload)))
	if err != nil {
		e.logger.Error("failed to build runtime command", zap.Error(err))
		return launchFailed(fmt.Errorf("failed to build runtime command: %w", err))
	}

	e.logger.Debug("starting sandboxed run",
		zap.String("runtime", cmd.Binary),
		zap.String("container", cmd.ContainerName),
		zap.String("image", profile.Image),
		zap.Int("payload_len", len(payload)),
		zap.Duration("limit", profile.Timeout()))

	outcome := e.supervisor.Run(cmd, profile.Timeout())

	fields := []zap.Field{
		zap.String("container", cmd.ContainerName),
		zap.Stringer("status", outcome.Status),
		zap.Duration("duration", outcome.Duration),
	}
	switch outcome.Status {
	case StatusCompleted:
		e.logger.Info("sandboxed run completed", append(fields,
			zap.Int("exit_code", outcome.ExitCode),
			zap.Int("stdout_len", len(outcome.Stdout)),
			zap.Int("stderr_len", len(outcome.Stderr)))...)
	case StatusTimedOut:
		e.logger.Warn("sandboxed run timed out", fields...)
	case StatusLaunchFailed:
		e.logger.Error("sandboxed run failed to launch", append(fields, zap.Error(outcome.Err))...)
	}

	return outcome
}
