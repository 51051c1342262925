package sandbox

import (
	"fmt"

	"go.uber.org/zap"
)

// NewExecutor creates the sandbox executor after checking that profile is usable
func NewExecutor(logger *zap.Logger, profile Profile) (Executor, error) {
	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("invalid sandbox profile: %w", err)
	}

	logger.Info("sandbox executor ready",
		zap.String("runtime", profile.RuntimeBinary()),
		zap.String("image", profile.Image),
		zap.String("cpu", profile.CPU),
		zap.String("memory", profile.Memory),
		zap.String("network", profile.Network),
		zap.Uint64("pids", profile.PIDs),
		zap.Uint64("max_runtime_ms", profile.MaxRuntimeMS))

	return NewContainerExecutor(logger), nil
}
