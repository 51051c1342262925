package sandbox

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// ImagePreparer pulls the runner image ahead of the first execution
type ImagePreparer struct {
	logger    *zap.Logger
	cmdRunner CommandRunner
}

// ImagePreparerOption defines a functional option for ImagePreparer
type ImagePreparerOption func(*ImagePreparer)

// WithImageCommandRunner sets the CommandRunner for ImagePreparer
func WithImageCommandRunner(cmdRunner CommandRunner) ImagePreparerOption {
	return func(p *ImagePreparer) {
		p.cmdRunner = cmdRunner
	}
}

// NewImagePreparer creates a new ImagePreparer
func NewImagePreparer(logger *zap.Logger, opts ...ImagePreparerOption) *ImagePreparer {
	p := &ImagePreparer{
		logger:    logger,
		cmdRunner: &RealCommandRunner{},
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Pull blocks until the runtime has pulled profile.Image. Anything other
// than a clean exit 0, including a process killed by a signal, is an error.
func (p *ImagePreparer) Pull(ctx context.Context, profile Profile) error {
	if err := profile.Validate(); err != nil {
		return fmt.Errorf("invalid profile: %w", err)
	}

	binary := profile.RuntimeBinary()
	p.logger.Info("pulling container image",
		zap.String("runtime", binary),
		zap.String("image", profile.Image))

	_, stderr, exitCode, err := p.cmdRunner.RunCommand(ctx, []string{binary, "pull", profile.Image})
	if err != nil {
		return fmt.Errorf("failed to run %s pull: %w", binary, err)
	}
	if exitCode != 0 {
		return fmt.Errorf("could not pull container image %s, got exit code %d: %s",
			profile.Image, exitCode, strings.TrimSpace(stderr))
	}

	p.logger.Info("container image ready", zap.String("image", profile.Image))
	return nil
}
