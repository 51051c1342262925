package main

import (
	"context"
	"time"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/isdmx/runbot/config"
	"github.com/isdmx/runbot/logger"
	"github.com/isdmx/runbot/mcpserver"
	"github.com/isdmx/runbot/sandbox"
)

const pullTimeout = 10 * time.Minute

// transport is the part of the MCP server the lifecycle needs
type transport interface {
	ServeStdio() error
	ServeHTTP() error
}

// imagePuller is the part of sandbox.ImagePreparer the lifecycle needs
type imagePuller interface {
	Pull(ctx context.Context, profile sandbox.Profile) error
}

func main() {
	app := fx.New(
		// Provide dependencies
		fx.Provide(
			// Config
			config.New,
			config.NewProfile,

			// Logger with configuration
			logger.NewFromConfig,

			// Sandbox
			func(log *zap.Logger) *sandbox.ImagePreparer {
				return sandbox.NewImagePreparer(log)
			},
			sandbox.NewExecutor,

			// MCP Server
			mcpserver.New,
		),

		// The image pull hook is registered first so a failed pull aborts
		// startup before any transport accepts a request.
		fx.Invoke(
			func(lc fx.Lifecycle, log *zap.Logger, preparer *sandbox.ImagePreparer, profile sandbox.Profile) {
				registerImagePull(lc, log, preparer, profile)
			},
			func(lc fx.Lifecycle, sd fx.Shutdowner, log *zap.Logger, cfg *config.Config, server *mcpserver.MCPServer) {
				registerTransport(lc, sd, log, cfg.Server.Transport, server)
			},
		),

		// Pulling a cold image easily exceeds fx's default start timeout
		fx.StartTimeout(pullTimeout),

		// Use the application logger for fx logs
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
	)

	// Run exits with status 1 if any start hook fails
	app.Run()
}

// registerImagePull pulls the runner image when the application starts
func registerImagePull(lc fx.Lifecycle, log *zap.Logger, puller imagePuller, profile sandbox.Profile) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := puller.Pull(ctx, profile); err != nil {
				log.Error("error pulling image", zap.Error(err))
				return err
			}
			return nil
		},
	})
}

// registerTransport serves MCP on the configured transport once every
// earlier start hook has succeeded
func registerTransport(lc fx.Lifecycle, sd fx.Shutdowner, log *zap.Logger, kind string, server transport) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			serve := server.ServeStdio
			if kind == "http" {
				serve = server.ServeHTTP
			}

			go func() {
				if err := serve(); err != nil {
					log.Error("transport stopped", zap.String("transport", kind), zap.Error(err))
					_ = sd.Shutdown(fx.ExitCode(1))
					return
				}
				_ = sd.Shutdown()
			}()
			return nil
		},
	})
}
