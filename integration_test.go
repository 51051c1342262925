package integration

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/isdmx/runbot/config"
	"github.com/isdmx/runbot/logger"
	"github.com/isdmx/runbot/mcpserver"
	"github.com/isdmx/runbot/sandbox"
)

// installFakeRuntime points CONTAINER_RUNTIME at a script that answers
// "pull" with exit 0 and "run" by echoing its last argument.
func installFakeRuntime(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fake-podman")
	script := `#!/bin/sh
case "$1" in
  pull) exit 0 ;;
  kill) exit 0 ;;
esac
for a in "$@"; do last=$a; done
printf 'payload=%s\n' "$last"
`
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755)) //nolint:gosec // test helper needs an executable
	t.Setenv("CONTAINER_RUNTIME", path)
	return path
}

// TestIntegrationConfigLoggerSandbox tests the integration between config, logger, and sandbox packages
func TestIntegrationConfigLoggerSandbox(t *testing.T) {
	t.Run("ConfigAndLoggerIntegration", func(t *testing.T) {
		t.Setenv("LOG_MODE", "development")
		t.Setenv("LOG_LEVEL", "debug")
		t.Setenv("MAX_PIDS", "not-a-number")

		cfg, err := config.Load(viper.New())
		require.NoError(t, err)
		assert.Contains(t, cfg.Fallbacks, config.KeySandboxPIDs)

		testLogger, err := logger.NewFromConfig(cfg)
		require.NoError(t, err)
		testLogger.Info("Integration test started")
		_ = testLogger.Sync()
	})

	t.Run("ConfigSandboxFactoryIntegration", func(t *testing.T) {
		cfg, err := config.Load(viper.New())
		require.NoError(t, err)

		executor, err := sandbox.NewExecutor(zaptest.NewLogger(t), config.NewProfile(cfg))
		require.NoError(t, err)
		assert.NotNil(t, executor)
	})
}

func TestIntegrationRunCode(t *testing.T) {
	installFakeRuntime(t)

	cfg, err := config.Load(viper.New())
	require.NoError(t, err)
	profile := cfg.Profile()
	testLogger := zaptest.NewLogger(t)

	require.NoError(t, sandbox.NewImagePreparer(testLogger).Pull(context.Background(), profile))

	executor, err := sandbox.NewExecutor(testLogger, profile)
	require.NoError(t, err)

	server, err := mcpserver.New(cfg, testLogger, executor, profile)
	require.NoError(t, err)

	code := "fn main() {\n    println!(\"it's $HOME\");\n}"
	request := map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "tools/call",
		"params": map[string]any{
			"name":      mcpserver.ToolRunCode,
			"arguments": map[string]any{"code": code},
		},
	}
	raw, err := json.Marshal(request)
	require.NoError(t, err)

	response := server.GetMCPServer().HandleMessage(context.Background(), raw)
	encoded, err := json.Marshal(response)
	require.NoError(t, err)

	assert.Contains(t, string(encoded), "payload="+sandbox.EncodePayload([]byte(code)))
	assert.NotContains(t, string(encoded), `"isError":true`)
}
