// Package mcpserver provides the Model Context Protocol (MCP) server implementation.
//
// The mcpserver package exposes the sandbox as an MCP tool. It uses the
// mark3labs/mcp-go library to handle the protocol details and provides the
// run_code tool, which runs a snippet through the sandbox executor and
// formats the captured output for display.
package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/isdmx/runbot/config"
	"github.com/isdmx/runbot/sandbox"
)

// ToolRunCode is the name of the code execution tool
const ToolRunCode = "run_code"

// MCPServer represents the MCP server
type MCPServer struct {
	config      *config.Config
	logger      *zap.Logger
	sandboxExec sandbox.Executor
	profile     sandbox.Profile
	mcpServer   *server.MCPServer
}

// New creates a new MCPServer
func New(cfg *config.Config, logger *zap.Logger, sandboxExec sandbox.Executor, profile sandbox.Profile) (*MCPServer, error) {
	s := &MCPServer{
		config:      cfg,
		logger:      logger,
		sandboxExec: sandboxExec,
		profile:     profile,
	}

	// Log configuration parameters on startup
	logger.Info("configuration loaded",
		zap.String("server.transport", cfg.Server.Transport),
		zap.Int("server.http_port", cfg.Server.HTTPPort),
		zap.String("sandbox.image", profile.Image),
		zap.String("sandbox.runtime", profile.RuntimeBinary()),
		zap.String("sandbox.cpu", profile.CPU),
		zap.String("sandbox.memory", profile.Memory),
		zap.String("sandbox.swap", profile.Swap),
		zap.String("sandbox.network", profile.Network),
		zap.Uint64("sandbox.pids", profile.PIDs),
		zap.Uint64("sandbox.max_runtime_ms", profile.MaxRuntimeMS),
		zap.Bool("sandbox.in_container", profile.InContainer),
	)

	s.mcpServer = server.NewMCPServer("runbot", "1.0.0", server.WithToolCapabilities(false))
	s.registerRunCodeTool()

	return s, nil
}

// registerRunCodeTool registers the run_code tool
func (s *MCPServer) registerRunCodeTool() {
	tool := mcp.NewTool(ToolRunCode,
		mcp.WithDescription("Compile and run a code snippet in an isolated container and return its output"),
		mcp.WithString("code",
			mcp.Required(),
			mcp.Description("Source code to run"),
		),
	)

	s.mcpServer.AddTool(tool, s.handleRunCode)
}

// handleRunCode handles the run_code tool. Sandbox failures are reported as
// tool results, never as protocol errors.
func (s *MCPServer) handleRunCode(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	code, err := request.RequireString("code")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("code parameter is required: %v", err)), nil
	}

	s.logger.Info("code execution requested", zap.Int("code_len", len(code)))

	outcome := s.sandboxExec.Execute(s.profile, code)

	if outcome.Status == sandbox.StatusLaunchFailed {
		s.logger.Error("sandbox execution failed", zap.Error(outcome.Err))
		return mcp.NewToolResultError(fmt.Sprintf("Execution failed: %v", outcome.Err)), nil
	}

	s.logger.Info("code execution finished",
		zap.Stringer("status", outcome.Status),
		zap.Int("exit_code", outcome.ExitCode),
		zap.Int("stdout_len", len(outcome.Stdout)),
		zap.Int("stderr_len", len(outcome.Stderr)))

	return mcp.NewToolResultText(formatReply(code, outcome)), nil
}

// ServeStdio starts the server on stdio
func (s *MCPServer) ServeStdio() error {
	s.logger.Info("starting MCP server on stdio")
	return server.ServeStdio(s.mcpServer)
}

// ServeHTTP starts the server on HTTP
func (s *MCPServer) ServeHTTP() error {
	port := s.config.Server.HTTPPort
	s.logger.Info("starting MCP server on HTTP", zap.Int("port", port))

	httpServer := server.NewStreamableHTTPServer(s.mcpServer)
	return httpServer.Start(fmt.Sprintf(":%d", port))
}

// GetMCPServer returns the underlying MCP server for fx
func (s *MCPServer) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}
