// Package mcpserver provides the Model Context Protocol (MCP) server implementation.
//
// The mcpserver package is the command layer in front of the sandbox. It
// registers the run_code tool with mark3labs/mcp-go, hands the submitted
// snippet to the sandbox executor and turns the Outcome into a readable
// reply: output blocks trimmed for display, or a fixed message when the
// program produced nothing or took too long.
//
// The server supports both stdio and HTTP transports as configured by the
// application configuration.
//
// Usage:
//
//	server, err := mcpserver.New(config, logger, sandboxExecutor, profile)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = server.ServeStdio() // or server.ServeHTTP()
package mcpserver
