// Package main is the entry point for the runbot MCP server.
//
// runbot accepts source snippets over the Model Context Protocol, runs each
// one in a throwaway podman container with hardened, resource-limited
// settings and returns the captured output. The configured runner image is
// pulled at startup; if that pull fails the process exits non-zero before
// serving a single request.
//
// The application uses Uber's fx framework for dependency injection and lifecycle
// management, with zap for structured logging and viper for configuration.
package main
