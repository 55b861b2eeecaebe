// Package main is the entry point for the workspace server.
//
// The server exposes one working directory over HTTP: filesystem operations
// on io.dataspray.remote:/// URIs and shell command execution, streamed or
// collected.
//
// Configuration:
//   - Environment variables (12-factor)
//   - .env file (-env-file), never overriding the environment
//   - CLI flags (override env vars)
//   - Defaults for development
//
// Usage:
//
//	# Serve /srv/workspace on port 8000
//	WORKING_DIR=/srv/workspace ./server
//
//	# Flags win over the environment
//	./server -port 9000 -dir ./project
//
//	# Development mode (colored logs, debug level)
//	./server -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
