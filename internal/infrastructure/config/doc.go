// Package config provides 12-factor configuration management for the
// workspace server.
//
// Configuration is loaded from environment variables with sensible defaults.
// An optional dotenv file fills in variables the process environment does not
// set. CLI flags can override environment variables for development
// flexibility.
//
// Configuration Sections:
//   - Server: HTTP server settings (port, host, shutdown, compression, origins)
//   - Workspace: working directory and read chunk size
//   - Exec: shell, timeout, join wait, pty mode
//   - Logging: Log level and output format
//   - RateLimit: Per-IP or global rate limiting configuration
//   - Metrics: prometheus exposition
//
// Example Usage:
//
//	cfg, err := config.LoadWithEnvFile(".env")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Serving %s on %s\n", cfg.Workspace.Dir, cfg.Addr())
//
// Environment Variables:
//   - PORT, HOST, SHUTDOWN_TIMEOUT, COMPRESSION_ENABLED, CORS_ALLOW_ORIGINS
//   - WORKING_DIR, READ_CHUNK_SIZE
//   - EXEC_SHELL, EXEC_TIMEOUT, EXEC_JOIN_WAIT, EXEC_PTY
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED, RATE_LIMIT_GLOBAL
//   - METRICS_ENABLED
package config
