// Package server assembles the workspace server.
//
// Server Lifecycle:
//  1. Load configuration from environment/flags
//  2. Validate the working directory
//  3. Build the filesystem service and command executor
//  4. Setup middleware (recovery, tracing, metrics, CORS, per-IP or global rate limiting)
//  5. Register HTTP, websocket and metrics routes
//  6. Start HTTP server
//  7. Graceful shutdown on signal
//
// Example Usage:
//
//	cfg, err := config.Load()
//	srv, err := server.NewServer(cfg, logger)
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
