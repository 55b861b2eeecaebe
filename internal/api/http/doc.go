// Package http provides the HTTP handlers and routing for the workspace API.
//
// Every handler validates its query parameters, calls into the filesystem or
// terminal provider, and maps failure kinds onto status codes:
//
//	invalid_uri        400
//	permission_denied  403
//	not_found          404
//	already_exists     409
//	not_empty          409
//	operation_failed   400
//
// Failures use the body {"success": false, "error": "...", "kind": "..."}.
//
// Endpoints:
//   - Health: /health
//   - Filesystem: /filesystem/{copy,createDirectory,delete,glob,
//     readDirectory,readFile,rename,stat,writeFile}
//   - Terminal: /terminal/execute, /terminal/executions
//
// readFile and streaming execute responses are written chunk by chunk as the
// provider produces them; a client disconnect cancels the underlying stream.
//
// Example Usage:
//
//	handlers := http.NewHandlers(root, fsService, executor, metrics, logger)
//	handlers.RegisterRoutes(router)
package http
