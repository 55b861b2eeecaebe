// Package filesystem implements the remote workspace file operations.
//
// The package is organized by concern:
//   - basic: file content (read as a chunk stream, write/append)
//   - directory: directory operations (create, list, delete)
//   - operations: file manipulation (copy, rename)
//   - metadata: stat records with platform-specific timestamps
//   - search: recursive glob matching
//
// All operations:
//   - Take resource URIs and resolve them beneath the working directory
//   - Classify OS failures through fserr at the call site
//   - Never replace or remove the working directory itself
//
// Example Usage:
//
//	svc := filesystem.NewService(resolver, filesystem.WithLogger(logger))
//	entries, err := svc.ReadDirectory(ctx, "io.dataspray.remote:///src")
package filesystem
