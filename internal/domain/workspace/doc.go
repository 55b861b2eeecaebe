// Package workspace holds the working directory every resource URI resolves
// beneath, and converts between resource URIs and host paths.
//
// URIs have the form:
//
//	io.dataspray.remote:///<path relative to the working directory>
//
// Resolution never leaves the working directory: ".." segments that would
// climb above it are clamped at the root.
package workspace
