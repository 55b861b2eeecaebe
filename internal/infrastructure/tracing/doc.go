/*
Package tracing tags every HTTP request with a trace and logs it as a span.

# Overview

Each request gets a span whose trace ID is continued from the caller's
X-Trace-ID header when it carries a valid ID, or freshly generated otherwise.
Both IDs are echoed back in response headers so clients can quote them when
reporting problems. Finished spans are logged by a background collector.

# Usage

	tracer := tracing.New("dataspray", logger)
	defer tracer.Close()

	router.Use(tracing.HTTPMiddleware(tracer))

	// Inside a handler
	log := tracing.Logger(c.Request.Context(), logger)
	log.Warn("something odd", zap.String("uri", uri))

# Trace Format

- X-Trace-ID: identifier for the entire request flow
- X-Span-ID: identifier for the current operation

# Performance

Spans are buffered (1000) and logged asynchronously; a full buffer drops
spans rather than blocking requests.
*/
package tracing
