// Package middleware provides HTTP middleware for the workspace server.
//
// Middleware stack includes:
//   - CORS: Cross-origin resource sharing for browser clients
//   - RateLimit: Per-IP token bucket rate limiting
//
// CORS Configuration:
//   - AllowOrigins: Permitted origin domains
//   - AllowMethods: HTTP methods, including PATCH for copy and rename
//   - AllowHeaders / ExposeHeaders: request headers and trace headers
//   - MaxAge: Preflight cache duration
//
// Rate Limiting:
//   - Per-IP tracking; idle clients are swept after IdleTTL
//   - Token bucket algorithm
//   - Configurable RPS and burst capacity
//   - Global rate limiting option
//
// Example Usage:
//
//	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
//	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
package middleware
