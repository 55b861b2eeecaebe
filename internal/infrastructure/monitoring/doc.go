/*
Package monitoring provides Prometheus metrics for the workspace server.

# Overview

Each Metrics value owns a private registry, which the server exposes at
/metrics. The registry carries HTTP request metrics, per-operation filesystem
outcomes, command execution durations, WebSocket activity, and the standard
Go and process collectors.

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Metrics satisfies the filesystem and terminal recorder interfaces
	svc := filesystem.NewService(resolver, filesystem.WithRecorder(metrics))
*/
package monitoring
