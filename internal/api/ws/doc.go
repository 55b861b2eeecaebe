// Package ws streams command executions over WebSocket.
//
// Message Types (Client → Server):
//   - execute: run {"cmd": "..."} in the working directory
//   - ping: keep-alive ping
//
// Message Types (Server → Client):
//   - system: connection accepted, carries connId
//   - output: a chunk of combined stdout/stderr
//   - status: the final "status <code> in <elapsed>" line
//   - pong: reply to ping
//   - error: the request could not be served
//
// A write failure ends the connection and kills the running command.
// Browser origins are checked against the same list the CORS layer allows.
//
// Example Usage:
//
//	handler := ws.NewHandler(executor, metrics, logger,
//	    ws.WithAllowedOrigins([]string{"https://app.example.com"}))
//	router.GET("/terminal/ws", handler.HandleConnection)
package ws
