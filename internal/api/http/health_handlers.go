package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Health reports whether the working directory is usable
func (h *Handlers) Health(c *gin.Context) {
	resp := gin.H{
		"status":           "healthy",
		"workingDirectory": h.root.Dir(),
		"executions":       len(h.executor.Active()),
	}
	if h.metrics != nil {
		resp["metrics"] = h.metrics.Snapshot()
	}

	if err := h.root.Check(); err != nil {
		resp["status"] = "unhealthy"
		resp["error"] = err.Error()
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}
