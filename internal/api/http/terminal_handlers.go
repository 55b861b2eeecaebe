package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/datasprayio/dataspray/internal/infrastructure/tracing"
	"github.com/datasprayio/dataspray/internal/providers/terminal"
)

// Execute runs a shell command in the working directory. By default the
// combined output is streamed line by line followed by a status line;
// stream=false returns one JSON result instead.
func (h *Handlers) Execute(c *gin.Context) {
	var q struct {
		Stream *bool `form:"stream"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, "Invalid request: "+err.Error())
		return
	}

	cmd, err := readCommand(c)
	if err != nil {
		badRequest(c, "Invalid body: "+err.Error())
		return
	}

	if q.Stream != nil && !*q.Stream {
		h.executeSimple(c, cmd)
		return
	}
	h.executeStream(c, cmd)
}

func (h *Handlers) executeSimple(c *gin.Context, cmd string) {
	res, err := h.executor.Execute(c.Request.Context(), cmd)
	if err != nil {
		h.respondExecError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"output":    string(res.Output),
		"exitCode":  res.ExitCode,
		"elapsedMs": res.Elapsed.Milliseconds(),
		"timedOut":  res.TimedOut,
	})
}

func (h *Handlers) executeStream(c *gin.Context, cmd string) {
	s, err := h.executor.Stream(c.Request.Context(), cmd)
	if err != nil {
		h.respondExecError(c, err)
		return
	}
	defer s.Close()

	c.Header("Content-Type", "application/octet-stream")
	c.Header("X-Content-Type-Options", "nosniff")
	c.Status(http.StatusOK)

	if err := writeChunks(c, s.Chunks()); err != nil {
		tracing.Logger(c.Request.Context(), h.logger).Info("Execution client went away",
			zap.Error(err),
		)
	}
}

func (h *Handlers) respondExecError(c *gin.Context, err error) {
	if errors.Is(err, terminal.ErrEmptyCommand) {
		badRequest(c, err.Error())
		return
	}
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"error":   err.Error(),
	})
}

// ListExecutions reports in-flight executions
func (h *Handlers) ListExecutions(c *gin.Context) {
	active := h.executor.Active()
	if active == nil {
		active = []terminal.ExecutionInfo{}
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"executions": active,
	})
}
