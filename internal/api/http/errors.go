package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/datasprayio/dataspray/internal/infrastructure/tracing"
	"github.com/datasprayio/dataspray/internal/shared/fserr"
)

// statusFor maps a failure kind to its HTTP status.
func statusFor(kind fserr.Kind) int {
	switch kind {
	case fserr.InvalidURI:
		return http.StatusBadRequest
	case fserr.PermissionDenied:
		return http.StatusForbidden
	case fserr.NotFound:
		return http.StatusNotFound
	case fserr.AlreadyExists, fserr.NotEmpty:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

// respondError writes a classified failure.
func (h *Handlers) respondError(c *gin.Context, err error) {
	kind := fserr.KindOf(err)
	if kind == fserr.OperationFailed {
		_ = c.Error(err)
		tracing.Logger(c.Request.Context(), h.logger).Warn("Operation failed",
			zap.String("route", c.FullPath()),
			zap.Error(err),
		)
	}

	c.JSON(statusFor(kind), gin.H{
		"success": false,
		"error":   err.Error(),
		"kind":    kind.String(),
	})
}

// badRequest rejects malformed parameters.
func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error":   msg,
	})
}

func ok(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true})
}
