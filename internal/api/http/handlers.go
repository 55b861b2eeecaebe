package http

import (
	"github.com/gin-gonic/gin"

	"github.com/datasprayio/dataspray/internal/domain/workspace"
	"github.com/datasprayio/dataspray/internal/infrastructure/logging"
	"github.com/datasprayio/dataspray/internal/infrastructure/monitoring"
	"github.com/datasprayio/dataspray/internal/providers/filesystem"
	"github.com/datasprayio/dataspray/internal/providers/terminal"
)

// Handlers serves the filesystem and terminal routes.
type Handlers struct {
	root     *workspace.Root
	fs       *filesystem.Service
	executor *terminal.Executor
	metrics  *monitoring.Metrics
	logger   *logging.Logger
}

// NewHandlers creates a new handler set. metrics may be nil.
func NewHandlers(
	root *workspace.Root,
	fs *filesystem.Service,
	executor *terminal.Executor,
	metrics *monitoring.Metrics,
	logger *logging.Logger,
) *Handlers {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handlers{
		root:     root,
		fs:       fs,
		executor: executor,
		metrics:  metrics,
		logger:   logger,
	}
}

// RegisterRoutes mounts every route on r.
func (h *Handlers) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.Health)

	fsGroup := r.Group("/filesystem")
	{
		fsGroup.PATCH("/copy", h.Copy)
		fsGroup.PUT("/createDirectory", h.CreateDirectory)
		fsGroup.DELETE("/delete", h.Delete)
		fsGroup.GET("/glob", h.Glob)
		fsGroup.GET("/readDirectory", h.ReadDirectory)
		fsGroup.GET("/readFile", h.ReadFile)
		fsGroup.PATCH("/rename", h.Rename)
		fsGroup.GET("/stat", h.Stat)
		fsGroup.PUT("/writeFile", h.WriteFile)
	}

	termGroup := r.Group("/terminal")
	{
		termGroup.POST("/execute", h.Execute)
		termGroup.GET("/executions", h.ListExecutions)
	}
}
