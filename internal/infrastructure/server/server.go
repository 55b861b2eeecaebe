package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzhttp"
	"go.uber.org/zap"

	apihttp "github.com/datasprayio/dataspray/internal/api/http"
	"github.com/datasprayio/dataspray/internal/api/middleware"
	"github.com/datasprayio/dataspray/internal/api/ws"
	"github.com/datasprayio/dataspray/internal/domain/workspace"
	"github.com/datasprayio/dataspray/internal/infrastructure/config"
	"github.com/datasprayio/dataspray/internal/infrastructure/logging"
	"github.com/datasprayio/dataspray/internal/infrastructure/monitoring"
	"github.com/datasprayio/dataspray/internal/infrastructure/tracing"
	"github.com/datasprayio/dataspray/internal/providers/filesystem"
	"github.com/datasprayio/dataspray/internal/providers/terminal"
)

// WebSocketPath is the route of the websocket execution endpoint.
const WebSocketPath = "/terminal/ws"

// Server wraps the HTTP server and dependencies
type Server struct {
	router   *gin.Engine
	http     *http.Server
	root     *workspace.Root
	executor *terminal.Executor
	tracer   *tracing.Tracer
	logger   *logging.Logger
	config   *config.Config
	metrics  *monitoring.Metrics
}

// NewServer creates a new server instance. The working directory must
// already exist.
func NewServer(cfg *config.Config, logger *logging.Logger) (*Server, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	root, err := workspace.NewRoot(cfg.Workspace.Dir)
	if err != nil {
		return nil, err
	}

	logger.Info("Initializing workspace server",
		zap.String("addr", cfg.Addr()),
		zap.String("working_dir", root.Dir()),
		zap.Duration("exec_timeout", cfg.Exec.Timeout),
	)

	metrics := monitoring.NewMetrics()
	tracer := tracing.New("dataspray", logger)

	fs := filesystem.NewService(
		workspace.NewResolver(root),
		filesystem.WithLogger(logger.Named("filesystem")),
		filesystem.WithRecorder(metrics),
		filesystem.WithChunkSize(cfg.Workspace.ChunkSize),
	)
	executor := terminal.NewExecutor(root,
		terminal.WithShell(cfg.Exec.Shell),
		terminal.WithTimeout(cfg.Exec.Timeout),
		terminal.WithJoinWait(cfg.Exec.JoinWait),
		terminal.WithPTY(cfg.Exec.PTY),
		terminal.WithLogger(logger.Named("terminal")),
		terminal.WithRecorder(metrics),
	)

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.Server.AllowOrigins
	router.Use(middleware.CORS(corsCfg))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
			zap.Bool("global", cfg.RateLimit.Global),
		)
		limits := middleware.DefaultRateLimitConfig()
		limits.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		limits.Burst = cfg.RateLimit.Burst
		if cfg.RateLimit.Global {
			router.Use(middleware.GlobalRateLimit(limits))
		} else {
			router.Use(middleware.RateLimit(limits))
		}
	}

	handlers := apihttp.NewHandlers(root, fs, executor, metrics, logger.Named("http"))
	handlers.RegisterRoutes(router)

	wsHandler := ws.NewHandler(executor, metrics, logger,
		ws.WithAllowedOrigins(corsCfg.AllowOrigins),
	)
	router.GET(WebSocketPath, wsHandler.HandleConnection)

	if cfg.Metrics.Enabled {
		router.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	s := &Server{
		router:   router,
		root:     root,
		executor: executor,
		tracer:   tracer,
		logger:   logger,
		config:   cfg,
		metrics:  metrics,
	}
	s.http = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		// No write timeout: file reads and executions stream for as long as
		// they run.
	}

	logger.Info("Server initialized successfully")
	return s, nil
}

// Handler returns the root handler, compressed when enabled. The websocket
// route bypasses compression since it hijacks the connection.
func (s *Server) Handler() http.Handler {
	if !s.config.Server.CompressionEnabled {
		return s.router
	}

	compressed := gzhttp.GzipHandler(s.router)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == WebSocketPath {
			s.router.ServeHTTP(w, r)
			return
		}
		compressed.ServeHTTP(w, r)
	})
}

// Metrics returns the server's metric registry wrapper.
func (s *Server) Metrics() *monitoring.Metrics {
	return s.metrics
}

// Run starts the HTTP server and blocks until it stops. A clean Shutdown
// returns nil.
func (s *Server) Run() error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown stops accepting requests, kills running executions and waits for
// in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")

	// Streaming responses only finish once their command is gone.
	s.executor.Shutdown()

	err := s.http.Shutdown(ctx)
	if err != nil {
		s.logger.Error("Graceful shutdown incomplete", zap.Error(err))
	}

	s.tracer.Close()
	_ = s.logger.Sync()
	return err
}
