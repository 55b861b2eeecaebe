package filesystem

import (
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/datasprayio/dataspray/internal/domain/workspace"
	"github.com/datasprayio/dataspray/internal/infrastructure/logging"
	"github.com/datasprayio/dataspray/internal/shared/fserr"
)

// DefaultChunkSize is the read size used when streaming file content.
const DefaultChunkSize = 32 * 1024

// Service performs filesystem operations on resource URIs.
type Service struct {
	resolver  *workspace.Resolver
	logger    *logging.Logger
	recorder  Recorder
	chunkSize int
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used for unclassified failures.
func WithLogger(logger *logging.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		s.recorder = r
	}
}

// WithChunkSize sets the read chunk size for ReadFile.
func WithChunkSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.chunkSize = n
		}
	}
}

// NewService creates a filesystem service bound to resolver's working
// directory.
func NewService(resolver *workspace.Resolver, opts ...Option) *Service {
	s := &Service{
		resolver:  resolver,
		logger:    logging.NewNop(),
		chunkSize: DefaultChunkSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// observe records the outcome of op and logs failures the classification
// table could not place.
func (s *Service) observe(op string, start time.Time, err error) error {
	result := "ok"
	if err != nil {
		result = fserr.KindOf(err).String()
		if fserr.Unclassified(err) {
			s.logger.Warn("Unhandled filesystem error",
				zap.String("op", op),
				zap.Error(err),
			)
		}
	}
	if s.recorder != nil {
		s.recorder.RecordFSOperation(op, result, time.Since(start))
	}
	return err
}

// resolve maps a URI to a host path.
func (s *Service) resolve(uri string) (string, error) {
	return s.resolver.Resolve(uri)
}

// guardRoot refuses destructive operations on the working directory itself.
func (s *Service) guardRoot(op, p string) error {
	if p == s.resolver.Root().Dir() {
		return fserr.Newf(fserr.PermissionDenied, op, p, "refusing to modify the working directory")
	}
	return nil
}

// within reports whether p is base or lies beneath it.
func within(p, base string) bool {
	if p == base {
		return true
	}
	prefix := base
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(p, prefix)
}
