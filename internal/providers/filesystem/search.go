package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/datasprayio/dataspray/internal/shared/fserr"
)

// GlobResponse lists the URIs matched by a pattern.
type GlobResponse struct {
	Matches []string `json:"matches"`
}

// Glob matches pattern (with ** support) against the tree below the directory
// at uri and returns the matches as URIs, sorted. Symbolic links are reported
// but not descended into.
func (s *Service) Glob(ctx context.Context, uri, pattern string) (resp *GlobResponse, err error) {
	defer func(start time.Time) { err = s.observe("glob", start, err) }(time.Now())

	p, err := s.resolve(uri)
	if err != nil {
		return nil, err
	}
	if err := validatePattern(pattern); err != nil {
		return nil, err
	}

	info, err := os.Stat(p)
	if err != nil {
		return nil, fserr.Wrap(err, "glob", p)
	}
	if !info.IsDir() {
		return nil, fserr.Newf(fserr.OperationFailed, "glob", p, "not a directory")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rel, err := doublestar.Glob(os.DirFS(p), pattern, doublestar.WithNoFollow())
	if err != nil {
		return nil, fserr.Wrap(err, "glob", p)
	}
	sort.Strings(rel)

	matches := make([]string, 0, len(rel))
	for _, m := range rel {
		u, err := s.resolver.Unresolve(filepath.Join(p, filepath.FromSlash(m)))
		if err != nil {
			return nil, err
		}
		matches = append(matches, u)
	}
	return &GlobResponse{Matches: matches}, nil
}

// validatePattern rejects patterns that are malformed or climb out of the
// searched directory.
func validatePattern(pattern string) error {
	if pattern == "" || !doublestar.ValidatePattern(pattern) {
		return fserr.Newf(fserr.InvalidURI, "glob", pattern, "invalid pattern")
	}
	if strings.HasPrefix(pattern, "/") {
		return fserr.Newf(fserr.InvalidURI, "glob", pattern, "pattern must be relative")
	}
	for _, seg := range strings.Split(pattern, "/") {
		if seg == ".." {
			return fserr.Newf(fserr.InvalidURI, "glob", pattern, "pattern must not contain ..")
		}
	}
	return nil
}
