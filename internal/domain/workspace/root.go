package workspace

import (
	"fmt"
	"os"
	"path/filepath"
)

// Root is the working directory. It is immutable once constructed and safe to
// share between goroutines.
type Root struct {
	dir string
}

// NewRoot validates dir and returns it as a Root. dir must name an existing
// directory; relative paths are made absolute against the process cwd.
func NewRoot(dir string) (*Root, error) {
	if dir == "" {
		return nil, fmt.Errorf("working directory not configured")
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}

	r := &Root{dir: filepath.Clean(abs)}
	if err := r.Check(); err != nil {
		return nil, err
	}
	return r, nil
}

// Dir returns the absolute working directory.
func (r *Root) Dir() string {
	return r.dir
}

// Check verifies the working directory still exists and is a directory.
func (r *Root) Check() error {
	info, err := os.Stat(r.dir)
	if err != nil {
		return fmt.Errorf("working directory error: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("working directory is not a directory: %s", r.dir)
	}
	return nil
}

// Contains reports whether the absolute path p lies inside the root (the root
// itself included).
func (r *Root) Contains(p string) bool {
	rel, err := filepath.Rel(r.dir, filepath.Clean(p))
	if err != nil {
		return false
	}
	return rel == "." || !isParentRef(rel)
}

func isParentRef(rel string) bool {
	return rel == ".." || len(rel) > 2 && rel[:3] == ".."+string(filepath.Separator)
}
