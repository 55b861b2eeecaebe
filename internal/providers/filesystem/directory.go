package filesystem

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/datasprayio/dataspray/internal/shared/fserr"
)

// CreateDirectory creates exactly one directory level at uri. The parent must
// already exist.
func (s *Service) CreateDirectory(ctx context.Context, uri string) (err error) {
	defer func(start time.Time) { err = s.observe("createDirectory", start, err) }(time.Now())

	p, err := s.resolve(uri)
	if err != nil {
		return err
	}

	return fserr.Wrap(os.Mkdir(p, 0o755), "createDirectory", p)
}

// ReadDirectory lists the immediate children of the directory at uri in scan
// order. Symbolic links to directories report both flags.
func (s *Service) ReadDirectory(ctx context.Context, uri string) (resp *ReadDirectoryResponse, err error) {
	defer func(start time.Time) { err = s.observe("readDirectory", start, err) }(time.Now())

	p, err := s.resolve(uri)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(p)
	if err != nil {
		return nil, fserr.Wrap(err, "readDirectory", p)
	}
	if !info.IsDir() {
		return nil, fserr.Newf(fserr.OperationFailed, "readDirectory", p, "not a directory")
	}

	dir, err := os.Open(p)
	if err != nil {
		return nil, fserr.Wrap(err, "readDirectory", p)
	}
	defer dir.Close()

	des, err := dir.ReadDir(-1)
	if err != nil {
		return nil, fserr.Wrap(err, "readDirectory", p)
	}

	files := make([]DirectoryEntry, 0, len(des))
	for _, de := range des {
		entry := DirectoryEntry{
			Name:       de.Name(),
			IsDir:      de.IsDir(),
			IsSymbolic: de.Type()&fs.ModeSymlink != 0,
		}
		if entry.IsSymbolic {
			if target, err := os.Stat(filepath.Join(p, de.Name())); err == nil {
				entry.IsDir = target.IsDir()
			}
		}
		files = append(files, entry)
	}

	return &ReadDirectoryResponse{Files: files}, nil
}

// Delete removes the node at uri. Files are unlinked regardless of recursive.
// A non-empty directory is only removed when recursive is set.
func (s *Service) Delete(ctx context.Context, uri string, recursive bool) (err error) {
	defer func(start time.Time) { err = s.observe("delete", start, err) }(time.Now())

	p, err := s.resolve(uri)
	if err != nil {
		return err
	}
	if err := s.guardRoot("delete", p); err != nil {
		return err
	}

	info, err := os.Lstat(p)
	if err != nil {
		return fserr.Wrap(err, "delete", p)
	}

	if info.IsDir() && recursive {
		return fserr.Wrap(os.RemoveAll(p), "delete", p)
	}
	return fserr.Wrap(os.Remove(p), "delete", p)
}

// removeExisting clears a destination before it is replaced: files and links
// are unlinked, directories removed recursively.
func removeExisting(op, p string, info fs.FileInfo) error {
	if info.IsDir() {
		return fserr.Wrap(os.RemoveAll(p), op, p)
	}
	return fserr.Wrap(os.Remove(p), op, p)
}
