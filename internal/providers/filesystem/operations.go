package filesystem

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/charlievieth/fastwalk"

	"github.com/datasprayio/dataspray/internal/shared/fserr"
)

// Copy copies the node at sourceURI to destinationURI.
//
// The destination's parent must exist. An existing destination, file or
// directory, is rejected unless overwrite is set, in which case it is removed
// first. Files keep their mode and timestamps; directories are copied
// recursively and symbolic links are recreated as links.
func (s *Service) Copy(ctx context.Context, sourceURI, destinationURI string, overwrite bool) (err error) {
	defer func(start time.Time) { err = s.observe("copy", start, err) }(time.Now())

	src, err := s.resolve(sourceURI)
	if err != nil {
		return err
	}
	dst, err := s.resolve(destinationURI)
	if err != nil {
		return err
	}
	if err := s.guardRoot("copy", dst); err != nil {
		return err
	}

	if _, err := os.Stat(filepath.Dir(dst)); err != nil {
		return fserr.Wrap(err, "copy", filepath.Dir(dst))
	}

	srcInfo, err := os.Lstat(src)
	if err != nil {
		return fserr.Wrap(err, "copy", src)
	}
	if src == dst {
		// Copying a node onto itself leaves it as it is.
		if !overwrite {
			return fserr.Newf(fserr.AlreadyExists, "copy", dst, "destination exists")
		}
		return nil
	}
	if srcInfo.IsDir() && within(dst, src) {
		return fserr.Newf(fserr.OperationFailed, "copy", dst, "cannot copy a directory into itself")
	}

	if dstInfo, err := os.Lstat(dst); err == nil {
		if !overwrite {
			return fserr.Newf(fserr.AlreadyExists, "copy", dst, "destination exists")
		}
		if within(src, dst) {
			return fserr.Newf(fserr.OperationFailed, "copy", dst, "destination contains the source")
		}
		if err := removeExisting("copy", dst, dstInfo); err != nil {
			return err
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fserr.Wrap(err, "copy", dst)
	}

	switch {
	case srcInfo.IsDir():
		err = copyTree(ctx, src, dst, srcInfo)
	case srcInfo.Mode()&fs.ModeSymlink != 0:
		err = copySymlink(src, dst)
	default:
		err = copyFile(src, dst, srcInfo)
	}
	return fserr.Wrap(err, "copy", dst)
}

// Rename moves the node at oldURI to newURI with a single filesystem rename.
// An existing destination is rejected unless overwrite is set, in which case
// it is removed first.
func (s *Service) Rename(ctx context.Context, oldURI, newURI string, overwrite bool) (err error) {
	defer func(start time.Time) { err = s.observe("rename", start, err) }(time.Now())

	oldPath, err := s.resolve(oldURI)
	if err != nil {
		return err
	}
	newPath, err := s.resolve(newURI)
	if err != nil {
		return err
	}
	if err := s.guardRoot("rename", oldPath); err != nil {
		return err
	}
	if err := s.guardRoot("rename", newPath); err != nil {
		return err
	}

	oldInfo, err := os.Lstat(oldPath)
	if err != nil {
		return fserr.Wrap(err, "rename", oldPath)
	}
	if oldInfo.IsDir() && oldPath != newPath && within(newPath, oldPath) {
		return fserr.Newf(fserr.OperationFailed, "rename", newPath, "cannot move a directory into itself")
	}

	if newInfo, err := os.Lstat(newPath); err == nil {
		if !overwrite {
			return fserr.Newf(fserr.AlreadyExists, "rename", newPath, "destination exists")
		}
		if oldPath == newPath {
			return nil
		}
		if within(oldPath, newPath) {
			return fserr.Newf(fserr.OperationFailed, "rename", newPath, "destination contains the source")
		}
		if err := removeExisting("rename", newPath, newInfo); err != nil {
			return err
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fserr.Wrap(err, "rename", newPath)
	}

	return fserr.Wrap(os.Rename(oldPath, newPath), "rename", newPath)
}

// copyFile copies a regular file byte for byte, then applies the source's
// mode and timestamps. A partially written destination is removed.
func copyFile(src, dst string, info fs.FileInfo) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm()|0o200)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			os.Remove(dst)
		}
	}()

	if _, err = io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err = out.Close(); err != nil {
		return err
	}
	return copyMetadata(dst, info)
}

func copySymlink(src, dst string) error {
	target, err := os.Readlink(src)
	if err != nil {
		return err
	}
	return os.Symlink(target, dst)
}

func copyMetadata(dst string, info fs.FileInfo) error {
	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return err
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}

// copyTree copies the directory src to dst, which must not exist. Entries are
// visited concurrently; directory metadata is applied deepest-first once every
// child is in place so read-only directories can still be populated.
func copyTree(ctx context.Context, src, dst string, rootInfo fs.FileInfo) error {
	if err := os.Mkdir(dst, rootInfo.Mode().Perm()|0o700); err != nil {
		return err
	}

	type dirMeta struct {
		path string
		info fs.FileInfo
	}
	var (
		mu   sync.Mutex
		dirs = []dirMeta{{dst, rootInfo}}
	)

	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		target := filepath.Join(dst, rel)

		switch {
		case d.IsDir():
			info, err := d.Info()
			if err != nil {
				return err
			}
			if err := os.MkdirAll(target, info.Mode().Perm()|0o700); err != nil {
				return err
			}
			mu.Lock()
			dirs = append(dirs, dirMeta{target, info})
			mu.Unlock()
			return nil

		case d.Type()&fs.ModeSymlink != 0:
			if err := os.MkdirAll(filepath.Dir(target), 0o700); err != nil {
				return err
			}
			return copySymlink(p, target)

		case d.Type().IsRegular():
			info, err := d.Info()
			if err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(target), 0o700); err != nil {
				return err
			}
			return copyFile(p, target, info)

		default:
			// sockets, devices and pipes are not copied
			return nil
		}
	})
	if err != nil {
		return err
	}

	sort.Slice(dirs, func(i, j int) bool { return len(dirs[i].path) > len(dirs[j].path) })
	for _, d := range dirs {
		if err := copyMetadata(d.path, d.info); err != nil {
			return err
		}
	}
	return nil
}
