package filesystem

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/datasprayio/dataspray/internal/shared/fserr"
	"github.com/datasprayio/dataspray/internal/shared/stream"
)

// sniffLen is how much of a file is inspected for MIME detection.
const sniffLen = 3072

// ReadFile opens the file at uri and streams its content in chunks. The
// returned FileContent owns the file handle until its stream is drained or
// closed.
func (s *Service) ReadFile(ctx context.Context, uri string) (content *FileContent, err error) {
	defer func(start time.Time) { err = s.observe("readFile", start, err) }(time.Now())

	p, err := s.resolve(uri)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(p)
	if err != nil {
		return nil, fserr.Wrap(err, "readFile", p)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fserr.Wrap(err, "readFile", p)
	}
	if info.IsDir() {
		f.Close()
		return nil, fserr.Newf(fserr.OperationFailed, "readFile", p, "is a directory")
	}

	head := make([]byte, sniffLen)
	n, err := f.ReadAt(head, 0)
	if err != nil && !errors.Is(err, io.EOF) {
		f.Close()
		return nil, fserr.Wrap(err, "readFile", p)
	}

	chunkSize := s.chunkSize
	producer := func(ctx context.Context, emit stream.Emit) error {
		defer f.Close()
		for {
			buf := make([]byte, chunkSize)
			n, err := f.Read(buf)
			if n > 0 && !emit(buf[:n]) {
				return ctx.Err()
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return fserr.Wrap(err, "readFile", p)
			}
		}
	}

	return &FileContent{
		Name:     filepath.Base(p),
		Size:     info.Size(),
		MimeType: mimetype.Detect(head[:n]).String(),
		Content:  stream.New(ctx, producer),
	}, nil
}

// WriteFile writes body to the file at uri.
//
// A missing file is only created when create is set. An existing file is
// rejected when create is set without overwrite. overwrite truncates and
// replaces the content; otherwise body is appended.
func (s *Service) WriteFile(ctx context.Context, uri, body string, create, overwrite bool) (err error) {
	defer func(start time.Time) { err = s.observe("writeFile", start, err) }(time.Now())

	p, err := s.resolve(uri)
	if err != nil {
		return err
	}

	exists := true
	if _, err := os.Stat(p); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fserr.Wrap(err, "writeFile", p)
		}
		exists = false
	}

	if !exists && !create {
		return fserr.Newf(fserr.NotFound, "writeFile", p, "file does not exist")
	}
	if exists && create && !overwrite {
		return fserr.Newf(fserr.AlreadyExists, "writeFile", p, "file already exists")
	}

	flag := os.O_WRONLY | os.O_CREATE
	if overwrite {
		flag |= os.O_TRUNC
	} else {
		flag |= os.O_APPEND
	}

	f, err := os.OpenFile(p, flag, 0o644)
	if err != nil {
		return fserr.Wrap(err, "writeFile", p)
	}

	if _, err := io.WriteString(f, body); err != nil {
		f.Close()
		return fserr.Wrap(err, "writeFile", p)
	}
	return fserr.Wrap(f.Close(), "writeFile", p)
}
