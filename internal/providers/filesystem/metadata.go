package filesystem

import (
	"context"
	"io/fs"
	"os"
	"time"

	"github.com/datasprayio/dataspray/internal/shared/fserr"
)

// Stat reports metadata for the node at uri. Symbolic links are flagged and
// otherwise describe their target; a dangling link describes the link itself.
func (s *Service) Stat(ctx context.Context, uri string) (stat *FileStat, err error) {
	defer func(start time.Time) { err = s.observe("stat", start, err) }(time.Now())

	p, err := s.resolve(uri)
	if err != nil {
		return nil, err
	}

	linfo, err := os.Lstat(p)
	if err != nil {
		return nil, fserr.Wrap(err, "stat", p)
	}

	info := linfo
	follow := false
	symbolic := linfo.Mode()&fs.ModeSymlink != 0
	if symbolic {
		if target, err := os.Stat(p); err == nil {
			info = target
			follow = true
		}
	}

	created, readonly := platformAttrs(p, info, follow)
	return &FileStat{
		CtimeInMsEpoch: created.UnixMilli(),
		MtimeInMsEpoch: info.ModTime().UnixMilli(),
		IsReadonly:     readonly,
		SizeInBytes:    info.Size(),
		IsDir:          info.IsDir(),
		IsSymbolic:     symbolic,
	}, nil
}
