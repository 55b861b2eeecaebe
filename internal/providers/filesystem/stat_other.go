//go:build !linux && !darwin && !windows

package filesystem

import (
	"io/fs"
	"time"
)

func platformAttrs(_ string, info fs.FileInfo, _ bool) (time.Time, bool) {
	return info.ModTime(), false
}
