package filesystem

import (
	"io/fs"
	"syscall"
	"time"
)

func platformAttrs(_ string, info fs.FileInfo, _ bool) (time.Time, bool) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return info.ModTime(), false
	}
	return time.Unix(st.Birthtimespec.Sec, st.Birthtimespec.Nsec), false
}
