package filesystem

import (
	"io/fs"
	"syscall"
	"time"
)

func platformAttrs(_ string, info fs.FileInfo, _ bool) (time.Time, bool) {
	d, ok := info.Sys().(*syscall.Win32FileAttributeData)
	if !ok {
		return info.ModTime(), false
	}
	created := time.Unix(0, d.CreationTime.Nanoseconds())
	return created, d.FileAttributes&syscall.FILE_ATTRIBUTE_READONLY != 0
}
