package filesystem

import (
	"io/fs"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// platformAttrs reports the birth time from statx. Filesystems that do not
// record one fall back to the inode change time. Linux has no read-only
// attribute separate from the mode bits.
func platformAttrs(path string, info fs.FileInfo, follow bool) (time.Time, bool) {
	flags := unix.AT_STATX_SYNC_AS_STAT
	if !follow {
		flags |= unix.AT_SYMLINK_NOFOLLOW
	}
	var stx unix.Statx_t
	if err := unix.Statx(unix.AT_FDCWD, path, flags, unix.STATX_BTIME, &stx); err == nil && stx.Mask&unix.STATX_BTIME != 0 {
		return time.Unix(stx.Btime.Sec, int64(stx.Btime.Nsec)), false
	}

	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return info.ModTime(), false
	}
	return time.Unix(int64(st.Ctim.Sec), int64(st.Ctim.Nsec)), false
}
