//go:build !windows

package terminal

import (
	"io"
	"os/exec"

	"github.com/creack/pty"
)

// startPTY runs cmd on a new pseudo-terminal. pty starts the child as a
// session leader, so its process group id equals its pid.
func startPTY(cmd *exec.Cmd) (io.ReadCloser, error) {
	return pty.StartWithSize(cmd, &pty.Winsize{Rows: 24, Cols: 200})
}
