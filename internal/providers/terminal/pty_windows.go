package terminal

import (
	"errors"
	"io"
	"os/exec"
)

func startPTY(cmd *exec.Cmd) (io.ReadCloser, error) {
	return nil, errors.New("pty mode is not supported on windows")
}
