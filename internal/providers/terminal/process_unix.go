//go:build !windows

package terminal

import (
	"os/exec"
	"syscall"
)

const shellFlag = "-c"

func defaultShell() string {
	return "/bin/sh"
}

// setProcGroup puts the child in its own process group so that killGroup
// reaches everything it spawns.
func setProcGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

func killGroup(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	if err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL); err != nil {
		_ = cmd.Process.Kill()
	}
}
