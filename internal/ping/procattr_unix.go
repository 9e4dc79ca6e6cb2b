//go:build !windows

package ping

import (
	"os/exec"
	"syscall"
)

// detach starts cmd in its own process group, out of reach of signals the
// terminal sends to the foreground group.
func detach(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setpgid = true
}
