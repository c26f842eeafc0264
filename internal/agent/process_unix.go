//go:build !windows

package agent

import (
	"os/exec"
	"syscall"
)

// killGroupOnCancel starts the agent in its own process group and kills the
// whole group when the turn context ends, so wrapper scripts do not leave
// children holding the output pipes.
func killGroupOnCancel(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setpgid = true
	cmd.Cancel = func() error {
		if err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL); err != nil {
			return cmd.Process.Kill()
		}
		return nil
	}
}
