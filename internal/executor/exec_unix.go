//go:build !windows

package executor

import (
	"os/exec"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// setProcessGroup places the child in its own process group so a
// timeout can signal the whole tree, not just the immediate child.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// terminateTree sends SIGTERM to the child's process group and escalates
// to SIGKILL only if it hasn't exited by the time grace elapses. done
// must be the same channel the caller's cmd.Wait() goroutine reports on;
// terminateTree consumes it so the caller doesn't also need to.
func terminateTree(cmd *exec.Cmd, done <-chan error, grace time.Duration) {
	if cmd.Process == nil {
		return
	}
	pgid := cmd.Process.Pid
	_ = unix.Kill(-pgid, syscall.SIGTERM)

	timer := time.NewTimer(grace)
	defer timer.Stop()
	select {
	case <-done:
		return
	case <-timer.C:
		_ = unix.Kill(-pgid, syscall.SIGKILL)
		<-done
	}
}
