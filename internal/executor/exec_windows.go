//go:build windows

package executor

import (
	"os/exec"
	"syscall"
	"time"
)

const createNewProcessGroup = 0x00000200

// setProcessGroup places the child in its own process group so
// GenerateConsoleCtrlEvent can target the whole tree instead of just the
// immediate child.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{CreationFlags: createNewProcessGroup}
}

// terminateTree asks the child's process group to exit via CTRL_BREAK,
// falling back to TerminateProcess if it hasn't exited by the time grace
// elapses. done must be the same channel the caller's cmd.Wait()
// goroutine reports on; terminateTree consumes it so the caller doesn't
// also need to.
func terminateTree(cmd *exec.Cmd, done <-chan error, grace time.Duration) {
	if cmd.Process == nil {
		return
	}
	pid := cmd.Process.Pid
	_ = syscall.GenerateConsoleCtrlEvent(syscall.CTRL_BREAK_EVENT, uint32(pid))

	timer := time.NewTimer(grace)
	defer timer.Stop()
	select {
	case <-done:
		return
	case <-timer.C:
		_ = cmd.Process.Kill()
		<-done
	}
}
