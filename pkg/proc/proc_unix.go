//go:build !windows

package proc

import (
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// setupProcessGroup places the child in its own process group, so
// terminal-generated signals against the launcher's group never reach it.
func setupProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
	}
}

// ShutdownSignals returns the OS signals that trigger coordinated shutdown:
// SIGINT (Ctrl+C) and SIGTERM (kill).
func ShutdownSignals() []os.Signal {
	return []os.Signal{unix.SIGINT, unix.SIGTERM}
}

// Interrupt asks the child to end itself, allowing it to clean up.
func (c *Child) Interrupt() error {
	return c.signal(unix.SIGINT)
}

// Kill ends the child unconditionally.
func (c *Child) Kill() error {
	return c.signal(unix.SIGKILL)
}

// SelfInterrupt raises SIGINT against the launcher's own process. The
// reaper uses it after an unsolicited child exit, so teardown always runs
// through the signal path.
func SelfInterrupt() error {
	return unix.Kill(unix.Getpid(), unix.SIGINT)
}

// exitSignal returns the name of the signal that killed the process, or ""
// if it exited on its own.
func exitSignal(err *exec.ExitError) string {
	ws, ok := err.Sys().(syscall.WaitStatus)
	if !ok {
		return ""
	}
	if ws.Signaled() {
		return ws.Signal().String()
	}
	return ""
}
