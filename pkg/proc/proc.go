// Package proc spawns and tears down the supervised child processes.
// Each child runs in its own process group, so a signal delivered to the
// launcher is never auto-propagated; teardown is always explicit.
package proc

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"

	"simlaunch/pkg/logx"
)

// Role identifies a supervised child.
type Role string

const (
	RoleServer Role = "server"
	RoleGUI    Role = "gui"
)

// Exit code recorded when the executable image could not be loaded.
const exitCodeExecFailure = 127

// ExitStatus describes how a child exited: its code and, if it was
// signal-killed, the signal name.
type ExitStatus struct {
	Role   Role
	Code   int
	Signal string
}

// Failed reports whether the exit counts as abnormal: signal-killed or
// a nonzero code.
func (e ExitStatus) Failed() bool {
	return e.Code != 0 || e.Signal != ""
}

func (e ExitStatus) String() string {
	if !e.Failed() {
		return fmt.Sprintf("[%s] exited normally", e.Role)
	}
	bits := []string{fmt.Sprintf("code=%d", e.Code)}
	if e.Signal != "" {
		bits = append(bits, "signal="+e.Signal)
	}
	return fmt.Sprintf("[%s] exited with %s", e.Role, strings.Join(bits, ", "))
}

// Child is a supervised subprocess. It is exclusively owned by the
// supervisor from spawn until its exit status is collected; only the
// Exited/Exit accessors and Done channel are safe for concurrent use.
type Child struct {
	role Role
	cmd  *exec.Cmd
	pid  int

	done chan struct{}

	mu     sync.Mutex
	exited bool
	exit   ExitStatus
	forced bool
}

// Spawn starts the executable for a role, handing it the supervisor's full
// received argument vector so the child parses the same user intent.
// A missing or unloadable image is not reported here: the returned Child
// carries an abnormal exit status and is observed through the reaper like
// any crashed child.
func Spawn(role Role, executable string, args []string) *Child {
	cmd := exec.Command(executable, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	setupProcessGroup(cmd)

	c := &Child{
		role: role,
		cmd:  cmd,
		done: make(chan struct{}),
	}

	if err := cmd.Start(); err != nil {
		logx.Errorf("failed to launch [%s] (%s): %v", role, executable, err)
		c.finish(ExitStatus{Role: role, Code: exitCodeExecFailure})
		return c
	}

	c.pid = cmd.Process.Pid
	logx.Debugf("launched [%s] as pid %d", role, c.pid)

	go c.reap()
	return c
}

// reap collects the child's exit status once and publishes it.
func (c *Child) reap() {
	err := c.cmd.Wait()

	st := ExitStatus{Role: c.role}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			if sig := exitSignal(exitErr); sig != "" {
				st.Signal = sig
				st.Code = -1
			} else {
				st.Code = exitErr.ExitCode()
			}
		} else {
			// Wait itself failed; treat as abnormal.
			st.Code = -1
		}
	}
	c.finish(st)
}

func (c *Child) finish(st ExitStatus) {
	c.mu.Lock()
	c.exited = true
	c.exit = st
	c.mu.Unlock()
	close(c.done)
}

// Role returns the child's role.
func (c *Child) Role() Role {
	return c.role
}

// PID returns the child's process ID, or 0 if it never started.
func (c *Child) PID() int {
	return c.pid
}

// Done is closed once the child has been reaped.
func (c *Child) Done() <-chan struct{} {
	return c.done
}

// Exited reports whether the child's exit status has been collected.
func (c *Child) Exited() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.exited
}

// Exit returns the collected exit status. The second return is false while
// the child is still running.
func (c *Child) Exit() (ExitStatus, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.exit, c.exited
}

// markForced records that a non-ignorable kill was sent to this child.
func (c *Child) markForced() {
	c.mu.Lock()
	c.forced = true
	c.mu.Unlock()
}

// ForcedKill reports whether termination escalated to a forceful kill.
// It stays false for children that exited on their own or honored the
// graceful request in time.
func (c *Child) ForcedKill() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.forced
}

func (c *Child) signal(sig os.Signal) error {
	if c.cmd.Process == nil {
		return nil
	}
	return c.cmd.Process.Signal(sig)
}
