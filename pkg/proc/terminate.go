package proc

import (
	"time"

	"simlaunch/pkg/logx"
)

// Time allowed for the final reap after a forceful kill. The kill itself
// cannot be refused; this only bounds how long we wait for confirmation.
const killConfirmTimeout = 2 * time.Second

// Terminate requests a graceful exit and polls until the child is confirmed
// dead or the budget elapses, then escalates to a forceful kill. It returns
// true once the child is confirmed dead. Calling it on an already-dead child
// is a no-op that sends no signal.
func (c *Child) Terminate(timeout, interval time.Duration) bool {
	if c.Exited() {
		return true
	}

	if err := c.Interrupt(); err != nil {
		logx.Debugf("interrupt [%s]: %v", c.role, err)
	}

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if c.Exited() {
			logx.Debugf("[%s] stopped gracefully", c.role)
			return true
		}
		time.Sleep(interval)
	}

	logx.Warnf("escalating to SIGKILL on [%s]", c.role)
	c.markForced()
	if err := c.Kill(); err != nil {
		logx.Debugf("kill [%s]: %v", c.role, err)
	}

	// Confirm the reap so no zombie is left behind.
	select {
	case <-c.done:
		return true
	case <-time.After(killConfirmTimeout):
		logx.Warnf("[%s] not reaped after SIGKILL", c.role)
		return false
	}
}
