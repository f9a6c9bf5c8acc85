package proc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// waitDone blocks until the child is reaped or the test deadline hits.
func waitDone(t *testing.T, c *Child, timeout time.Duration) ExitStatus {
	t.Helper()
	select {
	case <-c.Done():
	case <-time.After(timeout):
		t.Fatalf("child [%s] not reaped within %v", c.Role(), timeout)
	}
	st, ok := c.Exit()
	require.True(t, ok)
	return st
}

func TestSpawnMissingExecutable(t *testing.T) {
	c := Spawn(RoleServer, "definitely-not-a-real-binary-xyz", nil)

	// The failure surfaces as an abnormal exit, not a spawn error.
	st := waitDone(t, c, time.Second)
	assert.True(t, st.Failed())
	assert.Equal(t, exitCodeExecFailure, st.Code)
	assert.Equal(t, RoleServer, st.Role)
	assert.Zero(t, c.PID())
}

func TestSpawnCollectsExitCode(t *testing.T) {
	c := Spawn(RoleServer, "sh", []string{"-c", "exit 3"})

	st := waitDone(t, c, 5*time.Second)
	assert.True(t, st.Failed())
	assert.Equal(t, 3, st.Code)
	assert.Empty(t, st.Signal)
}

func TestSpawnCleanExit(t *testing.T) {
	c := Spawn(RoleGUI, "true", nil)

	st := waitDone(t, c, 5*time.Second)
	assert.False(t, st.Failed())
	assert.Equal(t, 0, st.Code)
	assert.NotZero(t, c.PID())
}

func TestSignalKilledChildIsAbnormal(t *testing.T) {
	c := Spawn(RoleGUI, "sleep", []string{"10"})
	require.False(t, c.Exited())

	require.NoError(t, c.Kill())

	st := waitDone(t, c, 5*time.Second)
	assert.True(t, st.Failed())
	assert.NotEmpty(t, st.Signal)
}

func TestExitStatusString(t *testing.T) {
	ok := ExitStatus{Role: RoleServer}
	assert.Equal(t, "[server] exited normally", ok.String())

	bad := ExitStatus{Role: RoleGUI, Code: -1, Signal: "killed"}
	assert.Equal(t, "[gui] exited with code=-1, signal=killed", bad.String())
}

func TestTerminateAlreadyExited(t *testing.T) {
	c := Spawn(RoleServer, "true", nil)
	waitDone(t, c, 5*time.Second)

	start := time.Now()
	killed := c.Terminate(5*time.Second, time.Millisecond)

	assert.True(t, killed)
	// Idempotent path: returns immediately, no signal, no polling.
	assert.Less(t, time.Since(start), time.Second)
	assert.False(t, c.ForcedKill())
}

func TestTerminateGraceful(t *testing.T) {
	c := Spawn(RoleGUI, "sleep", []string{"10"})

	start := time.Now()
	killed := c.Terminate(5*time.Second, time.Millisecond)
	elapsed := time.Since(start)

	assert.True(t, killed)
	// sleep dies on the interrupt, well inside the budget.
	assert.Less(t, elapsed, 3*time.Second)

	st, ok := c.Exit()
	require.True(t, ok)
	assert.Equal(t, "interrupt", st.Signal)
	// An honored graceful request never counts as a forceful kill.
	assert.False(t, c.ForcedKill())
}

func TestTerminateEscalatesOnlyAfterTimeout(t *testing.T) {
	// The child ignores the graceful interrupt for its whole life.
	c := Spawn(RoleGUI, "sh", []string{"-c", `trap "" INT; sleep 10`})

	// Give the shell a moment to install the trap.
	time.Sleep(200 * time.Millisecond)

	timeout := 300 * time.Millisecond
	start := time.Now()
	killed := c.Terminate(timeout, time.Millisecond)
	elapsed := time.Since(start)

	assert.True(t, killed)
	// The kill happens after the full budget, never before.
	assert.GreaterOrEqual(t, elapsed, timeout)

	st, ok := c.Exit()
	require.True(t, ok)
	assert.Equal(t, "killed", st.Signal)
	// The escalation itself is recorded, independent of how the exit
	// status reads on any given platform.
	assert.True(t, c.ForcedKill())
}
