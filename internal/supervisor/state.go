package supervisor

import (
	"sync"

	"simlaunch/pkg/proc"
)

// State is the supervisor lifecycle state.
type State int32

const (
	StateStarting State = iota
	StateRunning
	StateShuttingDown
	StateExited
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateShuttingDown:
		return "shutting_down"
	case StateExited:
		return "exited"
	default:
		return "unknown"
	}
}

// ShutdownState is the only state shared across the asynchronous signal
// boundary. The signal relay and the reaper race to initiate shutdown;
// both transitions are monotonic, so whichever loses the race becomes a
// no-op. Always passed by reference, never a package-level variable.
type ShutdownState struct {
	mu       sync.Mutex
	signaled bool
	killed   map[proc.Role]bool
}

func NewShutdownState() *ShutdownState {
	return &ShutdownState{
		killed: make(map[proc.Role]bool),
	}
}

// MarkSignaled flips the signaled flag and reports whether this call made
// the false->true transition. It transitions exactly once.
func (s *ShutdownState) MarkSignaled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.signaled {
		return false
	}
	s.signaled = true
	return true
}

// Signaled reports whether shutdown has been initiated.
func (s *ShutdownState) Signaled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.signaled
}

// MarkKilled flips the per-role killed flag and reports whether this call
// made the transition. Each role transitions at most once.
func (s *ShutdownState) MarkKilled(role proc.Role) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.killed[role] {
		return false
	}
	s.killed[role] = true
	return true
}

// Killed reports whether the role's child has been through termination.
// A forceful kill cannot be refused, so the flag is set even when the
// final reap was never confirmed.
func (s *ShutdownState) Killed(role proc.Role) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.killed[role]
}
