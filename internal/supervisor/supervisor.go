// Package supervisor launches the simulation server and GUI as isolated
// child processes, relays termination signals to them, and enforces a
// bounded graceful-then-forceful shutdown. Teardown converges on a single
// path whether a user signal or a spontaneous child exit triggers it.
package supervisor

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/google/uuid"

	"simlaunch/internal/history"
	"simlaunch/pkg/config"
	"simlaunch/pkg/logx"
	"simlaunch/pkg/metrics"
	"simlaunch/pkg/proc"
)

// ExitFailure is the aggregate exit code when the first-dying child was
// signal-killed or exited nonzero.
const ExitFailure = 1

// Supervisor owns the lifecycle of the spawned children. It shares their
// handles with no other component.
type Supervisor struct {
	cfg      config.Config
	logger   *logx.Logger
	runID    string
	shutdown *ShutdownState
	store    *history.Store

	mu       sync.Mutex
	state    State
	children map[proc.Role]*proc.Child
}

func New(cfg config.Config) *Supervisor {
	return &Supervisor{
		cfg:      cfg,
		logger:   logx.NewLogger("supervisor"),
		runID:    uuid.NewString(),
		shutdown: NewShutdownState(),
		children: make(map[proc.Role]*proc.Child),
	}
}

// AttachHistory enables run-history persistence for this supervisor.
func (s *Supervisor) AttachHistory(store *history.Store) {
	s.store = store
}

// RunID returns the unique ID of this supervised run.
func (s *Supervisor) RunID() string {
	return s.runID
}

// Run spawns the planned children, blocks until the first one exits, tears
// down the rest, and returns the aggregate exit code. The passthrough
// arguments are handed to every child verbatim. Cancelling ctx behaves
// like a caught termination signal.
func (s *Supervisor) Run(ctx context.Context, plan LaunchPlan, passthrough []string) int {
	s.setState(StateStarting)
	startedAt := time.Now().UTC()
	s.recordStart(plan, startedAt)

	// The relay must be live before any child can die unsolicited.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, proc.ShutdownSignals()...)
	defer signal.Stop(sigCh)

	relayStop := make(chan struct{})
	relayDone := make(chan struct{})
	go s.relay(ctx, sigCh, relayStop, relayDone)

	executables := map[proc.Role]string{
		proc.RoleServer: s.cfg.Server.Executable,
		proc.RoleGUI:    s.cfg.GUI.Executable,
	}

	for _, role := range plan.Roles() {
		// Invariant: no child is spawned once shutdown has begun.
		if s.shutdown.Signaled() {
			break
		}
		c := proc.Spawn(role, executables[role], passthrough)
		s.mu.Lock()
		s.children[role] = c
		s.mu.Unlock()
		metrics.ChildSpawned(string(role))
		// A signal may have landed between the guard above and the
		// registration, in which case the relay's sweep can have run
		// before it could see this child. Re-check and sweep it here;
		// terminateChild is idempotent, so overlapping with the relay
		// is safe.
		if s.shutdown.Signaled() {
			s.terminateChild(role, c)
			break
		}
	}

	if !s.shutdown.Signaled() {
		s.setState(StateRunning)
	}
	s.logger.Info("supervising %s (run %s)", plan, s.runID)

	children := s.snapshot()
	if len(children) == 0 {
		// Shutdown began before anything was spawned.
		close(relayStop)
		<-relayDone
		s.setState(StateExited)
		s.recordEnd(history.TriggerSignal, 0)
		return 0
	}

	exitCh := make(chan proc.ExitStatus, len(children))
	for _, c := range children {
		go func(c *proc.Child) {
			<-c.Done()
			metrics.ChildExited()
			st, _ := c.Exit()
			exitCh <- st
		}(c)
	}

	// Block until any tracked child exits.
	first := <-exitCh
	s.setState(StateShuttingDown)

	returnValue := 0
	if first.Failed() {
		returnValue = ExitFailure
		s.logger.Error("%s", first)
	} else {
		s.logger.Info("%s", first)
	}

	trigger := history.TriggerSignal
	if !s.shutdown.Signaled() {
		// Unsolicited exit: re-raise the signal at ourselves so the
		// sibling comes down through the relay path.
		trigger = history.TriggerChildExit
		s.logger.Debug("[%s] exited unsolicited, raising interrupt", first.Role)
		if err := proc.SelfInterrupt(); err != nil {
			s.logger.Warn("self-interrupt failed: %v, terminating directly", err)
			if s.shutdown.MarkSignaled() {
				s.terminateAll()
			}
		}
	}

	for i := 1; i < len(children); i++ {
		st := <-exitCh
		s.logger.Info("%s", st)
	}

	close(relayStop)
	<-relayDone

	s.setState(StateExited)
	s.recordEnd(trigger, returnValue)
	s.logger.Debug("shutting down simlaunch")
	return returnValue
}

// relay handles asynchronous shutdown triggers. Whoever wins the
// MarkSignaled race runs the escalation; everyone else no-ops. The relay
// itself only delegates, so it never blocks past the escalation budget.
func (s *Supervisor) relay(ctx context.Context, sigCh <-chan os.Signal, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ctxDone := ctx.Done()
	for {
		select {
		case sig := <-sigCh:
			if s.shutdown.MarkSignaled() {
				s.setState(StateShuttingDown)
				s.logger.Info("caught %v, stopping children", sig)
				s.terminateAll()
			}
		case <-ctxDone:
			ctxDone = nil
			if s.shutdown.MarkSignaled() {
				s.setState(StateShuttingDown)
				s.logger.Info("context cancelled, stopping children")
				s.terminateAll()
			}
		case <-stop:
			return
		}
	}
}

// terminateAll escalates against every live child, GUI before server: the
// GUI is the dependent client and is asked to stop first.
func (s *Supervisor) terminateAll() {
	for _, role := range []proc.Role{proc.RoleGUI, proc.RoleServer} {
		if c := s.child(role); c != nil {
			s.terminateChild(role, c)
		}
	}
}

// terminateChild runs the escalation for one child and accounts for the
// outcome exactly once, however many callers race here. The killed flag is
// set even when the post-kill reap never confirms: a forceful kill cannot
// be refused, so the child is treated as dead either way.
func (s *Supervisor) terminateChild(role proc.Role, c *proc.Child) {
	alreadyDead := c.Exited()
	c.Terminate(s.cfg.GracefulTimeout(), s.cfg.PollInterval())
	if !s.shutdown.MarkKilled(role) {
		return
	}
	if alreadyDead {
		return
	}
	if c.ForcedKill() {
		metrics.ForcefulKill(string(role))
	} else {
		metrics.GracefulStop(string(role))
	}
}

func (s *Supervisor) child(role proc.Role) *proc.Child {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.children[role]
}

func (s *Supervisor) snapshot() []*proc.Child {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*proc.Child, 0, len(s.children))
	for _, c := range s.children {
		out = append(out, c)
	}
	return out
}

func (s *Supervisor) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// CurrentState returns the supervisor's lifecycle state.
func (s *Supervisor) CurrentState() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ChildStatus is a point-in-time view of one supervised child.
type ChildStatus struct {
	Role   string `json:"role"`
	PID    int    `json:"pid"`
	Exited bool   `json:"exited"`
}

// Status is a point-in-time view of the supervisor, served by the health
// endpoint.
type Status struct {
	State    string        `json:"state"`
	RunID    string        `json:"run_id"`
	Children []ChildStatus `json:"children"`
}

// Status returns a snapshot for the health endpoint.
func (s *Supervisor) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{
		State:    s.state.String(),
		RunID:    s.runID,
		Children: make([]ChildStatus, 0, len(s.children)),
	}
	for _, c := range s.children {
		st.Children = append(st.Children, ChildStatus{
			Role:   string(c.Role()),
			PID:    c.PID(),
			Exited: c.Exited(),
		})
	}
	return st
}

func (s *Supervisor) recordStart(plan LaunchPlan, startedAt time.Time) {
	if s.store == nil {
		return
	}
	run := history.Run{
		ID:        s.runID,
		Plan:      plan.String(),
		StartedAt: startedAt,
	}
	if err := s.store.RecordStart(&run); err != nil {
		s.logger.Warn("failed to record run start: %v", err)
	}
}

func (s *Supervisor) recordEnd(trigger string, exitCode int) {
	if s.store == nil {
		return
	}
	if err := s.store.RecordEnd(s.runID, time.Now().UTC(), trigger, exitCode); err != nil {
		s.logger.Warn("failed to record run end: %v", err)
	}
}
