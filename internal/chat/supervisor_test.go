package chat

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

// fakeRunner is a scriptable backend process. healthyAfterStarts makes the
// probe pass once Start has been called that many times; 0 means never.
type fakeRunner struct {
	mu                 sync.Mutex
	starts             int
	terminates         int
	healthyAfterStarts int
}

func (r *fakeRunner) Probe() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.healthyAfterStarts > 0 && r.starts >= r.healthyAfterStarts
}

func (r *fakeRunner) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.starts++
	return nil
}

func (r *fakeRunner) Terminate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.terminates++
}

func (r *fakeRunner) counts() (starts, terminates int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.starts, r.terminates
}

func newTestSupervisor(runner Runner) *Supervisor {
	s := NewSupervisor(slog.New(slog.NewTextHandler(io.Discard, nil)), runner)
	s.checkInterval = 5 * time.Millisecond
	s.bootTimeout = 10 * time.Millisecond
	s.bootPoll = 2 * time.Millisecond
	return s
}

func TestSupervisorKeepsRetryingDeadBackend(t *testing.T) {
	runner := &fakeRunner{healthyAfterStarts: 0}
	s := newTestSupervisor(runner)

	go s.Run()
	defer s.Stop()

	if s.WaitUntilFirstHealthy(60 * time.Millisecond) {
		t.Fatal("backend never passes its probe, readiness must time out")
	}
	if s.IsHealthy() {
		t.Error("supervisor reports healthy for a dead backend")
	}

	starts, _ := runner.counts()
	if starts < 2 {
		t.Errorf("expected repeated restart attempts, got %d starts", starts)
	}
}

func TestSupervisorReadyAfterBackendBoots(t *testing.T) {
	runner := &fakeRunner{healthyAfterStarts: 1}
	s := newTestSupervisor(runner)

	go s.Run()
	defer s.Stop()

	if !s.WaitUntilFirstHealthy(time.Second) {
		t.Fatal("backend boots on first launch, readiness should unblock")
	}
	if !s.IsHealthy() {
		t.Error("supervisor should report healthy after boot")
	}

	// readiness is one-shot: a second wait returns immediately
	if !s.WaitUntilFirstHealthy(0) {
		t.Error("readiness must stay signalled once reached")
	}
}

func TestSupervisorRestartsUnhealthyBackend(t *testing.T) {
	runner := &fakeRunner{healthyAfterStarts: 3}
	s := newTestSupervisor(runner)

	go s.Run()
	defer s.Stop()

	if !s.WaitUntilFirstHealthy(time.Second) {
		t.Fatal("backend should come up on the third launch")
	}

	starts, terminates := runner.counts()
	if starts < 3 {
		t.Errorf("expected at least 3 starts before health, got %d", starts)
	}
	// every restart attempt terminates the previous incarnation first
	if terminates < 2 {
		t.Errorf("expected terminate-before-restart, got %d terminates", terminates)
	}
}

func TestSupervisorStopTerminatesBackend(t *testing.T) {
	runner := &fakeRunner{healthyAfterStarts: 1}
	s := newTestSupervisor(runner)

	go s.Run()
	s.WaitUntilFirstHealthy(time.Second)
	s.Stop()

	_, terminates := runner.counts()
	if terminates == 0 {
		t.Error("stop must terminate the managed process")
	}

	// Stop is idempotent
	s.Stop()
}
