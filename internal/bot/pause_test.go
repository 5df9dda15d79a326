package bot

import (
	"testing"
	"time"
)

func TestGateStartsOpen(t *testing.T) {
	g := NewGate()
	if g.Paused() {
		t.Fatal("fresh gate must not be paused")
	}

	done := make(chan struct{})
	go func() {
		g.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait blocked on an open gate")
	}
}

func TestGateBlocksWhilePaused(t *testing.T) {
	g := NewGate()
	g.Pause()
	if !g.Paused() {
		t.Fatal("gate should report paused")
	}

	released := make(chan struct{})
	go func() {
		g.Wait()
		close(released)
	}()

	select {
	case <-released:
		t.Fatal("Wait returned while the gate was paused")
	case <-time.After(20 * time.Millisecond):
	}

	g.Resume()
	select {
	case <-released:
	case <-time.After(time.Second):
		t.Fatal("Wait did not unblock after resume")
	}
}

func TestGatePauseResumeIdempotent(t *testing.T) {
	g := NewGate()
	g.Resume() // resume while open is a no-op
	g.Pause()
	g.Pause() // double pause must not reset the resume channel
	g.Resume()
	g.Resume()
	if g.Paused() {
		t.Error("gate should be open again")
	}
	g.Wait() // must not block
}
