package bot

import "sync"

// Gate is the cooperative pause flag shared between the hotkey listener and
// the control loop. Pausing never interrupts a step in flight; the loop
// blocks on Wait at the top of the next cycle.
type Gate struct {
	mu      sync.Mutex
	paused  bool
	resumed chan struct{}
}

func NewGate() *Gate {
	return &Gate{resumed: closedChan()}
}

func closedChan() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

func (g *Gate) Pause() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.paused {
		g.paused = true
		g.resumed = make(chan struct{})
	}
}

func (g *Gate) Resume() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.paused {
		g.paused = false
		close(g.resumed)
	}
}

func (g *Gate) Paused() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.paused
}

// Wait blocks while the gate is paused.
func (g *Gate) Wait() {
	g.mu.Lock()
	ch := g.resumed
	g.mu.Unlock()
	<-ch
}
