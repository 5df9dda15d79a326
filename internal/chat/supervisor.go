package chat

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

const (
	defaultCheckInterval = 30 * time.Second
	defaultBootTimeout   = 30 * time.Second
	defaultBootPoll      = 5 * time.Second
)

// Supervisor keeps the chat backend alive. It is the only component that
// ever starts or stops the managed process; everyone else just reads health
// state through IsHealthy and WaitUntilFirstHealthy.
type Supervisor struct {
	runner Runner
	logger *slog.Logger

	checkInterval time.Duration
	bootTimeout   time.Duration
	bootPoll      time.Duration

	healthy   atomic.Bool
	ready     chan struct{}
	readyOnce sync.Once

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

func NewSupervisor(logger *slog.Logger, runner Runner) *Supervisor {
	return &Supervisor{
		runner:        runner,
		logger:        logger,
		checkInterval: defaultCheckInterval,
		bootTimeout:   defaultBootTimeout,
		bootPoll:      defaultBootPoll,
		ready:         make(chan struct{}),
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
	}
}

// Run is the supervision loop. Call it on its own goroutine; it returns only
// after Stop.
func (s *Supervisor) Run() {
	defer close(s.done)

	firstRun := true
	for {
		if s.runner.Probe() {
			s.markHealthy()
		} else {
			s.healthy.Store(false)
			if firstRun {
				s.logger.Info("chat backend not running yet, launching it")
			} else {
				s.logger.Warn("chat backend unhealthy, restarting it")
			}

			s.runner.Terminate()
			if err := s.runner.Start(); err != nil {
				s.logger.Error("chat backend failed to start", slog.Any("error", err))
			} else if s.waitForBoot() {
				s.markHealthy()
			} else {
				s.logger.Error("chat backend did not become healthy after launch",
					slog.Duration("bootTimeout", s.bootTimeout))
			}
		}
		firstRun = false

		select {
		case <-s.stop:
			return
		case <-time.After(s.checkInterval):
		}
	}
}

func (s *Supervisor) markHealthy() {
	s.healthy.Store(true)
	s.readyOnce.Do(func() { close(s.ready) })
}

// waitForBoot polls the probe for up to the boot timeout after a launch.
func (s *Supervisor) waitForBoot() bool {
	deadline := time.Now().Add(s.bootTimeout)
	for time.Now().Before(deadline) {
		if s.runner.Probe() {
			return true
		}
		select {
		case <-s.stop:
			return false
		case <-time.After(s.bootPoll):
		}
	}
	return s.runner.Probe()
}

// WaitUntilFirstHealthy blocks until the backend has been healthy at least
// once, or the timeout passes. The supervisor keeps retrying either way.
func (s *Supervisor) WaitUntilFirstHealthy(timeout time.Duration) bool {
	select {
	case <-s.ready:
		return true
	case <-time.After(timeout):
		return false
	}
}

func (s *Supervisor) IsHealthy() bool {
	return s.healthy.Load()
}

// Stop signals the loop, waits for it to exit, and terminates the managed
// process last.
func (s *Supervisor) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
	<-s.done
	s.runner.Terminate()
}
