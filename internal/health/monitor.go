package health

import (
	"context"
	"log/slog"
	"time"
)

// Monitor watches for prolonged silence of the outbound chat channel.
// Notifications are edge-triggered: one on the healthy to unhealthy
// transition, one on recovery. A suppression predicate can mute a tick's
// side effects (used while the bot is deliberately paused) without touching
// the elapsed-time accounting.
type Monitor struct {
	CheckInterval       time.Duration
	SilenceThreshold    time.Duration
	LastSend            func() time.Time
	Suppress            func() bool
	OnUnhealthy         func(lastSend time.Time, silence time.Duration)
	OnRecovered         func(silence time.Duration)
	OnFatal             func() // optional, fires every unhealthy tick when FatalWhileUnhealthy is set
	FatalWhileUnhealthy bool
	Logger              *slog.Logger

	healthy bool
	started bool
}

func NewMonitor(logger *slog.Logger, checkInterval, silenceThreshold time.Duration, lastSend func() time.Time) *Monitor {
	return &Monitor{
		CheckInterval:    checkInterval,
		SilenceThreshold: silenceThreshold,
		LastSend:         lastSend,
		Logger:           logger,
		healthy:          true,
	}
}

// Run ticks the monitor at the configured interval until the context ends.
func (m *Monitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.Check(time.Now())
		}
	}
}

// Check evaluates one tick. Exposed separately from Run so the transition
// logic is testable with a synthetic clock.
func (m *Monitor) Check(now time.Time) {
	if m.Suppress != nil && m.Suppress() {
		return
	}

	lastSend := m.LastSend()
	silence := now.Sub(lastSend)
	healthyNow := silence <= m.SilenceThreshold

	switch {
	case !healthyNow && m.healthy:
		m.Logger.Error("outbound channel went silent",
			slog.Time("lastSend", lastSend),
			slog.Duration("silence", silence),
			slog.Duration("threshold", m.SilenceThreshold))
		if m.OnUnhealthy != nil {
			m.OnUnhealthy(lastSend, silence)
		}
	case healthyNow && !m.healthy:
		m.Logger.Info("outbound channel recovered",
			slog.Duration("silence", silence))
		if m.OnRecovered != nil {
			m.OnRecovered(silence)
		}
	}

	m.healthy = healthyNow

	if !healthyNow && m.FatalWhileUnhealthy && m.OnFatal != nil {
		m.OnFatal()
	}
}

// Healthy reports the verdict of the most recent tick.
func (m *Monitor) Healthy() bool {
	return m.healthy
}
