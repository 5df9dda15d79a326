package health

import (
	"io"
	"log/slog"
	"testing"
	"time"
)

func testMonitor(lastSend *time.Time) *Monitor {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewMonitor(logger, time.Minute, 10*time.Minute, func() time.Time { return *lastSend })
}

func TestMonitorFiresUnhealthyEdgeOnce(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	lastSend := base
	m := testMonitor(&lastSend)

	var unhealthyFires, recoveredFires int
	m.OnUnhealthy = func(time.Time, time.Duration) { unhealthyFires++ }
	m.OnRecovered = func(time.Duration) { recoveredFires++ }

	// healthy ticks
	m.Check(base.Add(5 * time.Minute))
	if unhealthyFires != 0 {
		t.Fatal("unhealthy fired while within threshold")
	}

	// silence exceeds the threshold: exactly one notification per stretch
	for i := 0; i < 5; i++ {
		m.Check(base.Add(time.Duration(11+i) * time.Minute))
	}
	if unhealthyFires != 1 {
		t.Errorf("expected exactly one unhealthy notification, got %d", unhealthyFires)
	}
	if m.Healthy() {
		t.Error("monitor should report unhealthy")
	}

	// a send goes through: one recovery notification
	lastSend = base.Add(16 * time.Minute)
	m.Check(base.Add(17 * time.Minute))
	m.Check(base.Add(18 * time.Minute))
	if recoveredFires != 1 {
		t.Errorf("expected exactly one recovery notification, got %d", recoveredFires)
	}
	if !m.Healthy() {
		t.Error("monitor should report healthy again")
	}

	// a second silent stretch fires again
	m.Check(base.Add(30 * time.Minute))
	if unhealthyFires != 2 {
		t.Errorf("expected a second unhealthy notification, got %d", unhealthyFires)
	}
}

func TestMonitorSuppressionSkipsSideEffects(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	lastSend := base
	m := testMonitor(&lastSend)

	suppressed := true
	m.Suppress = func() bool { return suppressed }

	fired := 0
	m.OnUnhealthy = func(time.Time, time.Duration) { fired++ }

	m.Check(base.Add(20 * time.Minute))
	if fired != 0 {
		t.Fatal("suppressed tick produced side effects")
	}
	if !m.Healthy() {
		t.Fatal("suppressed tick must not change the health verdict")
	}

	// unsuppressed tick sees the same accumulated silence and fires
	suppressed = false
	m.Check(base.Add(21 * time.Minute))
	if fired != 1 {
		t.Error("elapsed-time accounting should survive suppression")
	}
}

func TestMonitorFatalCallback(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	lastSend := base
	m := testMonitor(&lastSend)

	fatals := 0
	m.FatalWhileUnhealthy = true
	m.OnFatal = func() { fatals++ }

	m.Check(base.Add(5 * time.Minute))
	if fatals != 0 {
		t.Fatal("fatal fired while healthy")
	}

	m.Check(base.Add(11 * time.Minute))
	m.Check(base.Add(12 * time.Minute))
	if fatals != 2 {
		t.Errorf("fatal should fire on every unhealthy tick, got %d", fatals)
	}
}
