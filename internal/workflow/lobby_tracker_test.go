package workflow

import (
	"testing"
	"time"

	"github.com/dreheist/drebot/internal/game"
)

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func TestTrackerIdenticalSnapshotsDoNotAdvanceTimers(t *testing.T) {
	clock := newFakeClock()
	tracker := NewLobbyTracker(clock.Now)

	snap := game.LobbySnapshot{InLobby: true, Joining: 1, Joined: 1}
	tracker.Update(snap)
	firstChange := tracker.lastChangeTime

	for i := 0; i < 10; i++ {
		clock.Advance(5 * time.Second)
		tracker.Update(snap)
	}

	if !tracker.lastChangeTime.Equal(firstChange) {
		t.Errorf("change timer advanced on identical snapshots: %v -> %v", firstChange, tracker.lastChangeTime)
	}
}

func TestTrackerChangeResetsTimers(t *testing.T) {
	clock := newFakeClock()
	tracker := NewLobbyTracker(clock.Now)

	tracker.Update(game.LobbySnapshot{InLobby: true, Joining: 1})
	clock.Advance(30 * time.Second)
	tracker.Update(game.LobbySnapshot{InLobby: true, Joining: 0, Joined: 1})

	if !tracker.lastChangeTime.Equal(clock.Now()) {
		t.Errorf("change timer not reset on count change")
	}
	if !tracker.lastZeroJoiningTime.Equal(clock.Now()) {
		t.Errorf("zero-joining timer not reset when joining dropped to zero")
	}
}

func TestTrackerWaitTimeout(t *testing.T) {
	clock := newFakeClock()
	tracker := NewLobbyTracker(clock.Now)
	threshold := 3 * time.Minute

	tracker.Update(game.LobbySnapshot{InLobby: true})
	clock.Advance(threshold - time.Second)
	if tracker.HasWaitTimeout(threshold) {
		t.Fatal("wait timeout fired before threshold")
	}

	clock.Advance(2 * time.Second)
	if !tracker.HasWaitTimeout(threshold) {
		t.Fatal("wait timeout did not fire past threshold")
	}

	// someone shows up: the empty-lobby timeout no longer applies
	tracker.Update(game.LobbySnapshot{InLobby: true, Joined: 1})
	if tracker.HasWaitTimeout(threshold) {
		t.Fatal("wait timeout fired with a joined player")
	}
}

func TestTrackerJoiningTimeout(t *testing.T) {
	clock := newFakeClock()
	tracker := NewLobbyTracker(clock.Now)
	threshold := 2 * time.Minute

	tracker.Update(game.LobbySnapshot{InLobby: true, Joining: 1})
	clock.Advance(threshold + time.Second)
	if !tracker.HasJoiningTimeout(threshold) {
		t.Fatal("joining timeout did not fire for a stuck joiner")
	}

	// joiner finishes: joining goes to zero, timer resets
	tracker.Update(game.LobbySnapshot{InLobby: true, Joined: 1})
	if tracker.HasJoiningTimeout(threshold) {
		t.Fatal("joining timeout fired with nobody joining")
	}

	// a new joiner starts fresh
	tracker.Update(game.LobbySnapshot{InLobby: true, Joining: 1, Joined: 1})
	clock.Advance(threshold - time.Second)
	if tracker.HasJoiningTimeout(threshold) {
		t.Fatal("joining timeout fired before threshold for a fresh joiner")
	}
}

func TestTrackerShouldProceedOnFullTeam(t *testing.T) {
	clock := newFakeClock()
	tracker := NewLobbyTracker(clock.Now)

	tracker.Update(game.LobbySnapshot{InLobby: true, Joined: 3})

	// no elapsed time at all: full team with immediate start wins regardless
	if !tracker.ShouldProceed(3, time.Minute, true) {
		t.Fatal("full team with immediate start should proceed")
	}
	if tracker.ShouldProceed(3, time.Minute, false) {
		t.Fatal("full team without immediate start must still wait out the delay")
	}
}

func TestTrackerShouldProceedAfterStableDelay(t *testing.T) {
	clock := newFakeClock()
	tracker := NewLobbyTracker(clock.Now)
	delay := 15 * time.Second

	tracker.Update(game.LobbySnapshot{InLobby: true, Joined: 1})
	if tracker.ShouldProceed(3, delay, true) {
		t.Fatal("proceeded before the stability delay")
	}

	clock.Advance(delay + time.Second)
	if !tracker.ShouldProceed(3, delay, true) {
		t.Fatal("did not proceed after a stable lineup past the delay")
	}

	// someone mid-join blocks the start
	tracker.Update(game.LobbySnapshot{InLobby: true, Joined: 1, Joining: 1})
	clock.Advance(delay + time.Second)
	if tracker.ShouldProceed(3, delay, true) {
		t.Fatal("proceeded while a player was still joining")
	}
}
