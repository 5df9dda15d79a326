package workflow

import (
	"time"

	"github.com/dreheist/drebot/internal/game"
)

// LobbyTracker converts the noisy periodic lobby readings into elapsed-time
// signals. Timers only move when a genuinely new reading arrives, so feeding
// it the same snapshot every tick is a no-op.
type LobbyTracker struct {
	clock func() time.Time

	last game.LobbySnapshot

	startTime           time.Time
	lastChangeTime      time.Time
	lastZeroJoiningTime time.Time
}

func NewLobbyTracker(clock func() time.Time) *LobbyTracker {
	if clock == nil {
		clock = time.Now
	}
	now := clock()
	return &LobbyTracker{
		clock:               clock,
		startTime:           now,
		lastChangeTime:      now,
		lastZeroJoiningTime: now,
	}
}

// Update folds one reading into the timers. Any change of the structural
// counts resets the change timer; joining dropping to zero additionally
// resets the zero-joining timer.
func (t *LobbyTracker) Update(snap game.LobbySnapshot) {
	if snap.Joining != t.last.Joining || snap.Joined != t.last.Joined || snap.Standby != t.last.Standby {
		t.lastChangeTime = t.clock()
		if snap.Joining == 0 {
			t.lastZeroJoiningTime = t.clock()
		}
	}
	t.last = snap
}

// HasWaitTimeout reports that nobody has shown up at all for longer than the
// threshold since the lobby opened.
func (t *LobbyTracker) HasWaitTimeout(threshold time.Duration) bool {
	return t.last.Joined == 0 && t.last.Joining == 0 && t.clock().Sub(t.startTime) > threshold
}

// HasJoiningTimeout reports that someone has been stuck in the joining state
// for longer than the threshold.
func (t *LobbyTracker) HasJoiningTimeout(threshold time.Duration) bool {
	return t.last.Joining > 0 && t.clock().Sub(t.lastZeroJoiningTime) > threshold
}

// ShouldProceed decides whether to start the job now: either the team is
// full and immediate start is enabled, or at least one player is settled,
// nobody is mid-join, and the lineup has been stable past the normal delay.
func (t *LobbyTracker) ShouldProceed(fullTeamSize int, normalDelay time.Duration, startWhenFull bool) bool {
	if startWhenFull && t.last.Joined >= fullTeamSize {
		return true
	}
	return t.last.Joined > 0 && t.last.Joining == 0 && t.clock().Sub(t.lastChangeTime) > normalDelay
}
