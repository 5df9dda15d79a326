package input

import (
	"log/slog"
	"time"

	"github.com/dreheist/drebot/internal/config"
	"github.com/dreheist/drebot/internal/utils"
)

// Post-gesture settle delays in milliseconds. The game animates every menu
// transition; issuing the next input before the animation finishes drops it.
const (
	settleConfirmMs  = 1000
	settleBackMs     = 1000
	settleDpadMs     = 500
	settlePageMs     = 2000
	settleMenuMs     = 2000
	tapHoldMs        = 80
	onlineTabPresses = 5
	sessionUpPresses = 5
)

// Executor composes pad primitives into the compound gestures the workflows
// speak. Every gesture is a fixed timeline; sensor feedback is only consulted
// between gestures, by the caller.
type Executor struct {
	pad    Pad
	walk   config.WalkCfg
	logger *slog.Logger
}

func NewExecutor(logger *slog.Logger, pad Pad, walk config.WalkCfg) *Executor {
	return &Executor{pad: pad, walk: walk, logger: logger}
}

func (e *Executor) tap(b Button, settleMs int) {
	if err := e.pad.PressButton(b); err != nil {
		e.logger.Warn("press failed", slog.Int("button", int(b)), slog.Any("error", err))
	}
	time.Sleep(tapHoldMs * time.Millisecond)
	if err := e.pad.ReleaseButton(b); err != nil {
		e.logger.Warn("release failed", slog.Int("button", int(b)), slog.Any("error", err))
	}
	utils.Sleep(settleMs)
}

// holdMove pushes a movement axis for an exact duration. No jitter here: the
// walk timelines encode distances.
func (e *Executor) holdMove(a Axis, value float64, ms int) {
	if err := e.pad.SetAxis(a, value); err != nil {
		e.logger.Warn("axis set failed", slog.Int("axis", int(a)), slog.Any("error", err))
	}
	time.Sleep(time.Duration(ms) * time.Millisecond)
	if err := e.pad.SetAxis(a, 0); err != nil {
		e.logger.Warn("axis release failed", slog.Int("axis", int(a)), slog.Any("error", err))
	}
}

func (e *Executor) Confirm()       { e.tap(ButtonConfirm, settleConfirmMs) }
func (e *Executor) Back()          { e.tap(ButtonBack, settleBackMs) }
func (e *Executor) Up()            { e.tap(ButtonUp, settleDpadMs) }
func (e *Executor) Down()          { e.tap(ButtonDown, settleDpadMs) }
func (e *Executor) Left()          { e.tap(ButtonLeft, settleDpadMs) }
func (e *Executor) Right()         { e.tap(ButtonRight, settleDpadMs) }
func (e *Executor) NextPage()      { e.tap(ButtonNextPage, settlePageMs) }
func (e *Executor) PrevPage()      { e.tap(ButtonPrevPage, settlePageMs) }
func (e *Executor) OpenPauseMenu() { e.tap(ButtonMenu, settleMenuMs) }

// NavigateToOnlineTab pages through the main menu to the online tab and
// selects the session picker entry.
func (e *Executor) NavigateToOnlineTab() {
	for i := 0; i < onlineTabPresses; i++ {
		e.NextPage()
	}
	e.Confirm()
	e.Up()
	e.Confirm()
}

// NavigateToSwitchSession walks the pause menu to the session switch entry.
func (e *Executor) NavigateToSwitchSession() {
	e.NextPage()
	e.Confirm()
	for i := 0; i < sessionUpPresses; i++ {
		e.Up()
	}
	e.Confirm()
}

// EnterInviteOnlySession picks the invite-only entry from the session list
// and confirms through the follow-up prompt.
func (e *Executor) EnterInviteOnlySession() {
	e.Down()
	e.Confirm()
	utils.Sleep(1000)
	e.Confirm()
}

// SetupJobPanel configures the lineup page: host slot, matchmaking off.
func (e *Executor) SetupJobPanel() {
	e.Up()
	e.Confirm()
	e.Left()
	e.Up()
}

// ExitJobPanelFromFirstPage backs out of the setup panel and waits for the
// freemode camera to return.
func (e *Executor) ExitJobPanelFromFirstPage() {
	e.Back()
	e.Confirm()
	utils.Sleep(4000)
}

// ExitJobPanelFromSecondPage backs out from the lineup page.
func (e *Executor) ExitJobPanelFromSecondPage() {
	e.Back()
	e.Back()
	e.Confirm()
	utils.Sleep(4000)
}

// WalkBedToJobTrigger replays the fixed route from the agency bed spawn to
// the job trigger zone.
func (e *Executor) WalkBedToJobTrigger() {
	e.holdMove(AxisMoveY, -1, e.walk.LeaveBedMs)
	e.holdMove(AxisMoveX, 1, e.walk.CrossAisleMs)
	e.holdMove(AxisMoveY, -1, e.walk.ToDoorwayMs)
	e.holdMove(AxisMoveX, -1, e.walk.DownCorridorMs)
}

// searchPattern is the expanding square walked when the trigger zone was not
// where the fixed route ended: one step right, one up, two left, two down,
// three right, three up.
var searchPattern = []struct {
	axis  Axis
	value float64
	steps int
}{
	{AxisMoveX, 1, 1},
	{AxisMoveY, -1, 1},
	{AxisMoveX, -1, 2},
	{AxisMoveY, 1, 2},
	{AxisMoveX, 1, 3},
	{AxisMoveY, -1, 3},
}

// SearchStep performs the i-th leg of the spiral search walk. Returns false
// once the pattern is exhausted.
func (e *Executor) SearchStep(i int) bool {
	if i < 0 || i >= len(searchPattern) {
		return false
	}
	leg := searchPattern[i]
	e.holdMove(leg.axis, leg.value, e.walk.SearchStepMs*leg.steps)
	return true
}

// ReleaseAll forwards to the pad; used on pause and at shutdown.
func (e *Executor) ReleaseAll() {
	if err := e.pad.ReleaseAll(); err != nil {
		e.logger.Warn("release all failed", slog.Any("error", err))
	}
}
