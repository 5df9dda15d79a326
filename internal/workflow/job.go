package workflow

import (
	"errors"
	"log/slog"
	"time"

	"github.com/dreheist/drebot/internal/event"
	"github.com/dreheist/drebot/internal/game"
)

const (
	respawnPollInterval = 5 * time.Second
	panelPollInterval   = 2 * time.Second

	// job-start confirmation poll after pressing start
	startConfirmPolls    = 3
	startConfirmInterval = 100 * time.Millisecond

	// post-stall verification
	postStallSettle     = 10 * time.Second
	scoreboardWait      = 15 * time.Second
	scoreboardFullDelay = 20 * time.Second

	// retry pad on a hung character land before giving up
	landRetryWait = 30 * time.Second
)

// Job hosts one full run of the contract: respawn, walk to the trigger,
// open the setup panel, fill the lobby, start, and apply the two stalls
// that keep the host's session alive.
type Job struct {
	env *Env
}

func NewJob(env *Env) *Job {
	return &Job{env: env}
}

// Run executes one job cycle end to end.
func (j *Job) Run() error {
	if err := j.waitForRespawn(); err != nil {
		return err
	}
	if err := j.walkToTrigger(); err != nil {
		return err
	}
	if err := j.openPanel(); err != nil {
		return err
	}
	if err := j.runLobby(); err != nil {
		// The abandon-class failures leave the setup panel up; back out so
		// the next cycle starts from freemode.
		if isLobbyAbandon(err) {
			j.env.Exec.ExitJobPanelFromSecondPage()
		}
		return err
	}
	if err := j.afterStart(); err != nil {
		return err
	}
	return j.verifyAfterStall()
}

// isLobbyAbandon reports whether an error is one of the expected lobby
// outcomes: nobody joined, a joiner got stuck, or a standby stranger
// appeared in the lineup.
func isLobbyAbandon(err error) bool {
	var timeoutErr *game.OperationTimeoutError
	if errors.As(err, &timeoutErr) {
		return timeoutErr.Context == game.TimeoutWaitTeammate || timeoutErr.Context == game.TimeoutPlayerJoin
	}

	var stateErr *game.UnexpectedStateError
	return errors.As(err, &stateErr) && stateErr.Actual == game.StateJobPanelStandby
}

// waitForRespawn waits until the character is standing in the agency after
// the session switch.
func (j *Job) waitForRespawn() error {
	e := j.env

	return e.waitFor(func() (bool, error) {
		dead, err := e.Screen.IsDead()
		if err != nil {
			return false, err
		}
		if dead {
			e.Exec.Confirm()
			return false, nil
		}
		return e.Screen.IsOnlineFreemode()
	}, time.Duration(e.Cfg.Job.RespawnTimeoutSeconds)*time.Second, respawnPollInterval, game.TimeoutRespawn)
}

// walkToTrigger replays the fixed bed-to-trigger route, then walks the
// spiral search pattern if the trigger prompt did not appear where expected.
func (j *Job) walkToTrigger() error {
	e := j.env

	e.Exec.WalkBedToJobTrigger()

	onTrigger, err := j.triggerPromptVisible()
	if err != nil {
		return err
	}

	for step := 0; !onTrigger; step++ {
		if !e.Exec.SearchStep(step) {
			return &game.ElementNotFoundError{Element: game.ElementJobTriggerZone}
		}
		onTrigger, err = j.triggerPromptVisible()
		if err != nil {
			return err
		}
	}

	return nil
}

// triggerPromptVisible checks for the corona prompt of the job trigger zone.
// The prompt has its own marker text; an alert dialog popping up mid-walk must
// not read as standing on the trigger.
func (j *Job) triggerPromptVisible() (bool, error) {
	return j.env.Screen.IsJobMarker()
}

// openPanel enters the trigger zone prompt and waits for the setup panel.
func (j *Job) openPanel() error {
	e := j.env

	e.Exec.Confirm()

	err := e.waitFor(func() (bool, error) {
		return e.Screen.IsJobSetupPanel()
	}, time.Duration(e.Cfg.Job.OpenTimeoutSeconds)*time.Second, panelPollInterval, game.TimeoutJobPanelOpen)
	if err != nil {
		return err
	}

	e.Exec.SetupJobPanel()
	e.notify(e.Cfg.Messages.OpenJobPanel)

	return nil
}

// runLobby is the lobby phase loop: poll the lineup, enforce the hard
// preconditions, fire timeouts, and start the job once the tracker says so.
func (j *Job) runLobby() error {
	e := j.env
	tracker := NewLobbyTracker(e.clock)

	panelTimeout := time.Duration(e.Cfg.Job.PanelTimeoutSeconds) * time.Second
	joiningKick := time.Duration(e.Cfg.Job.JoiningKickSeconds) * time.Second
	startDelay := time.Duration(e.Cfg.Job.StartDelaySeconds) * time.Second

	teamFullNotified := false

	for {
		snap, err := e.Screen.JobSetupStatus()
		if err != nil {
			return err
		}

		if !snap.InLobby {
			return &game.ElementNotFoundError{Element: game.ElementJobSetupPanel}
		}
		if snap.Standby > 0 {
			// A standby row means matchmaking slotted a stranger in; the
			// lobby cannot start cleanly from here.
			return game.NewUnexpectedState(game.StateJobPanelStandby, game.StateJobPanelSecond)
		}

		if !teamFullNotified && snap.Joining+snap.Joined >= e.Cfg.Job.FullTeamSize {
			e.notify(e.Cfg.Messages.TeamFull)
			teamFullNotified = true
		}

		if tracker.HasWaitTimeout(panelTimeout) {
			e.notify(e.Cfg.Messages.WaitPlayerTimeout)
			return &game.OperationTimeoutError{Context: game.TimeoutWaitTeammate}
		}
		if tracker.HasJoiningTimeout(joiningKick) {
			e.notify(e.Cfg.Messages.JoiningPlayerKick)
			return &game.OperationTimeoutError{Context: game.TimeoutPlayerJoin}
		}

		tracker.Update(snap)

		if tracker.ShouldProceed(e.Cfg.Job.FullTeamSize, startDelay, e.Cfg.Job.StartOnFullTeam) {
			started, err := j.tryStart(snap)
			if err != nil {
				return err
			}
			if started {
				event.Send(event.JobStarted(event.Text("job is starting"), snap.Joined))
				return nil
			}
		}

		e.sleep(e.Cfg.CheckLoop())
	}
}

// tryStart presses start and confirms the launch actually took. A dropped
// start press leaves the panel up; the caller keeps looping in that case.
func (j *Job) tryStart(snap game.LobbySnapshot) (bool, error) {
	e := j.env

	e.Logger.Info("starting the job",
		slog.Int("joined", snap.Joined),
		slog.Int("joining", snap.Joining))
	e.notify(e.Cfg.Messages.JobStarting)

	e.Exec.Confirm()
	e.sleep(500 * time.Millisecond)

	for i := 0; i < startConfirmPolls; i++ {
		starting, err := e.Screen.IsJobStarting()
		if err != nil {
			return false, err
		}
		if starting {
			return true, nil
		}
		e.sleep(startConfirmInterval)
	}

	if err := e.confirmWarningPage(); err != nil {
		return false, err
	}

	onPanel, err := e.Screen.IsJobSetupPanel()
	if err != nil {
		return false, err
	}
	if !onPanel {
		return false, &game.ElementNotFoundError{Element: game.ElementJobSetupPanel}
	}

	return false, nil
}

// afterStart performs the two scheduled stalls: one right after the panel
// closes, one right after the mission visibly begins. Skipping either lets
// the game apply the host penalty the stalls exist to suppress.
func (j *Job) afterStart() error {
	e := j.env
	exitTimeout := time.Duration(e.Cfg.Job.ExitTimeoutSeconds) * time.Second

	err := e.waitFor(func() (bool, error) {
		onPanel, err := e.Screen.IsJobSetupPanel()
		if err != nil {
			return false, err
		}
		return !onPanel, nil
	}, exitTimeout, panelPollInterval, game.TimeoutJobPanelClose)
	if err != nil {
		return err
	}

	e.sleep(e.Cfg.DelaySuspend())
	e.desyncStall()

	inMission := func() (bool, error) { return e.Screen.IsInMission() }

	err = e.waitFor(inMission, exitTimeout, panelPollInterval, game.TimeoutJobStart)
	if err != nil {
		// One more stall plus a grace wait catches the slow character land.
		e.desyncStall()
		e.sleep(landRetryWait)

		landed, landErr := inMission()
		if landErr != nil {
			return landErr
		}
		if !landed {
			return &game.OperationTimeoutError{Context: game.TimeoutCharacterLand}
		}
	}

	e.sleep(postStallSettle + e.Cfg.DelaySuspend())
	e.desyncStall()

	return nil
}

// verifyAfterStall checks that the second stall did not tear the mission
// down. If it did, the scoreboard shows up; announce it and wait out the
// transition so the next cycle starts from freemode.
func (j *Job) verifyAfterStall() error {
	e := j.env

	e.sleep(postStallSettle)

	inMission, err := e.Screen.IsInMission()
	if err != nil {
		return err
	}
	if inMission {
		return nil
	}

	sawScoreboard := false
	waited := time.Duration(0)
	for waited < scoreboardWait && !sawScoreboard {
		sawScoreboard, err = e.Screen.IsScoreboard()
		if err != nil {
			return err
		}
		if !sawScoreboard {
			e.sleep(panelPollInterval)
			waited += panelPollInterval
		}
	}

	if sawScoreboard {
		e.Logger.Warn("scoreboard detected after stall, job ended early")
		e.notify(e.Cfg.Messages.ScoreboardDetected)
		if remainder := scoreboardFullDelay - waited; remainder > 0 {
			e.sleep(remainder)
		}
	}

	return nil
}
