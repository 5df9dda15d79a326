package bot

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/dreheist/drebot/internal/event"
	"github.com/dreheist/drebot/internal/game"
	"github.com/dreheist/drebot/internal/workflow"
)

type lifecycleFlow interface {
	EnsureReady() error
}

type sessionFlow interface {
	ObtainFreshSession() error
}

type jobFlow interface {
	Run() error
}

// Orchestrator runs one hosting cycle at a time and owns the dispatch table
// that decides which failures are routine, which force a game restart, and
// which bubble up to the daemon loop.
type Orchestrator struct {
	lifecycle lifecycleFlow
	session   sessionFlow
	job       jobFlow
	proc      *game.Process
	logger    *slog.Logger
}

func NewOrchestrator(logger *slog.Logger, env *workflow.Env) *Orchestrator {
	return &Orchestrator{
		lifecycle: workflow.NewLifecycle(env),
		session:   workflow.NewSession(env),
		job:       workflow.NewJob(env),
		proc:      env.Proc,
		logger:    logger,
	}
}

// SetupOnly brings the game to a playable state without hosting anything.
func (o *Orchestrator) SetupOnly() error {
	return o.lifecycle.EnsureReady()
}

// RunOneCycle executes one full hosting cycle: ensure the game is ready,
// obtain a fresh session, run the job. Returns nil both on success and on
// the expected-by-design abandon cases.
func (o *Orchestrator) RunOneCycle() error {
	if err := o.lifecycle.EnsureReady(); err != nil {
		return err
	}

	if err := o.session.ObtainFreshSession(); err != nil {
		return o.dispatchSessionError(err)
	}

	if err := o.job.Run(); err != nil {
		return o.dispatchJobError(err)
	}

	return nil
}

// dispatchSessionError handles faults from the session switch. Ladder
// exhaustion means the game's menu state is unknown; kill it so the next
// cycle cold boots, and rethrow for the daemon's backoff.
func (o *Orchestrator) dispatchSessionError(err error) error {
	var stateErr *game.UnexpectedStateError
	if errors.As(err, &stateErr) && stateErr.Actual == game.StateUnknown {
		o.logger.Error("recovery ladder exhausted, killing the game")
		event.Send(event.Error(event.Text("session recovery exhausted, restarting the game")))
		if killErr := o.proc.Kill(); killErr != nil {
			o.logger.Error("error killing game after ladder exhaustion", slog.Any("error", killErr))
		}
		return fmt.Errorf("session unrecoverable: %w", err)
	}
	return err
}

// dispatchJobError separates routine lobby outcomes from real faults.
// Nobody joining and a stuck joiner both just abandon the cycle; a standby
// stranger in the lineup does the same. Everything else propagates.
func (o *Orchestrator) dispatchJobError(err error) error {
	var timeoutErr *game.OperationTimeoutError
	if errors.As(err, &timeoutErr) {
		switch timeoutErr.Context {
		case game.TimeoutWaitTeammate, game.TimeoutPlayerJoin:
			o.logger.Info("abandoning cycle", slog.String("reason", string(timeoutErr.Context)))
			event.Send(event.CycleAborted(event.Text("lobby abandoned"), string(timeoutErr.Context)))
			return nil
		}
	}

	var stateErr *game.UnexpectedStateError
	if errors.As(err, &stateErr) && stateErr.Actual == game.StateJobPanelStandby {
		o.logger.Info("standby player in lineup, abandoning cycle")
		event.Send(event.CycleAborted(event.Text("standby player blocked the lobby"), "standby player"))
		return nil
	}

	return err
}

// Shutdown kills the managed game process. Background threads must already
// be stopped by the caller so a supervisor restart cannot race this.
func (o *Orchestrator) Shutdown() {
	if err := o.proc.Kill(); err != nil {
		o.logger.Error("error killing game at shutdown", slog.Any("error", err))
	}
}
