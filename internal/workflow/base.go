package workflow

import (
	"log/slog"
	"time"

	"github.com/dreheist/drebot/internal/config"
	"github.com/dreheist/drebot/internal/game"
	"github.com/dreheist/drebot/internal/input"
)

// Messenger posts a status message to the player-facing chat channel.
// Delivery is best-effort; workflows log failures and move on.
type Messenger interface {
	SendGroupMessage(message string) error
}

// Env bundles the collaborators every workflow needs. The clock and sleep
// hooks exist so the timing-sensitive loops are testable without wall time.
type Env struct {
	Logger *slog.Logger
	Screen *game.Screen
	Exec   *input.Executor
	Proc   *game.Process
	Chat   Messenger
	Cfg    *config.DrebotCfg

	clock func() time.Time
	sleep func(time.Duration)
}

func NewEnv(logger *slog.Logger, screen *game.Screen, exec *input.Executor, proc *game.Process, chat Messenger, cfg *config.DrebotCfg) *Env {
	return &Env{
		Logger: logger,
		Screen: screen,
		Exec:   exec,
		Proc:   proc,
		Chat:   chat,
		Cfg:    cfg,
		clock:  time.Now,
		sleep:  time.Sleep,
	}
}

// notify sends a chat message, swallowing channel failures.
func (e *Env) notify(message string) {
	if e.Chat == nil || message == "" {
		return
	}
	if err := e.Chat.SendGroupMessage(message); err != nil {
		cerr := &game.ChannelError{Context: "group message", Err: err}
		e.Logger.Warn("chat notification failed", slog.Any("error", cerr))
	}
}

// waitFor polls check until it reports true or the bounded wait elapses, in
// which case a typed timeout with the given context is returned. Errors from
// check abort the wait immediately.
func (e *Env) waitFor(check func() (bool, error), timeout, interval time.Duration, tctx game.TimeoutContext) error {
	deadline := e.clock().Add(timeout)
	for {
		ok, err := check()
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if e.clock().After(deadline) {
			return &game.OperationTimeoutError{Context: tctx}
		}
		e.sleep(interval)
	}
}

// confirmWarningPage dismisses a blocking alert dialog if one is up.
func (e *Env) confirmWarningPage() error {
	warning, err := e.Screen.IsWarningPage()
	if err != nil {
		return err
	}
	if warning {
		e.Logger.Info("dismissing warning page")
		e.Exec.Confirm()
	}
	return nil
}

// ensurePauseMenuOpen opens the pause menu unless it is already showing.
func (e *Env) ensurePauseMenuOpen() (bool, error) {
	open, err := e.Screen.IsPauseMenuOpen()
	if err != nil {
		return false, err
	}
	if open {
		return true, nil
	}

	e.Exec.OpenPauseMenu()

	return e.Screen.IsPauseMenuOpen()
}

// desyncStall freezes the game process long enough for its network peers to
// drop it, then lets it resume. The game reacts by migrating the player into
// a fresh solo context instead of applying the pending penalty.
func (e *Env) desyncStall() {
	e.Logger.Info("performing desync stall", slog.Duration("duration", e.Cfg.SuspendTime()))
	if err := e.Proc.SuspendFor(e.Cfg.SuspendTime()); err != nil {
		e.Logger.Error("desync stall failed", slog.Any("error", err))
	}
}
