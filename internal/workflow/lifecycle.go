package workflow

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dreheist/drebot/internal/event"
	"github.com/dreheist/drebot/internal/game"
)

const (
	windowPollInterval = 10 * time.Second
	menuPollInterval   = 5 * time.Second
	onlinePollInterval = 10 * time.Second

	// settle time after the window first appears before input is trusted
	postWindowSettle = 5 * time.Second

	// one-time stall during a hung online load, applied after this much waiting
	onlineLoadStallAfter = 60 * time.Second

	storyNavAttempts  = 3
	onlineNavAttempts = 3
	navRecoveryBacks  = 3
)

// Lifecycle walks the game from nothing to a playable online session:
// launch, main menu, story mode, invite-only online.
type Lifecycle struct {
	env *Env
}

func NewLifecycle(env *Env) *Lifecycle {
	return &Lifecycle{env: env}
}

// EnsureReady makes sure the game is running and parked in a playable state.
// A running game is just re-attached and resumed; otherwise the full cold
// boot sequence runs, with a bounded number of restart attempts.
func (l *Lifecycle) EnsureReady() error {
	e := l.env

	if e.Proc.IsStarted() {
		e.Proc.UpdateInfo()
		// The previous cycle may have died mid-stall; a resume on a
		// non-suspended process is a no-op.
		if err := e.Proc.Resume(); err != nil {
			e.Logger.Debug("resume on attach", slog.Any("error", err))
		}
		return nil
	}

	var err error
	for attempt := 1; attempt <= e.Cfg.Game.RestartsBeforeGivingUp; attempt++ {
		e.Logger.Info("cold booting the game", slog.Int("attempt", attempt))
		if err = l.coldBoot(); err == nil {
			break
		}
		e.Logger.Error("cold boot failed", slog.Int("attempt", attempt), slog.Any("error", err))
	}
	if err != nil {
		return fmt.Errorf("game did not come up after %d restarts: %w", e.Cfg.Game.RestartsBeforeGivingUp, err)
	}

	event.Send(event.GameLaunched(event.Text("game is up at the main menu"), e.Proc.PID()))

	if err := l.EnterStoryMode(); err != nil {
		return err
	}
	return l.EnterOnline()
}

// coldBoot kills any remnant of the game, relaunches it through the
// storefront and waits for the main menu. The second kill catches the
// crash-reporter child the first one tends to leave behind.
func (l *Lifecycle) coldBoot() error {
	e := l.env

	if err := e.Proc.Kill(); err != nil {
		return err
	}
	e.sleep(20 * time.Second)
	if err := e.Proc.Kill(); err != nil {
		return err
	}

	if err := e.Proc.Launch(e.Cfg.Game.LaunchURL); err != nil {
		return err
	}

	err := e.waitFor(func() (bool, error) {
		return e.Proc.UpdateInfo(), nil
	}, time.Duration(e.Cfg.Game.WindowTimeout)*time.Second, windowPollInterval, game.TimeoutWindowStartup)
	if err != nil {
		return err
	}

	e.sleep(postWindowSettle)
	e.Proc.UpdateInfo()

	return l.waitForMainMenu()
}

// waitForMainMenu polls for the landing menu, dismissing the subscription ad
// page the game sometimes interposes.
func (l *Lifecycle) waitForMainMenu() error {
	e := l.env

	return e.waitFor(func() (bool, error) {
		menu, err := e.Screen.IsMainMenu()
		if err != nil {
			return false, err
		}
		if menu {
			return true, nil
		}

		ad, err := e.Screen.IsSubscriptionAd()
		if err != nil {
			return false, err
		}
		if ad {
			e.Logger.Info("dismissing subscription ad page")
			e.Exec.Confirm()
		}
		return false, nil
	}, time.Duration(e.Cfg.Game.MenuTimeout)*time.Second, menuPollInterval, game.TimeoutMainMenuLoad)
}

// EnterStoryMode selects story mode from the landing menu. Going online
// directly from the menu lands in a public session; loading the story world
// first is what makes the later invite-only switch possible.
func (l *Lifecycle) EnterStoryMode() error {
	e := l.env

	loggedOut, err := e.Screen.IsLoggedOut()
	if err != nil {
		return err
	}
	if loggedOut {
		return game.NewUnexpectedState(game.StateOffline, game.StateMainMenu)
	}

	onStoryPage := false
	for attempt := 0; attempt < storyNavAttempts && !onStoryPage; attempt++ {
		e.Exec.NextPage()
		onStoryPage, err = e.Screen.IsStoryModePage()
		if err != nil {
			return err
		}
	}
	if !onStoryPage {
		return &game.ElementNotFoundError{Element: game.ElementStoryModeMenu}
	}

	e.Exec.Confirm()

	return e.waitFor(func() (bool, error) {
		loading, err := e.Screen.IsLoadingScreen()
		if err != nil {
			return false, err
		}
		if loading {
			return false, nil
		}
		menu, err := e.Screen.IsMainMenu()
		if err != nil {
			return false, err
		}
		return !menu, nil
	}, time.Duration(e.Cfg.Game.StoryTimeout)*time.Second, menuPollInterval, game.TimeoutStoryModeLoad)
}

// EnterOnline switches from story mode into an invite-only online session
// through the pause menu.
func (l *Lifecycle) EnterOnline() error {
	e := l.env

	onMenu := false
	for attempt := 0; attempt < onlineNavAttempts && !onMenu; attempt++ {
		if attempt > 0 {
			// knock the menu back to a known page before retrying
			for i := 0; i < navRecoveryBacks; i++ {
				e.Exec.Back()
			}
		}

		open, err := e.ensurePauseMenuOpen()
		if err != nil {
			return err
		}
		if !open {
			continue
		}

		e.Exec.NavigateToOnlineTab()
		onMenu, err = e.Screen.IsGoOnlineMenu()
		if err != nil {
			return err
		}
	}
	if !onMenu {
		return &game.ElementNotFoundError{Element: game.ElementOnlineModeTab}
	}

	e.Exec.EnterInviteOnlySession()

	return l.waitForOnline()
}

// waitForOnline watches the long online load, handling the screens that can
// interrupt it: alert dialogs get confirmed, a corrupted-settings screen or a
// fall back to the main menu are terminal.
func (l *Lifecycle) waitForOnline() error {
	e := l.env

	stalled := false
	start := e.clock()

	return e.waitFor(func() (bool, error) {
		bad, err := e.Screen.IsBadSettings()
		if err != nil {
			return false, err
		}
		if bad {
			return false, game.NewUnexpectedState(game.StateBadSettings, game.StateOnlineFreemode)
		}

		if err := e.confirmWarningPage(); err != nil {
			return false, err
		}

		menu, err := e.Screen.IsMainMenu()
		if err != nil {
			return false, err
		}
		if menu {
			return false, game.NewUnexpectedState(game.StateMainMenu, game.StateOnlineFreemode)
		}

		online, err := e.Screen.IsOnlineFreemode()
		if err != nil {
			return false, err
		}
		if online {
			return true, nil
		}

		// A load that hangs past a minute usually sits on a dead cloud
		// handshake; one stall kicks it loose. Applied at most once.
		if !stalled && e.clock().Sub(start) > onlineLoadStallAfter {
			stalled = true
			e.desyncStall()
		}

		return false, nil
	}, time.Duration(e.Cfg.Game.OnlineTimeout)*time.Second, onlinePollInterval, game.TimeoutJoinOnline)
}
