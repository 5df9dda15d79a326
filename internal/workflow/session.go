package workflow

import (
	"log/slog"
	"time"

	"github.com/dreheist/drebot/internal/event"
	"github.com/dreheist/drebot/internal/game"
)

const sessionSwitchTimeout = 120 * time.Second

// Rung is one step of the recovery ladder. Steps are ordered by
// intrusiveness and tried front to back; a successful transition resets the
// walk to the front on the next invocation.
type Rung interface {
	Name() string
	Attempt(env *Env)
}

type noopRung struct{}

func (noopRung) Name() string     { return "do nothing" }
func (noopRung) Attempt(env *Env) {}

// backOutRung hammers back to unwind whatever menu stack the game is stuck in.
type backOutRung struct {
	presses int
}

func (r backOutRung) Name() string { return "back out of menus" }
func (r backOutRung) Attempt(env *Env) {
	for i := 0; i < r.presses; i++ {
		env.Exec.Back()
	}
}

// backConfirmRung alternates back and confirm, which also clears prompts
// that bare backs cannot dismiss.
type backConfirmRung struct {
	rounds int
}

func (r backConfirmRung) Name() string { return "back and confirm" }
func (r backConfirmRung) Attempt(env *Env) {
	for i := 0; i < r.rounds; i++ {
		env.Exec.Back()
		env.Exec.Confirm()
	}
}

// desyncRung is the destructive last resort: freeze the process so its
// session drops, forcing the game back to a state the cheaper rungs can
// navigate from.
type desyncRung struct{}

func (desyncRung) Name() string { return "desync stall" }
func (desyncRung) Attempt(env *Env) {
	env.desyncStall()
	env.sleep(5 * time.Second)
}

func defaultLadder(enableDesync bool) []Rung {
	ladder := []Rung{
		noopRung{},
		backOutRung{presses: 7},
		backConfirmRung{rounds: 4},
	}
	if enableDesync {
		ladder = append(ladder, desyncRung{})
	}
	return ladder
}

// Session obtains a fresh invite-only session from whatever menu state the
// previous cycle left behind.
type Session struct {
	env    *Env
	ladder []Rung
}

func NewSession(env *Env) *Session {
	return &Session{
		env:    env,
		ladder: defaultLadder(env.Cfg.Session.EnableDesyncRecovery),
	}
}

// ObtainFreshSession tries the session switch, walking the recovery ladder
// between attempts. Ladder exhaustion means the game's menu state is beyond
// reasoning about; the caller treats that as fatal.
func (s *Session) ObtainFreshSession() error {
	err := s.runLadder(s.trySwitch)
	if err == nil {
		event.Send(event.SessionObtained(event.Text("entered a fresh invite-only session")))
	}
	return err
}

func (s *Session) runLadder(try func() (bool, error)) error {
	ok, err := try()
	if err != nil {
		return err
	}
	if ok {
		return nil
	}

	for _, rung := range s.ladder {
		s.env.Logger.Warn("session switch failed, walking recovery ladder",
			slog.String("rung", rung.Name()))
		rung.Attempt(s.env)

		ok, err = try()
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}

	return game.NewUnexpectedState(game.StateUnknown, game.StateOnlineFreemode, game.StateInMission)
}

// trySwitch performs one session-switch attempt: pause menu, switch-session
// entry, invite-only pick, then the load wait. A false return means the
// navigation lost its way and a recovery rung should run; errors are real
// faults.
func (s *Session) trySwitch() (bool, error) {
	e := s.env

	if !e.Proc.IsStarted() {
		return false, game.NewUnexpectedState(game.StateOff, game.StateRunning)
	}

	if err := e.confirmWarningPage(); err != nil {
		return false, err
	}

	open, err := e.ensurePauseMenuOpen()
	if err != nil {
		return false, err
	}
	if !open {
		return false, nil
	}

	e.Exec.NavigateToSwitchSession()

	onMenu, err := e.Screen.IsGoOnlineMenu()
	if err != nil {
		return false, err
	}
	if !onMenu {
		return false, nil
	}

	e.Exec.EnterInviteOnlySession()

	err = e.waitFor(func() (bool, error) {
		if err := e.confirmWarningPage(); err != nil {
			return false, err
		}
		return e.Screen.IsOnlineFreemode()
	}, sessionSwitchTimeout, onlinePollInterval, game.TimeoutJoinOnline)
	if err != nil {
		return false, err
	}

	return true, nil
}
