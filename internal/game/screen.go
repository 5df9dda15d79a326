package game

import (
	"errors"
	"log/slog"
	"strings"
)

// ErrNoTarget is returned by a Sensor when it has no valid capture target,
// typically because the game window is gone. Callers must treat this as
// distinct from "screen not recognized".
var ErrNoTarget = errors.New("sensor has no capture target")

// Sensor recognizes text inside a relative (0..1) region of the game window.
type Sensor interface {
	Capture(left, top, width, height float64, includeFrame bool) (string, error)
}

// Region is a rectangle in window-relative coordinates.
type Region struct {
	Left, Top, Width, Height float64
}

var (
	regionFull       = Region{0, 0, 1, 1}
	regionTopHalf    = Region{0, 0, 1, 0.5}
	regionMenuTabs   = Region{0, 0.1, 0.5, 0.3}
	regionCenter     = Region{0.25, 0, 0.5, 0.6}
	regionRightPanel = Region{0.5, 0, 0.5, 1}
	regionBottomBar  = Region{0, 0.8, 1, 0.2}
	regionTopBanner  = Region{0, 0, 1, 0.2}
	regionInfoCorner = Region{0.7, 0.7, 0.3, 0.3}
)

// pattern binds a predicate to a fixed keyword set and capture region. The
// table is static; nothing is computed at runtime.
type pattern struct {
	keywords []string
	region   Region
}

var (
	patternMainMenu       = pattern{[]string{"STORY MODE", "ONLINE"}, regionMenuTabs}
	patternSubscriptionAd = pattern{[]string{"GTA+", "SUBSCRIBE NOW"}, regionCenter}
	patternLoggedOut      = pattern{[]string{"SIGNED OUT", "SOCIAL CLUB UNAVAILABLE"}, regionCenter}
	patternPauseMenu      = pattern{[]string{"MAP", "BRIEF", "STATS"}, regionMenuTabs}
	patternStoryModePage  = pattern{[]string{"NEW GAME", "LOAD GAME"}, regionMenuTabs}
	patternGoOnlineMenu   = pattern{[]string{"GO ONLINE", "PLAY GTA ONLINE"}, regionMenuTabs}
	patternWarningPage    = pattern{[]string{"ALERT", "WARNING"}, regionCenter}
	patternBadSettings    = pattern{[]string{"SETTINGS COULD NOT BE LOADED"}, regionCenter}
	patternLoadingScreen  = pattern{[]string{"LOADING"}, regionBottomBar}
	patternOnlineInfo     = pattern{[]string{"GTA ONLINE"}, regionInfoCorner}
	patternDead           = pattern{[]string{"WASTED", "RESPAWN"}, regionCenter}
	patternJobMarker      = pattern{[]string{"THE CONTRACT", "DR. DRE"}, regionBottomBar}
	patternJobPanel       = pattern{[]string{"AGENCY CONTRACT", "TEAM LINEUP"}, regionRightPanel}
	patternJobSecondPage  = pattern{[]string{"MATCHMAKING", "WEAPON LOADOUT"}, regionRightPanel}
	patternJobStarting    = pattern{[]string{"LAUNCHING SESSION"}, regionBottomBar}
	patternInMission      = pattern{[]string{"THE CONTRACT"}, regionTopBanner}
	patternScoreboard     = pattern{[]string{"RESULTS", "POTENTIAL CUT"}, regionTopHalf}
)

// markers used to count team rows on the job setup panel.
const (
	markerJoining = "JOINING"
	markerJoined  = "JOINED"
	markerStandby = "ON CALL"
)

// LobbySnapshot is one periodic reading of the job setup panel.
type LobbySnapshot struct {
	InLobby bool
	Joining int
	Joined  int
	Standby int
}

// Screen converts recognized text into named states and predicates.
type Screen struct {
	sensor Sensor
	logger *slog.Logger
}

func NewScreen(logger *slog.Logger, sensor Sensor) *Screen {
	return &Screen{sensor: sensor, logger: logger}
}

// text captures a region, or reuses already-fetched text when the caller
// passed one, avoiding a redundant sensor round trip.
func (s *Screen) text(p pattern, pre []string) (string, error) {
	if len(pre) > 0 {
		return pre[0], nil
	}

	txt, err := s.sensor.Capture(p.region.Left, p.region.Top, p.region.Width, p.region.Height, false)
	if err != nil {
		if errors.Is(err, ErrNoTarget) {
			return "", NewUnexpectedState(StateOff, StateRunning)
		}
		return "", err
	}
	return txt, nil
}

// matches reports whether any keyword of the pattern appears in the text. An
// empty keyword set never matches anything.
func (s *Screen) matches(p pattern, text string) bool {
	if len(p.keywords) == 0 {
		s.logger.Warn("screen pattern with empty keyword set always misses")
		return false
	}
	upper := strings.ToUpper(text)
	for _, kw := range p.keywords {
		if strings.Contains(upper, kw) {
			return true
		}
	}
	return false
}

func (s *Screen) check(p pattern, pre []string) (bool, error) {
	txt, err := s.text(p, pre)
	if err != nil {
		return false, err
	}
	return s.matches(p, txt), nil
}

func (s *Screen) IsMainMenu(pre ...string) (bool, error)       { return s.check(patternMainMenu, pre) }
func (s *Screen) IsSubscriptionAd(pre ...string) (bool, error) { return s.check(patternSubscriptionAd, pre) }
func (s *Screen) IsLoggedOut(pre ...string) (bool, error)      { return s.check(patternLoggedOut, pre) }
func (s *Screen) IsPauseMenuOpen(pre ...string) (bool, error)  { return s.check(patternPauseMenu, pre) }
func (s *Screen) IsStoryModePage(pre ...string) (bool, error)  { return s.check(patternStoryModePage, pre) }
func (s *Screen) IsGoOnlineMenu(pre ...string) (bool, error)   { return s.check(patternGoOnlineMenu, pre) }
func (s *Screen) IsWarningPage(pre ...string) (bool, error)    { return s.check(patternWarningPage, pre) }
func (s *Screen) IsBadSettings(pre ...string) (bool, error)    { return s.check(patternBadSettings, pre) }
func (s *Screen) IsLoadingScreen(pre ...string) (bool, error)  { return s.check(patternLoadingScreen, pre) }
func (s *Screen) IsOnlineFreemode(pre ...string) (bool, error) { return s.check(patternOnlineInfo, pre) }
func (s *Screen) IsDead(pre ...string) (bool, error)           { return s.check(patternDead, pre) }
func (s *Screen) IsJobMarker(pre ...string) (bool, error)      { return s.check(patternJobMarker, pre) }
func (s *Screen) IsJobSetupPanel(pre ...string) (bool, error)  { return s.check(patternJobPanel, pre) }
func (s *Screen) IsJobSecondPage(pre ...string) (bool, error)  { return s.check(patternJobSecondPage, pre) }
func (s *Screen) IsJobStarting(pre ...string) (bool, error)    { return s.check(patternJobStarting, pre) }
func (s *Screen) IsInMission(pre ...string) (bool, error)      { return s.check(patternInMission, pre) }
func (s *Screen) IsScoreboard(pre ...string) (bool, error)     { return s.check(patternScoreboard, pre) }

// JobSetupStatus reads the team lineup on the job setup panel. When the panel
// is not visible it reports InLobby=false with zeroed counts; the caller
// decides whether that is a fault.
func (s *Screen) JobSetupStatus(pre ...string) (LobbySnapshot, error) {
	txt, err := s.text(patternJobPanel, pre)
	if err != nil {
		return LobbySnapshot{}, err
	}

	if !s.matches(patternJobPanel, txt) {
		return LobbySnapshot{}, nil
	}

	upper := strings.ToUpper(txt)
	return LobbySnapshot{
		InLobby: true,
		Joining: strings.Count(upper, markerJoining),
		Joined:  strings.Count(upper, markerJoined),
		Standby: strings.Count(upper, markerStandby),
	}, nil
}

// Classify maps a full-screen capture to a state. Order matters: narrower,
// higher-signal screens are tested before broad ones.
func (s *Screen) Classify() (State, error) {
	txt, err := s.sensor.Capture(regionFull.Left, regionFull.Top, regionFull.Width, regionFull.Height, false)
	if err != nil {
		if errors.Is(err, ErrNoTarget) {
			return StateOff, NewUnexpectedState(StateOff, StateRunning)
		}
		return StateUnknown, err
	}

	switch {
	case s.matches(patternBadSettings, txt):
		return StateBadSettings, nil
	case s.matches(patternWarningPage, txt):
		return StateWarningPage, nil
	case s.matches(patternJobSecondPage, txt):
		return StateJobPanelSecond, nil
	case s.matches(patternJobPanel, txt):
		return StateJobPanelFirst, nil
	case s.matches(patternScoreboard, txt):
		return StateScoreboard, nil
	case s.matches(patternInMission, txt):
		return StateInMission, nil
	case s.matches(patternDead, txt):
		return StateDeadOnline, nil
	case s.matches(patternGoOnlineMenu, txt), s.matches(patternStoryModePage, txt):
		return StateStoryPaused, nil
	case s.matches(patternPauseMenu, txt):
		return StateOnlinePaused, nil
	case s.matches(patternMainMenu, txt):
		return StateMainMenu, nil
	case s.matches(patternLoggedOut, txt):
		return StateOffline, nil
	case s.matches(patternLoadingScreen, txt):
		return StateLoadingScreen, nil
	case s.matches(patternOnlineInfo, txt):
		return StateOnlineFreemode, nil
	}

	return StateUnknown, nil
}
