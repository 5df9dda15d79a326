package game

// State is the closed set of screens the classifier can report. Anything not
// recognized maps to StateUnknown, never to a guess.
type State int

const (
	StateOff State = iota
	StateUnknown
	StateOffline
	StateMainMenu
	StateStoryMode
	StateStoryPaused
	StateLoadingScreen
	StateOnlineFreemode
	StateOnlinePaused
	StateDeadOnline
	StateInMission
	StateScoreboard
	StateJobPanelFirst
	StateJobPanelSecond
	StateJobPanelStandby
	StateWarningPage
	StateBadSettings

	// StateRunning is an expectation-only sentinel meaning "any state where
	// the game process is up". Classification never returns it.
	StateRunning
)

var stateNames = map[State]string{
	StateOff:             "Off",
	StateUnknown:         "Unknown",
	StateOffline:         "Offline",
	StateMainMenu:        "MainMenu",
	StateStoryMode:       "StoryMode",
	StateStoryPaused:     "StoryPaused",
	StateLoadingScreen:   "LoadingScreen",
	StateOnlineFreemode:  "OnlineFreemode",
	StateOnlinePaused:    "OnlinePaused",
	StateDeadOnline:      "DeadOnline",
	StateInMission:       "InMission",
	StateScoreboard:      "Scoreboard",
	StateJobPanelFirst:   "JobPanelFirst",
	StateJobPanelSecond:  "JobPanelSecond",
	StateJobPanelStandby: "JobPanelStandby",
	StateWarningPage:     "WarningPage",
	StateBadSettings:     "BadSettings",
	StateRunning:         "Running",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "Unknown"
}

// Capabilities describes what can be done with the game in a given state.
type Capabilities struct {
	Running  bool
	Playable bool
	Online   bool
}

var capabilityTable = map[State]Capabilities{
	StateOff:             {},
	StateUnknown:         {},
	StateOffline:         {Running: true},
	StateMainMenu:        {Running: true},
	StateStoryMode:       {Running: true, Playable: true},
	StateStoryPaused:     {Running: true},
	StateLoadingScreen:   {Running: true},
	StateOnlineFreemode:  {Running: true, Playable: true, Online: true},
	StateOnlinePaused:    {Running: true, Online: true},
	StateDeadOnline:      {Running: true, Online: true},
	StateInMission:       {Running: true, Playable: true, Online: true},
	StateScoreboard:      {Running: true, Online: true},
	StateJobPanelFirst:   {Running: true, Online: true},
	StateJobPanelSecond:  {Running: true, Online: true},
	StateJobPanelStandby: {Running: true, Online: true},
	StateWarningPage:     {Running: true},
	StateBadSettings:     {Running: true},
	StateRunning:         {Running: true},
}

// Capabilities returns the fixed capability record for a state. Every state
// has exactly one entry; unknown values get the all-false record.
func (s State) Capabilities() Capabilities {
	return capabilityTable[s]
}
