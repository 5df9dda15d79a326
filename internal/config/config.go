package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	cp "github.com/otiai10/copy"
	"gopkg.in/yaml.v3"
)

var (
	cfgMux  sync.RWMutex
	Drebot  *DrebotCfg
	Version = "dev"
)

type DrebotCfg struct {
	Debug struct {
		Log bool `yaml:"log"`
	} `yaml:"debug"`
	FirstRun         bool   `yaml:"firstRun"`
	LogSaveDirectory string `yaml:"logSaveDirectory"`

	Game struct {
		WindowTitle            string   `yaml:"windowTitle"`
		ProcessNames           []string `yaml:"processNames"`
		LaunchURL              string   `yaml:"launchUrl"`
		WindowTimeout          int      `yaml:"windowTimeoutSeconds"`
		MenuTimeout            int      `yaml:"menuTimeoutSeconds"`
		StoryTimeout           int      `yaml:"storyTimeoutSeconds"`
		OnlineTimeout          int      `yaml:"onlineTimeoutSeconds"`
		RestartsBeforeGivingUp int      `yaml:"restartsBeforeGivingUp"`
	} `yaml:"game"`

	Timing struct {
		CheckLoopSeconds    int `yaml:"checkLoopSeconds"`
		SuspendSeconds      int `yaml:"suspendSeconds"`
		DelaySuspendSeconds int `yaml:"delaySuspendSeconds"`
	} `yaml:"timing"`

	Job struct {
		OpenTimeoutSeconds    int  `yaml:"openTimeoutSeconds"`
		PanelTimeoutSeconds   int  `yaml:"panelTimeoutSeconds"`
		JoiningKickSeconds    int  `yaml:"joiningKickSeconds"`
		StartDelaySeconds     int  `yaml:"startDelaySeconds"`
		StartOnFullTeam       bool `yaml:"startOnFullTeam"`
		FullTeamSize          int  `yaml:"fullTeamSize"`
		ExitTimeoutSeconds    int  `yaml:"exitTimeoutSeconds"`
		RespawnTimeoutSeconds int  `yaml:"respawnTimeoutSeconds"`
	} `yaml:"job"`

	Session struct {
		EnableDesyncRecovery bool `yaml:"enableDesyncRecovery"`
	} `yaml:"session"`

	Walk WalkCfg `yaml:"walk"`

	ChatBackend struct {
		Host           string `yaml:"host"`
		Port           int    `yaml:"port"`
		AuthToken      string `yaml:"authToken"`
		Proxy          string `yaml:"proxy"`
		ExecutablePath string `yaml:"executablePath"`
		GroupID        string `yaml:"groupId"`
		ChannelName    string `yaml:"channelName"`
	} `yaml:"chatBackend"`

	Health struct {
		CheckIntervalMinutes    int  `yaml:"checkIntervalMinutes"`
		SilenceThresholdMinutes int  `yaml:"silenceThresholdMinutes"`
		ExitWhenSilent          bool `yaml:"exitWhenSilent"`
	} `yaml:"health"`

	OCR struct {
		Endpoint string `yaml:"endpoint"`
	} `yaml:"ocr"`

	Messages struct {
		OpenJobPanel       string `yaml:"openJobPanel"`
		TeamFull           string `yaml:"teamFull"`
		JobStarting        string `yaml:"jobStarting"`
		ScoreboardDetected string `yaml:"scoreboardDetected"`
		WaitPlayerTimeout  string `yaml:"waitPlayerTimeout"`
		JoiningPlayerKick  string `yaml:"joiningPlayerKick"`
	} `yaml:"messages"`

	Discord struct {
		Enabled    bool   `yaml:"enabled"`
		ChannelID  string `yaml:"channelId"`
		Token      string `yaml:"token"`
		UseWebhook bool   `yaml:"useWebhook"`
		WebhookURL string `yaml:"webhookUrl"`
	} `yaml:"discord"`

	Telegram struct {
		Enabled bool   `yaml:"enabled"`
		ChatID  int64  `yaml:"chatId"`
		Token   string `yaml:"token"`
	} `yaml:"telegram"`
}

// WalkCfg holds the hold-stick durations of the fixed walk timelines. They
// were tuned by hand against the agency interior and depend on frame pacing,
// so they are per-machine tunables rather than constants.
type WalkCfg struct {
	CrossAisleMs   int `yaml:"crossAisleMs"`
	LeaveBedMs     int `yaml:"leaveBedMs"`
	ToDoorwayMs    int `yaml:"toDoorwayMs"`
	DownCorridorMs int `yaml:"downCorridorMs"`
	SearchStepMs   int `yaml:"searchStepMs"`
}

// CheckLoop returns the lobby polling interval.
func (c *DrebotCfg) CheckLoop() time.Duration {
	return time.Duration(c.Timing.CheckLoopSeconds) * time.Second
}

func (c *DrebotCfg) SuspendTime() time.Duration {
	return time.Duration(c.Timing.SuspendSeconds) * time.Second
}

func (c *DrebotCfg) DelaySuspend() time.Duration {
	return time.Duration(c.Timing.DelaySuspendSeconds) * time.Second
}

func Load() error {
	cfgMux.Lock()
	defer cfgMux.Unlock()

	cfgPath := getAbsPath("config/drebot.yaml")
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		if err := cp.Copy(getAbsPath("config/template"), getAbsPath("config")); err != nil {
			return fmt.Errorf("error copying template: %w", err)
		}
	}

	r, err := os.Open(cfgPath)
	if err != nil {
		return fmt.Errorf("error loading drebot.yaml: %w", err)
	}
	defer r.Close()

	d := yaml.NewDecoder(r)
	if err = d.Decode(&Drebot); err != nil {
		return fmt.Errorf("error reading config %s: %w", cfgPath, err)
	}

	applyDefaults(Drebot)

	return nil
}

func applyDefaults(c *DrebotCfg) {
	if c.Timing.CheckLoopSeconds <= 0 {
		c.Timing.CheckLoopSeconds = 1
	}
	if c.Timing.SuspendSeconds <= 0 {
		c.Timing.SuspendSeconds = 15
	}
	if c.Timing.DelaySuspendSeconds <= 0 {
		c.Timing.DelaySuspendSeconds = 5
	}
	if c.Job.OpenTimeoutSeconds <= 0 {
		c.Job.OpenTimeoutSeconds = 60
	}
	if c.Job.PanelTimeoutSeconds <= 0 {
		c.Job.PanelTimeoutSeconds = 180
	}
	if c.Job.JoiningKickSeconds <= 0 {
		c.Job.JoiningKickSeconds = 120
	}
	if c.Job.StartDelaySeconds <= 0 {
		c.Job.StartDelaySeconds = 15
	}
	if c.Job.FullTeamSize <= 0 {
		c.Job.FullTeamSize = 3
	}
	if c.Job.ExitTimeoutSeconds <= 0 {
		c.Job.ExitTimeoutSeconds = 120
	}
	if c.Job.RespawnTimeoutSeconds <= 0 {
		c.Job.RespawnTimeoutSeconds = 120
	}
	if c.Game.WindowTimeout <= 0 {
		c.Game.WindowTimeout = 300
	}
	if c.Game.MenuTimeout <= 0 {
		c.Game.MenuTimeout = 180
	}
	if c.Game.StoryTimeout <= 0 {
		c.Game.StoryTimeout = 120
	}
	if c.Game.OnlineTimeout <= 0 {
		c.Game.OnlineTimeout = 300
	}
	if c.Game.RestartsBeforeGivingUp <= 0 {
		c.Game.RestartsBeforeGivingUp = 5
	}
	if c.Health.CheckIntervalMinutes <= 0 {
		c.Health.CheckIntervalMinutes = 10
	}
	if c.Health.SilenceThresholdMinutes <= 0 {
		c.Health.SilenceThresholdMinutes = 60
	}
	if c.Walk.CrossAisleMs <= 0 {
		c.Walk.CrossAisleMs = 3700
	}
	if c.Walk.LeaveBedMs <= 0 {
		c.Walk.LeaveBedMs = 1500
	}
	if c.Walk.ToDoorwayMs <= 0 {
		c.Walk.ToDoorwayMs = 2200
	}
	if c.Walk.DownCorridorMs <= 0 {
		c.Walk.DownCorridorMs = 3000
	}
	if c.Walk.SearchStepMs <= 0 {
		c.Walk.SearchStepMs = 800
	}
	if c.ChatBackend.Host == "" {
		c.ChatBackend.Host = "127.0.0.1"
	}
	if c.ChatBackend.Port <= 0 {
		c.ChatBackend.Port = 18600
	}
	if c.OCR.Endpoint == "" {
		c.OCR.Endpoint = "http://127.0.0.1:18700"
	}
	if c.Game.WindowTitle == "" {
		c.Game.WindowTitle = "Grand Theft Auto V"
	}
	if len(c.Game.ProcessNames) == 0 {
		c.Game.ProcessNames = []string{"GTA5.exe", "PlayGTAV.exe"}
	}
	if c.Game.LaunchURL == "" {
		c.Game.LaunchURL = "steam://rungameid/271590"
	}
}

// ValidateAndSaveConfig checks a config edit for obvious mistakes and writes
// it back to disk. Returns the result of reloading the saved file.
func ValidateAndSaveConfig(config DrebotCfg) error {
	if config.Job.FullTeamSize < 1 {
		return errors.New("fullTeamSize must be at least 1")
	}
	if config.ChatBackend.ExecutablePath != "" {
		if _, err := os.Stat(config.ChatBackend.ExecutablePath); os.IsNotExist(err) {
			return errors.New("chat backend executable path is not valid")
		}
	}

	text, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("error parsing drebot config: %w", err)
	}

	err = os.WriteFile(getAbsPath("config/drebot.yaml"), text, 0644)
	if err != nil {
		return fmt.Errorf("error writing drebot config: %w", err)
	}

	return Load()
}

func getAbsPath(rel string) string {
	exe, err := os.Executable()
	if err != nil {
		return rel
	}
	return filepath.Join(filepath.Dir(exe), rel)
}
