package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"runtime/debug"
	"time"

	sloggger "github.com/dreheist/drebot/cmd/drebot/log"
	"github.com/dreheist/drebot/internal/bot"
	"github.com/dreheist/drebot/internal/chat"
	"github.com/dreheist/drebot/internal/config"
	"github.com/dreheist/drebot/internal/event"
	"github.com/dreheist/drebot/internal/game"
	"github.com/dreheist/drebot/internal/health"
	"github.com/dreheist/drebot/internal/input"
	"github.com/dreheist/drebot/internal/ocr"
	"github.com/dreheist/drebot/internal/remote/discord"
	"github.com/dreheist/drebot/internal/remote/telegram"
	"github.com/dreheist/drebot/internal/utils"
	"github.com/dreheist/drebot/internal/utils/winproc"
	"github.com/dreheist/drebot/internal/workflow"
	"golang.org/x/sync/errgroup"
)

const (
	vkControl = 0x11
	vkF9      = 0x78
	vkF10     = 0x79

	hotkeyPollInterval = 200 * time.Millisecond
	hotkeyCooldown     = 500 * time.Millisecond

	chatReadyTimeout = 60 * time.Second
)

// wrapWithRecover wraps a function with panic recovery logic
func wrapWithRecover(logger *slog.Logger, f func() error) func() error {
	return func() error {
		defer func() {
			if r := recover(); r != nil {
				stackTrace := debug.Stack()
				errMsg := fmt.Sprintf("panic recovered: %v\nStacktrace: %s", r, stackTrace)
				logger.Error(errMsg)
				sloggger.FlushLog()
			}
		}()
		return f()
	}
}

func main() {
	err := config.Load()
	if err != nil {
		utils.ShowDialog("Error loading configuration", err.Error())
		log.Fatalf("Error loading configuration: %s", err.Error())
		return
	}
	cfg := config.Drebot

	logger, err := sloggger.NewLogger(cfg.Debug.Log, cfg.LogSaveDirectory, "")
	if err != nil {
		log.Fatalf("Error starting logger: %s", err.Error())
	}
	defer sloggger.FlushAndClose()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("fatal error detected, drebot will close with the following error: %v\n Stacktrace: %s", r, debug.Stack())
			logger.Error(err.Error())
			sloggger.FlushAndClose()
			utils.ShowDialog("drebot error :(", fmt.Sprintf("drebot will close due to an unexpected error, please check the latest log file for more info!\n %s", err.Error()))
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	winproc.SetProcessDpiAware.Call() // Capture coordinates assume unscaled pixels

	eventListener := event.NewListener(logger)

	// Discord Bot initialization
	if cfg.Discord.Enabled {
		discordBot, err := discord.NewBot(cfg.Discord.Token, cfg.Discord.ChannelID, cfg.Discord.UseWebhook, cfg.Discord.WebhookURL)
		if err != nil {
			logger.Error("Discord could not been initialized", slog.Any("error", err))
			return
		}

		eventListener.Register(discordBot.Handle)
		if !cfg.Discord.UseWebhook {
			g.Go(wrapWithRecover(logger, func() error {
				return discordBot.Start(ctx)
			}))
		}
	}

	// Telegram Bot initialization
	if cfg.Telegram.Enabled {
		telegramBot, err := telegram.NewBot(cfg.Telegram.Token, cfg.Telegram.ChatID, logger)
		if err != nil {
			logger.Error("Telegram could not been initialized", slog.Any("error", err))
			return
		}

		eventListener.Register(telegramBot.Handle)
		g.Go(wrapWithRecover(logger, func() error {
			return telegramBot.Start(ctx)
		}))
	}

	g.Go(wrapWithRecover(logger, func() error {
		return eventListener.Listen(ctx)
	}))

	proc := game.NewProcess(logger, cfg.Game.WindowTitle, cfg.Game.ProcessNames)
	sensor := ocr.NewClient(logger, cfg.OCR.Endpoint, func() uintptr {
		return uintptr(proc.HWND())
	})
	screen := game.NewScreen(logger, sensor)

	keyboard := input.NewKeyboard()
	defer keyboard.ReleaseAll()
	executor := input.NewExecutor(logger, keyboard, cfg.Walk)

	chatClient := chat.NewClient(logger, cfg.ChatBackend.Host, cfg.ChatBackend.Port,
		cfg.ChatBackend.AuthToken, cfg.ChatBackend.GroupID, cfg.ChatBackend.ChannelName)
	runner := chat.NewProcessRunner(logger, chatClient, cfg.ChatBackend.ExecutablePath,
		cfg.ChatBackend.Host, cfg.ChatBackend.Port, cfg.ChatBackend.AuthToken, cfg.ChatBackend.Proxy)
	supervisor := chat.NewSupervisor(logger, runner)

	g.Go(wrapWithRecover(logger, func() error {
		supervisor.Run()
		return nil
	}))

	if !supervisor.WaitUntilFirstHealthy(chatReadyTimeout) {
		logger.Warn("chat backend still not healthy, lobby invitations will be delayed",
			slog.Duration("waited", chatReadyTimeout))
	}

	gate := bot.NewGate()

	env := workflow.NewEnv(logger, screen, executor, proc, chatClient, cfg)
	orchestrator := bot.NewOrchestrator(logger, env)

	monitor := health.NewMonitor(logger,
		time.Duration(cfg.Health.CheckIntervalMinutes)*time.Minute,
		time.Duration(cfg.Health.SilenceThresholdMinutes)*time.Minute,
		chatClient.LastSendTime)
	monitor.Suppress = gate.Paused
	monitor.OnUnhealthy = func(lastSend time.Time, silence time.Duration) {
		event.Send(event.ChatHealth(event.Text(
			fmt.Sprintf("no chat message delivered since %s", lastSend.Format("15:04:05"))), false))
	}
	monitor.OnRecovered = func(silence time.Duration) {
		event.Send(event.ChatHealth(event.Text(
			fmt.Sprintf("chat deliveries recovered after %s of silence", silence.Round(time.Second))), true))
	}
	monitor.FatalWhileUnhealthy = cfg.Health.ExitWhenSilent
	monitor.OnFatal = cancel

	g.Go(wrapWithRecover(logger, func() error {
		return monitor.Run(ctx)
	}))

	// Hotkey listener: Ctrl+F9 toggles pause, Ctrl+F10 exits. Both only flip
	// shared state; the control loop reacts at its next cycle boundary.
	g.Go(wrapWithRecover(logger, func() error {
		lastToggle := time.Time{}
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(hotkeyPollInterval):
			}

			if utils.HotkeyPressed(vkControl, vkF10) {
				logger.Info("exit hotkey pressed, shutting down")
				cancel()
				return nil
			}

			if utils.HotkeyPressed(vkControl, vkF9) && time.Since(lastToggle) > hotkeyCooldown {
				lastToggle = time.Now()
				if gate.Paused() {
					logger.Info("resuming")
					chatClient.ResetSendTimer()
					gate.Resume()
				} else {
					logger.Info("pausing after the current step")
					executor.ReleaseAll()
					gate.Pause()
				}
			}
		}
	}))

	// Control loop: one hosting cycle at a time, consecutive-failure backoff.
	loop := bot.NewLoop(logger, gate, orchestrator.RunOneCycle, func() {
		utils.BringWindowToFront(uintptr(proc.HWND()))
	})
	g.Go(wrapWithRecover(logger, func() error {
		defer cancel()
		return loop.Run(ctx)
	}))

	g.Go(wrapWithRecover(logger, func() error {
		<-ctx.Done()
		logger.Info("drebot shutting down...")

		// Unblock a paused control loop so it can observe the cancellation.
		gate.Resume()

		if err := chatClient.Logout(); err != nil {
			logger.Warn("chat logout failed", slog.Any("error", err))
		}
		supervisor.Stop()

		return nil
	}))

	err = g.Wait()

	// The game dies last, after the control loop and every watchdog that
	// could restart or touch it have fully exited.
	orchestrator.Shutdown()

	if err != nil {
		logger.Error("Error running drebot", slog.Any("error", err))
		return
	}

	sloggger.FlushAndClose()
}
