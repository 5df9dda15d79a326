package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dreheist/drebot/internal/event"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Bot struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger *slog.Logger
}

func (b *Bot) Start(ctx context.Context) error {
	offset, err := b.getLatestOffset()
	if err != nil {
		return err
	}

	u := tgbotapi.NewUpdate(offset)
	u.Timeout = 5
	updates := b.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.bot.StopReceivingUpdates()
			for range updates {
			}
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message != nil && update.Message.Chat != nil && update.Message.Chat.ID == b.chatID {
				switch strings.ToLower(update.Message.Text) {
				case "status":
					b.send("drebot is alive")
				}
			}
		}
	}
}

func (b *Bot) Handle(ctx context.Context, e event.Event) error {
	switch evt := e.(type) {
	case event.GameLaunchedEvent, event.SessionObtainedEvent:
		b.send(e.Message())
	case event.JobStartedEvent:
		b.send(fmt.Sprintf("%s (%d joined)", evt.Message(), evt.Joined))
	case event.CycleAbortedEvent:
		b.send(fmt.Sprintf("%s (%s)", evt.Message(), evt.Reason))
	case event.ChatHealthEvent, event.ErrorEvent:
		b.send(e.Message())
	}
	return nil
}

func (b *Bot) send(text string) {
	if _, err := b.bot.Send(tgbotapi.NewMessage(b.chatID, text)); err != nil {
		b.logger.Warn("error sending telegram message", slog.Any("error", err))
	}
}

func (b *Bot) getLatestOffset() (int, error) {
	upds, err := b.bot.GetUpdates(tgbotapi.NewUpdate(-1))
	if err != nil {
		return 0, err
	}
	offset := 0
	if len(upds) > 0 {
		offset = upds[0].UpdateID + 1
	}
	return offset, nil
}
