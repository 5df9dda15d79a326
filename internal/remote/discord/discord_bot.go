package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

type Bot struct {
	discordSession *discordgo.Session
	channelID      string
	useWebhook     bool
	webhookClient  *webhookClient
}

func NewBot(token, channelID string, useWebhook bool, webhookURL string) (*Bot, error) {
	botInstance := &Bot{
		channelID:  channelID,
		useWebhook: useWebhook,
	}

	if useWebhook {
		if webhookURL == "" {
			return nil, fmt.Errorf("webhook URL is required when using webhook mode")
		}
		botInstance.webhookClient = newWebhookClient(webhookURL)
		return botInstance, nil
	}

	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("error creating Discord session: %w", err)
	}

	botInstance.discordSession = dg

	return botInstance, nil
}

func (b *Bot) Start(ctx context.Context) error {
	if b.useWebhook {
		<-ctx.Done()
		return nil
	}

	b.discordSession.Identify.Intents = discordgo.IntentsGuildMessages
	err := b.discordSession.Open()
	if err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}

	<-ctx.Done()

	return b.discordSession.Close()
}

func (b *Bot) sendMessage(ctx context.Context, message string) error {
	if b.useWebhook {
		return b.webhookClient.Send(ctx, message)
	}
	_, err := b.discordSession.ChannelMessageSend(b.channelID, message)
	return err
}
