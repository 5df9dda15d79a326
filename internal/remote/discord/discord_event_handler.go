package discord

import (
	"context"
	"fmt"

	"github.com/dreheist/drebot/internal/event"
)

func (b *Bot) Handle(ctx context.Context, e event.Event) error {
	switch evt := e.(type) {
	case event.GameLaunchedEvent:
		return b.sendMessage(ctx, fmt.Sprintf(":video_game: %s (pid %d)", evt.Message(), evt.PID))
	case event.SessionObtainedEvent:
		return b.sendMessage(ctx, fmt.Sprintf(":satellite: %s", evt.Message()))
	case event.JobStartedEvent:
		return b.sendMessage(ctx, fmt.Sprintf(":rocket: %s (%d joined)", evt.Message(), evt.Joined))
	case event.CycleAbortedEvent:
		return b.sendMessage(ctx, fmt.Sprintf(":hourglass: %s (%s)", evt.Message(), evt.Reason))
	case event.ChatHealthEvent:
		if evt.Healthy {
			return b.sendMessage(ctx, fmt.Sprintf(":white_check_mark: %s", evt.Message()))
		}
		return b.sendMessage(ctx, fmt.Sprintf(":warning: %s", evt.Message()))
	case event.ErrorEvent:
		return b.sendMessage(ctx, fmt.Sprintf(":octagonal_sign: %s", evt.Message()))
	}

	return nil
}
