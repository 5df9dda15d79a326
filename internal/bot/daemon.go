package bot

import (
	"context"
	"log/slog"
	"time"

	"github.com/dreheist/drebot/internal/event"
)

const (
	defaultBackoffStep = 10 * time.Second
	defaultBackoffCap  = 120 * time.Second
)

// Loop is the foreground control loop: one hosting cycle at a time with a
// consecutive-failure backoff between failed cycles. Run returns only at a
// cycle boundary, never mid-cycle, so the caller can safely tear the game
// down once Run has returned.
type Loop struct {
	Gate   *Gate
	Cycle  func() error
	Focus  func()
	Logger *slog.Logger

	BackoffStep time.Duration
	BackoffCap  time.Duration
}

func NewLoop(logger *slog.Logger, gate *Gate, cycle func() error, focus func()) *Loop {
	return &Loop{
		Gate:        gate,
		Cycle:       cycle,
		Focus:       focus,
		Logger:      logger,
		BackoffStep: defaultBackoffStep,
		BackoffCap:  defaultBackoffCap,
	}
}

// Run executes cycles until the context ends. Cancellation is observed at
// the top of each cycle and during backoff; a cycle in flight always runs to
// completion first.
func (l *Loop) Run(ctx context.Context) error {
	consecutiveFailures := 0
	for ctx.Err() == nil {
		l.Gate.Wait()
		if ctx.Err() != nil {
			return nil
		}

		if l.Focus != nil {
			l.Focus()
		}

		if err := l.Cycle(); err != nil {
			consecutiveFailures++
			l.Logger.Error("cycle failed",
				slog.Int("consecutiveFailures", consecutiveFailures),
				slog.Any("error", err))
			event.Send(event.Error(event.Text(err.Error())))

			backoff := time.Duration(consecutiveFailures) * l.BackoffStep
			if backoff > l.BackoffCap {
				backoff = l.BackoffCap
			}
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(backoff):
			}
			continue
		}
		consecutiveFailures = 0
	}
	return nil
}
