package event

import (
	"context"
	"log/slog"
)

var events = make(chan Event, 64)

type Handler func(ctx context.Context, e Event) error

type Listener struct {
	handlers []Handler
	logger   *slog.Logger
}

func NewListener(logger *slog.Logger) *Listener {
	return &Listener{logger: logger}
}

func (l *Listener) Register(h Handler) {
	l.handlers = append(l.handlers, h)
}

func (l *Listener) Listen(ctx context.Context) error {
	for {
		select {
		case e := <-events:
			for _, h := range l.handlers {
				if err := h(ctx, e); err != nil {
					l.logger.Error("error running event handler", slog.Any("error", err))
				}
			}
		case <-ctx.Done():
			return nil
		}
	}
}

// Send publishes an event to all registered handlers. Events are dropped when
// the queue is full rather than blocking the control loop.
func Send(e Event) {
	select {
	case events <- e:
	default:
	}
}
