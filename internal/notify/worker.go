package notify

import (
	"context"
	"log/slog"
)

// ChannelDispatcher buffers events in a channel consumed by a Worker. A full
// buffer drops the event with a warning rather than stalling the mutation
// that produced it.
type ChannelDispatcher struct {
	inbox  chan Event
	logger *slog.Logger
}

func NewChannelDispatcher(buffer int, logger *slog.Logger) *ChannelDispatcher {
	if buffer <= 0 {
		buffer = 64
	}
	return &ChannelDispatcher{
		inbox:  make(chan Event, buffer),
		logger: logger,
	}
}

func (d *ChannelDispatcher) Dispatch(event Event) {
	select {
	case d.inbox <- event:
	default:
		d.logger.Warn("notification buffer full, dropping event",
			"submission_id", event.SubmissionID,
			"status", event.Status,
		)
	}
}

// Inbox exposes the channel for the worker.
func (d *ChannelDispatcher) Inbox() <-chan Event {
	return d.inbox
}

// Worker drains a dispatcher's inbox into a sink. Sink failures are logged
// and the worker keeps going; delivery is best effort end to end.
type Worker struct {
	inbox  <-chan Event
	sink   Sink
	logger *slog.Logger
}

func NewWorker(inbox <-chan Event, sink Sink, logger *slog.Logger) *Worker {
	return &Worker{inbox: inbox, sink: sink, logger: logger}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.sink.Publish(ctx, event); err != nil {
				w.logger.WarnContext(ctx, "notification publish failed",
					"submission_id", event.SubmissionID,
					"status", event.Status,
					"error", err.Error(),
				)
			}
		}
	}
}
