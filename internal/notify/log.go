package notify

import (
	"context"
	"log/slog"
)

// LogSink writes notifications to the process log. The default sink when no
// message bus is configured.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Publish(ctx context.Context, event Event) error {
	s.logger.InfoContext(ctx, "notification",
		"submission_id", event.SubmissionID,
		"service", event.ServiceName,
		"status", event.Status,
		"severity", event.Severity,
		"title", event.Title,
	)
	return nil
}
