package app

import (
	"context"
	"log/slog"
)

// LogAlerter satisfies Alerter by emitting a log record only.
type LogAlerter struct {
	logger *slog.Logger
}

func NewLogAlerter(logger *slog.Logger) *LogAlerter {
	return &LogAlerter{logger: logger.With("component", "alerter")}
}

func (a *LogAlerter) FailureAlert(ctx context.Context) {
	a.logger.WarnContext(ctx, "message failure alert raised")
}
