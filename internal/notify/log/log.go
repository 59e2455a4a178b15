// Package log provides a Notifier that writes progress messages to zap. It
// stands in for a chat channel when no bot token is configured.
package log

import (
	"context"

	"go.uber.org/zap"
)

// Notifier logs each message at info level.
type Notifier struct {
	logger *zap.Logger
}

// New wires a zap logger to the notifier interface.
func New(logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{logger: logger}
}

// Notify logs text. It never fails.
func (n *Notifier) Notify(_ context.Context, text string) error {
	n.logger.Info("progress", zap.String("message", text))
	return nil
}
