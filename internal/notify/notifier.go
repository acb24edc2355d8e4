// Package notify provides outbound message delivery for coordinator messages.
package notify

import (
	"context"
	"log/slog"
	"strings"

	"github.com/antigravity-ventures/thaiturk/internal/common"
	"github.com/antigravity-ventures/thaiturk/internal/service"
)

// LogNotifier implements service.Notifier by logging the message instead of
// delivering it. It stands in until a real WhatsApp/Telegram gateway is
// configured; delivery failures never block intake.
type LogNotifier struct {
	logger *slog.Logger
	retry  service.RetryOptions
}

// NewLogNotifier creates a notifier that writes to the given logger, or the
// default logger when nil.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{
		logger: logger,
		retry:  service.RetryOptions{MaxAttempts: 3},
	}
}

// Send implements service.Notifier.
func (n *LogNotifier) Send(ctx context.Context, channel, recipient, message string) error {
	if strings.TrimSpace(message) == "" {
		return common.ErrEmptyMessage
	}

	return common.WithRetry(ctx, func() error {
		n.logger.Info("outbound message",
			"channel", channel,
			"recipient", recipient,
			"message", message)
		return nil
	}, n.retry)
}
