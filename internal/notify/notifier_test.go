package notify

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antigravity-ventures/thaiturk/internal/common"
)

func TestLogNotifier_Send(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	notifier := NewLogNotifier(logger)

	err := notifier.Send(context.Background(), "whatsapp", "+90-549-000-0001", "Thank you for your inquiry")
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "whatsapp")
	assert.Contains(t, out, "+90-549-000-0001")
	assert.Contains(t, out, "Thank you for your inquiry")
}

func TestLogNotifier_RejectsEmptyMessage(t *testing.T) {
	notifier := NewLogNotifier(nil)

	for _, message := range []string{"", "   ", "\n\t"} {
		err := notifier.Send(context.Background(), "whatsapp", "+90-549-000-0001", message)
		assert.ErrorIs(t, err, common.ErrEmptyMessage)
	}
}
