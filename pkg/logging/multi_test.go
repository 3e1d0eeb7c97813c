package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMultiHandler_PerHandlerLevels(t *testing.T) {
	var verbose, quiet bytes.Buffer
	logger := slog.New(NewMultiHandler(
		slog.NewTextHandler(&verbose, &slog.HandlerOptions{Level: LevelDebug}),
		slog.NewTextHandler(&quiet, &slog.HandlerOptions{Level: LevelWarn}),
	))

	logger.Debug("details")
	logger.Warn("careful")

	assert.Contains(t, verbose.String(), "details")
	assert.Contains(t, verbose.String(), "careful")
	assert.NotContains(t, quiet.String(), "details")
	assert.Contains(t, quiet.String(), "careful")
}

func TestMultiHandler_WithAttrsAndGroup(t *testing.T) {
	var a, b bytes.Buffer
	logger := slog.New(NewMultiHandler(
		slog.NewTextHandler(&a, nil),
		slog.NewTextHandler(&b, nil),
	)).With("client", "rest").WithGroup("tx")

	logger.Info("sent", "id", "000")

	for _, out := range []string{a.String(), b.String()} {
		assert.Contains(t, out, "client=rest")
		assert.Contains(t, out, "tx.id=000")
	}
}
