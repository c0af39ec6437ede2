package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSourceHandler_Levels(t *testing.T) {
	production := []slog.Level{slog.LevelWarn, slog.LevelError}
	all := []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError}

	tests := []struct {
		name       string
		level      slog.Level
		levels     []slog.Level
		wantSource bool
	}{
		{"info is compact in production", slog.LevelInfo, production, false},
		{"debug is compact in production", slog.LevelDebug, production, false},
		{"warn carries source", slog.LevelWarn, production, true},
		{"error carries source", slog.LevelError, production, true},
		{"info carries source in debug mode", slog.LevelInfo, all, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			base := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
			log := slog.New(NewSourceHandler(base, tt.levels...))

			log.Log(t.Context(), tt.level, "webhook received")

			assert.Equal(t, tt.wantSource, bytes.Contains(buf.Bytes(), []byte("source=")), buf.String())
		})
	}
}

func TestSourceHandler_KeepsAttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	base := slog.NewTextHandler(&buf, &slog.HandlerOptions{})
	log := slog.New(NewSourceHandler(base, slog.LevelError)).
		With("gateway", "stripe").
		WithGroup("donation")

	log.Error("transition rejected", "order_id", "D-100")

	out := buf.String()
	assert.Contains(t, out, "gateway=stripe")
	assert.Contains(t, out, "donation.order_id=D-100")
	assert.Contains(t, out, "source=")
}
