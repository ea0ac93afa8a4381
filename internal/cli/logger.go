package cli

import (
	"io"
	"log/slog"
	"strings"

	"github.com/enginewatch/enginewatch/internal/config"
	"github.com/enginewatch/enginewatch/internal/notify"
)

// newLogger builds the daemon logger from settings. When a log webhook
// is configured, warn-and-above records are mirrored into the channel
// so operators see trouble without tailing process output.
func newLogger(w io.Writer, s *config.Settings) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(s.LogLevel)}

	var local slog.Handler
	if strings.EqualFold(s.LogFormat, "json") {
		local = slog.NewJSONHandler(w, opts)
	} else {
		local = slog.NewTextHandler(w, opts)
	}

	if s.LogWebhook == "" {
		return slog.New(local)
	}

	mirror := notify.NewWebhookHandler(notify.NewWebhook(s.LogWebhook), slog.LevelWarn)
	return slog.New(notify.Fanout(local, mirror))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
