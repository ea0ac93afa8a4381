package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// WebhookHandler is an slog.Handler that mirrors records at or above a
// minimum level to a webhook. Delivery is best-effort: a failed post is
// dropped rather than looping back into the logger.
type WebhookHandler struct {
	webhook *Webhook
	min     slog.Level
	attrs   []slog.Attr
	group   string
}

// NewWebhookHandler creates a handler posting records >= min to w.
func NewWebhookHandler(w *Webhook, min slog.Level) *WebhookHandler {
	return &WebhookHandler{webhook: w, min: min}
}

// Enabled implements slog.Handler.
func (h *WebhookHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.min
}

// Handle implements slog.Handler. Records render as a single line:
//
//	**WARN** message key=value key=value
func (h *WebhookHandler) Handle(ctx context.Context, r slog.Record) error {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s** %s", r.Level, r.Message)

	writeAttr := func(a slog.Attr) {
		key := a.Key
		if h.group != "" {
			key = h.group + "." + key
		}
		fmt.Fprintf(&b, " %s=%v", key, a.Value)
	}

	for _, a := range h.attrs {
		writeAttr(a)
	}
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(a)
		return true
	})

	// Webhook failures must not recurse into logging.
	_ = h.webhook.Send(ctx, b.String())
	return nil
}

// WithAttrs implements slog.Handler.
func (h *WebhookHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &clone
}

// WithGroup implements slog.Handler.
func (h *WebhookHandler) WithGroup(name string) slog.Handler {
	clone := *h
	if clone.group != "" {
		clone.group += "." + name
	} else {
		clone.group = name
	}
	return &clone
}

// Fanout returns a handler that forwards every record to each handler
// that wants it. Used to combine the local handler with a webhook
// mirror.
func Fanout(handlers ...slog.Handler) slog.Handler {
	return fanout(handlers)
}

type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var firstErr error
	for _, h := range f {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
