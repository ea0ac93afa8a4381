package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// webhookUsername is the sender name shown on posted messages.
const webhookUsername = "enginewatch"

const sendTimeout = 15 * time.Second

// Notifier delivers a game notification. The poller only knows this
// interface; tests substitute a recorder.
type Notifier interface {
	Notify(ctx context.Context, c Content) error
}

// Webhook posts messages to a Discord-compatible webhook URL.
type Webhook struct {
	url  string
	http *http.Client
}

// NewWebhook creates a Webhook for the given URL.
func NewWebhook(url string) *Webhook {
	return &Webhook{
		url:  url,
		http: &http.Client{Timeout: sendTimeout},
	}
}

// Notify implements Notifier.
func (w *Webhook) Notify(ctx context.Context, c Content) error {
	return w.Send(ctx, Message(c))
}

// Send posts raw message content to the webhook. Mention parsing is
// restricted to users: a config or feed string can never trigger
// @everyone.
func (w *Webhook) Send(ctx context.Context, content string) error {
	payload := map[string]any{
		"username": webhookUsername,
		"allowed_mentions": map[string]any{
			"parse": []string{"users"},
		},
		"content": content,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("webhook: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.http.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook: unexpected server response: %s", resp.Status)
	}

	return nil
}
