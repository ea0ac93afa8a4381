// Package notify delivers game notifications through a Discord-style
// messaging webhook.
//
// The message format links the tournament, names both engines, and
// appends user mentions for everyone following a participating engine.
// Mentions are emitted sorted so the same game always renders the same
// message.
//
// The package also provides WebhookHandler, an slog.Handler that
// mirrors log records at or above a threshold to a webhook, so
// operational warnings reach the same channel the operator already
// watches.
package notify
