// Package store provides SQLite-backed durable state for enginewatch.
//
// Two tables:
//   - seen_games: fingerprints of games already notified, so a restart
//     never re-notifies the same game
//   - deliveries: one record per notification attempt, success or
//     failure, for the history command
//
// Writes are idempotent where identity allows it: marking a game seen
// twice is a no-op (ON CONFLICT DO NOTHING on the fingerprint).
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: deliveries always reference a seen game
//
// Game fingerprints are computed in internal/fingerprint via canonical
// JSON and SHA-256 with domain separation.
package store
