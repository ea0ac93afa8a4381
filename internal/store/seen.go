package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SeenGame is the durable record of a game that has been processed.
type SeenGame struct {
	Fingerprint string
	White       string
	Black       string
	Event       string
	Date        string
	FirstSeen   time.Time
}

// MarkSeen records the game as processed. Idempotent: marking the same
// fingerprint twice is a no-op and keeps the original first_seen.
func (s *Store) MarkSeen(ctx context.Context, g SeenGame) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO seen_games (fingerprint, white, black, event, date, first_seen)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(fingerprint) DO NOTHING
	`,
		g.Fingerprint,
		g.White,
		g.Black,
		g.Event,
		g.Date,
		g.FirstSeen.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("mark seen: %w", err)
	}
	return nil
}

// Seen reports whether a fingerprint has already been processed.
func (s *Store) Seen(ctx context.Context, fingerprint string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		"SELECT 1 FROM seen_games WHERE fingerprint = ?", fingerprint,
	).Scan(&one)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	default:
		return false, fmt.Errorf("seen lookup: %w", err)
	}
}

// CountSeen returns the number of recorded games.
func (s *Store) CountSeen(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM seen_games").Scan(&n); err != nil {
		return 0, fmt.Errorf("count seen: %w", err)
	}
	return n, nil
}
