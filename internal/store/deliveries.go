package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Delivery status values.
const (
	DeliveryOK    = "ok"
	DeliveryError = "error"
)

// Delivery is one notification attempt for a seen game.
type Delivery struct {
	ID          string    `json:"id"`
	Fingerprint string    `json:"fingerprint"`
	Engines     []string  `json:"engines"`
	Mentions    []string  `json:"mentions"`
	Status      string    `json:"status"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// RecordDelivery inserts a delivery record. A zero ID gets a fresh
// UUID; a zero CreatedAt gets the current time. The referenced game
// must already be marked seen (foreign key).
func (s *Store) RecordDelivery(ctx context.Context, d Delivery) (string, error) {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}

	engines, err := marshalStrings(d.Engines)
	if err != nil {
		return "", fmt.Errorf("record delivery: %w", err)
	}
	mentions, err := marshalStrings(d.Mentions)
	if err != nil {
		return "", fmt.Errorf("record delivery: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO deliveries (id, fingerprint, engines, mentions, status, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		d.ID,
		d.Fingerprint,
		engines,
		mentions,
		d.Status,
		d.Error,
		d.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("record delivery: %w", err)
	}

	return d.ID, nil
}

// ListDeliveries returns the most recent deliveries, newest first.
// A limit <= 0 means a default of 20.
func (s *Store) ListDeliveries(ctx context.Context, limit int) ([]Delivery, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, fingerprint, engines, mentions, status, error, created_at
		FROM deliveries
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list deliveries: %w", err)
	}
	defer rows.Close()

	var out []Delivery
	for rows.Next() {
		var d Delivery
		var engines, mentions, createdAt string
		if err := rows.Scan(&d.ID, &d.Fingerprint, &engines, &mentions, &d.Status, &d.Error, &createdAt); err != nil {
			return nil, fmt.Errorf("list deliveries: %w", err)
		}
		if d.Engines, err = unmarshalStrings(engines); err != nil {
			return nil, fmt.Errorf("list deliveries: %w", err)
		}
		if d.Mentions, err = unmarshalStrings(mentions); err != nil {
			return nil, fmt.Errorf("list deliveries: %w", err)
		}
		if d.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("list deliveries: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list deliveries: %w", err)
	}

	return out, nil
}

// marshalStrings serializes a string slice as a JSON array. nil
// serializes as [] so the column is never NULL.
func marshalStrings(v []string) (string, error) {
	if v == nil {
		v = []string{}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func unmarshalStrings(data string) ([]string, error) {
	var v []string
	if err := json.Unmarshal([]byte(data), &v); err != nil {
		return nil, err
	}
	return v, nil
}
