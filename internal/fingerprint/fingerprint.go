// Package fingerprint computes content-addressed identities for TCEC
// games.
//
// A game's identity is its players, its date, and its opening book: two
// fetches of the same game must hash identically regardless of how many
// moves have been played since, and two different games on the same day
// differ by their book. Fingerprints are SHA-256 over canonical JSON
// with domain separation, so the identity is stable across restarts and
// safe to persist.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainGame is the domain prefix for game fingerprints.
// Version suffix enables future algorithm migration.
const DomainGame = "enginewatch/game/v1"

// Game computes the fingerprint of a game from its normalized player
// names, its date header, and the SAN of its book moves.
//
// Same players + same date + same book => same fingerprint. Moves played
// after the book are deliberately excluded: the fingerprint must not
// change as an in-progress game advances.
func Game(white, black, date string, book []string) (string, error) {
	obj := map[string]any{
		"white": white,
		"black": black,
		"date":  date,
		"book":  book,
	}

	canonical, err := marshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("game fingerprint: %w", err)
	}

	return hashWithDomain(DomainGame, canonical), nil
}

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}
