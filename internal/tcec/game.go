package tcec

import (
	"github.com/enginewatch/enginewatch/internal/fingerprint"
)

// Move is a single half-move from the feed PGN.
type Move struct {
	// SAN is the move in standard algebraic notation.
	SAN string
	// InBook is true when TCEC annotated the move as an opening book
	// move ("book," comment prefix).
	InBook bool
}

// Game is the parsed state of the in-progress TCEC game.
type Game struct {
	White Name
	Black Name
	Date  string
	Event string

	Moves []Move
}

// BookMoves returns the SAN of the leading run of book moves.
//
// TCEC sometimes re-flags later moves as 'book' (tablebase moves and
// other moves with no UCI info), so the opening is the prefix up to the
// first non-book move, not every move flagged as book.
func (g *Game) BookMoves() []string {
	var book []string
	for _, mv := range g.Moves {
		if !mv.InBook {
			break
		}
		book = append(book, mv.SAN)
	}
	return book
}

// OutOfBook reports whether any played move is not a book move. A game
// still inside its opening book has not meaningfully started yet.
func (g *Game) OutOfBook() bool {
	for _, mv := range g.Moves {
		if !mv.InBook {
			return true
		}
	}
	return false
}

// HasPlayer reports whether either side matches the given engine name.
func (g *Game) HasPlayer(name string) bool {
	return g.White.Matches(name) || g.Black.Matches(name)
}

// Fingerprint computes the game's content-addressed identity: players,
// date, and opening book. Two polls of the same game fingerprint
// identically no matter how far the game has progressed.
func (g *Game) Fingerprint() (string, error) {
	return fingerprint.Game(g.White.Normalize(), g.Black.Normalize(), g.Date, g.BookMoves())
}
