package tcec

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePGN = `[Event "TCEC Season 29 - Category 1 Playoff"]
[Site "https://tcec-chess.com"]
[Date "2025.12.02"]
[Round "2.1"]
[White "c4ke 1.1"]
[Black "Minic 3.44"]
[Result "*"]
[ECO "B43"]

1. d4 {book, mb=+0+0+0+0+0,} d5 {book, mb=+0+0+0+0+0,} 2. c4 {d=20, sd=34, mt=21042, tl=1729958, s=29372285, n=617498260, pv=c4, tb=0, h=12.4, ph=0.0, wv=0.31, R50=50, Rd=-11, Rr=-11, mb=+0+0+0+0+0,} e6 {d=18, sd=31, wv=0.28, mb=+0+0+0+0+0,} *
`

const inBookPGN = `[Event "TCEC Season 29 - Category 1 Playoff"]
[Date "2025.12.02"]
[White "c4ke 1.1"]
[Black "Minic 3.44"]

1. d4 {book, mb=+0+0+0+0+0,} d5 {book, mb=+0+0+0+0+0,} 2. c4 {book, mb=+0+0+0+0+0,} *
`

func TestParse_GrabsCorrectInformation(t *testing.T) {
	game, err := Parse(samplePGN)
	require.NoError(t, err)

	assert.True(t, game.White.Matches("c4ke"))
	assert.True(t, game.Black.Matches("Minic"))
	assert.Equal(t, "2025.12.02", game.Date)
	assert.Equal(t, "TCEC Season 29 - Category 1 Playoff", game.Event)
	assert.True(t, game.OutOfBook())
}

func TestParse_Moves(t *testing.T) {
	game, err := Parse(samplePGN)
	require.NoError(t, err)

	require.Len(t, game.Moves, 4)
	assert.Equal(t, Move{SAN: "d4", InBook: true}, game.Moves[0])
	assert.Equal(t, Move{SAN: "d5", InBook: true}, game.Moves[1])
	assert.Equal(t, Move{SAN: "c4", InBook: false}, game.Moves[2])
	assert.Equal(t, Move{SAN: "e6", InBook: false}, game.Moves[3])
}

func TestParse_InBookGame(t *testing.T) {
	game, err := Parse(inBookPGN)
	require.NoError(t, err)

	assert.False(t, game.OutOfBook())
	assert.Equal(t, []string{"d4", "d5", "c4"}, game.BookMoves())
}

func TestParse_MovesWithNoComment(t *testing.T) {
	src := `[Event "Test"]
[Date "2025.01.01"]
[White "A"]
[Black "B"]

1. e4 e5 2. Nf3 Nc6 *
`
	game, err := Parse(src)
	require.NoError(t, err)

	require.Len(t, game.Moves, 4)
	for _, mv := range game.Moves {
		assert.False(t, mv.InBook)
	}
	assert.True(t, game.OutOfBook())
}

func TestParse_SkipsVariations(t *testing.T) {
	src := `[Event "Test"]
[Date "2025.01.01"]
[White "A"]
[Black "B"]

1. e4 {book, x} (1. d4 d5 (1... Nf6)) e5 *
`
	game, err := Parse(src)
	require.NoError(t, err)

	require.Len(t, game.Moves, 2)
	assert.Equal(t, "e4", game.Moves[0].SAN)
	assert.Equal(t, "e5", game.Moves[1].SAN)
}

func TestParse_CompactMoveNumbers(t *testing.T) {
	src := `[Event "Test"]
[Date "2025.01.01"]
[White "A"]
[Black "B"]

1.e4 e5 2.Nf3 *
`
	game, err := Parse(src)
	require.NoError(t, err)

	require.Len(t, game.Moves, 3)
	assert.Equal(t, "Nf3", game.Moves[2].SAN)
}

func TestParse_MissingRequiredHeader(t *testing.T) {
	src := `[Event "Test"]
[Date "2025.01.01"]
[White "A"]

1. e4 *
`
	_, err := Parse(src)
	assert.ErrorContains(t, err, "Black")
}

func TestParse_EmptyDocument(t *testing.T) {
	_, err := Parse("")
	assert.ErrorContains(t, err, "empty PGN")

	_, err = Parse("   \n\n  ")
	assert.ErrorContains(t, err, "empty PGN")
}

func TestParse_TruncatedComment(t *testing.T) {
	// The feed serves an in-progress game and can cut off anywhere,
	// including mid-comment.
	src := `[Event "Test"]
[Date "2025.01.01"]
[White "A"]
[Black "B"]

1. e4 {book, mb=+0+0`
	game, err := Parse(src)
	require.NoError(t, err)

	require.Len(t, game.Moves, 1)
	// The partial comment is dropped, so the move stays non-book.
	assert.False(t, game.Moves[0].InBook)
}

func TestParse_EscapedHeaderValue(t *testing.T) {
	src := `[Event "TCEC \"Bonus\" Series"]
[Date "2025.01.01"]
[White "A"]
[Black "B"]

1. e4 *
`
	game, err := Parse(src)
	require.NoError(t, err)
	assert.Equal(t, `TCEC "Bonus" Series`, game.Event)
}

func TestParse_NoResultToken(t *testing.T) {
	src := `[Event "Test"]
[Date "2025.01.01"]
[White "A"]
[Black "B"]

1. e4 {book, x} e5 {book, x} 2. Nf3`
	game, err := Parse(src)
	require.NoError(t, err)
	require.Len(t, game.Moves, 3)
}

type parseSummary struct {
	Event     string `json:"event"`
	Date      string `json:"date"`
	White     string `json:"white"`
	Black     string `json:"black"`
	Plies     int    `json:"plies"`
	BookPlies int    `json:"book_plies"`
	OutOfBook bool   `json:"out_of_book"`
}

func TestParse_FixtureGolden(t *testing.T) {
	raw, err := os.ReadFile("testdata/live.pgn")
	require.NoError(t, err)

	game, err := Parse(string(raw))
	require.NoError(t, err)

	summary := parseSummary{
		Event:     game.Event,
		Date:      game.Date,
		White:     game.White.String(),
		Black:     game.Black.String(),
		Plies:     len(game.Moves),
		BookPlies: len(game.BookMoves()),
		OutOfBook: game.OutOfBook(),
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "live_pgn_summary", data)
}
