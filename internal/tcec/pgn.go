package tcec

import (
	"fmt"
	"regexp"
	"strings"
)

// PGN header keys the parser cares about. Everything else is ignored.
const (
	eventHeaderKey = "Event"
	dateHeaderKey  = "Date"
	whiteHeaderKey = "White"
	blackHeaderKey = "Black"
)

// bookCommentPrefix marks a move comment as an opening book move on the
// TCEC feed.
const bookCommentPrefix = "book,"

var headerRE = regexp.MustCompile(`^\[(\w+)\s+"((?:[^"\\]|\\.)*)"\]\s*$`)

// Parse parses a TCEC live PGN document into a Game.
//
// The parser is deliberately tolerant of the movetext: the feed serves
// an in-progress game, so there may be no result token and the document
// may end mid-line. Variations, NAGs, and move numbers are skipped;
// brace comments are attached to the move they follow. The four headers
// the Game needs (Event, Date, White, Black) are required.
func Parse(src string) (*Game, error) {
	if strings.TrimSpace(src) == "" {
		return nil, fmt.Errorf("empty PGN")
	}

	headers, movetext := splitHeaders(src)

	game := &Game{}
	for _, key := range []string{whiteHeaderKey, blackHeaderKey, dateHeaderKey, eventHeaderKey} {
		value, ok := headers[key]
		if !ok {
			return nil, fmt.Errorf("PGN missing required header %q", key)
		}
		switch key {
		case whiteHeaderKey:
			game.White = Name(value)
		case blackHeaderKey:
			game.Black = Name(value)
		case dateHeaderKey:
			game.Date = value
		case eventHeaderKey:
			game.Event = value
		}
	}

	moves, err := parseMovetext(movetext)
	if err != nil {
		return nil, err
	}
	game.Moves = moves

	return game, nil
}

// splitHeaders separates the tag pair section from the movetext.
// Unrecognized or malformed header lines are skipped rather than
// rejected; the feed occasionally carries site-specific tags.
func splitHeaders(src string) (map[string]string, string) {
	headers := make(map[string]string)

	lines := strings.Split(src, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if !strings.HasPrefix(trimmed, "[") {
			// First movetext line; everything from here on is moves.
			return headers, strings.Join(lines[i:], "\n")
		}
		if m := headerRE.FindStringSubmatch(trimmed); m != nil {
			headers[m[1]] = unescapeHeaderValue(m[2])
		}
	}

	return headers, ""
}

func unescapeHeaderValue(v string) string {
	v = strings.ReplaceAll(v, `\"`, `"`)
	v = strings.ReplaceAll(v, `\\`, `\`)
	return v
}

// parseMovetext scans movetext into moves, attaching each brace comment
// to the move it follows. Variations are skipped entirely.
func parseMovetext(src string) ([]Move, error) {
	var moves []Move

	i := 0
	for i < len(src) {
		c := src[i]

		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++

		case c == '{':
			end := strings.IndexByte(src[i:], '}')
			if end < 0 {
				// Truncated mid-comment; the feed can cut off anywhere.
				// Drop the partial comment and stop.
				return moves, nil
			}
			comment := src[i+1 : i+end]
			if len(moves) > 0 {
				moves[len(moves)-1].InBook = isBookComment(comment)
			}
			i += end + 1

		case c == ';':
			end := strings.IndexByte(src[i:], '\n')
			if end < 0 {
				return moves, nil
			}
			i += end + 1

		case c == '(':
			skipped, err := skipVariation(src[i:])
			if err != nil {
				return nil, err
			}
			i += skipped

		case c == '$':
			i++
			for i < len(src) && src[i] >= '0' && src[i] <= '9' {
				i++
			}

		case c == ')':
			return nil, fmt.Errorf("unbalanced ')' in movetext")

		default:
			start := i
			for i < len(src) && !isTokenBreak(src[i]) {
				i++
			}
			token := src[start:i]
			if isResult(token) {
				continue
			}
			// Strip a leading move number, which may be glued to the
			// move ("12.e4") or stand alone ("12." / "12...").
			if prefix := moveNumberRE.FindString(token); prefix != "" {
				token = token[len(prefix):]
			}
			if token == "" || isResult(token) {
				continue
			}
			moves = append(moves, Move{SAN: token})
		}
	}

	return moves, nil
}

func isBookComment(comment string) bool {
	return strings.HasPrefix(strings.TrimSpace(comment), bookCommentPrefix)
}

// skipVariation consumes a balanced parenthesized variation, including
// nested variations and comments inside it. Returns the number of bytes
// consumed.
func skipVariation(src string) (int, error) {
	depth := 0
	i := 0
	for i < len(src) {
		switch src[i] {
		case '(':
			depth++
			i++
		case ')':
			depth--
			i++
			if depth == 0 {
				return i, nil
			}
		case '{':
			end := strings.IndexByte(src[i:], '}')
			if end < 0 {
				return 0, fmt.Errorf("unterminated comment in variation")
			}
			i += end + 1
		default:
			i++
		}
	}
	return 0, fmt.Errorf("unterminated variation")
}

func isTokenBreak(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '{', '}', '(', ')', ';':
		return true
	}
	return false
}

var moveNumberRE = regexp.MustCompile(`^\d+\.+`)

func isResult(token string) bool {
	switch token {
	case "1-0", "0-1", "1/2-1/2", "*":
		return true
	}
	return false
}
