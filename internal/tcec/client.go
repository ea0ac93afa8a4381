package tcec

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Well-known TCEC URLs.
const (
	// SiteURL is the public site, used as the link target in
	// notifications.
	SiteURL = "https://tcec-chess.com/"
	// LivePGNURL serves the in-progress game as a PGN document.
	LivePGNURL = "https://tcec-chess.com/live.pgn"
)

const fetchTimeout = 15 * time.Second

// Client fetches the current game over HTTP.
//
// Redirects are not followed: the feed URL is stable, and a redirect
// means something is wrong upstream rather than a new home for the
// data.
type Client struct {
	url  string
	http *http.Client
}

// NewClient creates a Client for the given PGN URL. An empty url means
// LivePGNURL.
func NewClient(url string) *Client {
	if url == "" {
		url = LivePGNURL
	}
	return &Client{
		url: url,
		http: &http.Client{
			Timeout: fetchTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// CurrentGame fetches and parses the in-progress game. The game is
// returned whether or not it is out of book; callers decide what an
// in-book game means for them.
func (c *Client) CurrentGame(ctx context.Context) (*Game, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch live PGN: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch live PGN: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch live PGN: unexpected server response: %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetch live PGN: %w", err)
	}

	game, err := Parse(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse live PGN: %w", err)
	}

	return game, nil
}
