package tcec

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"

	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// pgnEventName is the socket.io event carrying the live PGN document.
const pgnEventName = "pgn"

// LiveFeed subscribes to the TCEC site's socket.io stream and caches
// the most recently pushed game. It satisfies the same CurrentGame
// contract as Client, so the poller does not care which source it is
// wired to; the difference is that LiveFeed answers from memory between
// pushes instead of refetching.
type LiveFeed struct {
	logger *slog.Logger

	manager *socket.Manager
	io      *socket.Socket

	mu   sync.Mutex
	game *Game
}

// NewLiveFeed connects to the socket.io endpoint at siteURL and begins
// listening for PGN pushes. An empty siteURL means SiteURL.
func NewLiveFeed(siteURL string, logger *slog.Logger) (*LiveFeed, error) {
	if siteURL == "" {
		siteURL = SiteURL
	}

	parsed, err := url.Parse(siteURL)
	if err != nil {
		return nil, fmt.Errorf("live feed: parse URL: %w", err)
	}
	baseURL := fmt.Sprintf("%s://%s", parsed.Scheme, parsed.Host)

	opts := socket.DefaultOptions()
	opts.SetTransports(types.NewSet(transports.WebSocket))

	f := &LiveFeed{logger: logger}
	f.manager = socket.NewManager(baseURL, opts)
	f.io = f.manager.Socket("/", opts)

	f.io.On(types.EventName("connect"), func(...any) {
		f.logger.Info("live feed connected", "sid", f.io.Id())
	})

	f.io.On(types.EventName("connect_error"), func(errs ...any) {
		if len(errs) > 0 {
			f.logger.Warn("live feed connection error", "error", errs[0])
		}
	})

	f.io.On(types.EventName(pgnEventName), func(data ...any) {
		f.handlePGN(data...)
	})

	f.io.Connect()

	return f, nil
}

// handlePGN parses a pushed PGN payload and swaps it in as the current
// game. The payload is either the raw document or an object with a
// "pgn" field, depending on the feed version.
func (f *LiveFeed) handlePGN(data ...any) {
	if len(data) == 0 {
		return
	}

	var doc string
	switch payload := data[0].(type) {
	case string:
		doc = payload
	case map[string]any:
		if s, ok := payload["pgn"].(string); ok {
			doc = s
		}
	}
	if doc == "" {
		f.logger.Warn("live feed pushed an unrecognized PGN payload")
		return
	}

	game, err := Parse(doc)
	if err != nil {
		f.logger.Warn("live feed pushed an unparseable PGN", "error", err)
		return
	}

	f.mu.Lock()
	f.game = game
	f.mu.Unlock()

	f.logger.Debug("live feed updated", "white", game.White, "black", game.Black, "plies", len(game.Moves))
}

// CurrentGame returns the most recently pushed game. Before the first
// push there is no game yet, which is an error just as a failed HTTP
// fetch would be.
func (f *LiveFeed) CurrentGame(ctx context.Context) (*Game, error) {
	f.mu.Lock()
	game := f.game
	f.mu.Unlock()

	if game == nil {
		return nil, fmt.Errorf("live feed: no game received yet")
	}
	return game, nil
}

// Close disconnects from the socket.io endpoint.
func (f *LiveFeed) Close() {
	f.io.Disconnect()
}
