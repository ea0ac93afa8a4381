package poller

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/enginewatch/enginewatch/internal/config"
	"github.com/enginewatch/enginewatch/internal/notify"
	"github.com/enginewatch/enginewatch/internal/store"
	"github.com/enginewatch/enginewatch/internal/tcec"
)

// Source supplies the current game. Both the HTTP client and the live
// feed satisfy it.
type Source interface {
	CurrentGame(ctx context.Context) (*tcec.Game, error)
}

// Outcome says what one cycle did with the feed's game.
type Outcome string

const (
	// OutcomeFetchFailed: the game could not be fetched or parsed.
	OutcomeFetchFailed Outcome = "fetch_failed"
	// OutcomeInBook: the game is still playing its opening book.
	OutcomeInBook Outcome = "in_book"
	// OutcomeAlreadySeen: the game was processed in an earlier cycle.
	OutcomeAlreadySeen Outcome = "already_seen"
	// OutcomeNotified: a new game, notification sent.
	OutcomeNotified Outcome = "notified"
	// OutcomeNotifyFailed: a new game, but the send failed. The game
	// still counts as seen.
	OutcomeNotifyFailed Outcome = "notify_failed"
)

// Result is the observable effect of one cycle.
type Result struct {
	Outcome  Outcome
	Game     *tcec.Game
	Matches  []config.Match
	Mentions []string
}

// Options wires a Poller.
type Options struct {
	Source   Source
	Provider config.Provider
	Notifier notify.Notifier
	Store    *store.Store
	Logger   *slog.Logger
	Interval time.Duration
	// SiteURL is the link target used in notifications.
	SiteURL string
	// Clock defaults to SystemClock.
	Clock Clock
}

// Poller runs the watch loop. Not safe for concurrent use; Run owns it.
type Poller struct {
	opts  Options
	clock Clock

	cfg      *config.WatchConfig
	index    *config.InterestIndex
	firstRun bool
}

// New creates a Poller. The initial watch config load happens in Run.
func New(opts Options) *Poller {
	clock := opts.Clock
	if clock == nil {
		clock = SystemClock{}
	}
	if opts.SiteURL == "" {
		opts.SiteURL = tcec.SiteURL
	}
	return &Poller{opts: opts, clock: clock, firstRun: true}
}

// Run loads the watch config and cycles until ctx is cancelled. The
// initial load is fatal; after that a broken refresh keeps the last
// good config.
func (p *Poller) Run(ctx context.Context) error {
	cfg, err := p.opts.Provider.Load(ctx)
	if err != nil {
		return fmt.Errorf("initial watch config load: %w", err)
	}
	p.swapConfig(cfg)
	p.opts.Logger.Info("watch config loaded", "engines", cfg.Engines())

	for {
		p.Cycle(ctx)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.clock.After(p.opts.Interval):
		}
	}
}

// Cycle performs one poll: refresh config, fetch, dedup, match, notify,
// record. Errors inside a cycle are logged, not returned; the loop must
// outlive transient feed and webhook trouble.
func (p *Poller) Cycle(ctx context.Context) Result {
	p.refreshConfig(ctx)

	game, err := p.opts.Source.CurrentGame(ctx)
	if err != nil {
		p.opts.Logger.Warn("unable to fetch in-progress game", "error", err)
		return Result{Outcome: OutcomeFetchFailed}
	}

	if !game.OutOfBook() {
		// The game is in its opening and hasn't 'started' yet.
		return Result{Outcome: OutcomeInBook, Game: game}
	}

	if p.firstRun {
		p.opts.Logger.Info("in progress",
			"white", game.White, "black", game.Black, "plies", len(game.Moves))
		p.firstRun = false
	}

	fp, err := game.Fingerprint()
	if err != nil {
		p.opts.Logger.Warn("unable to fingerprint game", "error", err)
		return Result{Outcome: OutcomeFetchFailed, Game: game}
	}

	seen, err := p.opts.Store.Seen(ctx, fp)
	if err != nil {
		p.opts.Logger.Warn("seen lookup failed", "error", err)
		return Result{Outcome: OutcomeFetchFailed, Game: game}
	}
	if seen {
		return Result{Outcome: OutcomeAlreadySeen, Game: game}
	}

	p.opts.Logger.Info("new game", "white", game.White, "black", game.Black, "event", game.Event)

	matches, mentions := p.matchGame(game)
	for _, m := range matches {
		p.opts.Logger.Info("will notify users for engine",
			"engine", m.Engine, "users", len(m.Users))
	}

	sendErr := p.opts.Notifier.Notify(ctx, notify.Content{
		Tournament: game.Event,
		White:      game.White.String(),
		Black:      game.Black.String(),
		Mentions:   mentions,
		SiteURL:    p.opts.SiteURL,
	})
	if sendErr != nil {
		p.opts.Logger.Error("unable to send notification", "error", sendErr)
	}

	p.record(ctx, game, fp, matches, mentions, sendErr)

	if sendErr != nil {
		return Result{Outcome: OutcomeNotifyFailed, Game: game, Matches: matches, Mentions: mentions}
	}
	return Result{Outcome: OutcomeNotified, Game: game, Matches: matches, Mentions: mentions}
}

// refreshConfig swaps in a fresh watch config if one loads; otherwise
// the previous config stays in effect.
func (p *Poller) refreshConfig(ctx context.Context) {
	fresh, err := p.opts.Provider.Load(ctx)
	if err != nil {
		p.opts.Logger.Warn("unable to fetch new watch config", "error", err)
		return
	}
	if !p.cfg.Equal(fresh) {
		p.opts.Logger.Info("watch config updated", "engines", fresh.Engines())
	}
	p.swapConfig(fresh)
}

func (p *Poller) swapConfig(cfg *config.WatchConfig) {
	p.cfg = cfg
	p.index = cfg.Index()
}

// matchGame matches both players against the index and unions the
// users to mention. Mention dedup and ordering happen at the formatting
// boundary.
func (p *Poller) matchGame(game *tcec.Game) ([]config.Match, []string) {
	matches := p.index.MatchPlayer(game.White)
	matches = append(matches, p.index.MatchPlayer(game.Black)...)

	set := make(map[string]struct{})
	for _, m := range matches {
		for _, u := range m.Users {
			set[u] = struct{}{}
		}
	}
	mentions := make([]string, 0, len(set))
	for u := range set {
		mentions = append(mentions, u)
	}
	sort.Strings(mentions)
	return matches, mentions
}

// record marks the game seen and logs the delivery. Store failures are
// logged: losing a record is survivable, crashing the loop is not.
func (p *Poller) record(ctx context.Context, game *tcec.Game, fp string, matches []config.Match, mentions []string, sendErr error) {
	err := p.opts.Store.MarkSeen(ctx, store.SeenGame{
		Fingerprint: fp,
		White:       game.White.String(),
		Black:       game.Black.String(),
		Event:       game.Event,
		Date:        game.Date,
		FirstSeen:   p.clock.Now(),
	})
	if err != nil {
		p.opts.Logger.Error("unable to record seen game", "error", err)
		return
	}

	delivery := store.Delivery{
		Fingerprint: fp,
		Mentions:    mentions,
		Status:      store.DeliveryOK,
		CreatedAt:   p.clock.Now(),
	}
	for _, m := range matches {
		delivery.Engines = append(delivery.Engines, m.Engine)
	}
	if sendErr != nil {
		delivery.Status = store.DeliveryError
		delivery.Error = sendErr.Error()
	}

	if _, err := p.opts.Store.RecordDelivery(ctx, delivery); err != nil {
		p.opts.Logger.Error("unable to record delivery", "error", err)
	}
}
