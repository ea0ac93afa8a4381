package poller

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enginewatch/enginewatch/internal/config"
	"github.com/enginewatch/enginewatch/internal/notify"
	"github.com/enginewatch/enginewatch/internal/store"
	"github.com/enginewatch/enginewatch/internal/tcec"
	"github.com/enginewatch/enginewatch/internal/testutil"
)

type fakeSource struct {
	mu   sync.Mutex
	game *tcec.Game
	err  error
}

func (s *fakeSource) CurrentGame(ctx context.Context) (*tcec.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.game, nil
}

type fakeNotifier struct {
	mu    sync.Mutex
	sent  []notify.Content
	err   error
	sentC chan struct{}
}

func (n *fakeNotifier) Notify(ctx context.Context, c notify.Content) error {
	n.mu.Lock()
	n.sent = append(n.sent, c)
	n.mu.Unlock()
	if n.sentC != nil {
		n.sentC <- struct{}{}
	}
	return n.err
}

func (n *fakeNotifier) all() []notify.Content {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notify.Content{}, n.sent...)
}

type fakeProvider struct {
	mu  sync.Mutex
	cfg *config.WatchConfig
	err error
}

func (p *fakeProvider) Load(ctx context.Context) (*config.WatchConfig, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}
	return p.cfg, nil
}

func (p *fakeProvider) set(cfg *config.WatchConfig, err error) {
	p.mu.Lock()
	p.cfg, p.err = cfg, err
	p.mu.Unlock()
}

func outOfBookGame() *tcec.Game {
	return &tcec.Game{
		White: "Stockfish 17",
		Black: "LCZero 0.31",
		Date:  "2025.12.02",
		Event: "TCEC Season 29 - Superfinal",
		Moves: []tcec.Move{
			{SAN: "e4", InBook: true},
			{SAN: "e5", InBook: true},
			{SAN: "Nf3", InBook: false},
		},
	}
}

func inBookGame() *tcec.Game {
	g := outOfBookGame()
	g.Moves = g.Moves[:2]
	return g
}

func watchConfig() *config.WatchConfig {
	return &config.WatchConfig{Users: map[string][]string{
		"alice": {"Stockfish"},
		"bob":   {"Stockfish", "LCZero"},
	}}
}

type fixture struct {
	poller   *Poller
	source   *fakeSource
	notifier *fakeNotifier
	provider *fakeProvider
	store    *store.Store
	clock    *testutil.FakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	f := &fixture{
		source:   &fakeSource{game: outOfBookGame()},
		notifier: &fakeNotifier{},
		provider: &fakeProvider{cfg: watchConfig()},
		store:    st,
		clock:    testutil.NewFakeClock(),
	}
	f.poller = New(Options{
		Source:   f.source,
		Provider: f.provider,
		Notifier: f.notifier,
		Store:    st,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Interval: 30 * time.Second,
		SiteURL:  "https://tcec-chess.com/",
		Clock:    f.clock,
	})
	return f
}

// load primes the poller's config the way Run's initial load does.
func (f *fixture) load(t *testing.T) {
	t.Helper()
	cfg, err := f.provider.Load(context.Background())
	require.NoError(t, err)
	f.poller.swapConfig(cfg)
}

func TestCycle_NotifiesNewGame(t *testing.T) {
	f := newFixture(t)
	f.load(t)

	res := f.poller.Cycle(context.Background())

	assert.Equal(t, OutcomeNotified, res.Outcome)
	assert.Equal(t, []string{"alice", "bob"}, res.Mentions)

	sent := f.notifier.all()
	require.Len(t, sent, 1)
	assert.Equal(t, "TCEC Season 29 - Superfinal", sent[0].Tournament)
	assert.Equal(t, "Stockfish 17", sent[0].White)
	assert.Equal(t, []string{"alice", "bob"}, sent[0].Mentions)
}

func TestCycle_SecondSightingIsSilent(t *testing.T) {
	f := newFixture(t)
	f.load(t)
	ctx := context.Background()

	first := f.poller.Cycle(ctx)
	require.Equal(t, OutcomeNotified, first.Outcome)

	second := f.poller.Cycle(ctx)
	assert.Equal(t, OutcomeAlreadySeen, second.Outcome)
	assert.Len(t, f.notifier.all(), 1, "a game must be notified at most once")
}

func TestCycle_GameProgressDoesNotRetrigger(t *testing.T) {
	f := newFixture(t)
	f.load(t)
	ctx := context.Background()

	require.Equal(t, OutcomeNotified, f.poller.Cycle(ctx).Outcome)

	// More moves arrive; the fingerprint (players, date, book) is
	// unchanged.
	longer := outOfBookGame()
	longer.Moves = append(longer.Moves, tcec.Move{SAN: "Nc6"}, tcec.Move{SAN: "Bb5"})
	f.source.game = longer

	assert.Equal(t, OutcomeAlreadySeen, f.poller.Cycle(ctx).Outcome)
}

func TestCycle_InBookGameWaits(t *testing.T) {
	f := newFixture(t)
	f.load(t)
	f.source.game = inBookGame()

	res := f.poller.Cycle(context.Background())

	assert.Equal(t, OutcomeInBook, res.Outcome)
	assert.Empty(t, f.notifier.all())
}

func TestCycle_FetchFailure(t *testing.T) {
	f := newFixture(t)
	f.load(t)
	f.source.err = fmt.Errorf("connection refused")

	res := f.poller.Cycle(context.Background())

	assert.Equal(t, OutcomeFetchFailed, res.Outcome)
	assert.Empty(t, f.notifier.all())
}

func TestCycle_NotifyFailureStillMarksSeen(t *testing.T) {
	f := newFixture(t)
	f.load(t)
	f.notifier.err = fmt.Errorf("webhook returned 429")
	ctx := context.Background()

	res := f.poller.Cycle(ctx)
	assert.Equal(t, OutcomeNotifyFailed, res.Outcome)

	// A recovering webhook must not replay the game.
	f.notifier.err = nil
	assert.Equal(t, OutcomeAlreadySeen, f.poller.Cycle(ctx).Outcome)

	deliveries, err := f.store.ListDeliveries(ctx, 0)
	require.NoError(t, err)
	require.Len(t, deliveries, 1)
	assert.Equal(t, store.DeliveryError, deliveries[0].Status)
	assert.Contains(t, deliveries[0].Error, "429")
}

func TestCycle_RecordsDelivery(t *testing.T) {
	f := newFixture(t)
	f.load(t)
	ctx := context.Background()

	f.poller.Cycle(ctx)

	deliveries, err := f.store.ListDeliveries(ctx, 0)
	require.NoError(t, err)
	require.Len(t, deliveries, 1)

	d := deliveries[0]
	assert.Equal(t, store.DeliveryOK, d.Status)
	assert.Equal(t, []string{"Stockfish", "LCZero"}, d.Engines)
	assert.Equal(t, []string{"alice", "bob"}, d.Mentions)
}

func TestCycle_NoFollowersStillNotifies(t *testing.T) {
	f := newFixture(t)
	f.provider.set(&config.WatchConfig{Users: map[string][]string{
		"carol": {"Torch"},
	}}, nil)
	f.load(t)

	res := f.poller.Cycle(context.Background())

	assert.Equal(t, OutcomeNotified, res.Outcome)
	assert.Empty(t, res.Mentions)

	sent := f.notifier.all()
	require.Len(t, sent, 1)
	assert.Empty(t, sent[0].Mentions)
}

func TestCycle_BrokenRefreshKeepsLastConfig(t *testing.T) {
	f := newFixture(t)
	f.load(t)
	f.provider.set(nil, fmt.Errorf("config host down"))

	res := f.poller.Cycle(context.Background())

	assert.Equal(t, OutcomeNotified, res.Outcome)
	assert.Equal(t, []string{"alice", "bob"}, res.Mentions, "old config must stay in effect")
}

func TestCycle_RefreshSwapsConfig(t *testing.T) {
	f := newFixture(t)
	f.load(t)
	f.provider.set(&config.WatchConfig{Users: map[string][]string{
		"dave": {"LCZero"},
	}}, nil)

	res := f.poller.Cycle(context.Background())

	assert.Equal(t, OutcomeNotified, res.Outcome)
	assert.Equal(t, []string{"dave"}, res.Mentions)
}

func TestRun_InitialLoadFailureIsFatal(t *testing.T) {
	f := newFixture(t)
	f.provider.set(nil, fmt.Errorf("config host down"))

	err := f.poller.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "initial watch config load")
}

func TestRun_CyclesUntilCancelled(t *testing.T) {
	f := newFixture(t)
	f.notifier.sentC = make(chan struct{}, 1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.poller.Run(ctx) }()

	// First cycle notifies.
	select {
	case <-f.notifier.sentC:
	case <-time.After(5 * time.Second):
		t.Fatal("first cycle never notified")
	}

	// Wait for the loop to block on the clock, then drive one more
	// cycle; the game is already seen so nothing new is sent.
	require.Eventually(t, func() bool { return f.clock.Waiters() == 1 },
		5*time.Second, 5*time.Millisecond)
	f.clock.Advance(30 * time.Second)

	require.Eventually(t, func() bool { return f.clock.Waiters() == 1 },
		5*time.Second, 5*time.Millisecond)
	assert.Len(t, f.notifier.all(), 1)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop on cancellation")
	}
}
