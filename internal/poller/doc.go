// Package poller runs the watch loop.
//
// Each cycle: refresh the watch config, fetch the current game, and if
// the game is out of book and not yet seen, match both players against
// the interest index, send one notification, and record the outcome.
//
// The loop is deliberately single-threaded. One goroutine does fetch,
// match, notify, and store writes in order, so there is no shared
// mutable state and a cycle's effects are fully applied before the next
// begins. A cycle that fails to fetch or refresh logs a warning and the
// loop carries on with what it had; only startup errors are fatal.
//
// A game is notified at most once: its fingerprint (players, date,
// opening book) is persisted before the next cycle can observe the
// game again, and a failed send still marks the game seen. A webhook
// outage must not turn into a mention storm when it recovers.
package poller
