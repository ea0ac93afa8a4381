package poller

import "time"

// Clock abstracts the wait between cycles so tests can drive the loop
// without real time passing.
type Clock interface {
	// After behaves like time.After.
	After(d time.Duration) <-chan time.Time
	// Now behaves like time.Now.
	Now() time.Time
}

// SystemClock is the real-time Clock used outside tests.
type SystemClock struct{}

func (SystemClock) After(d time.Duration) <-chan time.Time { return time.After(d) }
func (SystemClock) Now() time.Time                         { return time.Now() }
