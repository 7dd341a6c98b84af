// Package clock provides cooperative schedulers.
//
// Callbacks never run on timer goroutines: the real Loop posts them onto a task
// channel drained by the single owner goroutine, and Manual runs them inline when
// the test advances time. Either way a callback never interleaves with another
// call on the owner's state.
package clock

import "time"

// Cancel stops a scheduled callback; safe to call more than once
type Cancel func()

// Scheduler defers callbacks onto the owner's loop
type Scheduler interface {
	// Now returns the scheduler's current time
	Now() time.Time
	// After runs fn once after d
	After(d time.Duration, fn func()) Cancel
	// Every runs fn every d until cancelled
	Every(d time.Duration, fn func()) Cancel
}
