// Package system provides the real clock used by the job worker.
package system

import "time"

// Clock implements worker.Clock using the wall clock.
type Clock struct{}

// New creates a new Clock.
func New() *Clock {
	return &Clock{}
}

// Now returns the current time.
func (Clock) Now() time.Time {
	return time.Now().UTC()
}

// Sleep pauses the calling goroutine for d. Non-positive durations return
// immediately.
func (Clock) Sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	time.Sleep(d)
}
