package clock

import "time"

// Timer is a pending function scheduled by AfterFunc.
type Timer interface {
	// Stop prevents the function from firing. It reports whether the call
	// stopped the timer, false means it already fired or was stopped.
	Stop() bool
}

// Clocker abstracts time so callers can replace real time in tests.
type Clocker interface {
	Now() time.Time
	// AfterFunc calls f in its own goroutine once d has elapsed.
	AfterFunc(d time.Duration, f func()) Timer
}

// TimeClocker is the production clock implementation backed by the time package.
type TimeClocker struct{}

// New returns a TimeClocker that reads the current system time.
func New() *TimeClocker {
	return &TimeClocker{}
}

// Now returns the current system time.
func (*TimeClocker) Now() time.Time {
	return time.Now()
}

// AfterFunc schedules f with time.AfterFunc.
func (*TimeClocker) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
