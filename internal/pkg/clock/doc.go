// Package clock provides a tiny time abstraction.
//
// Production code should depend on the Clocker interface instead of calling
// time.Now() or time.AfterFunc() directly. Countdown timers and delayed
// resets then become deterministic in tests: swap in Fake and drive time
// forward with Advance.
package clock
