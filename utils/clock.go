package utils

import "time"

// SystemClock is the real-time model.Clock used outside of tests.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}
