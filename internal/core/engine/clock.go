package engine

import "time"

// Clock abstracts time.Now() so drift correction and restore logic can be
// tested with synthetic deltas instead of real sleeps.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the standard time package.
type RealClock struct{}

// Now returns the current local time.
func (RealClock) Now() time.Time {
	return time.Now()
}
