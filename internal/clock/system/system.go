// Package system provides clock implementations for stamping ingestion dates.
package system

import "time"

// Clock implements crawler.Clock using the wall clock in UTC.
type Clock struct{}

// New creates a new Clock.
func New() *Clock {
	return &Clock{}
}

// Now returns the current time in UTC.
func (Clock) Now() time.Time {
	return time.Now().UTC()
}

// Fixed is a crawler.Clock frozen at a single instant. It lets a sweep be
// replayed as if it ran on a given calendar day.
type Fixed struct {
	At time.Time
}

// Now returns the frozen instant in UTC.
func (f Fixed) Now() time.Time {
	return f.At.UTC()
}
