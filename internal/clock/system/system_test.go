// Package system exercises the clock adapters.
package system

import (
	"testing"
	"time"
)

// TestClockNowUTC ensures the clock returns UTC timestamps.
func TestClockNowUTC(t *testing.T) {
	t.Parallel()

	clk := New()
	before := time.Now().UTC().Add(-time.Second)
	got := clk.Now()
	after := time.Now().UTC().Add(time.Second)

	if got.Location() != time.UTC {
		t.Fatalf("expected UTC location, got %v", got.Location())
	}
	if got.Before(before) || got.After(after) {
		t.Fatalf("expected %v to be between %v and %v", got, before, after)
	}
}

// TestFixedClock ensures a frozen clock always reports the same UTC instant.
func TestFixedClock(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, time.May, 1, 23, 30, 0, 0, time.FixedZone("MSK", 3*60*60))
	clk := Fixed{At: at}

	first := clk.Now()
	second := clk.Now()
	if !first.Equal(second) {
		t.Fatalf("expected identical instants, got %v and %v", first, second)
	}
	if first.Location() != time.UTC {
		t.Fatalf("expected UTC location, got %v", first.Location())
	}
	if got := first.Format("02.01.2006"); got != "01.05.2024" {
		t.Fatalf("expected UTC day 01.05.2024, got %s", got)
	}
}
