package clock

import (
	"testing"
	"time"
)

func TestFixedClock(t *testing.T) {
	instant := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	c := Fixed(instant)

	if !c.Now().Equal(instant) {
		t.Fatalf("fixed clock drifted: %v", c.Now())
	}
	if c.Now().Location() != Location {
		t.Fatalf("expected institution zone, got %v", c.Now().Location())
	}
}

func TestNilClockFallsBack(t *testing.T) {
	var c Clock
	now := c.Now()

	if now.Location() != Location {
		t.Fatalf("expected institution zone, got %v", now.Location())
	}
	if time.Since(now) > time.Minute {
		t.Fatalf("nil clock returned stale time: %v", now)
	}
}

func TestLocationOffset(t *testing.T) {
	_, offset := time.Now().In(Location).Zone()
	if offset != 7*60*60 {
		t.Fatalf("unexpected offset: %d", offset)
	}
}
