package planner

import (
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func TestProgressTrackerEmitsOnNewTitle(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	p := NewProgressTracker(500*time.Millisecond, clock.Now)

	if p.Feed(`{"overview": "x", `) {
		t.Fatal("no title yet, should not emit")
	}
	if !p.Feed(`"phases": [{"title": "A"`) {
		t.Fatal("first title should emit")
	}

	clock.Advance(100 * time.Millisecond)
	if p.Feed(`}, {"title": "B"`) {
		t.Fatal("second title within interval should be throttled")
	}

	clock.Advance(100 * time.Millisecond)
	if p.Feed(` , "x": 1`) {
		t.Fatal("still inside the interval")
	}

	clock.Advance(400 * time.Millisecond)
	if !p.Feed(` `) {
		t.Fatal("pending title should emit once the interval has passed")
	}
	if p.Feed(` `) {
		t.Fatal("nothing new to report")
	}
	if p.Titles() != 2 {
		t.Fatalf("expected 2 titles, got %d", p.Titles())
	}
}

func TestProgressTrackerMarkerAcrossChunks(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	p := NewProgressTracker(0, clock.Now)

	p.Feed(`{"ti`)
	if !p.Feed(`tle": "A"}`) {
		t.Fatal("marker split across chunks should be detected")
	}
	if p.Titles() != 1 {
		t.Fatalf("expected 1 title, got %d", p.Titles())
	}
	if p.Text() != `{"title": "A"}` {
		t.Fatalf("unexpected text %q", p.Text())
	}
}

func TestProgressTrackerCountsEachOccurrenceOnce(t *testing.T) {
	p := NewProgressTracker(0, nil)
	p.Feed(`"title""title"`)
	p.Feed(`"title"`)
	p.Feed(``)
	if p.Titles() != 3 {
		t.Fatalf("expected 3 titles, got %d", p.Titles())
	}
}
