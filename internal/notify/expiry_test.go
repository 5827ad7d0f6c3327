package notify

import (
	"testing"
	"time"
)

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestScheduler_PersistentExemptFromExpiry(t *testing.T) {
	c := NewCenter(WithExpiry(30 * time.Millisecond))
	defer c.Close()

	c.Add(Input{ID: "persistent", Persistent: true})
	c.Add(Input{ID: "ephemeral"})

	waitFor(t, 2*time.Second, func() bool {
		_, ok := c.Store().Get("ephemeral")
		return !ok
	})

	if _, ok := c.Store().Get("persistent"); !ok {
		t.Fatal("persistent record must never be expired")
	}
}

func TestScheduler_MarkReadCancelsExpiry(t *testing.T) {
	c := NewCenter(WithExpiry(50 * time.Millisecond))
	defer c.Close()

	c.Add(Input{ID: "read-me"})
	c.MarkAsRead("read-me")

	time.Sleep(150 * time.Millisecond)
	if _, ok := c.Store().Get("read-me"); !ok {
		t.Fatal("read record must not be expired")
	}
	if c.scheduler.Pending() != 0 {
		t.Fatalf("expected no pending timers, got %d", c.scheduler.Pending())
	}
}

func TestScheduler_ExpiryIndependentPerRecord(t *testing.T) {
	c := NewCenter(WithExpiry(60 * time.Millisecond))
	defer c.Close()

	c.Add(Input{ID: "first"})
	time.Sleep(30 * time.Millisecond)
	// A later mutation must not reset the first record's countdown.
	c.Add(Input{ID: "second"})

	waitFor(t, 2*time.Second, func() bool {
		_, firstGone := c.Store().Get("first")
		_, secondThere := c.Store().Get("second")
		return !firstGone && secondThere
	})
}

func TestScheduler_RemoveCancelsTimer(t *testing.T) {
	c := NewCenter(WithExpiry(time.Hour))
	defer c.Close()

	c.Add(Input{ID: "a"})
	if c.scheduler.Pending() != 1 {
		t.Fatalf("expected 1 timer, got %d", c.scheduler.Pending())
	}
	c.Remove("a")
	if c.scheduler.Pending() != 0 {
		t.Fatalf("expected 0 timers after remove, got %d", c.scheduler.Pending())
	}
}

func TestScheduler_ClearAllCancelsTimers(t *testing.T) {
	c := NewCenter(WithExpiry(time.Hour))
	defer c.Close()

	c.Add(Input{ID: "a"})
	c.Add(Input{ID: "b"})
	c.ClearAll()
	if c.scheduler.Pending() != 0 {
		t.Fatalf("expected 0 timers after clear, got %d", c.scheduler.Pending())
	}
}

func TestScheduler_MarkAllCancelsTimers(t *testing.T) {
	c := NewCenter(WithExpiry(time.Hour))
	defer c.Close()

	c.Add(Input{ID: "a"})
	c.Add(Input{ID: "b"})
	c.MarkAllAsRead()
	if c.scheduler.Pending() != 0 {
		t.Fatalf("expected 0 timers after mark-all, got %d", c.scheduler.Pending())
	}

	time.Sleep(20 * time.Millisecond)
	if c.Store().Len() != 2 {
		t.Fatalf("read records must remain, got %d", c.Store().Len())
	}
}

func TestScheduler_ExpiredRecordRemovedFromStore(t *testing.T) {
	c := NewCenter(WithExpiry(20 * time.Millisecond))
	defer c.Close()

	c.Add(Input{ID: "gone"})
	waitFor(t, 2*time.Second, func() bool { return c.Store().Len() == 0 })

	if c.Store().UnreadCount() != 0 {
		t.Fatalf("expected unread 0, got %d", c.Store().UnreadCount())
	}
}
