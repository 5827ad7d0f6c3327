package notify

import (
	"testing"
)

// countUnread recomputes the unread count from the list so tests can check
// the derived-count invariant directly.
func countUnread(s State) int {
	n := 0
	for _, rec := range s.Notifications {
		if !rec.Read {
			n++
		}
	}
	return n
}

func checkInvariant(t *testing.T, s *Store) {
	t.Helper()
	snap := s.Snapshot()
	if snap.UnreadCount != countUnread(snap) {
		t.Fatalf("unread invariant broken: count=%d, actual unread=%d", snap.UnreadCount, countUnread(snap))
	}
}

func TestStore_AddDefaults(t *testing.T) {
	s := NewStore()
	rec := s.Add(Input{Title: "T", Message: "M"})

	if rec == nil {
		t.Fatal("expected record")
	}
	if rec.ID == "" {
		t.Fatal("expected generated id")
	}
	if rec.Type != TypeInfo {
		t.Fatalf("expected default type info, got %s", rec.Type)
	}
	if rec.Priority != PriorityNormal {
		t.Fatalf("expected default priority normal, got %s", rec.Priority)
	}
	if rec.Read {
		t.Fatal("new record must be unread")
	}
	if rec.Timestamp.IsZero() {
		t.Fatal("expected store-assigned timestamp")
	}
	if s.UnreadCount() != 1 {
		t.Fatalf("expected unread 1, got %d", s.UnreadCount())
	}
	checkInvariant(t, s)
}

func TestStore_InsertionOrderNewestFirst(t *testing.T) {
	s := NewStore()
	a := s.Add(Input{ID: "a", Title: "A"})
	b := s.Add(Input{ID: "b", Title: "B"})

	snap := s.Snapshot()
	if len(snap.Notifications) != 2 {
		t.Fatalf("expected 2 records, got %d", len(snap.Notifications))
	}
	if snap.Notifications[0].ID != b.ID || snap.Notifications[1].ID != a.ID {
		t.Fatalf("expected [B A], got [%s %s]", snap.Notifications[0].ID, snap.Notifications[1].ID)
	}
}

func TestStore_DuplicateIDIgnored(t *testing.T) {
	s := NewStore()
	if rec := s.Add(Input{ID: "dup", Title: "first"}); rec == nil {
		t.Fatal("first insert should succeed")
	}
	if rec := s.Add(Input{ID: "dup", Title: "second"}); rec != nil {
		t.Fatal("duplicate id should be ignored")
	}
	if s.Len() != 1 {
		t.Fatalf("expected 1 record, got %d", s.Len())
	}
	got, _ := s.Get("dup")
	if got.Title != "first" {
		t.Fatalf("duplicate insert must not replace; got title %q", got.Title)
	}
	checkInvariant(t, s)
}

func TestStore_BulkAddAdditivity(t *testing.T) {
	s := NewStore()
	s.Add(Input{ID: "old"})

	recs := s.BulkAdd([]Input{{ID: "x"}, {ID: "y"}, {ID: "z"}})
	if len(recs) != 3 {
		t.Fatalf("expected 3 inserted, got %d", len(recs))
	}
	if s.UnreadCount() != 4 {
		t.Fatalf("expected unread 4, got %d", s.UnreadCount())
	}

	snap := s.Snapshot()
	wantOrder := []string{"x", "y", "z", "old"}
	for i, want := range wantOrder {
		if snap.Notifications[i].ID != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, snap.Notifications[i].ID)
		}
	}
	checkInvariant(t, s)
}

func TestStore_RemoveAdjustsUnreadOnlyIfUnread(t *testing.T) {
	s := NewStore()
	s.Add(Input{ID: "a"})
	s.Add(Input{ID: "b"})
	s.MarkAsRead("a")

	if s.UnreadCount() != 1 {
		t.Fatalf("expected unread 1, got %d", s.UnreadCount())
	}

	// Removing a read record must not decrement.
	s.Remove("a")
	if s.UnreadCount() != 1 {
		t.Fatalf("expected unread 1 after removing read record, got %d", s.UnreadCount())
	}

	// Removing an unread record decrements.
	s.Remove("b")
	if s.UnreadCount() != 0 {
		t.Fatalf("expected unread 0, got %d", s.UnreadCount())
	}
	checkInvariant(t, s)
}

func TestStore_RemoveUnknownIDIsNoop(t *testing.T) {
	s := NewStore()
	s.Add(Input{ID: "a"})
	if s.Remove("nope") {
		t.Fatal("expected no-op for unknown id")
	}
	if s.Len() != 1 || s.UnreadCount() != 1 {
		t.Fatalf("state disturbed by no-op remove: len=%d unread=%d", s.Len(), s.UnreadCount())
	}
}

func TestStore_MarkAsReadIdempotent(t *testing.T) {
	s := NewStore()
	s.Add(Input{ID: "a"})
	s.Add(Input{ID: "b"})

	if !s.MarkAsRead("a") {
		t.Fatal("first mark should transition")
	}
	if s.UnreadCount() != 1 {
		t.Fatalf("expected unread 1, got %d", s.UnreadCount())
	}
	if s.MarkAsRead("a") {
		t.Fatal("second mark should be a no-op")
	}
	if s.UnreadCount() != 1 {
		t.Fatalf("unread double-decremented: got %d", s.UnreadCount())
	}
	checkInvariant(t, s)
}

func TestStore_MarkAllAsRead(t *testing.T) {
	s := NewStore()
	s.Add(Input{ID: "a"})
	s.Add(Input{ID: "b"})
	s.Add(Input{ID: "c"})
	s.MarkAsRead("b")

	s.MarkAllAsRead()
	if s.UnreadCount() != 0 {
		t.Fatalf("expected unread 0, got %d", s.UnreadCount())
	}
	snap := s.Snapshot()
	for _, rec := range snap.Notifications {
		if !rec.Read {
			t.Fatalf("record %s still unread", rec.ID)
		}
	}
	checkInvariant(t, s)
}

func TestStore_ClearAllResetsBothFields(t *testing.T) {
	s := NewStore()
	s.Add(Input{ID: "a"})
	s.Add(Input{ID: "b"})
	s.MarkAsRead("a")

	s.ClearAll()
	snap := s.Snapshot()
	if len(snap.Notifications) != 0 {
		t.Fatalf("expected empty list, got %d", len(snap.Notifications))
	}
	if snap.UnreadCount != 0 {
		t.Fatalf("expected unread 0, got %d", snap.UnreadCount)
	}
}

func TestStore_UnreadInvariantUnderMixedSequence(t *testing.T) {
	s := NewStore()
	s.Add(Input{ID: "1"})
	s.BulkAdd([]Input{{ID: "2"}, {ID: "3"}})
	s.MarkAsRead("2")
	s.Remove("1")
	s.Add(Input{ID: "4"})
	s.MarkAsRead("4")
	s.MarkAsRead("4")
	s.Remove("nope")
	s.MarkAllAsRead()
	s.Add(Input{ID: "5"})
	checkInvariant(t, s)

	if s.UnreadCount() != 1 {
		t.Fatalf("expected unread 1, got %d", s.UnreadCount())
	}
}

func TestStore_UpdateSettingsPartialMerge(t *testing.T) {
	s := NewStore()
	off := false
	got := s.UpdateSettings(SettingsPatch{SoundEnabled: &off})

	if got.SoundEnabled {
		t.Fatal("sound should be disabled")
	}
	// Untouched fields keep their defaults.
	if !got.DesktopNotifications {
		t.Fatal("desktop notifications should be unchanged")
	}
	if !got.PushNotifications {
		t.Fatal("push notifications should be unchanged")
	}
}

func TestStore_SetConnected(t *testing.T) {
	s := NewStore()
	if s.Snapshot().IsConnected {
		t.Fatal("expected disconnected initially")
	}
	s.SetConnected(true)
	if !s.Snapshot().IsConnected {
		t.Fatal("expected connected")
	}
	s.SetConnected(false)
	if s.Snapshot().IsConnected {
		t.Fatal("expected disconnected")
	}
}

func TestStore_WatchSignalsOnTransition(t *testing.T) {
	s := NewStore()
	ch := s.Watch()

	s.Add(Input{ID: "a"})
	select {
	case <-ch:
	default:
		t.Fatal("expected watch signal after add")
	}
}

func TestStore_InvalidTypeCoerced(t *testing.T) {
	s := NewStore()
	rec := s.Add(Input{Type: "bogus", Priority: "bogus"})
	if rec.Type != TypeInfo {
		t.Fatalf("expected info, got %s", rec.Type)
	}
	if rec.Priority != PriorityNormal {
		t.Fatalf("expected normal, got %s", rec.Priority)
	}
}
