package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// State is a point-in-time copy of the store contents. Notifications are
// ordered newest-first.
type State struct {
	Notifications []Record
	UnreadCount   int
	IsConnected   bool
	Settings      Settings
}

// Store holds the notification list and its derived unread count. Every
// transition is applied atomically under one mutex, so transitions take
// effect in the order they are dispatched and UnreadCount always equals the
// number of unread records. Transitions never fail; unknown ids are silent
// no-ops.
type Store struct {
	mu       sync.Mutex
	records  []*Record
	byID     map[string]*Record
	unread   int
	conn     bool
	settings Settings
	watchers []chan struct{}
}

// NewStore creates an empty store with default settings.
func NewStore() *Store {
	return &Store{
		byID:     make(map[string]*Record),
		settings: DefaultSettings(),
	}
}

// Add synthesizes a full record from in and prepends it to the list. A
// missing ID is generated; an ID already present in the store is ignored
// (uniqueness is enforced here rather than left to caller discipline) and
// nil is returned. Returns a copy of the stored record.
func (s *Store) Add(in Input) *Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.insert(in)
	if rec == nil {
		return nil
	}
	s.notifyLocked()
	out := *rec
	return &out
}

// BulkAdd inserts a batch of records as one atomic transition, preserving
// the caller's order within the batch (the first element ends up at the head
// of the list). Used for server-sourced backfills. Returns copies of the
// inserted records.
func (s *Store) BulkAdd(ins []Input) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	inserted := make([]Record, 0, len(ins))
	// Insert in reverse so ins[0] ends up newest.
	for i := len(ins) - 1; i >= 0; i-- {
		if rec := s.insert(ins[i]); rec != nil {
			inserted = append(inserted, *rec)
		}
	}
	// Restore caller order.
	for i, j := 0, len(inserted)-1; i < j; i, j = i+1, j-1 {
		inserted[i], inserted[j] = inserted[j], inserted[i]
	}
	if len(inserted) > 0 {
		s.notifyLocked()
	}
	return inserted
}

// insert applies defaults and prepends. Caller holds the lock.
func (s *Store) insert(in Input) *Record {
	id := in.ID
	if id == "" {
		id = uuid.New().String()
	}
	if _, exists := s.byID[id]; exists {
		return nil
	}

	typ := in.Type
	if !typ.Valid() {
		typ = TypeInfo
	}
	prio := in.Priority
	if !prio.Valid() {
		prio = PriorityNormal
	}

	rec := &Record{
		ID:         id,
		Type:       typ,
		Priority:   prio,
		Title:      in.Title,
		Message:    in.Message,
		Timestamp:  time.Now().UTC(),
		Read:       false,
		Persistent: in.Persistent,
		Actions:    in.Actions,
		Data:       in.Data,
	}

	s.records = append([]*Record{rec}, s.records...)
	s.byID[id] = rec
	s.unread++
	return rec
}

// Remove deletes the record with the given id if present. The unread count
// is decremented only if the removed record was unread. Returns true if a
// record was removed.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byID[id]
	if !ok {
		return false
	}
	delete(s.byID, id)
	for i, r := range s.records {
		if r.ID == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			break
		}
	}
	if !rec.Read && s.unread > 0 {
		s.unread--
	}
	s.notifyLocked()
	return true
}

// MarkAsRead sets the read flag on the record with the given id. Marking an
// already-read record again is a no-op, so the unread count never
// double-decrements. Returns true if the record transitioned to read.
func (s *Store) MarkAsRead(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byID[id]
	if !ok || rec.Read {
		return false
	}
	rec.Read = true
	if s.unread > 0 {
		s.unread--
	}
	s.notifyLocked()
	return true
}

// MarkAllAsRead marks every record read and resets the unread count to zero.
func (s *Store) MarkAllAsRead() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range s.records {
		rec.Read = true
	}
	s.unread = 0
	s.notifyLocked()
}

// ClearAll empties the list and resets the unread count.
func (s *Store) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = nil
	s.byID = make(map[string]*Record)
	s.unread = 0
	s.notifyLocked()
}

// UpdateSettings shallow-merges the patch into the current settings and
// returns the result.
func (s *Store) UpdateSettings(p SettingsPatch) Settings {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings = p.Apply(s.settings)
	s.notifyLocked()
	return s.settings
}

// SetConnected records the transport connection status.
func (s *Store) SetConnected(connected bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.conn = connected
	s.notifyLocked()
}

// Settings returns the current delivery preferences.
func (s *Store) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// UnreadCount returns the number of unread records.
func (s *Store) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unread
}

// Len returns the number of records in the store.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Get returns a copy of the record with the given id, if present.
func (s *Store) Get(id string) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byID[id]
	if !ok {
		return Record{}, false
	}
	return *rec, true
}

// Snapshot returns a copy of the full store state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := State{
		Notifications: make([]Record, len(s.records)),
		UnreadCount:   s.unread,
		IsConnected:   s.conn,
		Settings:      s.settings,
	}
	for i, rec := range s.records {
		out.Notifications[i] = *rec
	}
	return out
}

// Watch returns a channel that receives a signal after every state
// transition. Signals are dropped if the receiver is not keeping up.
func (s *Store) Watch() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan struct{}, 1)
	s.watchers = append(s.watchers, ch)
	return ch
}

func (s *Store) notifyLocked() {
	for _, ch := range s.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
