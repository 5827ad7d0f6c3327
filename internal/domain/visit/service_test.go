package visit

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
)

type mockRepo struct {
	visits  map[uuid.UUID]*Visit
	history map[uuid.UUID][]*StatusHistory

	// failHistory makes the transactional writes fail on the history
	// insert, leaving both maps untouched.
	failHistory bool
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		visits:  make(map[uuid.UUID]*Visit),
		history: make(map[uuid.UUID][]*StatusHistory),
	}
}

func (m *mockRepo) Create(_ context.Context, v *Visit, h *StatusHistory) error {
	if m.failHistory {
		return fmt.Errorf("history insert failed")
	}
	v.ID = uuid.New()
	copied := *v
	m.visits[v.ID] = &copied
	h.ID = uuid.New()
	h.VisitID = v.ID
	m.history[v.ID] = append(m.history[v.ID], h)
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Visit, error) {
	v, ok := m.visits[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	copied := *v
	return &copied, nil
}

func (m *mockRepo) Update(_ context.Context, v *Visit) error {
	if _, ok := m.visits[v.ID]; !ok {
		return fmt.Errorf("not found")
	}
	copied := *v
	m.visits[v.ID] = &copied
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.visits, id)
	return nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*Visit, int, error) {
	var items []*Visit
	for _, v := range m.visits {
		items = append(items, v)
	}
	return items, len(items), nil
}

func (m *mockRepo) ListByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]*Visit, int, error) {
	var items []*Visit
	for _, v := range m.visits {
		if v.PatientID == patientID {
			items = append(items, v)
		}
	}
	return items, len(items), nil
}

func (m *mockRepo) ListByDoctor(_ context.Context, doctorID uuid.UUID, limit, offset int) ([]*Visit, int, error) {
	var items []*Visit
	for _, v := range m.visits {
		if v.DoctorID == doctorID {
			items = append(items, v)
		}
	}
	return items, len(items), nil
}

func (m *mockRepo) ListByDate(_ context.Context, day time.Time, limit, offset int) ([]*Visit, int, error) {
	var items []*Visit
	for _, v := range m.visits {
		if v.ScheduledAt.Truncate(24 * time.Hour).Equal(day.Truncate(24 * time.Hour)) {
			items = append(items, v)
		}
	}
	return items, len(items), nil
}

func (m *mockRepo) UpdateStatus(ctx context.Context, v *Visit, h *StatusHistory) error {
	if m.failHistory {
		return fmt.Errorf("history insert failed")
	}
	if err := m.Update(ctx, v); err != nil {
		return err
	}
	h.ID = uuid.New()
	m.history[h.VisitID] = append(m.history[h.VisitID], h)
	return nil
}

func (m *mockRepo) GetStatusHistory(_ context.Context, visitID uuid.UUID) ([]*StatusHistory, error) {
	return m.history[visitID], nil
}

func scheduled(t *testing.T, svc *Service) *Visit {
	t.Helper()
	v := &Visit{
		PatientID:   uuid.New(),
		DoctorID:    uuid.New(),
		ScheduledAt: time.Now().Add(24 * time.Hour),
	}
	if err := svc.Schedule(context.Background(), v); err != nil {
		t.Fatalf("schedule failed: %v", err)
	}
	return v
}

func TestService_ScheduleWritesInitialHistory(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	v := scheduled(t, svc)

	if v.Status != StatusScheduled {
		t.Fatalf("expected scheduled, got %s", v.Status)
	}
	history, _ := svc.StatusHistory(context.Background(), v.ID)
	if len(history) != 1 || history[0].Status != StatusScheduled {
		t.Fatalf("expected initial history entry, got %+v", history)
	}
}

func TestService_ScheduleValidation(t *testing.T) {
	svc := NewService(newMockRepo())

	if err := svc.Schedule(context.Background(), &Visit{DoctorID: uuid.New(), ScheduledAt: time.Now()}); err == nil {
		t.Fatal("expected error for missing patient")
	}
	if err := svc.Schedule(context.Background(), &Visit{PatientID: uuid.New(), ScheduledAt: time.Now()}); err == nil {
		t.Fatal("expected error for missing doctor")
	}
	if err := svc.Schedule(context.Background(), &Visit{PatientID: uuid.New(), DoctorID: uuid.New()}); err == nil {
		t.Fatal("expected error for missing schedule time")
	}
}

func TestService_ChangeStatusAppendsHistory(t *testing.T) {
	svc := NewService(newMockRepo())
	v := scheduled(t, svc)

	for _, status := range []string{StatusCheckedIn, StatusInConsultation, StatusCompleted} {
		if _, err := svc.ChangeStatus(context.Background(), v.ID, status, "user-1", nil); err != nil {
			t.Fatalf("change to %s failed: %v", status, err)
		}
	}

	history, _ := svc.StatusHistory(context.Background(), v.ID)
	if len(history) != 4 {
		t.Fatalf("expected 4 history entries, got %d", len(history))
	}
	if history[3].Status != StatusCompleted {
		t.Fatalf("expected last entry completed, got %s", history[3].Status)
	}

	got, _ := svc.Get(context.Background(), v.ID)
	if got.CompletedAt == nil {
		t.Fatal("completion must set completed_at")
	}
}

func TestService_ChangeStatusRejectsInvalid(t *testing.T) {
	svc := NewService(newMockRepo())
	v := scheduled(t, svc)

	if _, err := svc.ChangeStatus(context.Background(), v.ID, "teleported", "user-1", nil); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestService_TerminalStatusesFrozen(t *testing.T) {
	svc := NewService(newMockRepo())

	v := scheduled(t, svc)
	if _, err := svc.ChangeStatus(context.Background(), v.ID, StatusCancelled, "user-1", nil); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if _, err := svc.ChangeStatus(context.Background(), v.ID, StatusCheckedIn, "user-1", nil); err == nil {
		t.Fatal("cancelled visit must not change status")
	}

	w := scheduled(t, svc)
	if _, err := svc.ChangeStatus(context.Background(), w.ID, StatusCompleted, "user-1", nil); err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if _, err := svc.ChangeStatus(context.Background(), w.ID, StatusInConsultation, "user-1", nil); err == nil {
		t.Fatal("completed visit must not change status")
	}
}

func TestService_HistoryWriteFailureLeavesNoPartialState(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	repo.failHistory = true
	v := &Visit{PatientID: uuid.New(), DoctorID: uuid.New(), ScheduledAt: time.Now().Add(time.Hour)}
	if err := svc.Schedule(context.Background(), v); err == nil {
		t.Fatal("expected schedule to fail with the history write")
	}
	if len(repo.visits) != 0 {
		t.Fatalf("failed schedule must not persist a visit, got %d", len(repo.visits))
	}

	repo.failHistory = false
	w := scheduled(t, svc)

	repo.failHistory = true
	if _, err := svc.ChangeStatus(context.Background(), w.ID, StatusCheckedIn, "user-1", nil); err == nil {
		t.Fatal("expected status change to fail with the history write")
	}
	got, _ := svc.Get(context.Background(), w.ID)
	if got.Status != StatusScheduled {
		t.Fatalf("failed status change must not update the visit, got %s", got.Status)
	}
	history, _ := svc.StatusHistory(context.Background(), w.ID)
	if len(history) != 1 {
		t.Fatalf("failed status change must not append history, got %d entries", len(history))
	}
}

func TestService_UpdatePreservesStatus(t *testing.T) {
	svc := NewService(newMockRepo())
	v := scheduled(t, svc)
	if _, err := svc.ChangeStatus(context.Background(), v.ID, StatusCheckedIn, "user-1", nil); err != nil {
		t.Fatalf("change failed: %v", err)
	}

	update := &Visit{ID: v.ID, PatientID: v.PatientID, DoctorID: v.DoctorID,
		ScheduledAt: v.ScheduledAt.Add(time.Hour), Status: StatusScheduled}
	if err := svc.Update(context.Background(), update); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	got, _ := svc.Get(context.Background(), v.ID)
	if got.Status != StatusCheckedIn {
		t.Fatalf("update must not change status, got %s", got.Status)
	}
}

func TestService_ListByPatient(t *testing.T) {
	svc := NewService(newMockRepo())
	v := scheduled(t, svc)
	scheduled(t, svc)

	items, total, err := svc.ListByPatient(context.Background(), v.PatientID, 20, 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 || items[0].ID != v.ID {
		t.Fatalf("unexpected result: total=%d", total)
	}
}
