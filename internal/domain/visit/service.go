package visit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Schedule creates a visit in scheduled state together with its first status
// history entry. Both rows are written in one transaction.
func (s *Service) Schedule(ctx context.Context, v *Visit) error {
	if v.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if v.DoctorID == uuid.Nil {
		return fmt.Errorf("doctor_id is required")
	}
	if v.ScheduledAt.IsZero() {
		return fmt.Errorf("scheduled_at is required")
	}
	v.Status = StatusScheduled
	return s.repo.Create(ctx, v, &StatusHistory{
		Status:    StatusScheduled,
		ChangedAt: time.Now(),
	})
}

// ChangeStatus moves a visit to a new status and appends a history entry.
// Completed and cancelled visits are terminal.
func (s *Service) ChangeStatus(ctx context.Context, id uuid.UUID, status, changedBy string, note *string) (*Visit, error) {
	if !validStatus(status) {
		return nil, fmt.Errorf("invalid status: %s", status)
	}

	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if v.Status == StatusCompleted || v.Status == StatusCancelled {
		return nil, fmt.Errorf("visit is %s and cannot change status", v.Status)
	}

	v.Status = status
	if status == StatusCompleted {
		now := time.Now()
		v.CompletedAt = &now
	}

	h := &StatusHistory{VisitID: id, Status: status, ChangedAt: time.Now(), Note: note}
	if changedBy != "" {
		h.ChangedBy = &changedBy
	}
	// Row update and history append share one transaction; a failed history
	// write must not leave a visit without its trail.
	if err := s.repo.UpdateStatus(ctx, v, h); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Visit, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, v *Visit) error {
	existing, err := s.repo.GetByID(ctx, v.ID)
	if err != nil {
		return err
	}
	// Status changes go through ChangeStatus so history stays complete.
	v.Status = existing.Status
	v.CompletedAt = existing.CompletedAt
	return s.repo.Update(ctx, v)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Visit, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Visit, int, error) {
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Visit, int, error) {
	return s.repo.ListByDoctor(ctx, doctorID, limit, offset)
}

func (s *Service) ListByDate(ctx context.Context, day time.Time, limit, offset int) ([]*Visit, int, error) {
	return s.repo.ListByDate(ctx, day, limit, offset)
}

func (s *Service) StatusHistory(ctx context.Context, visitID uuid.UUID) ([]*StatusHistory, error) {
	return s.repo.GetStatusHistory(ctx, visitID)
}
