package doctor

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

// Register creates a doctor in pending state awaiting admin review.
func (s *Service) Register(ctx context.Context, d *Doctor) error {
	if d.FirstName == "" {
		return fmt.Errorf("first_name is required")
	}
	if d.Specialty == "" {
		return fmt.Errorf("specialty is required")
	}
	d.Status = StatusPending
	return s.repo.Create(ctx, d)
}

// Approve transitions a pending doctor to approved. Only pending
// registrations can be reviewed.
func (s *Service) Approve(ctx context.Context, id uuid.UUID, reviewerID, note string) (*Doctor, error) {
	return s.review(ctx, id, StatusApproved, reviewerID, note)
}

// Reject transitions a pending doctor to rejected.
func (s *Service) Reject(ctx context.Context, id uuid.UUID, reviewerID, note string) (*Doctor, error) {
	return s.review(ctx, id, StatusRejected, reviewerID, note)
}

func (s *Service) review(ctx context.Context, id uuid.UUID, to Status, reviewerID, note string) (*Doctor, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.Status != StatusPending {
		return nil, fmt.Errorf("doctor is %s, only pending registrations can be reviewed", d.Status)
	}

	now := time.Now()
	d.Status = to
	d.ReviewedBy = &reviewerID
	d.ReviewedAt = &now
	if note != "" {
		d.ReviewNote = &note
	}
	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, d *Doctor) error {
	existing, err := s.repo.GetByID(ctx, d.ID)
	if err != nil {
		return err
	}
	// Review fields only change through Approve/Reject.
	d.Status = existing.Status
	d.ReviewedBy = existing.ReviewedBy
	d.ReviewedAt = existing.ReviewedAt
	d.ReviewNote = existing.ReviewNote
	return s.repo.Update(ctx, d)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, status Status, limit, offset int) ([]*Doctor, int, error) {
	if status != "" {
		return s.repo.ListByStatus(ctx, status, limit, offset)
	}
	return s.repo.List(ctx, limit, offset)
}
