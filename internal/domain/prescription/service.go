package prescription

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, p *Prescription) error {
	if p.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if p.DoctorID == uuid.Nil {
		return fmt.Errorf("doctor_id is required")
	}
	if p.Diagnosis == "" {
		return fmt.Errorf("diagnosis is required")
	}
	if len(p.Items) == 0 {
		return fmt.Errorf("at least one medication item is required")
	}
	for i, item := range p.Items {
		if err := validateItem(i, item); err != nil {
			return err
		}
	}
	return s.repo.Create(ctx, p)
}

func validateItem(i int, item Item) error {
	if item.Medication == "" {
		return fmt.Errorf("item %d: medication is required", i)
	}
	if item.Dosage == "" {
		return fmt.Errorf("item %d: dosage is required", i)
	}
	if item.Frequency == "" {
		return fmt.Errorf("item %d: frequency is required", i)
	}
	if item.DurationDays <= 0 {
		return fmt.Errorf("item %d: duration_days must be positive", i)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, p *Prescription) error {
	if p.Diagnosis == "" {
		return fmt.Errorf("diagnosis is required")
	}
	for i, item := range p.Items {
		if err := validateItem(i, item); err != nil {
			return err
		}
	}
	return s.repo.Update(ctx, p)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Prescription, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Prescription, int, error) {
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}
