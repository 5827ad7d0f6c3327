package billing

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

// Create validates the invoice, recomputes its totals from the line items,
// and stores it as a draft. Totals supplied by the caller are discarded.
func (s *Service) Create(ctx context.Context, inv *Invoice) error {
	if inv.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if err := validateInvoice(inv); err != nil {
		return err
	}
	inv.Status = StatusDraft
	inv.ComputeTotals()
	return s.repo.Create(ctx, inv)
}

func validateInvoice(inv *Invoice) error {
	if len(inv.Items) == 0 {
		return fmt.Errorf("at least one line item is required")
	}
	for i, item := range inv.Items {
		if item.Description == "" {
			return fmt.Errorf("item %d: description is required", i)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("item %d: quantity must be positive", i)
		}
		if item.UnitPriceCents < 0 {
			return fmt.Errorf("item %d: unit price cannot be negative", i)
		}
	}
	if inv.DiscountPercent < 0 || inv.DiscountPercent > 100 {
		return fmt.Errorf("discount_percent must be between 0 and 100")
	}
	if inv.TaxPercent < 0 || inv.TaxPercent > 100 {
		return fmt.Errorf("tax_percent must be between 0 and 100")
	}
	return nil
}

// Update replaces line items and recomputes totals. Paid and void invoices
// are immutable.
func (s *Service) Update(ctx context.Context, inv *Invoice) error {
	existing, err := s.repo.GetByID(ctx, inv.ID)
	if err != nil {
		return err
	}
	if existing.Status == StatusPaid || existing.Status == StatusVoid {
		return fmt.Errorf("invoice is %s and cannot be modified", existing.Status)
	}
	if err := validateInvoice(inv); err != nil {
		return err
	}
	inv.Status = existing.Status
	inv.PaidAt = existing.PaidAt
	inv.ComputeTotals()
	return s.repo.Update(ctx, inv)
}

// Issue moves a draft invoice to issued.
func (s *Service) Issue(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	return s.transition(ctx, id, StatusDraft, StatusIssued)
}

// MarkPaid moves an issued invoice to paid and stamps the payment time.
func (s *Service) MarkPaid(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	inv, err := s.transition(ctx, id, StatusIssued, StatusPaid)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	inv.PaidAt = &now
	if err := s.repo.Update(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// Void cancels a draft or issued invoice.
func (s *Service) Void(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.Status != StatusDraft && inv.Status != StatusIssued {
		return nil, fmt.Errorf("invoice is %s and cannot be voided", inv.Status)
	}
	inv.Status = StatusVoid
	if err := s.repo.Update(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, from, to string) (*Invoice, error) {
	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.Status != from {
		return nil, fmt.Errorf("invoice is %s, expected %s", inv.Status, from)
	}
	inv.Status = to
	if err := s.repo.Update(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if inv.Status != StatusDraft {
		return fmt.Errorf("only draft invoices can be deleted")
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Invoice, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Invoice, int, error) {
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}
