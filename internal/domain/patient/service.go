package patient

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

// Register validates and creates a patient, assigning a UHID of the form
// NF<year><5-digit sequence>. Partial-info registrations skip the mobile/DOB
// requirement.
func (s *Service) Register(ctx context.Context, p *Patient) error {
	if p.FirstName == "" {
		return fmt.Errorf("first_name is required")
	}
	if !p.PartialInfo {
		if p.Mobile == nil || *p.Mobile == "" {
			return fmt.Errorf("mobile is required")
		}
		if p.DOB == nil {
			return fmt.Errorf("dob is required")
		}
	}

	uhid, err := s.nextUHID(ctx)
	if err != nil {
		return err
	}
	p.UHID = uhid
	return s.repo.Create(ctx, p)
}

// RegisterEmergency admits an unidentified patient immediately under a
// temporary identifier. Name fields may be empty.
func (s *Service) RegisterEmergency(ctx context.Context, p *Patient) error {
	if p.FirstName == "" {
		p.FirstName = "Unknown"
	}
	p.UHID = TempID(time.Now())
	p.Emergency = true
	p.PartialInfo = true
	return s.repo.Create(ctx, p)
}

func (s *Service) nextUHID(ctx context.Context) (string, error) {
	year := time.Now().Year()
	seq, err := s.repo.NextUHIDSeq(ctx, year)
	if err != nil {
		return "", fmt.Errorf("allocate uhid: %w", err)
	}
	return fmt.Sprintf("NF%d%05d", year, seq), nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByUHID(ctx context.Context, uhid string) (*Patient, error) {
	return s.repo.GetByUHID(ctx, uhid)
}

func (s *Service) Update(ctx context.Context, p *Patient) error {
	if p.FirstName == "" {
		return fmt.Errorf("first_name is required")
	}
	return s.repo.Update(ctx, p)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.repo.List(ctx, limit, offset)
}

// Search runs the identity lookup and classifies the result set into exactly
// one of the seven search outcomes.
func (s *Service) Search(ctx context.Context, mode SearchMode, query string, dob *time.Time, partialInfo, emergency bool) (*Classification, error) {
	if emergency {
		c := Classify(mode, query, nil, false, true)
		return &c, nil
	}
	if !mode.Valid() {
		return nil, fmt.Errorf("invalid search mode: %s", mode)
	}
	if query == "" && !partialInfo {
		return nil, fmt.Errorf("query is required")
	}
	if mode == ModeNameDOB && dob == nil {
		return nil, fmt.Errorf("dob is required for mode %s", ModeNameDOB)
	}

	var results []*Patient
	if query != "" {
		var err error
		results, err = s.repo.Search(ctx, mode, query, dob)
		if err != nil {
			return nil, fmt.Errorf("search patients: %w", err)
		}
	}

	c := Classify(mode, query, results, partialInfo, false)
	return &c, nil
}
