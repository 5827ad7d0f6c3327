package patient

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetByUHID(ctx context.Context, uhid string) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Patient, int, error)
	// Search matches against the identifier selected by mode; dob is only
	// consulted for ModeNameDOB.
	Search(ctx context.Context, mode SearchMode, query string, dob *time.Time) ([]*Patient, error)
	// NextUHIDSeq returns the next per-year sequence number for UHID
	// assignment.
	NextUHIDSeq(ctx context.Context, year int) (int, error)
}
