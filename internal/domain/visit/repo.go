package visit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	// Create writes the visit and its initial history entry atomically.
	Create(ctx context.Context, v *Visit, h *StatusHistory) error
	GetByID(ctx context.Context, id uuid.UUID) (*Visit, error)
	Update(ctx context.Context, v *Visit) error
	// UpdateStatus writes the changed visit row and appends the history
	// entry atomically.
	UpdateStatus(ctx context.Context, v *Visit, h *StatusHistory) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Visit, int, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Visit, int, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Visit, int, error)
	ListByDate(ctx context.Context, day time.Time, limit, offset int) ([]*Visit, int, error)
	GetStatusHistory(ctx context.Context, visitID uuid.UUID) ([]*StatusHistory, error)
}
