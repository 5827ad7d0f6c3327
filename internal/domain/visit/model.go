package visit

import (
	"time"

	"github.com/google/uuid"
)

// Visit status values form the consultation flow. Cancelled is reachable
// from any non-terminal status.
const (
	StatusScheduled      = "scheduled"
	StatusCheckedIn      = "checked_in"
	StatusInConsultation = "in_consultation"
	StatusCompleted      = "completed"
	StatusCancelled      = "cancelled"
)

// Visit maps to the visit table.
type Visit struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	PatientID   uuid.UUID  `db:"patient_id" json:"patient_id"`
	DoctorID    uuid.UUID  `db:"doctor_id" json:"doctor_id"`
	ScheduledAt time.Time  `db:"scheduled_at" json:"scheduled_at"`
	Status      string     `db:"status" json:"status"`
	Reason      *string    `db:"reason" json:"reason,omitempty"`
	Note        *string    `db:"note" json:"note,omitempty"`
	CompletedAt *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// StatusHistory maps to the visit_status_history table.
type StatusHistory struct {
	ID        uuid.UUID `db:"id" json:"id"`
	VisitID   uuid.UUID `db:"visit_id" json:"visit_id"`
	Status    string    `db:"status" json:"status"`
	ChangedAt time.Time `db:"changed_at" json:"changed_at"`
	ChangedBy *string   `db:"changed_by" json:"changed_by,omitempty"`
	Note      *string   `db:"note" json:"note,omitempty"`
}

func validStatus(s string) bool {
	switch s {
	case StatusScheduled, StatusCheckedIn, StatusInConsultation, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}
