package doctor

import (
	"time"

	"github.com/google/uuid"
)

// Status is the approval state of a doctor registration.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Doctor maps to the doctor table.
type Doctor struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	FirstName      string     `db:"first_name" json:"first_name"`
	LastName       string     `db:"last_name" json:"last_name"`
	Specialty      string     `db:"specialty" json:"specialty"`
	Qualification  *string    `db:"qualification" json:"qualification,omitempty"`
	RegistrationNo *string    `db:"registration_no" json:"registration_no,omitempty"`
	Mobile         *string    `db:"mobile" json:"mobile,omitempty"`
	Email          *string    `db:"email" json:"email,omitempty"`
	Status         Status     `db:"status" json:"status"`
	ReviewedBy     *string    `db:"reviewed_by" json:"reviewed_by,omitempty"`
	ReviewedAt     *time.Time `db:"reviewed_at" json:"reviewed_at,omitempty"`
	ReviewNote     *string    `db:"review_note" json:"review_note,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}
