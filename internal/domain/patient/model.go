package patient

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Patient maps to the patient table.
type Patient struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	UHID        string     `db:"uhid" json:"uhid"`
	FirstName   string     `db:"first_name" json:"first_name"`
	LastName    string     `db:"last_name" json:"last_name"`
	Mobile      *string    `db:"mobile" json:"mobile,omitempty"`
	DOB         *time.Time `db:"dob" json:"dob,omitempty"`
	Gender      *string    `db:"gender" json:"gender,omitempty"`
	BloodGroup  *string    `db:"blood_group" json:"blood_group,omitempty"`
	Address     *string    `db:"address" json:"address,omitempty"`
	Emergency   bool       `db:"emergency" json:"emergency"`
	PartialInfo bool       `db:"partial_info" json:"partial_info"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// FullName joins the name parts with a single space.
func (p *Patient) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}
