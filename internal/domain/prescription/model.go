package prescription

import (
	"time"

	"github.com/google/uuid"
)

// Prescription maps to the prescription table; Items are carried in the
// prescription_item table.
type Prescription struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	PatientID uuid.UUID  `db:"patient_id" json:"patient_id"`
	DoctorID  uuid.UUID  `db:"doctor_id" json:"doctor_id"`
	VisitID   *uuid.UUID `db:"visit_id" json:"visit_id,omitempty"`
	Diagnosis string     `db:"diagnosis" json:"diagnosis"`
	Advice    *string    `db:"advice" json:"advice,omitempty"`
	Items     []Item     `json:"items"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// Item is a single medication line on a prescription.
type Item struct {
	ID             uuid.UUID `db:"id" json:"id"`
	PrescriptionID uuid.UUID `db:"prescription_id" json:"prescription_id"`
	Medication     string    `db:"medication" json:"medication"`
	Dosage         string    `db:"dosage" json:"dosage"`
	Frequency      string    `db:"frequency" json:"frequency"`
	DurationDays   int       `db:"duration_days" json:"duration_days"`
	Instructions   *string   `db:"instructions" json:"instructions,omitempty"`
}
