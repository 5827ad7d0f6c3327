package billing

import (
	"time"

	"github.com/google/uuid"
)

// Invoice status values.
const (
	StatusDraft  = "draft"
	StatusIssued = "issued"
	StatusPaid   = "paid"
	StatusVoid   = "void"
)

// Invoice maps to the invoice table. All monetary amounts are integer paise
// (cents). The four totals are computed from the line items on every write;
// values supplied by callers are ignored.
type Invoice struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	PatientID       uuid.UUID  `db:"patient_id" json:"patient_id"`
	VisitID         *uuid.UUID `db:"visit_id" json:"visit_id,omitempty"`
	Status          string     `db:"status" json:"status"`
	Items           []LineItem `json:"items"`
	DiscountPercent int        `db:"discount_percent" json:"discount_percent"`
	TaxPercent      int        `db:"tax_percent" json:"tax_percent"`
	SubtotalCents   int64      `db:"subtotal_cents" json:"subtotal_cents"`
	DiscountCents   int64      `db:"discount_cents" json:"discount_cents"`
	TaxCents        int64      `db:"tax_cents" json:"tax_cents"`
	TotalCents      int64      `db:"total_cents" json:"total_cents"`
	PaidAt          *time.Time `db:"paid_at" json:"paid_at,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// LineItem maps to the invoice_item table.
type LineItem struct {
	ID             uuid.UUID `db:"id" json:"id"`
	InvoiceID      uuid.UUID `db:"invoice_id" json:"invoice_id"`
	Description    string    `db:"description" json:"description"`
	Quantity       int       `db:"quantity" json:"quantity"`
	UnitPriceCents int64     `db:"unit_price_cents" json:"unit_price_cents"`
}

// ComputeTotals derives the invoice totals from its line items. Discount
// applies to the subtotal; tax applies to the discounted amount. Percent
// divisions truncate toward zero.
func (inv *Invoice) ComputeTotals() {
	var subtotal int64
	for _, item := range inv.Items {
		subtotal += int64(item.Quantity) * item.UnitPriceCents
	}
	discount := subtotal * int64(inv.DiscountPercent) / 100
	tax := (subtotal - discount) * int64(inv.TaxPercent) / 100

	inv.SubtotalCents = subtotal
	inv.DiscountCents = discount
	inv.TaxCents = tax
	inv.TotalCents = subtotal - discount + tax
}
