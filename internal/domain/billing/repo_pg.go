package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/newflow/newflow/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) db.Queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const invoiceCols = `id, patient_id, visit_id, status, discount_percent, tax_percent,
	subtotal_cents, discount_cents, tax_cents, total_cents, paid_at, created_at, updated_at`

func (r *repoPG) scan(row pgx.Row) (*Invoice, error) {
	var inv Invoice
	err := row.Scan(&inv.ID, &inv.PatientID, &inv.VisitID, &inv.Status, &inv.DiscountPercent, &inv.TaxPercent,
		&inv.SubtotalCents, &inv.DiscountCents, &inv.TaxCents, &inv.TotalCents, &inv.PaidAt, &inv.CreatedAt, &inv.UpdatedAt)
	return &inv, err
}

func (r *repoPG) insertItems(ctx context.Context, inv *Invoice) error {
	for i := range inv.Items {
		item := &inv.Items[i]
		item.ID = uuid.New()
		item.InvoiceID = inv.ID
		if _, err := r.conn(ctx).Exec(ctx, `
			INSERT INTO invoice_item (id, invoice_id, description, quantity, unit_price_cents)
			VALUES ($1,$2,$3,$4,$5)`,
			item.ID, item.InvoiceID, item.Description, item.Quantity, item.UnitPriceCents); err != nil {
			return err
		}
	}
	return nil
}

func (r *repoPG) Create(ctx context.Context, inv *Invoice) error {
	return db.WithTx(ctx, r.pool, func(ctx context.Context) error {
		inv.ID = uuid.New()
		if _, err := r.conn(ctx).Exec(ctx, `
			INSERT INTO invoice (id, patient_id, visit_id, status, discount_percent, tax_percent,
				subtotal_cents, discount_cents, tax_cents, total_cents)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
			inv.ID, inv.PatientID, inv.VisitID, inv.Status, inv.DiscountPercent, inv.TaxPercent,
			inv.SubtotalCents, inv.DiscountCents, inv.TaxCents, inv.TotalCents); err != nil {
			return err
		}
		return r.insertItems(ctx, inv)
	})
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	inv, err := r.scan(r.conn(ctx).QueryRow(ctx, `SELECT `+invoiceCols+` FROM invoice WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	items, err := r.itemsFor(ctx, id)
	if err != nil {
		return nil, err
	}
	inv.Items = items
	return inv, nil
}

func (r *repoPG) itemsFor(ctx context.Context, invoiceID uuid.UUID) ([]LineItem, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, invoice_id, description, quantity, unit_price_cents
		FROM invoice_item WHERE invoice_id = $1 ORDER BY description`, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []LineItem
	for rows.Next() {
		var it LineItem
		if err := rows.Scan(&it.ID, &it.InvoiceID, &it.Description, &it.Quantity, &it.UnitPriceCents); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, nil
}

func (r *repoPG) Update(ctx context.Context, inv *Invoice) error {
	return db.WithTx(ctx, r.pool, func(ctx context.Context) error {
		if _, err := r.conn(ctx).Exec(ctx, `
			UPDATE invoice SET status=$2, discount_percent=$3, tax_percent=$4,
				subtotal_cents=$5, discount_cents=$6, tax_cents=$7, total_cents=$8,
				paid_at=$9, updated_at=NOW()
			WHERE id = $1`,
			inv.ID, inv.Status, inv.DiscountPercent, inv.TaxPercent,
			inv.SubtotalCents, inv.DiscountCents, inv.TaxCents, inv.TotalCents, inv.PaidAt); err != nil {
			return err
		}
		if _, err := r.conn(ctx).Exec(ctx, `DELETE FROM invoice_item WHERE invoice_id = $1`, inv.ID); err != nil {
			return err
		}
		return r.insertItems(ctx, inv)
	})
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM invoice WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Invoice, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM invoice`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+invoiceCols+` FROM invoice ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	items, err := r.collect(ctx, rows)
	return items, total, err
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Invoice, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM invoice WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+invoiceCols+` FROM invoice WHERE patient_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	items, err := r.collect(ctx, rows)
	return items, total, err
}

func (r *repoPG) collect(ctx context.Context, rows pgx.Rows) ([]*Invoice, error) {
	var items []*Invoice
	for rows.Next() {
		inv, err := r.scan(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		items = append(items, inv)
	}
	rows.Close()
	for _, inv := range items {
		its, err := r.itemsFor(ctx, inv.ID)
		if err != nil {
			return nil, err
		}
		inv.Items = its
	}
	return items, nil
}
