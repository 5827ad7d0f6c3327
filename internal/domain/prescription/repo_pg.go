package prescription

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

const prescriptionCols = `id, patient_id, doctor_id, visit_id, diagnosis, advice, created_at, updated_at`

func (r *repoPG) scan(row pgx.Row) (*Prescription, error) {
	var p Prescription
	err := row.Scan(&p.ID, &p.PatientID, &p.DoctorID, &p.VisitID, &p.Diagnosis, &p.Advice, &p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *repoPG) Create(ctx context.Context, p *Prescription) error {
	return db.WithTx(ctx, r.pool, func(ctx context.Context) error {
		p.ID = uuid.New()
		if _, err := r.conn(ctx).Exec(ctx, `
			INSERT INTO prescription (id, patient_id, doctor_id, visit_id, diagnosis, advice)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			p.ID, p.PatientID, p.DoctorID, p.VisitID, p.Diagnosis, p.Advice); err != nil {
			return err
		}
		for i := range p.Items {
			item := &p.Items[i]
			item.ID = uuid.New()
			item.PrescriptionID = p.ID
			if _, err := r.conn(ctx).Exec(ctx, `
				INSERT INTO prescription_item (id, prescription_id, medication, dosage, frequency, duration_days, instructions)
				VALUES ($1,$2,$3,$4,$5,$6,$7)`,
				item.ID, item.PrescriptionID, item.Medication, item.Dosage, item.Frequency, item.DurationDays, item.Instructions); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	p, err := r.scan(r.conn(ctx).QueryRow(ctx, `SELECT `+prescriptionCols+` FROM prescription WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	items, err := r.itemsFor(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Items = items
	return p, nil
}

func (r *repoPG) itemsFor(ctx context.Context, prescriptionID uuid.UUID) ([]Item, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, prescription_id, medication, dosage, frequency, duration_days, instructions
		FROM prescription_item WHERE prescription_id = $1 ORDER BY medication`, prescriptionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.PrescriptionID, &it.Medication, &it.Dosage, &it.Frequency, &it.DurationDays, &it.Instructions); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, nil
}

func (r *repoPG) Update(ctx context.Context, p *Prescription) error {
	return db.WithTx(ctx, r.pool, func(ctx context.Context) error {
		if _, err := r.conn(ctx).Exec(ctx, `
			UPDATE prescription SET diagnosis=$2, advice=$3, updated_at=NOW() WHERE id = $1`,
			p.ID, p.Diagnosis, p.Advice); err != nil {
			return err
		}
		// Items are replaced wholesale on update.
		if _, err := r.conn(ctx).Exec(ctx, `DELETE FROM prescription_item WHERE prescription_id = $1`, p.ID); err != nil {
			return err
		}
		for i := range p.Items {
			item := &p.Items[i]
			item.ID = uuid.New()
			item.PrescriptionID = p.ID
			if _, err := r.conn(ctx).Exec(ctx, `
				INSERT INTO prescription_item (id, prescription_id, medication, dosage, frequency, duration_days, instructions)
				VALUES ($1,$2,$3,$4,$5,$6,$7)`,
				item.ID, item.PrescriptionID, item.Medication, item.Dosage, item.Frequency, item.DurationDays, item.Instructions); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM prescription WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Prescription, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM prescription`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+prescriptionCols+` FROM prescription ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	items, err := r.collect(ctx, rows)
	return items, total, err
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Prescription, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM prescription WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+prescriptionCols+` FROM prescription WHERE patient_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	items, err := r.collect(ctx, rows)
	return items, total, err
}

func (r *repoPG) collect(ctx context.Context, rows pgx.Rows) ([]*Prescription, error) {
	var items []*Prescription
	for rows.Next() {
		p, err := r.scan(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		items = append(items, p)
	}
	rows.Close()
	for _, p := range items {
		its, err := r.itemsFor(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		p.Items = its
	}
	return items, nil
}
