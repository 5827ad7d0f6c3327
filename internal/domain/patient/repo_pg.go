package patient

import (
	"context"
	"time"

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

const patientCols = `id, uhid, first_name, last_name, mobile, dob, gender,
	blood_group, address, emergency, partial_info, created_at, updated_at`

func (r *repoPG) scan(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.UHID, &p.FirstName, &p.LastName, &p.Mobile, &p.DOB, &p.Gender,
		&p.BloodGroup, &p.Address, &p.Emergency, &p.PartialInfo, &p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO patient (id, uhid, first_name, last_name, mobile, dob, gender,
			blood_group, address, emergency, partial_info)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		p.ID, p.UHID, p.FirstName, p.LastName, p.Mobile, p.DOB, p.Gender,
		p.BloodGroup, p.Address, p.Emergency, p.PartialInfo)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx, `SELECT `+patientCols+` FROM patient WHERE id = $1`, id))
}

func (r *repoPG) GetByUHID(ctx context.Context, uhid string) (*Patient, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx, `SELECT `+patientCols+` FROM patient WHERE uhid = $1`, uhid))
}

func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE patient SET first_name=$2, last_name=$3, mobile=$4, dob=$5, gender=$6,
			blood_group=$7, address=$8, partial_info=$9, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.FirstName, p.LastName, p.Mobile, p.DOB, p.Gender,
		p.BloodGroup, p.Address, p.PartialInfo)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM patient WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM patient`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+patientCols+` FROM patient ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Patient
	for rows.Next() {
		p, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, nil
}

func (r *repoPG) Search(ctx context.Context, mode SearchMode, query string, dob *time.Time) ([]*Patient, error) {
	var (
		rows pgx.Rows
		err  error
	)
	switch mode {
	case ModeUHID:
		rows, err = r.conn(ctx).Query(ctx, `SELECT `+patientCols+` FROM patient WHERE uhid = $1`, query)
	case ModeMobile:
		rows, err = r.conn(ctx).Query(ctx, `SELECT `+patientCols+` FROM patient WHERE mobile = $1`, query)
	case ModeName:
		rows, err = r.conn(ctx).Query(ctx,
			`SELECT `+patientCols+` FROM patient WHERE (first_name || ' ' || last_name) ILIKE $1 ORDER BY created_at`, "%"+query+"%")
	case ModeNameDOB:
		rows, err = r.conn(ctx).Query(ctx,
			`SELECT `+patientCols+` FROM patient WHERE (first_name || ' ' || last_name) ILIKE $1 AND dob = $2 ORDER BY created_at`, "%"+query+"%", dob)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Patient
	for rows.Next() {
		p, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, nil
}

func (r *repoPG) NextUHIDSeq(ctx context.Context, year int) (int, error) {
	var seq int
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO uhid_sequence (year, seq) VALUES ($1, 1)
		ON CONFLICT (year) DO UPDATE SET seq = uhid_sequence.seq + 1
		RETURNING seq`, year).Scan(&seq)
	return seq, err
}
