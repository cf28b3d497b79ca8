package doctor

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinic/clinic/internal/platform/apperr"
	"github.com/clinic/clinic/internal/platform/db"
)

type doctorRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &doctorRepoPG{pool: pool}
}

func (r *doctorRepoPG) conn(ctx context.Context) db.Queryable {
	return db.Conn(ctx, r.pool)
}

const doctorCols = `id, name, phone_number, active, created_at`

const (
	msgNotFound = "doctor not found"
	msgExists   = "doctor already exists"
)

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	if err := row.Scan(&d.ID, &d.Name, &d.PhoneNumber, &d.Active, &d.CreatedAt); err != nil {
		return nil, db.MapError(err, msgNotFound, msgExists)
	}
	return &d, nil
}

func (r *doctorRepoPG) Create(ctx context.Context, d *Doctor) error {
	d.ID = uuid.New()
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO doctors (id, name, phone_number, active, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		d.ID, d.Name, d.PhoneNumber, d.Active, d.CreatedAt)
	return db.MapError(err, msgNotFound, msgExists)
}

func (r *doctorRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return scanDoctor(r.conn(ctx).QueryRow(ctx, `SELECT `+doctorCols+` FROM doctors WHERE id = $1`, id))
}

func (r *doctorRepoPG) GetByName(ctx context.Context, name string) (*Doctor, error) {
	return scanDoctor(r.conn(ctx).QueryRow(ctx, `SELECT `+doctorCols+` FROM doctors WHERE name = $1`, name))
}

func (r *doctorRepoPG) Update(ctx context.Context, d *Doctor) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE doctors SET name = $2, phone_number = $3 WHERE id = $1`,
		d.ID, d.Name, d.PhoneNumber)
	if err != nil {
		return db.MapError(err, msgNotFound, msgExists)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(msgNotFound)
	}
	return nil
}

func (r *doctorRepoPG) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := r.conn(ctx).Exec(ctx, `UPDATE doctors SET active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(msgNotFound)
	}
	return nil
}

func (r *doctorRepoPG) List(ctx context.Context, activeOnly bool) ([]*Doctor, error) {
	q := db.NewQuery("doctors", doctorCols).OrderBy("name ASC")
	if activeOnly {
		q.Raw("active")
	}
	rows, err := r.conn(ctx).Query(ctx, q.SQL(), q.Args()...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, rows.Err()
}

func (r *doctorRepoPG) Count(ctx context.Context) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM doctors`).Scan(&n)
	return n, err
}
