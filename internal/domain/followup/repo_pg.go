package followup

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinic/clinic/internal/platform/apperr"
	"github.com/clinic/clinic/internal/platform/db"
)

type followUpRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &followUpRepoPG{pool: pool}
}

func (r *followUpRepoPG) conn(ctx context.Context) db.Queryable {
	return db.Conn(ctx, r.pool)
}

const followUpCols = `id, patient_id, patient_name, phone_number, doctor, patient_status,
	followup_date::text, followup_status, reason, created_at`

const (
	msgNotFound = "follow-up not found"
	msgOpen     = "patient already has an open follow-up"
)

func scanFollowUp(row pgx.Row) (*FollowUp, error) {
	var f FollowUp
	err := row.Scan(&f.ID, &f.PatientID, &f.PatientName, &f.PhoneNumber, &f.Doctor, &f.PatientStatus,
		&f.FollowUpDate, &f.FollowUpStatus, &f.Reason, &f.CreatedAt)
	if err != nil {
		return nil, db.MapError(err, msgNotFound, msgOpen)
	}
	return &f, nil
}

func (r *followUpRepoPG) Create(ctx context.Context, f *FollowUp) error {
	f.ID = uuid.New()
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO followups (id, patient_id, patient_name, phone_number, doctor, patient_status,
			followup_date, followup_status, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7::date, $8, $9, $10)`,
		f.ID, f.PatientID, f.PatientName, f.PhoneNumber, f.Doctor, f.PatientStatus,
		f.FollowUpDate, f.FollowUpStatus, f.Reason, f.CreatedAt)
	return db.MapError(err, msgNotFound, msgOpen)
}

func (r *followUpRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*FollowUp, error) {
	return scanFollowUp(r.conn(ctx).QueryRow(ctx, `SELECT `+followUpCols+` FROM followups WHERE id = $1`, id))
}

func (r *followUpRepoPG) List(ctx context.Context, f Filter) ([]*FollowUp, error) {
	q := db.NewQuery("followups", followUpCols).
		AnyOf("followup_status", f.Statuses).
		Eq("doctor", f.Doctor).
		Between("followup_date", f.From, f.To).
		OrderBy("followup_date ASC, created_at ASC").
		Page(f.Limit, f.Offset)
	if f.PatientID != uuid.Nil {
		q.Add("patient_id = $%d", f.PatientID)
	}
	if f.Before != "" {
		q.Add("followup_date < $%d::date", f.Before)
	}

	rows, err := r.conn(ctx).Query(ctx, q.SQL(), q.Args()...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*FollowUp
	for rows.Next() {
		item, err := scanFollowUp(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *followUpRepoPG) UpdateStatus(ctx context.Context, id uuid.UUID, followUpStatus, patientStatus string) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE followups
		SET followup_status = $2,
		    patient_status = COALESCE(NULLIF($3, ''), patient_status)
		WHERE id = $1`,
		id, followUpStatus, patientStatus)
	if err != nil {
		return db.MapError(err, msgNotFound, msgOpen)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(msgNotFound)
	}
	return nil
}

func (r *followUpRepoPG) DeleteForPatient(ctx context.Context, patientID uuid.UUID) (int64, error) {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM followups WHERE patient_id = $1`, patientID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
