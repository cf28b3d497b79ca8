package reminder

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinic/clinic/internal/domain/clinic"
	"github.com/clinic/clinic/internal/platform/apperr"
	"github.com/clinic/clinic/internal/platform/db"
)

type draftRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &draftRepoPG{pool: pool}
}

func (r *draftRepoPG) conn(ctx context.Context) db.Queryable {
	return db.Conn(ctx, r.pool)
}

const draftCols = `id, message_type, recipient_name, recipient_phone, message_text,
	scheduled_date::text, status, approved, patient_id, created_at`

const msgNotFound = "message not found"

func scanDraft(row pgx.Row) (*Draft, error) {
	var d Draft
	err := row.Scan(&d.ID, &d.MessageType, &d.RecipientName, &d.RecipientPhone, &d.MessageText,
		&d.ScheduledDate, &d.Status, &d.Approved, &d.PatientID, &d.CreatedAt)
	if err != nil {
		return nil, db.MapError(err, msgNotFound, "message already exists")
	}
	return &d, nil
}

func (r *draftRepoPG) Create(ctx context.Context, d *Draft) error {
	d.ID = uuid.New()
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO reminder_drafts (id, message_type, recipient_name, recipient_phone, message_text,
			scheduled_date, status, approved, patient_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6::date, $7, $8, $9, $10)`,
		d.ID, d.MessageType, d.RecipientName, d.RecipientPhone, d.MessageText,
		d.ScheduledDate, d.Status, d.Approved, d.PatientID, d.CreatedAt)
	return err
}

func (r *draftRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Draft, error) {
	return scanDraft(r.conn(ctx).QueryRow(ctx, `SELECT `+draftCols+` FROM reminder_drafts WHERE id = $1`, id))
}

func (r *draftRepoPG) List(ctx context.Context, f Filter) ([]*Draft, error) {
	q := db.NewQuery("reminder_drafts", draftCols).
		Eq("status", f.Status).
		Eq("message_type", f.MessageType).
		OrderBy("scheduled_date ASC, created_at ASC").
		Page(f.Limit, f.Offset)
	if f.ScheduledDate != "" {
		q.Add("scheduled_date = $%d::date", f.ScheduledDate)
	}

	rows, err := r.conn(ctx).Query(ctx, q.SQL(), q.Args()...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Draft
	for rows.Next() {
		d, err := scanDraft(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, rows.Err()
}

func (r *draftRepoPG) Approve(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE reminder_drafts SET approved = TRUE, status = $2 WHERE id = $1`, id, clinic.DraftSent)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(msgNotFound)
	}
	return nil
}

func (r *draftRepoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := r.conn(ctx).Exec(ctx, `UPDATE reminder_drafts SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(msgNotFound)
	}
	return nil
}

func (r *draftRepoPG) DeleteForPatient(ctx context.Context, patientID uuid.UUID, name string) (int64, error) {
	tag, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM reminder_drafts WHERE recipient_name = $1 OR patient_id = $2`, name, patientID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
