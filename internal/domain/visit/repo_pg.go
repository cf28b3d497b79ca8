package visit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinic/clinic/internal/domain/clinic"
	"github.com/clinic/clinic/internal/platform/apperr"
	"github.com/clinic/clinic/internal/platform/db"
)

type visitRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &visitRepoPG{pool: pool}
}

func (r *visitRepoPG) conn(ctx context.Context) db.Queryable {
	return db.Conn(ctx, r.pool)
}

const visitCols = `id, visit_date::text, patient_name, phone_number, doctor, visit_type, status, accepted,
	family_group, profession_group, is_revisit, revisit_date::text, notes, created_at`

// effectiveStatus matches legacy rows without a status on their accepted flag.
const effectiveStatus = `COALESCE(status, CASE WHEN accepted THEN 'accepted' ELSE 'declined' END)`

const msgNotFound = "patient not found"

func scanVisit(row pgx.Row) (*Visit, error) {
	var (
		v           Visit
		status      *string
		revisitDate *string
	)
	err := row.Scan(&v.ID, &v.VisitDate, &v.PatientName, &v.PhoneNumber, &v.Doctor, &v.VisitType, &status, &v.Accepted,
		&v.FamilyGroup, &v.ProfessionGroup, &v.IsRevisit, &revisitDate, &v.Notes, &v.CreatedAt)
	if err != nil {
		return nil, db.MapError(err, msgNotFound, "patient already exists")
	}
	if status != nil {
		v.Status = clinic.Status(*status)
	}
	v.Status = v.EffectiveStatus()
	if revisitDate != nil {
		v.RevisitDate = *revisitDate
	}
	return &v, nil
}

func (r *visitRepoPG) Create(ctx context.Context, v *Visit) error {
	v.ID = uuid.New()
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO patient_visits (id, visit_date, patient_name, phone_number, doctor, visit_type, status, accepted,
			family_group, profession_group, is_revisit, revisit_date, notes, created_at)
		VALUES ($1, $2::date, $3, $4, $5, $6, $7, $8, $9, $10, $11, NULLIF($12, '')::date, $13, $14)`,
		v.ID, v.VisitDate, v.PatientName, v.PhoneNumber, v.Doctor, string(v.VisitType), string(v.Status), v.Accepted,
		v.FamilyGroup, v.ProfessionGroup, v.IsRevisit, v.RevisitDate, v.Notes, v.CreatedAt)
	return err
}

func (r *visitRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Visit, error) {
	return scanVisit(r.conn(ctx).QueryRow(ctx, `SELECT `+visitCols+` FROM patient_visits WHERE id = $1`, id))
}

func (r *visitRepoPG) Update(ctx context.Context, v *Visit) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE patient_visits SET
			visit_date = $2::date, patient_name = $3, phone_number = $4, doctor = $5, visit_type = $6,
			status = $7, accepted = $8, family_group = $9, profession_group = $10, is_revisit = $11,
			revisit_date = NULLIF($12, '')::date, notes = $13
		WHERE id = $1`,
		v.ID, v.VisitDate, v.PatientName, v.PhoneNumber, v.Doctor, string(v.VisitType),
		string(v.Status), v.Accepted, v.FamilyGroup, v.ProfessionGroup, v.IsRevisit,
		v.RevisitDate, v.Notes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(msgNotFound)
	}
	return nil
}

func (r *visitRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM patient_visits WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(msgNotFound)
	}
	return nil
}

func (r *visitRepoPG) List(ctx context.Context, f Filter) ([]*Visit, error) {
	q := db.NewQuery("patient_visits", visitCols).
		Between("visit_date", f.From, f.To).
		Eq("doctor", f.Doctor).
		Eq("family_group", f.FamilyGroup).
		Eq("profession_group", f.ProfessionGroup).
		Page(f.Limit, f.Offset)
	if f.Date != "" {
		q.Add("visit_date = $%d::date", f.Date)
	}
	if f.Before != "" {
		q.Add("visit_date < $%d::date", f.Before)
	}
	if f.Status != "" {
		q.Add(effectiveStatus+" = $%d", string(f.Status))
	}
	if len(f.VisitTypes) > 0 {
		types := make([]string, len(f.VisitTypes))
		for i, vt := range f.VisitTypes {
			types[i] = string(vt)
		}
		q.AnyOf("visit_type", types)
	}
	if f.ByCreation {
		q.OrderBy("created_at ASC")
	} else {
		q.OrderBy("visit_date DESC, created_at DESC")
	}

	rows, err := r.conn(ctx).Query(ctx, q.SQL(), q.Args()...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Visit
	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return items, rows.Err()
}

func (r *visitRepoPG) SetStatus(ctx context.Context, id uuid.UUID, status clinic.Status, accepted bool) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE patient_visits SET status = $2, accepted = $3 WHERE id = $1`, id, string(status), accepted)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(msgNotFound)
	}
	return nil
}

func (r *visitRepoPG) MarkRevisit(ctx context.Context, id uuid.UUID, revisitDate string) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE patient_visits SET is_revisit = TRUE, revisit_date = $2::date WHERE id = $1`, id, revisitDate)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(msgNotFound)
	}
	return nil
}

func (r *visitRepoPG) Distinct(ctx context.Context, field GroupField) ([]string, error) {
	switch field {
	case GroupFamily, GroupProfession:
	default:
		return nil, fmt.Errorf("unknown group field %q", field)
	}
	col := string(field)
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT DISTINCT `+col+` FROM patient_visits WHERE `+col+` <> '' ORDER BY `+col)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
