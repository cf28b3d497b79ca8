package db

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/clinic/clinic/internal/platform/apperr"
)

const uniqueViolation = "23505"

// IsNoRows reports whether err means a single-row lookup found nothing.
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// IsUniqueViolation reports whether err is a Postgres unique_violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// MapError translates driver errors into apperr kinds. notFound and conflict
// are the caller-facing messages for the respective cases.
func MapError(err error, notFound, conflict string) error {
	switch {
	case err == nil:
		return nil
	case IsNoRows(err):
		return apperr.NotFound("%s", notFound)
	case IsUniqueViolation(err):
		return apperr.Wrap(apperr.ErrConflict, err, conflict)
	}
	return err
}
