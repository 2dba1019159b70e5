package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Sentinel errors for the Postgres constraint classes this core relies on.
// Services map them onto domain errors; repositories never decide semantics.
var (
	// ErrUniqueViolation wraps SQLSTATE 23505 (e.g. a duplicate
	// (student, window) attempt insert racing past the eligibility check).
	ErrUniqueViolation = errors.New("unique constraint violation")

	// ErrForeignKeyViolation wraps SQLSTATE 23503 (e.g. deleting a window
	// that attempts still reference).
	ErrForeignKeyViolation = errors.New("foreign key constraint violation")

	// ErrExclusionViolation wraps SQLSTATE 23P01 (overlapping window ranges
	// rejected by the tstzrange exclusion constraint).
	ErrExclusionViolation = errors.New("exclusion constraint violation")
)

const (
	sqlstateUniqueViolation      = "23505"
	sqlstateForeignKeyViolation  = "23503"
	sqlstateExclusionViolation   = "23P01"
	sqlstateSerializationFailure = "40001"
)

// translate maps known Postgres constraint SQLSTATEs onto the sentinel
// errors above, keeping the constraint name for logging. Unknown errors pass
// through untouched.
func translate(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case sqlstateUniqueViolation:
		return fmt.Errorf("%w (%s)", ErrUniqueViolation, pgErr.ConstraintName)
	case sqlstateForeignKeyViolation:
		return fmt.Errorf("%w (%s)", ErrForeignKeyViolation, pgErr.ConstraintName)
	case sqlstateExclusionViolation:
		return fmt.Errorf("%w (%s)", ErrExclusionViolation, pgErr.ConstraintName)
	}
	return err
}

// IsSerializationFailure reports whether err is a serializable-isolation
// conflict (SQLSTATE 40001), which callers should retry.
func IsSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == sqlstateSerializationFailure
}
