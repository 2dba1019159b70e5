package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MembershipRepository answers cohort membership queries (the membership
// oracle of the admission sequence).
type MembershipRepository struct {
	q Querier
}

// NewMembershipRepository creates a new MembershipRepository.
func NewMembershipRepository(pool *pgxpool.Pool) *MembershipRepository {
	return &MembershipRepository{q: pool}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *MembershipRepository) WithTx(tx pgx.Tx) *MembershipRepository {
	return &MembershipRepository{q: tx}
}

// IsMember reports whether the user belongs to the cohort in any role.
func (r *MembershipRepository) IsMember(ctx context.Context, cohortID, userID int) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM cohort_members WHERE cohort_id = $1 AND user_id = $2)`,
		cohortID, userID,
	).Scan(&exists)
	return exists, err
}

// IsCohortTeacher reports whether the user is enrolled in the cohort as a
// teacher. Window management requires this on top of the platform role.
func (r *MembershipRepository) IsCohortTeacher(ctx context.Context, cohortID, userID int) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM cohort_members
		  WHERE cohort_id = $1 AND user_id = $2 AND member_role = 'teacher')`,
		cohortID, userID,
	).Scan(&exists)
	return exists, err
}
