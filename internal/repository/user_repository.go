package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/paeslab/ensayos-backend/internal/model"
)

// UserRepository handles user rows. Only the ops CLIs write here; the API
// surface reads users indirectly through membership and ownership checks.
type UserRepository struct {
	q Querier
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{q: pool}
}

// Create inserts a new user. Returns ErrUniqueViolation on a duplicate email.
func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	err := r.q.QueryRow(ctx,
		`INSERT INTO users (name, email, password_hash, role)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		u.Name, u.Email, u.PasswordHash, u.Role,
	).Scan(&u.ID, &u.CreatedAt)
	return translate(err)
}

// GetByEmail retrieves a user by email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	u := &model.User{}
	err := r.q.QueryRow(ctx,
		`SELECT id, name, email, password_hash, role, created_at
		 FROM users WHERE email = $1`, email,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// AddCohortMember enrolls a user into a cohort. Used by the seed tooling.
func (r *UserRepository) AddCohortMember(ctx context.Context, m *model.CohortMember) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO cohort_members (cohort_id, user_id, member_role)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (cohort_id, user_id) DO UPDATE SET member_role = EXCLUDED.member_role`,
		m.CohortID, m.UserID, m.Role)
	return translate(err)
}
