package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/paeslab/ensayos-backend/internal/model"
)

// WindowRepository handles rendition window data access. Overlap between
// windows of the same (exam, cohort) pair is rejected by the database's
// exclusion constraint on the closed tstzrange, not by an application query,
// so two concurrent creates cannot both slip through.
type WindowRepository struct {
	q Querier
}

// NewWindowRepository creates a new WindowRepository.
func NewWindowRepository(pool *pgxpool.Pool) *WindowRepository {
	return &WindowRepository{q: pool}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *WindowRepository) WithTx(tx pgx.Tx) *WindowRepository {
	return &WindowRepository{q: tx}
}

// Create inserts a new window. Returns ErrExclusionViolation when the
// interval overlaps an existing window for the same exam and cohort.
func (r *WindowRepository) Create(ctx context.Context, w *model.Window) error {
	err := r.q.QueryRow(ctx,
		`INSERT INTO exam_windows (exam_id, cohort_id, starts_at, ends_at, duration_minutes, period)
		 VALUES ($1, $2, $3, $4, $5, tstzrange($3, $4, '[]'))
		 RETURNING id, created_at, updated_at`,
		w.ExamID, w.CohortID, w.StartsAt, w.EndsAt, w.DurationMinutes,
	).Scan(&w.ID, &w.CreatedAt, &w.UpdatedAt)
	return translate(err)
}

// Update reschedules a window. The exclusion constraint re-checks overlap
// against the new interval.
func (r *WindowRepository) Update(ctx context.Context, w *model.Window) error {
	err := r.q.QueryRow(ctx,
		`UPDATE exam_windows
		 SET starts_at = $1, ends_at = $2, duration_minutes = $3,
		     period = tstzrange($1, $2, '[]'), updated_at = NOW()
		 WHERE id = $4
		 RETURNING updated_at`,
		w.StartsAt, w.EndsAt, w.DurationMinutes, w.ID,
	).Scan(&w.UpdatedAt)
	return translate(err)
}

// Delete removes a window. Returns pgx.ErrNoRows when it does not exist and
// ErrForeignKeyViolation when attempts still reference it (the FK is
// ON DELETE RESTRICT so recorded attempts are never orphaned).
func (r *WindowRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM exam_windows WHERE id = $1`, id)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// GetByID retrieves a window by its UUID.
func (r *WindowRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Window, error) {
	w := &model.Window{}
	err := r.q.QueryRow(ctx,
		`SELECT id, exam_id, cohort_id, starts_at, ends_at, duration_minutes, created_at, updated_at
		 FROM exam_windows WHERE id = $1`, id,
	).Scan(&w.ID, &w.ExamID, &w.CohortID, &w.StartsAt, &w.EndsAt, &w.DurationMinutes, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return w, nil
}

// GetWithExam retrieves a window together with its exam in one round trip,
// as the admission sequence needs both.
func (r *WindowRepository) GetWithExam(ctx context.Context, id uuid.UUID) (*model.Window, *model.Exam, error) {
	w := &model.Window{}
	e := &model.Exam{}
	err := r.q.QueryRow(ctx,
		`SELECT w.id, w.exam_id, w.cohort_id, w.starts_at, w.ends_at, w.duration_minutes,
		        w.created_at, w.updated_at,
		        e.id, e.title, e.author_id, e.availability, e.max_attempts, e.created_at, e.updated_at
		 FROM exam_windows w
		 JOIN exams e ON e.id = w.exam_id
		 WHERE w.id = $1`, id,
	).Scan(&w.ID, &w.ExamID, &w.CohortID, &w.StartsAt, &w.EndsAt, &w.DurationMinutes,
		&w.CreatedAt, &w.UpdatedAt,
		&e.ID, &e.Title, &e.AuthorID, &e.Availability, &e.MaxAttempts, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, nil, err
	}
	return w, e, nil
}

// ListByExam returns all windows of an exam ordered by start ascending.
func (r *WindowRepository) ListByExam(ctx context.Context, examID uuid.UUID) ([]model.Window, error) {
	rows, err := r.q.Query(ctx,
		`SELECT id, exam_id, cohort_id, starts_at, ends_at, duration_minutes, created_at, updated_at
		 FROM exam_windows
		 WHERE exam_id = $1
		 ORDER BY starts_at ASC`, examID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var windows []model.Window
	for rows.Next() {
		var w model.Window
		if err := rows.Scan(&w.ID, &w.ExamID, &w.CohortID, &w.StartsAt, &w.EndsAt,
			&w.DurationMinutes, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, err
		}
		windows = append(windows, w)
	}
	return windows, rows.Err()
}
