package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/paeslab/ensayos-backend/internal/model"
)

// AttemptRepository handles attempt data access. The count-and-insert pair
// used by admission must run inside a serializable transaction (see
// service.AdmissionService); the UNIQUE (student_id, window_id) constraint
// backstops the one-try-per-window invariant regardless.
type AttemptRepository struct {
	q Querier
}

// NewAttemptRepository creates a new AttemptRepository.
func NewAttemptRepository(pool *pgxpool.Pool) *AttemptRepository {
	return &AttemptRepository{q: pool}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *AttemptRepository) WithTx(tx pgx.Tx) *AttemptRepository {
	return &AttemptRepository{q: tx}
}

// Insert creates a new attempt row. Returns ErrUniqueViolation when another
// attempt for the same (student, window) already exists.
func (r *AttemptRepository) Insert(ctx context.Context, a *model.Attempt) error {
	err := r.q.QueryRow(ctx,
		`INSERT INTO attempts (exam_id, student_id, window_id)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		a.ExamID, a.StudentID, a.WindowID,
	).Scan(&a.ID, &a.CreatedAt)
	return translate(err)
}

// GetByID retrieves an attempt by its UUID.
func (r *AttemptRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Attempt, error) {
	a := &model.Attempt{}
	err := r.q.QueryRow(ctx,
		`SELECT id, exam_id, student_id, window_id, created_at, score, finalized_at
		 FROM attempts WHERE id = $1`, id,
	).Scan(&a.ID, &a.ExamID, &a.StudentID, &a.WindowID, &a.CreatedAt, &a.Score, &a.FinalizedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// ExistsForWindow reports whether the student already has an attempt
// referencing the given window.
func (r *AttemptRepository) ExistsForWindow(ctx context.Context, studentID int, windowID uuid.UUID) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM attempts WHERE student_id = $1 AND window_id = $2)`,
		studentID, windowID,
	).Scan(&exists)
	return exists, err
}

// CountForStudentAndExam counts the student's attempts against an exam
// across both the permanent and windowed paths.
func (r *AttemptRepository) CountForStudentAndExam(ctx context.Context, studentID int, examID uuid.UUID) (int, error) {
	var count int
	err := r.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM attempts WHERE student_id = $1 AND exam_id = $2`,
		studentID, examID,
	).Scan(&count)
	return count, err
}

// SetScore persists the computed score and stamps the finalize time.
// Finalize may run more than once; each call overwrites both fields.
func (r *AttemptRepository) SetScore(ctx context.Context, id uuid.UUID, score int) (time.Time, error) {
	var finalizedAt time.Time
	err := r.q.QueryRow(ctx,
		`UPDATE attempts SET score = $1, finalized_at = NOW()
		 WHERE id = $2
		 RETURNING finalized_at`,
		score, id,
	).Scan(&finalizedAt)
	return finalizedAt, err
}

// ListSummariesByStudent returns the student's attempts joined with exam
// titles, most recent first.
func (r *AttemptRepository) ListSummariesByStudent(ctx context.Context, studentID int) ([]model.AttemptSummary, error) {
	rows, err := r.q.Query(ctx,
		`SELECT a.id, a.exam_id, e.title, a.window_id, a.created_at, a.score, a.finalized_at
		 FROM attempts a
		 JOIN exams e ON e.id = a.exam_id
		 WHERE a.student_id = $1
		 ORDER BY a.created_at DESC`, studentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []model.AttemptSummary
	for rows.Next() {
		var s model.AttemptSummary
		if err := rows.Scan(&s.ID, &s.ExamID, &s.ExamTitle, &s.WindowID,
			&s.CreatedAt, &s.Score, &s.FinalizedAt); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}
