package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/paeslab/ensayos-backend/internal/model"
)

// ExamRepository reads the exam catalog. Exams are authored elsewhere; this
// core never writes them outside the seed tooling.
type ExamRepository struct {
	q Querier
}

// NewExamRepository creates a new ExamRepository.
func NewExamRepository(pool *pgxpool.Pool) *ExamRepository {
	return &ExamRepository{q: pool}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *ExamRepository) WithTx(tx pgx.Tx) *ExamRepository {
	return &ExamRepository{q: tx}
}

// GetByID retrieves an exam by its UUID.
func (r *ExamRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	e := &model.Exam{}
	err := r.q.QueryRow(ctx,
		`SELECT id, title, author_id, availability, max_attempts, created_at, updated_at
		 FROM exams WHERE id = $1`, id,
	).Scan(&e.ID, &e.Title, &e.AuthorID, &e.Availability, &e.MaxAttempts, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// ListQuestionsForStudent returns the exam's ordered question set without
// answer keys.
func (r *ExamRepository) ListQuestionsForStudent(ctx context.Context, examID uuid.UUID) ([]model.QuestionForStudent, error) {
	rows, err := r.q.Query(ctx,
		`SELECT q.id, q.statement, q.option_a, q.option_b, q.option_c, q.option_d, eq.position
		 FROM exam_questions eq
		 JOIN questions q ON q.id = eq.question_id
		 WHERE eq.exam_id = $1
		 ORDER BY eq.position ASC`, examID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.QuestionForStudent
	for rows.Next() {
		var q model.QuestionForStudent
		if err := rows.Scan(&q.ID, &q.Statement, &q.OptionA, &q.OptionB, &q.OptionC, &q.OptionD, &q.Position); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// GetAnswerKeys returns the question id to correct letter map for an exam.
// Used to populate the Redis answer-key cache on a miss.
func (r *ExamRepository) GetAnswerKeys(ctx context.Context, examID uuid.UUID) (map[uuid.UUID]string, error) {
	rows, err := r.q.Query(ctx,
		`SELECT q.id, q.correct_letter
		 FROM exam_questions eq
		 JOIN questions q ON q.id = eq.question_id
		 WHERE eq.exam_id = $1`, examID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := make(map[uuid.UUID]string)
	for rows.Next() {
		var id uuid.UUID
		var letter string
		if err := rows.Scan(&id, &letter); err != nil {
			return nil, err
		}
		keys[id] = letter
	}
	return keys, rows.Err()
}

// ListAvailableForStudent returns the exams a student could start right now:
// active windows of their cohorts they have not attempted yet, plus
// permanent exams whose quota (if any) is not exhausted.
func (r *ExamRepository) ListAvailableForStudent(ctx context.Context, studentID int, now time.Time) ([]model.LobbyEntry, error) {
	rows, err := r.q.Query(ctx,
		`SELECT e.id, e.title, e.availability,
		        w.id, w.starts_at, w.ends_at, w.duration_minutes
		 FROM exam_windows w
		 JOIN exams e ON e.id = w.exam_id
		 WHERE w.cohort_id IN (
		         SELECT cohort_id FROM cohort_members
		         WHERE user_id = $1 AND member_role = 'student')
		   AND $2 BETWEEN w.starts_at AND w.ends_at
		   AND NOT EXISTS (
		         SELECT 1 FROM attempts a
		         WHERE a.student_id = $1 AND a.window_id = w.id)

		 UNION ALL

		 SELECT e.id, e.title, e.availability, NULL, NULL, NULL, NULL
		 FROM exams e
		 WHERE e.availability = 'PERMANENT'
		   AND (e.max_attempts IS NULL OR
		        (SELECT COUNT(*) FROM attempts a
		         WHERE a.student_id = $1 AND a.exam_id = e.id) < e.max_attempts)

		 ORDER BY 2 ASC`, studentID, now,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.LobbyEntry
	for rows.Next() {
		var entry model.LobbyEntry
		if err := rows.Scan(&entry.ExamID, &entry.Title, &entry.Availability,
			&entry.WindowID, &entry.WindowStartsAt, &entry.WindowEndsAt, &entry.DurationMinutes); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
