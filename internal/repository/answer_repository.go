package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/paeslab/ensayos-backend/internal/model"
)

// AnswerRepository handles answer data access. The (attempt_id, question_id)
// primary key plus the atomic upsert make answer writes race-free without
// extra locking.
type AnswerRepository struct {
	q Querier
}

// NewAnswerRepository creates a new AnswerRepository.
func NewAnswerRepository(pool *pgxpool.Pool) *AnswerRepository {
	return &AnswerRepository{q: pool}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *AnswerRepository) WithTx(tx pgx.Tx) *AnswerRepository {
	return &AnswerRepository{q: tx}
}

// Upsert records an answer, overwriting any previous one for the same
// question. Repeating an identical submission leaves the stored state
// unchanged apart from the answered_at stamp.
func (r *AnswerRepository) Upsert(ctx context.Context, a *model.Answer) error {
	return r.q.QueryRow(ctx,
		`INSERT INTO attempt_answers (attempt_id, question_id, given_letter, is_correct)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (attempt_id, question_id)
		 DO UPDATE SET given_letter = EXCLUDED.given_letter,
		               is_correct   = EXCLUDED.is_correct,
		               answered_at  = NOW()
		 RETURNING answered_at`,
		a.AttemptID, a.QuestionID, a.GivenLetter, a.IsCorrect,
	).Scan(&a.AnsweredAt)
}

// CountCorrect returns the number of correct answers recorded for an
// attempt. This is the attempt's score.
func (r *AnswerRepository) CountCorrect(ctx context.Context, attemptID uuid.UUID) (int, error) {
	var count int
	err := r.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM attempt_answers
		 WHERE attempt_id = $1 AND is_correct = TRUE`, attemptID,
	).Scan(&count)
	return count, err
}

// ListByAttempt returns all recorded answers of an attempt.
func (r *AnswerRepository) ListByAttempt(ctx context.Context, attemptID uuid.UUID) ([]model.Answer, error) {
	rows, err := r.q.Query(ctx,
		`SELECT attempt_id, question_id, given_letter, is_correct, answered_at
		 FROM attempt_answers
		 WHERE attempt_id = $1`, attemptID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var answers []model.Answer
	for rows.Next() {
		var a model.Answer
		if err := rows.Scan(&a.AttemptID, &a.QuestionID, &a.GivenLetter, &a.IsCorrect, &a.AnsweredAt); err != nil {
			return nil, err
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}
