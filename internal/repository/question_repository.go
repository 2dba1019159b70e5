package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/paeslab/ensayos-backend/internal/model"
)

// QuestionRepository reads questions and their answer keys.
type QuestionRepository struct {
	q Querier
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{q: pool}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *QuestionRepository) WithTx(tx pgx.Tx) *QuestionRepository {
	return &QuestionRepository{q: tx}
}

// GetByID retrieves a single question including its answer key.
func (r *QuestionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	q := &model.Question{}
	err := r.q.QueryRow(ctx,
		`SELECT id, statement, option_a, option_b, option_c, option_d, correct_letter
		 FROM questions WHERE id = $1`, id,
	).Scan(&q.ID, &q.Statement, &q.OptionA, &q.OptionB, &q.OptionC, &q.OptionD, &q.CorrectLetter)
	if err != nil {
		return nil, err
	}
	return q, nil
}

// ListReviewItems returns every question of the attempt's exam joined with
// the student's recorded answer, if any, ordered by question position.
func (r *QuestionRepository) ListReviewItems(ctx context.Context, attemptID, examID uuid.UUID) ([]model.ReviewItem, error) {
	rows, err := r.q.Query(ctx,
		`SELECT q.id, q.statement, q.option_a, q.option_b, q.option_c, q.option_d,
		        q.correct_letter, aa.given_letter, COALESCE(aa.is_correct, FALSE)
		 FROM exam_questions eq
		 JOIN questions q ON q.id = eq.question_id
		 LEFT JOIN attempt_answers aa
		        ON aa.attempt_id = $1 AND aa.question_id = q.id
		 WHERE eq.exam_id = $2
		 ORDER BY eq.position ASC`, attemptID, examID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []model.ReviewItem
	for rows.Next() {
		var item model.ReviewItem
		if err := rows.Scan(&item.QuestionID, &item.Statement,
			&item.OptionA, &item.OptionB, &item.OptionC, &item.OptionD,
			&item.CorrectLetter, &item.GivenLetter, &item.Correct); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
