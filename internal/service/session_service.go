package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/paeslab/ensayos-backend/internal/config"
	"github.com/paeslab/ensayos-backend/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// answerKeyTTL bounds staleness of the Redis answer-key cache. Question
// edits are out of scope for this core, so a short TTL is plenty.
const answerKeyTTL = time.Hour

// attemptStore is the attempt data access the session layer needs.
type attemptStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Attempt, error)
	SetScore(ctx context.Context, id uuid.UUID, score int) (time.Time, error)
	ListSummariesByStudent(ctx context.Context, studentID int) ([]model.AttemptSummary, error)
}

// answerStore is the answer data access the session layer needs.
type answerStore interface {
	Upsert(ctx context.Context, a *model.Answer) error
	CountCorrect(ctx context.Context, attemptID uuid.UUID) (int, error)
	ListByAttempt(ctx context.Context, attemptID uuid.UUID) ([]model.Answer, error)
}

// catalogStore is the read-only exam catalog the session layer consumes.
type catalogStore interface {
	ListQuestionsForStudent(ctx context.Context, examID uuid.UUID) ([]model.QuestionForStudent, error)
	GetAnswerKeys(ctx context.Context, examID uuid.UUID) (map[uuid.UUID]string, error)
	ListAvailableForStudent(ctx context.Context, studentID int, now time.Time) ([]model.LobbyEntry, error)
}

// questionStore resolves individual questions and review rows.
type questionStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Question, error)
	ListReviewItems(ctx context.Context, attemptID, examID uuid.UUID) ([]model.ReviewItem, error)
}

// SessionService handles everything that happens inside an attempt: answer
// submission, finalization, the paper/review payloads and the student
// lobby.
type SessionService struct {
	attempts  attemptStore
	answers   answerStore
	catalog   catalogStore
	questions questionStore
	rdb       *redis.Client
	log       zerolog.Logger
	now       func() time.Time
}

// NewSessionService creates a new SessionService.
func NewSessionService(
	attempts attemptStore,
	answers answerStore,
	catalog catalogStore,
	questions questionStore,
	rdb *redis.Client,
	log zerolog.Logger,
) *SessionService {
	return &SessionService{
		attempts:  attempts,
		answers:   answers,
		catalog:   catalog,
		questions: questions,
		rdb:       rdb,
		log:       log.With().Str("component", "session").Logger(),
		now:       time.Now,
	}
}

// NormalizeLetter uppercases and validates an answer letter. Only A-D are
// accepted.
func NormalizeLetter(raw string) (string, error) {
	letter := strings.ToUpper(strings.TrimSpace(raw))
	switch letter {
	case "A", "B", "C", "D":
		return letter, nil
	}
	return "", fmt.Errorf("%w: answer letter must be one of A-D, got %q", ErrValidation, raw)
}

// SubmitAnswer records or overwrites the student's answer to one question
// of their attempt and returns the stored row including the correctness
// flag. Identical resubmissions leave the stored state unchanged.
//
// No check is made that the attempt is still unfinalized: late submissions
// succeed but only affect the score if finalize runs again.
func (s *SessionService) SubmitAnswer(ctx context.Context, studentID int, attemptID uuid.UUID, req model.SubmitAnswerRequest) (*model.Answer, error) {
	letter, err := NormalizeLetter(req.GivenLetter)
	if err != nil {
		return nil, err
	}

	attempt, err := s.ownedAttempt(ctx, studentID, attemptID)
	if err != nil {
		return nil, err
	}

	correctLetter, err := s.answerKey(ctx, attempt.ExamID, req.QuestionID)
	if err != nil {
		return nil, err
	}

	answer := &model.Answer{
		AttemptID:   attemptID,
		QuestionID:  req.QuestionID,
		GivenLetter: letter,
		IsCorrect:   letter == correctLetter,
	}
	if err := s.answers.Upsert(ctx, answer); err != nil {
		return nil, fmt.Errorf("upsert answer: %w", err)
	}
	return answer, nil
}

// Finalize computes the attempt's score from its recorded answers and
// persists it with a completion timestamp. It may run again and will
// recompute from the answers present at that moment.
func (s *SessionService) Finalize(ctx context.Context, studentID int, attemptID uuid.UUID) (*model.Attempt, error) {
	attempt, err := s.ownedAttempt(ctx, studentID, attemptID)
	if err != nil {
		return nil, err
	}

	score, err := s.answers.CountCorrect(ctx, attemptID)
	if err != nil {
		return nil, fmt.Errorf("count correct answers: %w", err)
	}

	finalizedAt, err := s.attempts.SetScore(ctx, attemptID, score)
	if err != nil {
		return nil, fmt.Errorf("persist score: %w", err)
	}

	attempt.Score = &score
	attempt.FinalizedAt = &finalizedAt
	return attempt, nil
}

// AttemptPaper is the exam payload served to a student resuming an attempt:
// the ordered questions (without answer keys) plus previously recorded
// answers.
type AttemptPaper struct {
	Attempt   *model.Attempt             `json:"attempt"`
	Questions []model.QuestionForStudent `json:"questions"`
	Previous  map[uuid.UUID]string       `json:"previous_answers"`
}

// GetPaper returns the paper for the student's own attempt.
func (s *SessionService) GetPaper(ctx context.Context, studentID int, attemptID uuid.UUID) (*AttemptPaper, error) {
	attempt, err := s.ownedAttempt(ctx, studentID, attemptID)
	if err != nil {
		return nil, err
	}

	questions, err := s.catalog.ListQuestionsForStudent(ctx, attempt.ExamID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}

	answers, err := s.answers.ListByAttempt(ctx, attemptID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	previous := make(map[uuid.UUID]string, len(answers))
	for _, a := range answers {
		previous[a.QuestionID] = a.GivenLetter
	}

	return &AttemptPaper{Attempt: attempt, Questions: questions, Previous: previous}, nil
}

// AttemptReview is the per-question breakdown of an attempt, answer keys
// included.
type AttemptReview struct {
	Attempt *model.Attempt     `json:"attempt"`
	Items   []model.ReviewItem `json:"items"`
}

// GetReview returns the review for an attempt. The owning student can
// always see it; other callers need the view-all-results capability.
func (s *SessionService) GetReview(ctx context.Context, requesterID int, requesterRole model.Role, attemptID uuid.UUID) (*AttemptReview, error) {
	attempt, err := s.attempts.GetByID(ctx, attemptID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("attempt %s: %w", attemptID, ErrNotFound)
		}
		return nil, fmt.Errorf("get attempt: %w", err)
	}
	if attempt.StudentID != requesterID && !requesterRole.Can(model.CapabilityViewAllResults) {
		return nil, ErrForbidden
	}

	items, err := s.questions.ListReviewItems(ctx, attemptID, attempt.ExamID)
	if err != nil {
		return nil, fmt.Errorf("list review items: %w", err)
	}
	return &AttemptReview{Attempt: attempt, Items: items}, nil
}

// ListMyAttempts returns the student's attempts, most recent first.
func (s *SessionService) ListMyAttempts(ctx context.Context, studentID int) ([]model.AttemptSummary, error) {
	return s.attempts.ListSummariesByStudent(ctx, studentID)
}

// GetLobby returns the exams the student could start right now.
func (s *SessionService) GetLobby(ctx context.Context, studentID int) ([]model.LobbyEntry, error) {
	return s.catalog.ListAvailableForStudent(ctx, studentID, s.now())
}

// ownedAttempt loads an attempt and verifies the caller owns it.
func (s *SessionService) ownedAttempt(ctx context.Context, studentID int, attemptID uuid.UUID) (*model.Attempt, error) {
	attempt, err := s.attempts.GetByID(ctx, attemptID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("attempt %s: %w", attemptID, ErrNotFound)
		}
		return nil, fmt.Errorf("get attempt: %w", err)
	}
	if attempt.StudentID != studentID {
		return nil, ErrForbidden
	}
	return attempt, nil
}

// answerKey resolves the correct letter for a question, going through the
// per-exam Redis hash first and falling back to Postgres on a miss or a
// cache outage. A miss warms the whole exam's hash so subsequent answers in
// the same attempt hit the cache.
func (s *SessionService) answerKey(ctx context.Context, examID, questionID uuid.UUID) (string, error) {
	cacheKey := config.CacheKey.ExamAnswerKey(examID.String())

	letter, err := s.rdb.HGet(ctx, cacheKey, questionID.String()).Result()
	if err == nil && letter != "" {
		return letter, nil
	}
	if err != nil && !errors.Is(err, redis.Nil) {
		// Cache outage: Postgres stays the source of truth.
		s.log.Warn().Err(err).Msg("answer-key cache read failed, falling back to database")
	}

	keys, err := s.catalog.GetAnswerKeys(ctx, examID)
	if err != nil {
		return "", fmt.Errorf("load answer keys: %w", err)
	}
	if len(keys) > 0 {
		fields := make(map[string]string, len(keys))
		for id, l := range keys {
			fields[id.String()] = l
		}
		if err := s.rdb.HSet(ctx, cacheKey, fields).Err(); err != nil {
			s.log.Warn().Err(err).Msg("answer-key cache write failed")
		} else {
			_ = s.rdb.Expire(ctx, cacheKey, answerKeyTTL).Err()
		}
	}
	if l, ok := keys[questionID]; ok {
		return l, nil
	}

	// Question outside the exam's list: resolve it directly.
	question, err := s.questions.GetByID(ctx, questionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("question %s: %w", questionID, ErrNotFound)
		}
		return "", fmt.Errorf("get question: %w", err)
	}
	return question.CorrectLetter, nil
}
