package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/paeslab/ensayos-backend/internal/config"
	"github.com/paeslab/ensayos-backend/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAttemptStore struct {
	attempts  map[uuid.UUID]*model.Attempt
	scored    map[uuid.UUID]int
	summaries []model.AttemptSummary
}

func newFakeAttemptStore() *fakeAttemptStore {
	return &fakeAttemptStore{
		attempts: make(map[uuid.UUID]*model.Attempt),
		scored:   make(map[uuid.UUID]int),
	}
}

func (f *fakeAttemptStore) GetByID(_ context.Context, id uuid.UUID) (*model.Attempt, error) {
	a, ok := f.attempts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAttemptStore) SetScore(_ context.Context, id uuid.UUID, score int) (time.Time, error) {
	f.scored[id] = score
	return time.Date(2026, 3, 10, 10, 30, 0, 0, time.UTC), nil
}

func (f *fakeAttemptStore) ListSummariesByStudent(_ context.Context, _ int) ([]model.AttemptSummary, error) {
	return f.summaries, nil
}

type fakeAnswerStore struct {
	answers map[uuid.UUID]*model.Answer // keyed by question id
}

func newFakeAnswerStore() *fakeAnswerStore {
	return &fakeAnswerStore{answers: make(map[uuid.UUID]*model.Answer)}
}

func (f *fakeAnswerStore) Upsert(_ context.Context, a *model.Answer) error {
	cp := *a
	f.answers[a.QuestionID] = &cp
	return nil
}

func (f *fakeAnswerStore) CountCorrect(_ context.Context, _ uuid.UUID) (int, error) {
	n := 0
	for _, a := range f.answers {
		if a.IsCorrect {
			n++
		}
	}
	return n, nil
}

func (f *fakeAnswerStore) ListByAttempt(_ context.Context, _ uuid.UUID) ([]model.Answer, error) {
	var out []model.Answer
	for _, a := range f.answers {
		out = append(out, *a)
	}
	return out, nil
}

type fakeCatalogStore struct {
	questions []model.QuestionForStudent
	keys      map[uuid.UUID]string
	lobby     []model.LobbyEntry
}

func (f *fakeCatalogStore) ListQuestionsForStudent(_ context.Context, _ uuid.UUID) ([]model.QuestionForStudent, error) {
	return f.questions, nil
}

func (f *fakeCatalogStore) GetAnswerKeys(_ context.Context, _ uuid.UUID) (map[uuid.UUID]string, error) {
	return f.keys, nil
}

func (f *fakeCatalogStore) ListAvailableForStudent(_ context.Context, _ int, _ time.Time) ([]model.LobbyEntry, error) {
	return f.lobby, nil
}

type fakeQuestionStore struct {
	questions map[uuid.UUID]*model.Question
	items     []model.ReviewItem
	getCalls  int
}

func newFakeQuestionStore() *fakeQuestionStore {
	return &fakeQuestionStore{questions: make(map[uuid.UUID]*model.Question)}
}

func (f *fakeQuestionStore) GetByID(_ context.Context, id uuid.UUID) (*model.Question, error) {
	f.getCalls++
	q, ok := f.questions[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return q, nil
}

func (f *fakeQuestionStore) ListReviewItems(_ context.Context, _, _ uuid.UUID) ([]model.ReviewItem, error) {
	return f.items, nil
}

type sessionFixture struct {
	svc       *SessionService
	attempts  *fakeAttemptStore
	answers   *fakeAnswerStore
	catalog   *fakeCatalogStore
	questions *fakeQuestionStore
	redis     *miniredis.Miniredis
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	attempts := newFakeAttemptStore()
	answers := newFakeAnswerStore()
	catalog := &fakeCatalogStore{}
	questions := newFakeQuestionStore()

	svc := NewSessionService(attempts, answers, catalog, questions, rdb, zerolog.Nop())
	return &sessionFixture{
		svc:       svc,
		attempts:  attempts,
		answers:   answers,
		catalog:   catalog,
		questions: questions,
		redis:     mr,
	}
}

func (fx *sessionFixture) addAttempt(studentID int) *model.Attempt {
	a := &model.Attempt{ID: uuid.New(), ExamID: uuid.New(), StudentID: studentID}
	fx.attempts.attempts[a.ID] = a
	return a
}

func (fx *sessionFixture) addQuestion(correct string) *model.Question {
	q := &model.Question{ID: uuid.New(), Statement: "q", CorrectLetter: correct}
	fx.questions.questions[q.ID] = q
	return q
}

func TestNormalizeLetter(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"A", "A", false},
		{"d", "D", false},
		{" b ", "B", false},
		{"E", "", true},
		{"", "", true},
		{"AB", "", true},
	}

	for _, tt := range tests {
		got, err := NormalizeLetter(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrValidation, "input %q", tt.in)
		} else {
			require.NoError(t, err, "input %q", tt.in)
			assert.Equal(t, tt.want, got)
		}
	}
}

func TestSubmitAnswerCorrectness(t *testing.T) {
	fx := newSessionFixture(t)
	attempt := fx.addAttempt(1)
	q := fx.addQuestion("C")

	answer, err := fx.svc.SubmitAnswer(context.Background(), 1, attempt.ID,
		model.SubmitAnswerRequest{QuestionID: q.ID, GivenLetter: "c"})
	require.NoError(t, err)
	assert.True(t, answer.IsCorrect)
	assert.Equal(t, "C", answer.GivenLetter)

	// Overwrite with a wrong answer: no history, correctness flips.
	answer, err = fx.svc.SubmitAnswer(context.Background(), 1, attempt.ID,
		model.SubmitAnswerRequest{QuestionID: q.ID, GivenLetter: "A"})
	require.NoError(t, err)
	assert.False(t, answer.IsCorrect)
	assert.Len(t, fx.answers.answers, 1)
}

func TestSubmitAnswerOwnership(t *testing.T) {
	fx := newSessionFixture(t)
	attempt := fx.addAttempt(1)
	q := fx.addQuestion("A")

	_, err := fx.svc.SubmitAnswer(context.Background(), 2, attempt.ID,
		model.SubmitAnswerRequest{QuestionID: q.ID, GivenLetter: "A"})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestSubmitAnswerUnknownAttempt(t *testing.T) {
	fx := newSessionFixture(t)
	q := fx.addQuestion("A")

	_, err := fx.svc.SubmitAnswer(context.Background(), 1, uuid.New(),
		model.SubmitAnswerRequest{QuestionID: q.ID, GivenLetter: "A"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSubmitAnswerUnknownQuestion(t *testing.T) {
	fx := newSessionFixture(t)
	attempt := fx.addAttempt(1)

	_, err := fx.svc.SubmitAnswer(context.Background(), 1, attempt.ID,
		model.SubmitAnswerRequest{QuestionID: uuid.New(), GivenLetter: "A"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSubmitAnswerInvalidLetter(t *testing.T) {
	fx := newSessionFixture(t)
	attempt := fx.addAttempt(1)
	q := fx.addQuestion("A")

	_, err := fx.svc.SubmitAnswer(context.Background(), 1, attempt.ID,
		model.SubmitAnswerRequest{QuestionID: q.ID, GivenLetter: "X"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSubmitAnswerWarmsCache(t *testing.T) {
	fx := newSessionFixture(t)
	attempt := fx.addAttempt(1)
	q := fx.addQuestion("B")
	fx.catalog.keys = map[uuid.UUID]string{q.ID: "B"}

	_, err := fx.svc.SubmitAnswer(context.Background(), 1, attempt.ID,
		model.SubmitAnswerRequest{QuestionID: q.ID, GivenLetter: "B"})
	require.NoError(t, err)
	// The answer key came from the exam's key map, not a per-question read.
	assert.Equal(t, 0, fx.questions.getCalls)

	// The first submit populated the hash; the second must hit the cache.
	key := config.CacheKey.ExamAnswerKey(attempt.ExamID.String())
	cached := fx.redis.HGet(key, q.ID.String())
	assert.Equal(t, "B", cached)

	_, err = fx.svc.SubmitAnswer(context.Background(), 1, attempt.ID,
		model.SubmitAnswerRequest{QuestionID: q.ID, GivenLetter: "A"})
	require.NoError(t, err)
	assert.Equal(t, 0, fx.questions.getCalls)
}

func TestSubmitAnswerCacheOutageFallsBack(t *testing.T) {
	fx := newSessionFixture(t)
	attempt := fx.addAttempt(1)
	q := fx.addQuestion("D")

	fx.redis.Close()

	answer, err := fx.svc.SubmitAnswer(context.Background(), 1, attempt.ID,
		model.SubmitAnswerRequest{QuestionID: q.ID, GivenLetter: "D"})
	require.NoError(t, err)
	assert.True(t, answer.IsCorrect)
}

func TestFinalizeScoresCorrectAnswers(t *testing.T) {
	fx := newSessionFixture(t)
	attempt := fx.addAttempt(1)
	q1 := fx.addQuestion("A")
	q2 := fx.addQuestion("B")
	q3 := fx.addQuestion("C")

	for _, sub := range []struct {
		q      *model.Question
		letter string
	}{
		{q1, "A"}, {q2, "B"}, {q3, "D"},
	} {
		_, err := fx.svc.SubmitAnswer(context.Background(), 1, attempt.ID,
			model.SubmitAnswerRequest{QuestionID: sub.q.ID, GivenLetter: sub.letter})
		require.NoError(t, err)
	}

	final, err := fx.svc.Finalize(context.Background(), 1, attempt.ID)
	require.NoError(t, err)
	require.NotNil(t, final.Score)
	assert.Equal(t, 2, *final.Score)
	assert.NotNil(t, final.FinalizedAt)
	assert.Equal(t, 2, fx.attempts.scored[attempt.ID])
}

func TestFinalizeWithNoAnswers(t *testing.T) {
	fx := newSessionFixture(t)
	attempt := fx.addAttempt(1)

	final, err := fx.svc.Finalize(context.Background(), 1, attempt.ID)
	require.NoError(t, err)
	require.NotNil(t, final.Score)
	assert.Equal(t, 0, *final.Score)
}

func TestFinalizeOwnership(t *testing.T) {
	fx := newSessionFixture(t)
	attempt := fx.addAttempt(1)

	_, err := fx.svc.Finalize(context.Background(), 7, attempt.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestFinalizeRecomputes(t *testing.T) {
	fx := newSessionFixture(t)
	attempt := fx.addAttempt(1)
	q := fx.addQuestion("A")

	_, err := fx.svc.SubmitAnswer(context.Background(), 1, attempt.ID,
		model.SubmitAnswerRequest{QuestionID: q.ID, GivenLetter: "B"})
	require.NoError(t, err)

	final, err := fx.svc.Finalize(context.Background(), 1, attempt.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, *final.Score)

	// A late corrected answer counts once finalize runs again.
	_, err = fx.svc.SubmitAnswer(context.Background(), 1, attempt.ID,
		model.SubmitAnswerRequest{QuestionID: q.ID, GivenLetter: "A"})
	require.NoError(t, err)

	final, err = fx.svc.Finalize(context.Background(), 1, attempt.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, *final.Score)
}

func TestGetReviewAuthorization(t *testing.T) {
	fx := newSessionFixture(t)
	attempt := fx.addAttempt(1)
	fx.questions.items = []model.ReviewItem{{Statement: "q"}}

	tests := []struct {
		name        string
		requesterID int
		role        model.Role
		wantErr     error
	}{
		{"owner", 1, model.RoleStudent, nil},
		{"other student", 2, model.RoleStudent, ErrForbidden},
		{"teacher", 2, model.RoleTeacher, nil},
		{"admin", 2, model.RoleAdmin, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			review, err := fx.svc.GetReview(context.Background(), tt.requesterID, tt.role, attempt.ID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, review.Items, 1)
		})
	}
}

func TestGetPaperMergesPreviousAnswers(t *testing.T) {
	fx := newSessionFixture(t)
	attempt := fx.addAttempt(1)
	q := fx.addQuestion("A")
	fx.catalog.questions = []model.QuestionForStudent{{ID: q.ID, Statement: "q", Position: 1}}

	_, err := fx.svc.SubmitAnswer(context.Background(), 1, attempt.ID,
		model.SubmitAnswerRequest{QuestionID: q.ID, GivenLetter: "B"})
	require.NoError(t, err)

	paper, err := fx.svc.GetPaper(context.Background(), 1, attempt.ID)
	require.NoError(t, err)
	assert.Len(t, paper.Questions, 1)
	assert.Equal(t, "B", paper.Previous[q.ID])
}
