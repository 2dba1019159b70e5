package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/paeslab/ensayos-backend/internal/model"
	"github.com/paeslab/ensayos-backend/internal/repository"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAdmissionExams struct {
	exams map[uuid.UUID]*model.Exam
}

func (f *fakeAdmissionExams) GetByID(_ context.Context, id uuid.UUID) (*model.Exam, error) {
	exam, ok := f.exams[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return exam, nil
}

type fakeAdmissionWindows struct {
	windows map[uuid.UUID]*model.Window
	exams   map[uuid.UUID]*model.Exam
	calls   int
}

func (f *fakeAdmissionWindows) GetWithExam(_ context.Context, id uuid.UUID) (*model.Window, *model.Exam, error) {
	f.calls++
	window, ok := f.windows[id]
	if !ok {
		return nil, nil, pgx.ErrNoRows
	}
	return window, f.exams[window.ExamID], nil
}

type fakeAdmissionAttempts struct {
	inserted   []model.Attempt
	insertErrs []error // consumed one per Insert call; nil entries succeed
	baseCounts map[uuid.UUID]int
}

func (f *fakeAdmissionAttempts) Insert(_ context.Context, a *model.Attempt) error {
	if len(f.insertErrs) > 0 {
		err := f.insertErrs[0]
		f.insertErrs = f.insertErrs[1:]
		if err != nil {
			return err
		}
	}
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	f.inserted = append(f.inserted, *a)
	return nil
}

func (f *fakeAdmissionAttempts) ExistsForWindow(_ context.Context, studentID int, windowID uuid.UUID) (bool, error) {
	for _, a := range f.inserted {
		if a.StudentID == studentID && a.WindowID != nil && *a.WindowID == windowID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeAdmissionAttempts) CountForStudentAndExam(_ context.Context, studentID int, examID uuid.UUID) (int, error) {
	count := f.baseCounts[examID]
	for _, a := range f.inserted {
		if a.StudentID == studentID && a.ExamID == examID {
			count++
		}
	}
	return count, nil
}

type fakeAdmissionMembers struct {
	cohorts map[int][]int // cohort -> member user ids
}

func (f *fakeAdmissionMembers) IsMember(_ context.Context, cohortID, userID int) (bool, error) {
	for _, id := range f.cohorts[cohortID] {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}

// admissionFixture wires an AdmissionService onto in-memory stores with a
// pass-through transaction runner, so the full start sequence (retry loop
// included) runs without a database.
type admissionFixture struct {
	svc      *AdmissionService
	exams    *fakeAdmissionExams
	windows  *fakeAdmissionWindows
	attempts *fakeAdmissionAttempts
	members  *fakeAdmissionMembers
	txRuns   int
	now      time.Time
}

func newAdmissionFixture() *admissionFixture {
	fx := &admissionFixture{
		exams:    &fakeAdmissionExams{exams: map[uuid.UUID]*model.Exam{}},
		windows:  &fakeAdmissionWindows{windows: map[uuid.UUID]*model.Window{}, exams: map[uuid.UUID]*model.Exam{}},
		attempts: &fakeAdmissionAttempts{baseCounts: map[uuid.UUID]int{}},
		members:  &fakeAdmissionMembers{cohorts: map[int][]int{}},
		now:      time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC),
	}
	fx.svc = &AdmissionService{
		runTx: func(_ context.Context, fn func(st admissionStores) error) error {
			fx.txRuns++
			return fn(admissionStores{
				exams:    fx.exams,
				windows:  fx.windows,
				attempts: fx.attempts,
				members:  fx.members,
			})
		},
		log: zerolog.Nop(),
		now: func() time.Time { return fx.now },
	}
	return fx
}

// addWindowedExam registers a windowed exam with one 10:00-12:00 window for
// cohort 1 and returns the window id.
func (fx *admissionFixture) addWindowedExam(maxAttempts *int) uuid.UUID {
	examID := uuid.New()
	windowID := uuid.New()
	starts := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	exam := &model.Exam{ID: examID, Availability: model.AvailabilityWindowed, MaxAttempts: maxAttempts}
	fx.exams.exams[examID] = exam
	fx.windows.exams[examID] = exam
	fx.windows.windows[windowID] = &model.Window{
		ID:              windowID,
		ExamID:          examID,
		CohortID:        1,
		StartsAt:        starts,
		EndsAt:          starts.Add(2 * time.Hour),
		DurationMinutes: 120,
	}
	return windowID
}

func (fx *admissionFixture) addPermanentExam(maxAttempts *int) uuid.UUID {
	examID := uuid.New()
	fx.exams.exams[examID] = &model.Exam{ID: examID, Availability: model.AvailabilityPermanent, MaxAttempts: maxAttempts}
	return examID
}

func TestStartAttemptWindowedThenDuplicate(t *testing.T) {
	fx := newAdmissionFixture()
	windowID := fx.addWindowedExam(nil)
	fx.members.cohorts[1] = []int{7}

	attempt, err := fx.svc.StartAttempt(context.Background(), 7, model.StartAttemptRequest{WindowID: &windowID})
	require.NoError(t, err)
	require.NotNil(t, attempt.WindowID)
	assert.Equal(t, windowID, *attempt.WindowID)
	assert.Equal(t, 7, attempt.StudentID)
	assert.NotEqual(t, uuid.Nil, attempt.ID)

	_, err = fx.svc.StartAttempt(context.Background(), 7, model.StartAttemptRequest{WindowID: &windowID})
	assert.ErrorIs(t, err, ErrAlreadyAttempted)
	assert.Len(t, fx.attempts.inserted, 1)
}

func TestStartAttemptAfterWindowCloses(t *testing.T) {
	fx := newAdmissionFixture()
	windowID := fx.addWindowedExam(nil)
	fx.members.cohorts[1] = []int{7}
	fx.now = time.Date(2026, 3, 10, 12, 1, 0, 0, time.UTC)

	_, err := fx.svc.StartAttempt(context.Background(), 7, model.StartAttemptRequest{WindowID: &windowID})
	assert.ErrorIs(t, err, ErrOutsideWindow)
	assert.Empty(t, fx.attempts.inserted)
}

func TestStartAttemptPermanentQuota(t *testing.T) {
	fx := newAdmissionFixture()
	examID := fx.addPermanentExam(intPtr(2))

	for i := 0; i < 2; i++ {
		attempt, err := fx.svc.StartAttempt(context.Background(), 7, model.StartAttemptRequest{ExamID: &examID})
		require.NoError(t, err)
		assert.Nil(t, attempt.WindowID)
	}

	_, err := fx.svc.StartAttempt(context.Background(), 7, model.StartAttemptRequest{ExamID: &examID})
	assert.ErrorIs(t, err, ErrQuotaExceeded)
	assert.Len(t, fx.attempts.inserted, 2)
}

func TestStartAttemptInputValidation(t *testing.T) {
	fx := newAdmissionFixture()
	examID := fx.addPermanentExam(nil)
	windowID := fx.addWindowedExam(nil)

	tests := []struct {
		name string
		req  model.StartAttemptRequest
	}{
		{"neither", model.StartAttemptRequest{}},
		{"both", model.StartAttemptRequest{ExamID: &examID, WindowID: &windowID}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fx.svc.StartAttempt(context.Background(), 7, tt.req)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
	// Rejected before any transaction starts.
	assert.Zero(t, fx.txRuns)
}

func TestStartAttemptNotFound(t *testing.T) {
	fx := newAdmissionFixture()
	examID := uuid.New()
	windowID := uuid.New()

	_, err := fx.svc.StartAttempt(context.Background(), 7, model.StartAttemptRequest{ExamID: &examID})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = fx.svc.StartAttempt(context.Background(), 7, model.StartAttemptRequest{WindowID: &windowID})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStartAttemptNotEnrolled(t *testing.T) {
	fx := newAdmissionFixture()
	windowID := fx.addWindowedExam(nil)
	fx.members.cohorts[1] = []int{8} // someone else

	_, err := fx.svc.StartAttempt(context.Background(), 7, model.StartAttemptRequest{WindowID: &windowID})
	assert.ErrorIs(t, err, ErrNotEnrolled)
}

func TestStartAttemptWindowedExamViaExamID(t *testing.T) {
	fx := newAdmissionFixture()
	examID := uuid.New()
	fx.exams.exams[examID] = &model.Exam{ID: examID, Availability: model.AvailabilityWindowed}

	_, err := fx.svc.StartAttempt(context.Background(), 7, model.StartAttemptRequest{ExamID: &examID})
	assert.ErrorIs(t, err, ErrWrongMode)
}

func TestStartAttemptQuotaSpansBothPaths(t *testing.T) {
	fx := newAdmissionFixture()
	windowID := fx.addWindowedExam(intPtr(2))
	window := fx.windows.windows[windowID]
	fx.members.cohorts[1] = []int{7}
	// Two prior attempts against the same exam through other windows.
	fx.attempts.baseCounts[window.ExamID] = 2

	_, err := fx.svc.StartAttempt(context.Background(), 7, model.StartAttemptRequest{WindowID: &windowID})
	assert.ErrorIs(t, err, ErrQuotaExceeded)
}

func TestStartAttemptInsertConflictMapsToAlreadyAttempted(t *testing.T) {
	fx := newAdmissionFixture()
	windowID := fx.addWindowedExam(nil)
	fx.members.cohorts[1] = []int{7}
	// A concurrent start committed between the existence check and the
	// insert; the unique constraint reports it.
	fx.attempts.insertErrs = []error{repository.ErrUniqueViolation}

	_, err := fx.svc.StartAttempt(context.Background(), 7, model.StartAttemptRequest{WindowID: &windowID})
	assert.ErrorIs(t, err, ErrAlreadyAttempted)
}

func TestStartAttemptRetriesSerializationFailure(t *testing.T) {
	fx := newAdmissionFixture()
	windowID := fx.addWindowedExam(nil)
	fx.members.cohorts[1] = []int{7}
	fx.attempts.insertErrs = []error{&pgconn.PgError{Code: "40001"}, nil}

	attempt, err := fx.svc.StartAttempt(context.Background(), 7, model.StartAttemptRequest{WindowID: &windowID})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, attempt.ID)
	// The retry re-ran the whole eligibility sequence, not just the insert.
	assert.Equal(t, 2, fx.txRuns)
	assert.Equal(t, 2, fx.windows.calls)
}

func TestStartAttemptRetriesAreBounded(t *testing.T) {
	fx := newAdmissionFixture()
	windowID := fx.addWindowedExam(nil)
	fx.members.cohorts[1] = []int{7}
	serErr := &pgconn.PgError{Code: "40001"}
	fx.attempts.insertErrs = []error{serErr, serErr, serErr, serErr, serErr}

	_, err := fx.svc.StartAttempt(context.Background(), 7, model.StartAttemptRequest{WindowID: &windowID})
	require.Error(t, err)
	assert.True(t, repository.IsSerializationFailure(err))
	assert.Equal(t, admissionMaxRetries+1, fx.txRuns)
}
