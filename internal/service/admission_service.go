package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/paeslab/ensayos-backend/internal/model"
	"github.com/paeslab/ensayos-backend/internal/repository"
	"github.com/rs/zerolog"
)

// admissionMaxRetries bounds retries after serialization conflicts. Each
// retry re-runs the full eligibility sequence, so a retried request can
// still be rejected if a concurrent attempt consumed the quota first.
const admissionMaxRetries = 3

// Store interfaces for the data access the admission sequence needs. The
// concrete repositories rebound through WithTx satisfy them.

type admissionExamStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error)
}

type admissionWindowStore interface {
	GetWithExam(ctx context.Context, id uuid.UUID) (*model.Window, *model.Exam, error)
}

type admissionAttemptStore interface {
	Insert(ctx context.Context, a *model.Attempt) error
	ExistsForWindow(ctx context.Context, studentID int, windowID uuid.UUID) (bool, error)
	CountForStudentAndExam(ctx context.Context, studentID int, examID uuid.UUID) (int, error)
}

type admissionMemberStore interface {
	IsMember(ctx context.Context, cohortID, userID int) (bool, error)
}

// admissionStores is the transaction-bound view of the data layer one run
// of the admission sequence works against.
type admissionStores struct {
	exams    admissionExamStore
	windows  admissionWindowStore
	attempts admissionAttemptStore
	members  admissionMemberStore
}

// txRunner runs fn against stores bound to a single serializable
// transaction. Any error rolls the transaction back.
type txRunner func(ctx context.Context, fn func(st admissionStores) error) error

// AdmissionService is the single atomic decision point for "may student S
// start an attempt now". The whole count-and-insert sequence runs inside
// one serializable transaction, with the UNIQUE (student, window)
// constraint as a backstop for the one-try-per-window invariant.
type AdmissionService struct {
	runTx txRunner
	log   zerolog.Logger
	now   func() time.Time
}

// NewAdmissionService creates a new AdmissionService.
func NewAdmissionService(
	pool *pgxpool.Pool,
	examRepo *repository.ExamRepository,
	windowRepo *repository.WindowRepository,
	attemptRepo *repository.AttemptRepository,
	memberRepo *repository.MembershipRepository,
	log zerolog.Logger,
) *AdmissionService {
	runTx := func(ctx context.Context, fn func(st admissionStores) error) error {
		return pgx.BeginTxFunc(ctx, pool, pgx.TxOptions{IsoLevel: pgx.Serializable}, func(tx pgx.Tx) error {
			return fn(admissionStores{
				exams:    examRepo.WithTx(tx),
				windows:  windowRepo.WithTx(tx),
				attempts: attemptRepo.WithTx(tx),
				members:  memberRepo.WithTx(tx),
			})
		})
	}
	return &AdmissionService{
		runTx: runTx,
		log:   log.With().Str("component", "admission").Logger(),
		now:   time.Now,
	}
}

// StartAttempt decides eligibility and creates the attempt in one atomic
// unit. Input carries exactly one of exam_id (permanent path) or window_id
// (windowed path).
func (s *AdmissionService) StartAttempt(ctx context.Context, studentID int, req model.StartAttemptRequest) (*model.Attempt, error) {
	if err := validateStartInput(req); err != nil {
		return nil, err
	}

	for retry := 0; ; retry++ {
		attempt, err := s.startAttemptTx(ctx, studentID, req)
		if err == nil {
			return attempt, nil
		}
		if repository.IsSerializationFailure(err) && retry < admissionMaxRetries {
			s.log.Warn().
				Int("student_id", studentID).
				Int("retry", retry+1).
				Msg("serialization conflict during admission, retrying")
			continue
		}
		return nil, err
	}
}

// startAttemptTx runs the admission sequence once inside a serializable
// transaction. Any error rolls back the whole sequence.
func (s *AdmissionService) startAttemptTx(ctx context.Context, studentID int, req model.StartAttemptRequest) (*model.Attempt, error) {
	var attempt *model.Attempt

	err := s.runTx(ctx, func(st admissionStores) error {
		var err error
		if req.WindowID != nil {
			attempt, err = s.admitWindowed(ctx, st, studentID, *req.WindowID)
		} else {
			attempt, err = s.admitPermanent(ctx, st, studentID, *req.ExamID)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return attempt, nil
}

func (s *AdmissionService) admitWindowed(ctx context.Context, st admissionStores, studentID int, windowID uuid.UUID) (*model.Attempt, error) {
	window, exam, err := st.windows.GetWithExam(ctx, windowID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("window %s: %w", windowID, ErrNotFound)
		}
		return nil, fmt.Errorf("get window: %w", err)
	}

	isMember, err := st.members.IsMember(ctx, window.CohortID, studentID)
	if err != nil {
		return nil, fmt.Errorf("check membership: %w", err)
	}

	attempted, err := st.attempts.ExistsForWindow(ctx, studentID, windowID)
	if err != nil {
		return nil, fmt.Errorf("check window attempt: %w", err)
	}

	// Count only when a quota exists, and as late as possible so the
	// window between the check and the insert stays minimal.
	count := 0
	if exam.MaxAttempts != nil {
		count, err = st.attempts.CountForStudentAndExam(ctx, studentID, exam.ID)
		if err != nil {
			return nil, fmt.Errorf("count attempts: %w", err)
		}
	}

	if err := checkWindowedAdmission(exam, window, s.now(), isMember, attempted, count); err != nil {
		return nil, err
	}

	attempt := &model.Attempt{ExamID: exam.ID, StudentID: studentID, WindowID: &window.ID}
	if err := st.attempts.Insert(ctx, attempt); err != nil {
		if errors.Is(err, repository.ErrUniqueViolation) {
			// A concurrent start slipped in between the check and the
			// insert; the constraint turned it into a detectable conflict.
			return nil, ErrAlreadyAttempted
		}
		return nil, fmt.Errorf("insert attempt: %w", err)
	}
	return attempt, nil
}

func (s *AdmissionService) admitPermanent(ctx context.Context, st admissionStores, studentID int, examID uuid.UUID) (*model.Attempt, error) {
	exam, err := st.exams.GetByID(ctx, examID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("exam %s: %w", examID, ErrNotFound)
		}
		return nil, fmt.Errorf("get exam: %w", err)
	}

	count := 0
	if exam.MaxAttempts != nil {
		count, err = st.attempts.CountForStudentAndExam(ctx, studentID, examID)
		if err != nil {
			return nil, fmt.Errorf("count attempts: %w", err)
		}
	}

	if err := checkPermanentAdmission(exam, count); err != nil {
		return nil, err
	}

	attempt := &model.Attempt{ExamID: examID, StudentID: studentID}
	if err := st.attempts.Insert(ctx, attempt); err != nil {
		return nil, fmt.Errorf("insert attempt: %w", err)
	}
	return attempt, nil
}
