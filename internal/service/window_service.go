package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/paeslab/ensayos-backend/internal/model"
	"github.com/paeslab/ensayos-backend/internal/repository"
	"github.com/rs/zerolog"
)

// windowStore is the window data access the scheduling layer needs.
type windowStore interface {
	Create(ctx context.Context, w *model.Window) error
	Update(ctx context.Context, w *model.Window) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Window, error)
	ListByExam(ctx context.Context, examID uuid.UUID) ([]model.Window, error)
}

// examStore resolves exams for window scheduling.
type examStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error)
}

// membershipStore answers the cohort-teacher question.
type membershipStore interface {
	IsCohortTeacher(ctx context.Context, cohortID, userID int) (bool, error)
}

// WindowService schedules rendition windows. Overlap enforcement lives in
// the database's exclusion constraint; this layer translates the resulting
// conflicts and enforces who may schedule for which cohort.
type WindowService struct {
	windows windowStore
	exams   examStore
	members membershipStore
	log     zerolog.Logger
}

// NewWindowService creates a new WindowService.
func NewWindowService(windows windowStore, exams examStore, members membershipStore, log zerolog.Logger) *WindowService {
	return &WindowService{
		windows: windows,
		exams:   exams,
		members: members,
		log:     log.With().Str("component", "windows").Logger(),
	}
}

// Create schedules a window for a windowed exam. Admins may schedule for
// any cohort; teachers only for cohorts they teach.
func (s *WindowService) Create(ctx context.Context, userID int, role model.Role, examID uuid.UUID, req model.CreateWindowRequest) (*model.Window, error) {
	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("exam %s: %w", examID, ErrNotFound)
		}
		return nil, fmt.Errorf("get exam: %w", err)
	}
	if exam.Availability != model.AvailabilityWindowed {
		return nil, ErrWrongMode
	}

	if err := s.authorizeCohort(ctx, userID, role, req.CohortID); err != nil {
		return nil, err
	}

	window := &model.Window{
		ExamID:          examID,
		CohortID:        req.CohortID,
		StartsAt:        req.StartsAt,
		EndsAt:          req.StartsAt.Add(time.Duration(req.DurationMinutes) * time.Minute),
		DurationMinutes: req.DurationMinutes,
	}
	if err := s.windows.Create(ctx, window); err != nil {
		if errors.Is(err, repository.ErrExclusionViolation) {
			return nil, ErrOverlappingWindow
		}
		if errors.Is(err, repository.ErrForeignKeyViolation) {
			return nil, fmt.Errorf("cohort %d: %w", req.CohortID, ErrNotFound)
		}
		return nil, fmt.Errorf("create window: %w", err)
	}

	s.log.Info().
		Str("window_id", window.ID.String()).
		Str("exam_id", examID.String()).
		Int("cohort_id", req.CohortID).
		Time("starts_at", window.StartsAt).
		Msg("window scheduled")
	return window, nil
}

// Update reschedules an existing window.
func (s *WindowService) Update(ctx context.Context, userID int, role model.Role, windowID uuid.UUID, req model.UpdateWindowRequest) (*model.Window, error) {
	window, err := s.windows.GetByID(ctx, windowID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("window %s: %w", windowID, ErrNotFound)
		}
		return nil, fmt.Errorf("get window: %w", err)
	}

	if err := s.authorizeCohort(ctx, userID, role, window.CohortID); err != nil {
		return nil, err
	}

	window.StartsAt = req.StartsAt
	window.EndsAt = req.StartsAt.Add(time.Duration(req.DurationMinutes) * time.Minute)
	window.DurationMinutes = req.DurationMinutes
	if err := s.windows.Update(ctx, window); err != nil {
		if errors.Is(err, repository.ErrExclusionViolation) {
			return nil, ErrOverlappingWindow
		}
		return nil, fmt.Errorf("update window: %w", err)
	}
	return window, nil
}

// Delete removes a window. Windows that already admitted attempts cannot be
// deleted; reschedule or let them lapse instead.
func (s *WindowService) Delete(ctx context.Context, userID int, role model.Role, windowID uuid.UUID) error {
	window, err := s.windows.GetByID(ctx, windowID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("window %s: %w", windowID, ErrNotFound)
		}
		return fmt.Errorf("get window: %w", err)
	}

	if err := s.authorizeCohort(ctx, userID, role, window.CohortID); err != nil {
		return err
	}

	if err := s.windows.Delete(ctx, windowID); err != nil {
		if errors.Is(err, repository.ErrForeignKeyViolation) {
			return ErrWindowInUse
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("window %s: %w", windowID, ErrNotFound)
		}
		return fmt.Errorf("delete window: %w", err)
	}
	return nil
}

// ListByExam returns all windows of an exam, earliest first.
func (s *WindowService) ListByExam(ctx context.Context, examID uuid.UUID) ([]model.Window, error) {
	if _, err := s.exams.GetByID(ctx, examID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("exam %s: %w", examID, ErrNotFound)
		}
		return nil, fmt.Errorf("get exam: %w", err)
	}
	return s.windows.ListByExam(ctx, examID)
}

// authorizeCohort lets admins through and requires teachers to actually
// teach the cohort they are scheduling for.
func (s *WindowService) authorizeCohort(ctx context.Context, userID int, role model.Role, cohortID int) error {
	if !role.Can(model.CapabilityManageWindows) {
		return ErrForbidden
	}
	if role == model.RoleAdmin {
		return nil
	}
	teaches, err := s.members.IsCohortTeacher(ctx, cohortID, userID)
	if err != nil {
		return fmt.Errorf("check cohort teacher: %w", err)
	}
	if !teaches {
		return ErrNotCohortTeacher
	}
	return nil
}
