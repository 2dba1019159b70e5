package service

import (
	"fmt"
	"time"

	"github.com/paeslab/ensayos-backend/internal/model"
)

// The admission decision is split into pure rule functions so the
// eligibility pipeline (validate -> authorize -> check -> commit) can be
// exercised without a database. The transactional wrapper in
// AdmissionService feeds them a consistent snapshot.

// validateStartInput enforces that exactly one of exam_id / window_id is
// present.
func validateStartInput(req model.StartAttemptRequest) error {
	if (req.ExamID == nil) == (req.WindowID == nil) {
		return fmt.Errorf("%w: exactly one of exam_id or window_id is required", ErrValidation)
	}
	return nil
}

// checkWindowedAdmission applies the windowed-path eligibility rules in
// reporting order: window timing and enrollment are structural and come
// first, the one-try-per-window rule is always binding, and the optional
// quota is checked last, right before the insert.
func checkWindowedAdmission(exam *model.Exam, window *model.Window, now time.Time, isMember, alreadyAttempted bool, attemptCount int) error {
	if !window.Contains(now) {
		return ErrOutsideWindow
	}
	if !isMember {
		return ErrNotEnrolled
	}
	if alreadyAttempted {
		return ErrAlreadyAttempted
	}
	return checkQuota(exam, attemptCount)
}

// checkPermanentAdmission applies the permanent-path rules: the exam must
// actually be permanent, then only the optional quota applies.
func checkPermanentAdmission(exam *model.Exam, attemptCount int) error {
	if exam.Availability != model.AvailabilityPermanent {
		return ErrWrongMode
	}
	return checkQuota(exam, attemptCount)
}

// checkQuota enforces max_attempts when set. The count spans both windowed
// and permanent attempts against the exam; nil means unlimited.
func checkQuota(exam *model.Exam, attemptCount int) error {
	if exam.MaxAttempts != nil && attemptCount >= *exam.MaxAttempts {
		return ErrQuotaExceeded
	}
	return nil
}
