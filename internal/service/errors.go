package service

import "errors"

// Domain errors returned by the services. Handlers map these onto HTTP
// status codes and response.ErrCode values; anything not in this list is a
// store failure and surfaces as a generic server error after rollback.
var (
	// ErrValidation marks malformed input the binding layer cannot catch
	// (bad answer letter, both or neither of exam_id/window_id).
	ErrValidation = errors.New("invalid input")

	// ErrNotFound marks an absent exam, window, attempt or question.
	ErrNotFound = errors.New("not found")

	// ErrForbidden marks an operation on a resource the caller does not own.
	ErrForbidden = errors.New("forbidden")

	// ErrWrongMode marks a permanent-path start against a windowed exam or
	// a window scheduled on a non-windowed exam.
	ErrWrongMode = errors.New("exam availability does not allow this")

	// ErrOutsideWindow marks a start outside the window's closed interval.
	ErrOutsideWindow = errors.New("outside the rendition window")

	// ErrNotEnrolled marks a student who is not a member of the window's
	// cohort.
	ErrNotEnrolled = errors.New("not enrolled in the cohort")

	// ErrAlreadyAttempted marks a second attempt against the same window.
	ErrAlreadyAttempted = errors.New("window already attempted")

	// ErrQuotaExceeded marks an exam whose max_attempts cap is exhausted.
	ErrQuotaExceeded = errors.New("attempt quota exceeded")

	// ErrOverlappingWindow marks a window whose interval overlaps an
	// existing window of the same exam and cohort (touching endpoints
	// included).
	ErrOverlappingWindow = errors.New("overlapping window")

	// ErrWindowInUse marks a window deletion refused because attempts
	// reference it.
	ErrWindowInUse = errors.New("window has recorded attempts")

	// ErrNotCohortTeacher marks a window operation by someone who does not
	// teach the target cohort.
	ErrNotCohortTeacher = errors.New("not a teacher of the cohort")
)
