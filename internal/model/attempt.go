package model

import (
	"time"

	"github.com/google/uuid"
)

// Attempt is one student's rendition of an exam ("resultado"). WindowID is
// nil for attempts against permanent exams. Score stays nil until the
// attempt is finalized; finalize may run again and recompute it.
type Attempt struct {
	ID          uuid.UUID  `json:"id"`
	ExamID      uuid.UUID  `json:"exam_id"`
	StudentID   int        `json:"student_id"`
	WindowID    *uuid.UUID `json:"window_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	Score       *int       `json:"score,omitempty"`
	FinalizedAt *time.Time `json:"finalized_at,omitempty"`
}

// StartAttemptRequest carries exactly one of ExamID (permanent path) or
// WindowID (windowed path). The exclusive-or is enforced by the admission
// service, not by binding tags, so the violation maps to a domain error.
type StartAttemptRequest struct {
	ExamID   *uuid.UUID `json:"exam_id"`
	WindowID *uuid.UUID `json:"window_id"`
}

// AttemptSummary is an attempt joined with its exam title, for the
// student-facing results listing.
type AttemptSummary struct {
	ID          uuid.UUID  `json:"id"`
	ExamID      uuid.UUID  `json:"exam_id"`
	ExamTitle   string     `json:"exam_title"`
	WindowID    *uuid.UUID `json:"window_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	Score       *int       `json:"score,omitempty"`
	FinalizedAt *time.Time `json:"finalized_at,omitempty"`
}

// ReviewItem is one question of an attempt review: the full question, the
// answer key, and the student's recorded answer if any.
type ReviewItem struct {
	QuestionID    uuid.UUID `json:"question_id"`
	Statement     string    `json:"statement"`
	OptionA       string    `json:"option_a"`
	OptionB       string    `json:"option_b"`
	OptionC       string    `json:"option_c"`
	OptionD       string    `json:"option_d"`
	CorrectLetter string    `json:"correct_letter"`
	GivenLetter   *string   `json:"given_letter,omitempty"`
	Correct       bool      `json:"correct"`
}
