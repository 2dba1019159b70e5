package model

import (
	"time"

	"github.com/google/uuid"
)

// Availability enumerates how an exam can be taken.
type Availability string

const (
	// AvailabilityPermanent exams can be started at any time.
	AvailabilityPermanent Availability = "PERMANENT"
	// AvailabilityWindowed exams can only be started through a scheduled
	// window assigned to one of the student's cohorts.
	AvailabilityWindowed Availability = "WINDOWED"
)

// Exam represents an exam template ("ensayo"). Authoring is out of scope for
// this core; exams are read-only here except through the seed tooling.
// A nil MaxAttempts means unlimited attempts.
type Exam struct {
	ID           uuid.UUID    `json:"id"`
	Title        string       `json:"title"`
	AuthorID     int          `json:"author_id"`
	Availability Availability `json:"availability"`
	MaxAttempts  *int         `json:"max_attempts,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// LobbyEntry is one exam the student can currently start, with the window
// that grants access when the exam is windowed.
type LobbyEntry struct {
	ExamID          uuid.UUID    `json:"exam_id"`
	Title           string       `json:"title"`
	Availability    Availability `json:"availability"`
	WindowID        *uuid.UUID   `json:"window_id,omitempty"`
	WindowStartsAt  *time.Time   `json:"window_starts_at,omitempty"`
	WindowEndsAt    *time.Time   `json:"window_ends_at,omitempty"`
	DurationMinutes *int         `json:"duration_minutes,omitempty"`
}
