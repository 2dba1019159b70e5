package model

import (
	"time"

	"github.com/google/uuid"
)

// Window is a scheduled rendition window ("ventana") during which one cohort
// may attempt a windowed exam. EndsAt is always StartsAt plus
// DurationMinutes; both bounds are inclusive, so a window ending exactly
// when another starts still conflicts.
type Window struct {
	ID              uuid.UUID `json:"id"`
	ExamID          uuid.UUID `json:"exam_id"`
	CohortID        int       `json:"cohort_id"`
	StartsAt        time.Time `json:"starts_at"`
	EndsAt          time.Time `json:"ends_at"`
	DurationMinutes int       `json:"duration_minutes"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Contains reports whether t falls inside the window's closed interval.
func (w *Window) Contains(t time.Time) bool {
	return !t.Before(w.StartsAt) && !t.After(w.EndsAt)
}

// CreateWindowRequest is the payload for scheduling a new window.
type CreateWindowRequest struct {
	CohortID        int       `json:"cohort_id" binding:"required,min=1"`
	StartsAt        time.Time `json:"starts_at" binding:"required"`
	DurationMinutes int       `json:"duration_minutes" binding:"required,min=1,max=600"`
}

// UpdateWindowRequest is the payload for rescheduling an existing window.
type UpdateWindowRequest struct {
	StartsAt        time.Time `json:"starts_at" binding:"required"`
	DurationMinutes int       `json:"duration_minutes" binding:"required,min=1,max=600"`
}
