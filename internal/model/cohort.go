package model

import "time"

// CohortRole is a member's role inside a cohort, independent of the platform
// role (an admin may still be enrolled in a cohort as a teacher).
type CohortRole string

const (
	CohortRoleStudent CohortRole = "student"
	CohortRoleTeacher CohortRole = "teacher"
)

// Cohort is a course group whose membership scopes window eligibility.
type Cohort struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// CohortMember links a user to a cohort with a role inside it.
type CohortMember struct {
	CohortID int        `json:"cohort_id"`
	UserID   int        `json:"user_id"`
	Role     CohortRole `json:"role"`
}
