package model

// Role is the closed set of platform roles. Handlers never compare raw role
// strings; they go through Can so every capability decision lives here.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// Capability is a string code for a specific system action.
type Capability string

const (
	// CapabilityTakeExams allows starting attempts, submitting answers and
	// finalizing own attempts.
	CapabilityTakeExams Capability = "exams:take"

	// CapabilityManageWindows allows creating, updating and deleting
	// rendition windows for exams.
	CapabilityManageWindows Capability = "windows:manage"

	// CapabilityViewAllResults allows reading attempts and reviews that
	// belong to other students.
	CapabilityViewAllResults Capability = "results:view_all"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

// Can reports whether the role grants the given capability.
func (r Role) Can(c Capability) bool {
	switch c {
	case CapabilityTakeExams:
		return r == RoleStudent
	case CapabilityManageWindows:
		return r == RoleTeacher || r == RoleAdmin
	case CapabilityViewAllResults:
		return r == RoleTeacher || r == RoleAdmin
	}
	return false
}
