package models

// RoleType defines the profile role type
type RoleType string

const (
	RoleStudent       RoleType = "student"
	RoleMajorHead     RoleType = "major_head"
	RoleInternational RoleType = "international"
)

// Valid reports whether r is one of the known roles
func (r RoleType) Valid() bool {
	switch r {
	case RoleStudent, RoleMajorHead, RoleInternational:
		return true
	}
	return false
}

// ApplicationStatus is the lifecycle state of a learning agreement dossier
type ApplicationStatus string

const (
	StatusDraft          ApplicationStatus = "draft"
	StatusSubmitted      ApplicationStatus = "submitted"
	StatusRevision       ApplicationStatus = "revision"
	StatusValidatedMajor ApplicationStatus = "validated_major"
	StatusValidatedFinal ApplicationStatus = "validated_final"
	StatusRejected       ApplicationStatus = "rejected"
)

// AllStatuses lists every status in display order
var AllStatuses = []ApplicationStatus{
	StatusDraft,
	StatusSubmitted,
	StatusRevision,
	StatusValidatedMajor,
	StatusValidatedFinal,
	StatusRejected,
}

// Valid reports whether s is one of the six known statuses
func (s ApplicationStatus) Valid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// CourseLevel is the master year a course belongs to
type CourseLevel string

const (
	CourseLevelM1 CourseLevel = "M1"
	CourseLevelM2 CourseLevel = "M2"
)
