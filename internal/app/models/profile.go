package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile defines the user model based on the 'profiles' table
type Profile struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	Email     string     `json:"email" db:"email" example:"jane.doe@edu.ece.fr"`
	Password  string     `json:"-" db:"password_hash"`
	FullName  string     `json:"fullName" db:"full_name" example:"Jane Doe"`
	Role      RoleType   `json:"role" db:"role" example:"student"`
	MajorID   *uuid.UUID `json:"majorId,omitempty" db:"major_id"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
}

// Major is an academic major a student belongs to and a major head is responsible for
type Major struct {
	ID   uuid.UUID `json:"id" db:"id"`
	Name string    `json:"name" db:"name" example:"Computer Science"`
	Code string    `json:"code" db:"code" example:"CS"`
}

// AcademicYear is the year a dossier is filed for
type AcademicYear struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Year      string    `json:"year" db:"year" example:"2025-2026"`
	IsCurrent bool      `json:"isCurrent" db:"is_current"`
}
