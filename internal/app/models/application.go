package models

import (
	"time"

	"github.com/google/uuid"
)

// Application is a learning agreement dossier tying one student to one major head
// for one academic year and one host university.
type Application struct {
	ID                uuid.UUID         `json:"id" db:"id"`
	StudentID         uuid.UUID         `json:"studentId" db:"student_id"`
	MajorHeadID       uuid.UUID         `json:"majorHeadId" db:"major_head_id"`
	AcademicYearID    uuid.UUID         `json:"academicYearId" db:"academic_year_id"`
	Status            ApplicationStatus `json:"status" db:"status"`
	UniversityName    string            `json:"universityName" db:"university_name"`
	UniversityCity    string            `json:"universityCity" db:"university_city"`
	UniversityCountry string            `json:"universityCountry" db:"university_country"`
	CreatedAt         time.Time         `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time         `json:"updatedAt" db:"updated_at"`

	// Related entities, populated by list queries
	Student      *Profile      `json:"student,omitempty"`
	MajorHead    *Profile      `json:"majorHead,omitempty"`
	AcademicYear *AcademicYear `json:"academicYear,omitempty"`
}

// Course is one course-equivalency line of a dossier
type Course struct {
	ID              uuid.UUID   `json:"id" db:"id"`
	ApplicationID   uuid.UUID   `json:"applicationId" db:"application_id"`
	Title           string      `json:"title" db:"title"`
	Language        string      `json:"language" db:"language"`
	Description     string      `json:"description" db:"description"`
	WebLink         string      `json:"webLink" db:"web_link"`
	Level           CourseLevel `json:"level" db:"level"`
	StartDate       time.Time   `json:"startDate" db:"start_date"`
	EndDate         time.Time   `json:"endDate" db:"end_date"`
	LocalCredits    *float64    `json:"localCredits,omitempty" db:"local_credits"`
	ECTS            int         `json:"ects" db:"ects"`
	ChoiceReason    string      `json:"choiceReason" db:"choice_reason"`
	IsValidated     *bool       `json:"isValidated" db:"is_validated"` // nil means pending
	RejectionReason *string     `json:"rejectionReason,omitempty" db:"rejection_reason"`
	CreatedAt       time.Time   `json:"createdAt" db:"created_at"`
}

// Message is an entry on a dossier's discussion thread
type Message struct {
	ID            uuid.UUID `json:"id" db:"id"`
	ApplicationID uuid.UUID `json:"applicationId" db:"application_id"`
	SenderID      uuid.UUID `json:"senderId" db:"sender_id"`
	Content       string    `json:"content" db:"content"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`

	Sender *Profile `json:"sender,omitempty"`
}

// File is an uploaded document attached to a dossier
type File struct {
	ID            uuid.UUID `json:"id" db:"id"`
	ApplicationID uuid.UUID `json:"applicationId" db:"application_id"`
	UploaderID    uuid.UUID `json:"uploaderId" db:"uploader_id"`
	FileName      string    `json:"fileName" db:"file_name"`
	FilePath      string    `json:"filePath" db:"file_path"` // storage key
	FileSize      int64     `json:"fileSize" db:"file_size"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
}

// Notification is a per-user inbox entry
type Notification struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"userId" db:"user_id"`
	Message   string    `json:"message" db:"message"`
	Link      *string   `json:"link,omitempty" db:"link"`
	IsRead    bool      `json:"isRead" db:"is_read"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
