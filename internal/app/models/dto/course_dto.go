package dto

// CreateCourseRequest adds a course-equivalency line. Dates use YYYY-MM-DD.
type CreateCourseRequest struct {
	Title        string   `json:"title" binding:"required,max=255" example:"Distributed Systems"`
	Language     string   `json:"language" binding:"required,max=50" example:"English"`
	Description  string   `json:"description"`
	WebLink      string   `json:"webLink" binding:"omitempty,url"`
	Level        string   `json:"level" binding:"required,oneof=M1 M2" example:"M1"`
	StartDate    string   `json:"startDate" binding:"required,datetime=2006-01-02" example:"2025-09-15"`
	EndDate      string   `json:"endDate" binding:"required,datetime=2006-01-02" example:"2026-01-31"`
	LocalCredits *float64 `json:"localCredits" binding:"omitempty,gte=0"`
	ECTS         int      `json:"ects" binding:"required,min=1,max=60" example:"6"`
	ChoiceReason string   `json:"choiceReason"`
}

// ReviewCourseRequest records a reviewer decision on one course line.
// A null isValidated resets the line to pending.
type ReviewCourseRequest struct {
	IsValidated     *bool  `json:"isValidated"`
	RejectionReason string `json:"rejectionReason"`
}
