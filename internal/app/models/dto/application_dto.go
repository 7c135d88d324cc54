package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/yigit/mobility/internal/app/models"
	"github.com/yigit/mobility/internal/app/workflow"
	"github.com/yigit/mobility/internal/pkg/validation"
)

// CreateApplicationRequest opens a draft dossier for the current academic year
type CreateApplicationRequest struct {
	MajorHeadID       uuid.UUID `json:"majorHeadId" binding:"required"`
	UniversityName    string    `json:"universityName" binding:"required,max=255" example:"Politecnico di Milano"`
	UniversityCity    string    `json:"universityCity" binding:"required,max=150" example:"Milan"`
	UniversityCountry string    `json:"universityCountry" binding:"required,max=150" example:"Italy"`
}

// ReasonRequest carries the mandatory reason of a revision request or a rejection
type ReasonRequest struct {
	Reason string `json:"reason" binding:"required,notblank" example:"Please add the course syllabus"`
}

// ApplicationFilterRequest holds the dashboard query parameters
type ApplicationFilterRequest struct {
	Status         string `form:"status" binding:"omitempty,oneof=draft submitted revision validated_major validated_final rejected"`
	MajorID        string `form:"majorId" binding:"omitempty,uuid"`
	AcademicYearID string `form:"academicYearId" binding:"omitempty,uuid"`
	Search         string `form:"search" binding:"omitempty,max=100"`
	Sort           string `form:"sort" binding:"omitempty,oneof=updated_desc created_desc created_asc name_asc"`
	Page           int    `form:"page" binding:"omitempty,min=1"`
	PageSize       int    `form:"pageSize" binding:"omitempty,min=1,max=100"`
}

// ApplicationResponse is a dossier with its display metadata
type ApplicationResponse struct {
	ID                uuid.UUID                `json:"id"`
	Status            models.ApplicationStatus `json:"status" example:"submitted"`
	Badge             workflow.Badge           `json:"badge"`
	Rank              int                      `json:"rank" example:"1"`
	UniversityName    string                   `json:"universityName"`
	UniversityCity    string                   `json:"universityCity"`
	UniversityCountry string                   `json:"universityCountry"`
	Student           *ProfileResponse         `json:"student,omitempty"`
	MajorHead         *ProfileResponse         `json:"majorHead,omitempty"`
	AcademicYear      *models.AcademicYear     `json:"academicYear,omitempty"`
	CreatedAt         time.Time                `json:"createdAt"`
	UpdatedAt         time.Time                `json:"updatedAt"`
}

// NewApplicationResponse converts an application using badges for its status label
func NewApplicationResponse(app *models.Application, badges workflow.BadgeSet) *ApplicationResponse {
	rank, ok := workflow.Rank(app.Status)
	if !ok {
		rank = workflow.RejectedRank
	}
	return &ApplicationResponse{
		ID:                app.ID,
		Status:            app.Status,
		Badge:             badges.For(app.Status),
		Rank:              rank,
		UniversityName:    app.UniversityName,
		UniversityCity:    app.UniversityCity,
		UniversityCountry: app.UniversityCountry,
		Student:           NewProfileResponse(app.Student),
		MajorHead:         NewProfileResponse(app.MajorHead),
		AcademicYear:      app.AcademicYear,
		CreatedAt:         app.CreatedAt,
		UpdatedAt:         app.UpdatedAt,
	}
}

// ApplicationListResponse is one dashboard page
type ApplicationListResponse struct {
	Applications []*ApplicationResponse `json:"applications"`
	StatusCounts map[string]int         `json:"statusCounts"`
	Pagination   PaginationInfo         `json:"pagination"`
}

// ApplicationDetailResponse is the full view of a dossier
type ApplicationDetailResponse struct {
	Application      *ApplicationResponse   `json:"application"`
	Timeline         workflow.Timeline      `json:"timeline"`
	AvailableActions []workflow.Action      `json:"availableActions"`
	Courses          []*models.Course       `json:"courses"`
	ECTS             validation.ECTSSummary `json:"ects"`
	Files            []*FileResponse        `json:"files"`
	Messages         []*MessageResponse     `json:"messages"`
}
