package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/yigit/mobility/internal/app/models"
	"github.com/yigit/mobility/internal/app/workflow"
)

// FileResponse is a dossier document with the lane it was filed in
type FileResponse struct {
	ID         uuid.UUID     `json:"id"`
	FileName   string        `json:"fileName" example:"learning_agreement.pdf"`
	FileSize   int64         `json:"fileSize" example:"48213"`
	UploaderID uuid.UUID     `json:"uploaderId"`
	Lane       workflow.Lane `json:"lane" example:"student"`
	CreatedAt  time.Time     `json:"createdAt"`
}

// NewFileResponse converts a file of app
func NewFileResponse(f *models.File, app *models.Application) *FileResponse {
	return &FileResponse{
		ID:         f.ID,
		FileName:   f.FileName,
		FileSize:   f.FileSize,
		UploaderID: f.UploaderID,
		Lane:       workflow.LaneOf(f.UploaderID, app),
		CreatedAt:  f.CreatedAt,
	}
}

// FileURLResponse is a time limited download link
type FileURLResponse struct {
	URL       string `json:"url"`
	ExpiresIn int64  `json:"expiresIn" example:"60"`
}
