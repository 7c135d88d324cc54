package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/yigit/mobility/internal/app/models"
)

// CreateMessageRequest posts to a dossier thread
type CreateMessageRequest struct {
	Content string `json:"content" binding:"required,notblank,max=5000"`
}

// MessageResponse is one thread entry
type MessageResponse struct {
	ID        uuid.UUID        `json:"id"`
	Content   string           `json:"content"`
	Sender    *ProfileResponse `json:"sender"`
	CreatedAt time.Time        `json:"createdAt"`
}

// ToMessageResponse converts a message
func ToMessageResponse(m *models.Message) *MessageResponse {
	resp := &MessageResponse{
		ID:        m.ID,
		Content:   m.Content,
		Sender:    NewProfileResponse(m.Sender),
		CreatedAt: m.CreatedAt,
	}
	if resp.Sender == nil {
		resp.Sender = &ProfileResponse{ID: m.SenderID}
	}
	return resp
}
