package dto

import (
	"github.com/google/uuid"
	"github.com/yigit/mobility/internal/pkg/webhook"
)

// TriggerWebhookRequest asks the server to build and forward an event payload
type TriggerWebhookRequest struct {
	Event          string    `json:"event" binding:"required" example:"application_submitted"`
	ApplicationID  uuid.UUID `json:"application_id" binding:"required"`
	MessagePreview string    `json:"message_preview"`
}

// TriggerWebhookResponse echoes the payload that was built
type TriggerWebhookResponse struct {
	Success bool            `json:"success"`
	Event   string          `json:"event"`
	Payload webhook.Payload `json:"payload"`
}

// WebhookStatusResponse tells whether an outbound URL is configured
type WebhookStatusResponse struct {
	Configured bool     `json:"configured"`
	Events     []string `json:"events"`
}
