package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/mobility/internal/app/models/dto"
	"github.com/yigit/mobility/internal/app/services"
	"github.com/yigit/mobility/internal/middleware"
)

// WebhookController exposes the outbound webhook to clients
type WebhookController struct {
	events services.EventDispatcher
}

// NewWebhookController creates a new WebhookController
func NewWebhookController(events services.EventDispatcher) *WebhookController {
	return &WebhookController{events: events}
}

// Trigger godoc
// @Summary Forward an event to the webhook
// @Description Builds the payload of a recognized event for a dossier the caller can see
// @Tags webhooks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.TriggerWebhookRequest true "Event"
// @Success 200 {object} dto.TriggerWebhookResponse
// @Failure 400 {object} dto.ErrorResponse "Unknown event"
// @Failure 403 {object} dto.ErrorResponse "Not a party of this dossier"
// @Router /webhooks [post]
func (c *WebhookController) Trigger(ctx *gin.Context) {
	actor, ok := actorOrAbort(ctx)
	if !ok {
		return
	}
	var req dto.TriggerWebhookRequest
	if !bindJSON(ctx, &req) {
		return
	}

	resp, err := c.events.Trigger(ctx.Request.Context(), actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// Status godoc
// @Summary Webhook configuration
// @Tags webhooks
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.WebhookStatusResponse
// @Router /webhooks [get]
func (c *WebhookController) Status(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, c.events.Status())
}
