package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/mobility/internal/app/models/dto"
	"github.com/yigit/mobility/internal/app/services"
	"github.com/yigit/mobility/internal/middleware"
)

// MessageController handles the discussion thread of a dossier
type MessageController struct {
	messageService services.MessageService
}

// NewMessageController creates a new MessageController
func NewMessageController(messageService services.MessageService) *MessageController {
	return &MessageController{messageService: messageService}
}

// List godoc
// @Summary Read the thread
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.MessageResponse}
// @Router /applications/{id}/messages [get]
func (c *MessageController) List(ctx *gin.Context) {
	actor, ok := actorOrAbort(ctx)
	if !ok {
		return
	}
	appID, ok := uuidParam(ctx, "id")
	if !ok {
		return
	}
	messages, err := c.messageService.List(ctx.Request.Context(), actor, appID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(messages))
}

// Post godoc
// @Summary Post to the thread
// @Tags messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Param request body dto.CreateMessageRequest true "Message"
// @Success 201 {object} dto.APIResponse{data=dto.MessageResponse}
// @Failure 400 {object} dto.ErrorResponse "Empty message"
// @Failure 403 {object} dto.ErrorResponse "Not a party of this dossier"
// @Router /applications/{id}/messages [post]
func (c *MessageController) Post(ctx *gin.Context) {
	actor, ok := actorOrAbort(ctx)
	if !ok {
		return
	}
	appID, ok := uuidParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.CreateMessageRequest
	if !bindJSON(ctx, &req) {
		return
	}

	msg, err := c.messageService.Post(ctx.Request.Context(), actor, appID, req.Content)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(msg))
}
