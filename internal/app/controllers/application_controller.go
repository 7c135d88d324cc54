package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/mobility/internal/app/models/dto"
	"github.com/yigit/mobility/internal/app/services"
	"github.com/yigit/mobility/internal/app/workflow"
	"github.com/yigit/mobility/internal/middleware"
)

// ApplicationController handles dossier lifecycle requests
type ApplicationController struct {
	applicationService services.ApplicationService
	logger             zerolog.Logger
}

// NewApplicationController creates a new ApplicationController
func NewApplicationController(applicationService services.ApplicationService, logger zerolog.Logger) *ApplicationController {
	return &ApplicationController{
		applicationService: applicationService,
		logger:             logger,
	}
}

// Create godoc
// @Summary Create a dossier
// @Description Opens a draft learning agreement for the current academic year
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateApplicationRequest true "Host university and major head"
// @Success 201 {object} dto.APIResponse{data=dto.ApplicationResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid request"
// @Failure 403 {object} dto.ErrorResponse "Only students can create a dossier"
// @Failure 409 {object} dto.ErrorResponse "Dossier already exists for this year"
// @Router /applications [post]
func (c *ApplicationController) Create(ctx *gin.Context) {
	actor, ok := actorOrAbort(ctx)
	if !ok {
		return
	}
	var req dto.CreateApplicationRequest
	if !bindJSON(ctx, &req) {
		return
	}

	app, err := c.applicationService.Create(ctx.Request.Context(), actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(app))
}

// List godoc
// @Summary List dossiers
// @Description Students see their own dossiers, major heads the ones assigned to them, the international office every dossier
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status filter"
// @Param majorId query string false "Major filter"
// @Param academicYearId query string false "Academic year filter"
// @Param search query string false "Student, university or city"
// @Param sort query string false "updated_desc, created_desc, created_asc or name_asc"
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.ApplicationListResponse}
// @Router /applications [get]
func (c *ApplicationController) List(ctx *gin.Context) {
	actor, ok := actorOrAbort(ctx)
	if !ok {
		return
	}
	var req dto.ApplicationFilterRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	list, err := c.applicationService.List(ctx.Request.Context(), actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(list))
}

// Get godoc
// @Summary Get a dossier
// @Description Dossier with timeline, available actions, courses, documents and thread
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Success 200 {object} dto.APIResponse{data=dto.ApplicationDetailResponse}
// @Failure 403 {object} dto.ErrorResponse "Not a party of this dossier"
// @Failure 404 {object} dto.ErrorResponse "Dossier not found"
// @Router /applications/{id} [get]
func (c *ApplicationController) Get(ctx *gin.Context) {
	actor, ok := actorOrAbort(ctx)
	if !ok {
		return
	}
	id, ok := uuidParam(ctx, "id")
	if !ok {
		return
	}

	detail, err := c.applicationService.Get(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(detail))
}

type plainTransition func(ctx context.Context, actor workflow.Actor, id uuid.UUID) (*dto.ApplicationResponse, error)

type reasonTransition func(ctx context.Context, actor workflow.Actor, id uuid.UUID, reason string) (*dto.ApplicationResponse, error)

func (c *ApplicationController) runTransition(ctx *gin.Context, action workflow.Action, fn plainTransition) {
	actor, ok := actorOrAbort(ctx)
	if !ok {
		return
	}
	id, ok := uuidParam(ctx, "id")
	if !ok {
		return
	}

	app, err := fn(ctx.Request.Context(), actor, id)
	if err != nil {
		c.logger.Debug().Err(err).Str("action", string(action)).Str("applicationID", id.String()).Msg("Transition refused")
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(app))
}

func (c *ApplicationController) runReasonTransition(ctx *gin.Context, action workflow.Action, fn reasonTransition) {
	actor, ok := actorOrAbort(ctx)
	if !ok {
		return
	}
	id, ok := uuidParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.ReasonRequest
	if !bindJSON(ctx, &req) {
		return
	}

	app, err := fn(ctx.Request.Context(), actor, id, req.Reason)
	if err != nil {
		c.logger.Debug().Err(err).Str("action", string(action)).Str("applicationID", id.String()).Msg("Transition refused")
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(app))
}

// Submit godoc
// @Summary Submit a dossier
// @Description Draft or revision to submitted. At least one document is required.
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Success 200 {object} dto.APIResponse{data=dto.ApplicationResponse}
// @Failure 400 {object} dto.ErrorResponse "No document attached"
// @Failure 409 {object} dto.ErrorResponse "Not allowed in the current status"
// @Router /applications/{id}/submit [post]
func (c *ApplicationController) Submit(ctx *gin.Context) {
	c.runTransition(ctx, workflow.ActionSubmit, c.applicationService.Submit)
}

// ValidateMajor godoc
// @Summary First-tier validation
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Success 200 {object} dto.APIResponse{data=dto.ApplicationResponse}
// @Failure 403 {object} dto.ErrorResponse "Not the assigned major head"
// @Failure 409 {object} dto.ErrorResponse "Not allowed in the current status"
// @Router /applications/{id}/validate-major [post]
func (c *ApplicationController) ValidateMajor(ctx *gin.Context) {
	c.runTransition(ctx, workflow.ActionValidateMajor, c.applicationService.ValidateMajor)
}

// RequestRevision godoc
// @Summary Send a dossier back to the student
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Param request body dto.ReasonRequest true "Reason"
// @Success 200 {object} dto.APIResponse{data=dto.ApplicationResponse}
// @Failure 400 {object} dto.ErrorResponse "Reason missing"
// @Failure 409 {object} dto.ErrorResponse "Not allowed in the current status"
// @Failure 500 {object} dto.ErrorResponse "Reason stored but status not updated"
// @Router /applications/{id}/request-revision [post]
func (c *ApplicationController) RequestRevision(ctx *gin.Context) {
	c.runReasonTransition(ctx, workflow.ActionRequestRevision, c.applicationService.RequestRevision)
}

// ValidateFinal godoc
// @Summary Final validation by the international office
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Success 200 {object} dto.APIResponse{data=dto.ApplicationResponse}
// @Failure 409 {object} dto.ErrorResponse "Not allowed in the current status"
// @Router /applications/{id}/validate-final [post]
func (c *ApplicationController) ValidateFinal(ctx *gin.Context) {
	c.runTransition(ctx, workflow.ActionValidateFinal, c.applicationService.ValidateFinal)
}

// Reject godoc
// @Summary Reject a dossier
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Param request body dto.ReasonRequest true "Reason"
// @Success 200 {object} dto.APIResponse{data=dto.ApplicationResponse}
// @Failure 400 {object} dto.ErrorResponse "Reason missing"
// @Failure 409 {object} dto.ErrorResponse "Not allowed in the current status"
// @Failure 500 {object} dto.ErrorResponse "Reason stored but status not updated"
// @Router /applications/{id}/reject [post]
func (c *ApplicationController) Reject(ctx *gin.Context) {
	c.runReasonTransition(ctx, workflow.ActionReject, c.applicationService.Reject)
}
