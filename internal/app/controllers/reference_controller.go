package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yigit/mobility/internal/app/models/dto"
	"github.com/yigit/mobility/internal/app/services"
	"github.com/yigit/mobility/internal/middleware"
)

// ReferenceController serves majors, academic years and major heads
type ReferenceController struct {
	referenceService services.ReferenceService
}

// NewReferenceController creates a new ReferenceController
func NewReferenceController(referenceService services.ReferenceService) *ReferenceController {
	return &ReferenceController{referenceService: referenceService}
}

// ListMajors godoc
// @Summary List majors
// @Tags reference
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]models.Major}
// @Router /majors [get]
func (c *ReferenceController) ListMajors(ctx *gin.Context) {
	majors, err := c.referenceService.ListMajors(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(majors))
}

// CurrentAcademicYear godoc
// @Summary Current academic year
// @Tags reference
// @Produce json
// @Success 200 {object} dto.APIResponse{data=models.AcademicYear}
// @Failure 409 {object} dto.ErrorResponse "No current academic year"
// @Router /academic-years/current [get]
func (c *ReferenceController) CurrentAcademicYear(ctx *gin.Context) {
	year, err := c.referenceService.CurrentAcademicYear(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(year))
}

// ListMajorHeads godoc
// @Summary List major heads
// @Description Optionally restricted to one major
// @Tags reference
// @Produce json
// @Security BearerAuth
// @Param majorId query string false "Major ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.ProfileResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid majorId"
// @Router /major-heads [get]
func (c *ReferenceController) ListMajorHeads(ctx *gin.Context) {
	var majorID *uuid.UUID
	if raw := ctx.Query("majorId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeBadRequest, "Invalid majorId").WithField("majorId")
			ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
			return
		}
		majorID = &id
	}

	heads, err := c.referenceService.ListMajorHeads(ctx.Request.Context(), majorID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(heads))
}
