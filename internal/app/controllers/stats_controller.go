package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/mobility/internal/app/models/dto"
	"github.com/yigit/mobility/internal/app/services"
	"github.com/yigit/mobility/internal/middleware"
)

// StatsController serves the international overview
type StatsController struct {
	statsService services.StatsService
}

// NewStatsController creates a new StatsController
func NewStatsController(statsService services.StatsService) *StatsController {
	return &StatsController{statsService: statsService}
}

// Get godoc
// @Summary International statistics
// @Tags stats
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.StatsResponse}
// @Failure 403 {object} dto.ErrorResponse "International office only"
// @Router /stats [get]
func (c *StatsController) Get(ctx *gin.Context) {
	stats, err := c.statsService.Get(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(stats))
}
