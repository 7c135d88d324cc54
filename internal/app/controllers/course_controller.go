package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/mobility/internal/app/models/dto"
	"github.com/yigit/mobility/internal/app/services"
	"github.com/yigit/mobility/internal/middleware"
)

// CourseController handles the course lines of a dossier
type CourseController struct {
	courseService services.CourseService
}

// NewCourseController creates a new CourseController
func NewCourseController(courseService services.CourseService) *CourseController {
	return &CourseController{courseService: courseService}
}

// List godoc
// @Summary List course lines
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Success 200 {object} dto.APIResponse{data=[]models.Course}
// @Router /applications/{id}/courses [get]
func (c *CourseController) List(ctx *gin.Context) {
	actor, ok := actorOrAbort(ctx)
	if !ok {
		return
	}
	appID, ok := uuidParam(ctx, "id")
	if !ok {
		return
	}
	courses, err := c.courseService.List(ctx.Request.Context(), actor, appID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(courses))
}

// Add godoc
// @Summary Add a course line
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Param request body dto.CreateCourseRequest true "Course"
// @Success 201 {object} dto.APIResponse{data=models.Course}
// @Failure 400 {object} dto.ErrorResponse "Invalid course"
// @Failure 409 {object} dto.ErrorResponse "Dossier not editable"
// @Router /applications/{id}/courses [post]
func (c *CourseController) Add(ctx *gin.Context) {
	actor, ok := actorOrAbort(ctx)
	if !ok {
		return
	}
	appID, ok := uuidParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.CreateCourseRequest
	if !bindJSON(ctx, &req) {
		return
	}

	course, err := c.courseService.Add(ctx.Request.Context(), actor, appID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(course))
}

// Delete godoc
// @Summary Delete a course line
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Param courseId path string true "Course ID"
// @Success 200 {object} dto.APIResponse
// @Failure 400 {object} dto.ErrorResponse "Validated course"
// @Failure 409 {object} dto.ErrorResponse "Dossier not editable"
// @Router /applications/{id}/courses/{courseId} [delete]
func (c *CourseController) Delete(ctx *gin.Context) {
	actor, ok := actorOrAbort(ctx)
	if !ok {
		return
	}
	appID, ok := uuidParam(ctx, "id")
	if !ok {
		return
	}
	courseID, ok := uuidParam(ctx, "courseId")
	if !ok {
		return
	}

	if err := c.courseService.Delete(ctx.Request.Context(), actor, appID, courseID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Course deleted"))
}

// Review godoc
// @Summary Review a course line
// @Description Major head marks a line validated, refused (with reason) or pending again
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Param courseId path string true "Course ID"
// @Param request body dto.ReviewCourseRequest true "Decision"
// @Success 200 {object} dto.APIResponse{data=models.Course}
// @Failure 400 {object} dto.ErrorResponse "Reason missing"
// @Failure 409 {object} dto.ErrorResponse "Dossier not under review"
// @Router /applications/{id}/courses/{courseId}/review [put]
func (c *CourseController) Review(ctx *gin.Context) {
	actor, ok := actorOrAbort(ctx)
	if !ok {
		return
	}
	appID, ok := uuidParam(ctx, "id")
	if !ok {
		return
	}
	courseID, ok := uuidParam(ctx, "courseId")
	if !ok {
		return
	}
	var req dto.ReviewCourseRequest
	if !bindJSON(ctx, &req) {
		return
	}

	course, err := c.courseService.Review(ctx.Request.Context(), actor, appID, courseID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(course))
}
