package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/mobility/internal/app/controllers"
	"github.com/yigit/mobility/internal/app/models"
	"github.com/yigit/mobility/internal/app/models/dto"
	"github.com/yigit/mobility/internal/middleware"
)

// Controllers groups every HTTP handler set
type Controllers struct {
	Auth         *controllers.AuthController
	Reference    *controllers.ReferenceController
	Application  *controllers.ApplicationController
	Course       *controllers.CourseController
	File         *controllers.FileController
	Message      *controllers.MessageController
	Notification *controllers.NotificationController
	Stats        *controllers.StatsController
	Webhook      *controllers.WebhookController
	// Blob is nil unless the local storage driver is used
	Blob *controllers.BlobController
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, c *Controllers, authMiddleware *middleware.AuthMiddleware, health gin.HandlerFunc) {
	router.GET("/health", health)

	v1 := router.Group("/api/v1")

	// --- Public routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register", c.Auth.Register)
		auth.POST("/login", c.Auth.Login)
	}
	v1.GET("/majors", c.Reference.ListMajors)
	v1.GET("/academic-years/current", c.Reference.CurrentAcademicYear)

	// signed links carry their own authorization
	if c.Blob != nil {
		v1.GET("/blobs/*key", c.Blob.Download)
	}

	// --- Authenticated routes ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		authenticated.GET("/auth/me", c.Auth.Me)
		authenticated.GET("/major-heads", c.Reference.ListMajorHeads)

		applications := authenticated.Group("/applications")
		{
			applications.POST("", authMiddleware.RoleRequired(models.RoleStudent), c.Application.Create)
			applications.GET("", c.Application.List)
			applications.GET("/:id", c.Application.Get)

			applications.POST("/:id/submit", c.Application.Submit)
			applications.POST("/:id/validate-major", c.Application.ValidateMajor)
			applications.POST("/:id/request-revision", c.Application.RequestRevision)
			applications.POST("/:id/validate-final", c.Application.ValidateFinal)
			applications.POST("/:id/reject", c.Application.Reject)

			applications.GET("/:id/files", c.File.List)
			applications.POST("/:id/files", c.File.Upload)
			applications.DELETE("/:id/files/:fileId", c.File.Delete)
			applications.GET("/:id/files/:fileId/url", c.File.DownloadURL)

			applications.GET("/:id/courses", c.Course.List)
			applications.POST("/:id/courses", c.Course.Add)
			applications.DELETE("/:id/courses/:courseId", c.Course.Delete)
			applications.PUT("/:id/courses/:courseId/review", c.Course.Review)

			applications.GET("/:id/messages", c.Message.List)
			applications.POST("/:id/messages", c.Message.Post)
		}

		notifications := authenticated.Group("/notifications")
		{
			notifications.GET("", c.Notification.List)
			notifications.GET("/unread-count", c.Notification.UnreadCount)
			notifications.POST("/read-all", c.Notification.MarkAllRead)
			notifications.POST("/:id/read", c.Notification.MarkRead)
			notifications.DELETE("/:id", c.Notification.Delete)
		}

		authenticated.GET("/stats", authMiddleware.RoleRequired(models.RoleInternational), c.Stats.Get)

		webhooks := authenticated.Group("/webhooks")
		{
			webhooks.POST("", c.Webhook.Trigger)
			webhooks.GET("", c.Webhook.Status)
		}
	}

	router.NoRoute(func(ctx *gin.Context) {
		ctx.JSON(http.StatusNotFound, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, "Route not found"),
		))
	})
}
