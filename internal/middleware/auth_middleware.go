package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/mobility/internal/app/models"
	"github.com/yigit/mobility/internal/app/models/dto"
	"github.com/yigit/mobility/internal/app/workflow"
	"github.com/yigit/mobility/internal/pkg/auth"
)

// Context keys set by JWTAuth
const (
	ContextUserID   = "userID"
	ContextEmail    = "email"
	ContextRoleType = "roleType"
)

// AuthMiddleware for authentication and authorization
type AuthMiddleware struct {
	jwtService *auth.JWTService
	logger     zerolog.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(jwtService *auth.JWTService, logger zerolog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		logger:     logger,
	}
}

func abortUnauthorized(c *gin.Context, code dto.ErrorCode, details string) {
	errorDetail := dto.NewErrorDetail(code, "Authentication required").WithDetails(details)
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
}

// JWTAuth middleware for JWT token validation
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")

		// Swagger UI sometimes sends the token as a query parameter
		if authHeader == "" {
			authHeader = c.Query("token")
		}
		if authHeader == "" {
			abortUnauthorized(c, dto.ErrorCodeUnauthorized, "Authorization header missing")
			return
		}

		authHeader = strings.Trim(strings.TrimSpace(authHeader), "\"'")
		tokenString, err := auth.ExtractBearerToken(authHeader)
		if err != nil || strings.Count(tokenString, ".") != 2 {
			abortUnauthorized(c, dto.ErrorCodeInvalidToken, "Invalid token format")
			return
		}

		claims, err := m.jwtService.ValidateAndExtractClaims(tokenString)
		if err != nil {
			code, details := dto.ErrorCodeInvalidToken, "Invalid token"
			if errors.Is(err, auth.ErrExpiredToken) {
				code, details = dto.ErrorCodeExpiredToken, "Token has expired"
			}
			m.logger.Debug().Err(err).Str("path", c.FullPath()).Msg("Rejected token")
			abortUnauthorized(c, code, details)
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextEmail, claims.Email)
		c.Set(ContextRoleType, claims.Role)

		c.Next()
	}
}

// RoleRequired lets the request through only for one of roles
func (m *AuthMiddleware) RoleRequired(roles ...models.RoleType) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorFromContext(c)
		if !ok {
			abortUnauthorized(c, dto.ErrorCodeUnauthorized, "User role not found")
			return
		}

		for _, r := range roles {
			if actor.Role == r {
				c.Next()
				return
			}
		}

		errorDetail := dto.NewErrorDetail(dto.ErrorCodeForbidden, "Access denied").
			WithDetails("You don't have sufficient permissions for this operation")
		c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(errorDetail))
	}
}

// ActorFromContext returns the authenticated profile set by JWTAuth
func ActorFromContext(c *gin.Context) (workflow.Actor, bool) {
	rawID, ok := c.Get(ContextUserID)
	if !ok {
		return workflow.Actor{}, false
	}
	id, ok := rawID.(uuid.UUID)
	if !ok {
		return workflow.Actor{}, false
	}
	rawRole, ok := c.Get(ContextRoleType)
	if !ok {
		return workflow.Actor{}, false
	}
	role, ok := rawRole.(models.RoleType)
	if !ok {
		return workflow.Actor{}, false
	}
	return workflow.Actor{ID: id, Role: role}, true
}
