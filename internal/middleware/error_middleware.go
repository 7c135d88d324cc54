package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/yigit/mobility/internal/app/models/dto"
	"github.com/yigit/mobility/internal/pkg/apperrors"
)

// apiError maps a sentinel to its HTTP status and code
type apiError struct {
	target   error
	status   int
	code     dto.ErrorCode
	fallback string
}

// order matters: partial failures wrap their cause, so they are matched first
var apiErrors = []apiError{
	{apperrors.ErrPartialFailure, http.StatusInternalServerError, dto.ErrorCodePartialFailure, "Operation partially applied"},
	{apperrors.ErrInvalidTransition, http.StatusConflict, dto.ErrorCodeInvalidTransition, "Action not allowed in the current status"},
	{apperrors.ErrDuplicateApplication, http.StatusConflict, dto.ErrorCodeDuplicateDossier, "Vous avez déjà un dossier pour cette année"},
	{apperrors.ErrNoCurrentAcademicYear, http.StatusConflict, dto.ErrorCodeNoCurrentYear, "No current academic year is configured"},
	{apperrors.ErrUnsupportedFileType, http.StatusBadRequest, dto.ErrorCodeUnsupportedFileType, "Only PDF files are accepted"},
	{apperrors.ErrFileTooLarge, http.StatusRequestEntityTooLarge, dto.ErrorCodeFileTooLarge, "File too large"},
	{apperrors.ErrResourceNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found"},
	{apperrors.ErrUserNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "User not found"},
	{apperrors.ErrPermissionDenied, http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied"},
	{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid credentials"},
	{apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired"},
	{apperrors.ErrTokenInvalid, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token"},
	{apperrors.ErrInvalidEmail, http.StatusBadRequest, dto.ErrorCodeInvalidEmail, "Invalid email"},
	{apperrors.ErrValidationFailed, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Validation failed"},
	{apperrors.ErrBadRequest, http.StatusBadRequest, dto.ErrorCodeBadRequest, "Bad request"},
	{apperrors.ErrEmailAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Email already exists"},
	{apperrors.ErrResourceAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Resource already exists"},
	{apperrors.ErrConflict, http.StatusConflict, dto.ErrorCodeConflict, "Conflict"},
}

// HandleAPIError handles common API errors and returns appropriate responses
func HandleAPIError(c *gin.Context, err error) {
	for _, e := range apiErrors {
		if !errors.Is(err, e.target) {
			continue
		}

		message := e.fallback
		if msg, ok := apperrors.UserMessage(err); ok {
			message = msg
		}
		detail := dto.NewErrorDetail(e.code, message)

		var ce *apperrors.CustomError
		if errors.As(err, &ce) && ce.Code != "" {
			detail = detail.WithField(ce.Code)
		}
		if e.status >= http.StatusInternalServerError {
			log.Error().Err(err).Str("path", c.FullPath()).Msg("Request partially applied")
		}

		c.JSON(e.status, dto.NewErrorResponse(detail))
		return
	}

	log.Error().Err(err).Str("method", c.Request.Method).Str("path", c.FullPath()).Msg("Unhandled error")
	c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(
		dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error"),
	))
}
