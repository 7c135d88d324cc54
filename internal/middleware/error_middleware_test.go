package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/mobility/internal/app/models/dto"
	"github.com/yigit/mobility/internal/pkg/apperrors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	return resp
}

func serveError(err error) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/x", nil)
	HandleAPIError(c, err)
	return w
}

func TestHandleAPIError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   dto.ErrorCode
	}{
		{"invalid transition", apperrors.NewCustomError(apperrors.ErrInvalidTransition, "cannot submit").WithCode("submit"), http.StatusConflict, dto.ErrorCodeInvalidTransition},
		{"duplicate dossier", apperrors.ErrDuplicateApplication, http.StatusConflict, dto.ErrorCodeDuplicateDossier},
		{"no current year", apperrors.ErrNoCurrentAcademicYear, http.StatusConflict, dto.ErrorCodeNoCurrentYear},
		{"not a pdf", apperrors.ErrUnsupportedFileType, http.StatusBadRequest, dto.ErrorCodeUnsupportedFileType},
		{"too large", apperrors.ErrFileTooLarge, http.StatusRequestEntityTooLarge, dto.ErrorCodeFileTooLarge},
		{"not found", apperrors.NewResourceNotFoundError("course not found"), http.StatusNotFound, dto.ErrorCodeResourceNotFound},
		{"forbidden", apperrors.NewForbiddenError("not your dossier"), http.StatusForbidden, dto.ErrorCodeForbidden},
		{"credentials", apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials},
		{"validation", apperrors.NewValidationError("a reason is required"), http.StatusBadRequest, dto.ErrorCodeValidationFailed},
		{"email taken", fmt.Errorf("register: %w", apperrors.ErrEmailAlreadyExists), http.StatusConflict, dto.ErrorCodeResourceAlreadyExists},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError, dto.ErrorCodeInternalServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serveError(tt.err)
			assert.Equal(t, tt.status, w.Code)
			resp := decodeError(t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestHandleAPIErrorUsesCustomMessageAndCode(t *testing.T) {
	err := apperrors.NewCustomError(apperrors.ErrInvalidTransition, `cannot submit an application in status "validated_final"`).WithCode("submit")

	resp := decodeError(t, serveError(err))
	assert.Equal(t, `cannot submit an application in status "validated_final"`, resp.Error.Message)
	assert.Equal(t, "submit", resp.Error.Field)
}

func TestHandleAPIErrorPartialFailureWinsOverCause(t *testing.T) {
	// the cause is a not-found, the partial failure must still surface as a 500
	err := apperrors.NewPartialFailureError("update_status", apperrors.ErrResourceNotFound)

	w := serveError(err)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, dto.ErrorCodePartialFailure, resp.Error.Code)
	assert.Equal(t, "update_status", resp.Error.Field)
}
