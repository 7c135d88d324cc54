package controllers

import (
	"errors"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/mobility/internal/app/models/dto"
	"github.com/yigit/mobility/internal/app/services"
	"github.com/yigit/mobility/internal/middleware"
	"github.com/yigit/mobility/internal/pkg/filestorage"
)

// FileController handles dossier documents
type FileController struct {
	fileService services.FileService
	logger      zerolog.Logger
}

// NewFileController creates a new FileController
func NewFileController(fileService services.FileService, logger zerolog.Logger) *FileController {
	return &FileController{
		fileService: fileService,
		logger:      logger,
	}
}

// List godoc
// @Summary List documents
// @Description Newest first, each tagged with the lane of its uploader
// @Tags files
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.FileResponse}
// @Router /applications/{id}/files [get]
func (c *FileController) List(ctx *gin.Context) {
	actor, ok := actorOrAbort(ctx)
	if !ok {
		return
	}
	appID, ok := uuidParam(ctx, "id")
	if !ok {
		return
	}
	files, err := c.fileService.List(ctx.Request.Context(), actor, appID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(files))
}

// Upload godoc
// @Summary Upload a document
// @Description PDF only, 10 MB at most. Allowed while the dossier is a draft or in revision.
// @Tags files
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Param file formData file true "PDF document"
// @Success 201 {object} dto.APIResponse{data=dto.FileResponse}
// @Failure 400 {object} dto.ErrorResponse "Not a PDF"
// @Failure 409 {object} dto.ErrorResponse "Dossier not editable"
// @Failure 413 {object} dto.ErrorResponse "File too large"
// @Failure 500 {object} dto.ErrorResponse "Stored but not recorded"
// @Router /applications/{id}/files [post]
func (c *FileController) Upload(ctx *gin.Context) {
	actor, ok := actorOrAbort(ctx)
	if !ok {
		return
	}
	appID, ok := uuidParam(ctx, "id")
	if !ok {
		return
	}

	header, err := ctx.FormFile("file")
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeBadRequest, "Invalid or missing file").WithField("file")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}
	src, err := header.Open()
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to open uploaded file")
		middleware.HandleAPIError(ctx, err)
		return
	}
	defer src.Close()

	resp, err := c.fileService.Upload(ctx.Request.Context(), actor, appID, services.Upload{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Content:     src,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(resp))
}

// Delete godoc
// @Summary Delete a document
// @Description Only the uploader, only while the dossier is editable
// @Tags files
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Param fileId path string true "File ID"
// @Success 200 {object} dto.APIResponse
// @Failure 403 {object} dto.ErrorResponse "Not the uploader"
// @Failure 409 {object} dto.ErrorResponse "Dossier not editable"
// @Router /applications/{id}/files/{fileId} [delete]
func (c *FileController) Delete(ctx *gin.Context) {
	actor, ok := actorOrAbort(ctx)
	if !ok {
		return
	}
	appID, ok := uuidParam(ctx, "id")
	if !ok {
		return
	}
	fileID, ok := uuidParam(ctx, "fileId")
	if !ok {
		return
	}

	if err := c.fileService.Delete(ctx.Request.Context(), actor, appID, fileID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewMessageResponse("File deleted"))
}

// DownloadURL godoc
// @Summary Signed download link
// @Tags files
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Param fileId path string true "File ID"
// @Success 200 {object} dto.APIResponse{data=dto.FileURLResponse}
// @Router /applications/{id}/files/{fileId}/url [get]
func (c *FileController) DownloadURL(ctx *gin.Context) {
	actor, ok := actorOrAbort(ctx)
	if !ok {
		return
	}
	appID, ok := uuidParam(ctx, "id")
	if !ok {
		return
	}
	fileID, ok := uuidParam(ctx, "fileId")
	if !ok {
		return
	}

	url, err := c.fileService.DownloadURL(ctx.Request.Context(), actor, appID, fileID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(url))
}

// BlobController serves signed links of the local storage driver
type BlobController struct {
	storage *filestorage.LocalStorage
	logger  zerolog.Logger
}

// NewBlobController creates a new BlobController
func NewBlobController(storage *filestorage.LocalStorage, logger zerolog.Logger) *BlobController {
	return &BlobController{storage: storage, logger: logger}
}

// Download godoc
// @Summary Download a stored document
// @Description Target of the links returned by the url endpoint when the local driver is used
// @Tags files
// @Produce application/pdf
// @Param key path string true "Storage key"
// @Param expires query int true "Expiry (unix seconds)"
// @Param signature query string true "Link signature"
// @Success 200 {file} binary
// @Failure 403 {object} dto.ErrorResponse "Invalid or expired link"
// @Failure 404 {object} dto.ErrorResponse "Blob not found"
// @Router /blobs/{key} [get]
func (c *BlobController) Download(ctx *gin.Context) {
	key := strings.TrimPrefix(ctx.Param("key"), "/")
	if err := c.storage.Verify(key, ctx.Query("expires"), ctx.Query("signature")); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeForbidden, "Invalid or expired link")
		ctx.JSON(http.StatusForbidden, dto.NewErrorResponse(errorDetail))
		return
	}

	f, err := c.storage.Open(key)
	if err != nil {
		if errors.Is(err, filestorage.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, dto.NewErrorResponse(
				dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, "File not found"),
			))
			return
		}
		c.logger.Error().Err(err).Str("key", key).Msg("Failed to open blob")
		middleware.HandleAPIError(ctx, err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Header("Content-Disposition", `inline; filename="`+path.Base(key)+`"`)
	ctx.DataFromReader(http.StatusOK, info.Size(), "application/pdf", f, nil)
}
