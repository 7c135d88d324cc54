package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/mobility/internal/app/auth"
	"github.com/yigit/mobility/internal/app/models"
	"github.com/yigit/mobility/internal/app/models/dto"
	"github.com/yigit/mobility/internal/app/repositories"
	"github.com/yigit/mobility/internal/app/workflow"
	"github.com/yigit/mobility/internal/pkg/apperrors"
	"github.com/yigit/mobility/internal/pkg/filestorage"
	"github.com/yigit/mobility/internal/pkg/validation"
)

// Steps of the upload and delete sequences
const (
	StepWriteBlob  = "write_blob"
	StepInsertRow  = "insert_file_row"
	StepDeleteBlob = "delete_blob"
	StepDeleteRow  = "delete_file_row"
)

const sniffLength = 512

// Upload is an incoming document
type Upload struct {
	FileName    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// FileService defines dossier document operations
type FileService interface {
	List(ctx context.Context, actor workflow.Actor, applicationID uuid.UUID) ([]*dto.FileResponse, error)
	Upload(ctx context.Context, actor workflow.Actor, applicationID uuid.UUID, upload Upload) (*dto.FileResponse, error)
	Delete(ctx context.Context, actor workflow.Actor, applicationID, fileID uuid.UUID) error
	DownloadURL(ctx context.Context, actor workflow.Actor, applicationID, fileID uuid.UUID) (*dto.FileURLResponse, error)
}

// fileServiceImpl implements FileService
type fileServiceImpl struct {
	fileRepo repositories.IFileRepository
	storage  filestorage.BlobStorage
	authz    *auth.AuthorizationService
	policy   validation.FilePolicy
	urlTTL   time.Duration
	now      func() time.Time
	logger   zerolog.Logger
}

// NewFileService creates a new FileService
func NewFileService(
	fileRepo repositories.IFileRepository,
	storage filestorage.BlobStorage,
	authz *auth.AuthorizationService,
	policy validation.FilePolicy,
	urlTTL time.Duration,
	logger zerolog.Logger,
) FileService {
	if urlTTL <= 0 {
		urlTTL = time.Minute
	}
	return &fileServiceImpl{
		fileRepo: fileRepo,
		storage:  storage,
		authz:    authz,
		policy:   policy,
		urlTTL:   urlTTL,
		now:      time.Now,
		logger:   logger,
	}
}

// List returns the documents of a readable dossier
func (s *fileServiceImpl) List(ctx context.Context, actor workflow.Actor, applicationID uuid.UUID) ([]*dto.FileResponse, error) {
	app, err := s.authz.LoadReadable(ctx, applicationID, actor)
	if err != nil {
		return nil, err
	}
	files, err := s.fileRepo.ListByApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.FileResponse, 0, len(files))
	for _, f := range files {
		out = append(out, dto.NewFileResponse(f, app))
	}
	return out, nil
}

// Upload checks type and size before touching storage or the database, writes
// the blob, then records it. A failed record keeps the blob and reports the step.
func (s *fileServiceImpl) Upload(ctx context.Context, actor workflow.Actor, applicationID uuid.UUID, upload Upload) (*dto.FileResponse, error) {
	if err := s.policy.Accept(upload.ContentType, upload.Size); err != nil {
		return nil, err
	}

	head := make([]byte, sniffLength)
	n, err := io.ReadFull(upload.Content, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, fmt.Errorf("error reading upload: %w", err)
	}
	head = head[:n]
	if err := validation.SniffPDF(head); err != nil {
		return nil, err
	}
	content := io.MultiReader(bytes.NewReader(head), upload.Content)

	app, err := s.authz.LoadApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if _, err := workflow.Decide(app, actor, workflow.ActionUploadFile, workflow.Input{}); err != nil {
		return nil, err
	}

	key := filestorage.GenerateKey(app.ID, upload.FileName, s.now())
	log := s.logger.With().
		Str("applicationID", app.ID.String()).
		Str("actorID", actor.ID.String()).
		Str("key", key).
		Logger()

	if err := s.storage.Put(ctx, key, content, upload.Size, upload.ContentType); err != nil {
		log.Error().Err(err).Msg("Failed to store document")
		return nil, fmt.Errorf("%s: %w", StepWriteBlob, err)
	}

	file := &models.File{
		ApplicationID: app.ID,
		UploaderID:    actor.ID,
		FileName:      upload.FileName,
		FilePath:      key,
		FileSize:      upload.Size,
	}
	if err := s.fileRepo.Create(ctx, file); err != nil {
		log.Error().Err(err).Msg("Document stored but its record could not be written")
		return nil, apperrors.NewPartialFailureError(StepInsertRow, err)
	}

	log.Info().Str("fileID", file.ID.String()).Int64("size", file.FileSize).Msg("Document uploaded")
	return dto.NewFileResponse(file, app), nil
}

// loadFile fetches a file and checks it belongs to the dossier
func (s *fileServiceImpl) loadFile(ctx context.Context, applicationID, fileID uuid.UUID) (*models.File, error) {
	file, err := s.fileRepo.GetByID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if file.ApplicationID != applicationID {
		return nil, apperrors.NewResourceNotFoundError("file not found")
	}
	return file, nil
}

// Delete removes the blob, then the row. Only the uploader may delete, and only
// while the dossier is editable.
func (s *fileServiceImpl) Delete(ctx context.Context, actor workflow.Actor, applicationID, fileID uuid.UUID) error {
	app, err := s.authz.LoadApplication(ctx, applicationID)
	if err != nil {
		return err
	}
	file, err := s.loadFile(ctx, applicationID, fileID)
	if err != nil {
		return err
	}
	if _, err := workflow.Decide(app, actor, workflow.ActionDeleteFile, workflow.Input{UploaderID: file.UploaderID}); err != nil {
		return err
	}

	log := s.logger.With().Str("applicationID", app.ID.String()).Str("fileID", file.ID.String()).Logger()

	if err := s.storage.Delete(ctx, file.FilePath); err != nil {
		log.Error().Err(err).Msg("Failed to delete document blob")
		return fmt.Errorf("%s: %w", StepDeleteBlob, err)
	}
	if err := s.fileRepo.Delete(ctx, file.ID); err != nil {
		log.Error().Err(err).Msg("Document blob deleted but its record remains")
		return apperrors.NewPartialFailureError(StepDeleteRow, err)
	}

	log.Info().Msg("Document deleted")
	return nil
}

// DownloadURL signs a short lived link for any party of the dossier
func (s *fileServiceImpl) DownloadURL(ctx context.Context, actor workflow.Actor, applicationID, fileID uuid.UUID) (*dto.FileURLResponse, error) {
	if _, err := s.authz.LoadReadable(ctx, applicationID, actor); err != nil {
		return nil, err
	}
	file, err := s.loadFile(ctx, applicationID, fileID)
	if err != nil {
		return nil, err
	}

	url, err := s.storage.SignedURL(ctx, file.FilePath, s.urlTTL)
	if err != nil {
		return nil, fmt.Errorf("error signing download url: %w", err)
	}
	return &dto.FileURLResponse{URL: url, ExpiresIn: int64(s.urlTTL.Seconds())}, nil
}
