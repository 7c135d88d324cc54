package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/mobility/internal/app/models"
	"github.com/yigit/mobility/internal/app/workflow"
	"github.com/yigit/mobility/internal/pkg/apperrors"
	"github.com/yigit/mobility/internal/pkg/validation"
)

var pdfBody = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")

func (f *fixture) fileService() FileService {
	return NewFileService(f.files, f.storage, f.authz, validation.NewFilePolicy(0), 0, testLogger)
}

func pdfUpload(name string) Upload {
	return Upload{
		FileName:    name,
		ContentType: "application/pdf",
		Size:        int64(len(pdfBody)),
		Content:     bytes.NewReader(pdfBody),
	}
}

func TestFileService_Upload(t *testing.T) {
	f := newFixture()
	app := f.addApplication(models.StatusDraft)

	resp, err := f.fileService().Upload(context.Background(), actorOf(f.student), app.ID, pdfUpload("my agreement.pdf"))
	require.NoError(t, err)
	assert.Equal(t, workflow.LaneStudent, resp.Lane)
	assert.Equal(t, "my agreement.pdf", resp.FileName)

	stored := f.files.files[resp.ID]
	require.NotNil(t, stored)
	assert.True(t, strings.HasPrefix(stored.FilePath, app.ID.String()+"/"))
	assert.True(t, strings.HasSuffix(stored.FilePath, "_my_agreement.pdf"))
	assert.Equal(t, pdfBody, f.storage.blobs[stored.FilePath])
}

func TestFileService_Upload_RejectedBeforeAnyIO(t *testing.T) {
	cases := map[string]struct {
		upload Upload
		target error
	}{
		"not a pdf": {
			upload: Upload{FileName: "a.png", ContentType: "image/png", Size: 10, Content: strings.NewReader("x")},
			target: apperrors.ErrUnsupportedFileType,
		},
		"too large": {
			upload: Upload{FileName: "a.pdf", ContentType: "application/pdf", Size: validation.MaxFileSize + 1, Content: bytes.NewReader(pdfBody)},
			target: apperrors.ErrFileTooLarge,
		},
		"renamed file": {
			upload: Upload{FileName: "a.pdf", ContentType: "application/pdf", Size: 11, Content: strings.NewReader("hello world")},
			target: apperrors.ErrUnsupportedFileType,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture()
			app := f.addApplication(models.StatusDraft)

			_, err := f.fileService().Upload(context.Background(), actorOf(f.student), app.ID, tc.upload)
			assert.ErrorIs(t, err, tc.target)
			assert.Zero(t, f.applications.getCalls)
			assert.Empty(t, f.storage.blobs)
			assert.Empty(t, f.files.files)
		})
	}
}

func TestFileService_Upload_NotEditable(t *testing.T) {
	f := newFixture()
	app := f.addApplication(models.StatusSubmitted)

	_, err := f.fileService().Upload(context.Background(), actorOf(f.student), app.ID, pdfUpload("late.pdf"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
	assert.Empty(t, f.storage.blobs)
}

func TestFileService_Upload_RowFailureKeepsBlob(t *testing.T) {
	f := newFixture()
	app := f.addApplication(models.StatusDraft)
	f.files.createErr = errors.New("insert failed")

	_, err := f.fileService().Upload(context.Background(), actorOf(f.student), app.ID, pdfUpload("a.pdf"))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrPartialFailure)

	var ce *apperrors.CustomError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, StepInsertRow, ce.Code)
	assert.Len(t, f.storage.blobs, 1)
}

func TestFileService_Delete(t *testing.T) {
	t.Run("uploader deletes blob then row", func(t *testing.T) {
		f := newFixture()
		app := f.addApplication(models.StatusRevision)
		file := f.addFile(app, f.student)

		require.NoError(t, f.fileService().Delete(context.Background(), actorOf(f.student), app.ID, file.ID))
		assert.Empty(t, f.files.files)
		assert.Empty(t, f.storage.blobs)
	})

	t.Run("only the uploader", func(t *testing.T) {
		f := newFixture()
		app := f.addApplication(models.StatusDraft)
		file := f.addFile(app, f.international)

		err := f.fileService().Delete(context.Background(), actorOf(f.student), app.ID, file.ID)
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
		assert.Len(t, f.files.files, 1)
		assert.Len(t, f.storage.blobs, 1)
	})

	t.Run("not while under review", func(t *testing.T) {
		f := newFixture()
		app := f.addApplication(models.StatusSubmitted)
		file := f.addFile(app, f.student)

		err := f.fileService().Delete(context.Background(), actorOf(f.student), app.ID, file.ID)
		assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
		assert.Len(t, f.storage.blobs, 1)
	})

	t.Run("blob failure leaves everything", func(t *testing.T) {
		f := newFixture()
		app := f.addApplication(models.StatusDraft)
		file := f.addFile(app, f.student)
		f.storage.deleteErr = errors.New("bucket unavailable")

		err := f.fileService().Delete(context.Background(), actorOf(f.student), app.ID, file.ID)
		require.Error(t, err)
		assert.Contains(t, err.Error(), StepDeleteBlob)
		assert.Len(t, f.files.files, 1)
	})

	t.Run("row failure after blob removal", func(t *testing.T) {
		f := newFixture()
		app := f.addApplication(models.StatusDraft)
		file := f.addFile(app, f.student)
		f.files.deleteErr = errors.New("delete failed")

		err := f.fileService().Delete(context.Background(), actorOf(f.student), app.ID, file.ID)
		assert.ErrorIs(t, err, apperrors.ErrPartialFailure)
		assert.Empty(t, f.storage.blobs)
		assert.Len(t, f.files.files, 1)
	})

	t.Run("file of another dossier", func(t *testing.T) {
		f := newFixture()
		app := f.addApplication(models.StatusDraft)
		file := f.addFile(app, f.student)

		err := f.fileService().Delete(context.Background(), actorOf(f.student), uuid.New(), file.ID)
		assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
	})
}

func TestFileService_DownloadURLAndList(t *testing.T) {
	f := newFixture()
	app := f.addApplication(models.StatusValidatedFinal)
	file := f.addFile(app, f.head)
	svc := f.fileService()

	url, err := svc.DownloadURL(context.Background(), actorOf(f.international), app.ID, file.ID)
	require.NoError(t, err)
	assert.Contains(t, url.URL, file.FilePath)
	assert.Equal(t, int64(60), url.ExpiresIn)

	_, err = svc.DownloadURL(context.Background(), actorOf(f.otherStudent), app.ID, file.ID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	files, err := svc.List(context.Background(), actorOf(f.student), app.ID)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, workflow.LaneMajorHead, files[0].Lane)
}
