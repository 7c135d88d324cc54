package validation

import (
	"fmt"

	"github.com/gabriel-vasile/mimetype"
	"github.com/yigit/mobility/internal/pkg/apperrors"
)

const (
	// PDFContentType is the only content type accepted for dossier documents
	PDFContentType = "application/pdf"
	// MaxFileSize is the upload cap (10 MiB)
	MaxFileSize int64 = 10 * 1024 * 1024
)

// FilePolicy checks an upload before anything is written
type FilePolicy struct {
	MaxSize int64
}

// NewFilePolicy returns a policy with maxSize, or MaxFileSize when maxSize <= 0
func NewFilePolicy(maxSize int64) FilePolicy {
	if maxSize <= 0 {
		maxSize = MaxFileSize
	}
	return FilePolicy{MaxSize: maxSize}
}

// Accept validates the declared content type and size of an upload.
// The content type must be exactly application/pdf, parameters included.
func (p FilePolicy) Accept(contentType string, size int64) error {
	if contentType != PDFContentType {
		return apperrors.NewCustomError(apperrors.ErrUnsupportedFileType, "Seuls les fichiers PDF sont acceptés")
	}
	if size > p.MaxSize {
		return apperrors.NewCustomError(apperrors.ErrFileTooLarge,
			fmt.Sprintf("Le fichier ne doit pas dépasser %d Mo", p.MaxSize/(1024*1024)))
	}
	if size <= 0 {
		return apperrors.NewValidationError("file is empty")
	}
	return nil
}

// SniffPDF checks the leading bytes of an upload so a renamed file cannot pass as a PDF
func SniffPDF(head []byte) error {
	if !mimetype.Detect(head).Is(PDFContentType) {
		return apperrors.NewCustomError(apperrors.ErrUnsupportedFileType, "Seuls les fichiers PDF sont acceptés")
	}
	return nil
}
