package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/mobility/internal/app/models"
)

// IFileRepository defines document metadata persistence
type IFileRepository interface {
	Create(ctx context.Context, file *models.File) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.File, error)
	ListByApplication(ctx context.Context, applicationID uuid.UUID) ([]*models.File, error)
	CountByApplication(ctx context.Context, applicationID uuid.UUID) (int, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// FileRepository handles database operations for files
type FileRepository struct {
	db *pgxpool.Pool
}

// NewFileRepository creates a new FileRepository
func NewFileRepository(db *pgxpool.Pool) *FileRepository {
	return &FileRepository{db: db}
}

const fileColumns = "id, application_id, uploader_id, file_name, file_path, file_size, created_at"

func scanFile(row rowScanner) (*models.File, error) {
	var f models.File
	err := row.Scan(&f.ID, &f.ApplicationID, &f.UploaderID, &f.FileName, &f.FilePath, &f.FileSize, &f.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// GetByID retrieves a file by ID
func (r *FileRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.File, error) {
	f, err := scanFile(r.db.QueryRow(ctx, "SELECT "+fileColumns+" FROM files WHERE id = $1", id))
	if err != nil {
		return nil, notFound(err, "file")
	}
	return f, nil
}

// Create records an uploaded document
func (r *FileRepository) Create(ctx context.Context, file *models.File) error {
	query := `
		INSERT INTO files (application_id, uploader_id, file_name, file_path, file_size)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query,
		file.ApplicationID,
		file.UploaderID,
		file.FileName,
		file.FilePath,
		file.FileSize,
	).Scan(&file.ID, &file.CreatedAt)
	if err != nil {
		return fmt.Errorf("error creating file: %w", err)
	}
	return nil
}

// ListByApplication lists the documents of a dossier, newest first
func (r *FileRepository) ListByApplication(ctx context.Context, applicationID uuid.UUID) ([]*models.File, error) {
	rows, err := r.db.Query(ctx,
		"SELECT "+fileColumns+" FROM files WHERE application_id = $1 ORDER BY created_at DESC, id",
		applicationID)
	if err != nil {
		return nil, fmt.Errorf("error listing files: %w", err)
	}
	defer rows.Close()

	files := make([]*models.File, 0)
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning file: %w", err)
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// CountByApplication counts the documents attached to a dossier
func (r *FileRepository) CountByApplication(ctx context.Context, applicationID uuid.UUID) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM files WHERE application_id = $1`, applicationID).Scan(&n); err != nil {
		return 0, fmt.Errorf("error counting files: %w", err)
	}
	return n, nil
}

// Delete deletes a file record
func (r *FileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM files WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting file: %w", err)
	}
	if result.RowsAffected() == 0 {
		return notFoundErr("file")
	}
	return nil
}
