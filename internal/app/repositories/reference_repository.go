package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/mobility/internal/app/models"
	"github.com/yigit/mobility/internal/pkg/apperrors"
)

// IReferenceRepository defines access to majors and academic years
type IReferenceRepository interface {
	ListMajors(ctx context.Context) ([]*models.Major, error)
	GetMajorByID(ctx context.Context, id uuid.UUID) (*models.Major, error)
	GetCurrentAcademicYear(ctx context.Context) (*models.AcademicYear, error)
}

// ReferenceRepository handles majors and academic years
type ReferenceRepository struct {
	db *pgxpool.Pool
}

// NewReferenceRepository creates a new ReferenceRepository
func NewReferenceRepository(db *pgxpool.Pool) *ReferenceRepository {
	return &ReferenceRepository{db: db}
}

// ListMajors returns every major ordered by name
func (r *ReferenceRepository) ListMajors(ctx context.Context) ([]*models.Major, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, code FROM majors ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("error listing majors: %w", err)
	}
	defer rows.Close()

	var majors []*models.Major
	for rows.Next() {
		var m models.Major
		if err := rows.Scan(&m.ID, &m.Name, &m.Code); err != nil {
			return nil, fmt.Errorf("error scanning major: %w", err)
		}
		majors = append(majors, &m)
	}
	return majors, rows.Err()
}

// GetMajorByID retrieves a major
func (r *ReferenceRepository) GetMajorByID(ctx context.Context, id uuid.UUID) (*models.Major, error) {
	var m models.Major
	err := r.db.QueryRow(ctx, `SELECT id, name, code FROM majors WHERE id = $1`, id).Scan(&m.ID, &m.Name, &m.Code)
	if err != nil {
		return nil, notFound(err, "major")
	}
	return &m, nil
}

// GetCurrentAcademicYear returns the year flagged as current
func (r *ReferenceRepository) GetCurrentAcademicYear(ctx context.Context) (*models.AcademicYear, error) {
	var y models.AcademicYear
	err := r.db.QueryRow(ctx,
		`SELECT id, year, is_current FROM academic_years WHERE is_current LIMIT 1`,
	).Scan(&y.ID, &y.Year, &y.IsCurrent)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNoCurrentAcademicYear
		}
		return nil, fmt.Errorf("error retrieving current academic year: %w", err)
	}
	return &y, nil
}

// UpsertMajor inserts a major or returns the existing one with the same code
func (r *ReferenceRepository) UpsertMajor(ctx context.Context, m *models.Major) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO majors (name, code) VALUES ($1, $2)
		ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, m.Name, m.Code).Scan(&m.ID)
	if err != nil {
		return fmt.Errorf("error upserting major %s: %w", m.Code, err)
	}
	return nil
}

// UpsertAcademicYear inserts a year or returns the existing one
func (r *ReferenceRepository) UpsertAcademicYear(ctx context.Context, y *models.AcademicYear) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO academic_years (year, is_current) VALUES ($1, FALSE)
		ON CONFLICT (year) DO UPDATE SET year = EXCLUDED.year
		RETURNING id, is_current
	`, y.Year).Scan(&y.ID, &y.IsCurrent)
	if err != nil {
		return fmt.Errorf("error upserting academic year %s: %w", y.Year, err)
	}
	return nil
}

// SetCurrentAcademicYear moves the current flag to id in one transaction
func (r *ReferenceRepository) SetCurrentAcademicYear(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `UPDATE academic_years SET is_current = FALSE WHERE is_current AND id <> $1`, id); err != nil {
		return fmt.Errorf("error clearing current academic year: %w", err)
	}
	tag, err := tx.Exec(ctx, `UPDATE academic_years SET is_current = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error setting current academic year: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError("academic year not found")
	}
	return tx.Commit(ctx)
}
