package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/mobility/internal/app/models"
	"github.com/yigit/mobility/internal/pkg/apperrors"
	"github.com/yigit/mobility/internal/pkg/dberrors"
)

// ProfileEmailKey is the unique constraint on profiles.email
const ProfileEmailKey = "profiles_email_key"

// IProfileRepository defines profile persistence
type IProfileRepository interface {
	Create(ctx context.Context, profile *models.Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	GetByEmail(ctx context.Context, email string) (*models.Profile, error)
	ListByRole(ctx context.Context, role models.RoleType, majorID *uuid.UUID) ([]*models.Profile, error)
}

// ProfileRepository handles database operations for profiles
type ProfileRepository struct {
	db *pgxpool.Pool
}

// NewProfileRepository creates a new ProfileRepository
func NewProfileRepository(db *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{db: db}
}

const profileColumns = "id, email, password_hash, full_name, role, major_id, created_at"

func scanProfile(row rowScanner) (*models.Profile, error) {
	var p models.Profile
	err := row.Scan(&p.ID, &p.Email, &p.Password, &p.FullName, &p.Role, &p.MajorID, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a profile; the email is stored lower-cased
func (r *ProfileRepository) Create(ctx context.Context, profile *models.Profile) error {
	query := `
		INSERT INTO profiles (email, password_hash, full_name, role, major_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	profile.Email = strings.ToLower(strings.TrimSpace(profile.Email))
	err := r.db.QueryRow(ctx, query,
		profile.Email,
		profile.Password,
		profile.FullName,
		profile.Role,
		profile.MajorID,
	).Scan(&profile.ID, &profile.CreatedAt)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, ProfileEmailKey) {
			return apperrors.ErrEmailAlreadyExists
		}
		return fmt.Errorf("error creating profile: %w", err)
	}
	return nil
}

// GetByID retrieves a profile by ID
func (r *ProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	p, err := scanProfile(r.db.QueryRow(ctx, "SELECT "+profileColumns+" FROM profiles WHERE id = $1", id))
	if err != nil {
		return nil, notFound(err, "profile")
	}
	return p, nil
}

// GetByEmail retrieves a profile by email, ignoring case
func (r *ProfileRepository) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	p, err := scanProfile(r.db.QueryRow(ctx,
		"SELECT "+profileColumns+" FROM profiles WHERE email = $1",
		strings.ToLower(strings.TrimSpace(email))))
	if err != nil {
		return nil, notFound(err, "profile")
	}
	return p, nil
}

// ListByRole lists the profiles of a role ordered by name, optionally restricted to a major
func (r *ProfileRepository) ListByRole(ctx context.Context, role models.RoleType, majorID *uuid.UUID) ([]*models.Profile, error) {
	qb := psql.Select(profileColumns).
		From("profiles").
		Where(squirrel.Eq{"role": role}).
		OrderBy("full_name ASC")
	if majorID != nil {
		qb = qb.Where(squirrel.Eq{"major_id": *majorID})
	}

	sql, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing profiles: %w", err)
	}
	defer rows.Close()

	var profiles []*models.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}
