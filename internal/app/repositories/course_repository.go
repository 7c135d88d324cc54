package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/mobility/internal/app/models"
)

// ICourseRepository defines course line persistence
type ICourseRepository interface {
	Create(ctx context.Context, course *models.Course) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Course, error)
	ListByApplication(ctx context.Context, applicationID uuid.UUID) ([]*models.Course, error)
	Delete(ctx context.Context, id uuid.UUID) error
	UpdateValidation(ctx context.Context, id uuid.UUID, isValidated *bool, rejectionReason *string) error
}

// CourseRepository handles database operations for courses
type CourseRepository struct {
	db *pgxpool.Pool
}

// NewCourseRepository creates a new CourseRepository
func NewCourseRepository(db *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{db: db}
}

const courseColumns = `id, application_id, title, language, description, web_link, level,
	start_date, end_date, local_credits, ects, choice_reason, is_validated, rejection_reason, created_at`

func scanCourse(row rowScanner) (*models.Course, error) {
	var c models.Course
	err := row.Scan(
		&c.ID, &c.ApplicationID, &c.Title, &c.Language, &c.Description, &c.WebLink, &c.Level,
		&c.StartDate, &c.EndDate, &c.LocalCredits, &c.ECTS, &c.ChoiceReason, &c.IsValidated,
		&c.RejectionReason, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a pending course line
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	query := `
		INSERT INTO courses (
			application_id, title, language, description, web_link, level,
			start_date, end_date, local_credits, ects, choice_reason
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query,
		course.ApplicationID,
		course.Title,
		course.Language,
		course.Description,
		course.WebLink,
		course.Level,
		course.StartDate,
		course.EndDate,
		course.LocalCredits,
		course.ECTS,
		course.ChoiceReason,
	).Scan(&course.ID, &course.CreatedAt)
	if err != nil {
		return fmt.Errorf("error creating course: %w", err)
	}
	course.IsValidated, course.RejectionReason = nil, nil
	return nil
}

// GetByID retrieves a course by ID
func (r *CourseRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	c, err := scanCourse(r.db.QueryRow(ctx, "SELECT "+courseColumns+" FROM courses WHERE id = $1", id))
	if err != nil {
		return nil, notFound(err, "course")
	}
	return c, nil
}

// ListByApplication lists the course lines of a dossier in creation order
func (r *CourseRepository) ListByApplication(ctx context.Context, applicationID uuid.UUID) ([]*models.Course, error) {
	rows, err := r.db.Query(ctx,
		"SELECT "+courseColumns+" FROM courses WHERE application_id = $1 ORDER BY created_at ASC, id",
		applicationID)
	if err != nil {
		return nil, fmt.Errorf("error listing courses: %w", err)
	}
	defer rows.Close()

	courses := make([]*models.Course, 0)
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning course: %w", err)
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

// Delete removes a course line
func (r *CourseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting course: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return notFoundErr("course")
	}
	return nil
}

// UpdateValidation sets the review outcome; nil isValidated resets the line to pending
func (r *CourseRepository) UpdateValidation(ctx context.Context, id uuid.UUID, isValidated *bool, rejectionReason *string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE courses SET is_validated = $1, rejection_reason = $2 WHERE id = $3`,
		isValidated, rejectionReason, id)
	if err != nil {
		return fmt.Errorf("error updating course validation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return notFoundErr("course")
	}
	return nil
}
