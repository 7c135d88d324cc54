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

// ApplicationStudentYearKey is the unique constraint on (student_id, academic_year_id)
const ApplicationStudentYearKey = "applications_student_year_key"

// Sort orders accepted by List
const (
	SortUpdatedDesc = "updated_desc"
	SortCreatedDesc = "created_desc"
	SortCreatedAsc  = "created_asc"
	SortNameAsc     = "name_asc"
)

var sortClauses = map[string]string{
	SortUpdatedDesc: "a.updated_at DESC",
	SortCreatedDesc: "a.created_at DESC",
	SortCreatedAsc:  "a.created_at ASC",
	SortNameAsc:     "s.full_name ASC",
}

// ApplicationFilter narrows application lists. Zero fields do not filter.
type ApplicationFilter struct {
	StudentID      *uuid.UUID
	MajorHeadID    *uuid.UUID
	AcademicYearID *uuid.UUID
	MajorID        *uuid.UUID
	Status         *models.ApplicationStatus
	Search         string
	Sort           string
	Limit          int
	Offset         uint64
}

// StatsRow is the per-dossier projection the statistics are computed from
type StatsRow struct {
	StudentID  uuid.UUID
	Status     models.ApplicationStatus
	MajorName  *string
	University string
}

// IApplicationRepository defines dossier persistence
type IApplicationRepository interface {
	Create(ctx context.Context, app *models.Application) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Application, error)
	ExistsForStudentYear(ctx context.Context, studentID, academicYearID uuid.UUID) (bool, error)
	List(ctx context.Context, filter ApplicationFilter) ([]*models.Application, int64, error)
	CountByStatus(ctx context.Context, filter ApplicationFilter) (map[models.ApplicationStatus]int, error)
	UpdateStatus(ctx context.Context, app *models.Application, status models.ApplicationStatus) error
	StatsRows(ctx context.Context) ([]StatsRow, error)
}

// ApplicationRepository handles database operations for applications
type ApplicationRepository struct {
	db *pgxpool.Pool
}

// NewApplicationRepository creates a new ApplicationRepository
func NewApplicationRepository(db *pgxpool.Pool) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

var applicationColumns = []string{
	"a.id", "a.student_id", "a.major_head_id", "a.academic_year_id", "a.status",
	"a.university_name", "a.university_city", "a.university_country", "a.created_at", "a.updated_at",
	"s.id", "s.email", "s.full_name", "s.role", "s.major_id", "s.created_at",
	"h.id", "h.email", "h.full_name", "h.role", "h.major_id", "h.created_at",
	"y.id", "y.year", "y.is_current",
}

func (r *ApplicationRepository) baseSelect(columns ...string) squirrel.SelectBuilder {
	return psql.Select(columns...).
		From("applications a").
		Join("profiles s ON s.id = a.student_id").
		Join("profiles h ON h.id = a.major_head_id").
		Join("academic_years y ON y.id = a.academic_year_id")
}

func scanApplication(row rowScanner) (*models.Application, error) {
	var (
		a models.Application
		s models.Profile
		h models.Profile
		y models.AcademicYear
	)
	err := row.Scan(
		&a.ID, &a.StudentID, &a.MajorHeadID, &a.AcademicYearID, &a.Status,
		&a.UniversityName, &a.UniversityCity, &a.UniversityCountry, &a.CreatedAt, &a.UpdatedAt,
		&s.ID, &s.Email, &s.FullName, &s.Role, &s.MajorID, &s.CreatedAt,
		&h.ID, &h.Email, &h.FullName, &h.Role, &h.MajorID, &h.CreatedAt,
		&y.ID, &y.Year, &y.IsCurrent,
	)
	if err != nil {
		return nil, err
	}
	a.Student, a.MajorHead, a.AcademicYear = &s, &h, &y
	return &a, nil
}

func applyFilter(qb squirrel.SelectBuilder, f ApplicationFilter) squirrel.SelectBuilder {
	if f.StudentID != nil {
		qb = qb.Where(squirrel.Eq{"a.student_id": *f.StudentID})
	}
	if f.MajorHeadID != nil {
		qb = qb.Where(squirrel.Eq{"a.major_head_id": *f.MajorHeadID})
	}
	if f.AcademicYearID != nil {
		qb = qb.Where(squirrel.Eq{"a.academic_year_id": *f.AcademicYearID})
	}
	if f.MajorID != nil {
		// student major first, then the major head's
		qb = qb.Where("COALESCE(s.major_id, h.major_id) = ?", *f.MajorID)
	}
	if f.Status != nil {
		qb = qb.Where(squirrel.Eq{"a.status": *f.Status})
	}
	if term := strings.TrimSpace(f.Search); term != "" {
		like := "%" + escapeLike(term) + "%"
		qb = qb.Where(squirrel.Or{
			squirrel.ILike{"s.full_name": like},
			squirrel.ILike{"a.university_name": like},
			squirrel.ILike{"a.university_city": like},
			squirrel.ILike{"h.full_name": like},
		})
	}
	return qb
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// Create inserts a draft application. A second dossier for the same student and
// academic year surfaces as ErrDuplicateApplication.
func (r *ApplicationRepository) Create(ctx context.Context, app *models.Application) error {
	if app.Status == "" {
		app.Status = models.StatusDraft
	}
	query := `
		INSERT INTO applications (
			student_id, major_head_id, academic_year_id, status,
			university_name, university_city, university_country
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		app.StudentID,
		app.MajorHeadID,
		app.AcademicYearID,
		app.Status,
		app.UniversityName,
		app.UniversityCity,
		app.UniversityCountry,
	).Scan(&app.ID, &app.CreatedAt, &app.UpdatedAt)
	if err != nil {
		return createApplicationError(err)
	}
	return nil
}

// createApplicationError turns the one-dossier-per-year violation into ErrDuplicateApplication
func createApplicationError(err error) error {
	if dberrors.IsDuplicateConstraintError(err, ApplicationStudentYearKey) {
		return apperrors.NewCustomError(apperrors.ErrDuplicateApplication, "Vous avez déjà un dossier pour cette année")
	}
	return fmt.Errorf("error creating application: %w", err)
}

// GetByID retrieves an application with its student, major head and academic year
func (r *ApplicationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	sql, args, err := r.baseSelect(applicationColumns...).Where(squirrel.Eq{"a.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}
	app, err := scanApplication(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, notFound(err, "application")
	}
	return app, nil
}

// ExistsForStudentYear reports whether the student already has a dossier for the year
func (r *ApplicationRepository) ExistsForStudentYear(ctx context.Context, studentID, academicYearID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM applications WHERE student_id = $1 AND academic_year_id = $2)`,
		studentID, academicYearID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking existing application: %w", err)
	}
	return exists, nil
}

// List returns one page of applications matching filter and the total match count
func (r *ApplicationRepository) List(ctx context.Context, filter ApplicationFilter) ([]*models.Application, int64, error) {
	countSQL, countArgs, err := applyFilter(r.baseSelect("COUNT(*)"), filter).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("error building SQL: %w", err)
	}
	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting applications: %w", err)
	}

	order, ok := sortClauses[filter.Sort]
	if !ok {
		order = sortClauses[SortUpdatedDesc]
	}
	qb := applyFilter(r.baseSelect(applicationColumns...), filter).OrderBy(order, "a.id")
	if filter.Limit > 0 {
		qb = qb.Limit(uint64(filter.Limit)).Offset(filter.Offset)
	}

	sql, args, err := qb.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("error building SQL: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing applications: %w", err)
	}
	defer rows.Close()

	apps := make([]*models.Application, 0)
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning application: %w", err)
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating applications: %w", err)
	}
	return apps, total, nil
}

// CountByStatus counts matching applications per status, ignoring the status filter itself
func (r *ApplicationRepository) CountByStatus(ctx context.Context, filter ApplicationFilter) (map[models.ApplicationStatus]int, error) {
	filter.Status = nil
	sql, args, err := applyFilter(r.baseSelect("a.status", "COUNT(*)"), filter).GroupBy("a.status").ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error counting applications by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.ApplicationStatus]int, len(models.AllStatuses))
	for rows.Next() {
		var status models.ApplicationStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("error scanning status count: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// UpdateStatus is a single-row write with no version check; the last writer wins.
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, app *models.Application, status models.ApplicationStatus) error {
	err := r.db.QueryRow(ctx,
		`UPDATE applications SET status = $1, updated_at = NOW() WHERE id = $2 RETURNING updated_at`,
		status, app.ID,
	).Scan(&app.UpdatedAt)
	if err != nil {
		return notFound(err, "application")
	}
	app.Status = status
	return nil
}

// StatsRows returns the projection used by the international statistics
func (r *ApplicationRepository) StatsRows(ctx context.Context) ([]StatsRow, error) {
	rows, err := r.db.Query(ctx, `
		SELECT a.student_id, a.status, m.name, a.university_name
		FROM applications a
		JOIN profiles s ON s.id = a.student_id
		JOIN profiles h ON h.id = a.major_head_id
		LEFT JOIN majors m ON m.id = COALESCE(s.major_id, h.major_id)
	`)
	if err != nil {
		return nil, fmt.Errorf("error loading statistics: %w", err)
	}
	defer rows.Close()

	var out []StatsRow
	for rows.Next() {
		var row StatsRow
		if err := rows.Scan(&row.StudentID, &row.Status, &row.MajorName, &row.University); err != nil {
			return nil, fmt.Errorf("error scanning statistics row: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
