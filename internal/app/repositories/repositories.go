package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/mobility/internal/pkg/apperrors"
)

// psql builds queries with $n placeholders
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// rowScanner is satisfied by pgx.Row and pgx.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

// notFound translates pgx.ErrNoRows, wrapping any other error with context
func notFound(err error, what string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewResourceNotFoundError(what + " not found")
	}
	return fmt.Errorf("error retrieving %s: %w", what, err)
}

func notFoundErr(what string) error {
	return apperrors.NewResourceNotFoundError(what + " not found")
}

// Repositories holds all the repository instances
type Repositories struct {
	ProfileRepository      *ProfileRepository
	ReferenceRepository    *ReferenceRepository
	ApplicationRepository  *ApplicationRepository
	CourseRepository       *CourseRepository
	MessageRepository      *MessageRepository
	FileRepository         *FileRepository
	NotificationRepository *NotificationRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		ProfileRepository:      NewProfileRepository(db),
		ReferenceRepository:    NewReferenceRepository(db),
		ApplicationRepository:  NewApplicationRepository(db),
		CourseRepository:       NewCourseRepository(db),
		MessageRepository:      NewMessageRepository(db),
		FileRepository:         NewFileRepository(db),
		NotificationRepository: NewNotificationRepository(db),
	}
}

// Ping checks the database connection
func Ping(ctx context.Context, db *pgxpool.Pool) error {
	return db.Ping(ctx)
}
