package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/mobility/internal/app/auth"
	"github.com/yigit/mobility/internal/app/models"
	"github.com/yigit/mobility/internal/app/models/dto"
	"github.com/yigit/mobility/internal/app/repositories"
	"github.com/yigit/mobility/internal/app/workflow"
	"github.com/yigit/mobility/internal/pkg/apperrors"
)

const courseDateLayout = "2006-01-02"

// CourseService defines course line operations
type CourseService interface {
	List(ctx context.Context, actor workflow.Actor, applicationID uuid.UUID) ([]*models.Course, error)
	Add(ctx context.Context, actor workflow.Actor, applicationID uuid.UUID, req *dto.CreateCourseRequest) (*models.Course, error)
	Delete(ctx context.Context, actor workflow.Actor, applicationID, courseID uuid.UUID) error
	Review(ctx context.Context, actor workflow.Actor, applicationID, courseID uuid.UUID, req *dto.ReviewCourseRequest) (*models.Course, error)
}

// courseServiceImpl implements CourseService
type courseServiceImpl struct {
	courseRepo repositories.ICourseRepository
	authz      *auth.AuthorizationService
	logger     zerolog.Logger
}

// NewCourseService creates a new CourseService
func NewCourseService(courseRepo repositories.ICourseRepository, authz *auth.AuthorizationService, logger zerolog.Logger) CourseService {
	return &courseServiceImpl{
		courseRepo: courseRepo,
		authz:      authz,
		logger:     logger,
	}
}

// List returns the course lines of a readable dossier
func (s *courseServiceImpl) List(ctx context.Context, actor workflow.Actor, applicationID uuid.UUID) ([]*models.Course, error) {
	if _, err := s.authz.LoadReadable(ctx, applicationID, actor); err != nil {
		return nil, err
	}
	return s.courseRepo.ListByApplication(ctx, applicationID)
}

// Add appends a pending course line while the dossier is editable
func (s *courseServiceImpl) Add(ctx context.Context, actor workflow.Actor, applicationID uuid.UUID, req *dto.CreateCourseRequest) (*models.Course, error) {
	app, err := s.authz.LoadApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if _, err := workflow.Decide(app, actor, workflow.ActionEditCourses, workflow.Input{}); err != nil {
		return nil, err
	}

	course, err := courseFromRequest(req)
	if err != nil {
		return nil, err
	}
	course.ApplicationID = app.ID

	if err := s.courseRepo.Create(ctx, course); err != nil {
		return nil, err
	}
	s.logger.Info().
		Str("applicationID", app.ID.String()).
		Str("courseID", course.ID.String()).
		Msg("Course added")
	return course, nil
}

func courseFromRequest(req *dto.CreateCourseRequest) (*models.Course, error) {
	start, err := time.Parse(courseDateLayout, req.StartDate)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid start date, expected YYYY-MM-DD")
	}
	end, err := time.Parse(courseDateLayout, req.EndDate)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid end date, expected YYYY-MM-DD")
	}
	if end.Before(start) {
		return nil, apperrors.NewValidationError("end date must not be before start date")
	}

	level := models.CourseLevel(req.Level)
	if level != models.CourseLevelM1 && level != models.CourseLevelM2 {
		return nil, apperrors.NewValidationError("level must be M1 or M2")
	}
	if req.ECTS <= 0 {
		return nil, apperrors.NewValidationError("ects must be positive")
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("title is required")
	}

	return &models.Course{
		Title:        title,
		Language:     strings.TrimSpace(req.Language),
		Description:  req.Description,
		WebLink:      strings.TrimSpace(req.WebLink),
		Level:        level,
		StartDate:    start,
		EndDate:      end,
		LocalCredits: req.LocalCredits,
		ECTS:         req.ECTS,
		ChoiceReason: req.ChoiceReason,
	}, nil
}

// loadCourse fetches a course and checks it belongs to the dossier
func (s *courseServiceImpl) loadCourse(ctx context.Context, applicationID, courseID uuid.UUID) (*models.Course, error) {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if course.ApplicationID != applicationID {
		return nil, apperrors.NewResourceNotFoundError("course not found")
	}
	return course, nil
}

// Delete removes a course line. A validated line stays.
func (s *courseServiceImpl) Delete(ctx context.Context, actor workflow.Actor, applicationID, courseID uuid.UUID) error {
	app, err := s.authz.LoadApplication(ctx, applicationID)
	if err != nil {
		return err
	}
	if _, err := workflow.Decide(app, actor, workflow.ActionEditCourses, workflow.Input{}); err != nil {
		return err
	}

	course, err := s.loadCourse(ctx, applicationID, courseID)
	if err != nil {
		return err
	}
	if course.IsValidated != nil && *course.IsValidated {
		return apperrors.NewValidationError("a validated course cannot be deleted")
	}

	return s.courseRepo.Delete(ctx, courseID)
}

// Review records the major head decision on one line of a submitted dossier
func (s *courseServiceImpl) Review(ctx context.Context, actor workflow.Actor, applicationID, courseID uuid.UUID, req *dto.ReviewCourseRequest) (*models.Course, error) {
	app, err := s.authz.LoadApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if _, err := workflow.Decide(app, actor, workflow.ActionReviewCourse, workflow.Input{}); err != nil {
		return nil, err
	}

	course, err := s.loadCourse(ctx, applicationID, courseID)
	if err != nil {
		return nil, err
	}

	// a rejection reason only exists next to is_validated = false
	var reason *string
	if req.IsValidated != nil && !*req.IsValidated {
		r := strings.TrimSpace(req.RejectionReason)
		if r == "" {
			return nil, apperrors.NewValidationError("a rejection reason is required")
		}
		reason = &r
	}

	if err := s.courseRepo.UpdateValidation(ctx, courseID, req.IsValidated, reason); err != nil {
		return nil, err
	}
	course.IsValidated, course.RejectionReason = req.IsValidated, reason
	return course, nil
}
