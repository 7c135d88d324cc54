package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/mobility/internal/app/models"
	"github.com/yigit/mobility/internal/app/repositories"
	"github.com/yigit/mobility/internal/app/workflow"
	"github.com/yigit/mobility/internal/pkg/apperrors"
)

// AuthorizationService decides who may read a dossier and its sub-resources.
// Writes are authorized by workflow.Decide.
type AuthorizationService struct {
	applicationRepo repositories.IApplicationRepository
	logger          zerolog.Logger
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(applicationRepo repositories.IApplicationRepository, logger zerolog.Logger) *AuthorizationService {
	return &AuthorizationService{
		applicationRepo: applicationRepo,
		logger:          logger,
	}
}

// LoadApplication fetches a dossier without any access check
func (s *AuthorizationService) LoadApplication(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	return s.applicationRepo.GetByID(ctx, id)
}

// LoadReadable fetches a dossier and checks that actor is one of its parties
func (s *AuthorizationService) LoadReadable(ctx context.Context, id uuid.UUID, actor workflow.Actor) (*models.Application, error) {
	app, err := s.applicationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ValidateAccess(app, actor); err != nil {
		return nil, err
	}
	return app, nil
}

// ValidateAccess returns a forbidden error when actor is not a party of app
func (s *AuthorizationService) ValidateAccess(app *models.Application, actor workflow.Actor) error {
	if !workflow.CanAccess(app, actor) {
		s.logger.Warn().
			Str("applicationID", app.ID.String()).
			Str("actorID", actor.ID.String()).
			Str("role", string(actor.Role)).
			Msg("Access to application denied")
		return apperrors.NewForbiddenError("you don't have access to this application")
	}
	return nil
}

// ScopeFilter restricts a list filter to the dossiers actor may see
func (s *AuthorizationService) ScopeFilter(actor workflow.Actor, filter *repositories.ApplicationFilter) error {
	switch actor.Role {
	case models.RoleStudent:
		filter.StudentID = &actor.ID
	case models.RoleMajorHead:
		filter.MajorHeadID = &actor.ID
	case models.RoleInternational:
	default:
		return apperrors.NewForbiddenError("unknown role")
	}
	return nil
}
