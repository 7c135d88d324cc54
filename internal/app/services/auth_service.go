package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/mobility/internal/app/models"
	"github.com/yigit/mobility/internal/app/models/dto"
	"github.com/yigit/mobility/internal/app/repositories"
	"github.com/yigit/mobility/internal/pkg/apperrors"
	"github.com/yigit/mobility/internal/pkg/auth"
	"github.com/yigit/mobility/internal/pkg/validation"
)

// TokenIssuer signs access tokens for a profile
type TokenIssuer interface {
	GenerateToken(profile *models.Profile) (string, int, error)
}

// AuthService handles registration, login and the current profile
type AuthService struct {
	profileRepo   repositories.IProfileRepository
	referenceRepo repositories.IReferenceRepository
	tokens        TokenIssuer
	emailPolicy   *validation.EmailPolicy
	logger        zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	profileRepo repositories.IProfileRepository,
	referenceRepo repositories.IReferenceRepository,
	tokens TokenIssuer,
	emailPolicy *validation.EmailPolicy,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		profileRepo:   profileRepo,
		referenceRepo: referenceRepo,
		tokens:        tokens,
		emailPolicy:   emailPolicy,
		logger:        logger,
	}
}

// Register creates a student profile. Reviewer accounts are provisioned by the seed.
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	if err := s.emailPolicy.Check(req.Email); err != nil {
		return nil, err
	}
	if err := validation.Password(req.Password); err != nil {
		return nil, err
	}
	if err := validation.Name(req.FullName); err != nil {
		return nil, err
	}
	if req.MajorID != nil {
		if _, err := s.referenceRepo.GetMajorByID(ctx, *req.MajorID); err != nil {
			if errors.Is(err, apperrors.ErrResourceNotFound) {
				return nil, apperrors.NewValidationError("major not found")
			}
			return nil, err
		}
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to hash password")
		return nil, err
	}

	profile := &models.Profile{
		Email:    normalizeEmail(req.Email),
		Password: hash,
		FullName: strings.TrimSpace(req.FullName),
		Role:     models.RoleStudent,
		MajorID:  req.MajorID,
	}
	if err := s.profileRepo.Create(ctx, profile); err != nil {
		if errors.Is(err, apperrors.ErrEmailAlreadyExists) {
			return nil, apperrors.NewCustomError(apperrors.ErrEmailAlreadyExists, "an account already exists for this email")
		}
		return nil, err
	}

	s.logger.Info().Str("userID", profile.ID.String()).Msg("Student registered")
	return s.issue(profile)
}

// Login verifies credentials and returns a token
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	profile, err := s.profileRepo.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(profile.Password, req.Password) {
		s.logger.Warn().Str("userID", profile.ID.String()).Msg("Invalid password")
		return nil, apperrors.ErrInvalidCredentials
	}
	return s.issue(profile)
}

// Me returns the profile behind the token
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*dto.ProfileResponse, error) {
	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}
	return dto.NewProfileResponse(profile), nil
}

func (s *AuthService) issue(profile *models.Profile) (*dto.AuthResponse, error) {
	token, expiresIn, err := s.tokens.GenerateToken(profile)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to generate token")
		return nil, err
	}
	return &dto.AuthResponse{
		Token: dto.TokenResponse{
			AccessToken: token,
			TokenType:   "Bearer",
			ExpiresIn:   int64(expiresIn),
		},
		User: dto.NewProfileResponse(profile),
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
