package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/yigit/mobility/internal/app/models"
	"github.com/yigit/mobility/internal/app/models/dto"
	"github.com/yigit/mobility/internal/app/repositories"
)

// ReferenceService serves the lookup data of the dossier forms
type ReferenceService interface {
	ListMajors(ctx context.Context) ([]*models.Major, error)
	CurrentAcademicYear(ctx context.Context) (*models.AcademicYear, error)
	ListMajorHeads(ctx context.Context, majorID *uuid.UUID) ([]*dto.ProfileResponse, error)
}

// referenceServiceImpl implements ReferenceService
type referenceServiceImpl struct {
	referenceRepo repositories.IReferenceRepository
	profileRepo   repositories.IProfileRepository
}

// NewReferenceService creates a new ReferenceService
func NewReferenceService(referenceRepo repositories.IReferenceRepository, profileRepo repositories.IProfileRepository) ReferenceService {
	return &referenceServiceImpl{referenceRepo: referenceRepo, profileRepo: profileRepo}
}

func (s *referenceServiceImpl) ListMajors(ctx context.Context) ([]*models.Major, error) {
	majors, err := s.referenceRepo.ListMajors(ctx)
	if err != nil {
		return nil, err
	}
	if majors == nil {
		majors = []*models.Major{}
	}
	return majors, nil
}

func (s *referenceServiceImpl) CurrentAcademicYear(ctx context.Context) (*models.AcademicYear, error) {
	return s.referenceRepo.GetCurrentAcademicYear(ctx)
}

// ListMajorHeads returns the major heads, restricted to majorID when given
func (s *referenceServiceImpl) ListMajorHeads(ctx context.Context, majorID *uuid.UUID) ([]*dto.ProfileResponse, error) {
	heads, err := s.profileRepo.ListByRole(ctx, models.RoleMajorHead, majorID)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.ProfileResponse, 0, len(heads))
	for _, h := range heads {
		out = append(out, dto.NewProfileResponse(h))
	}
	return out, nil
}
