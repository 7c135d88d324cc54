package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	appModels "github.com/yigit/mobility/internal/app/models"
	appRepos "github.com/yigit/mobility/internal/app/repositories"
	"github.com/yigit/mobility/internal/pkg/apperrors"
	"golang.org/x/crypto/bcrypt"
)

// DefaultMajors are created on first start
var DefaultMajors = []appModels.Major{
	{Code: "FIN", Name: "Finance"},
	{Code: "CYB", Name: "Cybersécurité"},
	{Code: "DIA", Name: "Data & Intelligence Artificielle"},
	{Code: "ENE", Name: "Énergie & Environnement"},
	{Code: "SAN", Name: "Santé & Technologie"},
}

type reviewer struct {
	email     string
	fullName  string
	role      appModels.RoleType
	majorCode string
}

var defaultReviewers = []reviewer{
	{email: "international@ece.fr", fullName: "Service International", role: appModels.RoleInternational},
	{email: "resp.fin@ece.fr", fullName: "Responsable Finance", role: appModels.RoleMajorHead, majorCode: "FIN"},
	{email: "resp.cyb@ece.fr", fullName: "Responsable Cybersécurité", role: appModels.RoleMajorHead, majorCode: "CYB"},
	{email: "resp.dia@ece.fr", fullName: "Responsable Data & IA", role: appModels.RoleMajorHead, majorCode: "DIA"},
	{email: "resp.ene@ece.fr", fullName: "Responsable Énergie", role: appModels.RoleMajorHead, majorCode: "ENE"},
	{email: "resp.san@ece.fr", fullName: "Responsable Santé", role: appModels.RoleMajorHead, majorCode: "SAN"},
}

// AcademicYearOf returns the "YYYY-YYYY" label of the school year containing t.
// A year starts in September.
func AcademicYearOf(t time.Time) string {
	start := t.Year()
	if t.Month() < time.September {
		start--
	}
	return fmt.Sprintf("%d-%d", start, start+1)
}

// CreateDefaultData creates majors, the current academic year and the reviewer
// accounts if they don't exist. Every step runs even if an earlier one failed.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, password string, lgr zerolog.Logger) error {
	referenceRepo := appRepos.NewReferenceRepository(dbPool)
	profileRepo := appRepos.NewProfileRepository(dbPool)

	lgr.Info().Msg("Checking/Creating default data (majors, academic year, reviewers)...")
	var finalErr error

	majorIDs := make(map[string]appModels.Major, len(DefaultMajors))
	for _, m := range DefaultMajors {
		major := m
		if err := referenceRepo.UpsertMajor(ctx, &major); err != nil {
			lgr.Error().Err(err).Str("code", m.Code).Msg("Error creating major")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		majorIDs[major.Code] = major
	}

	year := &appModels.AcademicYear{Year: AcademicYearOf(time.Now())}
	if err := referenceRepo.UpsertAcademicYear(ctx, year); err != nil {
		lgr.Error().Err(err).Str("year", year.Year).Msg("Error creating academic year")
		finalErr = errors.Join(finalErr, err)
	} else if _, err := referenceRepo.GetCurrentAcademicYear(ctx); errors.Is(err, apperrors.ErrNoCurrentAcademicYear) {
		// only promote when no year is current yet, an admin choice is kept
		if err := referenceRepo.SetCurrentAcademicYear(ctx, year.ID); err != nil {
			lgr.Error().Err(err).Str("year", year.Year).Msg("Error setting current academic year")
			finalErr = errors.Join(finalErr, err)
		} else {
			lgr.Info().Str("year", year.Year).Msg("Current academic year set")
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		lgr.Error().Err(err).Msg("Error hashing reviewer password")
		return errors.Join(finalErr, err)
	}

	for _, r := range defaultReviewers {
		if _, err := profileRepo.GetByEmail(ctx, r.email); err == nil {
			continue
		} else if !errors.Is(err, apperrors.ErrResourceNotFound) {
			lgr.Error().Err(err).Str("email", r.email).Msg("Error checking reviewer account")
			finalErr = errors.Join(finalErr, err)
			continue
		}

		profile := &appModels.Profile{
			Email:    r.email,
			Password: string(hashed),
			FullName: r.fullName,
			Role:     r.role,
		}
		if r.majorCode != "" {
			if m, ok := majorIDs[r.majorCode]; ok {
				id := m.ID
				profile.MajorID = &id
			}
		}
		if err := profileRepo.Create(ctx, profile); err != nil && !errors.Is(err, apperrors.ErrEmailAlreadyExists) {
			lgr.Error().Err(err).Str("email", r.email).Msg("Error creating reviewer account")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		lgr.Info().Str("email", r.email).Str("role", string(r.role)).Msg("Reviewer account created")
	}

	if finalErr != nil {
		lgr.Warn().Err(finalErr).Msg("Default data creation finished with errors")
	} else {
		lgr.Info().Msg("Default data check/creation finished")
	}
	return finalErr
}
