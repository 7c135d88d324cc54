package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/mobility/internal/app/auth"
	"github.com/yigit/mobility/internal/app/models"
	"github.com/yigit/mobility/internal/app/models/dto"
	"github.com/yigit/mobility/internal/app/repositories"
	"github.com/yigit/mobility/internal/app/workflow"
	"github.com/yigit/mobility/internal/pkg/apperrors"
	"github.com/yigit/mobility/internal/pkg/helpers"
	"github.com/yigit/mobility/internal/pkg/validation"
)

// Steps of the reason-carrying transitions, reported on partial failure
const (
	StepInsertMessage = "insert_message"
	StepUpdateStatus  = "update_status"
)

// ApplicationService defines dossier lifecycle operations
type ApplicationService interface {
	Create(ctx context.Context, actor workflow.Actor, req *dto.CreateApplicationRequest) (*dto.ApplicationResponse, error)
	Get(ctx context.Context, actor workflow.Actor, id uuid.UUID) (*dto.ApplicationDetailResponse, error)
	List(ctx context.Context, actor workflow.Actor, filter *dto.ApplicationFilterRequest) (*dto.ApplicationListResponse, error)
	Submit(ctx context.Context, actor workflow.Actor, id uuid.UUID) (*dto.ApplicationResponse, error)
	ValidateMajor(ctx context.Context, actor workflow.Actor, id uuid.UUID) (*dto.ApplicationResponse, error)
	RequestRevision(ctx context.Context, actor workflow.Actor, id uuid.UUID, reason string) (*dto.ApplicationResponse, error)
	ValidateFinal(ctx context.Context, actor workflow.Actor, id uuid.UUID) (*dto.ApplicationResponse, error)
	Reject(ctx context.Context, actor workflow.Actor, id uuid.UUID, reason string) (*dto.ApplicationResponse, error)
}

// ApplicationDeps groups the collaborators of the application service
type ApplicationDeps struct {
	Applications repositories.IApplicationRepository
	Profiles     repositories.IProfileRepository
	Reference    repositories.IReferenceRepository
	Courses      repositories.ICourseRepository
	Files        repositories.IFileRepository
	Messages     repositories.IMessageRepository
	Authz        *auth.AuthorizationService
	Events       EventDispatcher
	Stats        StatsService
	Badges       workflow.BadgeSet
	RequiredECTS int
}

// applicationServiceImpl implements ApplicationService
type applicationServiceImpl struct {
	ApplicationDeps
	logger zerolog.Logger
}

// NewApplicationService creates a new ApplicationService
func NewApplicationService(deps ApplicationDeps, logger zerolog.Logger) ApplicationService {
	if deps.Badges == nil {
		deps.Badges = workflow.FrenchBadges
	}
	if deps.RequiredECTS <= 0 {
		deps.RequiredECTS = validation.RequiredECTS
	}
	return &applicationServiceImpl{ApplicationDeps: deps, logger: logger}
}

// Create opens a draft dossier for the current academic year
func (s *applicationServiceImpl) Create(ctx context.Context, actor workflow.Actor, req *dto.CreateApplicationRequest) (*dto.ApplicationResponse, error) {
	if err := workflow.DecideCreate(actor, false); err != nil {
		return nil, err
	}

	app := &models.Application{
		StudentID:         actor.ID,
		MajorHeadID:       req.MajorHeadID,
		Status:            models.StatusDraft,
		UniversityName:    strings.TrimSpace(req.UniversityName),
		UniversityCity:    strings.TrimSpace(req.UniversityCity),
		UniversityCountry: strings.TrimSpace(req.UniversityCountry),
	}
	if app.UniversityName == "" || app.UniversityCity == "" || app.UniversityCountry == "" {
		return nil, apperrors.NewValidationError("university name, city and country are required")
	}

	head, err := s.Profiles.GetByID(ctx, req.MajorHeadID)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.NewValidationError("major head not found")
		}
		return nil, err
	}
	if head.Role != models.RoleMajorHead {
		return nil, apperrors.NewValidationError("the selected profile is not a major head")
	}

	year, err := s.Reference.GetCurrentAcademicYear(ctx)
	if err != nil {
		return nil, err
	}
	app.AcademicYearID = year.ID

	exists, err := s.Applications.ExistsForStudentYear(ctx, actor.ID, year.ID)
	if err != nil {
		return nil, err
	}
	if err := workflow.DecideCreate(actor, exists); err != nil {
		return nil, err
	}

	// a concurrent create still hits the unique constraint
	if err := s.Applications.Create(ctx, app); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("applicationID", app.ID.String()).
		Str("actorID", actor.ID.String()).
		Msg("Application created")
	s.Stats.Invalidate(ctx)

	created, err := s.Applications.GetByID(ctx, app.ID)
	if err != nil {
		s.logger.Warn().Err(err).Str("applicationID", app.ID.String()).Msg("Failed to reload created application")
		return dto.NewApplicationResponse(app, s.Badges), nil
	}
	return dto.NewApplicationResponse(created, s.Badges), nil
}

// Get returns the full view of a dossier
func (s *applicationServiceImpl) Get(ctx context.Context, actor workflow.Actor, id uuid.UUID) (*dto.ApplicationDetailResponse, error) {
	app, err := s.Authz.LoadReadable(ctx, id, actor)
	if err != nil {
		return nil, err
	}

	courses, err := s.Courses.ListByApplication(ctx, id)
	if err != nil {
		return nil, err
	}
	files, err := s.Files.ListByApplication(ctx, id)
	if err != nil {
		return nil, err
	}
	messages, err := s.Messages.ListByApplication(ctx, id)
	if err != nil {
		return nil, err
	}

	credits := make([]int, 0, len(courses))
	for _, c := range courses {
		credits = append(credits, c.ECTS)
	}

	resp := &dto.ApplicationDetailResponse{
		Application:      dto.NewApplicationResponse(app, s.Badges),
		Timeline:         workflow.BuildTimeline(app.Status, s.Badges),
		AvailableActions: workflow.AvailableActions(app, actor),
		Courses:          courses,
		ECTS:             validation.SummarizeECTS(credits, s.RequiredECTS),
		Files:            make([]*dto.FileResponse, 0, len(files)),
		Messages:         make([]*dto.MessageResponse, 0, len(messages)),
	}
	if resp.AvailableActions == nil {
		resp.AvailableActions = []workflow.Action{}
	}
	for _, f := range files {
		resp.Files = append(resp.Files, dto.NewFileResponse(f, app))
	}
	for _, m := range messages {
		resp.Messages = append(resp.Messages, dto.ToMessageResponse(m))
	}
	return resp, nil
}

// List returns the dashboard page visible to actor
func (s *applicationServiceImpl) List(ctx context.Context, actor workflow.Actor, req *dto.ApplicationFilterRequest) (*dto.ApplicationListResponse, error) {
	if req == nil {
		req = &dto.ApplicationFilterRequest{}
	}
	filter, err := toApplicationFilter(req)
	if err != nil {
		return nil, err
	}
	if err := s.Authz.ScopeFilter(actor, &filter); err != nil {
		return nil, err
	}

	offset, limit := helpers.CalculateOffsetLimit(req.Page, req.PageSize)
	filter.Offset, filter.Limit = offset, limit

	apps, total, err := s.Applications.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	counts, err := s.Applications.CountByStatus(ctx, filter)
	if err != nil {
		return nil, err
	}

	resp := &dto.ApplicationListResponse{
		Applications: make([]*dto.ApplicationResponse, 0, len(apps)),
		StatusCounts: make(map[string]int, len(models.AllStatuses)),
		Pagination:   helpers.NewPaginationInfo(total, req.Page, limit),
	}
	for _, st := range models.AllStatuses {
		resp.StatusCounts[string(st)] = counts[st]
	}
	for _, app := range apps {
		resp.Applications = append(resp.Applications, dto.NewApplicationResponse(app, s.Badges))
	}
	return resp, nil
}

func toApplicationFilter(req *dto.ApplicationFilterRequest) (repositories.ApplicationFilter, error) {
	filter := repositories.ApplicationFilter{
		Search: strings.TrimSpace(req.Search),
		Sort:   req.Sort,
	}
	if req.Status != "" {
		st := models.ApplicationStatus(req.Status)
		if !st.Valid() {
			return filter, apperrors.NewValidationError("unknown status: " + req.Status)
		}
		filter.Status = &st
	}
	if req.MajorID != "" {
		id, err := uuid.Parse(req.MajorID)
		if err != nil {
			return filter, apperrors.NewValidationError("invalid majorId")
		}
		filter.MajorID = &id
	}
	if req.AcademicYearID != "" {
		id, err := uuid.Parse(req.AcademicYearID)
		if err != nil {
			return filter, apperrors.NewValidationError("invalid academicYearId")
		}
		filter.AcademicYearID = &id
	}
	return filter, nil
}

// Submit sends a draft or revised dossier to its major head
func (s *applicationServiceImpl) Submit(ctx context.Context, actor workflow.Actor, id uuid.UUID) (*dto.ApplicationResponse, error) {
	return s.transition(ctx, actor, id, workflow.ActionSubmit, "")
}

// ValidateMajor is the major head approval
func (s *applicationServiceImpl) ValidateMajor(ctx context.Context, actor workflow.Actor, id uuid.UUID) (*dto.ApplicationResponse, error) {
	return s.transition(ctx, actor, id, workflow.ActionValidateMajor, "")
}

// RequestRevision sends the dossier back to the student with a reason
func (s *applicationServiceImpl) RequestRevision(ctx context.Context, actor workflow.Actor, id uuid.UUID, reason string) (*dto.ApplicationResponse, error) {
	return s.transition(ctx, actor, id, workflow.ActionRequestRevision, reason)
}

// ValidateFinal is the international office sign-off
func (s *applicationServiceImpl) ValidateFinal(ctx context.Context, actor workflow.Actor, id uuid.UUID) (*dto.ApplicationResponse, error) {
	return s.transition(ctx, actor, id, workflow.ActionValidateFinal, "")
}

// Reject refuses the dossier with a reason
func (s *applicationServiceImpl) Reject(ctx context.Context, actor workflow.Actor, id uuid.UUID, reason string) (*dto.ApplicationResponse, error) {
	return s.transition(ctx, actor, id, workflow.ActionReject, reason)
}

// transition loads the dossier, asks the workflow for a decision and applies it.
// The reason message and the status are two separate writes; a failed status
// write after a stored message is reported as a partial failure.
func (s *applicationServiceImpl) transition(ctx context.Context, actor workflow.Actor, id uuid.UUID, action workflow.Action, reason string) (*dto.ApplicationResponse, error) {
	app, err := s.Authz.LoadApplication(ctx, id)
	if err != nil {
		return nil, err
	}

	in := workflow.Input{Reason: reason}
	if action == workflow.ActionSubmit && workflow.CanAccess(app, actor) {
		n, err := s.Files.CountByApplication(ctx, id)
		if err != nil {
			return nil, err
		}
		in.FileCount = n
	}

	decision, err := workflow.Decide(app, actor, action, in)
	if err != nil {
		return nil, err
	}

	log := s.logger.With().
		Str("applicationID", app.ID.String()).
		Str("actorID", actor.ID.String()).
		Str("action", string(action)).
		Logger()

	messageStored := false
	if text := decision.SystemMessage(); text != "" {
		msg := &models.Message{ApplicationID: app.ID, SenderID: actor.ID, Content: text}
		if err := s.Messages.Create(ctx, msg); err != nil {
			log.Error().Err(err).Msg("Failed to store reason message")
			return nil, fmt.Errorf("%s: %w", StepInsertMessage, err)
		}
		messageStored = true
	}

	if decision.Changes() {
		from := app.Status
		if err := s.Applications.UpdateStatus(ctx, app, decision.Target()); err != nil {
			log.Error().Err(err).Bool("messageStored", messageStored).Msg("Failed to update application status")
			if messageStored {
				return nil, apperrors.NewPartialFailureError(StepUpdateStatus, err)
			}
			return nil, err
		}
		log.Info().Str("from", string(from)).Str("to", string(app.Status)).Msg("Application status changed")
		s.Stats.Invalidate(ctx)
	}

	if decision.Event != "" {
		s.Events.Dispatch(ctx, decision.Event, app, actor.ID, "")
	}

	return dto.NewApplicationResponse(app, s.Badges), nil
}
