package services

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/mobility/internal/app/models"
	"github.com/yigit/mobility/internal/app/models/dto"
	"github.com/yigit/mobility/internal/app/repositories"
	"github.com/yigit/mobility/internal/app/workflow"
	"github.com/yigit/mobility/internal/pkg/apperrors"
	"github.com/yigit/mobility/internal/pkg/webhook"
)

const messagePreviewLength = 100

// WebhookSender posts event payloads to the automation endpoint
type WebhookSender interface {
	Configured() bool
	Send(ctx context.Context, payload webhook.Payload) bool
}

// EventDispatcher fans dossier events out to inbox notifications and the webhook
type EventDispatcher interface {
	// Dispatch never fails: every error is logged and dropped
	Dispatch(ctx context.Context, event workflow.Event, app *models.Application, senderID uuid.UUID, preview string)
	Trigger(ctx context.Context, actor workflow.Actor, req *dto.TriggerWebhookRequest) (*dto.TriggerWebhookResponse, error)
	Status() *dto.WebhookStatusResponse
}

// eventDispatcherImpl implements EventDispatcher
type eventDispatcherImpl struct {
	profileRepo      repositories.IProfileRepository
	applicationRepo  repositories.IApplicationRepository
	notificationRepo repositories.INotificationRepository
	webhook          WebhookSender
	persistAll       bool
	now              func() time.Time
	logger           zerolog.Logger
}

// NewEventDispatcher creates a new EventDispatcher. persistAll turns on inbox
// rows for every event instead of only the validations.
func NewEventDispatcher(
	profileRepo repositories.IProfileRepository,
	applicationRepo repositories.IApplicationRepository,
	notificationRepo repositories.INotificationRepository,
	sender WebhookSender,
	persistAll bool,
	logger zerolog.Logger,
) EventDispatcher {
	return &eventDispatcherImpl{
		profileRepo:      profileRepo,
		applicationRepo:  applicationRepo,
		notificationRepo: notificationRepo,
		webhook:          sender,
		persistAll:       persistAll,
		now:              time.Now,
		logger:           logger,
	}
}

// Dispatch runs after the status write. The request context may already be
// cancelled by then, so the side effects use a detached one.
func (s *eventDispatcherImpl) Dispatch(ctx context.Context, event workflow.Event, app *models.Application, senderID uuid.UUID, preview string) {
	ctx = context.WithoutCancel(ctx)
	log := s.logger.With().
		Str("event", string(event)).
		Str("applicationID", app.ID.String()).
		Logger()

	internationals, err := s.profileRepo.ListByRole(ctx, models.RoleInternational, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load international profiles for event")
	}

	if s.persistAll || workflow.PersistedByDefault[event] {
		s.persistNotifications(ctx, log, event, app, senderID, internationals)
	}

	if !s.webhook.Configured() {
		return
	}
	data := s.payloadData(ctx, log, app, internationals)
	data.MessagePreview = truncate(preview, messagePreviewLength)
	s.webhook.Send(ctx, webhook.NewPayload(string(event), data, s.now()))
}

func (s *eventDispatcherImpl) persistNotifications(
	ctx context.Context,
	log zerolog.Logger,
	event workflow.Event,
	app *models.Application,
	senderID uuid.UUID,
	internationals []*models.Profile,
) {
	ids := make([]uuid.UUID, 0, len(internationals))
	for _, p := range internationals {
		ids = append(ids, p.ID)
	}

	text := workflow.NotificationText(event, app)
	link := "/applications/" + app.ID.String()
	var rows []*models.Notification
	for _, userID := range workflow.Recipients(event, app, senderID, ids) {
		rows = append(rows, &models.Notification{UserID: userID, Message: text, Link: &link})
	}

	if err := s.notificationRepo.CreateBatch(ctx, rows); err != nil {
		log.Error().Err(err).Int("recipients", len(rows)).Msg("Failed to persist notifications")
		return
	}
	log.Debug().Int("recipients", len(rows)).Msg("Notifications persisted")
}

// payloadData snapshots the dossier. Missing parties are loaded on demand.
func (s *eventDispatcherImpl) payloadData(ctx context.Context, log zerolog.Logger, app *models.Application, internationals []*models.Profile) webhook.Data {
	student := app.Student
	if student == nil {
		p, err := s.profileRepo.GetByID(ctx, app.StudentID)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to load student for webhook payload")
		}
		student = p
	}
	head := app.MajorHead
	if head == nil {
		p, err := s.profileRepo.GetByID(ctx, app.MajorHeadID)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to load major head for webhook payload")
		}
		head = p
	}

	emails := make([]string, 0, len(internationals))
	for _, p := range internationals {
		emails = append(emails, p.Email)
	}

	return webhook.Data{
		ApplicationID: app.ID.String(),
		Status:        string(app.Status),
		University: webhook.University{
			Name:    app.UniversityName,
			City:    app.UniversityCity,
			Country: app.UniversityCountry,
		},
		Student:             party(student),
		MajorHead:           party(head),
		InternationalEmails: emails,
	}
}

// Trigger builds the payload of an arbitrary event for a dossier and forwards it
func (s *eventDispatcherImpl) Trigger(ctx context.Context, actor workflow.Actor, req *dto.TriggerWebhookRequest) (*dto.TriggerWebhookResponse, error) {
	event, ok := workflow.ParseEvent(req.Event)
	if !ok {
		return nil, apperrors.NewValidationError("unknown event: " + req.Event)
	}

	app, err := s.applicationRepo.GetByID(ctx, req.ApplicationID)
	if err != nil {
		return nil, err
	}
	if !workflow.CanAccess(app, actor) {
		return nil, apperrors.NewForbiddenError("you don't have access to this application")
	}

	log := s.logger.With().Str("event", string(event)).Str("applicationID", app.ID.String()).Logger()
	internationals, err := s.profileRepo.ListByRole(ctx, models.RoleInternational, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load international profiles for event")
	}

	data := s.payloadData(ctx, log, app, internationals)
	data.MessagePreview = truncate(req.MessagePreview, messagePreviewLength)
	payload := webhook.NewPayload(string(event), data, s.now())
	s.webhook.Send(ctx, payload)

	return &dto.TriggerWebhookResponse{
		Success: true,
		Event:   string(event),
		Payload: payload,
	}, nil
}

// Status reports the webhook configuration and the recognized events
func (s *eventDispatcherImpl) Status() *dto.WebhookStatusResponse {
	events := make([]string, 0, len(workflow.AllEvents()))
	for _, e := range workflow.AllEvents() {
		events = append(events, string(e))
	}
	return &dto.WebhookStatusResponse{
		Configured: s.webhook.Configured(),
		Events:     events,
	}
}

func party(p *models.Profile) webhook.Party {
	if p == nil {
		return webhook.Party{}
	}
	return webhook.Party{Name: p.FullName, Email: p.Email}
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
