package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/mobility/internal/app/auth"
	"github.com/yigit/mobility/internal/app/models"
	"github.com/yigit/mobility/internal/app/models/dto"
	"github.com/yigit/mobility/internal/app/repositories"
	"github.com/yigit/mobility/internal/app/workflow"
	"github.com/yigit/mobility/internal/pkg/apperrors"
)

// MessageService defines dossier thread operations
type MessageService interface {
	List(ctx context.Context, actor workflow.Actor, applicationID uuid.UUID) ([]*dto.MessageResponse, error)
	Post(ctx context.Context, actor workflow.Actor, applicationID uuid.UUID, content string) (*dto.MessageResponse, error)
}

// messageServiceImpl implements MessageService
type messageServiceImpl struct {
	messageRepo repositories.IMessageRepository
	profileRepo repositories.IProfileRepository
	authz       *auth.AuthorizationService
	events      EventDispatcher
	logger      zerolog.Logger
}

// NewMessageService creates a new MessageService
func NewMessageService(
	messageRepo repositories.IMessageRepository,
	profileRepo repositories.IProfileRepository,
	authz *auth.AuthorizationService,
	events EventDispatcher,
	logger zerolog.Logger,
) MessageService {
	return &messageServiceImpl{
		messageRepo: messageRepo,
		profileRepo: profileRepo,
		authz:       authz,
		events:      events,
		logger:      logger,
	}
}

// List returns the thread, oldest first
func (s *messageServiceImpl) List(ctx context.Context, actor workflow.Actor, applicationID uuid.UUID) ([]*dto.MessageResponse, error) {
	if _, err := s.authz.LoadReadable(ctx, applicationID, actor); err != nil {
		return nil, err
	}
	messages, err := s.messageRepo.ListByApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.MessageResponse, 0, len(messages))
	for _, m := range messages {
		out = append(out, dto.ToMessageResponse(m))
	}
	return out, nil
}

// Post appends a message from any party of the dossier, whatever its status
func (s *messageServiceImpl) Post(ctx context.Context, actor workflow.Actor, applicationID uuid.UUID, content string) (*dto.MessageResponse, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewValidationError("message content cannot be empty")
	}

	app, err := s.authz.LoadReadable(ctx, applicationID, actor)
	if err != nil {
		return nil, err
	}

	msg := &models.Message{ApplicationID: app.ID, SenderID: actor.ID, Content: content}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, err
	}

	if sender, err := s.profileRepo.GetByID(ctx, actor.ID); err == nil {
		msg.Sender = sender
	} else {
		s.logger.Warn().Err(err).Str("actorID", actor.ID.String()).Msg("Failed to load message sender")
	}

	s.events.Dispatch(ctx, workflow.EventNewMessage, app, actor.ID, content)
	return dto.ToMessageResponse(msg), nil
}
