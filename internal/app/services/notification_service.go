package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/mobility/internal/app/models/dto"
	"github.com/yigit/mobility/internal/app/repositories"
)

const notificationPageSize = 50

// NotificationService defines inbox operations of the current user
type NotificationService interface {
	List(ctx context.Context, userID uuid.UUID, unreadOnly bool) (*dto.NotificationListResponse, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (*dto.UnreadCountResponse, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (*dto.MarkAllReadResponse, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// notificationServiceImpl implements NotificationService
type notificationServiceImpl struct {
	notificationRepo repositories.INotificationRepository
	logger           zerolog.Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(notificationRepo repositories.INotificationRepository, logger zerolog.Logger) NotificationService {
	return &notificationServiceImpl{notificationRepo: notificationRepo, logger: logger}
}

// List returns the newest notifications with the unread total
func (s *notificationServiceImpl) List(ctx context.Context, userID uuid.UUID, unreadOnly bool) (*dto.NotificationListResponse, error) {
	list, err := s.notificationRepo.ListByUser(ctx, userID, unreadOnly, notificationPageSize)
	if err != nil {
		return nil, err
	}
	unread, err := s.notificationRepo.CountUnread(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &dto.NotificationListResponse{Notifications: list, UnreadCount: unread}, nil
}

// UnreadCount returns the badge count
func (s *notificationServiceImpl) UnreadCount(ctx context.Context, userID uuid.UUID) (*dto.UnreadCountResponse, error) {
	n, err := s.notificationRepo.CountUnread(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &dto.UnreadCountResponse{Count: n}, nil
}

// MarkRead flags one notification of the user
func (s *notificationServiceImpl) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	return s.notificationRepo.MarkRead(ctx, userID, id)
}

// MarkAllRead flags every notification of the user
func (s *notificationServiceImpl) MarkAllRead(ctx context.Context, userID uuid.UUID) (*dto.MarkAllReadResponse, error) {
	n, err := s.notificationRepo.MarkAllRead(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.logger.Debug().Str("userID", userID.String()).Int64("updated", n).Msg("Notifications marked read")
	return &dto.MarkAllReadResponse{Updated: n}, nil
}

// Delete removes one notification of the user
func (s *notificationServiceImpl) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.notificationRepo.Delete(ctx, userID, id)
}
